package store

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/isometry/ad-user-import/internal/attribute"
)

// FieldRepo provides data access for attribute field values of admin users.
type FieldRepo struct {
	db *sqlx.DB
}

func NewFieldRepo(db *sqlx.DB) *FieldRepo { return &FieldRepo{db: db} }

// EnsureTable creates the admin_user_fields table if not exists (idempotent).
func (r *FieldRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS admin_user_fields (
  id BIGSERIAL PRIMARY KEY,
  user_id BIGINT NOT NULL REFERENCES admin_users(id) ON DELETE CASCADE,
  attribute_id BIGINT NOT NULL,
  sub_field_id BIGINT NOT NULL DEFAULT 0,
  value TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_admin_user_fields_user ON admin_user_fields(user_id);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

// DeleteFields removes every attribute field value of the user.
func (r *FieldRepo) DeleteFields(ctx context.Context, userID int64) error {
	const q = `DELETE FROM admin_user_fields WHERE user_id=$1`
	_, err := r.db.ExecContext(ctx, q, userID)
	return err
}

// CreateField inserts one attribute field value.
func (r *FieldRepo) CreateField(ctx context.Context, f attribute.FieldValue) error {
	const q = `INSERT INTO admin_user_fields (user_id, attribute_id, sub_field_id, value)
		VALUES ($1, $2, $3, $4)`
	_, err := r.db.ExecContext(ctx, q, f.UserID, f.AttributeID, f.SubFieldID, f.Value)
	return err
}

// FieldsByUser returns the user's attribute field values ordered by
// attribute and sub-field id.
func (r *FieldRepo) FieldsByUser(ctx context.Context, userID int64) ([]attribute.FieldValue, error) {
	const q = `SELECT user_id, attribute_id, sub_field_id, value
	  FROM admin_user_fields WHERE user_id=$1 ORDER BY attribute_id, sub_field_id`
	var rows []struct {
		UserID      int64  `db:"user_id"`
		AttributeID int64  `db:"attribute_id"`
		SubFieldID  int64  `db:"sub_field_id"`
		Value       string `db:"value"`
	}
	if err := r.db.SelectContext(ctx, &rows, q, userID); err != nil {
		return nil, err
	}
	out := make([]attribute.FieldValue, 0, len(rows))
	for _, row := range rows {
		out = append(out, attribute.FieldValue{
			AttributeID: row.AttributeID,
			UserID:      row.UserID,
			SubFieldID:  row.SubFieldID,
			Value:       row.Value,
		})
	}
	return out, nil
}
