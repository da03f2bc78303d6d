package store

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// AssignmentRepo provides data access for right grants, role grants and
// workgroup membership.
//
// Rights and roles support user-scoped bulk delete; workgroup membership
// deliberately does not. The import pipeline's replacement policy relies on
// that distinction.
type AssignmentRepo struct {
	db *sqlx.DB
}

func NewAssignmentRepo(db *sqlx.DB) *AssignmentRepo { return &AssignmentRepo{db: db} }

// EnsureTables creates the assignment tables if not exists (idempotent).
func (r *AssignmentRepo) EnsureTables(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS admin_user_rights (
  user_id BIGINT NOT NULL REFERENCES admin_users(id) ON DELETE CASCADE,
  right_code TEXT NOT NULL,
  PRIMARY KEY (user_id, right_code)
);
CREATE TABLE IF NOT EXISTS admin_user_roles (
  user_id BIGINT NOT NULL REFERENCES admin_users(id) ON DELETE CASCADE,
  role_code TEXT NOT NULL,
  PRIMARY KEY (user_id, role_code)
);
CREATE TABLE IF NOT EXISTS workgroup_members (
  workgroup_key TEXT NOT NULL,
  user_id BIGINT NOT NULL REFERENCES admin_users(id) ON DELETE CASCADE,
  PRIMARY KEY (workgroup_key, user_id)
);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

// DeleteRights removes every right grant of the user.
func (r *AssignmentRepo) DeleteRights(ctx context.Context, userID int64) error {
	const q = `DELETE FROM admin_user_rights WHERE user_id=$1`
	_, err := r.db.ExecContext(ctx, q, userID)
	return err
}

// DeleteRoles removes every role grant of the user.
func (r *AssignmentRepo) DeleteRoles(ctx context.Context, userID int64) error {
	const q = `DELETE FROM admin_user_roles WHERE user_id=$1`
	_, err := r.db.ExecContext(ctx, q, userID)
	return err
}

// GrantRight grants one right to the user. Granting an already held right
// is a no-op.
func (r *AssignmentRepo) GrantRight(ctx context.Context, userID int64, rightCode string) error {
	const q = `INSERT INTO admin_user_rights (user_id, right_code) VALUES ($1, $2)
		ON CONFLICT DO NOTHING`
	_, err := r.db.ExecContext(ctx, q, userID, rightCode)
	return err
}

// GrantRole grants one role to the user. Granting an already held role is
// a no-op.
func (r *AssignmentRepo) GrantRole(ctx context.Context, userID int64, roleCode string) error {
	const q = `INSERT INTO admin_user_roles (user_id, role_code) VALUES ($1, $2)
		ON CONFLICT DO NOTHING`
	_, err := r.db.ExecContext(ctx, q, userID, roleCode)
	return err
}

// AddWorkgroupMember adds the user to a workgroup. Re-adding an existing
// member is a no-op.
func (r *AssignmentRepo) AddWorkgroupMember(ctx context.Context, workgroupKey string, userID int64) error {
	const q = `INSERT INTO workgroup_members (workgroup_key, user_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING`
	_, err := r.db.ExecContext(ctx, q, workgroupKey, userID)
	return err
}
