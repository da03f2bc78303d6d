package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

// AdminUser is one persisted administrative account.
//
// AccessCode is the directory-assigned identifier linking the account to its
// directory identity. Once set from a directory resolution it is
// authoritative and is never replaced by feed-supplied data.
type AdminUser struct {
	ID            int64     `db:"id"`
	AccessCode    string    `db:"access_code"`
	LastName      string    `db:"last_name"`
	FirstName     string    `db:"first_name"`
	Email         string    `db:"email"`
	Status        int       `db:"status"`
	Locale        string    `db:"locale"`
	Level         int       `db:"level"`
	Accessibility bool      `db:"accessibility"`
	ResetPassword bool      `db:"reset_password"`
	AccountMax    time.Time `db:"account_max_valid_date"`
	LastLogin     time.Time `db:"last_login"`
}

// UserRepo provides data access for the admin_users table.
type UserRepo struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{db: db} }

// EnsureTable creates the admin_users table if not exists (idempotent).
func (r *UserRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS admin_users (
  id BIGSERIAL PRIMARY KEY,
  access_code TEXT NOT NULL,
  last_name TEXT NOT NULL,
  first_name TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  status INT NOT NULL DEFAULT 0,
  locale TEXT NOT NULL DEFAULT 'en',
  level INT NOT NULL DEFAULT 3,
  accessibility BOOLEAN NOT NULL DEFAULT false,
  reset_password BOOLEAN NOT NULL DEFAULT false,
  account_max_valid_date TIMESTAMPTZ,
  last_login TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_admin_users_email ON admin_users(email);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

// IDByEmail returns the id of the account with the given email, or false
// when no such account exists.
func (r *UserRepo) IDByEmail(ctx context.Context, email string) (int64, bool, error) {
	const q = `SELECT id FROM admin_users WHERE email=$1`
	var id int64
	if err := r.db.GetContext(ctx, &id, q, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return id, true, nil
}

// GetByID fetches a full account row.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*AdminUser, error) {
	const q = `SELECT id, access_code, last_name, first_name, email, status, locale,
		level, accessibility, reset_password, account_max_valid_date, last_login
	  FROM admin_users WHERE id=$1`
	var row AdminUser
	if err := r.db.GetContext(ctx, &row, q, id); err != nil {
		return nil, err
	}
	return &row, nil
}

// Create inserts a new account row and returns the new id.
func (r *UserRepo) Create(ctx context.Context, u *AdminUser) (int64, error) {
	const q = `INSERT INTO admin_users (access_code,last_name,first_name,email,status,locale,level,accessibility,reset_password,account_max_valid_date,last_login)
		  VALUES (:access_code,:last_name,:first_name,:email,:status,:locale,:level,:accessibility,:reset_password,:account_max_valid_date,:last_login) RETURNING id`
	rows, err := r.db.NamedQueryContext(ctx, q, u)
	if err != nil {
		return 0, err
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&u.ID); err != nil {
			return 0, err
		}
		return u.ID, nil
	}
	return 0, errors.New("no id returned")
}

// Update overwrites the mutable fields of an existing account. The access
// code is included so a directory resolution can refresh it; the id and
// creation-time fields are not touched.
func (r *UserRepo) Update(ctx context.Context, u *AdminUser) error {
	const q = `UPDATE admin_users SET access_code=:access_code, last_name=:last_name,
		first_name=:first_name, email=:email, status=:status, locale=:locale,
		level=:level, accessibility=:accessibility
	  WHERE id=:id`
	res, err := r.db.NamedExecContext(ctx, q, u)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
