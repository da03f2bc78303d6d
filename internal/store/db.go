// Package store is the local storage collaborator of the import pipeline:
// admin user accounts, their right/role grants, workgroup membership and
// attribute field values, backed by Postgres through sqlx.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Connect opens a *sqlx.DB and verifies connectivity with a ping.
func Connect(ctx context.Context, dsn string, maxConns int) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if maxConns <= 0 {
		maxConns = 5
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return db, nil
}

// Store bundles the repositories sharing one database handle.
type Store struct {
	DB          *sqlx.DB
	Users       *UserRepo
	Assignments *AssignmentRepo
	Fields      *FieldRepo
}

// New wraps an open database handle.
func New(db *sqlx.DB) *Store {
	return &Store{
		DB:          db,
		Users:       NewUserRepo(db),
		Assignments: NewAssignmentRepo(db),
		Fields:      NewFieldRepo(db),
	}
}

// EnsureSchema creates all tables if they do not exist (idempotent).
// This is a convenience for development and tests; prefer migrations in
// production.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if err := s.Users.EnsureTable(ctx); err != nil {
		return fmt.Errorf("users schema: %w", err)
	}
	if err := s.Assignments.EnsureTables(ctx); err != nil {
		return fmt.Errorf("assignments schema: %w", err)
	}
	if err := s.Fields.EnsureTable(ctx); err != nil {
		return fmt.Errorf("fields schema: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.DB.Close()
}
