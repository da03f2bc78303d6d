package importer

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/isometry/ad-user-import/internal/ldap"
	"github.com/isometry/ad-user-import/internal/store"
)

// UserStore is the account storage surface the reconciler needs.
// *store.UserRepo satisfies it.
type UserStore interface {
	IDByEmail(ctx context.Context, email string) (int64, bool, error)
	GetByID(ctx context.Context, id int64) (*store.AdminUser, error)
	Create(ctx context.Context, u *store.AdminUser) (int64, error)
	Update(ctx context.Context, u *store.AdminUser) error
}

// Reconciler decides create-vs-update per record and persists the account.
//
// The decision comes from a local email lookup, never from the directory.
// The directory identity is authoritative for the access code on both
// paths; it must never be replaced by feed-supplied data.
type Reconciler struct {
	users          UserStore
	validityMonths int
	logger         *zap.Logger
	now            func() time.Time
}

// NewReconciler builds a reconciler. validityMonths is the system policy
// for the account-expiry timestamp of newly created accounts.
func NewReconciler(users UserStore, validityMonths int, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{
		users:          users,
		validityMonths: validityMonths,
		logger:         logger,
		now:            time.Now,
	}
}

// Reconcile persists the account for one record and reports whether it was
// created. On update, the mutable fields are overwritten with the record's
// values and the names with the directory identity's; on create, the new
// account additionally gets an unconditional password reset, an expiry date
// from policy and the parsed last-login.
func (r *Reconciler) Reconcile(ctx context.Context, fields ParsedFields, identity *ldap.Identity) (*store.AdminUser, bool, error) {
	id, exists, err := r.users.IDByEmail(ctx, fields.Email)
	if err != nil {
		return nil, false, fmt.Errorf("lookup user by email: %w", err)
	}

	if exists {
		user, err := r.users.GetByID(ctx, id)
		if err != nil {
			return nil, false, fmt.Errorf("load user %d: %w", id, err)
		}
		user.AccessCode = identity.GUID
		user.LastName = identity.LastName
		user.FirstName = identity.FirstName
		user.Email = fields.Email
		user.Status = fields.Status
		user.Locale = fields.Locale
		user.Level = fields.Level
		user.Accessibility = fields.Accessibility
		if err := r.users.Update(ctx, user); err != nil {
			return nil, false, fmt.Errorf("update user %d: %w", id, err)
		}
		r.logger.Debug("updated user",
			zap.Int64("user_id", user.ID),
			zap.String("email", user.Email))
		return user, false, nil
	}

	user := &store.AdminUser{
		AccessCode:    identity.GUID,
		LastName:      fields.LastName,
		FirstName:     fields.FirstName,
		Email:         fields.Email,
		Status:        fields.Status,
		Locale:        fields.Locale,
		Level:         fields.Level,
		Accessibility: fields.Accessibility,
		ResetPassword: true,
		AccountMax:    r.now().AddDate(0, r.validityMonths, 0),
		LastLogin:     fields.LastLogin,
	}
	if _, err := r.users.Create(ctx, user); err != nil {
		return nil, false, fmt.Errorf("create user %s: %w", fields.Email, err)
	}
	r.logger.Debug("created user",
		zap.Int64("user_id", user.ID),
		zap.String("email", user.Email))
	return user, true, nil
}
