package importer

import (
	"context"
	"fmt"

	"github.com/isometry/ad-user-import/internal/attribute"
)

// AssignmentStore is the grant storage surface the replacer needs.
// *store.AssignmentRepo satisfies it.
type AssignmentStore interface {
	DeleteRights(ctx context.Context, userID int64) error
	DeleteRoles(ctx context.Context, userID int64) error
	GrantRight(ctx context.Context, userID int64, rightCode string) error
	GrantRole(ctx context.Context, userID int64, roleCode string) error
	AddWorkgroupMember(ctx context.Context, workgroupKey string, userID int64) error
}

// FieldStore is the attribute field storage surface shared by the replacer
// and the dispatcher. *store.FieldRepo satisfies it.
type FieldStore interface {
	DeleteFields(ctx context.Context, userID int64) error
	CreateField(ctx context.Context, f attribute.FieldValue) error
}

// ReplacePolicy states, per assignment kind, whether existing assignments
// are cleared before the record's tokens are applied.
//
// Workgroup membership is additive only: workgroup storage has no
// user-scoped bulk delete, and imports must not detach a user from
// workgroups the feed does not mention. The asymmetry is a deliberate
// policy, not an omission.
type ReplacePolicy struct {
	ClearRights     bool
	ClearRoles      bool
	ClearWorkgroups bool
	ClearFields     bool
}

// DefaultReplacePolicy clears rights, roles and attribute fields, and
// leaves workgroups additive.
func DefaultReplacePolicy() ReplacePolicy {
	return ReplacePolicy{
		ClearRights:     true,
		ClearRoles:      true,
		ClearWorkgroups: false,
		ClearFields:     true,
	}
}

// Replacer replaces a user's stored assignments with a record's tokens.
type Replacer struct {
	assignments AssignmentStore
	fields      FieldStore
	policy      ReplacePolicy
}

func NewReplacer(assignments AssignmentStore, fields FieldStore, policy ReplacePolicy) *Replacer {
	return &Replacer{assignments: assignments, fields: fields, policy: policy}
}

// Replace clears the user's assignments per policy, then grants one right,
// role and workgroup membership per collected token, in token order. Any
// storage failure aborts the record; partial right/role replacement is not
// acceptable.
func (r *Replacer) Replace(ctx context.Context, userID int64, tokens Tokens) error {
	if r.policy.ClearRights {
		if err := r.assignments.DeleteRights(ctx, userID); err != nil {
			return fmt.Errorf("delete rights of user %d: %w", userID, err)
		}
	}
	if r.policy.ClearRoles {
		if err := r.assignments.DeleteRoles(ctx, userID); err != nil {
			return fmt.Errorf("delete roles of user %d: %w", userID, err)
		}
	}
	if r.policy.ClearFields {
		if err := r.fields.DeleteFields(ctx, userID); err != nil {
			return fmt.Errorf("delete attribute fields of user %d: %w", userID, err)
		}
	}

	for _, right := range tokens.Rights {
		if err := r.assignments.GrantRight(ctx, userID, right); err != nil {
			return fmt.Errorf("grant right %q to user %d: %w", right, userID, err)
		}
	}
	for _, role := range tokens.Roles {
		if err := r.assignments.GrantRole(ctx, userID, role); err != nil {
			return fmt.Errorf("grant role %q to user %d: %w", role, userID, err)
		}
	}
	for _, workgroup := range tokens.Workgroups {
		if err := r.assignments.AddWorkgroupMember(ctx, workgroup, userID); err != nil {
			return fmt.Errorf("add user %d to workgroup %q: %w", userID, workgroup, err)
		}
	}
	return nil
}
