package importer

import (
	"context"

	"go.uber.org/zap"

	"github.com/isometry/ad-user-import/internal/ldap"
)

// Outcome classifies a directory resolution.
type Outcome int

const (
	NotFound Outcome = iota
	Unique
	Ambiguous
)

// Resolution is the result of resolving one record's email against the
// directory. Identity is set only for Unique; Count only for Ambiguous.
type Resolution struct {
	Outcome  Outcome
	Identity *ldap.Identity
	Count    int
}

// Resolver classifies directory search results for one record's email.
type Resolver struct {
	searcher *ldap.IdentitySearcher
	logger   *zap.Logger
}

func NewResolver(searcher *ldap.IdentitySearcher, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{searcher: searcher, logger: logger}
}

// Resolve searches the directory by email. A communication failure is
// logged and treated as not-found; the pipeline has no retry of its own.
// Other errors abort the run.
func (r *Resolver) Resolve(ctx context.Context, email string) (Resolution, error) {
	identities, err := r.searcher.SearchByEmail(ctx, email)
	if err != nil {
		if ldap.IsCommunicationError(err) {
			r.logger.Warn("directory unreachable, treating as not found",
				zap.String("email", email),
				zap.Error(err))
			return Resolution{Outcome: NotFound}, nil
		}
		return Resolution{}, err
	}

	switch len(identities) {
	case 0:
		return Resolution{Outcome: NotFound}, nil
	case 1:
		return Resolution{Outcome: Unique, Identity: &identities[0]}, nil
	default:
		return Resolution{Outcome: Ambiguous, Count: len(identities)}, nil
	}
}
