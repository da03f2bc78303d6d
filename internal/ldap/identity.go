package ldap

import (
	"context"
	"fmt"
	"strings"
	"time"

	ldaplib "github.com/go-ldap/ldap/v3"
	"go.uber.org/zap"
)

// Identity is a directory entry reduced to the fields the import pipeline
// consumes. GUID is the canonical string form of the directory identifier
// and doubles as the user's access code.
type Identity struct {
	GUID      string
	LastName  string
	FirstName string
	Email     string
}

// SearchConfig describes how identities are located in the directory.
type SearchConfig struct {
	BaseDN         string
	Subtree        bool
	CriteriaFilter string // Filter template with {0}=last name, {1}=first name, {2}=email
	AttrGUID       string
	AttrLastName   string
	AttrFirstName  string
	AttrEmail      string
	SizeLimit      int
	TimeLimit      time.Duration
}

// DefaultSearchConfig returns search settings suitable for Active Directory.
func DefaultSearchConfig() *SearchConfig {
	return &SearchConfig{
		Subtree:        true,
		CriteriaFilter: "(&(objectClass=person)(sn={0})(givenName={1})(mail={2}))",
		AttrGUID:       "objectGUID",
		AttrLastName:   "sn",
		AttrFirstName:  "givenName",
		AttrEmail:      "mail",
		SizeLimit:      0,
		TimeLimit:      30 * time.Second,
	}
}

// IdentitySearcher resolves directory identities by search criteria.
type IdentitySearcher struct {
	client Client
	config *SearchConfig
	logger *zap.Logger
	guids  *GUIDHandler
	sids   *SIDHandler
}

// NewIdentitySearcher creates an identity searcher over an existing client.
func NewIdentitySearcher(client Client, config *SearchConfig, logger *zap.Logger) *IdentitySearcher {
	if config == nil {
		config = DefaultSearchConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IdentitySearcher{
		client: client,
		config: config,
		logger: logger,
		guids:  NewGUIDHandler(),
		sids:   NewSIDHandler(),
	}
}

// SearchByEmail returns all identities whose email attribute matches the
// given address. Callers decide how to treat zero, one, or many matches.
func (s *IdentitySearcher) SearchByEmail(ctx context.Context, email string) ([]Identity, error) {
	return s.SearchByCriteria(ctx, "", "", email)
}

// SearchByCriteria searches the directory using the configured filter
// template. Empty criteria become wildcards, so a search on email alone
// matches any last or first name.
func (s *IdentitySearcher) SearchByCriteria(ctx context.Context, lastName, firstName, email string) ([]Identity, error) {
	filter := s.formatCriteria(lastName, firstName, email)

	scope := ScopeSingleLevel
	if s.config.Subtree {
		scope = ScopeWholeSubtree
	}

	result, err := s.client.Search(ctx, &SearchRequest{
		BaseDN: s.config.BaseDN,
		Scope:  scope,
		Filter: filter,
		Attributes: []string{
			s.config.AttrGUID,
			s.config.AttrLastName,
			s.config.AttrFirstName,
			s.config.AttrEmail,
		},
		SizeLimit: s.config.SizeLimit,
		TimeLimit: s.config.TimeLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("identity search failed: %w", err)
	}

	identities := make([]Identity, 0, len(result.Entries))
	for _, entry := range result.Entries {
		identity, ok := s.entryToIdentity(entry)
		if !ok {
			continue
		}
		identities = append(identities, identity)
	}

	return identities, nil
}

// entryToIdentity maps a directory entry to an Identity. Entries without a
// usable identifier attribute are dropped; missing name or email attributes
// are logged but leave the identity usable with empty values.
func (s *IdentitySearcher) entryToIdentity(entry *ldaplib.Entry) (Identity, bool) {
	guid, err := s.extractIdentifier(entry)
	if err != nil {
		s.logger.Warn("skipping directory entry without usable identifier",
			zap.String("dn", entry.DN),
			zap.String("attribute", s.config.AttrGUID),
			zap.Error(err))
		return Identity{}, false
	}

	identity := Identity{
		GUID:      guid,
		LastName:  entry.GetAttributeValue(s.config.AttrLastName),
		FirstName: entry.GetAttributeValue(s.config.AttrFirstName),
		Email:     entry.GetAttributeValue(s.config.AttrEmail),
	}

	if identity.LastName == "" || identity.FirstName == "" {
		s.logger.Warn("directory entry has incomplete name attributes",
			zap.String("dn", entry.DN),
			zap.String("guid", identity.GUID))
	}
	if identity.Email == "" {
		s.logger.Warn("directory entry has no email attribute",
			zap.String("dn", entry.DN),
			zap.String("guid", identity.GUID))
	}

	return identity, true
}

// extractIdentifier reads the configured identifier attribute, decoding
// binary GUID and SID forms and passing other attributes through as strings.
func (s *IdentitySearcher) extractIdentifier(entry *ldaplib.Entry) (string, error) {
	switch strings.ToLower(s.config.AttrGUID) {
	case "objectguid":
		return s.guids.ExtractGUID(entry, s.config.AttrGUID)
	case "objectsid":
		return s.sids.ExtractSID(entry, s.config.AttrGUID)
	default:
		value := entry.GetAttributeValue(s.config.AttrGUID)
		if value == "" {
			return "", fmt.Errorf("attribute %s not found in entry %s", s.config.AttrGUID, entry.DN)
		}
		return value, nil
	}
}

// formatCriteria substitutes the three criteria into the filter template.
// Placeholders follow the {0}/{1}/{2} convention for last name, first name
// and email respectively. The email criterion is a prefix match, so an
// address with a trailing directory suffix still resolves.
func (s *IdentitySearcher) formatCriteria(lastName, firstName, email string) string {
	filter := s.config.CriteriaFilter
	filter = strings.ReplaceAll(filter, "{0}", checkSyntax(lastName))
	filter = strings.ReplaceAll(filter, "{1}", checkSyntax(firstName))
	filter = strings.ReplaceAll(filter, "{2}", checkSyntaxPrefix(email))
	return filter
}

// checkSyntax turns an empty criterion into a wildcard and escapes anything
// else for safe inclusion in a search filter.
func checkSyntax(in string) string {
	if strings.TrimSpace(in) == "" {
		return "*"
	}
	return ldaplib.EscapeFilter(in)
}

// checkSyntaxPrefix behaves like checkSyntax but appends a wildcard to a
// non-empty criterion, turning it into a prefix match.
func checkSyntaxPrefix(in string) string {
	if strings.TrimSpace(in) == "" {
		return "*"
	}
	return ldaplib.EscapeFilter(in) + "*"
}
