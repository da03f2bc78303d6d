package importer

import (
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/isometry/ad-user-import/internal/catalog"
)

// Fixed column positions of one feed record. Columns beyond colLastLogin
// are free-form tagged tokens.
const (
	colLastName = iota
	colFirstName
	colEmail
	colStatus
	colLocale
	colLevel
	colResetPassword // reserved, ignored
	colAccessibility
	colPasswordMaxDate // reserved, ignored
	colAccountMaxDate  // reserved, ignored
	colLastLogin
	colFirstToken
)

// MinColumns is the minimum field count of a processable record.
const MinColumns = 9

const (
	// DefaultStatus is substituted when the status column is absent or not
	// numeric.
	DefaultStatus = 0
	// DefaultLevel is substituted when the level column is absent or not
	// numeric.
	DefaultLevel = 3
)

// DefaultLastLogin is substituted when the last-login column is blank or
// unparseable.
var DefaultLastLogin = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)

// lastLoginLayouts are tried in order when parsing the last-login column.
var lastLoginLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"02/01/2006",
}

// Reserved token tags, compared case-insensitively.
const (
	tagRight     = "right"
	tagRole      = "role"
	tagWorkgroup = "workgroup"
)

// ParsedFields are the typed scalar fields of one record.
type ParsedFields struct {
	LastName      string
	FirstName     string
	Email         string
	Status        int
	Locale        string
	Level         int
	Accessibility bool
	LastLogin     time.Time
}

// Tokens are the assignment tokens of one record, collected in feed order.
// Attribute values are keyed by attribute id; one id may carry several
// values.
type Tokens struct {
	Rights     []string
	Roles      []string
	Workgroups []string
	Attributes map[int64][]string
}

// Extractor decodes one record's raw field sequence into typed fields and
// assignment tokens.
type Extractor struct {
	delimiter string
	logger    *zap.Logger
}

// NewExtractor returns an extractor splitting tokens on the given delimiter.
func NewExtractor(delimiter string, logger *zap.Logger) *Extractor {
	if delimiter == "" {
		delimiter = ":"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{delimiter: delimiter, logger: logger}
}

// Extract parses one record. Malformed status and level columns fall back
// to their defaults with an INFO diagnostic naming the record's email;
// unrecognized token tags are dropped with an INFO diagnostic.
func (e *Extractor) Extract(fields []string, line int, diags *Diagnostics) (ParsedFields, Tokens) {
	parsed := ParsedFields{
		LastName:  field(fields, colLastName),
		FirstName: field(fields, colFirstName),
		Email:     field(fields, colEmail),
		Locale:    field(fields, colLocale),
	}

	parsed.Status = e.parseIntColumn(field(fields, colStatus), DefaultStatus,
		catalog.KeyNoStatus, parsed.Email, line, diags)
	parsed.Level = e.parseIntColumn(field(fields, colLevel), DefaultLevel,
		catalog.KeyNoLevel, parsed.Email, line, diags)

	// Any value other than a literal "true" means false.
	parsed.Accessibility = strings.EqualFold(field(fields, colAccessibility), "true")

	parsed.LastLogin = e.parseLastLogin(field(fields, colLastLogin), parsed.Email)

	tokens := Tokens{Attributes: make(map[int64][]string)}
	for i := colFirstToken; i < len(fields); i++ {
		e.collectToken(fields[i], &tokens, line, diags)
	}
	return parsed, tokens
}

// parseIntColumn accepts only non-empty all-digit values; anything else
// yields the default plus one INFO diagnostic.
func (e *Extractor) parseIntColumn(raw string, def int, key, email string, line int, diags *Diagnostics) int {
	if isDigits(raw) {
		v, err := strconv.Atoi(raw)
		if err == nil {
			return v
		}
	}
	diags.Info(line, key, map[string]any{"Email": email, "Default": def})
	return def
}

func (e *Extractor) parseLastLogin(raw, email string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultLastLogin
	}
	for _, layout := range lastLoginLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	e.logger.Debug("unparseable last-login, using default",
		zap.String("value", raw),
		zap.String("email", email))
	return DefaultLastLogin
}

// collectToken splits a trailing field at the first delimiter into
// (tag, value). Fields without a delimiter, or with nothing before it, are
// not tokens and are skipped.
func (e *Extractor) collectToken(raw string, tokens *Tokens, line int, diags *Diagnostics) {
	pos := strings.Index(raw, e.delimiter)
	if pos <= 0 {
		return
	}
	tag := raw[:pos]
	value := raw[pos+len(e.delimiter):]

	switch strings.ToLower(tag) {
	case tagRight:
		tokens.Rights = append(tokens.Rights, value)
	case tagRole:
		tokens.Roles = append(tokens.Roles, value)
	case tagWorkgroup:
		tokens.Workgroups = append(tokens.Workgroups, value)
	default:
		id, err := strconv.ParseInt(tag, 10, 64)
		if err != nil {
			diags.Info(line, catalog.KeyUnknownTag, map[string]any{"Tag": tag})
			return
		}
		tokens.Attributes[id] = append(tokens.Attributes[id], value)
	}
}

func field(fields []string, i int) string {
	if i < len(fields) {
		return fields[i]
	}
	return ""
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
