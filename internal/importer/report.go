package importer

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/isometry/ad-user-import/internal/catalog"
)

// Report is the outcome of one import run: counters plus the ordered
// diagnostic sequence, which is the sole user-visible record of partial
// failure.
type Report struct {
	RunID    uuid.UUID
	Records  int
	Created  int
	Updated  int
	Skipped  int
	Messages []Message
}

// Render localizes the diagnostics and formats the report for display.
func (r *Report) Render(c *catalog.Catalog, locale string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Import run %s\n", r.RunID)
	fmt.Fprintf(&b, "Records: %d, created: %d, updated: %d, skipped: %d\n",
		r.Records, r.Created, r.Updated, r.Skipped)

	for _, m := range r.Messages {
		fmt.Fprintf(&b, "%-5s line %d: %s\n", m.Level, m.Line, c.Localize(locale, m.Key, m.Args))
	}
	return b.String()
}
