// Package catalog renders diagnostic message keys into localized text.
//
// Diagnostics carry a message key plus named arguments; only rendering is
// localized. Bundles are embedded TOML files, one per language, with English
// as the fallback.
package catalog

import (
	"embed"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed messages/*.toml
var messagesFS embed.FS

// Message keys produced by the import pipeline.
const (
	KeyNoStatus       = "import.noStatus"
	KeyNoLevel        = "import.noLevel"
	KeyEmailNotFound  = "import.emailNotFound"
	KeyManyUsers      = "import.manyUsersWithEmail"
	KeyAttributeError = "import.errorImportingAttributes"
	KeyUnknownTag     = "import.unknownTag"
	KeyListenerFailed = "import.listenerFailed"
	KeyShortLine      = "import.shortLine"
	KeyUserCreated    = "import.userCreated"
	KeyUserUpdated    = "import.userUpdated"
)

// Catalog holds the loaded message bundles.
type Catalog struct {
	bundle *i18n.Bundle
}

// New loads the embedded bundles.
func New() (*Catalog, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	entries, err := messagesFS.ReadDir("messages")
	if err != nil {
		return nil, fmt.Errorf("read message bundles: %w", err)
	}
	for _, entry := range entries {
		if _, err := bundle.LoadMessageFileFS(messagesFS, "messages/"+entry.Name()); err != nil {
			return nil, fmt.Errorf("load %s: %w", entry.Name(), err)
		}
	}
	return &Catalog{bundle: bundle}, nil
}

// Localize renders a message key in the given locale. Unknown locales fall
// back to English; an unknown key renders as the key itself so a missing
// translation never hides a diagnostic.
func (c *Catalog) Localize(locale, key string, args map[string]any) string {
	localizer := i18n.NewLocalizer(c.bundle, locale)
	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: args,
	})
	if err != nil {
		return key
	}
	return msg
}
