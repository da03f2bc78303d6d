// Package attribute models the extensible user field types an account may
// carry values for, and the listeners notified when such values are stored.
//
// Definitions are registered in a Registry at startup. Whether a definition
// accepts plain string values is a capability (SimpleValues), not a type
// switch; composite definitions simply do not implement it and are skipped
// during import.
package attribute

import (
	"context"
	"fmt"
)

// CorePlugin is the owning-plugin name of built-in definitions. Listeners
// are only notified for definitions owned by other plugins.
const CorePlugin = "core"

// Definition is a registered extensible field type.
type Definition interface {
	// ID is the numeric identifier import tokens address the definition by.
	ID() int64

	// Title is the human-readable name of the field.
	Title() string

	// Plugin is the name of the owning plugin. Built-in definitions report
	// CorePlugin.
	Plugin() string

	// MultiValued reports whether a user may carry more than one value.
	MultiValued() bool
}

// SimpleValues is the capability of definitions that accept plain string
// values. Only definitions implementing it are eligible for import.
type SimpleValues interface {
	Definition

	// BuildField constructs one stored field value for the user. The
	// sub-field id distinguishes positions of a multi-part value and is
	// zero for plain values.
	BuildField(userID int64, subFieldID int64, value string) (FieldValue, error)
}

// FieldValue is one stored attribute value of a user.
type FieldValue struct {
	AttributeID int64
	UserID      int64
	SubFieldID  int64
	Value       string
}

// FieldListener is notified after the field values of one plugin-owned
// definition have been stored for a user.
//
// Listener failures are isolated: an error is logged and reported for the
// record, and the remaining listeners and attributes still run. A listener
// must not assume it is the only one notified.
type FieldListener interface {
	// Name identifies the listener in logs and diagnostics.
	Name() string

	// OnFieldsCreated receives the full set of fields just stored for one
	// definition, the owning user and the record's locale.
	OnFieldsCreated(ctx context.Context, userID int64, fields []FieldValue, locale string) error
}

// IsCore reports whether a definition is owned by the core system rather
// than a plugin.
func IsCore(def Definition) bool {
	return def.Plugin() == CorePlugin
}

// TextAttribute is a simple string-valued definition. MaxLength of zero
// means unbounded.
type TextAttribute struct {
	id          int64
	title       string
	plugin      string
	multiValued bool
	maxLength   int
}

// NewTextAttribute returns a text definition owned by the given plugin.
// An empty plugin name means CorePlugin.
func NewTextAttribute(id int64, title, plugin string, multiValued bool, maxLength int) *TextAttribute {
	if plugin == "" {
		plugin = CorePlugin
	}
	return &TextAttribute{
		id:          id,
		title:       title,
		plugin:      plugin,
		multiValued: multiValued,
		maxLength:   maxLength,
	}
}

func (a *TextAttribute) ID() int64         { return a.id }
func (a *TextAttribute) Title() string     { return a.title }
func (a *TextAttribute) Plugin() string    { return a.plugin }
func (a *TextAttribute) MultiValued() bool { return a.multiValued }

// BuildField implements SimpleValues.
func (a *TextAttribute) BuildField(userID int64, subFieldID int64, value string) (FieldValue, error) {
	if a.maxLength > 0 && len(value) > a.maxLength {
		return FieldValue{}, fmt.Errorf("value for attribute %d exceeds %d characters", a.id, a.maxLength)
	}
	return FieldValue{
		AttributeID: a.id,
		UserID:      userID,
		SubFieldID:  subFieldID,
		Value:       value,
	}, nil
}

// CompositeAttribute is a definition whose values are built from multiple
// coordinated inputs. It deliberately does not implement SimpleValues, so
// import tokens addressed to it are skipped.
type CompositeAttribute struct {
	id     int64
	title  string
	plugin string
}

// NewCompositeAttribute returns a composite definition owned by the given
// plugin. An empty plugin name means CorePlugin.
func NewCompositeAttribute(id int64, title, plugin string) *CompositeAttribute {
	if plugin == "" {
		plugin = CorePlugin
	}
	return &CompositeAttribute{id: id, title: title, plugin: plugin}
}

func (a *CompositeAttribute) ID() int64         { return a.id }
func (a *CompositeAttribute) Title() string     { return a.title }
func (a *CompositeAttribute) Plugin() string    { return a.plugin }
func (a *CompositeAttribute) MultiValued() bool { return true }
