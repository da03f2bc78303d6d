package importer

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/isometry/ad-user-import/internal/attribute"
	"github.com/isometry/ad-user-import/internal/catalog"
)

// Dispatcher matches collected attribute tokens against the registered
// definitions, stores the resulting field values and notifies listeners.
//
// Only definitions accepting simple values are eligible. A failure to
// build or store one value is isolated: it is logged, reported with one
// generic ERROR diagnostic, and the remaining values and attributes still
// run. Listener failures are isolated the same way.
type Dispatcher struct {
	registry  *attribute.Registry
	fields    FieldStore
	delimiter string
	logger    *zap.Logger
}

func NewDispatcher(registry *attribute.Registry, fields FieldStore, delimiter string, logger *zap.Logger) *Dispatcher {
	if delimiter == "" {
		delimiter = ":"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		registry:  registry,
		fields:    fields,
		delimiter: delimiter,
		logger:    logger,
	}
}

// Dispatch stores the record's attribute values for the user. email and
// line identify the record in diagnostics; locale is handed to listeners.
func (d *Dispatcher) Dispatch(ctx context.Context, userID int64, email string, values map[int64][]string, locale string, line int, diags *Diagnostics) {
	ids := make([]int64, 0, len(values))
	for id := range values {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		def, ok := d.registry.SimpleValues(id)
		if !ok {
			d.logger.Debug("no simple-valued definition for attribute, values skipped",
				zap.Int64("attribute_id", id))
			continue
		}
		d.dispatchDefinition(ctx, def, userID, email, values[id], locale, line, diags)
	}
}

func (d *Dispatcher) dispatchDefinition(ctx context.Context, def attribute.SimpleValues, userID int64, email string, values []string, locale string, line int, diags *Diagnostics) {
	created := make([]attribute.FieldValue, 0, len(values))
	for _, raw := range values {
		subID, value := d.splitSubField(raw)
		field, err := def.BuildField(userID, subID, value)
		if err == nil {
			err = d.fields.CreateField(ctx, field)
		}
		if err != nil {
			d.logger.Warn("attribute value import failed",
				zap.Int64("attribute_id", def.ID()),
				zap.Int64("user_id", userID),
				zap.Error(err))
			diags.Error(line, catalog.KeyAttributeError, map[string]any{"Email": email})
			continue
		}
		created = append(created, field)
	}

	if attribute.IsCore(def) || len(created) == 0 {
		return
	}
	for _, listener := range d.registry.Listeners() {
		if err := listener.OnFieldsCreated(ctx, userID, created, locale); err != nil {
			d.logger.Warn("attribute listener failed",
				zap.String("listener", listener.Name()),
				zap.Int64("attribute_id", def.ID()),
				zap.Int64("user_id", userID),
				zap.Error(err))
			diags.Error(line, catalog.KeyListenerFailed, map[string]any{
				"Listener": listener.Name(),
				"Email":    email,
			})
		}
	}
}

// splitSubField recovers an optional embedded sub-field id from a value,
// as in "7:hello". Without a delimiter the whole input is the value. With
// one, the prefix is consumed either way: a numeric prefix becomes the
// sub-field id and anything else defaults to sub-field 0.
func (d *Dispatcher) splitSubField(raw string) (int64, string) {
	pos := strings.Index(raw, d.delimiter)
	if pos < 0 {
		return 0, raw
	}
	value := raw[pos+len(d.delimiter):]
	subID, err := strconv.ParseInt(raw[:pos], 10, 64)
	if err != nil {
		return 0, value
	}
	return subID, value
}
