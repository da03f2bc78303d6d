package importer

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/isometry/ad-user-import/internal/catalog"
	"github.com/isometry/ad-user-import/internal/feed"
)

// Runner drives one import run, record by record. Records are processed
// strictly sequentially; the delete-then-recreate replacement is not safe
// under concurrent access to the same user. The runner owns its directory
// client handle for the duration of the run; concurrent runs each build
// their own.
type Runner struct {
	extractor  *Extractor
	resolver   *Resolver
	reconciler *Reconciler
	replacer   *Replacer
	dispatcher *Dispatcher
	locale     string
	logger     *zap.Logger
}

func NewRunner(extractor *Extractor, resolver *Resolver, reconciler *Reconciler, replacer *Replacer, dispatcher *Dispatcher, locale string, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		extractor:  extractor,
		resolver:   resolver,
		reconciler: reconciler,
		replacer:   replacer,
		dispatcher: dispatcher,
		locale:     locale,
		logger:     logger,
	}
}

// Run processes every record and returns the report. The run completes as
// many records as possible: per-record skips and per-value attribute
// failures surface as diagnostics. Only storage failures during user
// persistence or assignment replacement abort the run.
func (r *Runner) Run(ctx context.Context, records []feed.Record) (*Report, error) {
	report := &Report{RunID: uuid.New()}
	diags := NewDiagnostics()

	for _, record := range records {
		report.Records++
		if err := r.processRecord(ctx, record, diags, report); err != nil {
			return nil, fmt.Errorf("line %d: %w", record.Line, err)
		}
	}

	report.Messages = diags.Messages()
	r.logger.Info("import run finished",
		zap.String("run_id", report.RunID.String()),
		zap.Int("records", report.Records),
		zap.Int("created", report.Created),
		zap.Int("updated", report.Updated),
		zap.Int("skipped", report.Skipped))
	return report, nil
}

func (r *Runner) processRecord(ctx context.Context, record feed.Record, diags *Diagnostics, report *Report) error {
	if len(record.Fields) < MinColumns {
		diags.Error(record.Line, catalog.KeyShortLine, map[string]any{
			"Columns": len(record.Fields),
			"Minimum": MinColumns,
		})
		report.Skipped++
		return nil
	}

	fields, tokens := r.extractor.Extract(record.Fields, record.Line, diags)

	resolution, err := r.resolver.Resolve(ctx, fields.Email)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", fields.Email, err)
	}
	switch resolution.Outcome {
	case NotFound:
		diags.Error(record.Line, catalog.KeyEmailNotFound, map[string]any{"Email": fields.Email})
		report.Skipped++
		return nil
	case Ambiguous:
		diags.Error(record.Line, catalog.KeyManyUsers, map[string]any{
			"Email": fields.Email,
			"Count": resolution.Count,
		})
		report.Skipped++
		return nil
	}

	user, created, err := r.reconciler.Reconcile(ctx, fields, resolution.Identity)
	if err != nil {
		return err
	}
	if created {
		report.Created++
		diags.Info(record.Line, catalog.KeyUserCreated, map[string]any{"Email": user.Email})
	} else {
		report.Updated++
		diags.Info(record.Line, catalog.KeyUserUpdated, map[string]any{"Email": user.Email})
	}

	if err := r.replacer.Replace(ctx, user.ID, tokens); err != nil {
		return err
	}

	r.dispatcher.Dispatch(ctx, user.ID, user.Email, tokens.Attributes, r.locale, record.Line, diags)
	return nil
}
