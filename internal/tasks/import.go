package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/founders/internal/models"
)

// ImportStore is the persistence the importer reads and writes through.
//
// Lookups that find nothing return an error wrapping shared.ErrNotFound.
type ImportStore interface {
	FounderByEmail(email string) (*models.Founder, error)
	SaveFounder(founder *models.Founder) error
	TagByName(kind models.TagKind, name string) (*models.Tag, error)
	CreateTag(tag *models.Tag) error
	StartupByName(name string) (*models.Startup, error)
	SaveStartup(startup *models.Startup) error
}

// Transactor is an [ImportStore] that can also run a unit of work atomically.
// Writes made through the store passed to fn commit together when fn returns nil and not at all otherwise.
type Transactor interface {
	ImportStore
	Atomically(ctx context.Context, fn func(ImportStore) error) error
}

// ImportOpts configures one import batch.
type ImportOpts struct {
	DryRun bool       // Resolve and validate every row without writing anything
	Mode   DedupeMode // What to do with emails that already exist (default: update)
}

// ImportEngine runs CSV imports against a [Transactor].
//
// Rows are processed strictly in file order by a single goroutine; each row is its own unit of work,
// so one bad row never affects the others. Callers must not run two imports against the same store concurrently.
type ImportEngine struct {
	store  Transactor
	logger *log.Logger
}

// NewImportEngine creates a new ImportEngine. A nil logger discards log output.
func NewImportEngine(store Transactor, logger *log.Logger) *ImportEngine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &ImportEngine{store: store, logger: logger}
}

// errRowRejected rolls back a row whose outcome is not ok.
var errRowRejected = errors.New("row rejected")

// Import decodes data and reconciles every row.
//
// Only batch-level failures ([*DecodeError], [*SchemaError], context cancellation) are returned as errors;
// everything that goes wrong with a single row is recorded in the result's details.
func (e *ImportEngine) Import(ctx context.Context, progress chan<- ProgressUpdate, data []byte, opts ImportOpts) (*models.ImportResult, error) {
	sendProgress(progress, decodingUpdate(len(data)))

	table, err := DecodeTable(data)
	if err != nil {
		e.logger.Warn("import rejected", "error", err)
		recordBatchMetric(err, 0)
		return nil, err
	}
	sendProgress(progress, decodedUpdate(table))

	return e.ImportTable(ctx, progress, table, opts)
}

// ImportTable reconciles the rows of an already decoded table.
func (e *ImportEngine) ImportTable(ctx context.Context, progress chan<- ProgressUpdate, table *Table, opts ImportOpts) (result *models.ImportResult, err error) {
	started := time.Now()
	defer func() { recordBatchMetric(err, time.Since(started)) }()

	if opts.Mode == "" {
		opts.Mode = DedupeUpdate
	}

	logger := e.logger.With("dry_run", opts.DryRun, "mode", opts.Mode, "rows", len(table.Rows))
	logger.Info("import started", "encoding", table.Encoding)

	result = models.NewImportResult(opts.DryRun)
	rec := newReconciler(opts.DryRun, opts.Mode)

	for i, row := range table.Rows {
		if err := ctx.Err(); err != nil {
			logger.Warn("import cancelled", "processed", result.Processed)
			return result, fmt.Errorf("import cancelled after %d rows: %w", result.Processed, err)
		}

		outcome, wouldCreate := e.processRow(ctx, rec, row, opts.DryRun)
		result.Record(outcome, wouldCreate)
		recordRowMetric(outcome.Status, outcome.Action, opts.DryRun)

		logger.Debug("row processed", "row", outcome.Row, "status", outcome.Status, "action", outcome.Action, "reason", outcome.Reason)
		sendProgress(progress, rowUpdate(i+1, len(table.Rows), outcome))
	}

	logger.Info("import finished",
		"processed", result.Processed,
		"created", result.Created,
		"updated", result.Updated,
		"skipped", result.Skipped,
		"errors", result.Errors,
		"elapsed", time.Since(started).Round(time.Millisecond),
	)
	sendProgress(progress, summaryUpdate(result))
	return result, nil
}

// processRow runs one row in its own unit of work and converts any failure, including a panic, into an outcome.
func (e *ImportEngine) processRow(ctx context.Context, rec *reconciler, row Row, dryRun bool) (outcome models.RowOutcome, wouldCreate bool) {
	defer func() {
		if r := recover(); r != nil {
			rec.resolver.Discard()
			e.logger.Error("row panicked", "row", row.Number, "panic", r)
			outcome = failedRow(row, &RowError{Row: row.Number, Reason: fmt.Sprintf("unexpected failure: %v", r)})
			wouldCreate = false
		}
	}()

	run := func(store ImportStore) error {
		var err error
		outcome, wouldCreate, err = rec.reconcile(store, row)
		if err != nil {
			return err
		}
		if outcome.Status != models.StatusOK {
			return errRowRejected
		}
		return nil
	}

	var err error
	if dryRun {
		err = run(e.store)
	} else {
		err = e.store.Atomically(ctx, run)
	}

	switch {
	case err == nil:
		rec.resolver.Commit()
		if dryRun && wouldCreate {
			rec.markSeen(outcome.Email)
		}
	case errors.Is(err, errRowRejected):
		rec.resolver.Discard()
	default:
		rec.resolver.Discard()
		rowErr := &RowError{Row: row.Number, Reason: "not saved", Err: err}
		e.logger.Error("row failed", "error", rowErr)
		outcome = failedRow(row, rowErr)
		wouldCreate = false
	}
	return outcome, wouldCreate
}

func failedRow(row Row, err *RowError) models.RowOutcome {
	return models.RowOutcome{
		Row:    err.Row,
		Status: models.StatusError,
		Email:  row.Field(FieldEmail),
		Reason: err.Detail(),
	}
}
