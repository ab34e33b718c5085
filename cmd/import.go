package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/founders/internal/blob"
	"github.com/desertthunder/founders/internal/formatter"
	"github.com/desertthunder/founders/internal/models"
	"github.com/desertthunder/founders/internal/repositories"
	"github.com/desertthunder/founders/internal/shared"
	"github.com/desertthunder/founders/internal/tasks"
	"github.com/desertthunder/founders/internal/ui"
)

const summaryProblems = 20

// Import runs a bulk import of the file argument and prints a summary.
func (r *Runner) Import(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("file")
	if path == "" {
		return fmt.Errorf("%w: file path is required", shared.ErrMissingArgument)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	modeFlag := cmd.String("mode")
	if modeFlag == "" {
		modeFlag = r.config.Import.DedupeMode
	}
	mode, err := tasks.ParseDedupeMode(modeFlag)
	if err != nil {
		return err
	}
	opts := tasks.ImportOpts{DryRun: cmd.Bool("dry-run"), Mode: mode}

	interactive := cmd.Bool("interactive")
	if interactive {
		restore, err := r.logToFile("./tmp/founders-tui.log")
		if err != nil {
			return err
		}
		defer restore()
	}

	dir, closeDB, err := r.openDirectory()
	if err != nil {
		return err
	}
	defer closeDB()

	engine := tasks.NewImportEngine(repositories.NewImportAdapter(dir), r.logger)
	job := importJob{dir: dir, actor: cmd.String("actor"), source: filepath.Base(path), data: data, opts: opts}

	var result *models.ImportResult
	if interactive {
		result, err = r.importInteractive(ctx, engine, job)
	} else {
		result, err = r.importBatch(ctx, engine, job, !cmd.Bool("json"))
	}
	if err != nil {
		return err
	}
	if result == nil {
		r.writePlain("Import cancelled, nothing was written.\n")
		return nil
	}

	if reportPath := cmd.String("report"); reportPath != "" {
		written, err := formatter.WriteReport(result, reportPath)
		if err != nil {
			return err
		}
		r.logger.Info("report written", "path", written)
	}

	if cmd.Bool("json") {
		if err := r.writeJSON(result, true); err != nil {
			return err
		}
	} else {
		r.writePlain("\n%s\n", ui.RenderSummary(result, job.source, summaryProblems))
	}

	if cmd.Bool("fail-on-errors") && result.Errors > 0 {
		return fmt.Errorf("%d of %d rows failed", result.Errors, result.Processed)
	}
	return nil
}

// importJob is one file headed for the import engine.
type importJob struct {
	dir    *repositories.Directory
	actor  string
	source string
	data   []byte
	opts   tasks.ImportOpts
}

// importBatch runs the whole file in one pass, echoing progress when verbose.
func (r *Runner) importBatch(ctx context.Context, engine *tasks.ImportEngine, job importJob, verbose bool) (*models.ImportResult, error) {
	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.DecodeFile:
				if verbose {
					r.writePlain("📥 %s\n", update.Message)
				}
			case tasks.ReconcileRows:
				r.logger.Debug(update.Message, "step", update.Step, "total", update.Total)
			case tasks.Summarize:
				if verbose {
					r.writePlain("📝 %s\n", update.Message)
				}
			}
		}
	}()

	result, err := r.recordRun(ctx, job, func() (*models.ImportResult, error) {
		return engine.Import(ctx, progressCh, job.data, job.opts)
	})
	close(progressCh)
	<-done

	return result, err
}

// recordRun wraps fn in an [models.ImportRun] so CLI imports show up in the same history as API imports.
func (r *Runner) recordRun(ctx context.Context, job importJob, fn func() (*models.ImportResult, error)) (*models.ImportResult, error) {
	run := models.NewImportRun(job.actor, job.source, job.opts.DryRun, string(job.opts.Mode))
	if err := job.dir.ImportRuns.Create(run); err != nil {
		return nil, fmt.Errorf("failed to record import run: %w", err)
	}

	if key, err := r.archive(ctx, job.source, job.data); err != nil {
		r.logger.Warn("failed to archive upload", "run", run.ID(), "error", err)
	} else {
		run.ArchiveKey = key
	}

	result, err := fn()
	if err != nil {
		run.Fail(err)
	} else {
		run.Complete(result)
	}
	if uerr := job.dir.ImportRuns.Update(run); uerr != nil {
		r.logger.Error("failed to update import run", "run", run.ID(), "error", uerr)
	}

	if err != nil {
		return nil, err
	}
	r.logger.Info("import finished", "run", run.ID(), "processed", result.Processed, "created", result.Created,
		"updated", result.Updated, "skipped", result.Skipped, "errors", result.Errors)
	return result, nil
}

// archive copies the source file to blob storage when import.archive is on.
func (r *Runner) archive(ctx context.Context, name string, data []byte) (string, error) {
	if !r.config.Import.Archive {
		return "", nil
	}
	store, err := blob.Open(ctx, r.config.Storage)
	if err != nil {
		return "", err
	}
	info, err := store.Put(ctx, blob.ArchiveKey(name, time.Now()), bytes.NewReader(data), http.DetectContentType(data))
	if err != nil {
		return "", err
	}
	return info.Key, nil
}

// ListImports prints the import history.
func (r *Runner) ListImports(ctx context.Context, cmd *cli.Command) error {
	status := cmd.String("status")
	if status != "" && status != models.RunRunning && status != models.RunCompleted && status != models.RunFailed {
		return fmt.Errorf("%w: --status must be running, completed or failed", shared.ErrInvalidFlag)
	}

	dir, closeDB, err := r.openDirectory()
	if err != nil {
		return err
	}
	defer closeDB()

	runs, err := dir.ImportRuns.List(map[string]any{"status": status, "limit": int(cmd.Int("limit"))})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		out := make([]importRunJSON, 0, len(runs))
		for _, run := range runs {
			out = append(out, newImportRunJSON(run))
		}
		return r.writeJSON(out, true)
	}

	r.writePlainHeader(fmt.Sprintf("Import runs (%d)", len(runs)))
	for _, run := range runs {
		label := run.Status
		if run.DryRun {
			label += ", dry run"
		}
		r.writePlain("%s  %-24s %-20s [%s] processed=%d created=%d updated=%d skipped=%d errors=%d\n",
			run.CreatedAt().Local().Format("2006-01-02 15:04"), run.Source, run.Actor, label,
			run.Processed, run.Created, run.Updated, run.Skipped, run.Errors)
		if run.Error != "" {
			r.writePlain("    error: %s\n", run.Error)
		}
	}
	return nil
}

type importRunJSON struct {
	ID          string     `json:"id"`
	Actor       string     `json:"actor"`
	Source      string     `json:"source"`
	DryRun      bool       `json:"dry_run"`
	Mode        string     `json:"mode"`
	Status      string     `json:"status"`
	ArchiveKey  string     `json:"archive_key,omitempty"`
	Error       string     `json:"error,omitempty"`
	Processed   int        `json:"processed"`
	Created     int        `json:"created"`
	Updated     int        `json:"updated"`
	Skipped     int        `json:"skipped"`
	Errors      int        `json:"errors"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func newImportRunJSON(run *models.ImportRun) importRunJSON {
	return importRunJSON{
		ID: run.ID(), Actor: run.Actor, Source: run.Source, DryRun: run.DryRun, Mode: run.Mode,
		Status: run.Status, ArchiveKey: run.ArchiveKey, Error: run.Error,
		Processed: run.Processed, Created: run.Created, Updated: run.Updated, Skipped: run.Skipped, Errors: run.Errors,
		CreatedAt: run.CreatedAt(), CompletedAt: run.CompletedAt,
	}
}
