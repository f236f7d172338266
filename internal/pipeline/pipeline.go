// Package pipeline runs one generation: load the sheet, derive a canonical
// record per row, then write the SQL script and the bulk-upload CSV.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/JonMunkholm/sitereg/internal/config"
	"github.com/JonMunkholm/sitereg/internal/core"
	"github.com/JonMunkholm/sitereg/internal/export"
	"github.com/JonMunkholm/sitereg/internal/logging"
	"github.com/JonMunkholm/sitereg/internal/report"
	"github.com/JonMunkholm/sitereg/internal/sheet"
	"github.com/google/uuid"
)

// ContextCheckInterval is how often to check for context cancellation.
var ContextCheckInterval = 100

// Options configures a run.
type Options struct {
	InputPath string
	Sheet     string // empty selects the first worksheet

	SQLPath string
	CSVPath string
	CSV     export.BulkCSVOptions

	Grid core.PlaceholderGrid

	// SSHTarget and Database only appear in the printed apply command.
	SSHTarget string
	Database  string

	// DryRun does everything except write the two output files.
	DryRun bool
}

// OptionsFromConfig builds run options from validated configuration.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	policy, err := export.ParseATPPolicy(cfg.Sites.CSVATPType)
	if err != nil {
		return Options{}, fmt.Errorf("%w: %v", core.ErrInvalidConfig, err)
	}

	grid := core.DefaultPlaceholderGrid
	grid.BaseLatitude = cfg.Sites.BaseLatitude
	grid.BaseLongitude = cfg.Sites.BaseLongitude

	return Options{
		InputPath: cfg.Input.Path,
		Sheet:     cfg.Input.Sheet,
		SQLPath:   cfg.Output.SQLPath,
		CSVPath:   cfg.Output.CSVPath,
		CSV: export.BulkCSVOptions{
			ATPPolicy:   policy,
			ProjectYear: cfg.Sites.ProjectYear,
		},
		Grid:      grid,
		SSHTarget: cfg.Apply.SSHTarget,
		Database:  cfg.Apply.Database,
	}, nil
}

// Result summarises a completed run.
type Result struct {
	RunID      string
	InputRows  int
	Statements int
	CSVRows    int
	SQLPath    string
	CSVPath    string
	DryRun     bool
	Duration   time.Duration
}

// Runner executes a run and reports progress to a console.
type Runner struct {
	opts        Options
	console     *report.Console
	transformer *core.Transformer
	now         func() time.Time
}

// New creates a Runner that prints progress to out.
func New(opts Options, out io.Writer) *Runner {
	return &Runner{
		opts:        opts,
		console:     report.NewConsole(out),
		transformer: core.NewTransformer(opts.Grid),
		now:         time.Now,
	}
}

// Run executes the pipeline. Any error aborts the run; files written before
// the failure are left in place.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	start := r.now()
	runID := uuid.NewString()
	ctx = logging.ContextWithRunID(ctx, runID)
	log := logging.FromContext(ctx)

	log.Info("run started",
		"input", r.opts.InputPath,
		"sheet", r.opts.Sheet,
		"dry_run", r.opts.DryRun,
	)

	tbl, err := sheet.Load(r.opts.InputPath, r.opts.Sheet)
	if err != nil {
		return nil, fmt.Errorf("load input: %w", err)
	}

	header, rows := locateHeader(tbl)
	if header.offset > 0 {
		log.Info("header found below leading rows", "skipped_rows", header.offset)
	}

	idx, err := core.ValidateHeaders(header.cells, core.SourceColumns)
	if err != nil {
		return nil, fmt.Errorf("validate %s: %w", filepath.Base(tbl.Source), err)
	}

	log.Debug("input loaded", "sheet", tbl.Sheet, "rows", len(rows), "columns", len(header.cells))

	records, err := r.canonicalize(ctx, log, rows, idx)
	if err != nil {
		return nil, err
	}

	r.console.Start(len(records))
	statements := make([]string, 0, len(records))
	for _, rec := range records {
		r.console.Row(rec)
		statements = append(statements, export.RenderInsert(export.BuildInsertParams(rec)))
	}

	synthetic := hasSyntheticCoordinates(records)
	if synthetic {
		log.Warn("site coordinates are synthetic placeholders", "rows", len(records))
	}

	if !r.opts.DryRun {
		if err := r.writeOutputs(ctx, tbl.Source, records, statements, synthetic); err != nil {
			return nil, err
		}
	}

	r.console.Summary(report.Summary{
		SQLPath:              r.opts.SQLPath,
		Statements:           len(statements),
		CSVPath:              r.opts.CSVPath,
		CSVRows:              len(records),
		SyntheticCoordinates: synthetic,
		DryRun:               r.opts.DryRun,
		SSHTarget:            r.opts.SSHTarget,
		Database:             r.opts.Database,
	})
	if err := r.console.Err(); err != nil {
		log.Warn("console output failed", "error", err)
	}

	result := &Result{
		RunID:      runID,
		InputRows:  len(rows),
		Statements: len(statements),
		CSVRows:    len(records),
		SQLPath:    r.opts.SQLPath,
		CSVPath:    r.opts.CSVPath,
		DryRun:     r.opts.DryRun,
		Duration:   r.now().Sub(start),
	}

	log.Info("run complete",
		"rows", result.InputRows,
		"statements", result.Statements,
		"duration_ms", result.Duration.Milliseconds(),
	)
	return result, nil
}

// canonicalize derives one record per data row, indexing rows in order.
func (r *Runner) canonicalize(ctx context.Context, log *slog.Logger, rows [][]string, idx core.HeaderIndex) ([]core.SiteRecord, error) {
	records := make([]core.SiteRecord, 0, len(rows))

	for i, row := range rows {
		// Check for cancellation periodically
		if i%ContextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("canonicalize rows: %w", err)
			}
		}

		rec := r.transformer.Canonicalize(core.RowFromCells(row, idx), i)
		log.Debug("row canonicalized",
			"row", rec.Ordinal(),
			"site_id", rec.NearEnd.SiteID,
			"atp_type", rec.ATPType,
		)
		records = append(records, rec)
	}

	return records, nil
}

func (r *Runner) writeOutputs(ctx context.Context, source string, records []core.SiteRecord, statements []string, synthetic bool) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("write sql script: %w", err)
	}

	hdr := export.ScriptHeader{
		Source:               filepath.Base(source),
		GeneratedAt:          r.now(),
		Total:                len(statements),
		SyntheticCoordinates: synthetic,
	}
	if err := export.WriteSQLFile(r.opts.SQLPath, hdr, statements); err != nil {
		return err
	}
	logging.WithFields(ctx, "path", r.opts.SQLPath).Info("sql script written", "statements", len(statements))

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("write bulk csv: %w", err)
	}

	if err := export.WriteBulkCSVFile(r.opts.CSVPath, records, r.opts.CSV); err != nil {
		return err
	}
	logging.WithFields(ctx, "path", r.opts.CSVPath).Info("bulk csv written",
		"rows", len(records),
		"atp_policy", string(r.opts.CSV.Policy()),
	)

	return nil
}

type headerRow struct {
	cells  []string
	offset int // non-blank rows skipped above the header
}

// locateHeader picks the header among the leading rows of tbl and returns it
// with the data rows below it. When no row holds every source column the
// first row is used, so validation reports what is missing from it.
func locateHeader(tbl *sheet.Table) (headerRow, [][]string) {
	records := make([][]string, 0, len(tbl.Rows)+1)
	records = append(records, tbl.Header)
	records = append(records, tbl.Rows...)

	at := core.FindHeaderRow(records, core.SourceColumns)
	if at < 0 {
		at = 0
	}
	return headerRow{cells: records[at], offset: at}, records[at+1:]
}

func hasSyntheticCoordinates(records []core.SiteRecord) bool {
	for _, rec := range records {
		if rec.SyntheticCoordinates {
			return true
		}
	}
	return false
}
