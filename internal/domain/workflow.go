package domain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/burnlist/burnlist/internal/adapter"
	"github.com/burnlist/burnlist/internal/controller"
	"github.com/burnlist/burnlist/internal/domain/rules"
	m "github.com/burnlist/burnlist/internal/model"
)

// ErrFindings is returned by Run when the report holds blocking errors.
var ErrFindings = errors.New("blocking policy violations found")

// ScanArgs selects what to scan.
type ScanArgs struct {
	Root m.Path
	// Parallel bounds the number of files scanned at once.
	Parallel int
}

// RunArgs adds output handling to a scan.
type RunArgs struct {
	ScanArgs
	Format m.Format
	// Output, when set, receives the structured report.
	Output m.Path
}

// WatchArgs configures repeated runs on file changes.
type WatchArgs struct {
	RunArgs
	Debounce time.Duration
}

// Workflow defines the linter operations exposed to the CLI.
type Workflow interface {
	Scan(ctx context.Context, args ScanArgs) (m.Report, error)
	Run(ctx context.Context, args RunArgs) error
	Rules() error
	Watch(ctx context.Context, args WatchArgs) error
	View(path m.Path, format m.Format) error
}

type workflow struct {
	fsAdapter     adapter.SourceFSAdapter
	pythonAdapter adapter.PythonFileAdapter
	xmlAdapter    adapter.XMLFileAdapter
	reportStore   adapter.ReportStore
	watcher       adapter.Watcher
	ui            controller.UI
	engine        *Engine
	verifier      Verifier
	logger        *slog.Logger
}

// NewWorkflow creates a new Workflow over the compiled-in rule tables.
func NewWorkflow(
	fsAdapter adapter.SourceFSAdapter,
	pythonAdapter adapter.PythonFileAdapter,
	javascriptAdapter adapter.JavaScriptFileAdapter,
	xmlAdapter adapter.XMLFileAdapter,
	reportStore adapter.ReportStore,
	watcher adapter.Watcher,
	ui controller.UI,
	logger *slog.Logger,
) Workflow {
	return &workflow{
		fsAdapter:     fsAdapter,
		pythonAdapter: pythonAdapter,
		xmlAdapter:    xmlAdapter,
		reportStore:   reportStore,
		watcher:       watcher,
		ui:            ui,
		engine:        NewEngine(rules.Errors(), rules.Warnings(), pythonAdapter, javascriptAdapter),
		verifier:      NewVerifier(pythonAdapter),
		logger:        logger,
	}
}

// Scan lints every source below args.Root and verifies the bypass requests.
// Files are scanned concurrently but merged in path order, so the report
// does not depend on args.Parallel.
func (w *workflow) Scan(ctx context.Context, args ScanArgs) (m.Report, error) {
	root := args.Root
	if root == "" {
		root = "."
	}

	sources, err := w.fsAdapter.Get(root)
	if err != nil {
		return m.Report{}, fmt.Errorf("collecting sources: %w", err)
	}

	w.logger.Debug("collected sources", "root", root, "count", len(sources), "parallel", args.Parallel)

	scans := make([]fileScan, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(args.Parallel, 1))

	for i, source := range sources {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			scans[i] = w.scanSource(gctx, source)

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return m.Report{}, fmt.Errorf("scanning %s: %w", root, err)
	}

	return w.buildReport(ctx, root, scans), nil
}

// buildReport merges per-file results into a fresh Session, runs the
// verification pass and totals the summary.
func (w *workflow) buildReport(ctx context.Context, root m.Path, scans []fileScan) m.Report {
	session := NewSession()
	report := m.Report{Root: root, Files: []m.FileReport{}}

	for _, scan := range scans {
		if scan.source.IsTest {
			session.AddTestContent(scan.source.Path, scan.content)
		}

		session.AddRequests(scan.requests...)

		if scan.source.Kind != m.KindOther {
			report.Summary.Files++
		}

		if len(scan.diagnostics) == 0 {
			continue
		}

		report.Files = append(report.Files, m.FileReport{Path: scan.source.Path, Diagnostics: scan.diagnostics})

		for _, d := range scan.diagnostics {
			if d.IsError() {
				report.Summary.Errors++
			} else {
				report.Summary.Warnings++
			}
		}
	}

	report.Verifications = w.verifier.Verify(ctx, session)

	for _, v := range report.Verifications {
		if v.OK {
			report.Summary.Verified++
			continue
		}

		report.Summary.Failed++
		report.Summary.Errors++
	}

	return report
}

// Run scans, saves and displays the report. It returns ErrFindings when
// the report holds blocking errors.
func (w *workflow) Run(ctx context.Context, args RunArgs) error {
	report, err := w.Scan(ctx, args.ScanArgs)
	if err != nil {
		return err
	}

	if args.Output != "" {
		if err := w.reportStore.SaveReport(args.Output, report); err != nil {
			return fmt.Errorf("saving report: %w", err)
		}

		w.logger.Debug("report saved", "path", args.Output)
	}

	if err := w.display(report, args.Format); err != nil {
		return err
	}

	if report.Failed() {
		return ErrFindings
	}

	return nil
}

func (w *workflow) display(report m.Report, format m.Format) error {
	if format == "" || format == m.FormatText {
		return w.ui.DisplayReport(report)
	}

	var buf bytes.Buffer
	if err := w.reportStore.Encode(&buf, report, format); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}

	return w.ui.DisplayDocument(buf.Bytes())
}

// Rules displays the rule tables and the syntax-tree checks.
func (w *workflow) Rules() error {
	return w.ui.DisplayRules(Catalogue(w.engine.errors, w.engine.warnings))
}

// Watch runs once, then again after every debounced batch of changes until
// ctx is cancelled. Findings never stop the loop.
func (w *workflow) Watch(ctx context.Context, args WatchArgs) error {
	if err := w.Run(ctx, args.RunArgs); err != nil && !errors.Is(err, ErrFindings) {
		return err
	}

	root := args.Root
	if root == "" {
		root = "."
	}

	return w.watcher.Watch(ctx, root, args.Debounce, func(changed []m.Path) error {
		w.ui.DisplayWatchEvent(changed)

		if err := w.Run(ctx, args.RunArgs); err != nil && !errors.Is(err, ErrFindings) {
			w.logger.Error("rescan failed", "error", err)
		}

		return nil
	})
}

// View displays a previously saved report.
func (w *workflow) View(path m.Path, format m.Format) error {
	report, err := w.reportStore.LoadReport(path)
	if err != nil {
		return fmt.Errorf("loading report: %w", err)
	}

	return w.display(report, format)
}
