// Package runner orchestrates the export: open the container, flatten it,
// close it, then export every item. Execution is single-threaded and
// strictly two-phase; per-item failures are collected, only container and
// output-root failures abort the run.
package runner

import (
	"fmt"
	"log/slog"
	"path"

	"github.com/pterm/pterm"

	"github.com/dhcgn/pst-exporter/config"
	"github.com/dhcgn/pst-exporter/export"
	"github.com/dhcgn/pst-exporter/filter"
	"github.com/dhcgn/pst-exporter/mailstore"
	"github.com/dhcgn/pst-exporter/model"
	"github.com/dhcgn/pst-exporter/normalize"
	"github.com/dhcgn/pst-exporter/progress"
	"github.com/dhcgn/pst-exporter/stats"
	"github.com/dhcgn/pst-exporter/traverse"
)

const previewLimit = 10

// OpenFunc opens the archive container at a path.
type OpenFunc func(path string) (mailstore.Store, error)

type Runner struct {
	cfg    config.Config
	logger *slog.Logger
	open   OpenFunc
	flt    *filter.Filter
}

func New(cfg config.Config, logger *slog.Logger) (*Runner, error) {
	return NewWithOpener(cfg, logger, mailstore.Open)
}

// NewWithOpener wires a custom container opener; tests use it to run
// against an in-memory mailstore.
func NewWithOpener(cfg config.Config, logger *slog.Logger, open OpenFunc) (*Runner, error) {
	flt, err := filter.New(filter.Options{
		IncludeSubject: cfg.IncludeSubject,
		IncludeFolder:  cfg.IncludeFolder,
		IncludeBody:    cfg.IncludeBody,
		ExcludeSubject: cfg.ExcludeSubject,
		ExcludeFolder:  cfg.ExcludeFolder,
		ExcludeBody:    cfg.ExcludeBody,
	})
	if err != nil {
		return nil, fmt.Errorf("filter: %w", err)
	}

	return &Runner{cfg: cfg, logger: logger, open: open, flt: flt}, nil
}

// Run executes the pipeline and returns the aggregated summary. A nil
// error is the run's success signal; per-item failures only show up in
// the summary counts and outcomes.
func (r *Runner) Run() (stats.Summary, []model.Outcome, error) {
	collector := stats.NewCollector()

	items, err := r.collect(collector)
	if err != nil {
		return collector.Snapshot(), nil, err
	}

	r.logger.Info("traversal complete", "items", len(items))

	if r.cfg.DryRun {
		r.preview(items, collector)
		return collector.Snapshot(), nil, nil
	}

	outcomes, err := r.export(items, collector)
	if err != nil {
		return collector.Snapshot(), outcomes, err
	}

	summary := collector.Snapshot()
	r.logger.Info("export summary", summary.LogAttrs()...)
	return summary, outcomes, nil
}

// collect opens the container, flattens it and closes it again. Export
// never touches the container afterwards.
func (r *Runner) collect(collector *stats.Collector) ([]model.Item, error) {
	store, err := r.open(r.cfg.InputPath)
	if err != nil {
		return nil, fmt.Errorf("open mailstore: %w", err)
	}

	root, err := store.RootFolder()
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("mailstore root: %w", err)
	}

	items, err := traverse.Extract(root)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("traverse mailstore: %w", err)
	}

	if err := store.Close(); err != nil {
		return nil, fmt.Errorf("close mailstore: %w", err)
	}

	for _, item := range items {
		collector.Apply(stats.Event{Stage: stats.StageTraverse, Type: stats.EventTypeDiscovered, FolderPath: item.FolderPath})
	}
	return items, nil
}

// preview prints the filenames the first items would produce. Nothing is
// written; normalization still runs so the preview shows real names.
func (r *Runner) preview(items []model.Item, collector *stats.Collector) {
	pterm.Info.Printf("Dry run - files that would be created:\n")

	for i, item := range items {
		if i >= previewLimit {
			break
		}
		n := normalize.Normalize(item.Message)
		base := export.FileBaseName(n)
		if r.cfg.WantEML() {
			pterm.Printf("  %s\n", previewPath(item.FolderPath, base, "eml"))
		}
		if r.cfg.WantPDF() {
			pterm.Printf("  %s\n", previewPath(item.FolderPath, base, "pdf"))
		}
		collector.Apply(stats.Event{Stage: stats.StageExport, Type: stats.EventTypeDryRun, FolderPath: item.FolderPath, Subject: n.Subject})
	}

	if len(items) > previewLimit {
		pterm.Printf("  ... and %d more emails\n", len(items)-previewLimit)
	}
}

// previewPath renders the display-only dry-run name. Folder paths are
// slash-joined on every platform, matching the exported layout.
func previewPath(folderPath, base, ext string) string {
	return path.Join(folderPath, base+"."+ext)
}

func (r *Runner) export(items []model.Item, collector *stats.Collector) ([]model.Outcome, error) {
	saver := export.NewSaver(r.cfg.OutputDir)
	if err := saver.EnsureRoot(); err != nil {
		return nil, err
	}

	bar := progress.New(len(items), r.cfg.LogLevel)
	defer bar.Stop()

	outcomes := make([]model.Outcome, 0, len(items))
	for i, item := range items {
		outcome := r.exportItem(saver, i, item, collector)
		outcomes = append(outcomes, outcome)

		switch {
		case outcome.Err != nil:
			evt := stats.Event{Stage: stats.StageExport, Type: stats.EventTypeError, FolderPath: item.FolderPath, Subject: outcome.Subject, Err: outcome.Err}
			collector.Apply(evt)
			bar.Update(evt)
			r.logger.Error("item skipped", "folder", item.FolderPath, "subject", outcome.Subject, "err", outcome.Err)
		case outcome.Filtered:
			evt := stats.Event{Stage: stats.StageExport, Type: stats.EventTypeFiltered, FolderPath: item.FolderPath, Subject: outcome.Subject}
			collector.Apply(evt)
			bar.Update(evt)
			r.logger.Debug("item filtered", "folder", item.FolderPath, "subject", outcome.Subject)
		default:
			evt := stats.Event{Stage: stats.StageExport, Type: stats.EventTypeExported, FolderPath: item.FolderPath, Subject: outcome.Subject}
			collector.Apply(evt)
			bar.Update(evt)
			r.logger.Debug("item exported", "folder", item.FolderPath, "subject", outcome.Subject)
		}
	}

	return outcomes, nil
}

// exportItem handles a single item end to end. Attachment failures are
// reported per attachment and never fail the item.
func (r *Runner) exportItem(saver *export.Saver, index int, item model.Item, collector *stats.Collector) model.Outcome {
	outcome := model.Outcome{Index: index, FolderPath: item.FolderPath}

	n := normalize.Normalize(item.Message)
	outcome.Subject = n.Subject

	if r.flt.Active() && !r.flt.Allows(n.Subject, item.FolderPath, n.Body) {
		outcome.Filtered = true
		return outcome
	}

	dir, err := saver.EnsureFolder(item.FolderPath)
	if err != nil {
		outcome.Err = err
		return outcome
	}

	if r.cfg.WantEML() {
		if _, err := saver.SaveEML(n, dir); err != nil {
			outcome.Err = err
			return outcome
		}
	}
	if r.cfg.WantPDF() {
		if _, err := saver.SavePDF(n, dir); err != nil {
			outcome.Err = err
			return outcome
		}
	}

	r.exportAttachments(saver, item, collector)
	return outcome
}

func (r *Runner) exportAttachments(saver *export.Saver, item model.Item, collector *stats.Collector) {
	count := item.Message.AttachmentCount()
	if count == 0 {
		return
	}

	attachmentsDir, err := saver.EnsureFolder(path.Join(item.FolderPath, "attachments"))
	if err != nil {
		r.logger.Warn("attachments folder", "folder", item.FolderPath, "err", err)
		return
	}

	for i := 0; i < count; i++ {
		att, err := item.Message.Attachment(i)
		if err != nil {
			r.logger.Warn("attachment unavailable", "folder", item.FolderPath, "index", i, "err", err)
			continue
		}
		if _, err := saver.SaveAttachment(att, i, attachmentsDir); err != nil {
			r.logger.Warn("attachment not saved", "folder", item.FolderPath, "index", i, "err", err)
			continue
		}
		collector.Apply(stats.Event{Stage: stats.StageExport, Type: stats.EventTypeAttachment, FolderPath: item.FolderPath})
	}
}
