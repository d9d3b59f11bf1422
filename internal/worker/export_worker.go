// Package worker turns report export messages into on-disk summary files and
// archive rows.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"water7/internal/amqp"
	"water7/internal/core"
	"water7/internal/export"
	"water7/internal/reports"
)

// ExportWorker regenerates the export artifacts for a report: the plain-text
// summary file and, when an archiver is configured, a spreadsheet row.
type ExportWorker struct {
	repo     *reports.Repository
	dir      string
	archiver export.Archiver
}

// NewExportWorker creates a worker writing summaries under dir. archiver may
// be nil when spreadsheet archiving is disabled.
func NewExportWorker(repo *reports.Repository, dir string, archiver export.Archiver) *ExportWorker {
	return &ExportWorker{
		repo:     repo,
		dir:      dir,
		archiver: archiver,
	}
}

// HandleExportMessage processes a single export message. A report that was
// deleted between publish and delivery is dropped, not retried.
func (w *ExportWorker) HandleExportMessage(ctx context.Context, msg *amqp.ReportExportMessage) error {
	slog.InfoContext(ctx, "Processing export message",
		"id", msg.ID,
		"action", msg.Action)

	report, err := w.repo.Get(ctx, msg.ID)
	if err != nil {
		var nf *reports.NotFoundError
		if errors.As(err, &nf) {
			slog.WarnContext(ctx, "Report gone before export, dropping message", "id", msg.ID)
			return nil
		}
		return fmt.Errorf("load report: %w", err)
	}

	path, err := w.writeSummary(report)
	if err != nil {
		return fmt.Errorf("write summary: %w", err)
	}

	if w.archiver != nil {
		ref, err := w.archiver.Append(ctx, report)
		if err != nil {
			return fmt.Errorf("archive report: %w", err)
		}
		slog.InfoContext(ctx, "Report archived", "id", msg.ID, "row", ref)
	}

	slog.InfoContext(ctx, "Report exported",
		"id", msg.ID,
		"file", path,
		"net_income", report.NetIncome)

	return nil
}

// writeSummary renders the shareable text summary into the export directory.
// The write goes through a temp file so readers never observe a partial file.
func (w *ExportWorker) writeSummary(report core.Report) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	path := filepath.Join(w.dir, fmt.Sprintf("report-%s.txt", report.ID))
	tmp := path + ".tmp"

	if err := os.WriteFile(tmp, []byte(core.SummaryText(report)), 0o644); err != nil {
		return "", err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", err
	}
	return path, nil
}
