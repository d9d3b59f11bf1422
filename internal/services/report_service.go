// Package services orchestrates report operations across the repository,
// the passcode gate and the export queue.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"water7/internal/amqp"
	"water7/internal/core"
	"water7/internal/passcode"
	"water7/internal/reports"
)

// ErrPasscodeRejected is returned when a mutation is attempted without a
// valid passcode.
var ErrPasscodeRejected = errors.New("passcode rejected")

// ExportPublisher enqueues export work for a report. *amqp.Client satisfies it.
type ExportPublisher interface {
	PublishReportExport(ctx context.Context, id, action string) error
}

// ReportService gates mutations behind the shared passcode and publishes
// export messages after successful writes. Reads are ungated.
type ReportService struct {
	repo      *reports.Repository
	verifier  passcode.Verifier
	publisher ExportPublisher
}

// NewReportService wires the service. publisher may be nil when the export
// pipeline is disabled.
func NewReportService(repo *reports.Repository, verifier passcode.Verifier, publisher ExportPublisher) *ReportService {
	return &ReportService{
		repo:      repo,
		verifier:  verifier,
		publisher: publisher,
	}
}

// VerifyPasscode reports whether the candidate unlocks mutations.
func (s *ReportService) VerifyPasscode(ctx context.Context, candidate string) bool {
	return s.verifier.Verify(ctx, candidate)
}

// List returns reports newest first, optionally restricted to one month.
func (s *ReportService) List(ctx context.Context, filter *reports.MonthFilter) ([]core.Report, error) {
	return s.repo.List(ctx, filter)
}

// Get returns a single report.
func (s *ReportService) Get(ctx context.Context, id string) (core.Report, error) {
	return s.repo.Get(ctx, id)
}

// SummaryText renders the shareable plain-text summary of a report.
func (s *ReportService) SummaryText(ctx context.Context, id string) (string, error) {
	report, err := s.repo.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return core.SummaryText(report), nil
}

// Create persists a new report and asks the export worker to pick it up.
func (s *ReportService) Create(ctx context.Context, pass string, draft core.Draft) (core.Report, error) {
	if !s.verifier.Verify(ctx, pass) {
		return core.Report{}, ErrPasscodeRejected
	}

	report, err := s.repo.Create(ctx, draft)
	if err != nil {
		return core.Report{}, fmt.Errorf("create report: %w", err)
	}

	s.publishExport(ctx, report.ID, amqp.ActionCreated)
	return report, nil
}

// Update applies a partial patch to an existing report.
func (s *ReportService) Update(ctx context.Context, pass, id string, patch core.Patch) (core.Report, error) {
	if !s.verifier.Verify(ctx, pass) {
		return core.Report{}, ErrPasscodeRejected
	}

	report, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return core.Report{}, err
	}

	s.publishExport(ctx, report.ID, amqp.ActionUpdated)
	return report, nil
}

// Delete removes a report permanently.
func (s *ReportService) Delete(ctx context.Context, pass, id string) error {
	if !s.verifier.Verify(ctx, pass) {
		return ErrPasscodeRejected
	}
	return s.repo.Delete(ctx, id)
}

// publishExport is best effort. The report is already persisted, so a broker
// failure must not fail the request.
func (s *ReportService) publishExport(ctx context.Context, id, action string) {
	if s.publisher == nil {
		slog.WarnContext(ctx, "Export publisher not available, skipping message", "id", id)
		return
	}
	if err := s.publisher.PublishReportExport(ctx, id, action); err != nil {
		slog.ErrorContext(ctx, "Failed to publish export message",
			"id", id,
			"action", action,
			"error", err)
	}
}
