package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"water7/internal/amqp"
	"water7/internal/core"
	"water7/internal/docstore"
	"water7/internal/passcode"
	"water7/internal/reports"
)

type recordingPublisher struct {
	calls []string
	err   error
}

func (p *recordingPublisher) PublishReportExport(_ context.Context, id, action string) error {
	p.calls = append(p.calls, action+":"+id)
	return p.err
}

func testDraft() core.Draft {
	return core.Draft{
		Date:       time.Date(2025, time.March, 7, 0, 0, 0, 0, time.UTC),
		WaterSales: "100.50",
		SoapSales:  "50.25",
		Expenses:   []core.Expense{{Description: "Ice", Amount: "30"}},
	}
}

func newTestService(pub ExportPublisher) *ReportService {
	repo := reports.NewRepository(docstore.NewMemory())
	return NewReportService(repo, passcode.Static("1234"), pub)
}

func TestCreateRequiresPasscode(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	svc := newTestService(pub)

	if _, err := svc.Create(ctx, "wrong", testDraft()); !errors.Is(err, ErrPasscodeRejected) {
		t.Fatalf("expected ErrPasscodeRejected, got %v", err)
	}
	if len(pub.calls) != 0 {
		t.Fatalf("rejected create must not publish, got %v", pub.calls)
	}

	report, err := svc.Create(ctx, "1234", testDraft())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(pub.calls) != 1 || pub.calls[0] != amqp.ActionCreated+":"+report.ID {
		t.Fatalf("expected one created publish, got %v", pub.calls)
	}
}

func TestUpdateAndDeleteRequirePasscode(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	svc := newTestService(pub)

	report, err := svc.Create(ctx, "1234", testDraft())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	soap := "75"
	if _, err := svc.Update(ctx, "", report.ID, core.Patch{SoapSales: &soap}); !errors.Is(err, ErrPasscodeRejected) {
		t.Fatalf("expected ErrPasscodeRejected, got %v", err)
	}
	if err := svc.Delete(ctx, "nope", report.ID); !errors.Is(err, ErrPasscodeRejected) {
		t.Fatalf("expected ErrPasscodeRejected, got %v", err)
	}

	updated, err := svc.Update(ctx, "1234", report.ID, core.Patch{SoapSales: &soap})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.SoapSales != "75" {
		t.Fatalf("update not applied: %+v", updated)
	}

	if err := svc.Delete(ctx, "1234", report.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, report.ID); err == nil {
		t.Fatal("expected not found after delete")
	}

	want := []string{
		amqp.ActionCreated + ":" + report.ID,
		amqp.ActionUpdated + ":" + report.ID,
	}
	if len(pub.calls) != len(want) || pub.calls[0] != want[0] || pub.calls[1] != want[1] {
		t.Fatalf("publish calls = %v, want %v", pub.calls, want)
	}
}

func TestPublishFailureDoesNotFailWrite(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc := newTestService(pub)

	report, err := svc.Create(ctx, "1234", testDraft())
	if err != nil {
		t.Fatalf("create should survive a publish failure: %v", err)
	}
	if _, err := svc.Get(ctx, report.ID); err != nil {
		t.Fatalf("report should be persisted: %v", err)
	}
}

func TestNilPublisherIsAllowed(t *testing.T) {
	svc := newTestService(nil)
	if _, err := svc.Create(context.Background(), "1234", testDraft()); err != nil {
		t.Fatalf("create with nil publisher: %v", err)
	}
}

func TestReadsAreUngated(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(nil)

	report, err := svc.Create(ctx, "1234", testDraft())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	listed, err := svc.List(ctx, nil)
	if err != nil || len(listed) != 1 {
		t.Fatalf("list: %v (%d reports)", err, len(listed))
	}

	text, err := svc.SummaryText(ctx, report.ID)
	if err != nil {
		t.Fatalf("summary text: %v", err)
	}
	if !strings.HasPrefix(text, "WATER 7 REPORT") {
		t.Fatalf("unexpected summary header: %q", text)
	}
}

func TestVerifyPasscode(t *testing.T) {
	svc := newTestService(nil)
	if !svc.VerifyPasscode(context.Background(), "1234") {
		t.Error("expected correct passcode to verify")
	}
	if svc.VerifyPasscode(context.Background(), "0000") {
		t.Error("expected wrong passcode to fail")
	}
}
