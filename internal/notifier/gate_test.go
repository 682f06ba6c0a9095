package notifier

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"jobradar/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recordingNotifier captures the summaries it was asked to send.
type recordingNotifier struct {
	name      string
	err       error
	summaries []model.Summary
}

func (r *recordingNotifier) Name() string { return r.name }

func (r *recordingNotifier) Send(s model.Summary) error {
	r.summaries = append(r.summaries, s)
	return r.err
}

func record(company, title string) model.JobRecord {
	return model.JobRecord{Company: company, Title: title}
}

func batchOf(records ...model.JobRecord) model.RunBatch {
	return model.RunBatch{
		RunID:     "run-1",
		StartedAt: time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC),
		Records:   records,
	}
}

func TestDispatch_BelowThresholdSkips(t *testing.T) {
	channel := &recordingNotifier{name: "a"}
	gate := NewGate(3, 5, []model.Notifier{channel}, discardLogger())

	batch := batchOf(record("c1", "t1"), record("c2", "t2"))
	if err := gate.Dispatch(batch, "r.json"); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if len(channel.summaries) != 0 {
		t.Errorf("expected no sends below threshold, got %d", len(channel.summaries))
	}
}

func TestDispatch_AtThresholdSends(t *testing.T) {
	channel := &recordingNotifier{name: "a"}
	gate := NewGate(3, 5, []model.Notifier{channel}, discardLogger())

	batch := batchOf(record("c1", "t1"), record("c2", "t2"), record("c3", "t3"))
	if err := gate.Dispatch(batch, "r.json"); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if len(channel.summaries) != 1 {
		t.Fatalf("expected 1 send, got %d", len(channel.summaries))
	}
	s := channel.summaries[0]
	if s.Total != 3 || len(s.Records) != 3 {
		t.Errorf("summary total=%d records=%d", s.Total, len(s.Records))
	}
	if s.ReportPath != "r.json" {
		t.Errorf("report path = %q", s.ReportPath)
	}
}

func TestDispatch_TruncatesToMaxJobs(t *testing.T) {
	channel := &recordingNotifier{name: "a"}
	gate := NewGate(1, 2, []model.Notifier{channel}, discardLogger())

	batch := batchOf(
		record("c1", "t1"), record("c2", "t2"),
		record("c3", "t3"), record("c4", "t4"),
	)
	if err := gate.Dispatch(batch, ""); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	s := channel.summaries[0]
	if len(s.Records) != 2 {
		t.Errorf("inlined records = %d, want 2", len(s.Records))
	}
	if s.Total != 4 {
		t.Errorf("total = %d, want 4", s.Total)
	}
	if s.Records[0].Company != "c1" || s.Records[1].Company != "c2" {
		t.Errorf("truncation must keep leading records: %+v", s.Records)
	}
}

func TestDispatch_OneFailingChannelDoesNotBlockOthers(t *testing.T) {
	failing := &recordingNotifier{name: "bad", err: errors.New("boom")}
	working := &recordingNotifier{name: "good"}
	gate := NewGate(1, 5, []model.Notifier{failing, working}, discardLogger())

	if err := gate.Dispatch(batchOf(record("c", "t")), ""); err != nil {
		t.Fatalf("partial failure should not surface: %v", err)
	}
	if len(working.summaries) != 1 {
		t.Errorf("working channel never received the summary")
	}
}

func TestDispatch_AllChannelsFailing(t *testing.T) {
	a := &recordingNotifier{name: "a", err: errors.New("boom")}
	b := &recordingNotifier{name: "b", err: errors.New("boom")}
	gate := NewGate(1, 5, []model.Notifier{a, b}, discardLogger())

	if err := gate.Dispatch(batchOf(record("c", "t")), ""); err == nil {
		t.Fatal("expected error when every channel fails")
	}
}

func TestDispatch_NoChannelsConfigured(t *testing.T) {
	gate := NewGate(1, 5, nil, discardLogger())
	if err := gate.Dispatch(batchOf(record("c", "t")), ""); err != nil {
		t.Fatalf("no channels should be a no-op, got %v", err)
	}
}
