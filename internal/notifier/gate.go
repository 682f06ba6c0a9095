package notifier

import (
	"fmt"
	"log/slog"

	"jobradar/internal/model"
)

// Gate decides whether a finished run is worth announcing and fans the
// summary out to every configured channel. Channels fail independently;
// one broken webhook never silences the others.
type Gate struct {
	threshold int
	maxJobs   int
	notifiers []model.Notifier
	logger    *slog.Logger
}

func NewGate(threshold, maxJobsInSummary int, notifiers []model.Notifier, logger *slog.Logger) *Gate {
	return &Gate{
		threshold: threshold,
		maxJobs:   maxJobsInSummary,
		notifiers: notifiers,
		logger:    logger,
	}
}

// Dispatch sends the run summary when the validated-record count meets
// the threshold. Messages inline at most maxJobs records; the rest are
// referenced through the report path. Returns an error only when every
// channel failed.
func (g *Gate) Dispatch(batch model.RunBatch, reportPath string) error {
	total := len(batch.Records)
	if total < g.threshold {
		g.logger.Info("below notification threshold, skipping dispatch",
			"records", total,
			"threshold", g.threshold)
		return nil
	}
	if len(g.notifiers) == 0 {
		g.logger.Warn("records met threshold but no notification channels are configured",
			"records", total)
		return nil
	}

	records := batch.Records
	if len(records) > g.maxJobs {
		records = records[:g.maxJobs]
	}
	summary := model.Summary{
		Records:    records,
		Total:      total,
		ReportPath: reportPath,
		StartedAt:  batch.StartedAt,
		Meta:       batch.Meta,
	}

	failures := 0
	for _, n := range g.notifiers {
		if err := n.Send(summary); err != nil {
			g.logger.Error("notification channel failed",
				"channel", n.Name(),
				"error", err)
			failures++
			continue
		}
		g.logger.Info("notification sent", "channel", n.Name(), "records", total)
	}

	if failures == len(g.notifiers) {
		return fmt.Errorf("all %d notification channels failed", failures)
	}
	return nil
}
