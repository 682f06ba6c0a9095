package notifier

import (
	"log/slog"

	"jobradar/internal/model"
)

// Ensure LogNotifier implements model.Notifier.
var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes the summary to the logger. Used as the default
// channel when nothing else is configured, and by dry runs.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Name() string { return "log" }

func (n *LogNotifier) Send(s model.Summary) error {
	n.logger.Info("run summary",
		"total", s.Total,
		"shown", len(s.Records),
		"report", s.ReportPath)
	for _, r := range s.Records {
		n.logger.Info("new job",
			"company", r.Company,
			"title", r.Title,
			"location", r.Location,
			"salary", salaryLine(r),
			"source", r.Source)
	}
	return nil
}
