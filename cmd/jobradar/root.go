package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"jobradar/internal/ai"
	"jobradar/internal/config"
	"jobradar/internal/extract"
	"jobradar/internal/feed"
	"jobradar/internal/model"
	"jobradar/internal/notifier"
	"jobradar/internal/ocr"
	"jobradar/internal/ratelimit"
	"jobradar/internal/retry"
	"jobradar/internal/runner"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "jobradar",
	Short: "Job-posting radar for feed sources",
	Long:  "Jobradar polls feeds for job postings, extracts structured records with OCR and an LLM, and notifies you about new ones.",
	// Default to `run` so that `jobradar` with no args performs one cycle.
	// This keeps cron entries that invoke the binary directly working.
	RunE: runRun,
}

func init() {
	// Secrets referenced as ${VAR} in the config may live in a .env file.
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: JOBRADAR_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > JOBRADAR_CONFIG env var > "./config.yaml"
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if env := os.Getenv("JOBRADAR_CONFIG"); env != "" {
			path = env
		} else {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

// buildNotifiers assembles the enabled channels, falling back to the
// log notifier when none are configured.
func buildNotifiers(cfg *config.Config, logger *slog.Logger) []model.Notifier {
	httpClient := &http.Client{Timeout: cfg.Limits.PerCallTimeout}

	var notifiers []model.Notifier
	if e := cfg.Notification.Email; e.Enabled {
		notifiers = append(notifiers, notifier.NewEmailNotifier(e.SMTPHost, e.SMTPPort, e.From, e.Password, e.To, e.AttachReport, logger))
		logger.Info("email channel enabled", "to", e.To)
	}
	if w := cfg.Notification.WeCom; w.Enabled {
		notifiers = append(notifiers, notifier.NewWeComNotifier(w.WebhookURL, w.Mentioned, httpClient, logger))
		logger.Info("wecom channel enabled")
	}
	if s := cfg.Notification.ServerChan; s.Enabled {
		notifiers = append(notifiers, notifier.NewServerChanNotifier(s.Key, httpClient, logger))
		logger.Info("serverchan channel enabled")
	}
	if len(notifiers) == 0 {
		notifiers = append(notifiers, notifier.NewLogNotifier(logger))
	}
	return notifiers
}

// reportWriter persists a finished batch; dry runs pass a nop.
type reportWriter interface {
	Write(batch model.RunBatch) (string, error)
}

// buildRunner wires the full pipeline from configuration.
func buildRunner(cfg *config.Config, led model.Ledger, archive model.Archiver, notifiers []model.Notifier, writer reportWriter, logger *slog.Logger) *runner.Runner {
	httpClient := &http.Client{Timeout: cfg.Limits.PerCallTimeout}
	limiter := ratelimit.NewHostLimiter(cfg.Limits.HostRPS, 1)

	var sources []runner.Source
	for _, f := range cfg.Feeds {
		if !f.Enabled {
			continue
		}
		sources = append(sources, runner.Source{
			Name:    f.Name,
			Fetcher: feed.NewAdapter(f.Name, f.URL, httpClient, limiter, cfg.Filters.MaxItemAge),
		})
		logger.Info("registered feed", "name", f.Name)
	}

	var recognizer model.Recognizer = ocr.NewNopRecognizer()
	if cfg.OCR.Enabled {
		ocrClient := &http.Client{Timeout: cfg.OCR.Timeout}
		recognizer = ocr.NewHTTPRecognizer(cfg.OCR.Endpoint, cfg.OCR.ConfidenceThreshold, ocrClient, limiter)
		logger.Info("ocr enabled", "endpoint", cfg.OCR.Endpoint)
	}

	aiClient := &http.Client{Timeout: cfg.AI.Timeout}
	provider := ai.NewChatProvider(cfg.AI.BaseURL, cfg.AI.APIKey, cfg.AI.Model, cfg.AI.MaxTokens, cfg.AI.Temperature, aiClient)
	extractor := ai.NewJobExtractor(provider, logger)

	policy := retry.Policy{
		MaxRetries: cfg.Limits.RetryAttempts,
		BaseDelay:  cfg.Limits.RetryBaseDelay,
		Logger:     logger,
	}
	chain := extract.NewChain(recognizer, extractor, policy, cfg.Limits.PerCallTimeout, logger)

	gate := notifier.NewGate(cfg.Notification.Threshold, cfg.Notification.MaxJobsInSummary, notifiers, logger)

	return runner.New(runner.Params{
		Sources:     sources,
		Keywords:    cfg.Keywords,
		Ledger:      led,
		Chain:       chain,
		Writer:      writer,
		Gate:        gate,
		Archive:     archive,
		RetryPolicy: policy,
		Concurrency: cfg.Limits.Concurrency,
		RunBudget:   cfg.Limits.RunBudget,
		Logger:      logger,
	})
}
