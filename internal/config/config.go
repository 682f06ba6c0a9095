package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the jobradar pipeline.
type Config struct {
	Feeds         []FeedConfig
	Keywords      []string
	Filters       FilterConfig
	OCR           OCRConfig
	AI            AIConfig
	Notification  NotificationConfig
	Limits        LimitsConfig
	Paths         PathsConfig
	WatchInterval time.Duration
}

// FeedConfig describes a single feed source to monitor.
type FeedConfig struct {
	Name    string `yaml:"name"`
	URL     string `yaml:"url"`
	Enabled bool   `yaml:"enabled"`
}

// FilterConfig holds item-level filter settings applied before extraction.
type FilterConfig struct {
	MaxItemAge time.Duration // items published earlier than this are ignored
}

// OCRConfig controls the image-text recognition stage.
type OCRConfig struct {
	Enabled             bool
	Endpoint            string // OCR serving endpoint, e.g. a PaddleOCR HTTP server
	ConfidenceThreshold float64
	Timeout             time.Duration
}

// AIConfig controls the structured-extraction LLM backend.
type AIConfig struct {
	BaseURL     string // defaults to the DeepSeek API
	Model       string
	APIKey      string // expanded from env var by Load
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// NotificationConfig controls gating and the individual channels.
type NotificationConfig struct {
	Threshold        int // minimum validated records before any dispatch
	MaxJobsInSummary int // records inlined per message; remainder via report link
	Email            EmailConfig
	WeCom            WeComConfig
	ServerChan       ServerChanConfig
}

// EmailConfig configures the SMTP channel.
type EmailConfig struct {
	Enabled      bool     `yaml:"enabled"`
	SMTPHost     string   `yaml:"smtp_host"`
	SMTPPort     int      `yaml:"smtp_port"`
	From         string   `yaml:"from"`
	Password     string   `yaml:"password"`
	To           []string `yaml:"to"`
	AttachReport bool     `yaml:"attach_report"`
}

// WeComConfig configures the WeCom group-robot webhook channel.
type WeComConfig struct {
	Enabled    bool     `yaml:"enabled"`
	WebhookURL string   `yaml:"webhook_url"`
	Mentioned  []string `yaml:"mentioned"`
}

// ServerChanConfig configures the ServerChan push channel.
type ServerChanConfig struct {
	Enabled bool   `yaml:"enabled"`
	Key     string `yaml:"key"`
}

// LimitsConfig bounds external calls and the run as a whole.
type LimitsConfig struct {
	PerCallTimeout time.Duration
	RunBudget      time.Duration // wall-clock budget; expiry stops admitting items
	Concurrency    int           // extraction worker pool size
	RetryAttempts  int           // additional attempts after the first failure
	RetryBaseDelay time.Duration
	HostRPS        float64 // outbound requests per second per host
}

// PathsConfig locates the cross-run state and run artifacts.
type PathsConfig struct {
	Ledger     string `yaml:"ledger"`
	ReportsDir string `yaml:"reports_dir"`
	ArchiveDB  string `yaml:"archive_db"`
}

const defaultDeepSeekBaseURL = "https://api.deepseek.com"

// defaultKeywords is the job-relevance prefilter applied before the AI
// stage. Items whose title and body contain none of these are skipped.
var defaultKeywords = []string{
	"招聘", "求职", "职位", "岗位", "面试", "简历", "应聘",
	"薪资", "工资", "待遇", "全职", "兼职", "实习",
	"hiring", "job", "position", "vacancy", "recruit",
}

// rawConfig is used for YAML unmarshaling (snake_case fields, durations as strings).
type rawConfig struct {
	Feeds         []FeedConfig     `yaml:"feeds"`
	Keywords      []string         `yaml:"keywords"`
	Filters       rawFilterConfig  `yaml:"filters"`
	OCR           rawOCRConfig     `yaml:"ocr"`
	AI            rawAIConfig      `yaml:"ai"`
	Notification  rawNotifyConfig  `yaml:"notification"`
	Limits        rawLimitsConfig  `yaml:"limits"`
	Paths         PathsConfig      `yaml:"paths"`
	WatchInterval string           `yaml:"watch_interval"`
}

type rawFilterConfig struct {
	MaxItemAge string `yaml:"max_item_age"`
}

type rawOCRConfig struct {
	Enabled             bool     `yaml:"enabled"`
	Endpoint            string   `yaml:"endpoint"`
	ConfidenceThreshold *float64 `yaml:"confidence_threshold"`
	Timeout             string   `yaml:"timeout"`
}

type rawAIConfig struct {
	BaseURL     string   `yaml:"base_url"`
	Model       string   `yaml:"model"`
	APIKey      string   `yaml:"api_key"`
	MaxTokens   int      `yaml:"max_tokens"`
	Temperature *float64 `yaml:"temperature"`
	Timeout     string   `yaml:"timeout"`
}

type rawNotifyConfig struct {
	Threshold        *int             `yaml:"threshold"`
	MaxJobsInSummary *int             `yaml:"max_jobs_in_summary"`
	Email            EmailConfig      `yaml:"email"`
	WeCom            WeComConfig      `yaml:"wecom"`
	ServerChan       ServerChanConfig `yaml:"serverchan"`
}

type rawLimitsConfig struct {
	PerCallTimeout string   `yaml:"per_call_timeout"`
	RunBudget      string   `yaml:"run_budget"`
	Concurrency    int      `yaml:"concurrency"`
	RetryAttempts  *int     `yaml:"retry_attempts"`
	RetryBaseDelay string   `yaml:"retry_base_delay"`
	HostRPS        *float64 `yaml:"host_rps"`
}

// Load reads and parses the YAML config file at path, applies defaults,
// validates it, and returns Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables (api keys, webhook URLs, passwords).
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg := &Config{Feeds: raw.Feeds, Keywords: raw.Keywords, Paths: raw.Paths}

	if len(cfg.Keywords) == 0 {
		cfg.Keywords = defaultKeywords
	}
	if cfg.Paths.Ledger == "" {
		cfg.Paths.Ledger = "data/ledger.json"
	}
	if cfg.Paths.ReportsDir == "" {
		cfg.Paths.ReportsDir = "data/reports"
	}
	if cfg.Paths.ArchiveDB == "" {
		cfg.Paths.ArchiveDB = "data/archive.db"
	}

	cfg.Filters.MaxItemAge, err = parseDuration(raw.Filters.MaxItemAge, 24*time.Hour, "filters.max_item_age")
	if err != nil {
		return nil, err
	}
	cfg.WatchInterval, err = parseDuration(raw.WatchInterval, 30*time.Minute, "watch_interval")
	if err != nil {
		return nil, err
	}

	cfg.OCR = OCRConfig{
		Enabled:             raw.OCR.Enabled,
		Endpoint:            raw.OCR.Endpoint,
		ConfidenceThreshold: 0.5,
	}
	if raw.OCR.ConfidenceThreshold != nil {
		cfg.OCR.ConfidenceThreshold = *raw.OCR.ConfidenceThreshold
	}
	cfg.OCR.Timeout, err = parseDuration(raw.OCR.Timeout, 30*time.Second, "ocr.timeout")
	if err != nil {
		return nil, err
	}

	cfg.AI = AIConfig{
		BaseURL:     raw.AI.BaseURL,
		Model:       raw.AI.Model,
		APIKey:      raw.AI.APIKey,
		MaxTokens:   raw.AI.MaxTokens,
		Temperature: 0.3,
	}
	if cfg.AI.BaseURL == "" {
		cfg.AI.BaseURL = defaultDeepSeekBaseURL
	}
	if cfg.AI.MaxTokens == 0 {
		cfg.AI.MaxTokens = 2000
	}
	if raw.AI.Temperature != nil {
		cfg.AI.Temperature = *raw.AI.Temperature
	}
	cfg.AI.Timeout, err = parseDuration(raw.AI.Timeout, 30*time.Second, "ai.timeout")
	if err != nil {
		return nil, err
	}

	cfg.Notification = NotificationConfig{
		Threshold:        1,
		MaxJobsInSummary: 5,
		Email:            raw.Notification.Email,
		WeCom:            raw.Notification.WeCom,
		ServerChan:       raw.Notification.ServerChan,
	}
	if raw.Notification.Threshold != nil {
		cfg.Notification.Threshold = *raw.Notification.Threshold
	}
	if raw.Notification.MaxJobsInSummary != nil {
		cfg.Notification.MaxJobsInSummary = *raw.Notification.MaxJobsInSummary
	}

	cfg.Limits = LimitsConfig{
		Concurrency:   raw.Limits.Concurrency,
		RetryAttempts: 3,
		HostRPS:       1.0,
	}
	if cfg.Limits.Concurrency == 0 {
		cfg.Limits.Concurrency = 3
	}
	if raw.Limits.RetryAttempts != nil {
		cfg.Limits.RetryAttempts = *raw.Limits.RetryAttempts
	}
	if raw.Limits.HostRPS != nil {
		cfg.Limits.HostRPS = *raw.Limits.HostRPS
	}
	cfg.Limits.PerCallTimeout, err = parseDuration(raw.Limits.PerCallTimeout, 30*time.Second, "limits.per_call_timeout")
	if err != nil {
		return nil, err
	}
	cfg.Limits.RunBudget, err = parseDuration(raw.Limits.RunBudget, 10*time.Minute, "limits.run_budget")
	if err != nil {
		return nil, err
	}
	cfg.Limits.RetryBaseDelay, err = parseDuration(raw.Limits.RetryBaseDelay, 5*time.Second, "limits.retry_base_delay")
	if err != nil {
		return nil, err
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func parseDuration(raw string, fallback time.Duration, field string) (time.Duration, error) {
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", field, raw, err)
	}
	return d, nil
}

func validate(cfg *Config) error {
	enabled := 0
	for _, f := range cfg.Feeds {
		if !f.Enabled {
			continue
		}
		enabled++
		if f.URL == "" {
			return fmt.Errorf("feed %q has no url", f.Name)
		}
	}
	if enabled == 0 {
		return fmt.Errorf("at least one feed must be enabled")
	}

	if cfg.AI.APIKey == "" {
		return fmt.Errorf("ai.api_key is required")
	}
	if cfg.AI.Model == "" {
		return fmt.Errorf("ai.model is required")
	}

	if cfg.OCR.Enabled && cfg.OCR.Endpoint == "" {
		return fmt.Errorf("ocr.endpoint is required when ocr.enabled is true")
	}
	if cfg.OCR.ConfidenceThreshold < 0 || cfg.OCR.ConfidenceThreshold > 1 {
		return fmt.Errorf("ocr.confidence_threshold must be in [0,1], got %v", cfg.OCR.ConfidenceThreshold)
	}

	if cfg.Notification.Threshold < 1 {
		return fmt.Errorf("notification.threshold must be at least 1, got %d", cfg.Notification.Threshold)
	}
	if cfg.Notification.MaxJobsInSummary < 1 {
		return fmt.Errorf("notification.max_jobs_in_summary must be at least 1, got %d", cfg.Notification.MaxJobsInSummary)
	}

	if e := cfg.Notification.Email; e.Enabled {
		if e.SMTPHost == "" || e.From == "" || e.Password == "" || len(e.To) == 0 {
			return fmt.Errorf("notification.email requires smtp_host, from, password and to when enabled")
		}
	}
	if w := cfg.Notification.WeCom; w.Enabled && w.WebhookURL == "" {
		return fmt.Errorf("notification.wecom.webhook_url is required when enabled")
	}
	if s := cfg.Notification.ServerChan; s.Enabled && s.Key == "" {
		return fmt.Errorf("notification.serverchan.key is required when enabled")
	}

	if cfg.Limits.Concurrency < 1 {
		return fmt.Errorf("limits.concurrency must be at least 1, got %d", cfg.Limits.Concurrency)
	}
	if cfg.Limits.RunBudget < cfg.Limits.PerCallTimeout {
		return fmt.Errorf("limits.run_budget %v must not be shorter than limits.per_call_timeout %v",
			cfg.Limits.RunBudget, cfg.Limits.PerCallTimeout)
	}

	return nil
}
