package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"jobradar/internal/model"
)

// notMentioned is the placeholder the prompt instructs the model to use
// for absent fields.
const notMentioned = "未提及"

// JobExtractor implements model.Extractor using an LLM provider.
type JobExtractor struct {
	provider LLMProvider
	logger   *slog.Logger
}

// NewJobExtractor creates an extractor over the given provider.
func NewJobExtractor(provider LLMProvider, logger *slog.Logger) *JobExtractor {
	return &JobExtractor{provider: provider, logger: logger}
}

// Extract concatenates the item's body text with its recognized image
// text, prompts the LLM, and parses the payload into drafts. A payload
// that is not the expected JSON shape is a definitive failure
// (ErrSchemaViolation), never retried.
func (e *JobExtractor) Extract(ctx context.Context, item model.FeedItem, imageText []string) ([]model.Draft, error) {
	doc := buildDocument(item.BodyText, imageText)
	if doc == "" {
		return nil, nil
	}

	var promptBuf bytes.Buffer
	err := jobExtractionTemplate.Execute(&promptBuf, struct {
		Title    string
		Source   string
		Document string
	}{
		Title:    item.Title,
		Source:   item.Source,
		Document: doc,
	})
	if err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}

	raw, err := e.provider.Complete(ctx, extractionSystemPrompt, promptBuf.String())
	if err != nil {
		return nil, fmt.Errorf("llm complete: %w", err)
	}

	payload, err := parsePayload(raw)
	if err != nil {
		return nil, err
	}

	if !payload.IsJobPosting {
		e.logger.Debug("item is not a job posting", "item", item.Key())
		return nil, nil
	}

	return payload.toDrafts(item), nil
}

// buildDocument merges body text and image fragments into one candidate
// document, capped so prompt size stays bounded for image-heavy articles.
const maxDocumentRunes = 6000

func buildDocument(body string, imageText []string) string {
	parts := make([]string, 0, 1+len(imageText))
	if s := strings.TrimSpace(body); s != "" {
		parts = append(parts, s)
	}
	for _, t := range imageText {
		if s := strings.TrimSpace(t); s != "" {
			parts = append(parts, s)
		}
	}
	doc := strings.Join(parts, "\n")
	if runes := []rune(doc); len(runes) > maxDocumentRunes {
		doc = string(runes[:maxDocumentRunes])
	}
	return doc
}

// rawPayload is the JSON shape the prompt requests.
type rawPayload struct {
	IsJobPosting bool          `json:"is_job_posting"`
	CompanyName  string        `json:"company_name"`
	Positions    []rawPosition `json:"positions"`
	Contact      rawContact    `json:"contact_info"`
	Deadline     string        `json:"deadline"`
	Additional   string        `json:"additional_info"`
}

type rawPosition struct {
	Title        string `json:"title"`
	Location     string `json:"location"`
	Salary       string `json:"salary"`
	Requirements string `json:"requirements"`
}

type rawContact struct {
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// parsePayload deserializes the LLM response. JSON-object mode should
// guarantee a bare object, but the payload is still recovered from the
// first '{'..'}' span in case the model wraps it in prose.
func parsePayload(raw string) (*rawPayload, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("%w: no JSON object in response", model.ErrSchemaViolation)
	}

	var p rawPayload
	if err := json.Unmarshal([]byte(raw[start:end+1]), &p); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrSchemaViolation, err)
	}
	return &p, nil
}

// toDrafts expands the payload into one draft per position. A posting
// with no positions still yields a single draft so the validator can
// decide whether the company-level information stands on its own.
func (p *rawPayload) toDrafts(item model.FeedItem) []model.Draft {
	base := model.Draft{
		Company:      field(p.CompanyName),
		ContactPhone: field(p.Contact.Phone),
		ContactEmail: field(p.Contact.Email),
		Source:       item.Source,
		Link:         item.Link,
	}
	if item.PublishedAt != nil {
		base.PublishedDate = item.PublishedAt.Format(time.DateOnly)
	}

	if len(p.Positions) == 0 {
		return []model.Draft{base}
	}

	drafts := make([]model.Draft, 0, len(p.Positions))
	for _, pos := range p.Positions {
		d := base
		d.Title = field(pos.Title)
		d.Location = field(pos.Location)
		d.SalaryText = field(pos.Salary)
		d.Requirements = field(pos.Requirements)
		drafts = append(drafts, d)
	}
	return drafts
}

// field maps the prompt's "not mentioned" placeholder to absent.
func field(s string) string {
	s = strings.TrimSpace(s)
	if s == notMentioned {
		return ""
	}
	return s
}
