package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"jobradar/internal/model"
	"jobradar/internal/retry"
)

// Stage names recorded in item failures.
const (
	stageImageText  = "image-text"
	stageExtraction = "extraction"
)

// ItemResult is the outcome of the per-item stage chain. Failures and
// rejections are carried alongside the records; a failed stage never
// aborts the remaining stages or other items.
type ItemResult struct {
	Item       model.FeedItem
	Records    []model.JobRecord
	Failures   []model.ItemFailure
	Rejections []string
	Skipped    bool // admitted too late, no stage ran
}

// Failed reports whether any stage failed for this item.
func (r ItemResult) Failed() bool {
	return len(r.Failures) > 0
}

// Chain applies the extraction stages to one item at a time:
// image-text recognition, structured extraction, then normalization
// and validation.
type Chain struct {
	recognizer     model.Recognizer
	extractor      model.Extractor
	retryPolicy    retry.Policy
	perCallTimeout time.Duration
	logger         *slog.Logger
}

// NewChain wires the chain with its collaborators. The retry policy is
// applied uniformly to every external call; classification of what is
// retryable lives in the error model, not here.
func NewChain(recognizer model.Recognizer, extractor model.Extractor, retryPolicy retry.Policy, perCallTimeout time.Duration, logger *slog.Logger) *Chain {
	return &Chain{
		recognizer:     recognizer,
		extractor:      extractor,
		retryPolicy:    retryPolicy,
		perCallTimeout: perCallTimeout,
		logger:         logger,
	}
}

// Process runs all stages for one item and returns whatever was
// salvageable. A per-image recognition failure degrades to an empty
// string for that image; an extraction failure yields zero records.
func (c *Chain) Process(ctx context.Context, item model.FeedItem) ItemResult {
	result := ItemResult{Item: item}

	imageText := c.recognizeImages(ctx, item, &result)

	drafts, err := c.extract(ctx, item, imageText)
	if err != nil {
		result.Failures = append(result.Failures, model.ItemFailure{
			ItemKey: item.Key(),
			Title:   item.Title,
			Stage:   stageExtraction,
			Reason:  err.Error(),
		})
		return result
	}

	for _, d := range drafts {
		record, reason, ok := Validate(Normalize(d))
		if !ok {
			result.Rejections = append(result.Rejections, fmt.Sprintf("%s: %s", item.Key(), reason))
			continue
		}
		result.Records = append(result.Records, record)
	}

	return result
}

// recognizeImages is stage A: one recognition call per image ref, each
// independently failable and retried on transient errors only.
func (c *Chain) recognizeImages(ctx context.Context, item model.FeedItem, result *ItemResult) []string {
	if len(item.ImageRefs) == 0 {
		return nil
	}

	texts := make([]string, 0, len(item.ImageRefs))
	for _, ref := range item.ImageRefs {
		fragments, err := retry.Do(ctx, c.retryPolicy, "recognize", func(ctx context.Context) ([]model.Fragment, error) {
			callCtx, cancel := context.WithTimeout(ctx, c.perCallTimeout)
			defer cancel()
			return c.recognizer.Recognize(callCtx, ref)
		})
		if err != nil {
			result.Failures = append(result.Failures, model.ItemFailure{
				ItemKey: item.Key(),
				Title:   item.Title,
				Stage:   stageImageText,
				Reason:  fmt.Sprintf("%s: %v", ref, err),
			})
			texts = append(texts, "") // degrade, keep going
			continue
		}

		parts := make([]string, 0, len(fragments))
		for _, f := range fragments {
			parts = append(parts, f.Text)
		}
		texts = append(texts, strings.Join(parts, " "))
	}
	return texts
}

// extract is stage B: one LLM call over the merged document.
func (c *Chain) extract(ctx context.Context, item model.FeedItem, imageText []string) ([]model.Draft, error) {
	return retry.Do(ctx, c.retryPolicy, "extract", func(ctx context.Context) ([]model.Draft, error) {
		callCtx, cancel := context.WithTimeout(ctx, c.perCallTimeout)
		defer cancel()
		return c.extractor.Extract(callCtx, item, imageText)
	})
}
