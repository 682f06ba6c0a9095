package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"jobradar/internal/model"
	"jobradar/internal/ratelimit"
)

// Adapter fetches and parses one configured feed source.
type Adapter struct {
	name    string
	url     string
	client  *http.Client
	limiter *ratelimit.HostLimiter
	maxAge  time.Duration // items published earlier than now-maxAge are dropped; 0 keeps all
	now     func() time.Time
}

// NewAdapter creates a fetcher for a single feed.
func NewAdapter(name, url string, client *http.Client, limiter *ratelimit.HostLimiter, maxAge time.Duration) *Adapter {
	return &Adapter{
		name:    name,
		url:     url,
		client:  client,
		limiter: limiter,
		maxAge:  maxAge,
		now:     time.Now,
	}
}

// FetchItems retrieves the feed, parses it, and normalizes entries into
// FeedItems with plain text and image refs split out of the item HTML.
func (a *Adapter) FetchItems(ctx context.Context) ([]model.FeedItem, error) {
	if err := a.limiter.WaitURL(ctx, a.url); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.url, nil)
	if err != nil {
		return nil, fmt.Errorf("feed fetch for %s: %w", a.name, err)
	}
	// Some feed hosts reject default Go clients.
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed fetch for %s: %w", a.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("feed fetch for %s", a.name),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("feed fetch for %s: %w", a.name, err)
	}

	entries, err := parseFeed(body)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", a.name, err)
	}

	cutoff := time.Time{}
	if a.maxAge > 0 {
		cutoff = a.now().Add(-a.maxAge)
	}

	items := make([]model.FeedItem, 0, len(entries))
	for _, e := range entries {
		item := e.toItem(a.name)
		if !cutoff.IsZero() && item.PublishedAt != nil && item.PublishedAt.Before(cutoff) {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}
