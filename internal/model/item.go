package model

import (
	"context"
	"time"
)

// FeedItem is one fetched content unit (article) from a feed source.
type FeedItem struct {
	Source      string     // feed name from config
	ID          string     // guid, falling back to link or a content hash
	Title       string     // article title
	Link        string     // article URL
	PublishedAt *time.Time // nullable (not all feeds provide it)
	BodyText    string     // plain text extracted from the item HTML
	ImageRefs   []string   // image URLs in document order
}

// Key returns the identity used for cross-run deduplication.
// (Source, ID) is unique and immutable once observed.
func (it FeedItem) Key() string {
	return it.Source + "|" + it.ID
}

// SeenSet maps item keys to the time they were first selected for processing.
type SeenSet map[string]time.Time

// Contains reports whether key has already been processed in a previous run.
func (s SeenSet) Contains(key string) bool {
	_, ok := s[key]
	return ok
}

// Fragment is one piece of text recognized in an image, with the
// engine's confidence score in [0,1].
type Fragment struct {
	Text       string
	Confidence float64
}

// FeedFetcher fetches items from a single feed source.
type FeedFetcher interface {
	FetchItems(ctx context.Context) ([]FeedItem, error)
}

// Recognizer extracts text fragments from one image.
type Recognizer interface {
	Recognize(ctx context.Context, imageRef string) ([]Fragment, error)
}

// Extractor turns an item plus its recognized image text into zero or
// more unvalidated job drafts.
type Extractor interface {
	Extract(ctx context.Context, item FeedItem, imageText []string) ([]Draft, error)
}

// Ledger persists the seen set between runs.
type Ledger interface {
	Load() (SeenSet, error)
	Commit(entries SeenSet) error
}

// Notifier delivers a run summary over one channel.
type Notifier interface {
	Name() string
	Send(summary Summary) error
}

// Archiver records finished runs for later inspection.
type Archiver interface {
	SaveRun(batch RunBatch, reportPath string) error
}
