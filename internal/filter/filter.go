package filter

import (
	"sort"
	"strings"

	"jobradar/internal/model"
)

// NewItems selects the items whose key is absent from seen, ordered by
// PublishedAt ascending then ID ascending. Items without a parseable
// publish time sort last, by ID only, so batch output and logs are
// deterministic across runs given identical input.
func NewItems(fetched []model.FeedItem, seen model.SeenSet) []model.FeedItem {
	var fresh []model.FeedItem
	for _, it := range fetched {
		if !seen.Contains(it.Key()) {
			fresh = append(fresh, it)
		}
	}

	sort.SliceStable(fresh, func(i, j int) bool {
		a, b := fresh[i], fresh[j]
		switch {
		case a.PublishedAt == nil && b.PublishedAt == nil:
			return a.ID < b.ID
		case a.PublishedAt == nil:
			return false
		case b.PublishedAt == nil:
			return true
		case !a.PublishedAt.Equal(*b.PublishedAt):
			return a.PublishedAt.Before(*b.PublishedAt)
		default:
			return a.ID < b.ID
		}
	})

	return fresh
}

// JobRelated reports whether the item's title or body contains any of
// the configured job keywords. Items that match nothing are skipped
// before the extraction stages ever run.
func JobRelated(item model.FeedItem, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}
	title := strings.ToLower(item.Title)
	body := strings.ToLower(item.BodyText)
	for _, kw := range keywords {
		kw = strings.ToLower(kw)
		if kw == "" {
			continue
		}
		if strings.Contains(title, kw) || strings.Contains(body, kw) {
			return true
		}
	}
	return false
}
