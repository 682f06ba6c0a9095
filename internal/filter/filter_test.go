package filter

import (
	"testing"
	"time"

	"jobradar/internal/model"
)

func timePtr(t time.Time) *time.Time { return &t }

func TestNewItems_DropsSeen(t *testing.T) {
	items := []model.FeedItem{
		{Source: "s", ID: "a"},
		{Source: "s", ID: "b"},
		{Source: "s", ID: "c"},
	}
	seen := model.SeenSet{"s|b": time.Now()}

	fresh := NewItems(items, seen)
	if len(fresh) != 2 {
		t.Fatalf("expected 2 fresh items, got %d", len(fresh))
	}
	for _, it := range fresh {
		if it.ID == "b" {
			t.Error("seen item b should have been dropped")
		}
	}
}

func TestNewItems_OrderedByPublishedThenID(t *testing.T) {
	t1 := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	t2 := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	items := []model.FeedItem{
		{Source: "s", ID: "z", PublishedAt: timePtr(t2)},
		{Source: "s", ID: "m", PublishedAt: nil},
		{Source: "s", ID: "b", PublishedAt: timePtr(t1)},
		{Source: "s", ID: "a", PublishedAt: timePtr(t1)},
		{Source: "s", ID: "k", PublishedAt: nil},
	}

	fresh := NewItems(items, model.SeenSet{})
	want := []string{"a", "b", "z", "k", "m"}
	if len(fresh) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(fresh))
	}
	for i, id := range want {
		if fresh[i].ID != id {
			t.Errorf("position %d: got %s, want %s", i, fresh[i].ID, id)
		}
	}
}

func TestNewItems_AllSeenYieldsNothing(t *testing.T) {
	items := []model.FeedItem{{Source: "s", ID: "a"}}
	seen := model.SeenSet{"s|a": time.Now()}

	if fresh := NewItems(items, seen); len(fresh) != 0 {
		t.Fatalf("expected no fresh items, got %d", len(fresh))
	}
}

func TestJobRelated(t *testing.T) {
	keywords := []string{"招聘", "hiring"}

	tests := []struct {
		name string
		item model.FeedItem
		want bool
	}{
		{"keyword in title", model.FeedItem{Title: "剧组招聘副导演"}, true},
		{"keyword in body", model.FeedItem{Title: "周末动态", BodyText: "We are hiring a gaffer"}, true},
		{"case insensitive", model.FeedItem{BodyText: "HIRING now"}, true},
		{"no keyword", model.FeedItem{Title: "行业新闻", BodyText: "展会回顾"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := JobRelated(tt.item, keywords); got != tt.want {
				t.Errorf("JobRelated() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJobRelated_NoKeywordsMatchesEverything(t *testing.T) {
	if !JobRelated(model.FeedItem{Title: "anything"}, nil) {
		t.Error("empty keyword list should match every item")
	}
}
