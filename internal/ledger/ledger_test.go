package ledger

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"jobradar/internal/model"
)

func ledgerPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "ledger.json")
}

func TestLoad_MissingFileIsEmptySet(t *testing.T) {
	l := NewFileLedger(ledgerPath(t))

	seen, err := l.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(seen) != 0 {
		t.Fatalf("expected empty set, got %d entries", len(seen))
	}
}

func TestCommitThenLoad_RoundTrip(t *testing.T) {
	path := ledgerPath(t)
	l := NewFileLedger(path)

	now := time.Now().UTC()
	entries := model.SeenSet{
		"wechat|a1": now,
		"wechat|a2": now,
	}
	if err := l.Commit(entries); err != nil {
		t.Fatalf("commit: %v", err)
	}

	seen, err := l.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(seen) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(seen))
	}
	if !seen.Contains("wechat|a1") || !seen.Contains("wechat|a2") {
		t.Errorf("committed keys missing: %v", seen)
	}
}

func TestCommit_MergesWithExistingEntries(t *testing.T) {
	path := ledgerPath(t)
	l := NewFileLedger(path)

	first := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	if err := l.Commit(model.SeenSet{"wechat|old": first}); err != nil {
		t.Fatalf("first commit: %v", err)
	}
	if err := l.Commit(model.SeenSet{
		"wechat|old": time.Now().UTC(), // duplicate: original timestamp wins
		"wechat|new": time.Now().UTC(),
	}); err != nil {
		t.Fatalf("second commit: %v", err)
	}

	seen, err := l.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(seen) != 2 {
		t.Fatalf("expected 2 entries after merge, got %d", len(seen))
	}
	if !seen["wechat|old"].Equal(first) {
		t.Errorf("first-processed timestamp was overwritten: %v", seen["wechat|old"])
	}
}

func TestLoad_CorruptFileDegradesToEmptySet(t *testing.T) {
	path := ledgerPath(t)
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	l := NewFileLedger(path)
	seen, err := l.Load()
	if !errors.Is(err, model.ErrLedgerCorrupt) {
		t.Fatalf("expected ErrLedgerCorrupt, got %v", err)
	}
	if seen == nil || len(seen) != 0 {
		t.Fatalf("expected usable empty set alongside the error, got %v", seen)
	}

	// Commit after corruption rewrites a valid snapshot.
	if err := l.Commit(model.SeenSet{"wechat|a": time.Now().UTC()}); err != nil {
		t.Fatalf("commit over corrupt file: %v", err)
	}
	seen, err = l.Load()
	if err != nil {
		t.Fatalf("load after rewrite: %v", err)
	}
	if !seen.Contains("wechat|a") {
		t.Error("entry missing after rewrite")
	}
}

func TestCommit_NeverTruncatesPreviousSnapshot(t *testing.T) {
	path := ledgerPath(t)
	l := NewFileLedger(path)

	if err := l.Commit(model.SeenSet{"wechat|a": time.Now().UTC()}); err != nil {
		t.Fatalf("commit: %v", err)
	}

	// Simulate an interrupted run: a load happened, commit never did,
	// and a stray temp file was left behind. The snapshot must be intact.
	if _, err := l.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := os.WriteFile(path+".tmp", []byte("partial"), 0o644); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	var snap struct {
		Version int                  `json:"version"`
		Seen    map[string]time.Time `json:"seen"`
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("snapshot no longer parses: %v", err)
	}
	if _, ok := snap.Seen["wechat|a"]; !ok {
		t.Error("previously committed entry lost")
	}
}

func TestCommit_EmptyEntriesIsNoop(t *testing.T) {
	path := ledgerPath(t)
	l := NewFileLedger(path)

	if err := l.Commit(model.SeenSet{}); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("empty commit should not create a snapshot file")
	}
}
