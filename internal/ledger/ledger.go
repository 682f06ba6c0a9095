package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"jobradar/internal/model"
)

const snapshotVersion = 1

// snapshot is the on-disk representation: a complete, self-describing
// copy of the seen set, never a diff or log.
type snapshot struct {
	Version   int                  `json:"version"`
	UpdatedAt time.Time            `json:"updated_at"`
	Seen      map[string]time.Time `json:"seen"`
}

// FileLedger persists the seen set as a JSON snapshot. Commit merges
// into the current on-disk state and replaces the file with a rename,
// so an interrupted run never leaves a truncated ledger behind.
type FileLedger struct {
	path string
	lock *flock.Flock
}

// NewFileLedger creates a ledger backed by the JSON file at path.
// The parent directory is created on first commit.
func NewFileLedger(path string) *FileLedger {
	return &FileLedger{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

// Load reads the persisted seen set. A missing file is an empty set.
// A file that cannot be parsed returns an empty set together with
// model.ErrLedgerCorrupt so the run can proceed and rewrite a valid
// snapshot at commit time.
func (l *FileLedger) Load() (model.SeenSet, error) {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return nil, fmt.Errorf("create ledger dir: %w", err)
	}
	if err := l.lock.Lock(); err != nil {
		return nil, fmt.Errorf("lock ledger: %w", err)
	}
	defer l.lock.Unlock()

	seen, err := l.read()
	if err != nil {
		return model.SeenSet{}, err
	}
	return seen, nil
}

// read parses the snapshot file without locking.
func (l *FileLedger) read() (model.SeenSet, error) {
	data, err := os.ReadFile(l.path)
	if os.IsNotExist(err) {
		return model.SeenSet{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read ledger %s: %w", l.path, err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return model.SeenSet{}, fmt.Errorf("%w: %s: %v", model.ErrLedgerCorrupt, l.path, err)
	}
	if snap.Seen == nil {
		snap.Seen = map[string]time.Time{}
	}
	return model.SeenSet(snap.Seen), nil
}

// Commit merges entries into the persisted set and atomically replaces
// the snapshot. Entries already on disk are preserved even if the
// in-memory view loaded at run start was stale, which makes the
// read-modify-write safe against at most one concurrent invocation.
func (l *FileLedger) Commit(entries model.SeenSet) error {
	if len(entries) == 0 {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("create ledger dir: %w", err)
	}
	if err := l.lock.Lock(); err != nil {
		return fmt.Errorf("lock ledger: %w", err)
	}
	defer l.lock.Unlock()

	// Re-read under the lock; a corrupt current file is replaced
	// wholesale by the merged snapshot.
	current, err := l.read()
	if err != nil && !isCorrupt(err) {
		return err
	}

	merged := make(map[string]time.Time, len(current)+len(entries))
	for k, v := range current {
		merged[k] = v
	}
	for k, v := range entries {
		if _, ok := merged[k]; !ok {
			merged[k] = v
		}
	}

	snap := snapshot{
		Version:   snapshotVersion,
		UpdatedAt: time.Now().UTC(),
		Seen:      merged,
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}

	// Write-new-then-rename so a crash mid-write never truncates the
	// previous snapshot.
	tmp := l.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	if err := os.Rename(tmp, l.path); err != nil {
		return fmt.Errorf("replace ledger: %w", err)
	}
	return nil
}

func isCorrupt(err error) bool {
	return errors.Is(err, model.ErrLedgerCorrupt)
}
