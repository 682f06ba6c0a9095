package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"jobradar/internal/model"
)

var csvHeader = []string{
	"company", "title", "location",
	"salary_min", "salary_max", "salary_text",
	"requirements", "contact_phone", "contact_email",
	"published_date", "source", "link",
}

// Writer persists one run's validated records to the reports directory,
// as a JSON document carrying the full run metadata and a flat CSV for
// spreadsheet use.
type Writer struct {
	dir    string
	logger *slog.Logger
}

func NewWriter(dir string, logger *slog.Logger) *Writer {
	return &Writer{dir: dir, logger: logger}
}

// Write emits both artifacts and returns the JSON path. The pair shares
// a timestamped base name so they sort together in the directory.
func (w *Writer) Write(batch model.RunBatch) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating reports dir: %w", err)
	}

	base := fmt.Sprintf("run-%s-%s", batch.StartedAt.Format("20060102-150405"), shortID(batch.RunID))
	jsonPath := filepath.Join(w.dir, base+".json")
	csvPath := filepath.Join(w.dir, base+".csv")

	if err := w.writeJSON(jsonPath, batch); err != nil {
		return "", err
	}
	if err := w.writeCSV(csvPath, batch.Records); err != nil {
		return "", err
	}

	w.logger.Info("report written",
		"path", jsonPath,
		"records", len(batch.Records))
	return jsonPath, nil
}

func (w *Writer) writeJSON(path string, batch model.RunBatch) error {
	data, err := json.MarshalIndent(batch, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

func (w *Writer) writeCSV(path string, records []model.JobRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("writing report csv: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			r.Company, r.Title, r.Location,
			formatBound(r.SalaryMin), formatBound(r.SalaryMax), r.SalaryText,
			r.Requirements, r.ContactPhone, r.ContactEmail,
			r.PublishedDate, r.Source, r.Link,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatBound(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func shortID(runID string) string {
	id := strings.ReplaceAll(runID, "-", "")
	if len(id) > 8 {
		id = id[:8]
	}
	return id
}

// Entry is one stored report, newest first when returned by List.
type Entry struct {
	Path    string
	ModTime time.Time
}

// List returns the JSON reports in dir, newest first. A missing
// directory is an empty listing, not an error.
func List(dir string) ([]Entry, error) {
	dirents, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading reports dir: %w", err)
	}

	var entries []Entry
	for _, d := range dirents {
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			continue
		}
		info, err := d.Info()
		if err != nil {
			continue
		}
		entries = append(entries, Entry{
			Path:    filepath.Join(dir, d.Name()),
			ModTime: info.ModTime(),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].ModTime.After(entries[j].ModTime)
	})
	return entries, nil
}

// Load reads a stored JSON report back into a run batch.
func Load(path string) (model.RunBatch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.RunBatch{}, fmt.Errorf("reading report: %w", err)
	}
	var batch model.RunBatch
	if err := json.Unmarshal(data, &batch); err != nil {
		return model.RunBatch{}, fmt.Errorf("decoding report %s: %w", filepath.Base(path), err)
	}
	return batch, nil
}
