package report

import (
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"jobradar/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleBatch() model.RunBatch {
	salary := 8000.0
	return model.RunBatch{
		RunID:     "3f2a1b7c-0000-0000-0000-000000000000",
		StartedAt: time.Date(2026, 9, 1, 15, 30, 0, 0, time.UTC),
		Records: []model.JobRecord{
			{
				Company:       "光影传媒",
				Title:         "副导演",
				Location:      "北京",
				SalaryMin:     &salary,
				SalaryText:    "8000起",
				Requirements:  model.Unknown,
				ContactPhone:  "13800138000",
				ContactEmail:  model.Unknown,
				PublishedDate: "2026-09-01",
				Source:        "wechat-film",
				Link:          "https://example.com/post/1",
			},
		},
		Meta: model.RunMeta{ItemsFetched: 3, ItemsNew: 1, RecordsValidated: 1},
	}
}

func TestWrite_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, discardLogger())

	path, err := w.Write(sampleBatch())
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("report written outside dir: %s", path)
	}
	if !strings.Contains(filepath.Base(path), "20260901-153000") {
		t.Errorf("filename not timestamped: %s", filepath.Base(path))
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.RunID != "3f2a1b7c-0000-0000-0000-000000000000" {
		t.Errorf("run id = %q", got.RunID)
	}
	if len(got.Records) != 1 || got.Records[0].Company != "光影传媒" {
		t.Errorf("records = %+v", got.Records)
	}
	if got.Records[0].SalaryMin == nil || *got.Records[0].SalaryMin != 8000 {
		t.Errorf("salary min lost in round trip")
	}
	if got.Meta.ItemsFetched != 3 {
		t.Errorf("meta lost in round trip: %+v", got.Meta)
	}
}

func TestWrite_CSVCompanion(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, discardLogger())

	jsonPath, err := w.Write(sampleBatch())
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	csvPath := strings.TrimSuffix(jsonPath, ".json") + ".csv"
	f, err := os.Open(csvPath)
	if err != nil {
		t.Fatalf("csv companion missing: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("parsing csv: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header + 1 row, got %d rows", len(rows))
	}
	if rows[0][0] != "company" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][0] != "光影传媒" || rows[1][3] != "8000" {
		t.Errorf("row = %v", rows[1])
	}
	// nil max renders as empty cell
	if rows[1][4] != "" {
		t.Errorf("salary_max cell = %q", rows[1][4])
	}
}

func TestList_NewestFirst(t *testing.T) {
	dir := t.TempDir()

	for i, name := range []string{"run-a.json", "run-b.json", "notes.txt"} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
			t.Fatal(err)
		}
		mt := time.Now().Add(time.Duration(i) * time.Minute)
		if err := os.Chtimes(path, mt, mt); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := List(dir)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 json entries, got %d", len(entries))
	}
	if filepath.Base(entries[0].Path) != "run-b.json" {
		t.Errorf("order = %v", entries)
	}
}

func TestList_MissingDir(t *testing.T) {
	entries, err := List(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("missing dir should not error: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("entries = %v", entries)
	}
}

func TestLoad_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected decode error")
	}
}
