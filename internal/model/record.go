package model

import "time"

// Unknown is the explicit placeholder for optional fields that were not
// present in the source content. Report output never carries empty strings.
const Unknown = "unknown"

// Draft is an unvalidated candidate job record produced by the
// normalization stage. One article may yield several drafts.
type Draft struct {
	Company       string
	Title         string
	Location      string
	SalaryMin     *float64
	SalaryMax     *float64
	SalaryText    string // raw salary wording, kept even when bounds parse
	Requirements  string
	ContactPhone  string
	ContactEmail  string
	PublishedDate string
	Source        string
	Link          string
}

// JobRecord is a validated job posting. It exists only after passing
// validation; optional fields hold Unknown rather than "".
type JobRecord struct {
	Company       string   `json:"company"`
	Title         string   `json:"title"`
	Location      string   `json:"location"`
	SalaryMin     *float64 `json:"salary_min,omitempty"`
	SalaryMax     *float64 `json:"salary_max,omitempty"`
	SalaryText    string   `json:"salary_text"`
	Requirements  string   `json:"requirements"`
	ContactPhone  string   `json:"contact_phone"`
	ContactEmail  string   `json:"contact_email"`
	PublishedDate string   `json:"published_date"`
	Source        string   `json:"source"`
	Link          string   `json:"link"`
}

// ItemFailure records a per-item, per-stage failure. Failures are data
// folded into run metadata; they never abort the run.
type ItemFailure struct {
	ItemKey string `json:"item_key"`
	Title   string `json:"title"`
	Stage   string `json:"stage"`
	Reason  string `json:"reason"`
}

// RunMeta is the metadata emitted for every run, whether or not any
// record was produced.
type RunMeta struct {
	SourcesAttempted int           `json:"sources_attempted"`
	SourcesFailed    []string      `json:"sources_failed,omitempty"`
	ItemsFetched     int           `json:"items_fetched"`
	ItemsNew         int           `json:"items_new"`
	ItemsSkipped     int           `json:"items_skipped"` // keyword prefilter
	ItemsFailed      int           `json:"items_failed"`
	RecordsValidated int           `json:"records_validated"`
	RecordsRejected  int           `json:"records_rejected"`
	Failures         []ItemFailure `json:"failures,omitempty"`
	Rejections       []string      `json:"rejections,omitempty"`
}

// RunBatch aggregates one invocation's output. Created empty at run
// start, appended to during extraction, consumed once by report writers
// and the notification gate, then discarded.
type RunBatch struct {
	RunID     string      `json:"run_id"`
	StartedAt time.Time   `json:"started_at"`
	Records   []JobRecord `json:"records"`
	Meta      RunMeta     `json:"meta"`
}

// Summary is what a notification channel receives: at most the
// configured number of records inline, plus a pointer to the full
// report artifact.
type Summary struct {
	Records    []JobRecord
	Total      int
	ReportPath string
	StartedAt  time.Time
	Meta       RunMeta
}
