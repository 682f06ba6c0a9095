package notifier

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"jobradar/internal/model"
)

func sampleSummary() model.Summary {
	lo, hi := 8000.0, 12000.0
	return model.Summary{
		Records: []model.JobRecord{
			{
				Company:       "光影传媒",
				Title:         "副导演",
				Location:      "北京",
				SalaryMin:     &lo,
				SalaryMax:     &hi,
				SalaryText:    "8000-12000",
				Requirements:  model.Unknown,
				ContactPhone:  "13800138000",
				ContactEmail:  model.Unknown,
				PublishedDate: "2026-09-01",
				Source:        "wechat-film",
				Link:          model.Unknown,
			},
		},
		Total:      3,
		ReportPath: "/data/reports/run-x.json",
		StartedAt:  time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC),
	}
}

func TestWeCom_SendsMarkdown(t *testing.T) {
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		io.WriteString(w, `{"errcode":0,"errmsg":"ok"}`)
	}))
	defer srv.Close()

	n := NewWeComNotifier(srv.URL, []string{"13800138000"}, srv.Client(), discardLogger())
	if err := n.Send(sampleSummary()); err != nil {
		t.Fatalf("Send: %v", err)
	}

	var msg wecomMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if msg.MsgType != "markdown" {
		t.Errorf("msgtype = %q", msg.MsgType)
	}
	if !strings.Contains(msg.Markdown.Content, "光影传媒") {
		t.Errorf("content missing company: %q", msg.Markdown.Content)
	}
	if !strings.Contains(msg.Markdown.Content, "发现 3 个新职位") {
		t.Errorf("content missing total header: %q", msg.Markdown.Content)
	}
	// 3 total, 1 inlined: remainder pointer must appear.
	if !strings.Contains(msg.Markdown.Content, "另有 2 条") {
		t.Errorf("content missing remainder note: %q", msg.Markdown.Content)
	}
	if len(msg.Markdown.MentionedMobileList) != 1 {
		t.Errorf("mentions = %v", msg.Markdown.MentionedMobileList)
	}
}

func TestWeCom_APIErrorCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"errcode":93000,"errmsg":"invalid webhook url"}`)
	}))
	defer srv.Close()

	n := NewWeComNotifier(srv.URL, nil, srv.Client(), discardLogger())
	err := n.Send(sampleSummary())
	if err == nil || !strings.Contains(err.Error(), "93000") {
		t.Fatalf("expected errcode error, got %v", err)
	}
}

func TestWeCom_RateLimitedRetriesOnce(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		io.WriteString(w, `{"errcode":0,"errmsg":"ok"}`)
	}))
	defer srv.Close()

	n := NewWeComNotifier(srv.URL, nil, srv.Client(), discardLogger())
	if err := n.Send(sampleSummary()); err != nil {
		t.Fatalf("expected success after retry, got %v", err)
	}
	if c := calls.Load(); c != 2 {
		t.Errorf("expected 2 calls, got %d", c)
	}
}

func TestWeCom_RetryAfterDelayBounded(t *testing.T) {
	cases := []struct {
		header string
		want   time.Duration
	}{
		{"2", 2 * time.Second},
		{"", time.Second},
		{"garbage", time.Second},
		{"-5", time.Second},
		{"3600", maxRetryAfter},
	}
	for _, tc := range cases {
		if got := retryAfterDelay(tc.header); got != tc.want {
			t.Errorf("retryAfterDelay(%q) = %v, want %v", tc.header, got, tc.want)
		}
	}
}

func TestWeCom_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := NewWeComNotifier(srv.URL, nil, srv.Client(), discardLogger())
	if err := n.Send(sampleSummary()); err == nil {
		t.Fatal("expected error on 500")
	}
}
