package notifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"jobradar/internal/model"
)

// Ensure WeComNotifier implements model.Notifier.
var _ model.Notifier = (*WeComNotifier)(nil)

// maxRetryAfter caps the advertised 429 backoff so a misbehaving
// endpoint cannot stall the whole dispatch loop.
const maxRetryAfter = 10 * time.Second

// WeComNotifier posts the run summary to a WeCom group robot webhook
// as a markdown message.
type WeComNotifier struct {
	webhookURL string
	mentioned  []string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewWeComNotifier(webhookURL string, mentioned []string, httpClient *http.Client, logger *slog.Logger) *WeComNotifier {
	return &WeComNotifier{
		webhookURL: webhookURL,
		mentioned:  mentioned,
		httpClient: httpClient,
		logger:     logger,
	}
}

func (w *WeComNotifier) Name() string { return "wecom" }

type wecomMessage struct {
	MsgType  string        `json:"msgtype"`
	Markdown wecomMarkdown `json:"markdown"`
}

type wecomMarkdown struct {
	Content             string   `json:"content"`
	MentionedMobileList []string `json:"mentioned_mobile_list,omitempty"`
}

type wecomResponse struct {
	ErrCode int    `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
}

// Send posts the summary. The robot API rate-limits per minute; a 429
// is retried once after the advertised delay.
func (w *WeComNotifier) Send(s model.Summary) error {
	body, err := json.Marshal(wecomMessage{
		MsgType: "markdown",
		Markdown: wecomMarkdown{
			Content:             markdown(s),
			MentionedMobileList: w.mentioned,
		},
	})
	if err != nil {
		return fmt.Errorf("marshal wecom message: %w", err)
	}

	resp, err := w.httpClient.Post(w.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post to wecom: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		delay := retryAfterDelay(resp.Header.Get("Retry-After"))
		w.logger.Warn("wecom rate limited, retrying", "delay", delay)
		time.Sleep(delay)

		resp2, err := w.httpClient.Post(w.webhookURL, "application/json", bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("post to wecom (retry): %w", err)
		}
		defer resp2.Body.Close()
		return w.checkResponse(resp2)
	}

	return w.checkResponse(resp)
}

// retryAfterDelay converts a Retry-After header into a bounded wait.
// Absent or unparseable values wait one second.
func retryAfterDelay(header string) time.Duration {
	secs, _ := strconv.Atoi(header)
	if secs <= 0 {
		secs = 1
	}
	d := time.Duration(secs) * time.Second
	if d > maxRetryAfter {
		return maxRetryAfter
	}
	return d
}

func (w *WeComNotifier) checkResponse(resp *http.Response) error {
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("wecom returned %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return fmt.Errorf("reading wecom response: %w", err)
	}
	var wr wecomResponse
	if err := json.Unmarshal(data, &wr); err != nil {
		return fmt.Errorf("decoding wecom response: %w", err)
	}
	if wr.ErrCode != 0 {
		return fmt.Errorf("wecom error %d: %s", wr.ErrCode, wr.ErrMsg)
	}
	return nil
}
