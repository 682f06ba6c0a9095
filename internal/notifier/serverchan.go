package notifier

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"jobradar/internal/model"
)

// Ensure ServerChanNotifier implements model.Notifier.
var _ model.Notifier = (*ServerChanNotifier)(nil)

// ServerChanNotifier pushes the run summary to a phone through the
// ServerChan relay.
type ServerChanNotifier struct {
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewServerChanNotifier(key string, httpClient *http.Client, logger *slog.Logger) *ServerChanNotifier {
	return &ServerChanNotifier{
		endpoint:   fmt.Sprintf("https://sctapi.ftqq.com/%s.send", key),
		httpClient: httpClient,
		logger:     logger,
	}
}

func (n *ServerChanNotifier) Name() string { return "serverchan" }

type serverChanResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (n *ServerChanNotifier) Send(s model.Summary) error {
	form := url.Values{
		"title": {subject(s)},
		"desp":  {markdown(s)},
	}

	resp, err := n.httpClient.PostForm(n.endpoint, form)
	if err != nil {
		return fmt.Errorf("post to serverchan: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("serverchan returned %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return fmt.Errorf("reading serverchan response: %w", err)
	}
	var sr serverChanResponse
	if err := json.Unmarshal(data, &sr); err != nil {
		return fmt.Errorf("decoding serverchan response: %w", err)
	}
	if sr.Code != 0 {
		return fmt.Errorf("serverchan error %d: %s", sr.Code, sr.Message)
	}
	return nil
}
