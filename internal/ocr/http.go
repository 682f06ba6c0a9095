package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"jobradar/internal/model"
	"jobradar/internal/ratelimit"
)

// HTTPRecognizer downloads an image and sends it to a PaddleOCR-style
// serving endpoint. Fragments below the confidence threshold are
// dropped before they reach the extraction document.
type HTTPRecognizer struct {
	endpoint  string
	threshold float64
	client    *http.Client
	limiter   *ratelimit.HostLimiter
}

// NewHTTPRecognizer creates a recognizer against the given OCR endpoint.
func NewHTTPRecognizer(endpoint string, threshold float64, client *http.Client, limiter *ratelimit.HostLimiter) *HTTPRecognizer {
	return &HTTPRecognizer{
		endpoint:  endpoint,
		threshold: threshold,
		client:    client,
		limiter:   limiter,
	}
}

// ocrRequest mirrors the PaddleOCR serving request body.
type ocrRequest struct {
	Images []string `json:"images"`
}

// ocrResponse mirrors the relevant fields of the serving response:
// one result list per submitted image.
type ocrResponse struct {
	Results [][]ocrFragment `json:"results"`
}

type ocrFragment struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// Recognize fetches imageRef and returns the recognized fragments at or
// above the confidence threshold, in reading order.
func (r *HTTPRecognizer) Recognize(ctx context.Context, imageRef string) ([]model.Fragment, error) {
	img, err := r.download(ctx, imageRef)
	if err != nil {
		return nil, err
	}

	reqBody, err := json.Marshal(ocrRequest{
		Images: []string{base64.StdEncoding.EncodeToString(img)},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal ocr request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create ocr request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ocr request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &model.HTTPError{StatusCode: resp.StatusCode, Err: fmt.Errorf("ocr endpoint")}
	}

	var ocrResp ocrResponse
	if err := json.NewDecoder(resp.Body).Decode(&ocrResp); err != nil {
		return nil, fmt.Errorf("parse ocr response: %w", err)
	}
	if len(ocrResp.Results) == 0 {
		return nil, nil
	}

	var fragments []model.Fragment
	for _, f := range ocrResp.Results[0] {
		if f.Confidence < r.threshold {
			continue
		}
		fragments = append(fragments, model.Fragment{Text: f.Text, Confidence: f.Confidence})
	}
	return fragments, nil
}

func (r *HTTPRecognizer) download(ctx context.Context, imageRef string) ([]byte, error) {
	if err := r.limiter.WaitURL(ctx, imageRef); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageRef, nil)
	if err != nil {
		return nil, fmt.Errorf("create image request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &model.HTTPError{StatusCode: resp.StatusCode, Err: fmt.Errorf("download image %s", imageRef)}
	}

	return io.ReadAll(resp.Body)
}
