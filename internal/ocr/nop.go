package ocr

import (
	"context"

	"jobradar/internal/model"
)

// NopRecognizer is used when ocr.enabled is false. Items are extracted
// from body text alone; image content is simply not seen.
type NopRecognizer struct{}

func NewNopRecognizer() *NopRecognizer { return &NopRecognizer{} }

func (n *NopRecognizer) Recognize(_ context.Context, _ string) ([]model.Fragment, error) {
	return nil, nil
}
