package report

import "jobradar/internal/model"

// NopWriter discards batches. Used by dry runs.
type NopWriter struct{}

func (NopWriter) Write(model.RunBatch) (string, error) { return "", nil }
