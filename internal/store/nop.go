package store

import "jobradar/internal/model"

// NopArchive discards run history. Used in dry-run mode.
type NopArchive struct{}

func NewNopArchive() *NopArchive { return &NopArchive{} }

func (NopArchive) SaveRun(model.RunBatch, string) error { return nil }
