package ledger

import "jobradar/internal/model"

// NopLedger is used in check mode. It reports nothing as seen and
// commits nothing, so every item appears new on each invocation.
type NopLedger struct{}

func NewNopLedger() *NopLedger { return &NopLedger{} }

func (n *NopLedger) Load() (model.SeenSet, error)       { return model.SeenSet{}, nil }
func (n *NopLedger) Commit(entries model.SeenSet) error { return nil }
