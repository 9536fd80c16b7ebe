package models

// LinkReport describes the attachments made for one record during a
// linking pass or a repair sweep.
type LinkReport struct {
	RecordKind  string   `json:"record_kind"` // contract, delivery, checklist
	BusinessKey string   `json:"business_key"`
	Attached    []string `json:"attached,omitempty"` // e.g. "delivery", "checklist (multiple)"
	Error       string   `json:"error,omitempty"`
}

// RepairResult aggregates a full repair sweep
type RepairResult struct {
	Repaired int          `json:"repaired"`
	Reports  []LinkReport `json:"reports"`
}
