package actions

import "time"

// Per-target outcome statuses inside a Result.
const (
	OutcomeOK      = "ok"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// TargetOutcome records what happened to one principal (or one channel, for
// fan-out actions) during Perform.
type TargetOutcome struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// Result is the stable envelope every executor returns. Rollback carries the
// executor's own prior-state capture and is only ever read back by the same
// executor's Rollback method.
type Result struct {
	Success    bool           `json:"success"`
	ActionType Kind           `json:"action_type"`
	Timestamp  time.Time      `json:"timestamp"`
	Message    string         `json:"message,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
	Rollback   any            `json:"-"`
}

func newResult(kind Kind) *Result {
	return &Result{
		Success:    true,
		ActionType: kind,
		Timestamp:  time.Now(),
		Data:       map[string]any{},
	}
}

// setOutcomes stores per-target outcomes and derives the success flag: a
// result stays successful while nothing failed (skips alone do not fail it).
func (r *Result) setOutcomes(outcomes []TargetOutcome) {
	r.Data["targets"] = outcomes
	for _, o := range outcomes {
		if o.Status == OutcomeFailed {
			r.Success = false
		}
	}
}

// Outcomes returns the per-target outcomes, if any.
func (r *Result) Outcomes() []TargetOutcome {
	o, _ := r.Data["targets"].([]TargetOutcome)
	return o
}

func countOutcomes(outcomes []TargetOutcome, status string) int {
	n := 0
	for _, o := range outcomes {
		if o.Status == status {
			n++
		}
	}
	return n
}
