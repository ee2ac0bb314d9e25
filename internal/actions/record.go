package actions

import (
	"log"
	"time"
)

// Status is the lifecycle state of one execution record.
type Status string

const (
	StatusPending        Status = "pending"
	StatusRunning        Status = "running"
	StatusCompleted      Status = "completed"
	StatusPartialSuccess Status = "partial_success"
	StatusFailed         Status = "failed"
	StatusError          Status = "error"
)

// statusRank orders statuses so transitions can only move forward.
var statusRank = map[Status]int{
	StatusPending:        0,
	StatusRunning:        1,
	StatusCompleted:      2,
	StatusPartialSuccess: 2,
	StatusFailed:         2,
	StatusError:          2,
}

// ExecResult is the run-level view of one action's outcome.
type ExecResult struct {
	ActionType  Kind    `json:"action_type"`
	ActionIndex int     `json:"action_index"`
	Success     bool    `json:"success"`
	Result      *Result `json:"result,omitempty"`
	Err         error   `json:"-"`
	Continuable bool    `json:"continuable"`
}

// Record aggregates one trigger's whole batch. Exactly one exists per trigger;
// it is written by the single goroutine running the batch and read through the
// engine's history afterwards.
type Record struct {
	ID           string       `json:"id"`
	GuildID      string       `json:"guild_id"`
	ActorID      string       `json:"actor_id"`
	ButtonID     string       `json:"button_id"`
	Actions      []Action     `json:"actions"`
	Results      []ExecResult `json:"results"`
	Status       Status       `json:"status"`
	StartedAt    time.Time    `json:"started_at"`
	EndedAt      time.Time    `json:"ended_at"`
	SuccessCount int          `json:"success_count"`
	FailCount    int          `json:"fail_count"`

	ctx *Context
}

// setStatus enforces the forward-only state machine. A backward transition is
// a programming error; it is logged and ignored rather than applied.
func (r *Record) setStatus(next Status) {
	if statusRank[next] < statusRank[r.Status] {
		log.Printf("[WARN] Execution %s: refusing status transition %s -> %s", r.ID, r.Status, next)
		return
	}
	r.Status = next
}

// Terminal reports whether the record reached a final status.
func (r *Record) Terminal() bool {
	switch r.Status {
	case StatusCompleted, StatusPartialSuccess, StatusFailed, StatusError:
		return true
	}
	return false
}
