package platform

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

// PermissionError means the bot (or the acting user) lacks a capability the
// operation needs.
type PermissionError struct {
	Op      string
	Missing []int64
	Err     error
}

func (e *PermissionError) Error() string {
	if len(e.Missing) > 0 {
		var names []string
		for _, p := range e.Missing {
			names = append(names, PermissionName(p))
		}
		return fmt.Sprintf("%s: missing permissions: %s", e.Op, strings.Join(names, ", "))
	}
	return fmt.Sprintf("%s: missing permissions", e.Op)
}

func (e *PermissionError) Unwrap() error { return e.Err }

// NotFoundError means a member, channel, role, message or ban does not exist.
type NotFoundError struct {
	Resource string
	ID       string
	Err      error
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// RateLimitError means Discord throttled the request even after the session's
// own retries.
type RateLimitError struct {
	Op         string
	RetryAfter time.Duration
	Err        error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s: rate limited, retry after %v", e.Op, e.RetryAfter)
}

func (e *RateLimitError) Unwrap() error { return e.Err }

// InvalidRequestError covers malformed or rejected requests (HTTP 400 family)
// that are neither permission nor existence problems.
type InvalidRequestError struct {
	Op   string
	Code int
	Err  error
}

func (e *InvalidRequestError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s: rejected by Discord (code %d)", e.Op, e.Code)
	}
	return fmt.Sprintf("%s: rejected by Discord", e.Op)
}

func (e *InvalidRequestError) Unwrap() error { return e.Err }

// IsDMBlocked reports whether err is the "cannot send messages to this user"
// rejection. Callers treat those targets as skipped, not failed.
func IsDMBlocked(err error) bool {
	var ire *InvalidRequestError
	return errors.As(err, &ire) && ire.Code == discordgo.ErrCodeCannotSendMessagesToThisUser
}
