package platform

import (
	"errors"
	"net/http"

	"github.com/bwmarrin/discordgo"
)

// Normalize translates a raw discordgo error into the package taxonomy.
// This is the single place platform failures are classified; everything the
// engine reacts to (permission vs missing vs throttled vs rejected) is decided
// here.
func Normalize(op string, err error) error {
	if err == nil {
		return nil
	}

	var rl *discordgo.RateLimitError
	if errors.As(err, &rl) {
		return &RateLimitError{Op: op, RetryAfter: rl.RetryAfter, Err: err}
	}

	var rest *discordgo.RESTError
	if !errors.As(err, &rest) {
		return err
	}

	code := 0
	if rest.Message != nil {
		code = rest.Message.Code
	}

	switch code {
	case discordgo.ErrCodeMissingPermissions, discordgo.ErrCodeMissingAccess:
		return &PermissionError{Op: op, Err: err}
	case discordgo.ErrCodeUnknownUser, discordgo.ErrCodeUnknownMember:
		return &NotFoundError{Resource: "member", Err: err}
	case discordgo.ErrCodeUnknownChannel:
		return &NotFoundError{Resource: "channel", Err: err}
	case discordgo.ErrCodeUnknownRole:
		return &NotFoundError{Resource: "role", Err: err}
	case discordgo.ErrCodeUnknownMessage:
		return &NotFoundError{Resource: "message", Err: err}
	case discordgo.ErrCodeUnknownBan:
		return &NotFoundError{Resource: "ban", Err: err}
	case discordgo.ErrCodeCannotSendMessagesToThisUser:
		return &InvalidRequestError{Op: op, Code: code, Err: err}
	}

	if rest.Response != nil {
		switch rest.Response.StatusCode {
		case http.StatusForbidden:
			return &PermissionError{Op: op, Err: err}
		case http.StatusNotFound:
			return &NotFoundError{Resource: op, Err: err}
		case http.StatusTooManyRequests:
			return &RateLimitError{Op: op, Err: err}
		}
	}

	return &InvalidRequestError{Op: op, Code: code, Err: err}
}
