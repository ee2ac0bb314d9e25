package actions

import (
	"fmt"
	"time"

	"server-actions/internal/platform"

	"github.com/bwmarrin/discordgo"
)

// timeoutMaxSeconds is the longest communication timeout the API accepts.
const timeoutMaxSeconds = 28 * 24 * 60 * 60

// ModerationExecutor applies timeouts, kicks, bans and warnings. The guild
// owner, the bot itself and anyone ranked at or above the bot are always
// skipped. Bans and timeouts are compensable; a kicked member cannot be
// brought back and a warning cannot be unsent, so those modes refuse rollback.
type ModerationExecutor struct{}

type moderationRollback struct {
	Mode    string
	UserIDs []string
}

func (e *ModerationExecutor) Type() Kind                     { return KindModeration }
func (e *ModerationExecutor) SupportedTargets() []TargetKind { return AllTargetKinds }

// Required capabilities depend on the mode; Perform checks them itself.
func (e *ModerationExecutor) RequiredPermissions() []int64 { return nil }

func (e *ModerationExecutor) Perform(ctx *Context, action Action, targets []*discordgo.Member) (*Result, error) {
	mode := strParam(action.Params, "mode")
	reason := strParam(action.Params, "reason")
	duration := intParam(action.Params, "duration_seconds")
	deleteDays := intParam(action.Params, "delete_days")

	var required int64
	switch mode {
	case "timeout-add":
		if duration <= 0 {
			return nil, &ValidationError{Message: "moderation action: timeout-add without a positive duration_seconds"}
		}
		if duration > timeoutMaxSeconds {
			return nil, &ValidationError{Message: fmt.Sprintf("moderation action: timeout duration exceeds %d seconds", timeoutMaxSeconds)}
		}
		required = discordgo.PermissionModerateMembers
	case "timeout-remove":
		required = discordgo.PermissionModerateMembers
	case "kick":
		required = discordgo.PermissionKickMembers
	case "ban":
		if deleteDays < 0 || deleteDays > 7 {
			return nil, &ValidationError{Message: "moderation action: delete_days must be between 0 and 7"}
		}
		required = discordgo.PermissionBanMembers
	case "warn":
		if reason == "" {
			return nil, &ValidationError{Message: "moderation action: warn without a reason"}
		}
	default:
		return nil, &ValidationError{Message: fmt.Sprintf("moderation action: unknown mode %q", mode)}
	}
	if required != 0 {
		if err := requireOperatorPermissions(ctx, []int64{required}, "moderation action"); err != nil {
			return nil, err
		}
	}

	g, err := newGuard(ctx)
	if err != nil {
		return nil, err
	}

	rb := &moderationRollback{Mode: mode}
	outcomes := make([]TargetOutcome, 0, len(targets))
	for _, m := range targets {
		outcomes = append(outcomes, e.applyOne(ctx, g, m, mode, reason, duration, deleteDays, rb))
	}

	res := newResult(KindModeration)
	res.setOutcomes(outcomes)
	res.Rollback = rb
	res.Message = fmt.Sprintf("moderation %s: %d applied, %d skipped, %d failed",
		mode, len(rb.UserIDs), countOutcomes(outcomes, OutcomeSkipped), countOutcomes(outcomes, OutcomeFailed))
	return res, nil
}

func (e *ModerationExecutor) applyOne(ctx *Context, g *guard, m *discordgo.Member, mode, reason string, duration, deleteDays int, rb *moderationRollback) TargetOutcome {
	id := m.User.ID
	if off, why := g.protected(m, true); off {
		return TargetOutcome{ID: id, Status: OutcomeSkipped, Detail: why}
	}

	var err error
	switch mode {
	case "timeout-add":
		until := time.Now().Add(time.Duration(duration) * time.Second)
		err = ctx.Client.Timeout(ctx.GuildID, id, &until)
	case "timeout-remove":
		if m.CommunicationDisabledUntil == nil || m.CommunicationDisabledUntil.Before(time.Now()) {
			return TargetOutcome{ID: id, Status: OutcomeSkipped, Detail: "not timed out"}
		}
		err = ctx.Client.Timeout(ctx.GuildID, id, nil)
	case "kick":
		err = ctx.Client.Kick(ctx.GuildID, id, reason)
	case "ban":
		err = ctx.Client.Ban(ctx.GuildID, id, reason, deleteDays)
	case "warn":
		err = e.warnOne(ctx, m, reason)
	}
	if err != nil {
		return TargetOutcome{ID: id, Status: OutcomeFailed, Detail: err.Error()}
	}

	rb.UserIDs = append(rb.UserIDs, id)
	return TargetOutcome{ID: id, Status: OutcomeOK}
}

// warnOne delivers the warning by DM. Closed DMs degrade to a channel mention
// so the warning is still on record somewhere visible.
func (e *ModerationExecutor) warnOne(ctx *Context, m *discordgo.Member, reason string) error {
	text := fmt.Sprintf("You have received a warning in this server: %s", reason)
	_, err := ctx.Client.SendDirect(m.User.ID, text)
	if err == nil {
		return nil
	}
	if !platform.IsDMBlocked(err) {
		return err
	}
	_, err = ctx.Client.SendMessage(ctx.ChannelID, fmt.Sprintf("<@%s> warning: %s", m.User.ID, reason))
	return err
}

// Rollback lifts bans and timeouts applied by the original run. Kicks and
// warnings report rollback_not_supported.
func (e *ModerationExecutor) Rollback(ctx *Context, action Action, prev *Result) (*Result, error) {
	rb, ok := prev.Rollback.(*moderationRollback)
	if !ok {
		return rollbackUnsupported(KindModeration), nil
	}

	switch rb.Mode {
	case "ban", "timeout-add":
	default:
		return rollbackUnsupported(KindModeration), nil
	}

	var outcomes []TargetOutcome
	for _, id := range rb.UserIDs {
		var err error
		switch rb.Mode {
		case "ban":
			if _, banErr := ctx.Client.GetBan(ctx.GuildID, id); banErr != nil {
				outcomes = append(outcomes, TargetOutcome{ID: id, Status: OutcomeSkipped, Detail: "no longer banned"})
				continue
			}
			err = ctx.Client.Unban(ctx.GuildID, id)
		case "timeout-add":
			err = ctx.Client.Timeout(ctx.GuildID, id, nil)
		}
		if err != nil {
			outcomes = append(outcomes, TargetOutcome{ID: id, Status: OutcomeFailed, Detail: err.Error()})
			continue
		}
		outcomes = append(outcomes, TargetOutcome{ID: id, Status: OutcomeOK})
	}

	res := newResult(KindModeration)
	res.setOutcomes(outcomes)
	res.Message = fmt.Sprintf("moderation rollback (%s): %d lifted, %d skipped, %d failed",
		rb.Mode, countOutcomes(outcomes, OutcomeOK), countOutcomes(outcomes, OutcomeSkipped), countOutcomes(outcomes, OutcomeFailed))
	return res, nil
}
