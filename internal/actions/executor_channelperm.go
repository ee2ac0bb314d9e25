package actions

import (
	"fmt"

	"server-actions/internal/platform"

	"github.com/bwmarrin/discordgo"
)

// ChannelPermissionExecutor edits per-member permission overwrites. Pointing
// the action at a category edits the category and its children; on every
// channel the requested bits are filtered to what that channel type can carry
// and merged into the existing overwrite so unrelated bits survive. Protected
// members are skipped the same way as in every other member operation.
type ChannelPermissionExecutor struct{}

type overwriteState struct {
	Existed bool
	Allow   int64
	Deny    int64
}

type channelPermRollback struct {
	// Previous is keyed channelID, then userID.
	Previous map[string]map[string]overwriteState
}

func (e *ChannelPermissionExecutor) Type() Kind                     { return KindChannelPermission }
func (e *ChannelPermissionExecutor) SupportedTargets() []TargetKind { return AllTargetKinds }
func (e *ChannelPermissionExecutor) RequiredPermissions() []int64 {
	return []int64{discordgo.PermissionManageRoles}
}

func (e *ChannelPermissionExecutor) Perform(ctx *Context, action Action, targets []*discordgo.Member) (*Result, error) {
	mode := strParam(action.Params, "mode")
	switch mode {
	case "set", "clear":
	default:
		return nil, &ValidationError{Message: fmt.Sprintf("channel-permission action: unknown mode %q", mode)}
	}

	var allow, deny int64
	if mode == "set" {
		var err error
		allow, err = permissionMask(strSliceParam(action.Params, "allow"))
		if err != nil {
			return nil, err
		}
		deny, err = permissionMask(strSliceParam(action.Params, "deny"))
		if err != nil {
			return nil, err
		}
		if allow == 0 && deny == 0 {
			return nil, &ValidationError{Message: "channel-permission action: set mode with empty allow and deny"}
		}
		if allow&deny != 0 {
			return nil, &ValidationError{Message: "channel-permission action: same permission in allow and deny"}
		}
	}

	channelID := strParam(action.Params, "channel_id")
	if channelID == "" {
		channelID = ctx.ChannelID
	}
	channels, err := ExpandChannel(ctx, channelID, true)
	if err != nil {
		return nil, err
	}

	g, err := newGuard(ctx)
	if err != nil {
		return nil, err
	}

	rb := &channelPermRollback{Previous: make(map[string]map[string]overwriteState)}
	var outcomes []TargetOutcome
	for _, m := range targets {
		if off, reason := g.protected(m, true); off {
			outcomes = append(outcomes, TargetOutcome{ID: m.User.ID, Status: OutcomeSkipped, Detail: reason})
			continue
		}
		for _, ch := range channels {
			outcomes = append(outcomes, e.applyOne(ctx, ch, m.User.ID, mode, allow, deny, rb))
		}
	}

	res := newResult(KindChannelPermission)
	res.setOutcomes(outcomes)
	res.Rollback = rb
	res.Message = fmt.Sprintf("channel permissions %s on %d channels: %d applied, %d skipped, %d failed",
		mode, len(channels), countOutcomes(outcomes, OutcomeOK), countOutcomes(outcomes, OutcomeSkipped), countOutcomes(outcomes, OutcomeFailed))
	return res, nil
}

func (e *ChannelPermissionExecutor) applyOne(ctx *Context, ch *discordgo.Channel, userID, mode string, allow, deny int64, rb *channelPermRollback) TargetOutcome {
	outcomeID := ch.ID + "/" + userID
	prior := findOverwrite(ch, userID)

	if mode == "clear" {
		if !prior.Existed {
			return TargetOutcome{ID: outcomeID, Status: OutcomeSkipped, Detail: "no overwrite to clear"}
		}
		if err := ctx.Client.DeleteChannelPermission(ch.ID, userID); err != nil {
			return TargetOutcome{ID: outcomeID, Status: OutcomeFailed, Detail: err.Error()}
		}
		e.capture(rb, ch.ID, userID, prior)
		return TargetOutcome{ID: outcomeID, Status: OutcomeOK}
	}

	chAllow := platform.LegalPermissionMask(ch.Type, allow)
	chDeny := platform.LegalPermissionMask(ch.Type, deny)
	if chAllow == 0 && chDeny == 0 {
		return TargetOutcome{ID: outcomeID, Status: OutcomeSkipped, Detail: "no requested permission applies to this channel type"}
	}

	// Merge into the existing overwrite: requested bits win, the rest stays.
	newAllow := (prior.Allow &^ chDeny) | chAllow
	newDeny := (prior.Deny &^ chAllow) | chDeny
	if prior.Existed && newAllow == prior.Allow && newDeny == prior.Deny {
		return TargetOutcome{ID: outcomeID, Status: OutcomeSkipped, Detail: "overwrite already matches"}
	}

	if err := ctx.Client.SetChannelPermission(ch.ID, userID, discordgo.PermissionOverwriteTypeMember, newAllow, newDeny); err != nil {
		return TargetOutcome{ID: outcomeID, Status: OutcomeFailed, Detail: err.Error()}
	}
	e.capture(rb, ch.ID, userID, prior)
	return TargetOutcome{ID: outcomeID, Status: OutcomeOK}
}

func (e *ChannelPermissionExecutor) capture(rb *channelPermRollback, channelID, userID string, prior overwriteState) {
	if rb.Previous[channelID] == nil {
		rb.Previous[channelID] = make(map[string]overwriteState)
	}
	rb.Previous[channelID][userID] = prior
}

// Rollback restores each touched overwrite to its captured state, deleting
// overwrites that did not exist before the run.
func (e *ChannelPermissionExecutor) Rollback(ctx *Context, action Action, prev *Result) (*Result, error) {
	rb, ok := prev.Rollback.(*channelPermRollback)
	if !ok {
		return rollbackUnsupported(KindChannelPermission), nil
	}

	var outcomes []TargetOutcome
	for channelID, byUser := range rb.Previous {
		for userID, prior := range byUser {
			outcomeID := channelID + "/" + userID
			var err error
			if prior.Existed {
				err = ctx.Client.SetChannelPermission(channelID, userID, discordgo.PermissionOverwriteTypeMember, prior.Allow, prior.Deny)
			} else {
				err = ctx.Client.DeleteChannelPermission(channelID, userID)
			}
			if err != nil {
				outcomes = append(outcomes, TargetOutcome{ID: outcomeID, Status: OutcomeFailed, Detail: err.Error()})
				continue
			}
			outcomes = append(outcomes, TargetOutcome{ID: outcomeID, Status: OutcomeOK})
		}
	}

	res := newResult(KindChannelPermission)
	res.setOutcomes(outcomes)
	res.Message = fmt.Sprintf("channel permission rollback: %d restored, %d failed",
		countOutcomes(outcomes, OutcomeOK), countOutcomes(outcomes, OutcomeFailed))
	return res, nil
}

func findOverwrite(ch *discordgo.Channel, userID string) overwriteState {
	for _, ow := range ch.PermissionOverwrites {
		if ow.Type == discordgo.PermissionOverwriteTypeMember && ow.ID == userID {
			return overwriteState{Existed: true, Allow: ow.Allow, Deny: ow.Deny}
		}
	}
	return overwriteState{}
}

// permissionMask folds a list of snake_case permission identifiers into one
// bitmask. Unknown identifiers are rejected instead of silently ignored.
func permissionMask(names []string) (int64, error) {
	var mask int64
	for _, name := range names {
		bit, ok := platform.PermissionBit(name)
		if !ok {
			return 0, &ValidationError{Message: fmt.Sprintf("channel-permission action: unknown permission %q", name)}
		}
		mask |= bit
	}
	return mask, nil
}
