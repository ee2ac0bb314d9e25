package actions

import (
	"context"
	"fmt"
	"log"
	"time"

	"server-actions/pkg/jobmgr"

	"github.com/bwmarrin/discordgo"
)

// VoiceExecutor drives voice state: moving, disconnecting, server-muting,
// server-deafening and stage-suppressing members. Targets not connected to
// voice are skipped. With a revert_after parameter the change is undone
// automatically through a deferred job; an explicit rollback before the timer
// fires cancels it.
type VoiceExecutor struct {
	Jobs *jobmgr.Manager
}

type voiceState struct {
	ChannelID string
	Mute      bool
	Deaf      bool
	Suppress  bool
}

type voiceRollback struct {
	Mode     string
	Previous map[string]voiceState // userID -> state before the change
}

func NewVoiceExecutor(jobs *jobmgr.Manager) *VoiceExecutor {
	return &VoiceExecutor{Jobs: jobs}
}

func (e *VoiceExecutor) Type() Kind                     { return KindVoice }
func (e *VoiceExecutor) SupportedTargets() []TargetKind { return AllTargetKinds }

// Required capabilities depend on the mode; Perform checks them itself.
func (e *VoiceExecutor) RequiredPermissions() []int64 { return nil }

func (e *VoiceExecutor) Perform(ctx *Context, action Action, targets []*discordgo.Member) (*Result, error) {
	mode := strParam(action.Params, "mode")
	channelID := strParam(action.Params, "channel_id")
	revertAfter := intParam(action.Params, "revert_after")

	var required int64
	switch mode {
	case "move":
		if channelID == "" {
			return nil, &ValidationError{Message: "voice action: move without channel_id"}
		}
		required = discordgo.PermissionVoiceMoveMembers
	case "disconnect":
		required = discordgo.PermissionVoiceMoveMembers
	case "mute", "unmute":
		required = discordgo.PermissionVoiceMuteMembers
	case "deafen", "undeafen":
		required = discordgo.PermissionVoiceDeafenMembers
	case "priority-speak", "suppress":
		required = discordgo.PermissionVoiceMuteMembers
	default:
		return nil, &ValidationError{Message: fmt.Sprintf("voice action: unknown mode %q", mode)}
	}
	if err := requireOperatorPermissions(ctx, []int64{required}, "voice action"); err != nil {
		return nil, err
	}

	g, err := newGuard(ctx)
	if err != nil {
		return nil, err
	}

	rb := &voiceRollback{Mode: mode, Previous: make(map[string]voiceState)}
	outcomes := make([]TargetOutcome, 0, len(targets))
	for _, m := range targets {
		outcomes = append(outcomes, e.applyOne(ctx, g, m, mode, channelID, rb))
	}

	res := newResult(KindVoice)
	res.setOutcomes(outcomes)
	res.Rollback = rb
	res.Message = fmt.Sprintf("voice %s: %d changed, %d skipped, %d failed",
		mode, len(rb.Previous), countOutcomes(outcomes, OutcomeSkipped), countOutcomes(outcomes, OutcomeFailed))

	if revertAfter > 0 && len(rb.Previous) > 0 {
		e.scheduleRevert(ctx, rb, time.Duration(revertAfter)*time.Second)
	}
	return res, nil
}

func (e *VoiceExecutor) applyOne(ctx *Context, g *guard, m *discordgo.Member, mode, channelID string, rb *voiceRollback) TargetOutcome {
	id := m.User.ID
	if off, reason := g.protected(m, true); off {
		return TargetOutcome{ID: id, Status: OutcomeSkipped, Detail: reason}
	}

	vs, err := ctx.Client.VoiceState(ctx.GuildID, id)
	if err != nil || vs == nil || vs.ChannelID == "" {
		return TargetOutcome{ID: id, Status: OutcomeSkipped, Detail: "not in a voice channel"}
	}
	prior := voiceState{ChannelID: vs.ChannelID, Mute: vs.Mute, Deaf: vs.Deaf, Suppress: vs.Suppress}

	var opErr error
	switch mode {
	case "move":
		if vs.ChannelID == channelID {
			return TargetOutcome{ID: id, Status: OutcomeSkipped, Detail: "already in target channel"}
		}
		opErr = ctx.Client.VoiceMove(ctx.GuildID, id, channelID)
	case "disconnect":
		opErr = ctx.Client.VoiceDisconnect(ctx.GuildID, id)
	case "mute":
		if vs.Mute {
			return TargetOutcome{ID: id, Status: OutcomeSkipped, Detail: "already muted"}
		}
		opErr = ctx.Client.VoiceMute(ctx.GuildID, id, true)
	case "unmute":
		if !vs.Mute {
			return TargetOutcome{ID: id, Status: OutcomeSkipped, Detail: "not muted"}
		}
		opErr = ctx.Client.VoiceMute(ctx.GuildID, id, false)
	case "deafen":
		if vs.Deaf {
			return TargetOutcome{ID: id, Status: OutcomeSkipped, Detail: "already deafened"}
		}
		opErr = ctx.Client.VoiceDeafen(ctx.GuildID, id, true)
	case "undeafen":
		if !vs.Deaf {
			return TargetOutcome{ID: id, Status: OutcomeSkipped, Detail: "not deafened"}
		}
		opErr = ctx.Client.VoiceDeafen(ctx.GuildID, id, false)
	case "priority-speak":
		if !vs.Suppress {
			return TargetOutcome{ID: id, Status: OutcomeSkipped, Detail: "already able to speak"}
		}
		opErr = ctx.Client.VoiceSuppress(ctx.GuildID, id, false)
	case "suppress":
		if vs.Suppress {
			return TargetOutcome{ID: id, Status: OutcomeSkipped, Detail: "already suppressed"}
		}
		opErr = ctx.Client.VoiceSuppress(ctx.GuildID, id, true)
	}
	if opErr != nil {
		return TargetOutcome{ID: id, Status: OutcomeFailed, Detail: opErr.Error()}
	}

	rb.Previous[id] = prior
	return TargetOutcome{ID: id, Status: OutcomeOK}
}

// scheduleRevert arms one deferred job per changed member. Job names are
// deterministic so an explicit rollback can cancel a pending revert instead
// of reverting twice.
func (e *VoiceExecutor) scheduleRevert(ctx *Context, rb *voiceRollback, after time.Duration) {
	if e.Jobs == nil {
		log.Printf("[WARN] Voice revert_after configured but no job manager is wired, skipping")
		return
	}
	for id, prior := range rb.Previous {
		id, prior := id, prior
		name := voiceRevertJobName(ctx.GuildID, id, rb.Mode)
		err := e.Jobs.StartAfter(name, after, func(jctx context.Context) error {
			return e.revertOne(ctx, rb.Mode, id, prior)
		})
		if err != nil {
			log.Printf("[WARN] Voice revert job %s not scheduled: %v", name, err)
		}
	}
}

func (e *VoiceExecutor) revertOne(ctx *Context, mode, userID string, prior voiceState) error {
	vs, err := ctx.Client.VoiceState(ctx.GuildID, userID)
	if err != nil || vs == nil || vs.ChannelID == "" {
		// Left voice in the meantime; mute and deafen flags persist on the
		// member, so those still need restoring. Suppress dies with the stage
		// session, so there is nothing to undo.
		if mode == "mute" || mode == "unmute" {
			return ctx.Client.VoiceMute(ctx.GuildID, userID, prior.Mute)
		}
		if mode == "deafen" || mode == "undeafen" {
			return ctx.Client.VoiceDeafen(ctx.GuildID, userID, prior.Deaf)
		}
		return nil
	}

	switch mode {
	case "move", "disconnect":
		if vs.ChannelID == prior.ChannelID {
			return nil
		}
		return ctx.Client.VoiceMove(ctx.GuildID, userID, prior.ChannelID)
	case "mute", "unmute":
		if vs.Mute == prior.Mute {
			return nil
		}
		return ctx.Client.VoiceMute(ctx.GuildID, userID, prior.Mute)
	case "deafen", "undeafen":
		if vs.Deaf == prior.Deaf {
			return nil
		}
		return ctx.Client.VoiceDeafen(ctx.GuildID, userID, prior.Deaf)
	case "priority-speak", "suppress":
		if vs.Suppress == prior.Suppress {
			return nil
		}
		return ctx.Client.VoiceSuppress(ctx.GuildID, userID, prior.Suppress)
	}
	return nil
}

// Rollback restores every changed member's captured voice state and cancels
// any pending auto-revert jobs for them.
func (e *VoiceExecutor) Rollback(ctx *Context, action Action, prev *Result) (*Result, error) {
	rb, ok := prev.Rollback.(*voiceRollback)
	if !ok {
		return rollbackUnsupported(KindVoice), nil
	}

	var outcomes []TargetOutcome
	for id, prior := range rb.Previous {
		if e.Jobs != nil {
			_ = e.Jobs.Stop(voiceRevertJobName(ctx.GuildID, id, rb.Mode))
		}
		if err := e.revertOne(ctx, rb.Mode, id, prior); err != nil {
			outcomes = append(outcomes, TargetOutcome{ID: id, Status: OutcomeFailed, Detail: err.Error()})
			continue
		}
		outcomes = append(outcomes, TargetOutcome{ID: id, Status: OutcomeOK})
	}

	res := newResult(KindVoice)
	res.setOutcomes(outcomes)
	res.Message = fmt.Sprintf("voice rollback: %d restored, %d failed",
		countOutcomes(outcomes, OutcomeOK), countOutcomes(outcomes, OutcomeFailed))
	return res, nil
}

func voiceRevertJobName(guildID, userID, mode string) string {
	return "voice-revert:" + guildID + ":" + userID + ":" + mode
}
