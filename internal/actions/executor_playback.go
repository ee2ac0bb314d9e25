package actions

import (
	"fmt"

	"server-actions/internal/platform"

	"github.com/bwmarrin/discordgo"
)

// PlaybackExecutor drives the guild's audio player through the provider wired
// at startup. Playback is transient state; rolling it back makes no sense, so
// this executor has no Rollback.
type PlaybackExecutor struct {
	Players PlayerProvider
}

func NewPlaybackExecutor(players PlayerProvider) *PlaybackExecutor {
	return &PlaybackExecutor{Players: players}
}

func (e *PlaybackExecutor) Type() Kind                     { return KindPlayback }
func (e *PlaybackExecutor) SupportedTargets() []TargetKind { return []TargetKind{TargetSelf} }
func (e *PlaybackExecutor) RequiredPermissions() []int64   { return nil }

func (e *PlaybackExecutor) Perform(ctx *Context, action Action, targets []*discordgo.Member) (*Result, error) {
	mode := strParam(action.Params, "mode")
	switch mode {
	case "pause", "resume", "skip", "stop":
	default:
		return nil, &ValidationError{Message: fmt.Sprintf("playback action: unknown mode %q", mode)}
	}

	provider := e.Players
	if provider == nil {
		provider = ctx.Players
	}
	if provider == nil {
		return nil, &platform.NotFoundError{Resource: "player", ID: ctx.GuildID}
	}
	player, ok := provider.Player(ctx.GuildID)
	if !ok {
		return nil, &platform.NotFoundError{Resource: "player", ID: ctx.GuildID}
	}

	var err error
	switch mode {
	case "pause":
		err = player.Pause()
	case "resume":
		err = player.Resume()
	case "skip":
		err = player.Skip()
	case "stop":
		err = player.Stop()
	}
	if err != nil {
		return nil, err
	}

	res := newResult(KindPlayback)
	res.Message = "playback " + mode
	return res, nil
}
