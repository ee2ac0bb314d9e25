package actions

import (
	"server-actions/internal/platform"

	"github.com/bwmarrin/discordgo"
)

// Context carries everything one trigger's actions need. Built once per press,
// read-only through the run.
type Context struct {
	Actor     *discordgo.Member
	GuildID   string
	ChannelID string
	MessageID string
	ButtonID  string

	Client platform.Client

	// ProtectedIDs are operator-configured users no action may touch,
	// on top of the hierarchy rules.
	ProtectedIDs []string

	// Optional collaborators; executors that need an absent one fail their
	// own action instead of the whole run.
	Commands CommandInvoker
	Players  PlayerProvider
}

// CommandInvoker replays an already-registered bot command with synthesized
// options. Reply lines the command produces are returned for the result
// envelope.
type CommandInvoker interface {
	Invoke(name string, options map[string]any, actx *Context) ([]string, error)
}

// Player is the playback engine surface an action can drive. The engine itself
// is an external collaborator; only this control surface is part of the
// contract.
type Player interface {
	Pause() error
	Resume() error
	Skip() error
	Stop() error
}

// PlayerProvider hands out the per-guild player, if one is active.
type PlayerProvider interface {
	Player(guildID string) (Player, bool)
}

func (c *Context) valid() error {
	switch {
	case c == nil:
		return &ValidationError{Message: "missing execution context"}
	case c.Actor == nil || c.Actor.User == nil:
		return &ValidationError{Message: "execution context has no actor"}
	case c.GuildID == "":
		return &ValidationError{Message: "execution context has no guild"}
	case c.ChannelID == "":
		return &ValidationError{Message: "execution context has no channel"}
	case c.Client == nil:
		return &ValidationError{Message: "execution context has no platform client"}
	}
	return nil
}
