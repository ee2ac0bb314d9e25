package command

import (
	"fmt"

	"server-actions/internal/core"

	"github.com/bwmarrin/discordgo"
)

type PingCommand struct{}

func (c *PingCommand) Name() string        { return "ping" }
func (c *PingCommand) Description() string { return "Check bot latency" }
func (c *PingCommand) Category() string    { return "🛠️ Maintenance" }
func (c *PingCommand) RequireAdmin() bool  { return false }
func (c *PingCommand) RequireDev() bool    { return false }

func (c *PingCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
}

func (c *PingCommand) Run(ctx interface{}) error {
	switch context := ctx.(type) {
	case *core.SlashContext:
		latency := context.Session.HeartbeatLatency().Milliseconds()
		return core.RespondEphemeral(context.Session, context.Event, fmt.Sprintf("Pong! Latency: %dms", latency))

	case *core.SyntheticContext:
		latency := context.Session.HeartbeatLatency().Milliseconds()
		context.Reply("Pong! Latency: %dms", latency)
		return nil
	}
	return nil
}

func init() {
	core.RegisterCommand(
		core.ApplyMiddlewares(
			&PingCommand{},
			core.WithCommandLogger(),
		),
	)
}
