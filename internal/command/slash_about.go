package command

import (
	"server-actions/internal/core"
	"server-actions/internal/version"

	"github.com/bwmarrin/discordgo"
)

type AboutCommand struct{}

func (c *AboutCommand) Name() string        { return "about" }
func (c *AboutCommand) Description() string { return "What this bot is and what it runs" }
func (c *AboutCommand) Category() string    { return "🕯️ Information" }
func (c *AboutCommand) RequireAdmin() bool  { return false }
func (c *AboutCommand) RequireDev() bool    { return false }

func (c *AboutCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *AboutCommand) Run(ctx interface{}) error {
	context, ok := ctx.(*core.SlashContext)
	if !ok {
		return nil
	}

	embed := &discordgo.MessageEmbed{
		Title:       "ℹ️ About " + version.AppName,
		Description: version.AppDescription,
		Color:       core.EmbedColor,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:  "Version",
				Value: version.AppVersion,
			},
		},
	}
	return core.RespondEmbedEphemeral(context.Session, context.Event, embed)
}

func init() {
	core.RegisterCommand(
		core.ApplyMiddlewares(
			&AboutCommand{},
			core.WithCommandLogger(),
		),
	)
}
