// Package command holds the bot's slash commands. Commands without runtime
// dependencies register themselves in init; the rest are registered by the
// bot once their collaborators exist.
package command

import (
	"fmt"
	"strings"

	"server-actions/internal/actions"
	"server-actions/internal/core"

	"github.com/bwmarrin/discordgo"
)

type ButtonCommand struct{}

func (c *ButtonCommand) Name() string        { return "button" }
func (c *ButtonCommand) Description() string { return "Manage action buttons on this server" }
func (c *ButtonCommand) Category() string    { return "⚙️ Settings" }
func (c *ButtonCommand) RequireAdmin() bool  { return true }
func (c *ButtonCommand) RequireDev() bool    { return false }

func (c *ButtonCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "create",
				Description: "Create or replace a button and post it in this channel",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "id",
						Description: "Button identifier",
						Required:    true,
					},
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "config",
						Description: "Button configuration as JSON",
						Required:    true,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "delete",
				Description: "Delete a stored button",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "id",
						Description: "Button identifier",
						Required:    true,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "list",
				Description: "List this server's buttons",
			},
		},
	}
}

func (c *ButtonCommand) Run(ctx interface{}) error {
	context, ok := ctx.(*core.SlashContext)
	if !ok {
		return nil
	}

	session, event, storage := context.Session, context.Event, context.Storage
	sub := event.ApplicationCommandData().Options[0]

	switch sub.Name {
	case "create":
		return c.create(session, event, storage, sub)
	case "delete":
		return c.delete(session, event, storage, sub)
	case "list":
		return c.list(session, event, storage)
	}
	return nil
}

func (c *ButtonCommand) create(session *discordgo.Session, event *discordgo.InteractionCreate, storage buttonStore, sub *discordgo.ApplicationCommandInteractionDataOption) error {
	var id, rawConfig string
	for _, opt := range sub.Options {
		switch opt.Name {
		case "id":
			id = opt.StringValue()
		case "config":
			rawConfig = opt.StringValue()
		}
	}

	cfg, err := storage.SetButton(event.GuildID, id, []byte(rawConfig))
	if err != nil {
		return core.RespondEphemeral(session, event, fmt.Sprintf("Button not saved: %v", err))
	}

	if _, err := session.ChannelMessageSendComplex(event.ChannelID, &discordgo.MessageSend{
		Content:    buttonPostContent(cfg),
		Components: []discordgo.MessageComponent{buttonRow(id, cfg)},
	}); err != nil {
		return core.RespondEphemeral(session, event, fmt.Sprintf("Button saved but could not be posted: %v", err))
	}
	return core.RespondEphemeral(session, event, fmt.Sprintf("Button `%s` saved and posted with %d actions.", id, len(cfg.Actions)))
}

func (c *ButtonCommand) delete(session *discordgo.Session, event *discordgo.InteractionCreate, storage buttonStore, sub *discordgo.ApplicationCommandInteractionDataOption) error {
	id := sub.Options[0].StringValue()
	if err := storage.DeleteButton(event.GuildID, id); err != nil {
		return core.RespondEphemeral(session, event, fmt.Sprintf("Button `%s` not deleted: %v", id, err))
	}
	return core.RespondEphemeral(session, event, fmt.Sprintf("Button `%s` deleted. Already posted copies will report it as no longer configured.", id))
}

func (c *ButtonCommand) list(session *discordgo.Session, event *discordgo.InteractionCreate, storage buttonStore) error {
	ids, err := storage.ListButtons(event.GuildID)
	if err != nil {
		return core.RespondEphemeral(session, event, fmt.Sprintf("Failed to list buttons: %v", err))
	}
	if len(ids) == 0 {
		return core.RespondEphemeral(session, event, "No buttons configured on this server.")
	}
	return core.RespondEphemeral(session, event, "Configured buttons: `"+strings.Join(ids, "`, `")+"`")
}

// buttonStore is the slice of storage this command needs.
type buttonStore interface {
	SetButton(guildID, buttonID string, raw []byte) (*actions.ButtonConfig, error)
	DeleteButton(guildID, buttonID string) error
	ListButtons(guildID string) ([]string, error)
}

func buttonPostContent(cfg *actions.ButtonConfig) string {
	if cfg.Appearance.Label != "" {
		return ""
	}
	return "Press the button below."
}

// buttonRow renders the stored appearance into a component row.
func buttonRow(id string, cfg *actions.ButtonConfig) discordgo.ActionsRow {
	style := discordgo.PrimaryButton
	switch cfg.Appearance.Style {
	case "secondary":
		style = discordgo.SecondaryButton
	case "success":
		style = discordgo.SuccessButton
	case "danger":
		style = discordgo.DangerButton
	}

	label := cfg.Appearance.Label
	if label == "" {
		label = id
	}

	btn := discordgo.Button{
		Label:    label,
		Style:    style,
		Disabled: cfg.Appearance.Disabled,
		CustomID: actions.ButtonCustomID(id),
	}
	if cfg.Appearance.Emoji != "" {
		btn.Emoji = &discordgo.ComponentEmoji{Name: cfg.Appearance.Emoji}
	}
	return discordgo.ActionsRow{Components: []discordgo.MessageComponent{btn}}
}

func init() {
	core.RegisterCommand(
		core.ApplyMiddlewares(
			&ButtonCommand{},
			core.WithGuildOnly(),
			core.WithAdminOnly(),
			core.WithCommandLogger(),
		),
	)
}
