package command

import (
	"fmt"
	"strings"

	"server-actions/internal/core"

	"github.com/bwmarrin/discordgo"
)

const (
	discordMaxMessageLength = 2000
	codeLeftBlockWrapper    = "```md"
	codeRightBlockWrapper   = "```"
)

var maxContentLength = discordMaxMessageLength - len(codeLeftBlockWrapper) - len(codeRightBlockWrapper)

type CmdLogCommand struct{}

func (c *CmdLogCommand) Name() string        { return "cmd-log" }
func (c *CmdLogCommand) Description() string { return "Review recently used commands" }
func (c *CmdLogCommand) Category() string    { return "⚙️ Settings" }
func (c *CmdLogCommand) RequireAdmin() bool  { return true }
func (c *CmdLogCommand) RequireDev() bool    { return false }

func (c *CmdLogCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *CmdLogCommand) Run(ctx interface{}) error {
	context, ok := ctx.(*core.SlashContext)
	if !ok {
		return nil
	}

	session := context.Session
	event := context.Event
	storage := context.Storage

	records, err := storage.FetchCommandHistory(event.GuildID)
	if err != nil {
		return core.RespondEphemeral(session, event, fmt.Sprintf("Failed to fetch command logs: %v", err))
	}
	if len(records) == 0 {
		return core.RespondEphemeral(session, event, "No command logs found.")
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("%-19s\t%-15s\t%-12s\t%s\n", "# Datetime", "# Username", "# Channel", "# Command"))

	// Latest first
	for i := len(records) - 1; i >= 0; i-- {
		r := records[i]
		line := fmt.Sprintf(
			"%-19s\t%-15s\t#%-12s\t/%s\n",
			r.Datetime.Format("2006-01-02 15:04:05"),
			r.Username,
			r.ChannelName,
			r.Command,
		)
		if builder.Len()+len(line) > maxContentLength {
			break
		}
		builder.WriteString(line)
	}

	msg := codeLeftBlockWrapper + "\n" + builder.String() + codeRightBlockWrapper
	return core.RespondEphemeral(session, event, msg)
}

func init() {
	core.RegisterCommand(
		core.ApplyMiddlewares(
			&CmdLogCommand{},
			core.WithGuildOnly(),
			core.WithAdminOnly(),
			core.WithCommandLogger(),
		),
	)
}
