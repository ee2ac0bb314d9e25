package command

import (
	"fmt"

	"server-actions/internal/actions"
	"server-actions/internal/core"

	"github.com/bwmarrin/discordgo"
)

// RollbackCommand reverses one action of a finished execution. It carries the
// engine, so the bot registers it once the engine exists instead of in init.
type RollbackCommand struct {
	Engine *actions.Engine
}

func (c *RollbackCommand) Name() string        { return "rollback" }
func (c *RollbackCommand) Description() string { return "Reverse one action of a finished execution" }
func (c *RollbackCommand) Category() string    { return "⚙️ Settings" }
func (c *RollbackCommand) RequireAdmin() bool  { return true }
func (c *RollbackCommand) RequireDev() bool    { return false }

func (c *RollbackCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "execution_id",
				Description: "Execution id from the run reply",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "action_index",
				Description: "Zero-based index of the action to reverse",
				Required:    true,
			},
		},
	}
}

func (c *RollbackCommand) Run(ctx interface{}) error {
	context, ok := ctx.(*core.SlashContext)
	if !ok {
		return nil
	}

	session, event := context.Session, context.Event
	opts := core.OptionMap(event)
	executionID := opts["execution_id"].StringValue()
	actionIndex := int(opts["action_index"].IntValue())

	// Rollback talks to the API per target; answer after deferring so the
	// interaction does not time out on large target sets.
	if err := core.DeferEphemeral(session, event); err != nil {
		return err
	}

	res, err := c.Engine.Rollback(executionID, actionIndex)
	if err != nil {
		return core.FollowUpEphemeral(session, event, fmt.Sprintf("Rollback failed: %v", err))
	}
	if !res.Success {
		if res.Message == "rollback_not_supported" {
			return core.FollowUpEphemeral(session, event, fmt.Sprintf("The %s action cannot be reversed.", res.ActionType))
		}
		return core.FollowUpEphemeral(session, event, "Rollback finished with failures: "+res.Message)
	}
	return core.FollowUpEphemeral(session, event, "Rolled back: "+res.Message)
}
