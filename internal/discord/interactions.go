package discord

import (
	"fmt"
	"log"

	"server-actions/internal/actions"
	"server-actions/internal/core"

	"github.com/bwmarrin/discordgo"
)

// onInteractionCreate dispatches slash commands to the registry and button
// presses to the action handler.
func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		b.dispatchSlash(s, i)

	case discordgo.InteractionMessageComponent:
		customID := i.MessageComponentData().CustomID
		buttonID, ok := actions.ParseButtonCustomID(customID)
		if !ok {
			log.Printf("[WARN] No matching component for customID: %s", customID)
			return
		}
		b.dispatchButton(s, i, buttonID)

	default:
		log.Printf("[DEBUG] Unhandled interaction type: %d", i.Type)
	}
}

func (b *Bot) dispatchSlash(s *discordgo.Session, i *discordgo.InteractionCreate) {
	cmdName := i.ApplicationCommandData().Name
	cmd, ok := core.GetCommand(cmdName)
	if !ok {
		log.Printf("[WARN] Unknown command: %s", cmdName)
		return
	}

	ctx := &core.SlashContext{
		Session: s,
		Event:   i,
		Storage: b.storage,
	}
	if err := cmd.Run(ctx); err != nil {
		log.Println("[ERR] Error running slash command:", err)
		_ = core.RespondEphemeral(s, i, fmt.Sprintf("Error running command: %v", err))
	}
}

// dispatchButton acknowledges the press immediately and runs the batch on its
// own goroutine; configured delays can exceed the interaction deadline by far.
func (b *Bot) dispatchButton(s *discordgo.Session, i *discordgo.InteractionCreate, buttonID string) {
	if i.Member == nil || i.Member.User == nil {
		return
	}

	if err := core.DeferEphemeral(s, i); err != nil {
		log.Printf("[ERR] Failed to ack button %s: %v", buttonID, err)
		return
	}

	trigger := actions.Trigger{
		GuildID:   i.GuildID,
		ChannelID: i.ChannelID,
		ButtonID:  buttonID,
		Actor:     i.Member,
	}
	if i.Message != nil {
		trigger.MessageID = i.Message.ID
	}

	go func() {
		reply, rec := b.handler.HandleTrigger(trigger)
		if rec != nil {
			reply = fmt.Sprintf("%s (run `%s`)", reply, rec.ID)
		}
		if err := core.FollowUpEphemeral(s, i, reply); err != nil {
			log.Printf("[WARN] Failed to deliver button reply for %s: %v", buttonID, err)
		}
	}()
}
