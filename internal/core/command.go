// Package core defines the bot command contract: the Command interface, the
// runtime contexts commands execute in, the global registry and the
// decorator-style middleware chain.
package core

import (
	"fmt"

	"server-actions/internal/storage"

	"github.com/bwmarrin/discordgo"
)

type Command interface {
	Name() string
	Description() string
	Category() string
	RequireAdmin() bool
	RequireDev() bool
	Run(ctx interface{}) error
}

// SlashProvider - how this command should be registered with Discord.
type SlashProvider interface {
	SlashDefinition() *discordgo.ApplicationCommand
}

// SlashContext is what the runtime hands a command invoked as a slash command.
type SlashContext struct {
	Session *discordgo.Session
	Event   *discordgo.InteractionCreate
	Storage *storage.Storage
}

// SyntheticContext is a slash invocation without an interaction behind it:
// a button's command action replaying a registered command on behalf of the
// pressing user. Replies are collected instead of sent.
type SyntheticContext struct {
	Session   *discordgo.Session
	Storage   *storage.Storage
	GuildID   string
	ChannelID string
	Member    *discordgo.Member
	Options   map[string]any

	replies []string
}

// Reply collects a reply line the caller reads back after Run.
func (c *SyntheticContext) Reply(format string, args ...any) {
	c.replies = append(c.replies, fmt.Sprintf(format, args...))
}

// Replies returns everything the command replied during Run.
func (c *SyntheticContext) Replies() []string { return c.replies }

func (c *SyntheticContext) StringOption(name string) string {
	v, _ := c.Options[name].(string)
	return v
}

func (c *SyntheticContext) IntOption(name string) int {
	switch v := c.Options[name].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}

func (c *SyntheticContext) BoolOption(name string) bool {
	v, ok := c.Options[name].(bool)
	return ok && v
}
