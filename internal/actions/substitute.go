package actions

import (
	"strings"

	"github.com/bwmarrin/discordgo"
)

// Substitute expands the message template variables against the trigger
// context. Unknown placeholders are left as-is so a typo is visible in the
// posted message instead of silently vanishing.
func Substitute(template string, actx *Context) string {
	if actx == nil || actx.Actor == nil || actx.Actor.User == nil {
		return template
	}
	pairs := []string{
		"{user}", "<@" + actx.Actor.User.ID + ">",
		"{username}", displayName(actx.Actor),
		"{channel}", "<#" + actx.ChannelID + ">",
	}
	if strings.Contains(template, "{guild}") {
		pairs = append(pairs, "{guild}", guildName(actx))
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// guildName resolves {guild} to the server name. Servers have no mention
// syntax, so a failed lookup falls back to the raw id.
func guildName(actx *Context) string {
	if actx.Client != nil {
		if g, err := actx.Client.Guild(actx.GuildID); err == nil && g.Name != "" {
			return g.Name
		}
	}
	return actx.GuildID
}

// displayName prefers the guild nickname, then the global display name, then
// the account username.
func displayName(m *discordgo.Member) string {
	if m.Nick != "" {
		return m.Nick
	}
	if m.User.GlobalName != "" {
		return m.User.GlobalName
	}
	return m.User.Username
}
