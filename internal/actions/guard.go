package actions

import (
	"github.com/bwmarrin/discordgo"
)

// guard prefetches the guild hierarchy once per Perform so executors can check
// target manageability without a platform call per target.
type guard struct {
	ownerID      string
	rolePos      map[string]int
	operator     *discordgo.Member
	protectedIDs map[string]bool
}

func newGuard(ctx *Context) (*guard, error) {
	guild, err := ctx.Client.Guild(ctx.GuildID)
	if err != nil {
		return nil, err
	}
	roles, err := ctx.Client.GuildRoles(ctx.GuildID)
	if err != nil {
		return nil, err
	}
	bot := ctx.Client.BotUser()
	operator, err := ctx.Client.Member(ctx.GuildID, bot.ID)
	if err != nil {
		return nil, err
	}

	rolePos := make(map[string]int, len(roles))
	for _, r := range roles {
		rolePos[r.ID] = r.Position
	}
	protectedIDs := make(map[string]bool, len(ctx.ProtectedIDs))
	for _, id := range ctx.ProtectedIDs {
		protectedIDs[id] = true
	}
	return &guard{ownerID: guild.OwnerID, rolePos: rolePos, operator: operator, protectedIDs: protectedIDs}, nil
}

// rank is the member's highest role position; the everyone role counts as 0.
func (g *guard) rank(m *discordgo.Member) int {
	best := 0
	for _, roleID := range m.Roles {
		if pos, ok := g.rolePos[roleID]; ok && pos > best {
			best = pos
		}
	}
	return best
}

// protected reports whether a target is off limits for hierarchy-sensitive
// operations: the guild owner, anyone ranked at or above the bot, and (when
// includeSelf) the bot itself. The returned reason goes into the skipped
// outcome.
func (g *guard) protected(m *discordgo.Member, includeSelf bool) (bool, string) {
	if m.User == nil {
		return true, "unknown user"
	}
	if m.User.ID == g.ownerID {
		return true, "server owner"
	}
	if g.protectedIDs[m.User.ID] {
		return true, "protected user"
	}
	if includeSelf && m.User.ID == g.operator.User.ID {
		return true, "cannot act on the bot itself"
	}
	if g.rank(m) >= g.rank(g.operator) {
		return true, "ranked at or above the bot"
	}
	return false, ""
}
