package actions

import (
	"log"

	"github.com/bwmarrin/discordgo"
)

// ResolveTargets turns a target spec into the ordered, de-duplicated list of
// members the action applies to. It never returns an empty list: zero matches
// is a NoTargetsError.
func ResolveTargets(ctx *Context, spec TargetSpec) ([]*discordgo.Member, error) {
	switch spec.Kind {
	case TargetSelf:
		return []*discordgo.Member{ctx.Actor}, nil

	case TargetUser:
		m, err := ctx.Client.Member(ctx.GuildID, spec.UserID)
		if err != nil {
			return nil, err
		}
		return []*discordgo.Member{m}, nil

	case TargetRoles:
		return resolveRoleHolders(ctx, spec)

	case TargetEveryone:
		members, err := ctx.Client.Members(ctx.GuildID)
		if err != nil {
			return nil, err
		}
		var out []*discordgo.Member
		for _, m := range members {
			if m.User != nil && m.User.Bot {
				continue
			}
			out = append(out, m)
		}
		if len(out) == 0 {
			return nil, &NoTargetsError{Spec: spec}
		}
		return out, nil

	case TargetAdmins:
		return resolveAdmins(ctx, spec)
	}

	return nil, &ValidationError{Message: "unknown target kind " + string(spec.Kind)}
}

// resolveRoleHolders unions the members of every listed role. A role id that
// does not exist is logged and skipped so one stale id does not sink a
// multi-role spec.
func resolveRoleHolders(ctx *Context, spec TargetSpec) ([]*discordgo.Member, error) {
	roles, err := ctx.Client.GuildRoles(ctx.GuildID)
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(roles))
	for _, r := range roles {
		known[r.ID] = true
	}

	wanted := make(map[string]bool, len(spec.RoleIDs))
	for _, id := range spec.RoleIDs {
		if !known[id] {
			log.Printf("[WARN] Target role %s not found in guild %s, skipping", id, ctx.GuildID)
			continue
		}
		wanted[id] = true
	}
	if len(wanted) == 0 {
		return nil, &NoTargetsError{Spec: spec}
	}

	members, err := ctx.Client.Members(ctx.GuildID)
	if err != nil {
		return nil, err
	}

	var out []*discordgo.Member
	seen := make(map[string]bool)
	for _, m := range members {
		if m.User == nil || seen[m.User.ID] {
			continue
		}
		for _, roleID := range m.Roles {
			if wanted[roleID] {
				out = append(out, m)
				seen[m.User.ID] = true
				break
			}
		}
	}
	if len(out) == 0 {
		return nil, &NoTargetsError{Spec: spec}
	}
	return out, nil
}

// resolveAdmins returns members holding Administrator through any role, plus
// the guild owner.
func resolveAdmins(ctx *Context, spec TargetSpec) ([]*discordgo.Member, error) {
	guild, err := ctx.Client.Guild(ctx.GuildID)
	if err != nil {
		return nil, err
	}
	roles, err := ctx.Client.GuildRoles(ctx.GuildID)
	if err != nil {
		return nil, err
	}
	adminRoles := make(map[string]bool)
	for _, r := range roles {
		if r.Permissions&discordgo.PermissionAdministrator != 0 {
			adminRoles[r.ID] = true
		}
	}

	members, err := ctx.Client.Members(ctx.GuildID)
	if err != nil {
		return nil, err
	}

	var out []*discordgo.Member
	for _, m := range members {
		if m.User == nil {
			continue
		}
		if m.User.ID == guild.OwnerID {
			out = append(out, m)
			continue
		}
		for _, roleID := range m.Roles {
			if adminRoles[roleID] {
				out = append(out, m)
				break
			}
		}
	}
	if len(out) == 0 {
		return nil, &NoTargetsError{Spec: spec}
	}
	return out, nil
}
