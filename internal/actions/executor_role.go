package actions

import (
	"fmt"

	"server-actions/internal/platform"

	"github.com/bwmarrin/discordgo"
)

// RoleExecutor grants, revokes or toggles one role across the resolved
// targets. Already-correct targets are skipped rather than re-written, so a
// repeated press changes nothing and the rollback capture only lists members
// whose state actually moved.
type RoleExecutor struct{}

type roleRollback struct {
	RoleID  string
	Granted []string // role was added to these members
	Revoked []string // role was removed from these members
}

func (e *RoleExecutor) Type() Kind                     { return KindRole }
func (e *RoleExecutor) SupportedTargets() []TargetKind { return AllTargetKinds }
func (e *RoleExecutor) RequiredPermissions() []int64 {
	return []int64{discordgo.PermissionManageRoles}
}

func (e *RoleExecutor) Perform(ctx *Context, action Action, targets []*discordgo.Member) (*Result, error) {
	mode := strParam(action.Params, "mode")
	roleID := strParam(action.Params, "role_id")
	switch mode {
	case "grant", "revoke", "toggle":
	default:
		return nil, &ValidationError{Message: fmt.Sprintf("role action: unknown mode %q", mode)}
	}
	if roleID == "" {
		return nil, &ValidationError{Message: "role action: missing role_id"}
	}

	role, err := findRole(ctx, roleID)
	if err != nil {
		return nil, err
	}

	g, err := newGuard(ctx)
	if err != nil {
		return nil, err
	}
	// The bot can only manage roles below its own highest role.
	if role.Position >= g.rank(g.operator) {
		return nil, &platform.PermissionError{Op: "role action", Missing: []int64{discordgo.PermissionManageRoles}}
	}

	rb := &roleRollback{RoleID: roleID}
	outcomes := make([]TargetOutcome, 0, len(targets))
	for _, m := range targets {
		outcomes = append(outcomes, e.applyOne(ctx, g, m, mode, roleID, rb))
	}

	res := newResult(KindRole)
	res.setOutcomes(outcomes)
	res.Rollback = rb
	res.Message = fmt.Sprintf("role %s: %d changed, %d skipped, %d failed",
		mode, len(rb.Granted)+len(rb.Revoked), countOutcomes(outcomes, OutcomeSkipped), countOutcomes(outcomes, OutcomeFailed))
	return res, nil
}

func (e *RoleExecutor) applyOne(ctx *Context, g *guard, m *discordgo.Member, mode, roleID string, rb *roleRollback) TargetOutcome {
	id := m.User.ID
	if off, reason := g.protected(m, false); off {
		return TargetOutcome{ID: id, Status: OutcomeSkipped, Detail: reason}
	}

	has := memberHasRole(m, roleID)
	grant := mode == "grant" || (mode == "toggle" && !has)
	if mode == "revoke" || (mode == "toggle" && has) {
		grant = false
	}

	if grant {
		if has {
			return TargetOutcome{ID: id, Status: OutcomeSkipped, Detail: "already has role"}
		}
		if err := ctx.Client.RoleAdd(ctx.GuildID, id, roleID); err != nil {
			return TargetOutcome{ID: id, Status: OutcomeFailed, Detail: err.Error()}
		}
		rb.Granted = append(rb.Granted, id)
		return TargetOutcome{ID: id, Status: OutcomeOK}
	}

	if !has {
		return TargetOutcome{ID: id, Status: OutcomeSkipped, Detail: "does not have role"}
	}
	if err := ctx.Client.RoleRemove(ctx.GuildID, id, roleID); err != nil {
		return TargetOutcome{ID: id, Status: OutcomeFailed, Detail: err.Error()}
	}
	rb.Revoked = append(rb.Revoked, id)
	return TargetOutcome{ID: id, Status: OutcomeOK}
}

// Rollback undoes exactly the membership changes the original run made.
// Members changed again in the meantime simply end up back in the captured
// state.
func (e *RoleExecutor) Rollback(ctx *Context, action Action, prev *Result) (*Result, error) {
	rb, ok := prev.Rollback.(*roleRollback)
	if !ok {
		return rollbackUnsupported(KindRole), nil
	}

	var outcomes []TargetOutcome
	for _, id := range rb.Granted {
		if err := ctx.Client.RoleRemove(ctx.GuildID, id, rb.RoleID); err != nil {
			outcomes = append(outcomes, TargetOutcome{ID: id, Status: OutcomeFailed, Detail: err.Error()})
			continue
		}
		outcomes = append(outcomes, TargetOutcome{ID: id, Status: OutcomeOK})
	}
	for _, id := range rb.Revoked {
		if err := ctx.Client.RoleAdd(ctx.GuildID, id, rb.RoleID); err != nil {
			outcomes = append(outcomes, TargetOutcome{ID: id, Status: OutcomeFailed, Detail: err.Error()})
			continue
		}
		outcomes = append(outcomes, TargetOutcome{ID: id, Status: OutcomeOK})
	}

	res := newResult(KindRole)
	res.setOutcomes(outcomes)
	res.Message = fmt.Sprintf("role rollback: %d restored, %d failed",
		countOutcomes(outcomes, OutcomeOK), countOutcomes(outcomes, OutcomeFailed))
	return res, nil
}

func findRole(ctx *Context, roleID string) (*discordgo.Role, error) {
	roles, err := ctx.Client.GuildRoles(ctx.GuildID)
	if err != nil {
		return nil, err
	}
	for _, r := range roles {
		if r.ID == roleID {
			return r, nil
		}
	}
	return nil, &platform.NotFoundError{Resource: "role", ID: roleID}
}

func memberHasRole(m *discordgo.Member, roleID string) bool {
	for _, id := range m.Roles {
		if id == roleID {
			return true
		}
	}
	return false
}
