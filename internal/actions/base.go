package actions

import (
	"fmt"

	"server-actions/internal/platform"

	"github.com/bwmarrin/discordgo"
)

// Executor is the strategy contract one action family implements. Perform
// receives already-validated input and already-resolved targets; it reports
// per-target outcomes inside the Result rather than failing the whole action
// when individual targets are skipped.
type Executor interface {
	Type() Kind
	SupportedTargets() []TargetKind
	RequiredPermissions() []int64
	Perform(ctx *Context, action Action, targets []*discordgo.Member) (*Result, error)
}

// Rollbackable is the opt-in capability to reverse a previously performed
// action. prev is the Result the original Perform returned; Rollback must
// restore exactly the per-target state captured there.
type Rollbackable interface {
	Rollback(ctx *Context, action Action, prev *Result) (*Result, error)
}

// Execute runs the shared pipeline for one action: structural validation, the
// operator permission check, target resolution, then Perform. Nothing below
// this boundary throws past it; errors come back classified by the platform
// taxonomy.
func Execute(ctx *Context, exec Executor, action Action) (*Result, error) {
	if err := ctx.valid(); err != nil {
		return nil, err
	}
	if action.Type != exec.Type() {
		return nil, &ValidationError{Message: fmt.Sprintf("action type %q handed to %q executor", action.Type, exec.Type())}
	}
	if !targetSupported(exec.SupportedTargets(), action.Target.Kind) {
		return nil, &ValidationError{Message: fmt.Sprintf("%s action does not support %q targets", action.Type, action.Target.Kind)}
	}

	if err := checkOperatorPermissions(ctx, exec); err != nil {
		return nil, err
	}

	targets, err := ResolveTargets(ctx, action.Target)
	if err != nil {
		return nil, err
	}

	res, err := exec.Perform(ctx, action, targets)
	if err != nil {
		return nil, err
	}
	if res.ActionType == "" {
		res.ActionType = action.Type
	}
	return res, nil
}

// checkOperatorPermissions verifies the bot's own member holds every
// capability the executor declares. The acting user's permissions are the
// handler's concern; this is about what the automation itself may do.
func checkOperatorPermissions(ctx *Context, exec Executor) error {
	return requireOperatorPermissions(ctx, exec.RequiredPermissions(), string(exec.Type())+" action")
}

// requireOperatorPermissions is the shared bot-permission check. Executors
// whose required capabilities depend on the action mode declare nothing
// statically and call this themselves once the mode is known.
func requireOperatorPermissions(ctx *Context, required []int64, op string) error {
	if len(required) == 0 {
		return nil
	}

	bot := ctx.Client.BotUser()
	perms, err := ctx.Client.UserChannelPermissions(bot.ID, ctx.ChannelID)
	if err != nil {
		return err
	}
	if perms&discordgo.PermissionAdministrator != 0 {
		return nil
	}

	var missing []int64
	for _, p := range required {
		if perms&p == 0 {
			missing = append(missing, p)
		}
	}
	if len(missing) > 0 {
		return &platform.PermissionError{Op: op, Missing: missing}
	}
	return nil
}

func targetSupported(supported []TargetKind, kind TargetKind) bool {
	for _, k := range supported {
		if k == kind {
			return true
		}
	}
	return false
}

// rollbackUnsupported is the uniform answer for executors (or modes) that
// cannot compensate.
func rollbackUnsupported(kind Kind) *Result {
	res := newResult(kind)
	res.Success = false
	res.Message = "rollback_not_supported"
	return res
}
