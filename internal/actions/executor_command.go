package actions

import (
	"server-actions/internal/platform"

	"github.com/bwmarrin/discordgo"
)

// CommandExecutor replays a registered bot command with synthesized options,
// as if the pressing user had typed it. The invoker's reply lines go into the
// result envelope. What the replayed command changed is its own business;
// there is nothing generic to roll back here.
type CommandExecutor struct{}

func (e *CommandExecutor) Type() Kind                     { return KindCommand }
func (e *CommandExecutor) SupportedTargets() []TargetKind { return []TargetKind{TargetSelf} }
func (e *CommandExecutor) RequiredPermissions() []int64   { return nil }

func (e *CommandExecutor) Perform(ctx *Context, action Action, targets []*discordgo.Member) (*Result, error) {
	name := strParam(action.Params, "name")
	if name == "" {
		return nil, &ValidationError{Message: "command action: missing name"}
	}
	if ctx.Commands == nil {
		return nil, &platform.NotFoundError{Resource: "command invoker", ID: name}
	}

	options, _ := action.Params["options"].(map[string]any)
	replies, err := ctx.Commands.Invoke(name, options, ctx)
	if err != nil {
		return nil, err
	}

	res := newResult(KindCommand)
	res.Message = "ran command /" + name
	if len(replies) > 0 {
		res.Data["replies"] = replies
	}
	return res, nil
}
