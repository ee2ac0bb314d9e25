package actions

import (
	"fmt"

	"server-actions/internal/platform"

	"github.com/bwmarrin/discordgo"
)

// AppearanceExecutor mutates the pressed button's rendered component: its
// label, style, or enabled state. The prior look is captured so a rollback
// restores the component exactly.
type AppearanceExecutor struct{}

type appearanceRollback struct {
	Label    string
	Style    discordgo.ButtonStyle
	Disabled bool
}

var buttonStyles = map[string]discordgo.ButtonStyle{
	"primary":   discordgo.PrimaryButton,
	"secondary": discordgo.SecondaryButton,
	"success":   discordgo.SuccessButton,
	"danger":    discordgo.DangerButton,
}

func (e *AppearanceExecutor) Type() Kind                     { return KindAppearance }
func (e *AppearanceExecutor) SupportedTargets() []TargetKind { return []TargetKind{TargetSelf} }
func (e *AppearanceExecutor) RequiredPermissions() []int64 {
	return []int64{discordgo.PermissionSendMessages}
}

func (e *AppearanceExecutor) Perform(ctx *Context, action Action, targets []*discordgo.Member) (*Result, error) {
	mode := strParam(action.Params, "mode")
	switch mode {
	case "label":
		if strParam(action.Params, "label") == "" {
			return nil, &ValidationError{Message: "appearance action: label mode without label"}
		}
	case "style":
		if _, ok := buttonStyles[strParam(action.Params, "style")]; !ok {
			return nil, &ValidationError{Message: fmt.Sprintf("appearance action: unknown style %q", strParam(action.Params, "style"))}
		}
	case "disable", "enable":
	default:
		return nil, &ValidationError{Message: fmt.Sprintf("appearance action: unknown mode %q", mode)}
	}
	if ctx.MessageID == "" {
		return nil, &ValidationError{Message: "appearance action: no component message in context"}
	}

	rb := &appearanceRollback{}
	mutate := func(btn *discordgo.Button) {
		rb.Label = btn.Label
		rb.Style = btn.Style
		rb.Disabled = btn.Disabled
		switch mode {
		case "label":
			btn.Label = strParam(action.Params, "label")
		case "style":
			btn.Style = buttonStyles[strParam(action.Params, "style")]
		case "disable":
			btn.Disabled = true
		case "enable":
			btn.Disabled = false
		}
	}
	if err := e.editButton(ctx, mutate); err != nil {
		return nil, err
	}

	res := newResult(KindAppearance)
	res.Rollback = rb
	res.Message = "appearance " + mode
	return res, nil
}

// Rollback restores the captured label, style and enabled state in one edit.
func (e *AppearanceExecutor) Rollback(ctx *Context, action Action, prev *Result) (*Result, error) {
	rb, ok := prev.Rollback.(*appearanceRollback)
	if !ok {
		return rollbackUnsupported(KindAppearance), nil
	}

	mutate := func(btn *discordgo.Button) {
		btn.Label = rb.Label
		btn.Style = rb.Style
		btn.Disabled = rb.Disabled
	}
	if err := e.editButton(ctx, mutate); err != nil {
		return nil, err
	}

	res := newResult(KindAppearance)
	res.Message = "appearance restored"
	return res, nil
}

// editButton fetches the component message, applies mutate to the button with
// the pressed custom id, and writes the full component tree back. Sibling
// buttons on the same message are passed through untouched.
func (e *AppearanceExecutor) editButton(ctx *Context, mutate func(*discordgo.Button)) error {
	msg, err := ctx.Client.Message(ctx.ChannelID, ctx.MessageID)
	if err != nil {
		return err
	}

	customID := ButtonCustomID(ctx.ButtonID)
	found := false
	components := make([]discordgo.MessageComponent, 0, len(msg.Components))
	for _, comp := range msg.Components {
		row, ok := comp.(*discordgo.ActionsRow)
		if !ok {
			components = append(components, comp)
			continue
		}
		newRow := discordgo.ActionsRow{}
		for _, inner := range row.Components {
			btn, ok := inner.(*discordgo.Button)
			if ok && btn.CustomID == customID {
				clone := *btn
				mutate(&clone)
				newRow.Components = append(newRow.Components, clone)
				found = true
				continue
			}
			newRow.Components = append(newRow.Components, inner)
		}
		components = append(components, newRow)
	}
	if !found {
		return &platform.NotFoundError{Resource: "button component", ID: customID}
	}

	return ctx.Client.EditComponents(ctx.ChannelID, ctx.MessageID, components)
}
