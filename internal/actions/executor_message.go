package actions

import (
	"fmt"

	"server-actions/internal/platform"

	"github.com/bwmarrin/discordgo"
)

// MessageExecutor posts channel messages, sends direct messages and adds
// reactions. Sent messages cannot be meaningfully unsent, so this executor
// deliberately does not implement rollback.
type MessageExecutor struct{}

func (e *MessageExecutor) Type() Kind                     { return KindMessage }
func (e *MessageExecutor) SupportedTargets() []TargetKind { return AllTargetKinds }
func (e *MessageExecutor) RequiredPermissions() []int64 {
	return []int64{discordgo.PermissionSendMessages}
}

func (e *MessageExecutor) Perform(ctx *Context, action Action, targets []*discordgo.Member) (*Result, error) {
	mode := strParam(action.Params, "mode")
	switch mode {
	case "send-channel":
		return e.sendChannel(ctx, action)
	case "send-direct":
		return e.sendDirect(ctx, action, targets)
	case "react":
		return e.react(ctx, action)
	}
	return nil, &ValidationError{Message: fmt.Sprintf("message action: unknown mode %q", mode)}
}

// sendChannel posts the content to the configured channel. Pointing the
// action at a category posts to every text child; per-channel outcomes land
// in the result so one unwritable child does not hide the rest.
func (e *MessageExecutor) sendChannel(ctx *Context, action Action) (*Result, error) {
	content := strParam(action.Params, "content")
	if content == "" {
		return nil, &ValidationError{Message: "message action: send-channel without content"}
	}
	channelID := strParam(action.Params, "channel_id")
	if channelID == "" {
		channelID = ctx.ChannelID
	}
	reactions := strSliceParam(action.Params, "reactions")

	channels, err := ExpandChannel(ctx, channelID, false)
	if err != nil {
		return nil, err
	}
	channels = textChannels(channels)
	if len(channels) == 0 {
		return nil, &platform.NotFoundError{Resource: "text channel", ID: channelID}
	}

	content = Substitute(content, ctx)
	outcomes := make([]TargetOutcome, 0, len(channels))
	for _, ch := range channels {
		msg, err := ctx.Client.SendMessage(ch.ID, content)
		if err != nil {
			outcomes = append(outcomes, TargetOutcome{ID: ch.ID, Status: OutcomeFailed, Detail: err.Error()})
			continue
		}
		if err := reactToSent(ctx, msg, reactions); err != nil {
			outcomes = append(outcomes, TargetOutcome{ID: ch.ID, Status: OutcomeFailed, Detail: "reaction: " + err.Error()})
			continue
		}
		outcomes = append(outcomes, TargetOutcome{ID: ch.ID, Status: OutcomeOK})
	}

	res := newResult(KindMessage)
	res.setOutcomes(outcomes)
	res.Message = fmt.Sprintf("posted to %d of %d channels", countOutcomes(outcomes, OutcomeOK), len(channels))
	return res, nil
}

// sendDirect DMs every resolved target. Bots and members with DMs closed are
// skipped; a closed DM is the recipient's choice, not a failure.
func (e *MessageExecutor) sendDirect(ctx *Context, action Action, targets []*discordgo.Member) (*Result, error) {
	content := strParam(action.Params, "content")
	if content == "" {
		return nil, &ValidationError{Message: "message action: send-direct without content"}
	}
	content = Substitute(content, ctx)
	reactions := strSliceParam(action.Params, "reactions")

	outcomes := make([]TargetOutcome, 0, len(targets))
	for _, m := range targets {
		id := m.User.ID
		if m.User.Bot {
			outcomes = append(outcomes, TargetOutcome{ID: id, Status: OutcomeSkipped, Detail: "bot account"})
			continue
		}
		msg, err := ctx.Client.SendDirect(id, content)
		if err != nil {
			if platform.IsDMBlocked(err) {
				outcomes = append(outcomes, TargetOutcome{ID: id, Status: OutcomeSkipped, Detail: "direct messages closed"})
				continue
			}
			outcomes = append(outcomes, TargetOutcome{ID: id, Status: OutcomeFailed, Detail: err.Error()})
			continue
		}
		if err := reactToSent(ctx, msg, reactions); err != nil {
			outcomes = append(outcomes, TargetOutcome{ID: id, Status: OutcomeFailed, Detail: "reaction: " + err.Error()})
			continue
		}
		outcomes = append(outcomes, TargetOutcome{ID: id, Status: OutcomeOK})
	}

	res := newResult(KindMessage)
	res.setOutcomes(outcomes)
	res.Message = fmt.Sprintf("direct message: %d sent, %d skipped, %d failed",
		countOutcomes(outcomes, OutcomeOK), countOutcomes(outcomes, OutcomeSkipped), countOutcomes(outcomes, OutcomeFailed))
	return res, nil
}

// reactToSent adds the configured post-send reactions to a just-sent message.
func reactToSent(ctx *Context, msg *discordgo.Message, reactions []string) error {
	for _, emoji := range reactions {
		if err := ctx.Client.React(msg.ChannelID, msg.ID, emoji); err != nil {
			return err
		}
	}
	return nil
}

// react adds an emoji reaction, defaulting to the message holding the button.
func (e *MessageExecutor) react(ctx *Context, action Action) (*Result, error) {
	emoji := strParam(action.Params, "emoji")
	if emoji == "" {
		return nil, &ValidationError{Message: "message action: react without emoji"}
	}
	channelID := strParam(action.Params, "channel_id")
	messageID := strParam(action.Params, "message_id")
	if channelID == "" {
		channelID = ctx.ChannelID
	}
	if messageID == "" {
		messageID = ctx.MessageID
	}
	if messageID == "" {
		return nil, &ValidationError{Message: "message action: react without a message"}
	}

	if err := ctx.Client.React(channelID, messageID, emoji); err != nil {
		return nil, err
	}
	res := newResult(KindMessage)
	res.Message = "reaction added"
	return res, nil
}
