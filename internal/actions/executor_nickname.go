package actions

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

const nicknameMaxLen = 32

// NicknameExecutor sets or clears guild nicknames. Prior nicknames are
// captured per target so a rollback restores what each member was called
// before, including "no nickname at all".
type NicknameExecutor struct{}

type nicknameRollback struct {
	Previous map[string]string // userID -> prior nickname ("" means none)
}

func (e *NicknameExecutor) Type() Kind                     { return KindNickname }
func (e *NicknameExecutor) SupportedTargets() []TargetKind { return AllTargetKinds }
func (e *NicknameExecutor) RequiredPermissions() []int64 {
	return []int64{discordgo.PermissionManageNicknames}
}

func (e *NicknameExecutor) Perform(ctx *Context, action Action, targets []*discordgo.Member) (*Result, error) {
	mode := strParam(action.Params, "mode")
	nick := strParam(action.Params, "nickname")
	switch mode {
	case "set":
		if nick == "" {
			return nil, &ValidationError{Message: "nickname action: set mode without nickname"}
		}
		if len(nick) > nicknameMaxLen {
			return nil, &ValidationError{Message: fmt.Sprintf("nickname action: nickname exceeds %d characters", nicknameMaxLen)}
		}
	case "clear":
		nick = ""
	default:
		return nil, &ValidationError{Message: fmt.Sprintf("nickname action: unknown mode %q", mode)}
	}

	g, err := newGuard(ctx)
	if err != nil {
		return nil, err
	}

	rb := &nicknameRollback{Previous: make(map[string]string)}
	outcomes := make([]TargetOutcome, 0, len(targets))
	for _, m := range targets {
		id := m.User.ID
		if off, reason := g.protected(m, false); off {
			outcomes = append(outcomes, TargetOutcome{ID: id, Status: OutcomeSkipped, Detail: reason})
			continue
		}
		if m.Nick == nick {
			outcomes = append(outcomes, TargetOutcome{ID: id, Status: OutcomeSkipped, Detail: "nickname already matches"})
			continue
		}
		// The member object is shared state, so the prior nickname has to be
		// read before the platform call mutates it.
		prior := m.Nick
		if err := ctx.Client.SetNickname(ctx.GuildID, id, nick); err != nil {
			outcomes = append(outcomes, TargetOutcome{ID: id, Status: OutcomeFailed, Detail: err.Error()})
			continue
		}
		rb.Previous[id] = prior
		outcomes = append(outcomes, TargetOutcome{ID: id, Status: OutcomeOK})
	}

	res := newResult(KindNickname)
	res.setOutcomes(outcomes)
	res.Rollback = rb
	res.Message = fmt.Sprintf("nickname %s: %d changed, %d skipped, %d failed",
		mode, len(rb.Previous), countOutcomes(outcomes, OutcomeSkipped), countOutcomes(outcomes, OutcomeFailed))
	return res, nil
}

func (e *NicknameExecutor) Rollback(ctx *Context, action Action, prev *Result) (*Result, error) {
	rb, ok := prev.Rollback.(*nicknameRollback)
	if !ok {
		return rollbackUnsupported(KindNickname), nil
	}

	var outcomes []TargetOutcome
	for id, nick := range rb.Previous {
		if err := ctx.Client.SetNickname(ctx.GuildID, id, nick); err != nil {
			outcomes = append(outcomes, TargetOutcome{ID: id, Status: OutcomeFailed, Detail: err.Error()})
			continue
		}
		outcomes = append(outcomes, TargetOutcome{ID: id, Status: OutcomeOK})
	}

	res := newResult(KindNickname)
	res.setOutcomes(outcomes)
	res.Message = fmt.Sprintf("nickname rollback: %d restored, %d failed",
		countOutcomes(outcomes, OutcomeOK), countOutcomes(outcomes, OutcomeFailed))
	return res, nil
}
