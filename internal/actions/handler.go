package actions

import (
	"errors"
	"fmt"
	"log"
	"runtime/debug"
	"strings"
	"time"

	"server-actions/internal/platform"

	"github.com/bwmarrin/discordgo"
)

const buttonCustomIDPrefix = "btn:"

// ButtonCustomID is the component custom id a stored button is posted under.
func ButtonCustomID(buttonID string) string { return buttonCustomIDPrefix + buttonID }

// ParseButtonCustomID extracts the button id from a component custom id.
func ParseButtonCustomID(customID string) (string, bool) {
	id, ok := strings.CutPrefix(customID, buttonCustomIDPrefix)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// ConfigProvider loads the stored configuration for one button.
type ConfigProvider interface {
	ButtonConfig(guildID, buttonID string) (*ButtonConfig, error)
}

// Trigger is one button press as seen by the handler.
type Trigger struct {
	GuildID   string
	ChannelID string
	MessageID string
	ButtonID  string
	Actor     *discordgo.Member
}

// Handler is the entry point for button presses: it loads the config, runs
// the precondition gate, hands accepted triggers to the engine and commits
// the cooldown ledger once the run is over. It never lets a panic escape to
// the gateway dispatcher.
type Handler struct {
	Configs   ConfigProvider
	Engine    *Engine
	Ledger    *Ledger
	Client    platform.Client
	Commands  CommandInvoker
	Players   PlayerProvider
	Protected []string
}

func NewHandler(configs ConfigProvider, engine *Engine, ledger *Ledger, client platform.Client) *Handler {
	return &Handler{Configs: configs, Engine: engine, Ledger: ledger, Client: client}
}

// HandleTrigger processes one press synchronously and returns the reply text
// for the actor plus the execution record, nil when the press was rejected
// before any action ran.
func (h *Handler) HandleTrigger(t Trigger) (reply string, rec *Record) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[ERR] Panic handling button %s in guild %s: %v\n%s", t.ButtonID, t.GuildID, r, debug.Stack())
			reply = "Something went wrong running this button."
		}
	}()

	if t.Actor == nil || t.Actor.User == nil {
		return "Something went wrong running this button.", nil
	}

	cfg, err := h.Configs.ButtonConfig(t.GuildID, t.ButtonID)
	if err != nil {
		var nf *platform.NotFoundError
		if errors.As(err, &nf) {
			metricTriggersRejected.WithLabelValues("unknown_button").Inc()
			return "This button is no longer configured.", nil
		}
		log.Printf("[ERR] Button %s in guild %s has a broken config: %v", t.ButtonID, t.GuildID, err)
		metricTriggersRejected.WithLabelValues("bad_config").Inc()
		return "This button's configuration is invalid.", nil
	}

	if denied, msg := h.checkConditions(t, cfg.Conditions); denied {
		return msg, nil
	}

	actx := &Context{
		Actor:        t.Actor,
		GuildID:      t.GuildID,
		ChannelID:    t.ChannelID,
		MessageID:    t.MessageID,
		ButtonID:     t.ButtonID,
		Client:       h.Client,
		ProtectedIDs: h.Protected,
		Commands:     h.Commands,
		Players:      h.Players,
	}

	rec = h.Engine.Run(actx, cfg.Actions)

	// The use only counts once the run reached a terminal status, so an
	// engine bug that strands a record does not eat the actor's quota.
	if rec.Terminal() {
		h.Ledger.Commit(t.Actor.User.ID, t.GuildID, t.ButtonID, time.Duration(cfg.Conditions.CooldownSeconds)*time.Second)
	}
	return runReply(rec), rec
}

// checkConditions runs the precondition gate in fixed order: deny roles,
// allow roles, channel restriction, cooldown, usage cap. The first failing
// gate wins; denials that the actor can do something about get an actionable
// message, the rest stay generic.
func (h *Handler) checkConditions(t Trigger, c Conditions) (bool, string) {
	if len(c.DenyRoles) > 0 && memberHasAnyRole(t.Actor, c.DenyRoles) {
		metricTriggersRejected.WithLabelValues("deny_role").Inc()
		return true, "You cannot use this button."
	}
	if len(c.AllowRoles) > 0 && !memberHasAnyRole(t.Actor, c.AllowRoles) {
		metricTriggersRejected.WithLabelValues("missing_role").Inc()
		return true, "You do not have the role required to use this button."
	}
	if c.RequiredChannel != "" && c.RequiredChannel != t.ChannelID {
		metricTriggersRejected.WithLabelValues("wrong_channel").Inc()
		return true, fmt.Sprintf("This button only works in <#%s>.", c.RequiredChannel)
	}
	if c.CooldownSeconds > 0 {
		if remaining := h.Ledger.CooldownRemaining(t.Actor.User.ID, t.GuildID, t.ButtonID); remaining > 0 {
			metricTriggersRejected.WithLabelValues("cooldown").Inc()
			return true, fmt.Sprintf("You are on cooldown. Try again in %s.", remaining.Round(time.Second))
		}
	}
	if c.MaxUses > 0 && h.Ledger.Uses(t.Actor.User.ID, t.GuildID, t.ButtonID) >= c.MaxUses {
		metricTriggersRejected.WithLabelValues("max_uses").Inc()
		return true, "You have already used this button the maximum number of times."
	}
	return false, ""
}

// runReply renders the actor-facing summary of a finished run.
func runReply(rec *Record) string {
	switch rec.Status {
	case StatusCompleted:
		if len(rec.Results) == 1 {
			return "Done."
		}
		return fmt.Sprintf("Done. All %d actions completed.", len(rec.Results))
	case StatusPartialSuccess:
		return fmt.Sprintf("Partially done: %d of %d actions completed.", rec.SuccessCount, len(rec.Results))
	case StatusFailed:
		return "The button's actions failed."
	case StatusError:
		return "Something went wrong running this button."
	}
	return "The button is still running."
}

func memberHasAnyRole(m *discordgo.Member, roleIDs []string) bool {
	for _, want := range roleIDs {
		for _, have := range m.Roles {
			if have == want {
				return true
			}
		}
	}
	return false
}
