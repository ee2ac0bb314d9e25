// Package actions implements the button action engine: the validated action
// model, target resolution, the executor contract and registry, the sequential
// runner with partial-failure semantics, the precondition handler and the
// cooldown/usage ledger.
package actions

import (
	"encoding/json"
	"fmt"
)

// Kind identifies an action family. One executor is registered per kind;
// variations inside a family (grant vs revoke, mute vs deafen) are carried in
// the "mode" parameter.
type Kind string

const (
	KindRole              Kind = "role"
	KindNickname          Kind = "nickname"
	KindMessage           Kind = "message"
	KindVoice             Kind = "voice"
	KindChannelPermission Kind = "channel-permission"
	KindModeration        Kind = "moderation"
	KindPlayback          Kind = "playback"
	KindAppearance        Kind = "appearance"
	KindCommand           Kind = "command"
)

var knownKinds = map[Kind]bool{
	KindRole: true, KindNickname: true, KindMessage: true, KindVoice: true,
	KindChannelPermission: true, KindModeration: true, KindPlayback: true,
	KindAppearance: true, KindCommand: true,
}

// TargetKind selects which principals an action applies to.
type TargetKind string

const (
	TargetSelf     TargetKind = "self"     // the pressing user
	TargetUser     TargetKind = "user"     // one specific user by id
	TargetRoles    TargetKind = "roles"    // everyone holding any listed role
	TargetEveryone TargetKind = "everyone" // all non-bot members
	TargetAdmins   TargetKind = "admins"   // members with Administrator
)

// AllTargetKinds is the full set, for executors without target restrictions.
var AllTargetKinds = []TargetKind{TargetSelf, TargetUser, TargetRoles, TargetEveryone, TargetAdmins}

// TargetSpec is the declarative description of an action's principals.
type TargetSpec struct {
	Kind    TargetKind `json:"kind"`
	UserID  string     `json:"user_id,omitempty"`
	RoleIDs []string   `json:"role_ids,omitempty"`
}

// ResultConfig makes the engine announce an action's outcome in a channel.
// An empty ChannelID means the channel the button lives in.
type ResultConfig struct {
	ChannelID string `json:"channel_id,omitempty"`
	Message   string `json:"message"`
}

// Action is one unit of work in a button's ordered list. Immutable once parsed.
type Action struct {
	Type         Kind           `json:"type"`
	Target       TargetSpec     `json:"target"`
	Params       map[string]any `json:"params,omitempty"`
	DelaySeconds int            `json:"delay,omitempty"`
	Result       *ResultConfig  `json:"result,omitempty"`
}

// Conditions gate a button before any action runs.
type Conditions struct {
	AllowRoles      []string `json:"allow_roles,omitempty"`
	DenyRoles       []string `json:"deny_roles,omitempty"`
	RequiredChannel string   `json:"required_channel,omitempty"`
	CooldownSeconds int      `json:"cooldown_seconds,omitempty"`
	MaxUses         int      `json:"max_uses,omitempty"`
}

// Appearance is the rendered look of the button component.
type Appearance struct {
	Label    string `json:"label"`
	Emoji    string `json:"emoji,omitempty"`
	Style    string `json:"style,omitempty"` // primary|secondary|success|danger
	Disabled bool   `json:"disabled,omitempty"`
}

// ButtonConfig is the full stored document for one button.
type ButtonConfig struct {
	Actions    []Action   `json:"actions"`
	Conditions Conditions `json:"conditions,omitempty"`
	Appearance Appearance `json:"appearance,omitempty"`
}

// ParseButtonConfig validates a stored JSON document into a ButtonConfig.
// Unknown action types, unknown target kinds and structurally incomplete
// actions are rejected here, before any executor ever sees them.
func ParseButtonConfig(raw []byte) (*ButtonConfig, error) {
	var cfg ButtonConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, &ValidationError{Message: fmt.Sprintf("malformed button config: %v", err)}
	}
	if len(cfg.Actions) == 0 {
		return nil, &ValidationError{Message: "button config has no actions"}
	}
	for i, a := range cfg.Actions {
		if err := validateAction(i, a); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

func validateAction(i int, a Action) error {
	if a.Type == "" {
		return &ValidationError{Message: fmt.Sprintf("action %d: missing type", i)}
	}
	if !knownKinds[a.Type] {
		return &ValidationError{Message: fmt.Sprintf("action %d: unknown type %q", i, a.Type)}
	}
	switch a.Target.Kind {
	case TargetSelf, TargetEveryone, TargetAdmins:
	case TargetUser:
		if a.Target.UserID == "" {
			return &ValidationError{Message: fmt.Sprintf("action %d: user target without user_id", i)}
		}
	case TargetRoles:
		if len(a.Target.RoleIDs) == 0 {
			return &ValidationError{Message: fmt.Sprintf("action %d: roles target without role_ids", i)}
		}
	default:
		return &ValidationError{Message: fmt.Sprintf("action %d: unknown target kind %q", i, a.Target.Kind)}
	}
	if a.DelaySeconds < 0 {
		return &ValidationError{Message: fmt.Sprintf("action %d: negative delay", i)}
	}
	return nil
}

// Param helpers. Stored configs come from JSON, so numbers arrive as float64.

func strParam(params map[string]any, key string) string {
	if v, ok := params[key].(string); ok {
		return v
	}
	return ""
}

func intParam(params map[string]any, key string) int {
	switch v := params[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}

func boolParam(params map[string]any, key string) bool {
	v, ok := params[key].(bool)
	return ok && v
}

func strSliceParam(params map[string]any, key string) []string {
	raw, ok := params[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
