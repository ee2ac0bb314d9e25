package actions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseButtonConfig(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		raw := []byte(`{
			"actions": [
				{"type": "role", "target": {"kind": "self"}, "params": {"mode": "grant", "role_id": "role-member"}},
				{"type": "message", "target": {"kind": "self"}, "params": {"mode": "send-channel", "content": "hi"}, "delay": 2}
			],
			"conditions": {"cooldown_seconds": 60, "max_uses": 3},
			"appearance": {"label": "Press me", "style": "danger"}
		}`)

		cfg, err := ParseButtonConfig(raw)
		require.NoError(t, err)
		require.Len(t, cfg.Actions, 2)
		assert.Equal(t, KindRole, cfg.Actions[0].Type)
		assert.Equal(t, TargetSelf, cfg.Actions[0].Target.Kind)
		assert.Equal(t, 2, cfg.Actions[1].DelaySeconds)
		assert.Equal(t, 60, cfg.Conditions.CooldownSeconds)
		assert.Equal(t, "Press me", cfg.Appearance.Label)
	})

	tests := []struct {
		name string
		raw  string
	}{
		{"malformed json", `{"actions": [`},
		{"no actions", `{"actions": []}`},
		{"missing type", `{"actions": [{"target": {"kind": "self"}}]}`},
		{"unknown type", `{"actions": [{"type": "teleport", "target": {"kind": "self"}}]}`},
		{"unknown target kind", `{"actions": [{"type": "role", "target": {"kind": "enemies"}}]}`},
		{"user target without id", `{"actions": [{"type": "role", "target": {"kind": "user"}}]}`},
		{"roles target without ids", `{"actions": [{"type": "role", "target": {"kind": "roles"}}]}`},
		{"negative delay", `{"actions": [{"type": "role", "target": {"kind": "self"}, "delay": -1}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseButtonConfig([]byte(tt.raw))
			require.Error(t, err)
			var verr *ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}
}

func TestParamHelpers(t *testing.T) {
	params := map[string]any{
		"mode":  "grant",
		"count": float64(7),
		"flag":  true,
		"ids":   []any{"a", "b"},
	}
	assert.Equal(t, "grant", strParam(params, "mode"))
	assert.Equal(t, "", strParam(params, "absent"))
	assert.Equal(t, 7, intParam(params, "count"))
	assert.Equal(t, 0, intParam(params, "absent"))
	assert.True(t, boolParam(params, "flag"))
	assert.False(t, boolParam(params, "absent"))
	assert.Equal(t, []string{"a", "b"}, strSliceParam(params, "ids"))
}
