package actions

import (
	"testing"
	"time"

	"server-actions/internal/platform"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapConfigs is an in-memory ConfigProvider.
type mapConfigs map[string]*ButtonConfig

func (m mapConfigs) ButtonConfig(guildID, buttonID string) (*ButtonConfig, error) {
	cfg, ok := m[buttonID]
	if !ok {
		return nil, &platform.NotFoundError{Resource: "button", ID: buttonID}
	}
	return cfg, nil
}

func newTestHandler(t *testing.T, fc *fakeClient, configs mapConfigs) *Handler {
	t.Helper()
	registry := NewRegistry()
	RegisterDefaults(registry, nil, nil)
	engine := NewEngine(registry, nil)
	return NewHandler(configs, engine, NewLedger(), fc)
}

func testTrigger(fc *fakeClient, buttonID string) Trigger {
	return Trigger{
		GuildID:   testGuildID,
		ChannelID: testChannel,
		MessageID: "msg-1",
		ButtonID:  buttonID,
		Actor:     fc.members["actor"],
	}
}

func sendConfig(conds Conditions) *ButtonConfig {
	return &ButtonConfig{
		Actions: []Action{
			{
				Type:   KindMessage,
				Target: TargetSpec{Kind: TargetSelf},
				Params: map[string]any{"mode": "send-channel", "content": "pressed"},
			},
		},
		Conditions: conds,
	}
}

func TestHandlerRunsConfiguredButton(t *testing.T) {
	fc := newFakeClient()
	h := newTestHandler(t, fc, mapConfigs{"b1": sendConfig(Conditions{})})

	reply, rec := h.HandleTrigger(testTrigger(fc, "b1"))
	require.NotNil(t, rec)
	assert.Equal(t, StatusCompleted, rec.Status)
	assert.Equal(t, "Done.", reply)
	assert.Len(t, fc.sent[testChannel], 1)
}

func TestHandlerUnknownButton(t *testing.T) {
	fc := newFakeClient()
	h := newTestHandler(t, fc, mapConfigs{})

	reply, rec := h.HandleTrigger(testTrigger(fc, "gone"))
	assert.Nil(t, rec)
	assert.Equal(t, "This button is no longer configured.", reply)
}

func TestHandlerDenyRoleWins(t *testing.T) {
	fc := newFakeClient()
	cfg := sendConfig(Conditions{
		AllowRoles: []string{"role-member"},
		DenyRoles:  []string{"role-member"},
	})
	h := newTestHandler(t, fc, mapConfigs{"b1": cfg})

	reply, rec := h.HandleTrigger(testTrigger(fc, "b1"))
	assert.Nil(t, rec)
	assert.Equal(t, "You cannot use this button.", reply)
	assert.Empty(t, fc.sent[testChannel])
}

func TestHandlerAllowRole(t *testing.T) {
	fc := newFakeClient()
	cfg := sendConfig(Conditions{AllowRoles: []string{"role-high"}})
	h := newTestHandler(t, fc, mapConfigs{"b1": cfg})

	reply, rec := h.HandleTrigger(testTrigger(fc, "b1"))
	assert.Nil(t, rec)
	assert.Equal(t, "You do not have the role required to use this button.", reply)
}

func TestHandlerChannelRestriction(t *testing.T) {
	fc := newFakeClient()
	cfg := sendConfig(Conditions{RequiredChannel: "child-a"})
	h := newTestHandler(t, fc, mapConfigs{"b1": cfg})

	reply, rec := h.HandleTrigger(testTrigger(fc, "b1"))
	assert.Nil(t, rec)
	assert.Equal(t, "This button only works in <#child-a>.", reply)

	trigger := testTrigger(fc, "b1")
	trigger.ChannelID = "child-a"
	_, rec = h.HandleTrigger(trigger)
	require.NotNil(t, rec)
	assert.Equal(t, StatusCompleted, rec.Status)
}

func TestHandlerCooldown(t *testing.T) {
	fc := newFakeClient()
	cfg := sendConfig(Conditions{CooldownSeconds: 300})
	h := newTestHandler(t, fc, mapConfigs{"b1": cfg})

	_, rec := h.HandleTrigger(testTrigger(fc, "b1"))
	require.NotNil(t, rec)
	require.Equal(t, StatusCompleted, rec.Status)

	reply, rec := h.HandleTrigger(testTrigger(fc, "b1"))
	assert.Nil(t, rec)
	assert.Contains(t, reply, "You are on cooldown.")
	assert.Len(t, fc.sent[testChannel], 1)
}

func TestHandlerMaxUses(t *testing.T) {
	fc := newFakeClient()
	cfg := sendConfig(Conditions{MaxUses: 2})
	h := newTestHandler(t, fc, mapConfigs{"b1": cfg})

	for i := 0; i < 2; i++ {
		_, rec := h.HandleTrigger(testTrigger(fc, "b1"))
		require.NotNil(t, rec)
	}

	reply, rec := h.HandleTrigger(testTrigger(fc, "b1"))
	assert.Nil(t, rec)
	assert.Equal(t, "You have already used this button the maximum number of times.", reply)
	assert.Len(t, fc.sent[testChannel], 2)
}

func TestHandlerFailedRunStillCountsUse(t *testing.T) {
	fc := newFakeClient()
	cfg := &ButtonConfig{
		Actions: []Action{
			{
				Type:   KindNickname,
				Target: TargetSpec{Kind: TargetUser, UserID: "ghost"},
				Params: map[string]any{"mode": "clear"},
			},
		},
		Conditions: Conditions{MaxUses: 1},
	}
	h := newTestHandler(t, fc, mapConfigs{"b1": cfg})

	reply, rec := h.HandleTrigger(testTrigger(fc, "b1"))
	require.NotNil(t, rec)
	assert.Equal(t, StatusFailed, rec.Status)
	assert.Equal(t, "The button's actions failed.", reply)

	// The terminal run consumed the single allowed use.
	assert.Equal(t, 1, h.Ledger.Uses("actor", testGuildID, "b1"))
	_, rec = h.HandleTrigger(testTrigger(fc, "b1"))
	assert.Nil(t, rec)
}

func TestLedger(t *testing.T) {
	l := NewLedger()

	assert.Zero(t, l.CooldownRemaining("a", "g", "b"))
	assert.Zero(t, l.Uses("a", "g", "b"))

	l.Commit("a", "g", "b", time.Minute)
	assert.Equal(t, 1, l.Uses("a", "g", "b"))
	remaining := l.CooldownRemaining("a", "g", "b")
	assert.Greater(t, remaining, 50*time.Second)

	l.Commit("a", "g", "b", 0)
	assert.Equal(t, 2, l.Uses("a", "g", "b"))

	// Entries still cooling down or recently touched are not evicted.
	assert.Zero(t, l.ClearExpired())
}
