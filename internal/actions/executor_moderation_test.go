package actions

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModerationBanAndRollback(t *testing.T) {
	fc := newFakeClient()
	ctx := newTestContext(fc)
	exec := &ModerationExecutor{}

	action := Action{
		Type:   KindModeration,
		Target: TargetSpec{Kind: TargetUser, UserID: "u2"},
		Params: map[string]any{"mode": "ban", "reason": "spam", "delete_days": float64(1)},
	}
	res, err := Execute(ctx, exec, action)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Contains(t, fc.banned, "u2")

	back, err := exec.Rollback(ctx, action, res)
	require.NoError(t, err)
	assert.True(t, back.Success)
	assert.Contains(t, fc.unbanned, "u2")
	assert.NotContains(t, fc.banned, "u2")
}

func TestModerationKickHasNoRollback(t *testing.T) {
	fc := newFakeClient()
	ctx := newTestContext(fc)
	exec := &ModerationExecutor{}

	action := Action{
		Type:   KindModeration,
		Target: TargetSpec{Kind: TargetUser, UserID: "u2"},
		Params: map[string]any{"mode": "kick", "reason": "bye"},
	}
	res, err := Execute(ctx, exec, action)
	require.NoError(t, err)
	assert.Contains(t, fc.kicked, "u2")

	back, err := exec.Rollback(ctx, action, res)
	require.NoError(t, err)
	assert.False(t, back.Success)
	assert.Equal(t, "rollback_not_supported", back.Message)
}

func TestModerationTimeout(t *testing.T) {
	fc := newFakeClient()
	ctx := newTestContext(fc)
	exec := &ModerationExecutor{}

	action := Action{
		Type:   KindModeration,
		Target: TargetSpec{Kind: TargetUser, UserID: "u2"},
		Params: map[string]any{"mode": "timeout-add", "duration_seconds": float64(600)},
	}
	res, err := Execute(ctx, exec, action)
	require.NoError(t, err)
	require.NotNil(t, fc.timeouts["u2"])
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), *fc.timeouts["u2"], 5*time.Second)

	back, err := exec.Rollback(ctx, action, res)
	require.NoError(t, err)
	assert.True(t, back.Success)
	assert.Nil(t, fc.timeouts["u2"])
}

func TestModerationTimeoutBounds(t *testing.T) {
	fc := newFakeClient()
	ctx := newTestContext(fc)
	exec := &ModerationExecutor{}

	for _, duration := range []float64{0, float64(timeoutMaxSeconds + 1)} {
		_, err := Execute(ctx, exec, Action{
			Type:   KindModeration,
			Target: TargetSpec{Kind: TargetUser, UserID: "u2"},
			Params: map[string]any{"mode": "timeout-add", "duration_seconds": duration},
		})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr, "duration %v", duration)
	}
}

func TestModerationProtectsHierarchy(t *testing.T) {
	fc := newFakeClient()
	ctx := newTestContext(fc)
	exec := &ModerationExecutor{}

	for _, target := range []string{"owner", "mod", "bot"} {
		res, err := Execute(ctx, exec, Action{
			Type:   KindModeration,
			Target: TargetSpec{Kind: TargetUser, UserID: target},
			Params: map[string]any{"mode": "kick", "reason": "nope"},
		})
		require.NoError(t, err)
		outcomes := res.Outcomes()
		require.Len(t, outcomes, 1)
		assert.Equal(t, OutcomeSkipped, outcomes[0].Status, "target %s", target)
	}
	assert.Empty(t, fc.kicked)
}

func TestModerationWarnFallsBackToChannel(t *testing.T) {
	fc := newFakeClient()
	ctx := newTestContext(fc)
	exec := &ModerationExecutor{}

	fc.dmBlocked["u2"] = true
	res, err := Execute(ctx, exec, Action{
		Type:   KindModeration,
		Target: TargetSpec{Kind: TargetUser, UserID: "u2"},
		Params: map[string]any{"mode": "warn", "reason": "flooding"},
	})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Empty(t, fc.dms["u2"])
	require.Len(t, fc.sent[testChannel], 1)
	assert.Contains(t, fc.sent[testChannel][0], "<@u2>")
}
