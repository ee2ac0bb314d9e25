package actions

import (
	"testing"

	"server-actions/internal/platform"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleExecutorGrant(t *testing.T) {
	fc := newFakeClient()
	ctx := newTestContext(fc)
	exec := &RoleExecutor{}

	action := Action{
		Type:   KindRole,
		Target: TargetSpec{Kind: TargetUser, UserID: "u2"},
		Params: map[string]any{"mode": "grant", "role_id": "role-extra"},
	}

	res, err := Execute(ctx, exec, action)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Contains(t, fc.members["u2"].Roles, "role-extra")

	// A second grant changes nothing and skips the target.
	res, err = Execute(ctx, exec, action)
	require.NoError(t, err)
	assert.True(t, res.Success)
	outcomes := res.Outcomes()
	require.Len(t, outcomes, 1)
	assert.Equal(t, OutcomeSkipped, outcomes[0].Status)
}

func TestRoleExecutorToggle(t *testing.T) {
	fc := newFakeClient()
	ctx := newTestContext(fc)
	exec := &RoleExecutor{}

	action := Action{
		Type:   KindRole,
		Target: TargetSpec{Kind: TargetSelf},
		Params: map[string]any{"mode": "toggle", "role_id": "role-extra"},
	}

	_, err := Execute(ctx, exec, action)
	require.NoError(t, err)
	assert.Contains(t, fc.members["actor"].Roles, "role-extra")

	_, err = Execute(ctx, exec, action)
	require.NoError(t, err)
	assert.NotContains(t, fc.members["actor"].Roles, "role-extra")
}

func TestRoleExecutorSkipsProtectedTargets(t *testing.T) {
	fc := newFakeClient()
	ctx := newTestContext(fc)
	exec := &RoleExecutor{}

	res, err := Execute(ctx, exec, Action{
		Type:   KindRole,
		Target: TargetSpec{Kind: TargetEveryone},
		Params: map[string]any{"mode": "grant", "role_id": "role-extra"},
	})
	require.NoError(t, err)

	skippedBy := map[string]string{}
	for _, o := range res.Outcomes() {
		if o.Status == OutcomeSkipped {
			skippedBy[o.ID] = o.Detail
		}
	}
	assert.Contains(t, skippedBy, "owner")
	assert.Contains(t, skippedBy, "mod")
	assert.Contains(t, skippedBy, "admin")
	assert.Contains(t, fc.members["u2"].Roles, "role-extra")
}

func TestRoleExecutorHonorsProtectedList(t *testing.T) {
	fc := newFakeClient()
	ctx := newTestContext(fc)
	ctx.ProtectedIDs = []string{"u2"}
	exec := &RoleExecutor{}

	res, err := Execute(ctx, exec, Action{
		Type:   KindRole,
		Target: TargetSpec{Kind: TargetUser, UserID: "u2"},
		Params: map[string]any{"mode": "grant", "role_id": "role-extra"},
	})
	require.NoError(t, err)
	outcomes := res.Outcomes()
	require.Len(t, outcomes, 1)
	assert.Equal(t, OutcomeSkipped, outcomes[0].Status)
	assert.Equal(t, "protected user", outcomes[0].Detail)
	assert.NotContains(t, fc.members["u2"].Roles, "role-extra")
}

func TestRoleExecutorRejectsUnmanageableRole(t *testing.T) {
	fc := newFakeClient()
	ctx := newTestContext(fc)
	exec := &RoleExecutor{}

	// role-high sits above the bot's own role.
	_, err := Execute(ctx, exec, Action{
		Type:   KindRole,
		Target: TargetSpec{Kind: TargetSelf},
		Params: map[string]any{"mode": "grant", "role_id": "role-high"},
	})
	var perr *platform.PermissionError
	require.ErrorAs(t, err, &perr)
}

func TestRoleExecutorUnknownRole(t *testing.T) {
	fc := newFakeClient()
	ctx := newTestContext(fc)
	exec := &RoleExecutor{}

	_, err := Execute(ctx, exec, Action{
		Type:   KindRole,
		Target: TargetSpec{Kind: TargetSelf},
		Params: map[string]any{"mode": "grant", "role_id": "role-deleted"},
	})
	var nf *platform.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.True(t, continuable(err))
}

func TestRoleExecutorRollbackRestoresBothDirections(t *testing.T) {
	fc := newFakeClient()
	ctx := newTestContext(fc)
	exec := &RoleExecutor{}

	// toggle: grants to u2's neighbour, revokes from holders.
	grant := Action{
		Type:   KindRole,
		Target: TargetSpec{Kind: TargetUser, UserID: "u2"},
		Params: map[string]any{"mode": "revoke", "role_id": "role-member"},
	}
	res, err := Execute(ctx, exec, grant)
	require.NoError(t, err)
	require.NotContains(t, fc.members["u2"].Roles, "role-member")

	back, err := exec.Rollback(ctx, grant, res)
	require.NoError(t, err)
	assert.True(t, back.Success)
	assert.Contains(t, fc.members["u2"].Roles, "role-member")
}
