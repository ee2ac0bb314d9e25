package actions

import (
	"testing"

	"server-actions/internal/platform"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveTargets(t *testing.T) {
	fc := newFakeClient()
	ctx := newTestContext(fc)

	t.Run("self", func(t *testing.T) {
		targets, err := ResolveTargets(ctx, TargetSpec{Kind: TargetSelf})
		require.NoError(t, err)
		require.Len(t, targets, 1)
		assert.Equal(t, "actor", targets[0].User.ID)
	})

	t.Run("user", func(t *testing.T) {
		targets, err := ResolveTargets(ctx, TargetSpec{Kind: TargetUser, UserID: "u2"})
		require.NoError(t, err)
		require.Len(t, targets, 1)
		assert.Equal(t, "u2", targets[0].User.ID)
	})

	t.Run("missing user", func(t *testing.T) {
		_, err := ResolveTargets(ctx, TargetSpec{Kind: TargetUser, UserID: "ghost"})
		var nf *platform.NotFoundError
		require.ErrorAs(t, err, &nf)
	})

	t.Run("roles", func(t *testing.T) {
		targets, err := ResolveTargets(ctx, TargetSpec{Kind: TargetRoles, RoleIDs: []string{"role-member"}})
		require.NoError(t, err)
		ids := make([]string, 0, len(targets))
		for _, m := range targets {
			ids = append(ids, m.User.ID)
		}
		assert.ElementsMatch(t, []string{"actor", "u2"}, ids)
	})

	t.Run("stale role id is skipped", func(t *testing.T) {
		targets, err := ResolveTargets(ctx, TargetSpec{Kind: TargetRoles, RoleIDs: []string{"role-deleted", "role-member"}})
		require.NoError(t, err)
		assert.Len(t, targets, 2)
	})

	t.Run("only stale role ids", func(t *testing.T) {
		_, err := ResolveTargets(ctx, TargetSpec{Kind: TargetRoles, RoleIDs: []string{"role-deleted"}})
		var nt *NoTargetsError
		require.ErrorAs(t, err, &nt)
	})

	t.Run("everyone excludes bots", func(t *testing.T) {
		targets, err := ResolveTargets(ctx, TargetSpec{Kind: TargetEveryone})
		require.NoError(t, err)
		for _, m := range targets {
			assert.False(t, m.User.Bot, "bot %s resolved as everyone target", m.User.ID)
		}
		assert.Len(t, targets, 5)
	})

	t.Run("admins include owner and admin role holders", func(t *testing.T) {
		targets, err := ResolveTargets(ctx, TargetSpec{Kind: TargetAdmins})
		require.NoError(t, err)
		ids := make([]string, 0, len(targets))
		for _, m := range targets {
			ids = append(ids, m.User.ID)
		}
		assert.ElementsMatch(t, []string{"owner", "admin"}, ids)
	})
}
