package actions

import "server-actions/pkg/jobmgr"

// RegisterDefaults wires every built-in executor into the registry. jobs backs
// voice auto-reverts; players may be nil when no audio engine is attached, in
// which case playback actions fail as "player not found".
func RegisterDefaults(r *Registry, jobs *jobmgr.Manager, players PlayerProvider) {
	r.Register(&RoleExecutor{})
	r.Register(&NicknameExecutor{})
	r.Register(&MessageExecutor{})
	r.Register(NewVoiceExecutor(jobs))
	r.Register(&ChannelPermissionExecutor{})
	r.Register(&ModerationExecutor{})
	r.Register(NewPlaybackExecutor(players))
	r.Register(&AppearanceExecutor{})
	r.Register(&CommandExecutor{})
}
