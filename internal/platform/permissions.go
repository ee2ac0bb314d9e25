package platform

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// PermissionNames maps Discord permission bits to readable names, used in
// user-facing permission errors and in button config documents.
var PermissionNames = map[int64]string{
	discordgo.PermissionCreateInstantInvite:   "Create Instant Invite",
	discordgo.PermissionKickMembers:           "Kick Members",
	discordgo.PermissionBanMembers:            "Ban Members",
	discordgo.PermissionAdministrator:         "Administrator",
	discordgo.PermissionManageChannels:        "Manage Channels",
	discordgo.PermissionManageGuild:           "Manage Server",
	discordgo.PermissionAddReactions:          "Add Reactions",
	discordgo.PermissionViewChannel:           "View Channel",
	discordgo.PermissionSendMessages:          "Send Messages",
	discordgo.PermissionManageMessages:        "Manage Messages",
	discordgo.PermissionEmbedLinks:            "Embed Links",
	discordgo.PermissionAttachFiles:           "Attach Files",
	discordgo.PermissionReadMessageHistory:    "Read Message History",
	discordgo.PermissionMentionEveryone:       "Mention Everyone",
	discordgo.PermissionUseExternalEmojis:     "Use External Emojis",
	discordgo.PermissionManageThreads:         "Manage Threads",
	discordgo.PermissionSendMessagesInThreads: "Send Messages in Threads",
	discordgo.PermissionVoicePrioritySpeaker:  "Priority Speaker",
	discordgo.PermissionVoiceConnect:          "Connect to Voice Channel",
	discordgo.PermissionVoiceSpeak:            "Speak",
	discordgo.PermissionVoiceMuteMembers:      "Mute Members",
	discordgo.PermissionVoiceDeafenMembers:    "Deafen Members",
	discordgo.PermissionVoiceMoveMembers:      "Move Members",
	discordgo.PermissionChangeNickname:        "Change Nickname",
	discordgo.PermissionManageNicknames:       "Manage Nicknames",
	discordgo.PermissionManageRoles:           "Manage Roles",
	discordgo.PermissionManageWebhooks:        "Manage Webhooks",
	discordgo.PermissionModerateMembers:       "Moderate Members",
}

// permissionBits is the reverse of PermissionNames keyed by the snake_case
// identifiers used in stored button configs.
var permissionBits = map[string]int64{
	"view_channel":          discordgo.PermissionViewChannel,
	"send_messages":         discordgo.PermissionSendMessages,
	"manage_messages":       discordgo.PermissionManageMessages,
	"embed_links":           discordgo.PermissionEmbedLinks,
	"attach_files":          discordgo.PermissionAttachFiles,
	"add_reactions":         discordgo.PermissionAddReactions,
	"read_message_history":  discordgo.PermissionReadMessageHistory,
	"mention_everyone":      discordgo.PermissionMentionEveryone,
	"use_external_emojis":   discordgo.PermissionUseExternalEmojis,
	"manage_threads":        discordgo.PermissionManageThreads,
	"connect":               discordgo.PermissionVoiceConnect,
	"speak":                 discordgo.PermissionVoiceSpeak,
	"stream":                discordgo.PermissionVoiceStreamVideo,
	"mute_members":          discordgo.PermissionVoiceMuteMembers,
	"deafen_members":        discordgo.PermissionVoiceDeafenMembers,
	"move_members":          discordgo.PermissionVoiceMoveMembers,
	"priority_speaker":      discordgo.PermissionVoicePrioritySpeaker,
	"manage_channels":       discordgo.PermissionManageChannels,
	"manage_roles":          discordgo.PermissionManageRoles,
	"create_instant_invite": discordgo.PermissionCreateInstantInvite,
}

// PermissionName returns the readable name for a permission bit.
func PermissionName(p int64) string {
	if name, ok := PermissionNames[p]; ok {
		return name
	}
	return fmt.Sprintf("0x%x", p)
}

// PermissionBit resolves a snake_case permission identifier to its bit.
func PermissionBit(name string) (int64, bool) {
	p, ok := permissionBits[name]
	return p, ok
}

// voiceOnlyPermissions and textOnlyPermissions split the permission space by
// channel kind so channel overwrites only carry bits the channel can honor.
const voiceOnlyPermissions = discordgo.PermissionVoiceConnect |
	discordgo.PermissionVoiceSpeak |
	discordgo.PermissionVoiceStreamVideo |
	discordgo.PermissionVoiceMuteMembers |
	discordgo.PermissionVoiceDeafenMembers |
	discordgo.PermissionVoiceMoveMembers |
	discordgo.PermissionVoicePrioritySpeaker

const textOnlyPermissions = discordgo.PermissionSendMessages |
	discordgo.PermissionManageMessages |
	discordgo.PermissionEmbedLinks |
	discordgo.PermissionAttachFiles |
	discordgo.PermissionMentionEveryone |
	discordgo.PermissionReadMessageHistory |
	discordgo.PermissionSendMessagesInThreads |
	discordgo.PermissionManageThreads

// LegalPermissionMask filters a requested permission mask down to what the
// given channel type can carry. Categories accept everything so their children
// inherit the full set.
func LegalPermissionMask(chType discordgo.ChannelType, mask int64) int64 {
	switch chType {
	case discordgo.ChannelTypeGuildVoice, discordgo.ChannelTypeGuildStageVoice:
		return mask &^ textOnlyPermissions
	case discordgo.ChannelTypeGuildCategory:
		return mask
	default:
		return mask &^ voiceOnlyPermissions
	}
}
