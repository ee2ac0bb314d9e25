// Package platform is the boundary to Discord. Everything the action engine
// does to a guild goes through the Client interface; the discordgo-backed
// implementation normalizes raw API failures into the package's error taxonomy
// so executors never see transport-level errors.
package platform

import (
	"time"

	"github.com/bwmarrin/discordgo"
)

// Client is the set of atomic guild operations the action engine consumes.
type Client interface {
	// Lookups
	BotUser() *discordgo.User
	Member(guildID, userID string) (*discordgo.Member, error)
	Members(guildID string) ([]*discordgo.Member, error)
	Guild(guildID string) (*discordgo.Guild, error)
	Channel(channelID string) (*discordgo.Channel, error)
	GuildChannels(guildID string) ([]*discordgo.Channel, error)
	GuildRoles(guildID string) ([]*discordgo.Role, error)
	UserChannelPermissions(userID, channelID string) (int64, error)

	// Roles and identity
	RoleAdd(guildID, userID, roleID string) error
	RoleRemove(guildID, userID, roleID string) error
	SetNickname(guildID, userID, nick string) error

	// Messaging
	SendMessage(channelID, content string) (*discordgo.Message, error)
	SendDirect(userID, content string) (*discordgo.Message, error)
	React(channelID, messageID, emoji string) error
	Message(channelID, messageID string) (*discordgo.Message, error)
	EditComponents(channelID, messageID string, components []discordgo.MessageComponent) error

	// Voice
	VoiceState(guildID, userID string) (*discordgo.VoiceState, error)
	VoiceMove(guildID, userID string, channelID string) error
	VoiceDisconnect(guildID, userID string) error
	VoiceMute(guildID, userID string, mute bool) error
	VoiceDeafen(guildID, userID string, deaf bool) error
	VoiceSuppress(guildID, userID string, suppress bool) error

	// Channel permission overwrites
	SetChannelPermission(channelID, targetID string, targetType discordgo.PermissionOverwriteType, allow, deny int64) error
	DeleteChannelPermission(channelID, targetID string) error

	// Moderation
	Timeout(guildID, userID string, until *time.Time) error
	Kick(guildID, userID, reason string) error
	Ban(guildID, userID, reason string, deleteDays int) error
	Unban(guildID, userID string) error
	GetBan(guildID, userID string) (*discordgo.GuildBan, error)
}
