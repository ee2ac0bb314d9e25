package platform

import (
	"context"
	"errors"
	"time"

	"server-actions/pkg/retrylimit"

	"github.com/bwmarrin/discordgo"
)

// Discord implements Client on top of a live discordgo session. Every write
// call goes through the adaptive limiter so a burst of button presses degrades
// gracefully instead of tripping the global rate limit.
type Discord struct {
	dg  *discordgo.Session
	lim *retrylimit.AdaptiveLimiter
}

func NewDiscord(dg *discordgo.Session) *Discord {
	return &Discord{
		dg:  dg,
		lim: retrylimit.NewAdaptiveLimiter(10, 1, 40, 1, 0.5),
	}
}

// call runs one platform operation behind the limiter and normalizes its error.
func (d *Discord) call(op string, fn func() error) error {
	if err := d.lim.Wait(context.Background()); err != nil {
		return err
	}
	err := Normalize(op, fn())
	if err == nil {
		d.lim.Success()
		return nil
	}
	var rl *RateLimitError
	if errors.As(err, &rl) {
		d.lim.RateLimited()
	}
	return err
}

func (d *Discord) BotUser() *discordgo.User {
	return d.dg.State.User
}

func (d *Discord) Member(guildID, userID string) (*discordgo.Member, error) {
	m, err := d.dg.State.Member(guildID, userID)
	if err == nil {
		return m, nil
	}
	m, err = d.dg.GuildMember(guildID, userID)
	return m, Normalize("fetch member", err)
}

func (d *Discord) Members(guildID string) ([]*discordgo.Member, error) {
	var all []*discordgo.Member
	after := ""
	for {
		page, err := d.dg.GuildMembers(guildID, after, 1000)
		if err != nil {
			return nil, Normalize("list members", err)
		}
		all = append(all, page...)
		if len(page) < 1000 {
			return all, nil
		}
		after = page[len(page)-1].User.ID
	}
}

func (d *Discord) Guild(guildID string) (*discordgo.Guild, error) {
	g, err := d.dg.State.Guild(guildID)
	if err == nil {
		return g, nil
	}
	g, err = d.dg.Guild(guildID)
	return g, Normalize("fetch guild", err)
}

func (d *Discord) Channel(channelID string) (*discordgo.Channel, error) {
	ch, err := d.dg.State.Channel(channelID)
	if err == nil {
		return ch, nil
	}
	ch, err = d.dg.Channel(channelID)
	return ch, Normalize("fetch channel", err)
}

func (d *Discord) GuildChannels(guildID string) ([]*discordgo.Channel, error) {
	chs, err := d.dg.GuildChannels(guildID)
	return chs, Normalize("list channels", err)
}

func (d *Discord) GuildRoles(guildID string) ([]*discordgo.Role, error) {
	roles, err := d.dg.GuildRoles(guildID)
	return roles, Normalize("list roles", err)
}

func (d *Discord) UserChannelPermissions(userID, channelID string) (int64, error) {
	perms, err := d.dg.UserChannelPermissions(userID, channelID)
	return perms, Normalize("compute permissions", err)
}

func (d *Discord) RoleAdd(guildID, userID, roleID string) error {
	return d.call("add role", func() error {
		return d.dg.GuildMemberRoleAdd(guildID, userID, roleID)
	})
}

func (d *Discord) RoleRemove(guildID, userID, roleID string) error {
	return d.call("remove role", func() error {
		return d.dg.GuildMemberRoleRemove(guildID, userID, roleID)
	})
}

func (d *Discord) SetNickname(guildID, userID, nick string) error {
	return d.call("set nickname", func() error {
		return d.dg.GuildMemberNickname(guildID, userID, nick)
	})
}

func (d *Discord) SendMessage(channelID, content string) (*discordgo.Message, error) {
	var msg *discordgo.Message
	err := d.call("send message", func() error {
		var err error
		msg, err = d.dg.ChannelMessageSend(channelID, content)
		return err
	})
	return msg, err
}

func (d *Discord) SendDirect(userID, content string) (*discordgo.Message, error) {
	dm, err := d.dg.UserChannelCreate(userID)
	if err != nil {
		return nil, Normalize("open DM", err)
	}
	return d.SendMessage(dm.ID, content)
}

func (d *Discord) React(channelID, messageID, emoji string) error {
	return d.call("add reaction", func() error {
		return d.dg.MessageReactionAdd(channelID, messageID, emoji)
	})
}

func (d *Discord) Message(channelID, messageID string) (*discordgo.Message, error) {
	msg, err := d.dg.ChannelMessage(channelID, messageID)
	return msg, Normalize("fetch message", err)
}

func (d *Discord) EditComponents(channelID, messageID string, components []discordgo.MessageComponent) error {
	return d.call("edit components", func() error {
		_, err := d.dg.ChannelMessageEditComplex(&discordgo.MessageEdit{
			Channel:    channelID,
			ID:         messageID,
			Components: &components,
		})
		return err
	})
}

func (d *Discord) VoiceState(guildID, userID string) (*discordgo.VoiceState, error) {
	vs, err := d.dg.State.VoiceState(guildID, userID)
	if err != nil {
		return nil, &NotFoundError{Resource: "voice state", ID: userID, Err: err}
	}
	return vs, nil
}

func (d *Discord) VoiceMove(guildID, userID string, channelID string) error {
	return d.call("move voice", func() error {
		return d.dg.GuildMemberMove(guildID, userID, &channelID)
	})
}

func (d *Discord) VoiceDisconnect(guildID, userID string) error {
	return d.call("disconnect voice", func() error {
		return d.dg.GuildMemberMove(guildID, userID, nil)
	})
}

func (d *Discord) VoiceMute(guildID, userID string, mute bool) error {
	return d.call("set mute", func() error {
		return d.dg.GuildMemberMute(guildID, userID, mute)
	})
}

func (d *Discord) VoiceDeafen(guildID, userID string, deaf bool) error {
	return d.call("set deafen", func() error {
		return d.dg.GuildMemberDeafen(guildID, userID, deaf)
	})
}

// VoiceSuppress toggles the stage suppress flag on another member's voice
// state. discordgo has no helper for this PATCH, so it goes through the raw
// request path.
func (d *Discord) VoiceSuppress(guildID, userID string, suppress bool) error {
	vs, err := d.VoiceState(guildID, userID)
	if err != nil {
		return err
	}
	return d.call("set suppress", func() error {
		data := struct {
			ChannelID string `json:"channel_id"`
			Suppress  bool   `json:"suppress"`
		}{ChannelID: vs.ChannelID, Suppress: suppress}
		endpoint := discordgo.EndpointGuild(guildID) + "/voice-states/" + userID
		_, err := d.dg.RequestWithBucketID("PATCH", endpoint, data, endpoint)
		return err
	})
}

func (d *Discord) SetChannelPermission(channelID, targetID string, targetType discordgo.PermissionOverwriteType, allow, deny int64) error {
	return d.call("set channel permission", func() error {
		return d.dg.ChannelPermissionSet(channelID, targetID, targetType, allow, deny)
	})
}

func (d *Discord) DeleteChannelPermission(channelID, targetID string) error {
	return d.call("delete channel permission", func() error {
		return d.dg.ChannelPermissionDelete(channelID, targetID)
	})
}

func (d *Discord) Timeout(guildID, userID string, until *time.Time) error {
	return d.call("timeout member", func() error {
		return d.dg.GuildMemberTimeout(guildID, userID, until)
	})
}

func (d *Discord) Kick(guildID, userID, reason string) error {
	return d.call("kick member", func() error {
		return d.dg.GuildMemberDeleteWithReason(guildID, userID, reason)
	})
}

func (d *Discord) Ban(guildID, userID, reason string, deleteDays int) error {
	return d.call("ban member", func() error {
		return d.dg.GuildBanCreateWithReason(guildID, userID, reason, deleteDays)
	})
}

func (d *Discord) Unban(guildID, userID string) error {
	return d.call("unban member", func() error {
		return d.dg.GuildBanDelete(guildID, userID)
	})
}

func (d *Discord) GetBan(guildID, userID string) (*discordgo.GuildBan, error) {
	ban, err := d.dg.GuildBan(guildID, userID)
	return ban, Normalize("fetch ban", err)
}
