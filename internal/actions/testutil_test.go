package actions

import (
	"fmt"
	"sync"
	"time"

	"server-actions/internal/platform"

	"github.com/bwmarrin/discordgo"
)

// fakeClient is an in-memory platform.Client backed by a small synthetic
// guild. Mutations are recorded so tests can assert on what was done.
type fakeClient struct {
	mu sync.Mutex

	bot         *discordgo.User
	guild       *discordgo.Guild
	members     map[string]*discordgo.Member
	memberOrder []string
	roles       []*discordgo.Role
	channels    map[string]*discordgo.Channel
	botPerms    int64
	voice       map[string]*discordgo.VoiceState

	sent       map[string][]string
	dms        map[string][]string
	dmBlocked  map[string]bool
	reactions  []string
	messages   map[string]*discordgo.Message
	edited     []discordgo.MessageComponent
	kicked     []string
	banned     []string
	unbanned   []string
	timeouts   map[string]*time.Time
	overwrites map[string]map[string]*discordgo.PermissionOverwrite
}

const (
	testGuildID = "guild-1"
	testChannel = "chan-1"
)

// newFakeClient builds a guild with an owner, the bot, a plain actor, a
// second member, an admin and a moderator who outranks the bot.
func newFakeClient() *fakeClient {
	fc := &fakeClient{
		bot:        &discordgo.User{ID: "bot", Username: "actionbot", Bot: true},
		members:    map[string]*discordgo.Member{},
		channels:   map[string]*discordgo.Channel{},
		voice:      map[string]*discordgo.VoiceState{},
		sent:       map[string][]string{},
		dms:        map[string][]string{},
		dmBlocked:  map[string]bool{},
		messages:   map[string]*discordgo.Message{},
		timeouts:   map[string]*time.Time{},
		overwrites: map[string]map[string]*discordgo.PermissionOverwrite{},
		botPerms: discordgo.PermissionManageRoles | discordgo.PermissionManageNicknames |
			discordgo.PermissionSendMessages | discordgo.PermissionKickMembers |
			discordgo.PermissionBanMembers | discordgo.PermissionModerateMembers |
			discordgo.PermissionVoiceMoveMembers | discordgo.PermissionVoiceMuteMembers |
			discordgo.PermissionVoiceDeafenMembers,
	}

	fc.guild = &discordgo.Guild{ID: testGuildID, Name: "Test Guild", OwnerID: "owner"}
	fc.roles = []*discordgo.Role{
		{ID: testGuildID, Name: "@everyone", Position: 0},
		{ID: "role-member", Name: "Member", Position: 1},
		{ID: "role-extra", Name: "Extra", Position: 2},
		{ID: "role-bot", Name: "Bot", Position: 5},
		{ID: "role-high", Name: "Moderator", Position: 9},
		{ID: "role-admin", Name: "Admin", Position: 10, Permissions: discordgo.PermissionAdministrator},
	}

	fc.addMember("owner", "serverowner", false)
	fc.addMember("bot", "actionbot", true, "role-bot")
	fc.addMember("actor", "presser", false, "role-member")
	fc.addMember("u2", "bystander", false, "role-member")
	fc.addMember("mod", "bigmod", false, "role-high")
	fc.addMember("admin", "siteadmin", false, "role-admin")

	fc.channels[testChannel] = &discordgo.Channel{ID: testChannel, GuildID: testGuildID, Name: "general", Type: discordgo.ChannelTypeGuildText}
	fc.channels["cat-1"] = &discordgo.Channel{ID: "cat-1", GuildID: testGuildID, Name: "category", Type: discordgo.ChannelTypeGuildCategory}
	fc.channels["child-a"] = &discordgo.Channel{ID: "child-a", GuildID: testGuildID, Name: "child-a", Type: discordgo.ChannelTypeGuildText, ParentID: "cat-1"}
	fc.channels["child-b"] = &discordgo.Channel{ID: "child-b", GuildID: testGuildID, Name: "child-b", Type: discordgo.ChannelTypeGuildText, ParentID: "cat-1"}
	fc.channels["child-voice"] = &discordgo.Channel{ID: "child-voice", GuildID: testGuildID, Name: "lounge", Type: discordgo.ChannelTypeGuildVoice, ParentID: "cat-1"}
	fc.channels["voice-2"] = &discordgo.Channel{ID: "voice-2", GuildID: testGuildID, Name: "afk", Type: discordgo.ChannelTypeGuildVoice}

	return fc
}

func (fc *fakeClient) addMember(id, name string, isBot bool, roles ...string) {
	fc.members[id] = &discordgo.Member{
		GuildID: testGuildID,
		User:    &discordgo.User{ID: id, Username: name, Bot: isBot},
		Roles:   roles,
	}
	fc.memberOrder = append(fc.memberOrder, id)
}

func newTestContext(fc *fakeClient) *Context {
	return &Context{
		Actor:     fc.members["actor"],
		GuildID:   testGuildID,
		ChannelID: testChannel,
		MessageID: "msg-1",
		ButtonID:  "button-1",
		Client:    fc,
	}
}

func (fc *fakeClient) BotUser() *discordgo.User { return fc.bot }

func (fc *fakeClient) Member(guildID, userID string) (*discordgo.Member, error) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	m, ok := fc.members[userID]
	if !ok {
		return nil, &platform.NotFoundError{Resource: "member", ID: userID}
	}
	return m, nil
}

func (fc *fakeClient) Members(guildID string) ([]*discordgo.Member, error) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	out := make([]*discordgo.Member, 0, len(fc.memberOrder))
	for _, id := range fc.memberOrder {
		out = append(out, fc.members[id])
	}
	return out, nil
}

func (fc *fakeClient) Guild(guildID string) (*discordgo.Guild, error) { return fc.guild, nil }

func (fc *fakeClient) Channel(channelID string) (*discordgo.Channel, error) {
	ch, ok := fc.channels[channelID]
	if !ok {
		return nil, &platform.NotFoundError{Resource: "channel", ID: channelID}
	}
	return ch, nil
}

func (fc *fakeClient) GuildChannels(guildID string) ([]*discordgo.Channel, error) {
	out := make([]*discordgo.Channel, 0, len(fc.channels))
	for _, id := range []string{testChannel, "cat-1", "child-a", "child-b", "child-voice", "voice-2"} {
		if ch, ok := fc.channels[id]; ok {
			out = append(out, ch)
		}
	}
	return out, nil
}

func (fc *fakeClient) GuildRoles(guildID string) ([]*discordgo.Role, error) { return fc.roles, nil }

func (fc *fakeClient) UserChannelPermissions(userID, channelID string) (int64, error) {
	return fc.botPerms, nil
}

func (fc *fakeClient) RoleAdd(guildID, userID, roleID string) error {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	m, ok := fc.members[userID]
	if !ok {
		return &platform.NotFoundError{Resource: "member", ID: userID}
	}
	m.Roles = append(m.Roles, roleID)
	return nil
}

func (fc *fakeClient) RoleRemove(guildID, userID, roleID string) error {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	m, ok := fc.members[userID]
	if !ok {
		return &platform.NotFoundError{Resource: "member", ID: userID}
	}
	var out []string
	for _, r := range m.Roles {
		if r != roleID {
			out = append(out, r)
		}
	}
	m.Roles = out
	return nil
}

func (fc *fakeClient) SetNickname(guildID, userID, nick string) error {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	m, ok := fc.members[userID]
	if !ok {
		return &platform.NotFoundError{Resource: "member", ID: userID}
	}
	m.Nick = nick
	return nil
}

func (fc *fakeClient) SendMessage(channelID, content string) (*discordgo.Message, error) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	if _, ok := fc.channels[channelID]; !ok {
		return nil, &platform.NotFoundError{Resource: "channel", ID: channelID}
	}
	fc.sent[channelID] = append(fc.sent[channelID], content)
	return &discordgo.Message{ID: fmt.Sprintf("sent-%d", len(fc.sent[channelID])), ChannelID: channelID, Content: content}, nil
}

func (fc *fakeClient) SendDirect(userID, content string) (*discordgo.Message, error) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	if fc.dmBlocked[userID] {
		return nil, &platform.InvalidRequestError{Op: "direct message", Code: discordgo.ErrCodeCannotSendMessagesToThisUser}
	}
	fc.dms[userID] = append(fc.dms[userID], content)
	return &discordgo.Message{ID: fmt.Sprintf("dm-%d", len(fc.dms[userID])), ChannelID: "dm-" + userID, Content: content}, nil
}

func (fc *fakeClient) React(channelID, messageID, emoji string) error {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.reactions = append(fc.reactions, channelID+"/"+messageID+"/"+emoji)
	return nil
}

func (fc *fakeClient) Message(channelID, messageID string) (*discordgo.Message, error) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	m, ok := fc.messages[messageID]
	if !ok {
		return nil, &platform.NotFoundError{Resource: "message", ID: messageID}
	}
	return m, nil
}

func (fc *fakeClient) EditComponents(channelID, messageID string, components []discordgo.MessageComponent) error {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.edited = components
	return nil
}

func (fc *fakeClient) VoiceState(guildID, userID string) (*discordgo.VoiceState, error) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	vs, ok := fc.voice[userID]
	if !ok {
		return nil, &platform.NotFoundError{Resource: "voice state", ID: userID}
	}
	return vs, nil
}

func (fc *fakeClient) VoiceMove(guildID, userID string, channelID string) error {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	vs, ok := fc.voice[userID]
	if !ok {
		return &platform.NotFoundError{Resource: "voice state", ID: userID}
	}
	vs.ChannelID = channelID
	return nil
}

func (fc *fakeClient) VoiceDisconnect(guildID, userID string) error {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	delete(fc.voice, userID)
	return nil
}

func (fc *fakeClient) VoiceMute(guildID, userID string, mute bool) error {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	vs, ok := fc.voice[userID]
	if !ok {
		return &platform.NotFoundError{Resource: "voice state", ID: userID}
	}
	vs.Mute = mute
	return nil
}

func (fc *fakeClient) VoiceDeafen(guildID, userID string, deaf bool) error {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	vs, ok := fc.voice[userID]
	if !ok {
		return &platform.NotFoundError{Resource: "voice state", ID: userID}
	}
	vs.Deaf = deaf
	return nil
}

func (fc *fakeClient) VoiceSuppress(guildID, userID string, suppress bool) error {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	vs, ok := fc.voice[userID]
	if !ok {
		return &platform.NotFoundError{Resource: "voice state", ID: userID}
	}
	vs.Suppress = suppress
	return nil
}

func (fc *fakeClient) SetChannelPermission(channelID, targetID string, targetType discordgo.PermissionOverwriteType, allow, deny int64) error {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	if fc.overwrites[channelID] == nil {
		fc.overwrites[channelID] = map[string]*discordgo.PermissionOverwrite{}
	}
	fc.overwrites[channelID][targetID] = &discordgo.PermissionOverwrite{ID: targetID, Type: targetType, Allow: allow, Deny: deny}
	return nil
}

func (fc *fakeClient) DeleteChannelPermission(channelID, targetID string) error {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	delete(fc.overwrites[channelID], targetID)
	return nil
}

func (fc *fakeClient) Timeout(guildID, userID string, until *time.Time) error {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	m, ok := fc.members[userID]
	if !ok {
		return &platform.NotFoundError{Resource: "member", ID: userID}
	}
	fc.timeouts[userID] = until
	m.CommunicationDisabledUntil = until
	return nil
}

func (fc *fakeClient) Kick(guildID, userID, reason string) error {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.kicked = append(fc.kicked, userID)
	return nil
}

func (fc *fakeClient) Ban(guildID, userID, reason string, deleteDays int) error {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.banned = append(fc.banned, userID)
	return nil
}

func (fc *fakeClient) Unban(guildID, userID string) error {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.unbanned = append(fc.unbanned, userID)
	var remaining []string
	for _, id := range fc.banned {
		if id != userID {
			remaining = append(remaining, id)
		}
	}
	fc.banned = remaining
	return nil
}

func (fc *fakeClient) GetBan(guildID, userID string) (*discordgo.GuildBan, error) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	for _, id := range fc.banned {
		if id == userID {
			return &discordgo.GuildBan{User: &discordgo.User{ID: userID}}, nil
		}
	}
	return nil, &platform.NotFoundError{Resource: "ban", ID: userID}
}
