package actions

import "github.com/bwmarrin/discordgo"

// ExpandChannel resolves a channel id into the concrete channels an action
// touches. A regular channel expands to itself; a category expands to its
// direct children, optionally including the category itself. The caller
// filters by channel type.
func ExpandChannel(ctx *Context, channelID string, includeCategory bool) ([]*discordgo.Channel, error) {
	ch, err := ctx.Client.Channel(channelID)
	if err != nil {
		return nil, err
	}
	if ch.Type != discordgo.ChannelTypeGuildCategory {
		return []*discordgo.Channel{ch}, nil
	}

	all, err := ctx.Client.GuildChannels(ctx.GuildID)
	if err != nil {
		return nil, err
	}
	var out []*discordgo.Channel
	if includeCategory {
		out = append(out, ch)
	}
	for _, c := range all {
		if c.ParentID == ch.ID {
			out = append(out, c)
		}
	}
	return out, nil
}

// textChannels keeps only channels messages can be posted to.
func textChannels(channels []*discordgo.Channel) []*discordgo.Channel {
	var out []*discordgo.Channel
	for _, c := range channels {
		switch c.Type {
		case discordgo.ChannelTypeGuildText, discordgo.ChannelTypeGuildNews:
			out = append(out, c)
		}
	}
	return out
}
