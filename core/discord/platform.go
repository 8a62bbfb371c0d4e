package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// Snapshot is the live structure of one guild.
type Snapshot struct {
	Guild    *discordgo.Guild
	Roles    []*discordgo.Role
	Channels []*discordgo.Channel
}

// Platform is everything the mirror and the starboard need from Discord.
type Platform interface {
	// Guild returns the guild, from the gateway state when cached.
	Guild(ctx context.Context, guildID string) (*discordgo.Guild, error)
	// Snapshot fetches the guild with its roles and channels over REST.
	Snapshot(ctx context.Context, guildID string) (*Snapshot, error)
	Channel(ctx context.Context, channelID string) (*discordgo.Channel, error)
	GuildChannels(ctx context.Context, guildID string) ([]*discordgo.Channel, error)
	User(ctx context.Context, userID string) (*discordgo.User, error)
	// Message always goes to REST so reaction counts are current.
	Message(ctx context.Context, channelID, messageID string) (*discordgo.Message, error)
	MemberCount(ctx context.Context, guildID string) (int, error)
	CreateChannel(ctx context.Context, guildID string, data discordgo.GuildChannelCreateData) (*discordgo.Channel, error)
	DeleteChannel(ctx context.Context, channelID string) error
	SendEmbed(ctx context.Context, channelID string, embed *discordgo.MessageEmbed) (*discordgo.Message, error)
	// BotUserID is the id of the connected bot user, empty before Ready.
	BotUserID() string
}

// SessionPlatform implements Platform over a discordgo session. Lookups try
// the gateway state first and fall back to REST.
type SessionPlatform struct {
	session *discordgo.Session
}

// NewPlatform wraps session.
func NewPlatform(session *discordgo.Session) *SessionPlatform {
	return &SessionPlatform{session: session}
}

func (p *SessionPlatform) state() *discordgo.State {
	if p.session.StateEnabled {
		return p.session.State
	}
	return nil
}

func (p *SessionPlatform) Guild(ctx context.Context, guildID string) (*discordgo.Guild, error) {
	if st := p.state(); st != nil {
		if g, err := st.Guild(guildID); err == nil {
			return g, nil
		}
	}
	return p.session.Guild(guildID, discordgo.WithContext(ctx))
}

func (p *SessionPlatform) Snapshot(ctx context.Context, guildID string) (*Snapshot, error) {
	guild, err := p.session.Guild(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch guild %s: %w", guildID, err)
	}
	roles, err := p.session.GuildRoles(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch roles of %s: %w", guildID, err)
	}
	channels, err := p.session.GuildChannels(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch channels of %s: %w", guildID, err)
	}
	return &Snapshot{Guild: guild, Roles: roles, Channels: channels}, nil
}

func (p *SessionPlatform) Channel(ctx context.Context, channelID string) (*discordgo.Channel, error) {
	if st := p.state(); st != nil {
		if c, err := st.Channel(channelID); err == nil {
			return c, nil
		}
	}
	return p.session.Channel(channelID, discordgo.WithContext(ctx))
}

func (p *SessionPlatform) GuildChannels(ctx context.Context, guildID string) ([]*discordgo.Channel, error) {
	if st := p.state(); st != nil {
		if g, err := st.Guild(guildID); err == nil && len(g.Channels) > 0 {
			return g.Channels, nil
		}
	}
	return p.session.GuildChannels(guildID, discordgo.WithContext(ctx))
}

func (p *SessionPlatform) User(ctx context.Context, userID string) (*discordgo.User, error) {
	return p.session.User(userID, discordgo.WithContext(ctx))
}

func (p *SessionPlatform) Message(ctx context.Context, channelID, messageID string) (*discordgo.Message, error) {
	return p.session.ChannelMessage(channelID, messageID, discordgo.WithContext(ctx))
}

func (p *SessionPlatform) MemberCount(ctx context.Context, guildID string) (int, error) {
	if st := p.state(); st != nil {
		if g, err := st.Guild(guildID); err == nil && g.MemberCount > 0 {
			return g.MemberCount, nil
		}
	}
	g, err := p.session.GuildWithCounts(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return 0, err
	}
	return g.ApproximateMemberCount, nil
}

func (p *SessionPlatform) CreateChannel(ctx context.Context, guildID string, data discordgo.GuildChannelCreateData) (*discordgo.Channel, error) {
	return p.session.GuildChannelCreateComplex(guildID, data, discordgo.WithContext(ctx))
}

func (p *SessionPlatform) DeleteChannel(ctx context.Context, channelID string) error {
	_, err := p.session.ChannelDelete(channelID, discordgo.WithContext(ctx))
	return err
}

func (p *SessionPlatform) SendEmbed(ctx context.Context, channelID string, embed *discordgo.MessageEmbed) (*discordgo.Message, error) {
	return p.session.ChannelMessageSendEmbed(channelID, embed, discordgo.WithContext(ctx))
}

func (p *SessionPlatform) BotUserID() string {
	if st := p.state(); st != nil && st.User != nil {
		return st.User.ID
	}
	return ""
}
