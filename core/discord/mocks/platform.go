package mocks

import (
	"context"

	"guildkeeper/core/discord"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/mock"
)

// Platform is a mock implementation of discord.Platform
type Platform struct {
	mock.Mock
}

func (m *Platform) Guild(ctx context.Context, guildID string) (*discordgo.Guild, error) {
	args := m.Called(ctx, guildID)
	if g, ok := args.Get(0).(*discordgo.Guild); ok {
		return g, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Platform) Snapshot(ctx context.Context, guildID string) (*discord.Snapshot, error) {
	args := m.Called(ctx, guildID)
	if s, ok := args.Get(0).(*discord.Snapshot); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Platform) Channel(ctx context.Context, channelID string) (*discordgo.Channel, error) {
	args := m.Called(ctx, channelID)
	if c, ok := args.Get(0).(*discordgo.Channel); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Platform) GuildChannels(ctx context.Context, guildID string) ([]*discordgo.Channel, error) {
	args := m.Called(ctx, guildID)
	if c, ok := args.Get(0).([]*discordgo.Channel); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Platform) User(ctx context.Context, userID string) (*discordgo.User, error) {
	args := m.Called(ctx, userID)
	if u, ok := args.Get(0).(*discordgo.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Platform) Message(ctx context.Context, channelID, messageID string) (*discordgo.Message, error) {
	args := m.Called(ctx, channelID, messageID)
	if msg, ok := args.Get(0).(*discordgo.Message); ok {
		return msg, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Platform) MemberCount(ctx context.Context, guildID string) (int, error) {
	args := m.Called(ctx, guildID)
	return args.Int(0), args.Error(1)
}

func (m *Platform) CreateChannel(ctx context.Context, guildID string, data discordgo.GuildChannelCreateData) (*discordgo.Channel, error) {
	args := m.Called(ctx, guildID, data)
	if c, ok := args.Get(0).(*discordgo.Channel); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Platform) DeleteChannel(ctx context.Context, channelID string) error {
	args := m.Called(ctx, channelID)
	return args.Error(0)
}

func (m *Platform) SendEmbed(ctx context.Context, channelID string, embed *discordgo.MessageEmbed) (*discordgo.Message, error) {
	args := m.Called(ctx, channelID, embed)
	if msg, ok := args.Get(0).(*discordgo.Message); ok {
		return msg, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Platform) BotUserID() string {
	args := m.Called()
	return args.String(0)
}
