package starboard_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"guildkeeper/core/discord/mocks"
	"guildkeeper/core/keylock"
	mirrormodels "guildkeeper/feature/mirror/models"
	"guildkeeper/feature/starboard"
	"guildkeeper/feature/starboard/models"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recorder struct {
	mu       sync.Mutex
	messages []mirrormodels.Message
	err      error
}

func (r *recorder) RecordMessage(ctx context.Context, msg mirrormodels.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
	return r.err
}

func restError(status int) error {
	return &discordgo.RESTError{Response: &http.Response{StatusCode: status}}
}

func setupService(t *testing.T, platform *mocks.Platform, rec starboard.MessageRecorder) *starboard.Service {
	return starboard.NewService(setupDB(t), platform, keylock.New(keylock.Config{}), rec, zap.NewNop())
}

// resolvable wires the lookups a reaction on message m1 in channel 20 needs.
func resolvable(platform *mocks.Platform, msg *discordgo.Message, members int) {
	platform.On("Guild", mock.Anything, "1").Return(&discordgo.Guild{ID: "1"}, nil)
	platform.On("Channel", mock.Anything, "20").Return(&discordgo.Channel{ID: "20", GuildID: "1", Name: "general", Type: discordgo.ChannelTypeGuildText}, nil)
	platform.On("User", mock.Anything, "40").Return(&discordgo.User{ID: "40"}, nil)
	platform.On("Message", mock.Anything, "20", msg.ID).Return(msg, nil)
	platform.On("MemberCount", mock.Anything, "1").Return(members, nil)
}

func event() starboard.ReactionEvent {
	return starboard.ReactionEvent{GuildID: "1", ChannelID: "20", UserID: "40", MessageID: "m1", Emoji: star}
}

func TestCreateBoard_CreatesChannel(t *testing.T) {
	platform := new(mocks.Platform)
	platform.On("GuildChannels", mock.Anything, "1").Return([]*discordgo.Channel{}, nil)
	platform.On("BotUserID").Return("99")
	platform.On("CreateChannel", mock.Anything, "1", mock.MatchedBy(func(d discordgo.GuildChannelCreateData) bool {
		return d.Name == "starboard" && d.Type == discordgo.ChannelTypeGuildText && len(d.PermissionOverwrites) == 2
	})).Return(&discordgo.Channel{ID: "3", Name: "starboard"}, nil)
	svc := setupService(t, platform, nil)

	board, err := svc.CreateBoard(context.Background(), "1", "starboard")
	require.NoError(t, err)
	assert.Equal(t, "3", board.ID)

	configs, err := svc.Configs(context.Background(), "1")
	require.NoError(t, err)
	require.Len(t, configs, 1)
	assert.True(t, configs[0].IsWildcard())
	assert.Equal(t, models.DefaultMinLimit, configs[0].MinLimit)
	platform.AssertExpectations(t)
}

func TestCreateBoard_ReusesExistingChannel(t *testing.T) {
	platform := new(mocks.Platform)
	platform.On("GuildChannels", mock.Anything, "1").Return([]*discordgo.Channel{
		{ID: "3", Name: "starboard", Type: discordgo.ChannelTypeGuildText},
	}, nil)
	svc := setupService(t, platform, nil)

	board, err := svc.CreateBoard(context.Background(), "1", "starboard")
	require.NoError(t, err)
	assert.Equal(t, "3", board.ID)

	// Registering the same channel twice is a configuration error and the
	// pre-existing channel is left alone.
	_, err = svc.CreateBoard(context.Background(), "1", "starboard")
	assert.True(t, starboard.IsConfigError(err))
	platform.AssertNotCalled(t, "DeleteChannel", mock.Anything, mock.Anything)
}

func TestCreateBoard_DeletesChannelWhenRegistrationFails(t *testing.T) {
	platform := new(mocks.Platform)
	platform.On("GuildChannels", mock.Anything, "1").Return([]*discordgo.Channel{}, nil)
	platform.On("BotUserID").Return("99")
	platform.On("CreateChannel", mock.Anything, "1", mock.Anything).Return(&discordgo.Channel{ID: "3", Name: "starboard"}, nil)
	platform.On("DeleteChannel", mock.Anything, "3").Return(nil).Once()
	svc := setupService(t, platform, nil)

	_, err := svc.Repository().CreateConfig(context.Background(), models.Config{GuildID: "1", StarboardChannelID: "3", MinLimit: 10})
	require.NoError(t, err)

	_, err = svc.CreateBoard(context.Background(), "1", "starboard")
	assert.True(t, starboard.IsConfigError(err))
	platform.AssertExpectations(t)
}

func TestCreateBoard_Forbidden(t *testing.T) {
	platform := new(mocks.Platform)
	platform.On("GuildChannels", mock.Anything, "1").Return([]*discordgo.Channel{}, nil)
	platform.On("BotUserID").Return("99")
	platform.On("CreateChannel", mock.Anything, "1", mock.Anything).Return(nil, restError(http.StatusForbidden))
	svc := setupService(t, platform, nil)

	_, err := svc.CreateBoard(context.Background(), "1", "starboard")
	require.True(t, starboard.IsConfigError(err))
	assert.Contains(t, err.Error(), "missing permission")

	configs, err := svc.Configs(context.Background(), "1")
	require.NoError(t, err)
	assert.Empty(t, configs)
}

func TestCreateBoard_EmptyName(t *testing.T) {
	svc := setupService(t, new(mocks.Platform), nil)

	_, err := svc.CreateBoard(context.Background(), "1", "  ")
	assert.True(t, starboard.IsConfigError(err))
}

func TestRedirect(t *testing.T) {
	svc := setupService(t, new(mocks.Platform), nil)
	ctx := context.Background()
	_, err := svc.Repository().CreateConfig(ctx, models.Config{GuildID: "1", StarboardChannelID: "3", MinLimit: 4})
	require.NoError(t, err)

	summary, err := svc.Redirect(ctx, "1", []string{"2", " 4 ", "2", ""}, "3")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Removed)
	assert.ElementsMatch(t, []string{"2", "4"}, summary.Targets)

	board, err := svc.Repository().ForBoard(ctx, "1", "3")
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "4"}, targets(board))
}

func TestRedirect_Errors(t *testing.T) {
	svc := setupService(t, new(mocks.Platform), nil)
	ctx := context.Background()

	_, err := svc.Redirect(ctx, "1", nil, "3")
	assert.True(t, starboard.IsConfigError(err))

	_, err = svc.Redirect(ctx, "1", []string{"2"}, "3")
	require.True(t, starboard.IsConfigError(err))
	assert.Contains(t, err.Error(), "is not a starboard")
}

func TestSetMinLimit(t *testing.T) {
	svc := setupService(t, new(mocks.Platform), nil)
	ctx := context.Background()
	_, err := svc.Repository().CreateConfig(ctx, models.Config{GuildID: "1", StarboardChannelID: "3", MinLimit: 10})
	require.NoError(t, err)

	require.NoError(t, svc.SetMinLimit(ctx, "1", "3", 2))
	assert.True(t, starboard.IsConfigError(svc.SetMinLimit(ctx, "1", "3", 0)))
	assert.True(t, starboard.IsConfigError(svc.SetMinLimit(ctx, "1", "8", 2)))

	configs, err := svc.Configs(ctx, "1")
	require.NoError(t, err)
	require.Len(t, configs, 1)
	assert.Equal(t, 2, configs[0].MinLimit)
}

func TestOnReactionAdded_Promotes(t *testing.T) {
	platform := new(mocks.Platform)
	resolvable(platform, message("m1", 10), 50)
	platform.On("SendEmbed", mock.Anything, "3", mock.Anything).Return(&discordgo.Message{ID: "p1"}, nil).Once()
	rec := &recorder{}
	svc := setupService(t, platform, rec)
	ctx := context.Background()
	_, err := svc.Repository().CreateConfig(ctx, models.Config{GuildID: "1", StarboardChannelID: "3", MinLimit: 10})
	require.NoError(t, err)

	require.NoError(t, svc.OnReactionAdded(ctx, event()))

	highlights, err := svc.Repository().Highlights(ctx, "1")
	require.NoError(t, err)
	require.Len(t, highlights, 1)
	assert.Equal(t, "p1", highlights[0].PostID)
	assert.Equal(t, "m1", highlights[0].MessageID)

	require.Len(t, rec.messages, 1)
	assert.Equal(t, "m1", rec.messages[0].ExternalID)
	assert.Equal(t, "30", rec.messages[0].AuthorID)

	// A second reaction on an already posted message posts nothing new.
	require.NoError(t, svc.OnReactionAdded(ctx, event()))
	platform.AssertNumberOfCalls(t, "SendEmbed", 1)
}

func TestOnReactionAdded_BelowThreshold(t *testing.T) {
	platform := new(mocks.Platform)
	resolvable(platform, message("m1", 6), 50)
	svc := setupService(t, platform, nil)
	ctx := context.Background()
	_, err := svc.Repository().CreateConfig(ctx, models.Config{GuildID: "1", StarboardChannelID: "3", MinLimit: 10})
	require.NoError(t, err)

	require.NoError(t, svc.OnReactionAdded(ctx, event()))
	platform.AssertNotCalled(t, "SendEmbed", mock.Anything, mock.Anything, mock.Anything)
}

func TestOnReactionAdded_ConcurrentReactionsPostOnce(t *testing.T) {
	platform := new(mocks.Platform)
	resolvable(platform, message("m1", 10), 50)
	platform.On("SendEmbed", mock.Anything, "3", mock.Anything).Return(&discordgo.Message{ID: "p1"}, nil)
	svc := setupService(t, platform, nil)
	ctx := context.Background()
	_, err := svc.Repository().CreateConfig(ctx, models.Config{GuildID: "1", StarboardChannelID: "3", MinLimit: 10})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, svc.OnReactionAdded(ctx, event()))
		}()
	}
	wg.Wait()

	platform.AssertNumberOfCalls(t, "SendEmbed", 1)
	highlights, err := svc.Repository().Highlights(ctx, "1")
	require.NoError(t, err)
	assert.Len(t, highlights, 1)
}

func TestOnReactionAdded_MultipleBoards(t *testing.T) {
	platform := new(mocks.Platform)
	resolvable(platform, message("m1", 10), 50)
	platform.On("SendEmbed", mock.Anything, "3", mock.Anything).Return(&discordgo.Message{ID: "p1"}, nil).Once()
	platform.On("SendEmbed", mock.Anything, "5", mock.Anything).Return(&discordgo.Message{ID: "p2"}, nil).Once()
	svc := setupService(t, platform, nil)
	ctx := context.Background()
	_, err := svc.Repository().CreateConfig(ctx, models.Config{GuildID: "1", StarboardChannelID: "3", MinLimit: 10})
	require.NoError(t, err)
	_, err = svc.Repository().CreateConfig(ctx, models.Config{GuildID: "1", TargetID: ptr("30"), StarboardChannelID: "5", MinLimit: 10})
	require.NoError(t, err)
	_, err = svc.Repository().CreateConfig(ctx, models.Config{GuildID: "1", TargetID: ptr("77"), StarboardChannelID: "6", MinLimit: 10})
	require.NoError(t, err)

	require.NoError(t, svc.OnReactionAdded(ctx, event()))
	platform.AssertExpectations(t)
	platform.AssertNumberOfCalls(t, "SendEmbed", 2)
}

func TestOnReactionAdded_SkipsBoardAndIgnoredChannels(t *testing.T) {
	tests := []struct {
		name    string
		channel *discordgo.Channel
		ignore  []string
	}{
		{"board itself", &discordgo.Channel{ID: "20", Type: discordgo.ChannelTypeGuildText}, nil},
		{"private thread", &discordgo.Channel{ID: "20", Type: discordgo.ChannelTypeGuildPrivateThread}, nil},
		{"ignored", &discordgo.Channel{ID: "20", Type: discordgo.ChannelTypeGuildText}, []string{"20"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			platform := new(mocks.Platform)
			platform.On("Guild", mock.Anything, "1").Return(&discordgo.Guild{ID: "1"}, nil)
			platform.On("Channel", mock.Anything, "20").Return(tt.channel, nil)
			platform.On("User", mock.Anything, "40").Return(&discordgo.User{ID: "40"}, nil)
			platform.On("Message", mock.Anything, "20", "m1").Return(message("m1", 50), nil)
			platform.On("MemberCount", mock.Anything, "1").Return(10, nil)
			svc := setupService(t, platform, nil)
			svc.Ignore(tt.ignore...)
			board := "3"
			if tt.name == "board itself" {
				board = "20"
			}
			_, err := svc.Repository().CreateConfig(context.Background(), models.Config{GuildID: "1", StarboardChannelID: board, MinLimit: 1})
			require.NoError(t, err)

			require.NoError(t, svc.OnReactionAdded(context.Background(), event()))
			platform.AssertNotCalled(t, "SendEmbed", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestOnReactionAdded_ResolutionMisses(t *testing.T) {
	t.Run("bot user", func(t *testing.T) {
		platform := new(mocks.Platform)
		platform.On("Guild", mock.Anything, "1").Return(&discordgo.Guild{ID: "1"}, nil)
		platform.On("Channel", mock.Anything, "20").Return(&discordgo.Channel{ID: "20"}, nil)
		platform.On("User", mock.Anything, "40").Return(&discordgo.User{ID: "40", Bot: true}, nil)
		svc := setupService(t, platform, nil)

		assert.NoError(t, svc.OnReactionAdded(context.Background(), event()))
		platform.AssertNotCalled(t, "Message", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("deleted message", func(t *testing.T) {
		platform := new(mocks.Platform)
		platform.On("Guild", mock.Anything, "1").Return(&discordgo.Guild{ID: "1"}, nil)
		platform.On("Channel", mock.Anything, "20").Return(&discordgo.Channel{ID: "20"}, nil)
		platform.On("User", mock.Anything, "40").Return(&discordgo.User{ID: "40"}, nil)
		platform.On("Message", mock.Anything, "20", "m1").Return(nil, restError(http.StatusNotFound))
		svc := setupService(t, platform, nil)

		assert.NoError(t, svc.OnReactionAdded(context.Background(), event()))
	})

	t.Run("no guild", func(t *testing.T) {
		svc := setupService(t, new(mocks.Platform), nil)
		ev := event()
		ev.GuildID = ""
		assert.NoError(t, svc.OnReactionAdded(context.Background(), ev))
	})

	t.Run("platform failure", func(t *testing.T) {
		platform := new(mocks.Platform)
		platform.On("Guild", mock.Anything, "1").Return(nil, errors.New("gateway down"))
		svc := setupService(t, platform, nil)

		err := svc.OnReactionAdded(context.Background(), event())
		assert.Error(t, err)
		assert.False(t, starboard.IsConfigError(err))
	})
}

func TestOnReactionAdded_NoConfig(t *testing.T) {
	platform := new(mocks.Platform)
	resolvable(platform, message("m1", 10), 50)
	svc := setupService(t, platform, nil)

	err := svc.OnReactionAdded(context.Background(), event())
	assert.True(t, starboard.IsConfigError(err))
}

func TestOnReactionAdded_SendForbidden(t *testing.T) {
	platform := new(mocks.Platform)
	resolvable(platform, message("m1", 10), 50)
	platform.On("SendEmbed", mock.Anything, "3", mock.Anything).Return(nil, restError(http.StatusForbidden))
	svc := setupService(t, platform, nil)
	ctx := context.Background()
	_, err := svc.Repository().CreateConfig(ctx, models.Config{GuildID: "1", StarboardChannelID: "3", MinLimit: 10})
	require.NoError(t, err)

	err = svc.OnReactionAdded(ctx, event())
	assert.True(t, starboard.IsConfigError(err))

	highlights, err := svc.Repository().Highlights(ctx, "1")
	require.NoError(t, err)
	assert.Empty(t, highlights)
}

func TestOnReactionAdded_MirrorFailureIsNotFatal(t *testing.T) {
	platform := new(mocks.Platform)
	resolvable(platform, message("m1", 10), 50)
	platform.On("SendEmbed", mock.Anything, "3", mock.Anything).Return(&discordgo.Message{ID: "p1"}, nil)
	svc := setupService(t, platform, &recorder{err: errors.New("db down")})
	ctx := context.Background()
	_, err := svc.Repository().CreateConfig(ctx, models.Config{GuildID: "1", StarboardChannelID: "3", MinLimit: 10})
	require.NoError(t, err)

	assert.NoError(t, svc.OnReactionAdded(ctx, event()))
}

func TestOnReactionRemoved(t *testing.T) {
	platform := new(mocks.Platform)
	resolvable(platform, message("m1", 4), 50)
	svc := setupService(t, platform, nil)
	ctx := context.Background()
	_, err := svc.Repository().CreateConfig(ctx, models.Config{GuildID: "1", StarboardChannelID: "3", MinLimit: 10})
	require.NoError(t, err)

	require.NoError(t, svc.OnReactionAdded(ctx, event()))
	require.NoError(t, svc.OnReactionRemoved(ctx, event()))

	msg, err := svc.Cache().Resolve(ctx, "20", "m1")
	require.NoError(t, err)
	assert.Equal(t, 3, starboard.ReactionCount(msg, star))
}

func TestOnReactionAdded_BotReactionsKeepCountInLine(t *testing.T) {
	platform := new(mocks.Platform)
	resolvable(platform, message("m1", 9), 50)
	platform.On("User", mock.Anything, "41").Return(&discordgo.User{ID: "41", Bot: true}, nil)
	platform.On("User", mock.Anything, "42").Return(&discordgo.User{ID: "42"}, nil)
	platform.On("SendEmbed", mock.Anything, "3", mock.Anything).Return(&discordgo.Message{ID: "p1"}, nil).Once()
	svc := setupService(t, platform, nil)
	ctx := context.Background()
	_, err := svc.Repository().CreateConfig(ctx, models.Config{GuildID: "1", StarboardChannelID: "3", MinLimit: 10})
	require.NoError(t, err)

	// First human reaction loads the message with 9 stars.
	require.NoError(t, svc.OnReactionAdded(ctx, event()))

	bot := event()
	bot.UserID = "41"
	require.NoError(t, svc.OnReactionAdded(ctx, bot))
	require.NoError(t, svc.OnReactionRemoved(ctx, bot))

	human := event()
	human.UserID = "42"
	require.NoError(t, svc.OnReactionAdded(ctx, human))

	msg, err := svc.Cache().Resolve(ctx, "20", "m1")
	require.NoError(t, err)
	assert.Equal(t, 10, starboard.ReactionCount(msg, star))
	platform.AssertNumberOfCalls(t, "SendEmbed", 1)
}

func TestOnReactionAdded_UserFromEvent(t *testing.T) {
	platform := new(mocks.Platform)
	platform.On("Guild", mock.Anything, "1").Return(&discordgo.Guild{ID: "1"}, nil)
	platform.On("Channel", mock.Anything, "20").Return(&discordgo.Channel{ID: "20"}, nil)
	svc := setupService(t, platform, nil)

	ev := event()
	ev.User = &discordgo.User{ID: "40", Bot: true}
	assert.NoError(t, svc.OnReactionAdded(context.Background(), ev))
	platform.AssertNotCalled(t, "User", mock.Anything, mock.Anything)
	platform.AssertNotCalled(t, "Message", mock.Anything, mock.Anything, mock.Anything)
}
