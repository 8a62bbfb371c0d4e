package starboard_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"guildkeeper/feature/starboard"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var star = discordgo.Emoji{Name: "⭐"}

type slowFetcher struct {
	calls   atomic.Int32
	release chan struct{}
	msg     *discordgo.Message
	err     error
}

func (f *slowFetcher) Message(ctx context.Context, channelID, messageID string) (*discordgo.Message, error) {
	f.calls.Add(1)
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.msg, nil
}

func message(id string, count int) *discordgo.Message {
	e := star
	return &discordgo.Message{
		ID:        id,
		ChannelID: "20",
		Content:   "hello",
		Author:    &discordgo.User{ID: "30", Username: "alice"},
		Reactions: []*discordgo.MessageReactions{{Count: count, Emoji: &e}},
	}
}

func TestMessageCache_AppliesDeltaToCachedMessage(t *testing.T) {
	f := &slowFetcher{msg: message("m1", 3)}
	cache := starboard.NewMessageCache(f)
	ctx := context.Background()

	msg, err := cache.Resolve(ctx, "20", "m1")
	require.NoError(t, err)
	assert.Equal(t, 3, starboard.ReactionCount(msg, star))

	assert.True(t, cache.Adjust("m1", star, 1))
	msg, err = cache.Resolve(ctx, "20", "m1")
	require.NoError(t, err)
	assert.Equal(t, 4, starboard.ReactionCount(msg, star))
	assert.EqualValues(t, 1, f.calls.Load())

	assert.True(t, cache.Adjust("m1", star, -2))
	msg, err = cache.Resolve(ctx, "20", "m1")
	require.NoError(t, err)
	assert.Equal(t, 2, starboard.ReactionCount(msg, star))

	assert.False(t, cache.Adjust("unknown", star, 1))
}

func TestMessageCache_ReturnsCopies(t *testing.T) {
	cache := starboard.NewMessageCache(&slowFetcher{msg: message("m1", 3)})

	msg, err := cache.Resolve(context.Background(), "20", "m1")
	require.NoError(t, err)
	msg.Reactions[0].Count = 100

	again, err := cache.Resolve(context.Background(), "20", "m1")
	require.NoError(t, err)
	assert.Equal(t, 3, starboard.ReactionCount(again, star))
}

func TestMessageCache_NewEmojiAndRemoval(t *testing.T) {
	cache := starboard.NewMessageCache(&slowFetcher{msg: message("m1", 1)})
	fire := discordgo.Emoji{Name: "🔥"}
	ctx := context.Background()

	_, err := cache.Resolve(ctx, "20", "m1")
	require.NoError(t, err)

	cache.Adjust("m1", fire, 1)
	msg, err := cache.Resolve(ctx, "20", "m1")
	require.NoError(t, err)
	assert.Equal(t, 1, starboard.ReactionCount(msg, fire))

	cache.Adjust("m1", star, -1)
	msg, err = cache.Resolve(ctx, "20", "m1")
	require.NoError(t, err)
	assert.Zero(t, starboard.ReactionCount(msg, star))
	assert.Len(t, msg.Reactions, 1)
}

func TestMessageCache_ConcurrentMissesShareFetch(t *testing.T) {
	f := &slowFetcher{msg: message("m1", 5), release: make(chan struct{})}
	cache := starboard.NewMessageCache(f)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cache.Resolve(context.Background(), "20", "m1")
			assert.NoError(t, err)
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(f.release)
	wg.Wait()

	assert.EqualValues(t, 1, f.calls.Load())
	assert.Equal(t, 1, cache.Len())
}

func TestMessageCache_FetchError(t *testing.T) {
	cache := starboard.NewMessageCache(&slowFetcher{err: errors.New("boom")})

	_, err := cache.Resolve(context.Background(), "20", "m1")
	assert.Error(t, err)
	assert.Zero(t, cache.Len())
}

func TestMessageCache_Forget(t *testing.T) {
	f := &slowFetcher{msg: message("m1", 1)}
	cache := starboard.NewMessageCache(f)

	_, err := cache.Resolve(context.Background(), "20", "m1")
	require.NoError(t, err)
	cache.Forget("m1")
	assert.Zero(t, cache.Len())

	_, err = cache.Resolve(context.Background(), "20", "m1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, f.calls.Load())
}

func TestReactionCount_CustomEmoji(t *testing.T) {
	custom := discordgo.Emoji{ID: "555", Name: "party"}
	msg := &discordgo.Message{Reactions: []*discordgo.MessageReactions{
		{Count: 4, Emoji: &discordgo.Emoji{ID: "555", Name: "party"}},
		{Count: 9, Emoji: &discordgo.Emoji{Name: "party"}},
	}}
	assert.Equal(t, 4, starboard.ReactionCount(msg, custom))
}
