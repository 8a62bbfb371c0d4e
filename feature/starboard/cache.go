package starboard

import (
	"context"
	"sync"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/sync/singleflight"
)

// MessageFetcher loads a message with its current reactions.
type MessageFetcher interface {
	Message(ctx context.Context, channelID, messageID string) (*discordgo.Message, error)
}

// MessageCache keeps the last fetched copy of each message. Every reaction
// event, from bots included, is applied to it so counts stay current without
// refetching.
// Concurrent misses for the same message share one fetch. Nothing is evicted.
type MessageCache struct {
	fetcher MessageFetcher

	mu       sync.Mutex
	messages map[string]*discordgo.Message
	sf       singleflight.Group
}

// NewMessageCache creates an empty cache.
func NewMessageCache(fetcher MessageFetcher) *MessageCache {
	return &MessageCache{
		fetcher:  fetcher,
		messages: make(map[string]*discordgo.Message),
	}
}

// Resolve returns a copy of the message, fetching it on a miss. Reaction
// events are applied separately with Adjust; a fetched message already
// reflects every event that happened before the fetch.
func (c *MessageCache) Resolve(ctx context.Context, channelID, messageID string) (*discordgo.Message, error) {
	c.mu.Lock()
	if msg, ok := c.messages[messageID]; ok {
		out := cloneMessage(msg)
		c.mu.Unlock()
		return out, nil
	}
	c.mu.Unlock()

	v, err, _ := c.sf.Do(messageID, func() (any, error) {
		msg, err := c.fetcher.Message(ctx, channelID, messageID)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		if cached, ok := c.messages[messageID]; ok {
			return cloneMessage(cached), nil
		}
		c.messages[messageID] = msg
		return cloneMessage(msg), nil
	})
	if err != nil {
		return nil, err
	}
	return cloneMessage(v.(*discordgo.Message)), nil
}

// Adjust applies delta to a cached message only. It reports whether the
// message was cached.
func (c *MessageCache) Adjust(messageID string, emoji discordgo.Emoji, delta int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	msg, ok := c.messages[messageID]
	if ok {
		adjustReaction(msg, emoji, delta)
	}
	return ok
}

// Forget drops a message from the cache.
func (c *MessageCache) Forget(messageID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.messages, messageID)
}

// Len returns the number of cached messages.
func (c *MessageCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

// ReactionCount returns the count of emoji on msg, 0 when absent.
func ReactionCount(msg *discordgo.Message, emoji discordgo.Emoji) int {
	key := emoji.APIName()
	for _, r := range msg.Reactions {
		if r.Emoji != nil && r.Emoji.APIName() == key {
			return r.Count
		}
	}
	return 0
}

func adjustReaction(msg *discordgo.Message, emoji discordgo.Emoji, delta int) {
	key := emoji.APIName()
	for i, r := range msg.Reactions {
		if r.Emoji == nil || r.Emoji.APIName() != key {
			continue
		}
		r.Count += delta
		if r.Count <= 0 {
			msg.Reactions = append(msg.Reactions[:i], msg.Reactions[i+1:]...)
		}
		return
	}
	if delta > 0 {
		e := emoji
		msg.Reactions = append(msg.Reactions, &discordgo.MessageReactions{Count: delta, Emoji: &e})
	}
}

func cloneMessage(msg *discordgo.Message) *discordgo.Message {
	out := *msg
	out.Reactions = make([]*discordgo.MessageReactions, len(msg.Reactions))
	for i, r := range msg.Reactions {
		rc := *r
		out.Reactions[i] = &rc
	}
	return &out
}
