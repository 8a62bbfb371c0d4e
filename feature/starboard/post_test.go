package starboard_test

import (
	"strings"
	"testing"
	"time"

	"guildkeeper/feature/starboard"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJumpLink(t *testing.T) {
	assert.Equal(t, "https://discord.com/channels/1/2/3", starboard.JumpLink("1", "2", "3"))
}

func TestBuildPost(t *testing.T) {
	channel := &discordgo.Channel{ID: "20", Name: "general"}
	msg := message("m1", 1234)
	msg.Timestamp = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	post := starboard.BuildPost("1", channel, msg, star, 1234)

	assert.Equal(t, "@alice in #general", post.Author.Name)
	assert.Equal(t, "hello", post.Description)
	assert.Equal(t, "⭐ 1,234 | Message #m1", post.Footer.Text)
	assert.Equal(t, "2024-01-02T03:04:05Z", post.Timestamp)
	require.Len(t, post.Fields, 1)
	assert.Contains(t, post.Fields[0].Value, "https://discord.com/channels/1/20/m1")
	assert.Nil(t, post.Image)
}

func TestBuildPost_Images(t *testing.T) {
	channel := &discordgo.Channel{ID: "20", Name: "general"}

	tests := []struct {
		name  string
		msg   func() *discordgo.Message
		image string
		desc  string
	}{
		{
			name: "embed image wins",
			msg: func() *discordgo.Message {
				m := message("m1", 1)
				m.Embeds = []*discordgo.MessageEmbed{{Image: &discordgo.MessageEmbedImage{URL: "https://e/x.png"}}}
				m.Attachments = []*discordgo.MessageAttachment{{Filename: "a.png", URL: "https://a/a.png"}}
				return m
			},
			image: "https://e/x.png",
			desc:  "hello\nhttps://a/a.png",
		},
		{
			name: "image attachment",
			msg: func() *discordgo.Message {
				m := message("m1", 1)
				m.Attachments = []*discordgo.MessageAttachment{
					{Filename: "notes.txt", URL: "https://a/notes.txt"},
					{Filename: "cat.JPG", URL: "https://a/cat.JPG"},
				}
				return m
			},
			image: "https://a/cat.JPG",
			desc:  "hello\nhttps://a/notes.txt",
		},
		{
			name: "link in content",
			msg: func() *discordgo.Message {
				m := message("m1", 1)
				m.Content = "look https://example.com/dog.gif?size=large"
				return m
			},
			image: "https://example.com/dog.gif?size=large",
			desc:  "look https://example.com/dog.gif?size=large",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			post := starboard.BuildPost("1", channel, tt.msg(), star, 1)
			require.NotNil(t, post.Image)
			assert.Equal(t, tt.image, post.Image.URL)
			assert.Equal(t, tt.desc, post.Description)
		})
	}
}

func TestBuildPost_CustomEmojiAndLongContent(t *testing.T) {
	msg := message("m1", 1)
	msg.Author = nil
	msg.Content = strings.Repeat("a", 5000)

	post := starboard.BuildPost("1", &discordgo.Channel{ID: "20", Name: "general"}, msg, discordgo.Emoji{ID: "5", Name: "party"}, 12)

	assert.Equal(t, "@N/A in #general", post.Author.Name)
	assert.True(t, strings.HasPrefix(post.Footer.Text, "⭐ 12 |"))
	assert.Len(t, []rune(post.Description), 4096)
}
