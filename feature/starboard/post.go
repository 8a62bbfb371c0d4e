package starboard

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/dustin/go-humanize"
	"mvdan.cc/xurls"
)

const (
	postColor        = 0xffd700
	maxDescription   = 4096
	defaultStarGlyph = "⭐"
)

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}

// JumpLink is the URL that opens msg in the client.
func JumpLink(guildID, channelID, messageID string) string {
	return fmt.Sprintf("https://discord.com/channels/%s/%s/%s", guildID, channelID, messageID)
}

// BuildPost renders the highlight embed for msg.
func BuildPost(guildID string, channel *discordgo.Channel, msg *discordgo.Message, emoji discordgo.Emoji, count int) *discordgo.MessageEmbed {
	authorName := "N/A"
	authorIcon := ""
	if msg.Author != nil {
		authorName = msg.Author.Username
		authorIcon = msg.Author.AvatarURL("256")
	}

	glyph := emoji.Name
	if emoji.ID != "" || glyph == "" {
		// Custom emoji do not render in embed footers.
		glyph = defaultStarGlyph
	}

	content := msg.Content
	image := embedImage(msg)
	for _, a := range msg.Attachments {
		if image == "" && isImage(a.Filename) {
			image = a.URL
			continue
		}
		content += "\n" + a.URL
	}
	if image == "" {
		image = contentImage(msg.Content)
	}

	post := &discordgo.MessageEmbed{
		Author: &discordgo.MessageEmbedAuthor{
			Name:    fmt.Sprintf("@%s in #%s", authorName, channel.Name),
			IconURL: authorIcon,
		},
		Description: truncate(strings.TrimSpace(content), maxDescription),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Source", Value: fmt.Sprintf("[Jump to message](%s)", JumpLink(guildID, channel.ID, msg.ID))},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("%s %s | Message #%s", glyph, humanize.Comma(int64(count)), msg.ID),
		},
		Color: postColor,
	}
	if !msg.Timestamp.IsZero() {
		post.Timestamp = msg.Timestamp.Format(time.RFC3339)
	}
	if image != "" {
		post.Image = &discordgo.MessageEmbedImage{URL: image}
	}
	return post
}

func embedImage(msg *discordgo.Message) string {
	for _, e := range msg.Embeds {
		switch {
		case e.Image != nil && e.Image.URL != "":
			return e.Image.URL
		case e.Thumbnail != nil && e.Thumbnail.URL != "":
			return e.Thumbnail.URL
		}
	}
	return ""
}

func contentImage(content string) string {
	for _, u := range xurls.Strict.FindAllString(content, -1) {
		if isImage(u) {
			return u
		}
	}
	return ""
}

func isImage(name string) bool {
	ext := strings.ToLower(path.Ext(strings.SplitN(name, "?", 2)[0]))
	for _, e := range imageExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
