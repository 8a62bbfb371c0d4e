package discord

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

// Intents the bot needs: guild structure for the mirror, reactions for the starboard.
const Intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsGuildMessageReactions

// NewSession creates a gateway session. It does not connect; call Open.
func NewSession(cfg Config) (*discordgo.Session, error) {
	token := strings.TrimPrefix(cfg.Token, "Bot ")
	if token == "" {
		return nil, errors.New("discord token is required")
	}

	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}

	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 15
	}
	s.Client.Timeout = time.Duration(timeout) * time.Second
	s.Identify.Intents = Intents
	s.State.MaxMessageCount = cfg.StateMaxMessages
	s.StateEnabled = true

	return s, nil
}
