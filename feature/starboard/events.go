package starboard

import (
	"context"
	"errors"

	"guildkeeper/core/logger"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// Handlers returns the discordgo event handlers to register on the session.
func (s *Service) Handlers() []any {
	return []any{s.onReactionAdd, s.onReactionRemove}
}

func (s *Service) onReactionAdd(_ *discordgo.Session, e *discordgo.MessageReactionAdd) {
	if e == nil || e.MessageReaction == nil {
		return
	}
	s.dispatch("reaction_add", addEventFrom(e), s.OnReactionAdded)
}

func (s *Service) onReactionRemove(_ *discordgo.Session, e *discordgo.MessageReactionRemove) {
	if e == nil || e.MessageReaction == nil {
		return
	}
	s.dispatch("reaction_remove", eventFrom(e.MessageReaction), s.OnReactionRemoved)
}

// addEventFrom carries the member sent with guild reactions so the user does
// not have to be looked up.
func addEventFrom(e *discordgo.MessageReactionAdd) ReactionEvent {
	ev := eventFrom(e.MessageReaction)
	if e.Member != nil && e.Member.User != nil {
		ev.User = e.Member.User
	}
	return ev
}

func eventFrom(r *discordgo.MessageReaction) ReactionEvent {
	return ReactionEvent{
		GuildID:   r.GuildID,
		ChannelID: r.ChannelID,
		UserID:    r.UserID,
		MessageID: r.MessageID,
		Emoji:     r.Emoji,
	}
}

// dispatch runs one event handler. Failures are logged against the guild and
// never escape, so one guild's trouble cannot affect another's.
func (s *Service) dispatch(kind string, ev ReactionEvent, fn func(context.Context, ReactionEvent) error) {
	l := logger.WithGuild(s.logger, ev.GuildID).With(
		zap.String("event", kind),
		zap.String("message_id", ev.MessageID),
	)
	defer func() {
		if r := recover(); r != nil {
			l.Error("Recovered from panic in reaction handler", zap.Any("panic", r))
		}
	}()

	err := fn(context.Background(), ev)
	if err == nil {
		return
	}
	var ce *ConfigError
	if errors.As(err, &ce) {
		l.Warn("Starboard configuration problem", zap.Error(err))
		return
	}
	l.Error("Reaction handling failed", zap.Error(err))
}
