package starboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"guildkeeper/core/discord"
	"guildkeeper/core/keylock"
	"guildkeeper/core/logger"
	"guildkeeper/core/store"
	mirrormodels "guildkeeper/feature/mirror/models"
	"guildkeeper/feature/starboard/models"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ReactionEvent is a reaction added to or removed from a message.
type ReactionEvent struct {
	GuildID   string
	ChannelID string
	UserID    string
	MessageID string
	Emoji     discordgo.Emoji

	// User is the reacting user when the event carries it. Nil means it is
	// looked up.
	User *discordgo.User
}

// MessageRecorder mirrors promoted messages. mirror.Service implements it.
type MessageRecorder interface {
	RecordMessage(ctx context.Context, msg mirrormodels.Message) error
}

// RedirectSummary describes the outcome of a redirect.
type RedirectSummary struct {
	BoardID string   `json:"board_id"`
	Removed int      `json:"removed"`
	Targets []string `json:"targets"`
}

const (
	boardAllow = discordgo.PermissionViewChannel |
		discordgo.PermissionSendMessages |
		discordgo.PermissionManageMessages |
		discordgo.PermissionEmbedLinks |
		discordgo.PermissionReadMessageHistory
	everyoneAllow = discordgo.PermissionViewChannel | discordgo.PermissionReadMessageHistory
	everyoneDeny  = discordgo.PermissionSendMessages
)

// Service manages starboards and turns reaction events into highlight posts.
type Service struct {
	repo     *Repository
	platform discord.Platform
	locks    *keylock.Manager
	cache    *MessageCache
	messages MessageRecorder
	logger   *zap.Logger

	ignoredMu sync.RWMutex
	ignored   map[string]struct{}
}

// NewService creates a new starboard service. messages may be nil.
func NewService(db *gorm.DB, platform discord.Platform, locks *keylock.Manager, messages MessageRecorder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:     NewRepository(db),
		platform: platform,
		locks:    locks,
		cache:    NewMessageCache(platform),
		messages: messages,
		logger:   logger,
		ignored:  make(map[string]struct{}),
	}
}

// Repository exposes the config and highlight store.
func (s *Service) Repository() *Repository {
	return s.repo
}

// Cache exposes the message cache.
func (s *Service) Cache() *MessageCache {
	return s.cache
}

// Ignore excludes channels from promotion.
func (s *Service) Ignore(channelIDs ...string) {
	s.ignoredMu.Lock()
	defer s.ignoredMu.Unlock()
	for _, id := range channelIDs {
		s.ignored[id] = struct{}{}
	}
}

func (s *Service) isIgnored(channelID string) bool {
	s.ignoredMu.RLock()
	defer s.ignoredMu.RUnlock()
	_, ok := s.ignored[channelID]
	return ok
}

// CreateBoard finds or creates a text channel called name and registers it as
// a wildcard board. When registration fails a channel created here is deleted again.
func (s *Service) CreateBoard(ctx context.Context, guildID, name string) (*discordgo.Channel, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ConfigError{Msg: "board name is required"}
	}
	l := logger.WithGuild(s.logger, guildID)

	channels, err := s.platform.GuildChannels(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}

	var board *discordgo.Channel
	for _, c := range channels {
		if c.Type == discordgo.ChannelTypeGuildText && c.Name == name {
			board = c
			break
		}
	}

	created := false
	if board == nil {
		board, err = s.platform.CreateChannel(ctx, guildID, discordgo.GuildChannelCreateData{
			Name: name,
			Type: discordgo.ChannelTypeGuildText,
			PermissionOverwrites: []*discordgo.PermissionOverwrite{
				{ID: s.platform.BotUserID(), Type: discordgo.PermissionOverwriteTypeMember, Allow: boardAllow},
				{ID: guildID, Type: discordgo.PermissionOverwriteTypeRole, Allow: everyoneAllow, Deny: everyoneDeny},
			},
		})
		if err != nil {
			if discord.IsForbidden(err) {
				return nil, &ConfigError{Msg: "missing permission to create the board channel", Err: err}
			}
			if discord.IsBadRequest(err) {
				return nil, &ConfigError{Msg: fmt.Sprintf("invalid board channel name %q", name), Err: err}
			}
			return nil, &ConfigError{Msg: "failed to create the board channel", Err: err}
		}
		created = true
	}

	_, err = s.repo.CreateConfig(ctx, models.Config{
		GuildID:            guildID,
		StarboardChannelID: board.ID,
		MinLimit:           models.DefaultMinLimit,
	})
	if err != nil {
		if created {
			if derr := s.platform.DeleteChannel(ctx, board.ID); derr != nil {
				l.Error("Failed to delete board channel after registration failure",
					zap.String("channel_id", board.ID), zap.Error(derr))
			}
		}
		if store.IsConflict(err) {
			return nil, &ConfigError{Msg: fmt.Sprintf("#%s is already a starboard", board.Name), Err: err}
		}
		return nil, &ConfigError{Msg: "failed to register the board", Err: err}
	}

	l.Info("Starboard created", zap.String("channel_id", board.ID), zap.Bool("new_channel", created))
	return board, nil
}

// Redirect replaces every config of boardID with one config per target.
func (s *Service) Redirect(ctx context.Context, guildID string, targets []string, boardID string) (RedirectSummary, error) {
	unique := make([]string, 0, len(targets))
	seen := make(map[string]struct{}, len(targets))
	for _, t := range targets {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		unique = append(unique, t)
	}
	if len(unique) == 0 {
		return RedirectSummary{}, &ConfigError{Msg: "at least one channel or member is required"}
	}

	removed, created, err := s.repo.Replace(ctx, guildID, boardID, unique)
	if err != nil {
		if isNoBoard(err) {
			return RedirectSummary{}, &ConfigError{Msg: fmt.Sprintf("<#%s> is not a starboard", boardID)}
		}
		return RedirectSummary{}, err
	}

	summary := RedirectSummary{BoardID: boardID, Removed: removed}
	for _, c := range created {
		summary.Targets = append(summary.Targets, *c.TargetID)
	}
	logger.WithGuild(s.logger, guildID).Info("Starboard redirected",
		zap.String("channel_id", boardID), zap.Strings("targets", summary.Targets))
	return summary, nil
}

// SetMinLimit changes the reaction floor of a board.
func (s *Service) SetMinLimit(ctx context.Context, guildID, boardID string, limit int) error {
	if limit < 1 {
		return &ConfigError{Msg: "the minimum must be at least 1"}
	}
	n, err := s.repo.SetMinLimit(ctx, guildID, boardID, limit)
	if err != nil {
		return err
	}
	if n == 0 {
		return &ConfigError{Msg: fmt.Sprintf("<#%s> is not a starboard", boardID)}
	}
	return nil
}

// Configs lists the configs of a guild.
func (s *Service) Configs(ctx context.Context, guildID string) ([]models.Config, error) {
	return s.repo.ForGuild(ctx, guildID)
}

type resolved struct {
	channel *discordgo.Channel
	message *discordgo.Message
	count   int
}

// resolve looks up everything an event refers to. Objects that vanished, bot
// users and reactions that are gone all yield ErrResolutionMiss.
func (s *Service) resolve(ctx context.Context, ev ReactionEvent) (*resolved, error) {
	if ev.GuildID == "" {
		return nil, ErrResolutionMiss
	}
	if _, err := s.platform.Guild(ctx, ev.GuildID); err != nil {
		return nil, missOr(err)
	}
	channel, err := s.platform.Channel(ctx, ev.ChannelID)
	if err != nil {
		return nil, missOr(err)
	}
	user := ev.User
	if user == nil {
		if user, err = s.platform.User(ctx, ev.UserID); err != nil {
			return nil, missOr(err)
		}
	}
	if user.Bot {
		return nil, ErrResolutionMiss
	}
	msg, err := s.cache.Resolve(ctx, ev.ChannelID, ev.MessageID)
	if err != nil {
		return nil, missOr(err)
	}
	count := ReactionCount(msg, ev.Emoji)
	if count == 0 {
		return nil, ErrResolutionMiss
	}
	return &resolved{channel: channel, message: msg, count: count}, nil
}

func missOr(err error) error {
	if discord.IsNotFound(err) {
		return ErrResolutionMiss
	}
	return err
}

// OnReactionAdded evaluates a new reaction and posts a highlight to every
// board whose config it satisfies. Handling is serialised per guild. The
// cached count is updated for every event, including ones resolve drops.
func (s *Service) OnReactionAdded(ctx context.Context, ev ReactionEvent) error {
	s.cache.Adjust(ev.MessageID, ev.Emoji, 1)

	r, err := s.resolve(ctx, ev)
	if errors.Is(err, ErrResolutionMiss) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to resolve reaction: %w", err)
	}

	unlock, err := s.locks.Lock(ctx, ev.GuildID)
	if err != nil {
		return err
	}
	defer unlock()

	authorID := ""
	if r.message.Author != nil {
		authorID = r.message.Author.ID
	}
	configs, err := s.repo.Matching(ctx, ev.GuildID, r.channel.ID, authorID)
	if err != nil {
		return err
	}
	if len(configs) == 0 {
		return &ConfigError{Msg: "no starboard is configured for this channel"}
	}

	memberCount, err := s.platform.MemberCount(ctx, ev.GuildID)
	if err != nil {
		return fmt.Errorf("failed to get member count: %w", err)
	}

	var errs []error
	for _, cfg := range configs {
		if err := s.evaluate(ctx, ev, r, cfg, memberCount); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Service) evaluate(ctx context.Context, ev ReactionEvent, r *resolved, cfg models.Config, memberCount int) error {
	board := cfg.StarboardChannelID
	if r.channel.ID == board ||
		r.channel.Type == discordgo.ChannelTypeGuildPrivateThread ||
		s.isIgnored(r.channel.ID) {
		return nil
	}
	if !ShouldPromote(r.count, memberCount, ev.Emoji.Name, cfg.MinLimit) {
		return nil
	}

	done, err := s.repo.Highlighted(ctx, board, r.message.ID)
	if err != nil {
		return err
	}
	if done {
		return nil
	}

	post := BuildPost(ev.GuildID, r.channel, r.message, ev.Emoji, r.count)
	sent, err := s.platform.SendEmbed(ctx, board, post)
	if err != nil {
		if discord.IsForbidden(err) || discord.IsNotFound(err) {
			return &ConfigError{Msg: fmt.Sprintf("cannot post to starboard <#%s>", board), Err: err}
		}
		return fmt.Errorf("failed to post highlight: %w", err)
	}

	err = s.repo.RecordHighlight(ctx, models.Highlight{
		GuildID:            ev.GuildID,
		StarboardChannelID: board,
		MessageID:          r.message.ID,
		PostID:             sent.ID,
		Reactions:          r.count,
	})
	if err != nil && !store.IsConflict(err) {
		return fmt.Errorf("failed to record highlight: %w", err)
	}

	if s.messages != nil {
		msg := mirrormodels.Message{
			Mirrored:  mirrormodels.Mirrored{ExternalID: r.message.ID},
			GuildID:   ev.GuildID,
			ChannelID: r.channel.ID,
			Content:   r.message.Content,
		}
		if r.message.Author != nil {
			msg.AuthorID = r.message.Author.ID
		}
		if err := s.messages.RecordMessage(ctx, msg); err != nil {
			logger.WithGuild(s.logger, ev.GuildID).Warn("Failed to mirror promoted message",
				zap.String("message_id", r.message.ID), zap.Error(err))
		}
	}

	logger.WithGuild(s.logger, ev.GuildID).Info("Message promoted",
		zap.String("message_id", r.message.ID),
		zap.String("board_id", board),
		zap.Int("reactions", r.count))
	return nil
}

// OnReactionRemoved keeps the cached count of a message in line. Highlights
// already posted stay.
func (s *Service) OnReactionRemoved(ctx context.Context, ev ReactionEvent) error {
	s.cache.Adjust(ev.MessageID, ev.Emoji, -1)
	return nil
}
