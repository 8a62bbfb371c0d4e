package starboard

import (
	"context"
	"errors"
	"fmt"

	"guildkeeper/core/store"
	"guildkeeper/feature/starboard/models"

	"gorm.io/gorm"
)

// Repository persists starboard configs and highlights.
type Repository struct {
	db         *gorm.DB
	configs    *store.Gorm[models.Config]
	highlights *store.Gorm[models.Highlight]
}

// NewRepository creates a repository over db.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:         db,
		configs:    store.NewGorm[models.Config](db),
		highlights: store.NewGorm[models.Highlight](db),
	}
}

func inGuild(guildID string) store.Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("guild_id = ?", guildID)
	}
}

func onBoard(boardID string) store.Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("starboard_channel_id = ?", boardID)
	}
}

func forTarget(targetID *string) store.Scope {
	return func(db *gorm.DB) *gorm.DB {
		if targetID == nil {
			return db.Where("target_id IS NULL")
		}
		return db.Where("target_id = ?", *targetID)
	}
}

func ordered(db *gorm.DB) *gorm.DB {
	return db.Order("created_at, id")
}

// CreateConfig inserts cfg. An identical (guild, target, board) tuple fails
// with a store conflict. The lookup gives a clean error for the common case;
// concurrent inserts are rejected by idx_starboard_config_tuple.
func (r *Repository) CreateConfig(ctx context.Context, cfg models.Config) (models.Config, error) {
	var created models.Config
	err := store.Transaction(ctx, r.db, func(tx *gorm.DB) error {
		var err error
		created, err = r.insertConfig(ctx, r.configs.WithTx(tx), cfg)
		return err
	})
	return created, err
}

func (r *Repository) insertConfig(ctx context.Context, configs *store.Gorm[models.Config], cfg models.Config) (models.Config, error) {
	existing, err := configs.FindAll(ctx, inGuild(cfg.GuildID), onBoard(cfg.StarboardChannelID), forTarget(cfg.TargetID))
	if err != nil {
		return models.Config{}, err
	}
	if len(existing) > 0 {
		return models.Config{}, store.Conflict("create config", "starboard config already exists")
	}
	return configs.Create(ctx, cfg)
}

// Matching returns the configs that apply to a message posted in channelID by
// authorID: the guild's wildcard configs plus those targeting either id.
func (r *Repository) Matching(ctx context.Context, guildID, channelID, authorID string) ([]models.Config, error) {
	return r.configs.FindAll(ctx, inGuild(guildID), func(db *gorm.DB) *gorm.DB {
		return db.Where("(target_id IN ? OR target_id IS NULL)", []string{channelID, authorID})
	}, ordered)
}

// ForGuild lists every config of a guild.
func (r *Repository) ForGuild(ctx context.Context, guildID string) ([]models.Config, error) {
	return r.configs.FindAll(ctx, inGuild(guildID), ordered)
}

// ForBoard lists the configs pointing at one board.
func (r *Repository) ForBoard(ctx context.Context, guildID, boardID string) ([]models.Config, error) {
	return r.configs.FindAll(ctx, inGuild(guildID), onBoard(boardID), ordered)
}

// Replace deletes every config of the board and inserts one per target, in a
// single transaction. It fails with errNoBoard when the board had no config.
func (r *Repository) Replace(ctx context.Context, guildID, boardID string, targets []string) (removed int, created []models.Config, err error) {
	err = store.Transaction(ctx, r.db, func(tx *gorm.DB) error {
		res := tx.WithContext(ctx).Scopes(inGuild(guildID), onBoard(boardID)).Delete(&models.Config{})
		if res.Error != nil {
			return fmt.Errorf("failed to clear board: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return errNoBoard
		}
		removed = int(res.RowsAffected)

		configs := r.configs.WithTx(tx)
		for _, target := range targets {
			cfg, err := r.insertConfig(ctx, configs, models.Config{
				GuildID:            guildID,
				TargetID:           &target,
				StarboardChannelID: boardID,
				MinLimit:           models.DefaultMinLimit,
			})
			if err != nil {
				return err
			}
			created = append(created, cfg)
		}
		return nil
	})
	if err != nil {
		return 0, nil, err
	}
	return removed, created, nil
}

// SetMinLimit updates the floor of every config of the board.
func (r *Repository) SetMinLimit(ctx context.Context, guildID, boardID string, limit int) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Config{}).
		Scopes(inGuild(guildID), onBoard(boardID)).
		Update("min_limit", limit)
	if res.Error != nil {
		return 0, &store.Error{Op: "set min limit", Kind: store.KindIO, Err: res.Error}
	}
	return res.RowsAffected, nil
}

// Highlighted reports whether messageID was already posted to boardID.
func (r *Repository) Highlighted(ctx context.Context, boardID, messageID string) (bool, error) {
	_, err := r.highlights.FindBy(ctx, "message_id", messageID, onBoard(boardID))
	if store.IsNotFound(err) {
		return false, nil
	}
	return err == nil, err
}

// RecordHighlight stores a posted highlight. A concurrent duplicate is a conflict.
func (r *Repository) RecordHighlight(ctx context.Context, h models.Highlight) error {
	_, err := r.highlights.Create(ctx, h)
	return err
}

// Highlights lists the highlights of a guild, newest first.
func (r *Repository) Highlights(ctx context.Context, guildID string) ([]models.Highlight, error) {
	return r.highlights.FindAll(ctx, inGuild(guildID), func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at DESC")
	})
}

func isNoBoard(err error) bool {
	return errors.Is(err, errNoBoard)
}
