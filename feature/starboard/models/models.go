package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultMinLimit is the reaction floor of a newly registered board.
const DefaultMinLimit = 10

// Config routes reactions in a guild to a starboard channel. A nil TargetID is
// a wildcard that applies to every channel and member of the guild; otherwise
// it names one channel or one message author.
//
// TargetKey mirrors TargetID with "" for wildcards so that the unique index
// also covers wildcard configs; BeforeSave maintains it.
type Config struct {
	ID                 string    `gorm:"column:id;primaryKey;size:36" json:"id"`
	GuildID            string    `gorm:"column:guild_id;size:32;not null;uniqueIndex:idx_starboard_config_tuple,priority:1" json:"guild_id"`
	TargetID           *string   `gorm:"column:target_id;size:32;index" json:"target_id"`
	TargetKey          string    `gorm:"column:target_key;size:32;not null;default:'';uniqueIndex:idx_starboard_config_tuple,priority:2" json:"-"`
	StarboardChannelID string    `gorm:"column:starboard_channel_id;size:32;not null;uniqueIndex:idx_starboard_config_tuple,priority:3" json:"starboard_channel_id"`
	MinLimit           int       `gorm:"column:min_limit;not null;default:10" json:"min_limit"`
	CreatedAt          time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Config) TableName() string {
	return "starboard_config"
}

func (c *Config) BeforeSave(tx *gorm.DB) error {
	c.TargetKey = ""
	if c.TargetID != nil {
		c.TargetKey = *c.TargetID
	}
	return nil
}

func (c *Config) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

func (c Config) PrimaryKey() string {
	return c.ID
}

// IsWildcard reports whether the config applies to the whole guild.
func (c Config) IsWildcard() bool {
	return c.TargetID == nil
}

// Highlight records that a message was posted to a board.
type Highlight struct {
	ID                 string    `gorm:"column:id;primaryKey;size:36" json:"id"`
	GuildID            string    `gorm:"column:guild_id;size:32;index" json:"guild_id"`
	StarboardChannelID string    `gorm:"column:starboard_channel_id;size:32;not null;uniqueIndex:idx_starboard_highlight,priority:1" json:"starboard_channel_id"`
	MessageID          string    `gorm:"column:message_id;size:32;not null;uniqueIndex:idx_starboard_highlight,priority:2" json:"message_id"`
	PostID             string    `gorm:"column:post_id;size:32" json:"post_id"`
	Reactions          int       `gorm:"column:reactions" json:"reactions"`
	CreatedAt          time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Highlight) TableName() string {
	return "starboard_highlights"
}

func (h *Highlight) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	return nil
}

func (h Highlight) PrimaryKey() string {
	return h.ID
}

// All lists the starboard models for migrations.
func All() []any {
	return []any{&Config{}, &Highlight{}}
}
