package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Mirrored holds the columns shared by every mirrored kind.
type Mirrored struct {
	// ID is assigned by the store on insert.
	ID string `gorm:"column:id;primaryKey;size:36" json:"id"`
	// ExternalID is the Discord snowflake and the identity key for diffing.
	ExternalID string     `gorm:"column:external_id;size:32;uniqueIndex;not null" json:"external_id"`
	CreatedAt  time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt  *time.Time `gorm:"column:updated_at;autoUpdateTime:false" json:"updated_at,omitempty"`
	DeletedAt  *time.Time `gorm:"column:deleted_at;index" json:"deleted_at,omitempty"`
}

// BeforeCreate assigns a uuid primary key.
func (m *Mirrored) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

func (m Mirrored) PrimaryKey() string {
	return m.ID
}

func (m Mirrored) Identity() string {
	return m.ExternalID
}

// IsActive reports whether the row was not soft-deleted.
func (m Mirrored) IsActive() bool {
	return m.DeletedAt == nil
}

// Guild mirrors a Discord guild.
type Guild struct {
	Mirrored
	Name    string `gorm:"column:name;size:100" json:"name"`
	OwnerID string `gorm:"column:owner_id;size:32" json:"owner_id"`
	Icon    string `gorm:"column:icon;size:64" json:"icon"`
}

func (Guild) TableName() string {
	return "guilds"
}

func (g Guild) Matches(o Guild) bool {
	return g.ExternalID == o.ExternalID &&
		g.Name == o.Name &&
		g.OwnerID == o.OwnerID &&
		g.Icon == o.Icon
}

func (g Guild) WithPrimaryKey(id string) Guild {
	g.ID = id
	return g
}

// CategoryChannel mirrors a channel category.
type CategoryChannel struct {
	Mirrored
	GuildID  string `gorm:"column:guild_id;size:32;index" json:"guild_id"`
	Name     string `gorm:"column:name;size:100" json:"name"`
	Position int    `gorm:"column:position" json:"position"`
}

func (CategoryChannel) TableName() string {
	return "category_channels"
}

func (c CategoryChannel) Matches(o CategoryChannel) bool {
	return c.ExternalID == o.ExternalID &&
		c.GuildID == o.GuildID &&
		c.Name == o.Name &&
		c.Position == o.Position
}

func (c CategoryChannel) WithPrimaryKey(id string) CategoryChannel {
	c.ID = id
	return c
}

// TextChannel mirrors a text or announcement channel.
type TextChannel struct {
	Mirrored
	GuildID string `gorm:"column:guild_id;size:32;index" json:"guild_id"`
	// ParentID is the external id of the category, nil at the top level.
	ParentID *string `gorm:"column:parent_id;size:32" json:"parent_id,omitempty"`
	Name     string  `gorm:"column:name;size:100" json:"name"`
	Topic    string  `gorm:"column:topic;type:text" json:"topic"`
	Position int     `gorm:"column:position" json:"position"`
	NSFW     bool    `gorm:"column:nsfw" json:"nsfw"`
}

func (TextChannel) TableName() string {
	return "text_channels"
}

func (c TextChannel) Matches(o TextChannel) bool {
	return c.ExternalID == o.ExternalID &&
		c.GuildID == o.GuildID &&
		equalRef(c.ParentID, o.ParentID) &&
		c.Name == o.Name &&
		c.Topic == o.Topic &&
		c.Position == o.Position &&
		c.NSFW == o.NSFW
}

func (c TextChannel) WithPrimaryKey(id string) TextChannel {
	c.ID = id
	return c
}

// Role mirrors a guild role.
type Role struct {
	Mirrored
	GuildID     string `gorm:"column:guild_id;size:32;index" json:"guild_id"`
	Name        string `gorm:"column:name;size:100" json:"name"`
	Color       int    `gorm:"column:color" json:"color"`
	Position    int    `gorm:"column:position" json:"position"`
	Permissions int64  `gorm:"column:permissions" json:"permissions"`
	Hoist       bool   `gorm:"column:hoist" json:"hoist"`
	Mentionable bool   `gorm:"column:mentionable" json:"mentionable"`
	Managed     bool   `gorm:"column:managed" json:"managed"`
}

func (Role) TableName() string {
	return "roles"
}

func (r Role) Matches(o Role) bool {
	return r.ExternalID == o.ExternalID &&
		r.GuildID == o.GuildID &&
		r.Name == o.Name &&
		r.Color == o.Color &&
		r.Position == o.Position &&
		r.Permissions == o.Permissions &&
		r.Hoist == o.Hoist &&
		r.Mentionable == o.Mentionable &&
		r.Managed == o.Managed
}

func (r Role) WithPrimaryKey(id string) Role {
	r.ID = id
	return r
}

// Message mirrors a message that was promoted to a starboard.
// It is written by the starboard, never by a reconciliation run.
type Message struct {
	Mirrored
	GuildID   string `gorm:"column:guild_id;size:32;index" json:"guild_id"`
	ChannelID string `gorm:"column:channel_id;size:32;index" json:"channel_id"`
	AuthorID  string `gorm:"column:author_id;size:32" json:"author_id"`
	Content   string `gorm:"column:content;type:text" json:"content"`
}

func (Message) TableName() string {
	return "messages"
}

func (m Message) Matches(o Message) bool {
	return m.ExternalID == o.ExternalID &&
		m.GuildID == o.GuildID &&
		m.ChannelID == o.ChannelID &&
		m.AuthorID == o.AuthorID &&
		m.Content == o.Content
}

func (m Message) WithPrimaryKey(id string) Message {
	m.ID = id
	return m
}

// All lists every mirrored model for migrations.
func All() []any {
	return []any{&Guild{}, &CategoryChannel{}, &TextChannel{}, &Role{}, &Message{}}
}

func equalRef(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
