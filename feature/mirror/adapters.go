package mirror

import (
	"guildkeeper/core/store"
	"guildkeeper/feature/mirror/models"

	"github.com/bwmarrin/discordgo"
	"gorm.io/gorm"
)

func byGuild(guildID string) store.Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("guild_id = ?", guildID)
	}
}

// GuildAdapter reconciles the guild row itself. Its scope is the guild's own
// external id, so syncing one guild never touches another.
type GuildAdapter struct{}

func (GuildAdapter) Name() string { return "guild" }

func (GuildAdapter) Convert(guildID string, g *discordgo.Guild) (models.Guild, bool) {
	if g == nil || g.ID != guildID {
		return models.Guild{}, false
	}
	return models.Guild{
		Mirrored: models.Mirrored{ExternalID: g.ID},
		Name:     g.Name,
		OwnerID:  g.OwnerID,
		Icon:     g.Icon,
	}, true
}

func (GuildAdapter) Scope(guildID string) store.Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("external_id = ?", guildID)
	}
}

// CategoryAdapter reconciles channel categories.
type CategoryAdapter struct{}

func (CategoryAdapter) Name() string { return "category_channel" }

func (CategoryAdapter) Convert(guildID string, c *discordgo.Channel) (models.CategoryChannel, bool) {
	if c == nil || c.Type != discordgo.ChannelTypeGuildCategory {
		return models.CategoryChannel{}, false
	}
	return models.CategoryChannel{
		Mirrored: models.Mirrored{ExternalID: c.ID},
		GuildID:  guildID,
		Name:     c.Name,
		Position: c.Position,
	}, true
}

func (CategoryAdapter) Scope(guildID string) store.Scope { return byGuild(guildID) }

// TextChannelAdapter reconciles text and announcement channels.
type TextChannelAdapter struct{}

func (TextChannelAdapter) Name() string { return "text_channel" }

func (TextChannelAdapter) Convert(guildID string, c *discordgo.Channel) (models.TextChannel, bool) {
	if c == nil {
		return models.TextChannel{}, false
	}
	if c.Type != discordgo.ChannelTypeGuildText && c.Type != discordgo.ChannelTypeGuildNews {
		return models.TextChannel{}, false
	}
	var parent *string
	if c.ParentID != "" {
		p := c.ParentID
		parent = &p
	}
	return models.TextChannel{
		Mirrored: models.Mirrored{ExternalID: c.ID},
		GuildID:  guildID,
		ParentID: parent,
		Name:     c.Name,
		Topic:    c.Topic,
		Position: c.Position,
		NSFW:     c.NSFW,
	}, true
}

func (TextChannelAdapter) Scope(guildID string) store.Scope { return byGuild(guildID) }

// RoleAdapter reconciles roles, including @everyone.
type RoleAdapter struct{}

func (RoleAdapter) Name() string { return "role" }

func (RoleAdapter) Convert(guildID string, r *discordgo.Role) (models.Role, bool) {
	if r == nil {
		return models.Role{}, false
	}
	return models.Role{
		Mirrored:    models.Mirrored{ExternalID: r.ID},
		GuildID:     guildID,
		Name:        r.Name,
		Color:       r.Color,
		Position:    r.Position,
		Permissions: r.Permissions,
		Hoist:       r.Hoist,
		Mentionable: r.Mentionable,
		Managed:     r.Managed,
	}, true
}

func (RoleAdapter) Scope(guildID string) store.Scope { return byGuild(guildID) }
