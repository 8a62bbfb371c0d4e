package mirror

import (
	"guildkeeper/core/store"
	"guildkeeper/feature/mirror/models"

	"gorm.io/gorm"
)

// Repositories groups the soft-deleting repository of every mirrored kind.
type Repositories struct {
	Guilds       *store.SoftDeleting[models.Guild]
	Categories   *store.SoftDeleting[models.CategoryChannel]
	TextChannels *store.SoftDeleting[models.TextChannel]
	Roles        *store.SoftDeleting[models.Role]
	Messages     *store.SoftDeleting[models.Message]
}

// NewRepositories builds the repositories over db.
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Guilds:       newRepo[models.Guild](db),
		Categories:   newRepo[models.CategoryChannel](db),
		TextChannels: newRepo[models.TextChannel](db),
		Roles:        newRepo[models.Role](db),
		Messages:     newRepo[models.Message](db),
	}
}

func newRepo[T store.Identified](db *gorm.DB) *store.SoftDeleting[T] {
	return store.NewSoftDeleting(store.NewGorm[T](db), "external_id")
}
