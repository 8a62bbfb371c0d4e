package cmd

import (
	"context"
	"fmt"

	"guildkeeper/core/config"
	"guildkeeper/core/database"
	"guildkeeper/core/discord"
	"guildkeeper/core/logger"
	"guildkeeper/core/storage"
	"guildkeeper/feature/mirror"
	mirrormodels "guildkeeper/feature/mirror/models"
	starboardmodels "guildkeeper/feature/starboard/models"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// runtime is the wiring shared by every command.
type runtime struct {
	cfg *config.Config
	log *zap.Logger
	db  *gorm.DB
}

// newRuntime loads configuration, builds the logger and opens the database.
func newRuntime() (*runtime, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.Database.AutoMigrate {
		models := append(mirrormodels.All(), starboardmodels.All()...)
		if err := database.Migrate(db, models...); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	return &runtime{cfg: cfg, log: l, db: db}, nil
}

// session opens a REST capable session. The gateway is not connected.
func (r *runtime) session() (*discordgo.Session, *discord.SessionPlatform, error) {
	s, err := discord.NewSession(r.cfg.Discord)
	if err != nil {
		return nil, nil, err
	}
	return s, discord.NewPlatform(s), nil
}

// archive returns the report archive, or nil when storage is disabled.
func (r *runtime) archive(ctx context.Context) (*storage.Archive, error) {
	if !r.cfg.Storage.Enabled {
		return nil, nil
	}
	client, err := storage.NewClient(r.cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	a := storage.NewArchive(client, r.cfg.Storage.Bucket)
	if err := a.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

// mirrorService builds the mirror service. A nil archive is passed as a nil
// interface so the service skips archiving.
func (r *runtime) mirrorService(platform discord.Platform, a *storage.Archive) *mirror.Service {
	var archiver mirror.Archiver
	if a != nil {
		archiver = a
	}
	return mirror.NewService(r.db, platform, archiver, r.cfg.Reconcile, r.log)
}
