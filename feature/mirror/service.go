package mirror

import (
	"context"
	"errors"
	"fmt"
	"time"

	"guildkeeper/core/discord"
	"guildkeeper/core/logger"
	"guildkeeper/core/reconcile"
	"guildkeeper/core/store"
	"guildkeeper/feature/mirror/models"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Archiver stores sync reports. storage.Archive implements it.
type Archiver interface {
	Put(ctx context.Context, prefix string, v any) (string, error)
	List(ctx context.Context, prefix string) ([]string, error)
}

// Report is the outcome of a sync of every kind for one guild.
type Report struct {
	GuildID    string             `json:"guild_id"`
	DryRun     bool               `json:"dry_run"`
	StartedAt  time.Time          `json:"started_at"`
	FinishedAt time.Time          `json:"finished_at"`
	Results    []reconcile.Result `json:"results"`
	Errors     []string           `json:"errors,omitempty"`
	ArchiveKey string             `json:"archive_key,omitempty"`
}

// PurgeResult counts the rows hard deleted for one kind.
type PurgeResult struct {
	Kind    string `json:"kind"`
	Removed int    `json:"removed"`
}

// Service runs mirror reconciliation for guilds.
type Service struct {
	repos    *Repositories
	platform discord.Platform
	archive  Archiver
	logger   *zap.Logger
	now      func() time.Time

	guilds     *reconcile.Engine[models.Guild, *discordgo.Guild]
	categories *reconcile.Engine[models.CategoryChannel, *discordgo.Channel]
	texts      *reconcile.Engine[models.TextChannel, *discordgo.Channel]
	roles      *reconcile.Engine[models.Role, *discordgo.Role]
}

// NewService creates a new mirror service. archive may be nil.
func NewService(db *gorm.DB, platform discord.Platform, archive Archiver, cfg reconcile.Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	repos := NewRepositories(db)
	return &Service{
		repos:      repos,
		platform:   platform,
		archive:    archive,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
		guilds:     reconcile.NewEngine[models.Guild, *discordgo.Guild](GuildAdapter{}, repos.Guilds, cfg, logger),
		categories: reconcile.NewEngine[models.CategoryChannel, *discordgo.Channel](CategoryAdapter{}, repos.Categories, cfg, logger),
		texts:      reconcile.NewEngine[models.TextChannel, *discordgo.Channel](TextChannelAdapter{}, repos.TextChannels, cfg, logger),
		roles:      reconcile.NewEngine[models.Role, *discordgo.Role](RoleAdapter{}, repos.Roles, cfg, logger),
	}
}

// Repositories exposes the underlying repositories.
func (s *Service) Repositories() *Repositories {
	return s.repos
}

// RunSync reconciles the guild, its categories, text channels and roles
// against a fresh live snapshot. A failing kind does not stop the others;
// all failures are joined into the returned error.
func (s *Service) RunSync(ctx context.Context, guildID string, opts reconcile.Options) (*Report, error) {
	l := logger.WithGuild(s.logger, guildID)

	snapshot, err := s.platform.Snapshot(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch live snapshot: %w", err)
	}

	report := &Report{GuildID: guildID, DryRun: opts.DryRun, StartedAt: s.now()}

	steps := []func() (reconcile.Result, error){
		func() (reconcile.Result, error) {
			return s.guilds.Sync(ctx, guildID, []*discordgo.Guild{snapshot.Guild}, opts)
		},
		func() (reconcile.Result, error) {
			return s.categories.Sync(ctx, guildID, snapshot.Channels, opts)
		},
		func() (reconcile.Result, error) {
			return s.texts.Sync(ctx, guildID, snapshot.Channels, opts)
		},
		func() (reconcile.Result, error) {
			return s.roles.Sync(ctx, guildID, snapshot.Roles, opts)
		},
	}

	var errs []error
	for _, step := range steps {
		result, err := step()
		report.Results = append(report.Results, result)
		if err != nil {
			errs = append(errs, err)
			report.Errors = append(report.Errors, err.Error())
		}
	}
	report.FinishedAt = s.now()

	if s.archive != nil && !opts.DryRun {
		key, err := s.archive.Put(ctx, "sync/"+guildID, report)
		if err != nil {
			l.Warn("Failed to archive sync report", zap.Error(err))
		} else {
			report.ArchiveKey = key
		}
	}

	return report, errors.Join(errs...)
}

// Reports lists the archived sync reports of a guild, oldest first.
func (s *Service) Reports(ctx context.Context, guildID string) ([]string, error) {
	if s.archive == nil {
		return []string{}, nil
	}
	return s.archive.List(ctx, "sync/"+guildID+"/")
}

// RecordMessage mirrors a message, restoring it if it was soft deleted.
func (s *Service) RecordMessage(ctx context.Context, msg models.Message) error {
	_, err := s.repos.Messages.CreateOrRestore(ctx, msg)
	return err
}

// Purge permanently removes rows that were soft deleted more than olderThan ago.
func (s *Service) Purge(ctx context.Context, olderThan time.Duration) ([]PurgeResult, error) {
	cutoff := s.now().Add(-olderThan)

	purges := []struct {
		kind string
		run  func() (int, error)
	}{
		{"guild", func() (int, error) { return purgeKind(ctx, s.repos.Guilds, cutoff) }},
		{"category_channel", func() (int, error) { return purgeKind(ctx, s.repos.Categories, cutoff) }},
		{"text_channel", func() (int, error) { return purgeKind(ctx, s.repos.TextChannels, cutoff) }},
		{"role", func() (int, error) { return purgeKind(ctx, s.repos.Roles, cutoff) }},
		{"message", func() (int, error) { return purgeKind(ctx, s.repos.Messages, cutoff) }},
	}

	results := make([]PurgeResult, 0, len(purges))
	for _, p := range purges {
		n, err := p.run()
		results = append(results, PurgeResult{Kind: p.kind, Removed: n})
		if err != nil {
			return results, fmt.Errorf("failed to purge %s: %w", p.kind, err)
		}
		if n > 0 {
			s.logger.Info("Purged soft deleted rows", zap.String("kind", p.kind), zap.Int("removed", n))
		}
	}
	return results, nil
}

func purgeKind[T store.Identified](ctx context.Context, repo *store.SoftDeleting[T], cutoff time.Time) (int, error) {
	rows, err := repo.Base().FindAll(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("deleted_at IS NOT NULL AND deleted_at < ?", cutoff)
	})
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, row := range rows {
		if err := repo.HardDelete(ctx, row.PrimaryKey()); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}
