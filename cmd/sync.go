package cmd

import (
	"errors"
	"fmt"

	"guildkeeper/core/reconcile"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	syncGuilds []string
	syncDryRun bool
)

// syncCmd reconciles the mirror of one or more guilds.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reconcile the guild mirror with the live platform state",
	Long: `Fetches a live snapshot of each guild and reconciles the guild, its
categories, text channels and roles against the database.

Examples:
  # Show what would change
  sync --guild 123 --dry-run

  # Apply for two guilds
  sync --guild 123 --guild 456`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().StringSliceVar(&syncGuilds, "guild", nil, "Guild ID to reconcile (repeatable)")
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "Compute and report the diff without applying it")
	_ = syncCmd.MarkFlagRequired("guild")
	RootCmd.AddCommand(syncCmd)
}

// logReporter prints reconciliation progress through the logger.
type logReporter struct {
	l *zap.Logger
}

func (r logReporter) Before(kind string, planned reconcile.Summary) {
	r.l.Info("Planned changes",
		zap.String("kind", kind),
		zap.Int("create", planned.Create),
		zap.Int("update", planned.Update),
		zap.Int("delete", planned.Delete),
	)
}

func (r logReporter) After(result reconcile.Result, err error) {
	fields := []zap.Field{
		zap.String("kind", result.Kind),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("deleted", result.Deleted),
	}
	if err != nil {
		r.l.Error("Changes failed", append(fields, zap.Error(err))...)
		return
	}
	r.l.Info("Changes applied", fields...)
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.log.Sync()

	_, platform, err := rt.session()
	if err != nil {
		return err
	}
	archive, err := rt.archive(ctx)
	if err != nil {
		return err
	}
	svc := rt.mirrorService(platform, archive)

	var failed []error
	for _, guildID := range syncGuilds {
		l := rt.log.With(zap.String("guild_id", guildID))
		opts := reconcile.Options{DryRun: syncDryRun, Reporter: logReporter{l: l}}

		report, err := svc.RunSync(ctx, guildID, opts)
		if report != nil {
			total := 0
			for _, r := range report.Results {
				total += r.Planned.Total()
			}
			l.Info("Sync finished",
				zap.Bool("dry_run", report.DryRun),
				zap.String("changes", humanize.Comma(int64(total))),
				zap.Duration("took", report.FinishedAt.Sub(report.StartedAt)),
				zap.String("archive_key", report.ArchiveKey),
			)
		}
		if err != nil {
			failed = append(failed, fmt.Errorf("guild %s: %w", guildID, err))
		}
	}
	if syncDryRun {
		rt.log.Info("Dry-run mode: No changes were made.")
	}
	return errors.Join(failed...)
}
