package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	purgeOlderThan time.Duration
	pruneGuild     string
	pruneKeep      int
	yesConfirm     bool
)

// maintenanceCmd is the parent command for destructive housekeeping.
var maintenanceCmd = &cobra.Command{
	Use:   "maintenance",
	Short: "Housekeeping for the mirror and the report archive",
}

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Hard delete mirror rows soft deleted before a cutoff",
	Long: `Permanently removes mirrored rows whose deleted_at is older than --older-than.

Examples:
  # Purge rows deleted more than 30 days ago (interactive confirmation)
  maintenance purge --older-than 720h

  # Non-interactive
  maintenance purge --older-than 720h --yes`,
	RunE: runPurge,
}

var pruneReportsCmd = &cobra.Command{
	Use:   "prune-reports",
	Short: "Delete all but the newest archived sync reports of a guild",
	RunE:  runPruneReports,
}

func init() {
	maintenanceCmd.PersistentFlags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm destructive actions (non-interactive)")

	purgeCmd.Flags().DurationVar(&purgeOlderThan, "older-than", 30*24*time.Hour, "Only purge rows soft deleted before now minus this duration")

	pruneReportsCmd.Flags().StringVar(&pruneGuild, "guild", "", "Guild ID")
	pruneReportsCmd.Flags().IntVar(&pruneKeep, "keep", 20, "Number of newest reports to keep")
	_ = pruneReportsCmd.MarkFlagRequired("guild")

	maintenanceCmd.AddCommand(purgeCmd, pruneReportsCmd)
	RootCmd.AddCommand(maintenanceCmd)
}

func runPurge(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.log.Sync()

	if !confirmDestructiveAction() {
		rt.log.Warn("Operation cancelled by user. No changes were made.")
		return nil
	}

	svc := rt.mirrorService(nil, nil)
	results, err := svc.Purge(cmd.Context(), purgeOlderThan)
	for _, r := range results {
		rt.log.Info("Purged", zap.String("kind", r.Kind), zap.Int("removed", r.Removed))
	}
	return err
}

func runPruneReports(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.log.Sync()

	archive, err := rt.archive(ctx)
	if err != nil {
		return err
	}
	if archive == nil {
		return fmt.Errorf("storage is disabled; set STORAGE_ENABLED=true")
	}

	if !confirmDestructiveAction() {
		rt.log.Warn("Operation cancelled by user. No changes were made.")
		return nil
	}

	removed, err := archive.Prune(ctx, "sync/"+pruneGuild, pruneKeep)
	if err != nil {
		return err
	}
	rt.log.Info("Pruned sync reports", zap.String("guild_id", pruneGuild), zap.Int("removed", removed))
	return nil
}

// confirmDestructiveAction prompts the user for confirmation or uses --yes flag.
func confirmDestructiveAction() bool {
	if yesConfirm {
		fmt.Println("\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Print("\n⚠️  Type 'yes' to confirm destructive actions: ")
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	return strings.TrimSpace(response) == "yes"
}
