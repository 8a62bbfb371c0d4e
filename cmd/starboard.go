package cmd

import (
	"fmt"

	"guildkeeper/core/discord"
	"guildkeeper/core/keylock"
	"guildkeeper/feature/starboard"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	boardGuild   string
	boardName    string
	boardID      string
	boardTargets []string
	boardMin     int
)

// starboardCmd is the parent command for starboard administration.
var starboardCmd = &cobra.Command{
	Use:   "starboard",
	Short: "Manage starboard channels",
}

var starboardCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a board channel (or register an existing one)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStarboard(cmd, true, func(svc *starboard.Service, l *zap.Logger) error {
			board, err := svc.CreateBoard(cmd.Context(), boardGuild, boardName)
			if err != nil {
				return err
			}
			l.Info("Starboard ready", zap.String("channel_id", board.ID), zap.String("name", board.Name))
			return nil
		})
	},
}

var starboardRedirectCmd = &cobra.Command{
	Use:   "redirect",
	Short: "Replace the channels and members a board listens to",
	Long: `Replaces every config of the board with one config per target.

Example:
  starboard redirect --guild 1 --board 3 --target 2 --target 4`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStarboard(cmd, false, func(svc *starboard.Service, l *zap.Logger) error {
			summary, err := svc.Redirect(cmd.Context(), boardGuild, boardTargets, boardID)
			if err != nil {
				return err
			}
			l.Info("Starboard redirected",
				zap.String("board_id", summary.BoardID),
				zap.Int("removed", summary.Removed),
				zap.Strings("targets", summary.Targets))
			return nil
		})
	},
}

var starboardLimitCmd = &cobra.Command{
	Use:   "limit",
	Short: "Set the minimum reaction count of a board",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStarboard(cmd, false, func(svc *starboard.Service, l *zap.Logger) error {
			if err := svc.SetMinLimit(cmd.Context(), boardGuild, boardID, boardMin); err != nil {
				return err
			}
			l.Info("Starboard minimum updated", zap.String("board_id", boardID), zap.Int("min_limit", boardMin))
			return nil
		})
	},
}

var starboardListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the starboard configs of a guild",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStarboard(cmd, false, func(svc *starboard.Service, l *zap.Logger) error {
			configs, err := svc.Configs(cmd.Context(), boardGuild)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, c := range configs {
				target := "*"
				if c.TargetID != nil {
					target = *c.TargetID
				}
				fmt.Fprintf(out, "%s\ttarget=%s\tmin=%d\n", c.StarboardChannelID, target, c.MinLimit)
			}
			if len(configs) == 0 {
				l.Info("No starboards configured")
			}
			return nil
		})
	},
}

func init() {
	starboardCmd.PersistentFlags().StringVar(&boardGuild, "guild", "", "Guild ID")
	_ = starboardCmd.MarkPersistentFlagRequired("guild")

	starboardCreateCmd.Flags().StringVar(&boardName, "name", "starboard", "Board channel name")

	starboardRedirectCmd.Flags().StringVar(&boardID, "board", "", "Board channel ID")
	starboardRedirectCmd.Flags().StringSliceVar(&boardTargets, "target", nil, "Channel or member ID (repeatable)")
	_ = starboardRedirectCmd.MarkFlagRequired("board")
	_ = starboardRedirectCmd.MarkFlagRequired("target")

	starboardLimitCmd.Flags().StringVar(&boardID, "board", "", "Board channel ID")
	starboardLimitCmd.Flags().IntVar(&boardMin, "min", 10, "Minimum reaction count")
	_ = starboardLimitCmd.MarkFlagRequired("board")

	starboardCmd.AddCommand(starboardCreateCmd, starboardRedirectCmd, starboardLimitCmd, starboardListCmd)
	RootCmd.AddCommand(starboardCmd)
}

// withStarboard builds a starboard service and runs fn. The platform is only
// connected when needed.
func withStarboard(cmd *cobra.Command, needsPlatform bool, fn func(*starboard.Service, *zap.Logger) error) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.log.Sync()

	var platform discord.Platform
	if needsPlatform {
		_, p, err := rt.session()
		if err != nil {
			return err
		}
		platform = p
	}
	svc := starboard.NewService(rt.db, platform, keylock.New(rt.cfg.Locks), nil, rt.log)
	return fn(svc, rt.log.With(zap.String("guild_id", boardGuild)))
}
