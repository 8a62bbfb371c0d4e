package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"guildkeeper/core/keylock"
	"guildkeeper/core/loader"
	"guildkeeper/core/logger"
	"guildkeeper/core/middleware/auth"
	"guildkeeper/core/middleware/rayid"
	"guildkeeper/feature/mirror"
	"guildkeeper/feature/starboard"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var ignoreChannels []string

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Connect to the gateway and start the admin server",
	Long:  `Opens the Discord gateway, handles reaction events and serves the admin HTTP API.`,
	RunE:  runStart,
}

func init() {
	startCmd.Flags().StringSliceVar(&ignoreChannels, "ignore", nil, "Channel IDs that never produce highlights")
	RootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Configuration, logger and database
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.log.Sync()
	zap.ReplaceGlobals(rt.log)

	// 2. Discord session
	session, platform, err := rt.session()
	if err != nil {
		return err
	}

	// 3. Report archive (optional)
	archive, err := rt.archive(ctx)
	if err != nil {
		return err
	}

	// 4. Services
	mirrorSvc := rt.mirrorService(platform, archive)
	starboardSvc := starboard.NewService(rt.db, platform, keylock.New(rt.cfg.Locks), mirrorSvc, rt.log)
	starboardSvc.Ignore(ignoreChannels...)

	// 5. Gateway
	for _, h := range starboardSvc.Handlers() {
		session.AddHandler(h)
	}
	if err := session.Open(); err != nil {
		return fmt.Errorf("failed to open gateway: %w", err)
	}
	defer session.Close()
	rt.log.Info("Connected to gateway", zap.String("user_id", platform.BotUserID()))

	// 6. Admin API
	var app *fiber.App
	if rt.cfg.Server.Enabled {
		app, err = newAdminApp(rt, mirrorSvc, starboardSvc)
		if err != nil {
			return err
		}
		go func() {
			rt.log.Info("Starting server", zap.String("port", rt.cfg.Server.Port))
			if err := app.Listen(rt.cfg.Server.Address()); err != nil {
				rt.log.Error("Server stopped", zap.Error(err))
				stop()
			}
		}()
	}

	// 7. Graceful shutdown
	<-ctx.Done()
	rt.log.Info("Shutting down...")
	if app != nil {
		_ = app.Shutdown()
	}
	return nil
}

func newAdminApp(rt *runtime, mirrorSvc *mirror.Service, starboardSvc *starboard.Service) (*fiber.App, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	// RayID first so every log line carries it
	app.Use(rayid.New())
	app.Use(func(c *fiber.Ctx) error {
		l := logger.WithRayID(rt.log, c)
		l.Info("Request started",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("ip", c.IP()),
		)
		err := c.Next()
		if err != nil {
			l.Error("Request error", zap.Error(err))
		}
		return err
	})
	app.Use(auth.New(auth.Config{ApiKey: rt.cfg.Server.ApiKey}))

	mgr := loader.NewManager()
	mgr.Register(mirror.NewFeature(mirrorSvc))
	mgr.Register(starboard.NewFeature(starboardSvc))

	loaded, err := mgr.LoadAll(app)
	if err != nil {
		return nil, err
	}
	rt.log.Info("Features loaded", zap.Strings("features", loaded))
	return app, nil
}
