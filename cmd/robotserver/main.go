package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/udisondev/robotworld/internal/config"
	"github.com/udisondev/robotworld/internal/db"
	"github.com/udisondev/robotworld/internal/gameserver"
	"github.com/udisondev/robotworld/internal/gameserver/admin"
	"github.com/udisondev/robotworld/internal/gameserver/admin/commands"
	"github.com/udisondev/robotworld/internal/monitor"
	"github.com/udisondev/robotworld/internal/world"
)

const ConfigPath = "config/robotserver.yaml"

type options struct {
	configPath string
	port       int
	size       int
	visibility int
	obstacles  int
	noConsole  bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:           "robotserver",
		Short:         "Robot world battle server",
		Long:          "Hosts a grid world where clients launch robots and fight over newline-delimited JSON on TCP.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigCh)
			go func() {
				select {
				case sig := <-sigCh:
					slog.Info("shutting down", "signal", sig)
					cancel()
				case <-ctx.Done():
				}
			}()

			if err := run(ctx, cancel, cmd, opts); err != nil {
				slog.Error("fatal", "err", err)
				return err
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.configPath, "config", "c", "", "config file (default $ROBOTWORLD_CONFIG or "+ConfigPath+")")
	f.IntVarP(&opts.port, "port", "p", 0, "TCP port for robot clients")
	f.IntVarP(&opts.size, "size", "s", 0, "world half-extent on both axes")
	f.IntVarP(&opts.visibility, "visibility", "v", 0, "visibility range for look")
	f.IntVarP(&opts.obstacles, "obstacles", "o", 0, "random mountains, lakes and pits to generate (each)")
	f.BoolVar(&opts.noConsole, "no-console", false, "do not read admin commands from stdin")

	return cmd
}

func run(ctx context.Context, shutdown context.CancelFunc, cmd *cobra.Command, opts options) error {
	// .env is optional
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("loading .env: %w", err)
	}

	cfgPath := ConfigPath
	if p := os.Getenv("ROBOTWORLD_CONFIG"); p != "" {
		cfgPath = p
	}
	if opts.configPath != "" {
		cfgPath = opts.configPath
	}
	cfg, err := config.LoadServer(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := applyFlags(cmd, opts, &cfg); err != nil {
		return err
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))

	slog.Info("robot world server starting",
		"config", cfgPath,
		"log_level", cfg.LogLevel,
		"bind", cfg.BindAddress,
		"port", cfg.Port)

	deps := commands.Deps{Shutdown: shutdown}

	if cfg.Database.Enabled {
		database, err := db.New(ctx, cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer database.Close()
		slog.Info("database connected")

		if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		slog.Info("database migrations applied")

		deps.Store = db.NewWorldRepository(database.Pool())
	} else {
		slog.Info("persistence disabled")
	}

	w := world.New(cfg.World)
	width, height := w.Size()
	slog.Info("world initialized",
		"name", w.Name(),
		"width", width,
		"height", height,
		"obstacles", len(w.Obstacles()))

	gameServer := gameserver.NewServer(cfg, w)
	deps.World = w
	deps.Sessions = gameServer.ClientManager()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := gameServer.Run(gctx); err != nil {
			return fmt.Errorf("robot server: %w", err)
		}
		return nil
	})

	if cfg.Monitor.Enabled {
		mon := monitor.NewServer(cfg.Monitor, w, gameServer.ClientManager())
		g.Go(func() error {
			if err := mon.Run(gctx); err != nil {
				return fmt.Errorf("monitor: %w", err)
			}
			return nil
		})
	}

	if !opts.noConsole {
		console := admin.NewHandler()
		commands.RegisterAll(console, deps)
		slog.Info("admin console ready", "commands", console.CommandCount())
		g.Go(func() error {
			if err := console.Run(gctx, os.Stdin, os.Stdout); err != nil {
				return fmt.Errorf("admin console: %w", err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	slog.Info("robot world server stopped")
	return nil
}

// applyFlags overrides config values with explicitly set flags.
func applyFlags(cmd *cobra.Command, opts options, cfg *config.Server) error {
	f := cmd.Flags()
	if f.Changed("port") {
		cfg.Port = opts.port
	}
	if f.Changed("size") {
		cfg.World.Width = opts.size
		cfg.World.Height = opts.size
	}
	if f.Changed("visibility") {
		cfg.World.VisibilityRange = opts.visibility
	}
	if f.Changed("obstacles") {
		cfg.World.Mountains = opts.obstacles
		cfg.World.Lakes = opts.obstacles
		cfg.World.Pits = opts.obstacles
	}
	if err := cfg.World.Validate(); err != nil {
		return fmt.Errorf("validating flags: %w", err)
	}
	return nil
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
