package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/rebeliceyang/pgtabs/internal/app"
	"github.com/rebeliceyang/pgtabs/internal/config"
	"github.com/rebeliceyang/pgtabs/internal/connection_history"
	"github.com/rebeliceyang/pgtabs/internal/db/connection"
	"github.com/rebeliceyang/pgtabs/internal/db/discovery"
	"github.com/rebeliceyang/pgtabs/internal/history"
	"github.com/rebeliceyang/pgtabs/internal/logx"
	"github.com/rebeliceyang/pgtabs/internal/models"
	"github.com/rebeliceyang/pgtabs/internal/workspace"
	"pkt.systems/psi"
	"pkt.systems/pslog"
)

func main() {
	psi.Run(submain)
}

func submain(ctx context.Context) int {
	root := newRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", config.AppName, err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var configFile string
	root := &cobra.Command{
		Use:           config.AppName + " [postgres://user@server/dbname]",
		Short:         "Tabbed terminal client for PostgreSQL",
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var arg string
			if len(args) > 0 {
				arg = args[0]
			}
			return run(cmd.Context(), configFile, arg)
		},
	}
	root.Flags().StringVarP(&configFile, "config", "c", "", "config file (default $XDG_CONFIG_HOME/pgtabs/config.yaml)")
	return root
}

func run(ctx context.Context, configFile, arg string) error {
	dir, err := config.EnsureConfigPath()
	if err != nil {
		return err
	}

	loader := config.NewLoader(configFile)
	cfg, err := loader.Load()
	if err != nil {
		log.Printf("could not load config: %v (using defaults)", err)
		cfg = config.GetDefaults()
	}

	logFile, err := openLogFile(dir, cfg.Log.File)
	if err != nil {
		return err
	}
	defer logFile.Close()

	logger := logx.New(logFile, cfg.Log.Level)
	ctx = pslog.ContextWithLogger(ctx, logger)
	log.SetOutput(pslog.LogLogger(logger).Writer())
	log.SetFlags(0)
	logger.Info("starting", "config", loader.File(), "theme", cfg.UI.Theme)

	conns := connection.NewManager(connection.PoolOptions{
		MaxConns:       int32(cfg.Connection.PoolMaxConns),
		ConnectTimeout: cfg.ConnectTimeout(),
	})
	defer conns.CloseAll()

	saved, err := connection_history.NewManager(dir, logger)
	if err != nil {
		return fmt.Errorf("open saved connections: %w", err)
	}
	if err := saved.Load(); err != nil {
		logger.Warn("load saved connections failed", "err", err)
	}

	pgpass := discovery.DefaultPgPassPath()
	deps := app.Deps{
		Config:         cfg,
		Logger:         logger,
		Conns:          conns,
		Saved:          saved,
		Discover:       discovery.NewDiscoverer().DiscoverAll,
		ManualDefaults: discovery.EnvironmentConfig(os.Getenv),
		InitialArg:     arg,
		LookupPassword: func(c models.ConnectionConfig) string {
			return discovery.FindPassword(pgpass, c)
		},
	}

	store, err := history.NewStore(filepath.Join(dir, "history.db"))
	if err != nil {
		logger.Warn("activity log unavailable", "err", err)
	} else {
		defer store.Close()
		deps.History = store
	}

	colors, err := workspace.LoadColorStore(filepath.Join(dir, "colors.yaml"))
	if err != nil {
		logger.Warn("load tab colors failed", "err", err)
	}

	ws := workspace.New(workspace.Options{
		Logger: logger,
		Colors: colors,
		Loader: workspace.NewLoader(cfg.LoaderDelay()),
	})
	model := app.New(ctx, ws, deps)
	defer model.Close()

	opts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithReportFocus(), tea.WithContext(ctx)}
	if cfg.UI.MouseEnabled {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	p := tea.NewProgram(model, opts...)

	if loader.File() != "" {
		loader.Watch(func(cfg *config.Config, err error) {
			p.Send(app.ConfigReloadedMsg{Config: cfg, Err: err})
		})
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run program: %w", err)
	}
	logger.Info("exiting")
	return nil
}

func openLogFile(dir, name string) (*os.File, error) {
	if name == "" {
		name = config.AppName + ".log"
	}
	if !filepath.IsAbs(name) {
		name = filepath.Join(dir, name)
	}
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}
