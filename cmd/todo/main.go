package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ca-terumi-k/todo-app-v1/internal/clock"
	"github.com/ca-terumi-k/todo-app-v1/internal/config"
	"github.com/ca-terumi-k/todo-app-v1/internal/logging"
	"github.com/ca-terumi-k/todo-app-v1/internal/serverapp"
	"github.com/ca-terumi-k/todo-app-v1/internal/todo"
	"github.com/ca-terumi-k/todo-app-v1/internal/tui"
)

var version = "dev"

var (
	flagConfig  string
	flagAddr    string
	flagLogFile string
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "todo",
		Short:        "A small to-do list with a web page and a terminal UI",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "todo.yml", "YAML config file (optional)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(tuiCmd())
	rootCmd.AddCommand(versionCmd())
	return rootCmd
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web page and JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flagConfig)
			if err != nil {
				return err
			}
			if flagAddr != "" {
				cfg.Server.Addr = flagAddr
			}
			logger := logging.New(os.Stderr, cfg.Log)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger)
		},
	}
	cmd.Flags().StringVar(&flagAddr, "addr", "", "listen address (overrides config)")
	return cmd
}

func tuiCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Run the terminal UI over an in-memory list",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flagConfig)
			if err != nil {
				return err
			}

			// The terminal belongs to the UI, so logs go to a file or nowhere.
			logger := logging.Discard()
			if flagLogFile != "" {
				f, err := os.OpenFile(flagLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return fmt.Errorf("open log file: %w", err)
				}
				defer f.Close()
				logger = logging.New(f, cfg.Log)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			store := todo.NewStore(clock.RealClock{})
			return tui.Run(ctx, store,
				tui.WithTitle(cfg.UI.Title),
				tui.WithDefaultText(cfg.UI.DefaultText),
				tui.WithLogger(logger),
			)
		},
	}
	cmd.Flags().StringVar(&flagLogFile, "log-file", "", "write logs to this file")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}

// loadConfig reads .env, then the YAML file (a missing file means
// defaults), then TODO_* environment overrides.
func loadConfig(path string) (*config.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg, err := config.Load(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		cfg = config.Default()
	case err != nil:
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	config.ApplyEnv(cfg)
	return cfg, nil
}

func serve(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	handler, err := serverapp.NewHandler(serverapp.Options{
		Config: cfg,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("build server: %w", err)
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ErrorLog:     logger.StandardLog(log.StandardLogOptions{ForceLevel: log.ErrorLevel}),
		// Requests see the signal too, so open event streams end on shutdown.
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Server.Addr, "dev_static", cfg.Server.DevStatic)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting_down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
