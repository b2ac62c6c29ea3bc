// toolcase-worker serves the builtin toolkit over HTTP or stdio. It is both
// a usable worker for the builtin tools and the reference wiring for
// embedding toolcase in a service of your own.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/toolcase/toolcase"
	"github.com/toolcase/toolcase/stdio"
	"github.com/toolcase/toolcase/worker"
)

const version = "0.1.0"

type cliOptions struct {
	configPath string
	addr       string
	secret     string
	transport  string
	logLevel   string
}

func newRootCommand() *cobra.Command {
	var opts cliOptions

	root := &cobra.Command{
		Use:          "toolcase-worker",
		Short:        "Serve a tool catalog over HTTP or stdio",
		Version:      version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts.configPath)
			if err != nil {
				return err
			}
			applyFlagOverrides(cmd, &cfg, opts)
			if err := cfg.validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	root.Flags().StringVarP(&opts.configPath, "config", "c", "", "path to YAML config file")
	root.Flags().StringVar(&opts.addr, "addr", "", "HTTP listen address (http transport)")
	root.Flags().StringVar(&opts.secret, "secret", "", "bearer token required on worker routes")
	root.Flags().StringVar(&opts.transport, "transport", "", "serving transport: http or stdio")
	root.Flags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	return root
}

// applyFlagOverrides lets explicitly-set flags win over the config file.
func applyFlagOverrides(cmd *cobra.Command, cfg *Config, opts cliOptions) {
	if cmd.Flags().Changed("addr") {
		cfg.Addr = opts.addr
	}
	if cmd.Flags().Changed("secret") {
		cfg.Secret = opts.secret
	}
	if cmd.Flags().Changed("transport") {
		cfg.Transport = opts.transport
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
}

func run(ctx context.Context, cfg Config) error {
	// Logs go to stderr; the stdio transport owns stdout.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))

	catalog := toolcase.NewCatalog(
		toolcase.WithCatalogLogger(logger),
		toolcase.WithDisabledTools(cfg.DisabledTools...),
		toolcase.WithDisabledToolkits(cfg.DisabledToolkits...),
	)
	if _, err := catalog.AddToolkit(builtinToolkit()); err != nil {
		return fmt.Errorf("register builtin toolkit: %w", err)
	}

	executor := toolcase.NewExecutor(catalog,
		toolcase.WithDefaultTimeout(time.Duration(cfg.Timeout)),
		toolcase.WithMaxConcurrency(cfg.MaxConcurrency),
		toolcase.WithExecutorLogger(logger),
	)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var err error
	switch cfg.Transport {
	case "stdio":
		srv := stdio.New(catalog, executor,
			stdio.WithLogger(logger),
			stdio.WithServerInfo("toolcase-worker", version),
		)
		err = srv.Serve(ctx)
	default:
		w := worker.New(catalog, executor,
			worker.WithSecret(cfg.Secret),
			worker.WithLogger(logger),
		)
		err = w.Serve(ctx, cfg.Addr)
	}
	if shutdownErr := executor.Shutdown(context.Background()); err == nil {
		err = shutdownErr
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
