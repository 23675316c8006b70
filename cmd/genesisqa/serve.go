package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dshills/genesisqa/internal/config"
	"github.com/dshills/genesisqa/internal/logging"
	"github.com/dshills/genesisqa/internal/metrics"
	"github.com/dshills/genesisqa/internal/pipeline"
	"github.com/dshills/genesisqa/internal/server"
	"github.com/dshills/genesisqa/internal/store"
)

type serveFlags struct {
	configPath string
	addr       string
}

func newServeCmd() *cobra.Command {
	var flags serveFlags
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the upload and query HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, flags)
		},
	}
	f := cmd.Flags()
	f.StringVar(&flags.configPath, "config", "", "Config file (default: search ./config and . for genesisqa.*)")
	f.StringVar(&flags.addr, "addr", "", "Listen address, overrides server.listen")
	return cmd
}

func runServe(ctx context.Context, flags serveFlags) error {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return codeError(3, "loading config: %s", err)
	}
	if flags.addr != "" {
		cfg.Server.Listen = flags.addr
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return codeError(3, "configuring logger: %s", err)
	}
	defer logger.Sync() //nolint:errcheck

	mem := store.NewMemory()
	m := metrics.New()
	svc, err := pipeline.New(ctx, mem.Documents(), mem.TestCases(), mem.Reports(),
		pipeline.WithMetrics(m),
		pipeline.WithLogger(logger.Named("pipeline")),
	)
	if err != nil {
		return codeError(4, "starting pipeline: %s", err)
	}

	srv := server.New(cfg.Server, server.Deps{
		Service:   svc,
		Documents: mem.Documents(),
		TestCases: mem.TestCases(),
		Reports:   mem.Reports(),
		Metrics:   m,
		Logger:    logger.Named("http"),
	})

	logger.Info("starting genesisqa", zap.String("version", version), zap.String("addr", cfg.Server.Listen))
	if err := srv.Run(ctx, cfg.Server.Listen); err != nil {
		return codeError(4, "%s", err)
	}
	return nil
}
