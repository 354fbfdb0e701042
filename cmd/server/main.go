package main

import (
	"context"
	"log"
	"net"
	"os"
	"syscall"
	"time"

	"github.com/honeycarbs/jobboard-client/internal/config"
	"github.com/honeycarbs/jobboard-client/internal/mcp"
	"github.com/honeycarbs/jobboard-client/pkg/logging"
	"github.com/honeycarbs/jobboard-client/pkg/shutdown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := logging.New(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	res, cleanup, err := mcp.BuildResources(ctx, cfg, logger)
	if err != nil {
		os.Exit(1)
	}

	// the session starts knowing whether a CV is on file
	if _, err := res.CV.Info(ctx); err != nil {
		logger.Warn("initial CV lookup failed", "err", err)
	}

	stoppables := make([]shutdown.Stoppable, 0, 3)

	if res.Reconciler != nil {
		if err := res.Reconciler.Start(ctx); err != nil {
			logger.Error("failed to start reconciler", "err", err)
			cleanup()
			os.Exit(1)
		}
		stoppables = append(stoppables, res.Reconciler)
	} else if _, err := res.Tracker.RefreshData(ctx); err != nil {
		logger.Warn("initial interaction refresh failed", "err", err)
	}

	srv := mcp.NewServer(logger, cfg, res)
	stoppables = append(stoppables, srv, shutdown.StopFunc(func(context.Context) error {
		cleanup()
		return nil
	}))

	done := make(chan struct{})
	go func() {
		defer close(done)
		shutdown.Graceful(
			[]os.Signal{os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGHUP},
			10*time.Second,
			logger,
			stoppables...,
		)
	}()

	logger.Info("MCP server initialized and starting", "addr", net.JoinHostPort(cfg.Host, cfg.Port), "tools", len(srv.Tools()))

	if err := srv.Run(); err != nil {
		logger.Error("MCP server exited with error", "err", err)
		cleanup()
		_ = logger.Sync()
		os.Exit(1)
	}

	<-done
	logger.Info("MCP server stopped")
}
