package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mnemon/mnemon/pkg/config"
	"github.com/mnemon/mnemon/pkg/utils"
)

func main() {
	utils.InitLogger()
	logger := utils.GetLogger()

	if path, err := config.EnsureDefaultConfig(); err != nil {
		logger.Warn("Failed to write default config", "path", path, "error", err)
	}

	cfg, path, err := config.Load()
	if err != nil {
		logger.Error("Failed to load config", "path", path, "error", err)
		os.Exit(1)
	}

	server, err := NewServer(cfg)
	if err != nil {
		logger.Error("Failed to initialize server", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Error("Failed to start server", "error", err)
		os.Exit(1)
	}

	exitCode := 0
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-server.Err():
		if err != nil {
			logger.Error("Server failed", "error", err)
			exitCode = 1
		}
	}
	if err := server.Close(); err != nil {
		logger.Error("Failed to close conversation store", "error", err)
	}
	os.Exit(exitCode)
}
