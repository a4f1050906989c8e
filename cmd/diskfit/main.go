package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/diskfit/diskfit-core/internal/runner"
	"github.com/diskfit/diskfit-core/pkg/config"
	"github.com/diskfit/diskfit-core/pkg/logger"
)

func main() {
	var configPath string
	var outDir string
	var resume int
	var logLevel string

	flag.StringVar(&configPath, "config", "config/config.yaml", "path to run configuration")
	flag.StringVar(&outDir, "outdir", "", "override the configured output directory")
	flag.IntVar(&resume, "resume", -1, "reuse run directory run<N> and continue from its checkpoint")
	flag.StringVar(&logLevel, "log-level", "", "override the configured log level (debug, info, warn, error)")
	flag.Parse()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error("failed to load config", "path", configPath, "error", err)
		os.Exit(1)
	}
	if outDir != "" {
		cfg.OutDir = outDir
	}
	if resume >= 0 {
		cfg.RunNumber = &resume
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	logger.SetDefault(logger.NewText(cfg.LogLevel, os.Stdout))
	logger.Info("starting run", "mode", cfg.Mode, "out_dir", cfg.OutDir)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := runner.New(cfg, logger.Default)
	if err := r.Run(ctx); err != nil {
		if ctx.Err() != nil {
			logger.Warn("run interrupted", "error", err)
		} else {
			logger.Error("run failed", "error", err)
		}
		os.Exit(1)
	}
	logger.Info("run complete")
}
