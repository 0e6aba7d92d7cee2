package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/innocence-protocol/innocence/internal/config"
)

func main() {
	configPath := flag.String("config", "", "Path to TOML configuration file")
	socketPath := flag.String("socket", "", "Unix socket path for IPC")
	sanctionsPath := flag.String("sanctions", "", "Sanctions list file (one address per line)")
	prove := flag.Bool("prove", false, "Compile the ownership circuit and accept proof requests")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error")

	flag.Parse()

	cfg, err := buildConfig(*configPath, *socketPath, *sanctionsPath, *logLevel, *prove)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build configuration: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(cfg.Log.Level),
	}))
	slog.SetDefault(logger)

	paths := config.DefaultPaths()
	if err := paths.EnsureDirectories(); err != nil {
		logger.Error("failed to create directories", "error", err)
		os.Exit(1)
	}

	daemon, err := NewDaemon(cfg, logger)
	if err != nil {
		logger.Error("failed to create daemon", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("starting innocence-prover daemon",
		"socket", cfg.Server.Socket,
		"sanctions", cfg.Sanctions.Path,
		"proving", cfg.Proving.Enabled,
		"verifier", cfg.Compliance.Verifier,
	)

	if err := daemon.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("daemon error", "error", err)
		os.Exit(1)
	}
}

// buildConfig creates a ProverConfig from file and/or flags.
// Flags override file settings.
func buildConfig(configPath, socketPath, sanctionsPath, logLevel string, prove bool) (config.ProverConfig, error) {
	cfg := config.DefaultProverConfig()

	if configPath != "" {
		fileCfg, err := config.LoadProverConfig(configPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config file: %w", err)
		}
		cfg = *fileCfg
	}

	if socketPath != "" {
		cfg.Server.Socket = config.ExpandPath(socketPath)
	}
	if sanctionsPath != "" {
		cfg.Sanctions.Path = config.ExpandPath(sanctionsPath)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if prove {
		cfg.Proving.Enabled = true
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func parseLevel(s string) slog.Level {
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
