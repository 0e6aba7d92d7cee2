package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/innocence-protocol/innocence/internal/config"
	"github.com/innocence-protocol/innocence/internal/ipc"
	"github.com/innocence-protocol/innocence/internal/prover"
	"github.com/innocence-protocol/innocence/internal/watch"
	"github.com/innocence-protocol/innocence/pkg/sanctions"
	"github.com/innocence-protocol/innocence/pkg/zkproof"
)

// Daemon serves statement requests over the IPC socket.
type Daemon struct {
	cfg      config.ProverConfig
	registry *sanctions.Registry
	service  *prover.Service
	watcher  *watch.Watcher
	server   *ipc.Server
	logger   *slog.Logger
}

// NewDaemon loads the sanctions list, compiles the circuit when proving is
// enabled and builds the statement service.
func NewDaemon(cfg config.ProverConfig, logger *slog.Logger) (*Daemon, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	list, err := loadSanctions(cfg.Sanctions.Path)
	if err != nil {
		return nil, err
	}
	registry := sanctions.NewRegistry(list)
	logger.Info("sanctions list loaded",
		"path", cfg.Sanctions.Path,
		"addresses", list.Len(),
		"root", list.Root().Hex(),
	)

	verifier, err := prover.VerifierByName(cfg.Compliance.Verifier)
	if err != nil {
		return nil, err
	}
	if cfg.Compliance.Verifier == config.VerifierSanity {
		logger.Warn("compliance certificates are not authenticated", "verifier", cfg.Compliance.Verifier)
	}

	var compiled *zkproof.CompiledCircuit
	if cfg.Proving.Enabled {
		compiled, err = loadCircuit(cfg.Proving.KeysDir, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("ownership circuit ready", "constraints", compiled.ConstraintSystem.GetNbConstraints())
	}

	service, err := prover.NewService(prover.Options{
		Registry: registry,
		Verifier: verifier,
		Compiled: compiled,
		Workers:  cfg.Proving.Workers,
		Timeout:  cfg.Proving.ProofTimeout(),
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}

	return &Daemon{
		cfg:      cfg,
		registry: registry,
		service:  service,
		logger:   logger,
	}, nil
}

// loadCircuit loads the saved ownership keys from keysDir, compiling and
// saving them when none exist. An empty keysDir compiles in memory.
func loadCircuit(keysDir string, logger *slog.Logger) (*zkproof.CompiledCircuit, error) {
	if keysDir == "" {
		logger.Info("compiling ownership circuit")
		compiled, err := zkproof.GetCompiledCircuit()
		if err != nil {
			return nil, fmt.Errorf("compile circuit: %w", err)
		}
		return compiled, nil
	}

	logger.Info("loading ownership circuit keys", "keys_dir", keysDir)
	compiled, err := zkproof.LoadOrCompile(keysDir)
	if err != nil {
		return nil, fmt.Errorf("load circuit keys: %w", err)
	}
	return compiled, nil
}

// loadSanctions reads the list file, or returns the built-in list for an
// empty path.
func loadSanctions(path string) (*sanctions.List, error) {
	if path == "" {
		return sanctions.DefaultList(), nil
	}
	list, err := sanctions.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load sanctions list: %w", err)
	}
	return list, nil
}

// Run starts the daemon and blocks until ctx is cancelled.
func (d *Daemon) Run(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(d.cfg.Server.Socket), 0700); err != nil {
		return err
	}

	server, err := ipc.NewServer(d.cfg.Server.Socket, d.service, d.logger)
	if err != nil {
		return err
	}
	d.server = server

	serverErr := make(chan error, 1)
	go func() {
		d.logger.Info("starting IPC server", "socket", d.cfg.Server.Socket)
		serverErr <- server.Start()
	}()

	if d.cfg.Sanctions.Watch && d.cfg.Sanctions.Path != "" {
		watcher, err := watch.NewWatcher(d.cfg.Sanctions.Path, d.registry, d.logger)
		if err != nil {
			d.server.Stop()
			return err
		}
		watcher.SetAllowEmpty(d.cfg.Sanctions.AllowEmpty)
		watcher.SetErrorCallback(func(err error) {
			d.logger.Error("sanctions watcher error", "error", err)
		})
		d.watcher = watcher
		go watcher.Start(ctx)
	}

	select {
	case <-ctx.Done():
		d.logger.Info("shutting down daemon")
	case err := <-serverErr:
		d.logger.Error("server error", "error", err)
	}

	return d.shutdown()
}

func (d *Daemon) shutdown() error {
	if d.watcher != nil {
		if err := d.watcher.Close(); err != nil {
			d.logger.Warn("failed to close watcher", "error", err)
		}
	}
	if d.server != nil {
		d.server.Stop()
	}

	stats := d.service.Stats()
	d.logger.Info("daemon stopped",
		"evaluated", stats.Evaluated,
		"rejected", stats.Rejected,
		"proofs_generated", stats.ProofsGenerated,
	)
	return nil
}

// Service returns the statement service.
func (d *Daemon) Service() *prover.Service {
	return d.service
}
