// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Verifier names accepted in [compliance].
const (
	VerifierECDSA  = "ecdsa"
	VerifierSanity = "sanity"
)

var (
	// ErrInvalidConfig is wrapped by every Validate failure.
	ErrInvalidConfig = errors.New("config: invalid configuration")
)

// Paths holds XDG-compliant paths.
type Paths struct {
	ConfigDir     string // ~/.config/innocence
	DataDir       string // ~/.local/share/innocence
	ProverSocket  string // ~/.local/share/innocence/prover.sock
	NotesDir      string // ~/.local/share/innocence/notes
	SanctionsPath string // ~/.config/innocence/sanctions.txt
	ConfigPath    string // ~/.config/innocence/prover.toml
}

// ExpandPath expands ~ to the user's home directory.
// Returns the path unchanged if it doesn't start with ~.
// Panics if home directory cannot be determined when ~ expansion is needed.
func ExpandPath(path string) string {
	if path == "~" {
		return homeDir()
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		panic(fmt.Sprintf("failed to get home directory: %v", err))
	}
	return home
}

// DefaultPaths returns the default XDG-compliant paths.
// Panics if the user's home directory cannot be determined.
func DefaultPaths() Paths {
	home := homeDir()
	configDir := filepath.Join(home, ".config", "innocence")
	dataDir := filepath.Join(home, ".local", "share", "innocence")

	return Paths{
		ConfigDir:     configDir,
		DataDir:       dataDir,
		ProverSocket:  filepath.Join(dataDir, "prover.sock"),
		NotesDir:      filepath.Join(dataDir, "notes"),
		SanctionsPath: filepath.Join(configDir, "sanctions.txt"),
		ConfigPath:    filepath.Join(configDir, "prover.toml"),
	}
}

// EnsureDirectories creates config and data directories if they don't exist.
func (p Paths) EnsureDirectories() error {
	for _, dir := range []string{p.ConfigDir, p.DataDir, p.NotesDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0700); err != nil {
			return err
		}
	}
	return nil
}

// ProverConfig holds configuration for innocence-prover.
type ProverConfig struct {
	Server     ServerConfig     `toml:"server"`
	Proving    ProvingConfig    `toml:"proving"`
	Sanctions  SanctionsConfig  `toml:"sanctions"`
	Compliance ComplianceConfig `toml:"compliance"`
	Log        LogConfig        `toml:"log"`
}

// ServerConfig holds IPC settings.
type ServerConfig struct {
	Socket string `toml:"socket"`
}

// ProvingConfig holds statement evaluation and proof generation settings.
type ProvingConfig struct {
	// Enabled compiles the ownership circuit at startup so that requests
	// may ask for a proof.
	Enabled             bool `toml:"enabled"`
	ProofTimeoutSeconds int  `toml:"proof_timeout_seconds"`
	Workers             int  `toml:"workers"`

	// KeysDir holds the saved constraint system and PLONK keys. Empty
	// compiles fresh keys on every start.
	KeysDir string `toml:"keys_dir"`
}

// ProofTimeout returns the per-request deadline.
func (p ProvingConfig) ProofTimeout() time.Duration {
	return time.Duration(p.ProofTimeoutSeconds) * time.Second
}

// SanctionsConfig holds the sanctions list source.
type SanctionsConfig struct {
	// Path is a list file; empty serves the built-in list.
	Path  string `toml:"path"`
	Watch bool   `toml:"watch"`

	// AllowEmpty lets a reload install a list with no addresses. Otherwise
	// an empty file is treated as a failed reload.
	AllowEmpty bool `toml:"allow_empty"`
}

// ComplianceConfig selects the certificate signature verifier.
type ComplianceConfig struct {
	Verifier string `toml:"verifier"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// DefaultProverConfig returns a ProverConfig with sensible defaults.
func DefaultProverConfig() ProverConfig {
	paths := DefaultPaths()
	return ProverConfig{
		Server: ServerConfig{
			Socket: paths.ProverSocket,
		},
		Proving: ProvingConfig{
			Enabled:             false,
			ProofTimeoutSeconds: 120,
			Workers:             2,
			KeysDir:             filepath.Join(paths.DataDir, "keys"),
		},
		Sanctions: SanctionsConfig{
			Watch: true,
		},
		Compliance: ComplianceConfig{
			Verifier: VerifierECDSA,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadProverConfig loads a ProverConfig from a TOML file on top of the
// defaults. Paths with ~ are expanded to the user's home directory.
func LoadProverConfig(path string) (*ProverConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultProverConfig()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	cfg.Server.Socket = ExpandPath(cfg.Server.Socket)
	cfg.Sanctions.Path = ExpandPath(cfg.Sanctions.Path)
	cfg.Proving.KeysDir = ExpandPath(cfg.Proving.KeysDir)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that all values are usable.
func (c ProverConfig) Validate() error {
	if c.Server.Socket == "" {
		return fmt.Errorf("%w: server.socket is empty", ErrInvalidConfig)
	}
	if c.Proving.Workers < 1 {
		return fmt.Errorf("%w: proving.workers must be at least 1, got %d", ErrInvalidConfig, c.Proving.Workers)
	}
	if c.Proving.ProofTimeoutSeconds < 1 {
		return fmt.Errorf("%w: proving.proof_timeout_seconds must be positive, got %d", ErrInvalidConfig, c.Proving.ProofTimeoutSeconds)
	}
	switch c.Compliance.Verifier {
	case VerifierECDSA, VerifierSanity:
	default:
		return fmt.Errorf("%w: unknown compliance.verifier %q", ErrInvalidConfig, c.Compliance.Verifier)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log.level %q", ErrInvalidConfig, c.Log.Level)
	}
	return nil
}

// Marshal renders c as TOML.
func (c ProverConfig) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}
