// Package config handles application configuration.
//
// Configuration is split into two categories:
//   - Terms: the sale's protocol rules (price, caps, refund period, owner).
//     Fixed when the ledger is first created and never mutable afterwards.
//   - Node settings: runtime configuration (data dir, RPC, logging).
package config

import (
	"net"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
)

// StorageEngine selects the database backing the ledger.
type StorageEngine string

const (
	EngineBadger StorageEngine = "badger"
	EngineMemory StorageEngine = "memory" // Nothing survives a restart; for tests and demos.
)

// =============================================================================
// Node Configuration (runtime settings)
// =============================================================================

// Config holds node-specific runtime configuration.
type Config struct {
	// Core
	DataDir string `conf:"datadir" env:"DATADIR"`

	// Storage
	Storage StorageConfig `envPrefix:"STORAGE_"`

	// RPC server
	RPC RPCConfig `envPrefix:"RPC_"`

	// Logging
	Log LogConfig `envPrefix:"LOG_"`

	// TermsFile overrides <datadir>/terms.json.
	TermsFile string `conf:"terms" env:"TERMS"`
}

// StorageConfig holds database settings.
type StorageConfig struct {
	Engine StorageEngine `conf:"storage.engine" env:"ENGINE"`
}

// RPCConfig holds RPC server settings.
type RPCConfig struct {
	Enabled     bool     `conf:"rpc.enabled" env:"ENABLED"`
	Addr        string   `conf:"rpc.addr" env:"ADDR"`
	Port        int      `conf:"rpc.port" env:"PORT"`
	AllowedIPs  []string `conf:"rpc.allowed" env:"ALLOWED" envSeparator:","`
	CORSOrigins []string `conf:"rpc.cors" env:"CORS" envSeparator:","` // Allowed CORS origins ("*" = all).
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `conf:"log.level" env:"LEVEL"`
	File  string `conf:"log.file" env:"FILE"`
	JSON  bool   `conf:"log.json" env:"JSON"`
}

// =============================================================================
// Directory helpers
// =============================================================================

// DefaultDataDir returns the platform-specific default data directory.
//
//	Linux:   ~/.refundmint
//	macOS:   ~/Library/Application Support/Refundmint
//	Windows: %APPDATA%\Refundmint
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".refundmint"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Refundmint")
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "Refundmint")
		}
		return filepath.Join(home, "AppData", "Roaming", "Refundmint")
	default:
		return filepath.Join(home, ".refundmint")
	}
}

// DBDir returns the ledger database directory.
func (c *Config) DBDir() string {
	return filepath.Join(c.DataDir, "ledger")
}

// KeystoreDir returns the CLI keystore directory.
func (c *Config) KeystoreDir() string {
	return filepath.Join(c.DataDir, "keystore")
}

// LogsDir returns the log directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// ConfigFile returns the node config file path.
func (c *Config) ConfigFile() string {
	return filepath.Join(c.DataDir, "refundmint.conf")
}

// TermsPath returns the terms file path, honoring the TermsFile override.
func (c *Config) TermsPath() string {
	if c.TermsFile != "" {
		return c.TermsFile
	}
	return filepath.Join(c.DataDir, "terms.json")
}

// RPCEndpoint returns host:port for the RPC listener.
func (c *Config) RPCEndpoint() string {
	return net.JoinHostPort(c.RPC.Addr, strconv.Itoa(c.RPC.Port))
}
