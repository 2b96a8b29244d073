// Package config handles loading and managing replylag configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/mailscan/replylag/internal/fileutil"
)

// Config represents the replylag configuration.
type Config struct {
	Input  InputConfig  `toml:"input"`
	Scan   ScanConfig   `toml:"scan"`
	Server ServerConfig `toml:"server"`

	// Computed paths (not from config file)
	HomeDir string `toml:"-"`
}

// InputConfig holds dataset loading configuration.
type InputConfig struct {
	// File is the default input table (.csv or .xlsx) used when a command
	// gets no --input flag.
	File string `toml:"file"`

	// FilenameColumns and TimeColumns extend the header keywords accepted
	// for each column role. Empty means built-in defaults only.
	FilenameColumns []string `toml:"filename_columns"`
	TimeColumns     []string `toml:"time_columns"`
}

// ScanConfig holds .eml scanning configuration.
type ScanConfig struct {
	// ReadLimit is how many bytes of each message to read (default: 5000).
	ReadLimit int `toml:"read_limit"`
}

// ServerConfig holds HTTP API server configuration.
type ServerConfig struct {
	APIPort  int    `toml:"api_port"`  // HTTP server port (default: 8080)
	APIKey   string `toml:"api_key"`   // API authentication key
	BindAddr string `toml:"bind_addr"` // Bind address (default: 127.0.0.1)
}

// DefaultHome returns the default replylag home directory.
// Respects the REPLYLAG_HOME environment variable.
func DefaultHome() string {
	if h := os.Getenv("REPLYLAG_HOME"); h != "" {
		return h
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".replylag"
	}
	return filepath.Join(home, ".replylag")
}

// Load reads the configuration from the specified file. If path is empty,
// uses <home>/config.toml; if home is empty, uses DefaultHome(). A missing
// config file is not an error — defaults apply.
func Load(path, home string) (*Config, error) {
	if home == "" {
		home = DefaultHome()
	}
	if path == "" {
		path = filepath.Join(home, "config.toml")
	}

	cfg := &Config{HomeDir: home}
	cfg.applyDefaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Scan.ReadLimit <= 0 {
		c.Scan.ReadLimit = 5000
	}
	if c.Server.APIPort == 0 {
		c.Server.APIPort = 8080
	}
	if c.Server.BindAddr == "" {
		c.Server.BindAddr = "127.0.0.1"
	}
}

// ConfigFilePath returns the path of the config file in use.
func (c *Config) ConfigFilePath() string {
	return filepath.Join(c.HomeDir, "config.toml")
}

// EnsureHome creates the home directory if it does not exist. The directory
// is owner-only since the config file in it may hold an API key.
func (c *Config) EnsureHome() error {
	if err := fileutil.SecureMkdirAll(c.HomeDir, 0o700); err != nil {
		return fmt.Errorf("create home dir %s: %w", c.HomeDir, err)
	}
	return nil
}

// WriteDefault writes a starter config file to ConfigFilePath. It refuses to
// overwrite an existing file.
func (c *Config) WriteDefault() error {
	path := c.ConfigFilePath()
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}
	if err := c.EnsureHome(); err != nil {
		return err
	}
	if err := fileutil.SecureWriteFile(path, []byte(defaultConfigTOML), 0o600); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

const defaultConfigTOML = `[input]
# Default input table (.csv or .xlsx) used when a command gets no --input flag.
# file = "/path/to/summary.xlsx"

# Extra header keywords accepted for the filename and timestamp columns.
# filename_columns = []
# time_columns = []

[scan]
# Bytes of each .eml file to read when scanning for timestamps.
read_limit = 5000

[server]
api_port = 8080
bind_addr = "127.0.0.1"
# api_key = ""
`
