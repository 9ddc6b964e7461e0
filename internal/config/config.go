// Package config holds the application settings: the list of known server
// logins, the log level and local paths. Values are layered: defaults, then
// the JSON config file, then command-line flags.
package config

import (
	"os"
	"path/filepath"
)

// appDirName is the per-user directory under the OS config root.
const appDirName = "passvault-client"

// LoginInfo is one known server login. The access token is never stored
// here; it lives in the credential store keyed by username and server URL.
type LoginInfo struct {
	Username  string `json:"username"`
	ServerURL string `json:"server_url"`
	IsDefault bool   `json:"is_default"`
}

// Config holds runtime settings for the client.
type Config struct {
	// Logins are the known server accounts; at most one should be default.
	Logins []LoginInfo

	// LogLevel is one of debug, info, warning, error.
	LogLevel string

	// DatabasePath is the SQLite file the client opens on start.
	DatabasePath string

	// MaxWorkers bounds concurrently dispatched operations.
	MaxWorkers int

	// ConfigDir is where the config file, log file and file keyring live.
	ConfigDir string
}

// DefaultConfigDir resolves the per-user config directory, falling back to
// the working directory when the OS config root is unavailable.
func DefaultConfigDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return appDirName
	}
	return filepath.Join(base, appDirName)
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ConfigDir = DefaultConfigDir()
	c.Logins = []LoginInfo{}
	c.LogLevel = "info"
	c.DatabasePath = filepath.Join(c.ConfigDir, "vault.db")
	c.MaxWorkers = 8
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present) and command-line flags (if present). Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}

// DefaultLogin returns the login flagged as default, or the first known
// login, or nil when none are saved.
func (c *Config) DefaultLogin() *LoginInfo {
	for i := range c.Logins {
		if c.Logins[i].IsDefault {
			return &c.Logins[i]
		}
	}
	if len(c.Logins) > 0 {
		return &c.Logins[0]
	}
	return nil
}

// UpsertLogin adds the login or overwrites the saved copy matching the same
// username and server URL.
func (c *Config) UpsertLogin(login LoginInfo) {
	for i := range c.Logins {
		if c.Logins[i].Username == login.Username && c.Logins[i].ServerURL == login.ServerURL {
			c.Logins[i] = login
			return
		}
	}
	c.Logins = append(c.Logins, login)
}
