package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/newguy103/passvault-client/internal/flagx"
)

// JsonConfig is a DTO used exclusively for JSON (un)marshalling of the
// persisted config file.
type JsonConfig struct {
	Logins       []LoginInfo `json:"logins"`
	LogLevel     string      `json:"log_level"`
	DatabasePath string      `json:"database_path,omitempty"`
	MaxWorkers   int         `json:"max_workers,omitempty"`
}

// configFilePath resolves the JSON file location: the -c/-config flag when
// given, otherwise config.json inside the default config dir.
func configFilePath() string {
	if p := flagx.JsonConfigFlags(); p != "" {
		return p
	}
	return filepath.Join(DefaultConfigDir(), "config.json")
}

// parseJson overlays cfg with values loaded from the JSON config file. A
// missing file is fine (first run); a malformed one panics, as the caller
// cannot safely guess which settings survived.
func parseJson(cfg *Config) {
	path := configFilePath()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return
		}
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.Logins != nil {
		cfg.Logins = jc.Logins
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.MaxWorkers > 0 {
		cfg.MaxWorkers = jc.MaxWorkers
	}
}

// Save writes the current settings back to the config file as indented JSON.
func (c *Config) Save() error {
	jc := JsonConfig{
		Logins:       c.Logins,
		LogLevel:     c.LogLevel,
		DatabasePath: c.DatabasePath,
		MaxWorkers:   c.MaxWorkers,
	}

	buf, err := json.MarshalIndent(jc, "", "    ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(c.ConfigDir, 0o700); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.ConfigDir, "config.json"), buf, 0o600)
}
