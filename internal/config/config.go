// Package config loads the murmur client configuration.
//
// The file lives at ~/.murmur/config.toml (MURMUR_HOME overrides the
// directory) and is created with defaults on first run. MURMUR_API_URL
// overrides the daemon URL for a single invocation.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

type Config struct {
	// APIBaseURL is the agent daemon base URL.
	APIBaseURL string `toml:"api_base_url"`

	// DefaultPersona is used before a selection has been saved.
	DefaultPersona string `toml:"default_persona"`

	// VoiceEnabled starts the client with spoken output on.
	VoiceEnabled bool `toml:"voice_enabled"`

	// SpeechCommand is the TTS command line, e.g. ["espeak"] or
	// ["say", "-v", "Samantha"]. Empty disables speech entirely.
	SpeechCommand []string `toml:"speech_command"`
}

func defaultConfig() *Config {
	return &Config{
		APIBaseURL:     "http://127.0.0.1:8732",
		DefaultPersona: "max",
	}
}

// Load reads the config file, creating it with defaults if absent.
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}
	cfg, err := loadFile(path)
	if err != nil {
		return nil, err
	}
	if url := os.Getenv("MURMUR_API_URL"); url != "" {
		cfg.APIBaseURL = url
	}
	return cfg, nil
}

// Save writes the config back to disk.
func (c *Config) Save() error {
	path, err := configPath()
	if err != nil {
		return err
	}
	return saveFile(c, path)
}

func configPath() (string, error) {
	dir := os.Getenv("MURMUR_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, ".murmur")
	}
	return filepath.Join(dir, "config.toml"), nil
}

// StorePath returns the local preference database location, next to
// the config file.
func StorePath() (string, error) {
	path, err := configPath()
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(path), "murmur.db"), nil
}

func loadFile(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := defaultConfig()
		if err := saveFile(cfg, path); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	cfg := defaultConfig()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func saveFile(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}
