package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Sync        SyncConfig        `toml:"sync"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Tidal TidalConfig `toml:"tidal"`
}

// TidalConfig contains TIDAL API credentials and endpoints.
type TidalConfig struct {
	ClientID      string `toml:"client_id"`
	ClientSecret  string `toml:"client_secret"`
	BaseURL       string `toml:"base_url"`
	AuthBaseURL   string `toml:"auth_base_url"`
	TokenEndpoint string `toml:"token_endpoint"`
	UseDummy      bool   `toml:"use_dummy"`
}

// SyncConfig controls the reconciliation runs.
type SyncConfig struct {
	DefaultQuery      string `toml:"default_query"`
	DefaultTrackLimit int    `toml:"default_track_limit"`
	OnStartup         bool   `toml:"on_startup"`
	Scheduled         bool   `toml:"scheduled"`
	IntervalMinutes   int    `toml:"interval_minutes"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Validate checks that the parts of the configuration the sync pipeline
// depends on are present.
func (c *Config) Validate() error {
	if !c.Credentials.Tidal.UseDummy {
		if c.Credentials.Tidal.ClientID == "" || c.Credentials.Tidal.ClientSecret == "" {
			return fmt.Errorf("%w: tidal client_id and client_secret are required", ErrMissingCredentials)
		}
	}
	if c.Sync.DefaultTrackLimit <= 0 {
		return fmt.Errorf("%w: sync default_track_limit must be positive", ErrInvalidConfig)
	}
	return nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
