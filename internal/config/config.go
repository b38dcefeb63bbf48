package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jwulan/newsdigest/internal/news"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	Feeds    []Feed   `yaml:"feeds"`
	Keywords []string `yaml:"keywords"`
	Fetch    Fetch    `yaml:"fetch"`
	Server   Server   `yaml:"server"`
	Digest   Digest   `yaml:"digest"`
	Email    Email    `yaml:"email"`
}

// Feed is one configured news source. Category must be one of
// quick, deep or followup (or empty, which items inherit as-is).
type Feed struct {
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	Category string `yaml:"category"`
}

type Fetch struct {
	TimeoutSeconds int `yaml:"timeout_seconds"`
	MaxPerFeed     int `yaml:"max_per_feed"`
}

type Server struct {
	Port     int `yaml:"port"`
	PageSize int `yaml:"page_size"`
}

type Digest struct {
	TopN    int    `yaml:"top_n"`
	Subject string `yaml:"subject"`
	From    string `yaml:"from"`
}

type Email struct {
	APIKeyEnv     string `yaml:"api_key_env"`
	AudienceIDEnv string `yaml:"audience_id_env"`
}

// ConfigDir returns the XDG config directory for newsdigest.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "newsdigest")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/newsdigest/config.yaml > ./config.yaml
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", fmt.Errorf(
		"no config file found; searched:\n  %s\n  ./config.yaml\n\nRun 'newsdigest init' to create a default config",
		xdgConfig,
	)
}

// Load reads and parses a config YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// Default returns the embedded default configuration.
func Default() (*Config, error) {
	return parse(DefaultConfigYAML)
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Fetch: Fetch{
			TimeoutSeconds: 10,
			MaxPerFeed:     5,
		},
		Server: Server{
			Port:     8000,
			PageSize: 20,
		},
		Digest: Digest{
			TopN:    15,
			Subject: "Daily AI News",
			From:    "Daily AI News <digest@localhost>",
		},
		Email: Email{
			APIKeyEnv:     "RESEND_API_KEY",
			AudienceIDEnv: "RESEND_AUDIENCE_ID",
		},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	for i, f := range cfg.Feeds {
		if f.URL == "" {
			return nil, fmt.Errorf("feed %d (%s): missing url", i, f.Name)
		}
		if _, err := news.ParseFeedCategory(f.Category); err != nil {
			return nil, fmt.Errorf("feed %s: %w", f.Name, err)
		}
	}

	return cfg, nil
}

// FetchTimeout returns the per-feed fetch timeout.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
