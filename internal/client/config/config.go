package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds runtime settings for the veriauth CLI.
type Config struct {
	ServerURL      string
	RequestTimeout time.Duration

	StorageBackend string
	StorageDSN     string

	// GRPCAddr is optional; when set, "ping" checks it with the standard
	// health service.
	GRPCAddr string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleIssuerURL    string
	GoogleRedirectAddr string

	LogLevel  string
	LogFormat string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://localhost:8000"
	c.RequestTimeout = 10 * time.Second
	c.StorageBackend = "sqlite"
	c.StorageDSN = defaultSessionFile()
	c.GoogleIssuerURL = "https://accounts.google.com"
	c.GoogleRedirectAddr = "127.0.0.1:0"
	c.LogLevel = "info"
	c.LogFormat = "text"
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "veriauth.db"
	}
	return filepath.Join(home, ".veriauth", "session.db")
}

// Load builds a Config from defaults, the environment, an optional JSON
// file and args (without the program name). Later sources take precedence.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseEnv(cfg, args); err != nil {
		return nil, err
	}
	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig is Load over os.Args.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}
