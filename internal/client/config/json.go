package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/veriauth/internal/flagx"
	"github.com/dmitrijs2005/veriauth/internal/timex"
)

// jsonConfig is the on-disk shape. Zero values leave the current setting in
// place.
type jsonConfig struct {
	ServerURL          string         `json:"server_url"`
	RequestTimeout     timex.Duration `json:"request_timeout"`
	StorageBackend     string         `json:"storage_backend"`
	StorageDSN         string         `json:"storage_dsn"`
	GRPCAddr           string         `json:"grpc_addr"`
	GoogleClientID     string         `json:"google_client_id"`
	GoogleClientSecret string         `json:"google_client_secret"`
	GoogleIssuerURL    string         `json:"google_issuer_url"`
	GoogleRedirectAddr string         `json:"google_redirect_addr"`
	LogLevel           string         `json:"log_level"`
	LogFormat          string         `json:"log_format"`
}

// parseJSON overlays cfg with the file named by -c/-config, if any.
func parseJSON(cfg *Config, args []string) error {
	path := flagx.ConfigFile(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var jc jsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setIf(&cfg.ServerURL, jc.ServerURL)
	setIf(&cfg.StorageBackend, jc.StorageBackend)
	setIf(&cfg.StorageDSN, jc.StorageDSN)
	setIf(&cfg.GRPCAddr, jc.GRPCAddr)
	setIf(&cfg.GoogleClientID, jc.GoogleClientID)
	setIf(&cfg.GoogleClientSecret, jc.GoogleClientSecret)
	setIf(&cfg.GoogleIssuerURL, jc.GoogleIssuerURL)
	setIf(&cfg.GoogleRedirectAddr, jc.GoogleRedirectAddr)
	setIf(&cfg.LogLevel, jc.LogLevel)
	setIf(&cfg.LogFormat, jc.LogFormat)
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	return nil
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
