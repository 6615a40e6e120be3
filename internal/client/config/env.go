package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/veriauth/internal/flagx"
	"github.com/joho/godotenv"
)

const defaultEnvFile = ".env"

// Environment variable names.
const (
	EnvServerURL          = "VERIAUTH_SERVER_URL"
	EnvRequestTimeout     = "VERIAUTH_REQUEST_TIMEOUT"
	EnvStorageBackend     = "VERIAUTH_STORAGE_BACKEND"
	EnvStorageDSN         = "VERIAUTH_STORAGE_DSN"
	EnvGRPCAddr           = "VERIAUTH_GRPC_ADDR"
	EnvGoogleClientID     = "VERIAUTH_GOOGLE_CLIENT_ID"
	EnvGoogleClientSecret = "VERIAUTH_GOOGLE_CLIENT_SECRET"
	EnvGoogleIssuerURL    = "VERIAUTH_GOOGLE_ISSUER_URL"
	EnvGoogleRedirectAddr = "VERIAUTH_GOOGLE_REDIRECT_ADDR"
	EnvLogLevel           = "VERIAUTH_LOG_LEVEL"
	EnvLogFormat          = "VERIAUTH_LOG_FORMAT"
)

// parseEnv loads the dotenv file into the process environment (existing
// variables win) and overlays every VERIAUTH_* variable that is set. A
// missing default .env is fine; a missing file named with -env is not.
func parseEnv(cfg *Config, args []string) error {
	file := flagx.EnvFile(args)
	explicit := file != ""
	if !explicit {
		file = defaultEnvFile
	}

	if err := godotenv.Load(file); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load env file %s: %w", file, err)
		}
	}

	strs := map[string]*string{
		EnvServerURL:          &cfg.ServerURL,
		EnvStorageBackend:     &cfg.StorageBackend,
		EnvStorageDSN:         &cfg.StorageDSN,
		EnvGRPCAddr:           &cfg.GRPCAddr,
		EnvGoogleClientID:     &cfg.GoogleClientID,
		EnvGoogleClientSecret: &cfg.GoogleClientSecret,
		EnvGoogleIssuerURL:    &cfg.GoogleIssuerURL,
		EnvGoogleRedirectAddr: &cfg.GoogleRedirectAddr,
		EnvLogLevel:           &cfg.LogLevel,
		EnvLogFormat:          &cfg.LogFormat,
	}
	for name, dst := range strs {
		if v, ok := os.LookupEnv(name); ok && v != "" {
			*dst = v
		}
	}

	if v, ok := os.LookupEnv(EnvRequestTimeout); ok && v != "" {
		d, err := parseTimeout(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRequestTimeout, err)
		}
		cfg.RequestTimeout = d
	}
	return nil
}

// parseTimeout accepts a Go duration ("15s") or a bare number of seconds.
func parseTimeout(v string) (time.Duration, error) {
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(v)
}
