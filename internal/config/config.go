package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all client configuration.
type Config struct {
	// APIBaseURL is the backend root, e.g. https://host/api/v1.
	APIBaseURL string
	// RequestTimeout bounds every outgoing request.
	RequestTimeout time.Duration
	// PageSize is the default table page size.
	PageSize int
	// DownloadDir is where document downloads land.
	DownloadDir string
	// StorePath overrides the local storage location. Empty means default.
	StorePath string
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		APIBaseURL:     "http://localhost:3000/api/v1",
		RequestTimeout: 10 * time.Second,
		PageSize:       10,
		DownloadDir:    ".",
	}
}

// Load builds the configuration from defaults, an optional env file, and the
// process environment (highest precedence). A missing env file is fine.
func Load(envFile string) (Config, error) {
	cfg := Default()

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return Config{}, err
		}
	} else {
		// Best-effort load of a local .env.
		_ = godotenv.Load()
	}

	if v := os.Getenv("PMADMIN_API_URL"); v != "" {
		cfg.APIBaseURL = v
	}
	if v := os.Getenv("PMADMIN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, err
		}
		cfg.RequestTimeout = d
	}
	if v := os.Getenv("PMADMIN_PAGE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, err
		}
		if n > 0 {
			cfg.PageSize = n
		}
	}
	if v := os.Getenv("PMADMIN_DOWNLOAD_DIR"); v != "" {
		cfg.DownloadDir = v
	}
	if v := os.Getenv("PMADMIN_STORE_PATH"); v != "" {
		cfg.StorePath = v
	}

	return cfg, nil
}
