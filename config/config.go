package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment variables
type Config struct {
	Port        string  // HTTP port for the read API
	KRXBaseURL  string  // override for the KRX data portal endpoint (tests)
	ScanWorkers int     // concurrent portfolio fetches during an exposure scan
	RateLimit   float64 // KRX requests per second across all workers
	LogLevel    string
}

const (
	defaultPort        = "8000"
	defaultScanWorkers = 20
	defaultRateLimit   = 50.0
)

// Load reads configuration from environment variables. A .env file in the
// working directory is honored when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:        defaultPort,
		ScanWorkers: defaultScanWorkers,
		RateLimit:   defaultRateLimit,
		LogLevel:    "info",
	}

	if port := os.Getenv("PORT"); port != "" {
		cfg.Port = port
	}

	cfg.KRXBaseURL = os.Getenv("KRX_BASE_URL")

	if workers := os.Getenv("SCAN_WORKERS"); workers != "" {
		n, err := strconv.Atoi(workers)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("SCAN_WORKERS must be a positive integer, got %q", workers)
		}
		cfg.ScanWorkers = n
	}

	if limit := os.Getenv("KRX_RATE_LIMIT"); limit != "" {
		f, err := strconv.ParseFloat(limit, 64)
		if err != nil || f <= 0 {
			return nil, fmt.Errorf("KRX_RATE_LIMIT must be a positive number, got %q", limit)
		}
		cfg.RateLimit = f
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}

	return cfg, nil
}
