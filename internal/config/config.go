// Package config loads run settings from the environment, with an optional
// .env file for local development. Flags on the CLI override anything set
// here.
package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all settings for a bedsmap run.
type Config struct {
	FacilityPath   string
	PopulationPath string
	GeometryPath   string
	OutputDir      string

	ReferenceYear   int
	IncludeZeroBeds bool

	ListenAddr      string // empty disables the metrics listener
	ShutdownTimeout time.Duration
	LogLevel        string
	LogFormat       string
}

// Load reads configuration from the environment, applying defaults where
// unset. A .env file in the working directory is merged in first if present;
// its absence is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	year, err := parseInt("REFERENCE_YEAR", 2018)
	if err != nil {
		return nil, err
	}
	if year < 1900 || year > 2100 {
		return nil, errors.New("REFERENCE_YEAR out of range")
	}

	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		FacilityPath:    envOrDefault("FACILITY_FILE", "data/hospitals.csv"),
		PopulationPath:  envOrDefault("POPULATION_FILE", "data/population_estimates.csv"),
		GeometryPath:    envOrDefault("GEOMETRY_FILE", "data/county_map.csv"),
		OutputDir:       envOrDefault("OUTPUT_DIR", "out"),
		ReferenceYear:   year,
		IncludeZeroBeds: os.Getenv("INCLUDE_ZERO_BEDS") == "true",
		ListenAddr:      os.Getenv("LISTEN_ADDR"),
		ShutdownTimeout: shutdownTimeout,
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "text"),
	}

	switch cfg.LogFormat {
	case "json", "text":
	default:
		return nil, errors.New("LOG_FORMAT must be json or text")
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.New("invalid " + key)
	}
	return n, nil
}

func parseDuration(key string, def time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, errors.New("invalid " + key)
	}
	return d, nil
}
