package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime setting of the engine.
type Config struct {
	DatabaseURL string
	ServerPort  int

	// SchedulerInterval is how often expired active competitions are swept
	// and settled.
	SchedulerInterval time.Duration

	// Settlement audit archive (S3-compatible). Optional: with an empty
	// bucket the archive is disabled and settlements skip the upload.
	ArchiveEndpoint        string
	ArchiveRegion          string
	ArchiveAccessKeyID     string
	ArchiveSecretAccessKey string
	ArchiveBucketName      string
	ArchivePublicBaseURL   string
}

// Load reads configuration from environment variables, optionally seeded
// from a local .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	portStr := os.Getenv("SERVER_PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	interval := 60 * time.Second
	if intervalStr := os.Getenv("SCHEDULER_INTERVAL"); intervalStr != "" {
		interval, err = time.ParseDuration(intervalStr)
		if err != nil {
			return nil, fmt.Errorf("invalid SCHEDULER_INTERVAL environment variable: %w", err)
		}
		if interval < time.Second {
			return nil, fmt.Errorf("SCHEDULER_INTERVAL must be at least 1s, got %v", interval)
		}
	}

	cfg := &Config{
		DatabaseURL:            dbURL,
		ServerPort:             port,
		SchedulerInterval:      interval,
		ArchiveEndpoint:        os.Getenv("ARCHIVE_ENDPOINT"),
		ArchiveRegion:          os.Getenv("ARCHIVE_REGION"),
		ArchiveAccessKeyID:     os.Getenv("ARCHIVE_ACCESS_KEY_ID"),
		ArchiveSecretAccessKey: os.Getenv("ARCHIVE_SECRET_ACCESS_KEY"),
		ArchiveBucketName:      os.Getenv("ARCHIVE_BUCKET_NAME"),
		ArchivePublicBaseURL:   os.Getenv("ARCHIVE_PUBLIC_BASE_URL"),
	}

	return cfg, nil
}

// ArchiveEnabled reports whether the audit archive is configured.
func (c *Config) ArchiveEnabled() bool {
	return c.ArchiveBucketName != "" && c.ArchiveAccessKeyID != "" && c.ArchiveSecretAccessKey != ""
}
