package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// parseEnv overlays MIGRATOOL_* environment variables onto config. A .env
// file in the working directory is loaded first if present.
func parseEnv(config *Config) error {
	_ = godotenv.Load()

	if v := os.Getenv("MIGRATOOL_SOURCE_DSN"); v != "" {
		config.SourceDSN = v
	}
	if v := os.Getenv("MIGRATOOL_TARGET_DSN"); v != "" {
		config.TargetDSN = v
	}
	if v := os.Getenv("MIGRATOOL_BATCH_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid MIGRATOOL_BATCH_SIZE: %w", err)
		}
		config.BatchSize = n
	}
	if v := os.Getenv("MIGRATOOL_DRY_RUN"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid MIGRATOOL_DRY_RUN: %w", err)
		}
		config.DryRun = b
	}
	if v := os.Getenv("MIGRATOOL_LOG_LEVEL"); v != "" {
		config.LogLevel = v
	}
	if v := os.Getenv("MIGRATOOL_LOG_JSON"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid MIGRATOOL_LOG_JSON: %w", err)
		}
		config.LogJSON = b
	}
	return nil
}
