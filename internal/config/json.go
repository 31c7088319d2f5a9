package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// jsonConfig is an intermediate DTO used only for reading JSON
// configuration files. Pointer fields distinguish "absent" from zero
// values so the overlay never clobbers defaults.
type jsonConfig struct {
	SourceDSN *string `json:"source_dsn"`
	TargetDSN *string `json:"target_dsn"`
	BatchSize *int    `json:"batch_size"`
	DryRun    *bool   `json:"dry_run"`
	LogLevel  *string `json:"log_level"`
	LogJSON   *bool   `json:"log_json"`
}

// parseJSON overlays values from the JSON file at path onto config. An
// empty path means no file was configured and is not an error.
func parseJSON(config *Config, path string) error {
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &jsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	if c.SourceDSN != nil {
		config.SourceDSN = *c.SourceDSN
	}
	if c.TargetDSN != nil {
		config.TargetDSN = *c.TargetDSN
	}
	if c.BatchSize != nil {
		config.BatchSize = *c.BatchSize
	}
	if c.DryRun != nil {
		config.DryRun = *c.DryRun
	}
	if c.LogLevel != nil {
		config.LogLevel = *c.LogLevel
	}
	if c.LogJSON != nil {
		config.LogJSON = *c.LogJSON
	}
	return nil
}
