// Package config handles configuration for the migration tool, including
// defaults, JSON overlay, and environment variables. Command-line flags are
// applied on top by the CLI layer.
package config

// Config holds runtime settings for a migration run.
//
// Fields:
//   - SourceDSN: MariaDB/MySQL DSN of the legacy database.
//   - TargetDSN: PostgreSQL DSN (pgx) of the redesigned database.
//   - BatchSize: rows per upsert statement.
//   - DryRun: execute fully but roll back everything.
//   - LogLevel / LogJSON: logging verbosity and output format.
type Config struct {
	SourceDSN string
	TargetDSN string
	BatchSize int
	DryRun    bool
	LogLevel  string
	LogJSON   bool
}

// LoadDefaults populates Config with sensible defaults. DSNs have no
// default; they must come from a config file, the environment, or flags.
func (c *Config) LoadDefaults() {
	c.BatchSize = 500
	c.LogLevel = "info"
}

// Load builds a Config by applying defaults, then overlaying values from an
// optional JSON file (empty path skips it) and finally from the
// environment.
func Load(jsonPath string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJSON(cfg, jsonPath); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
