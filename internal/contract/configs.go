package contract

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/huangsam/repodex/schema"
)

// Default values for configuration.
const (
	DefaultResultLimit = 25
	MaxResultLimit     = 1000
	DefaultPrecision   = 1
	DefaultEmbedModel  = "text-embedding-3-small"
	DefaultEmbedBatch  = 64
	MaxEmbedBatch      = 2048
	DefaultOutDir      = "data"
)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// Config holds the runtime configuration for a build.
// This struct remains the "final, validated" config.
type Config struct {
	InputPath     string
	ActivityPath  string
	OverridesPath string
	TagTablePath  string
	OutDir        string

	ResultLimit int
	Precision   int
	Output      schema.OutputMode
	OutputFile  string
	Width       int // Terminal width override (0 = auto-detect)
	UseColors   bool

	MinTagShard  int
	MinStars     int
	MinDownloads int

	Parquet    bool
	Graph      bool
	Embed      bool
	EmbedModel string
	EmbedBatch int

	Now      time.Time // Clock for the run; fixed when --now is given
	LogLevel string

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	SnapshotBackend   schema.DatabaseBackend
	SnapshotDBConnect string

	RunsBackend   schema.DatabaseBackend
	RunsDBConnect string
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	Out               string `mapstructure:"out"`
	OutputFile        string `mapstructure:"output-file"`
	Limit             int    `mapstructure:"limit"`
	Precision         int    `mapstructure:"precision"`
	Output            string `mapstructure:"output"`
	Width             int    `mapstructure:"width"`
	Color             string `mapstructure:"color"`
	LogLevel          string `mapstructure:"log-level"`
	CacheBackend      string `mapstructure:"cache-backend"`
	CacheDBConnect    string `mapstructure:"cache-db-connect"`
	SnapshotBackend   string `mapstructure:"snapshot-backend"`
	SnapshotDBConnect string `mapstructure:"snapshot-db-connect"`
	RunsBackend       string `mapstructure:"runs-backend"`
	RunsDBConnect     string `mapstructure:"runs-db-connect"`

	// --- Fields from buildCmd.Flags() ---
	Input        string `mapstructure:"input"`
	Activity     string `mapstructure:"activity"`
	Overrides    string `mapstructure:"overrides"`
	TagTable     string `mapstructure:"tag-table"`
	MinTagShard  int    `mapstructure:"min-tag-shard"`
	MinStars     int    `mapstructure:"min-stars"`
	MinDownloads int    `mapstructure:"min-downloads"`
	Parquet      bool   `mapstructure:"parquet"`
	Graph        bool   `mapstructure:"graph"`
	Embed        bool   `mapstructure:"embed"`
	EmbedModel   string `mapstructure:"embed-model"`
	EmbedBatch   int    `mapstructure:"embed-batch"`
	Now          string `mapstructure:"now"`
}

// Clone returns a copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	if err := processBuildInputs(cfg, input); err != nil {
		return err
	}
	return processClock(cfg, input)
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.JSONBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// parseBackend lowercases and checks a backend name. Empty input yields the fallback.
func parseBackend(name, raw string, fallback schema.DatabaseBackend, allowJSON bool) (schema.DatabaseBackend, error) {
	if raw == "" {
		return fallback, nil
	}
	backend := schema.DatabaseBackend(strings.ToLower(raw))
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", fmt.Errorf("invalid %s backend '%s'. must be sqlite, mysql, postgresql, json, none", name, raw)
	}
	if backend == schema.JSONBackend && !allowJSON {
		return "", fmt.Errorf("invalid %s backend '%s'. must be sqlite, mysql, postgresql, none", name, raw)
	}
	return backend, nil
}

// validateBackendConfigs validates cache, snapshot and run-history backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	var err error

	// --- Health Cache Backend Validation ---
	if cfg.CacheBackend, err = parseBackend("cache", input.CacheBackend, schema.SQLiteBackend, true); err != nil {
		return err
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return fmt.Errorf("cache-db-connect: %w", err)
	}

	// --- Snapshot Backend Validation ---
	if cfg.SnapshotBackend, err = parseBackend("snapshot", input.SnapshotBackend, schema.SQLiteBackend, true); err != nil {
		return err
	}
	cfg.SnapshotDBConnect = input.SnapshotDBConnect
	if err := ValidateDatabaseConnectionString(cfg.SnapshotBackend, cfg.SnapshotDBConnect); err != nil {
		return fmt.Errorf("snapshot-db-connect: %w", err)
	}

	// --- Run History Backend Validation ---
	if cfg.RunsBackend, err = parseBackend("runs", input.RunsBackend, schema.NoneBackend, false); err != nil {
		return err
	}
	cfg.RunsDBConnect = input.RunsDBConnect
	if err := ValidateDatabaseConnectionString(cfg.RunsBackend, cfg.RunsDBConnect); err != nil {
		return fmt.Errorf("runs-db-connect: %w", err)
	}

	// The run store is migrated independently, so it must not share a SQLite file with the key/value stores
	if cfg.RunsBackend == schema.SQLiteBackend {
		runsPath := resolveSQLitePath(cfg.RunsDBConnect, GetRunsDBFilePath())
		for _, kv := range []struct {
			backend schema.DatabaseBackend
			connStr string
		}{
			{cfg.CacheBackend, cfg.CacheDBConnect},
			{cfg.SnapshotBackend, cfg.SnapshotDBConnect},
		} {
			if kv.backend != schema.SQLiteBackend {
				continue
			}
			if resolveSQLitePath(kv.connStr, GetCacheDBFilePath()) == runsPath {
				return fmt.Errorf("run history and cache storage must use different SQLite database files. Both resolve to %q", runsPath)
			}
		}
	}

	return nil
}

func resolveSQLitePath(connStr, fallback string) string {
	if connStr == "" {
		return fallback
	}
	if connStr == ":memory:" {
		return connStr
	}
	abs, err := filepath.Abs(connStr)
	if err != nil {
		return connStr
	}
	return abs
}

// validateSimpleInputs processes and validates the output related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.LogLevel = input.LogLevel

	cfg.OutDir = strings.TrimSpace(input.Out)
	if cfg.OutDir == "" {
		cfg.OutDir = DefaultOutDir
	}

	// Parse color flag
	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. ResultLimit Validation ---
	if input.Limit <= 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	// --- 2. Precision and Output Validation ---
	if input.Precision < 1 || input.Precision > 2 {
		return fmt.Errorf("precision must be 1 or 2 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json", cfg.Output)
	}

	return nil
}

// processBuildInputs handles the input paths, filters and optional sections.
func processBuildInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.InputPath = strings.TrimSpace(input.Input)
	cfg.ActivityPath = strings.TrimSpace(input.Activity)
	cfg.OverridesPath = strings.TrimSpace(input.Overrides)
	cfg.TagTablePath = strings.TrimSpace(input.TagTable)
	cfg.Parquet = input.Parquet
	cfg.Graph = input.Graph
	cfg.Embed = input.Embed

	cfg.MinTagShard = input.MinTagShard
	if cfg.MinTagShard == 0 {
		cfg.MinTagShard = schema.MinTagShardSize
	}
	if cfg.MinTagShard < 1 {
		return fmt.Errorf("min-tag-shard must be at least 1 (received %d)", input.MinTagShard)
	}

	if input.MinStars < 0 || input.MinDownloads < 0 {
		return fmt.Errorf("min-stars and min-downloads cannot be negative (received %d, %d)", input.MinStars, input.MinDownloads)
	}
	cfg.MinStars = input.MinStars
	cfg.MinDownloads = input.MinDownloads

	cfg.EmbedModel = strings.TrimSpace(input.EmbedModel)
	if cfg.EmbedModel == "" {
		cfg.EmbedModel = DefaultEmbedModel
	}
	cfg.EmbedBatch = input.EmbedBatch
	if cfg.EmbedBatch == 0 {
		cfg.EmbedBatch = DefaultEmbedBatch
	}
	if cfg.EmbedBatch < 1 || cfg.EmbedBatch > MaxEmbedBatch {
		return fmt.Errorf("embed-batch must be between 1 and %d (received %d)", MaxEmbedBatch, input.EmbedBatch)
	}

	return nil
}

// processClock fixes the run clock, either now or the --now override.
func processClock(cfg *Config, input *ConfigRawInput) error {
	if input.Now == "" {
		cfg.Now = time.Now().UTC()
		return nil
	}
	t, err := time.Parse(DateTimeFormat, input.Now)
	if err != nil {
		return fmt.Errorf("invalid --now value '%s'. Expected RFC3339: %w", input.Now, err)
	}
	cfg.Now = t.UTC()
	return nil
}
