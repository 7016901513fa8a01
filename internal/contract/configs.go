package contract

import (
	"fmt"
	"net/url"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/civiclens/civiclens/schema"
)

// Default values for configuration.
const (
	DefaultAPIURL     = "http://localhost:8000"
	DefaultAPITimeout = 30 * time.Second
	DefaultCacheTTL   = time.Hour
	DefaultPrecision  = 1
	MaxPrecision      = 4
	DefaultTension    = 0.5
	MaxTension        = 2.0
	DefaultDateFormat = "2006-01-02 15:04"
	DefaultListenAddr = ":8080"
	DefaultLogLevel   = "warn"
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration for every command.
// This struct remains the "final, validated" config.
type Config struct {
	APIURL     string
	APITimeout time.Duration

	EventIDs []int

	Output     schema.OutputMode
	OutputFile string
	Precision  int
	Workers    int
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool

	Metric             schema.Metric
	Cumulative         bool
	IncludePredictions bool
	StartTime          time.Time // zero means unbounded
	EndTime            time.Time // zero means unbounded
	DateFormat         string

	Tension    float64
	Closed     bool
	ChartStyle string

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext
	CacheTTL       time.Duration

	RunBackend   schema.DatabaseBackend
	RunDBConnect string // Please use env var as this is plaintext

	LogLevel string
	Listen   string

	Session Session
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	EventArgs []string

	// --- Fields from rootCmd.PersistentFlags() ---
	APIURL         string `mapstructure:"api-url"`
	APITimeout     string `mapstructure:"api-timeout"`
	Output         string `mapstructure:"output"`
	OutputFile     string `mapstructure:"output-file"`
	Precision      int    `mapstructure:"precision"`
	Workers        int    `mapstructure:"workers"`
	Width          int    `mapstructure:"width"`
	Color          string `mapstructure:"color"`
	CacheBackend   string `mapstructure:"cache-backend"`
	CacheDBConnect string `mapstructure:"cache-db-connect"`
	CacheTTL       string `mapstructure:"cache-ttl"`
	RunBackend     string `mapstructure:"run-backend"`
	RunDBConnect   string `mapstructure:"run-db-connect"`
	LogLevel       string `mapstructure:"log-level"`

	// --- Fields from the timeline commands ---
	Metric             string `mapstructure:"metric"`
	Cumulative         bool   `mapstructure:"cumulative"`
	IncludePredictions bool   `mapstructure:"include-predictions"`
	Start              string `mapstructure:"start"`
	End                string `mapstructure:"end"`
	DateFormat         string `mapstructure:"date-format"`

	// --- Fields from trendCmd.Flags() ---
	Tension    float64 `mapstructure:"tension"`
	Closed     bool    `mapstructure:"closed"`
	ChartStyle string  `mapstructure:"chart-style"`

	// --- Fields from serveCmd.Flags() ---
	Listen string `mapstructure:"listen"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.EventIDs != nil {
		clone.EventIDs = make([]int, len(c.EventIDs))
		copy(clone.EventIDs, c.EventIDs)
	}
	return &clone
}

// InRange reports whether t falls inside the configured start and end bounds.
func (c *Config) InRange(t time.Time) bool {
	if !c.StartTime.IsZero() && t.Before(c.StartTime) {
		return false
	}
	if !c.EndTime.IsZero() && t.After(c.EndTime) {
		return false
	}
	return true
}

// ProcessAndValidate performs all complex parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processAPISettings(cfg, input); err != nil {
		return err
	}
	if err := processTimeRange(cfg, input); err != nil {
		return err
	}
	if err := processChartSettings(cfg, input); err != nil {
		return err
	}
	if err := processEventIDs(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
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

// ParseID parses a positive backend identifier.
func ParseID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q: must be a positive integer", s)
	}
	return id, nil
}

// ParseIDList parses a comma separated list of positive identifiers.
func ParseIDList(s string) ([]int, error) {
	var ids []int
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := ParseID(part)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no ids in %q", s)
	}
	return ids, nil
}

// ParseMetric parses a metric name case-insensitively.
func ParseMetric(raw string) (schema.Metric, error) {
	metric := schema.Metric(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := schema.ValidMetrics[metric]; !ok {
		return "", fmt.Errorf("invalid metric '%s'. must be engagement, likes, comments", raw)
	}
	return metric, nil
}

// ApplyMetric overrides the metric when raw is set.
func (c *Config) ApplyMetric(raw string) error {
	if raw == "" {
		return nil
	}
	metric, err := ParseMetric(raw)
	if err != nil {
		return err
	}
	c.Metric = metric
	return nil
}

// validateBackendConfigs validates cache and run backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return fmt.Errorf("cache-db-connect: %w", err)
	}

	cfg.CacheTTL = DefaultCacheTTL
	if input.CacheTTL != "" {
		ttl, err := ParseLookbackDuration(input.CacheTTL)
		if err != nil {
			return fmt.Errorf("invalid cache-ttl: %w", err)
		}
		cfg.CacheTTL = ttl
	}

	// --- Run Backend Validation ---
	cfg.RunBackend = schema.DatabaseBackend(strings.ToLower(input.RunBackend))
	if cfg.RunBackend == "" {
		return nil
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.RunBackend]; !ok {
		return fmt.Errorf("invalid run backend '%s'. must be sqlite, mysql, postgresql, none", input.RunBackend)
	}
	cfg.RunDBConnect = input.RunDBConnect
	if err := ValidateDatabaseConnectionString(cfg.RunBackend, cfg.RunDBConnect); err != nil {
		return fmt.Errorf("run-db-connect: %w", err)
	}

	// Cache clears drop the whole file, so runs must live elsewhere
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.RunBackend == schema.SQLiteBackend {
		cacheDBPath := cfg.CacheDBConnect
		if cacheDBPath == "" {
			cacheDBPath = GetCacheDBFilePath()
		}
		runDBPath := cfg.RunDBConnect
		if runDBPath == "" {
			runDBPath = GetRunDBFilePath()
		}
		if cacheDBPath == runDBPath {
			return fmt.Errorf("cache and run storage must use different SQLite database files. Both resolve to %q", cacheDBPath)
		}
	}

	return nil
}

// validateSimpleInputs processes and validates the output and storage fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.Cumulative = input.Cumulative
	cfg.IncludePredictions = input.IncludePredictions
	cfg.Closed = input.Closed
	cfg.ChartStyle = input.ChartStyle

	// Parse color flag
	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. Workers Validation ---
	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	// --- 2. Precision and Output Validation ---
	if input.Precision < 0 || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 0 and %d (received %d)", MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet, svg, png", input.Output)
	}
	if (cfg.Output == schema.ParquetOut || cfg.Output == schema.PNGOut) && cfg.OutputFile == "" {
		return fmt.Errorf("--output-file is required for %s output", cfg.Output)
	}

	// --- 3. Metric Validation ---
	cfg.Metric = schema.EngagementMetric
	if err := cfg.ApplyMetric(input.Metric); err != nil {
		return err
	}

	// --- 4. Log level ---
	cfg.LogLevel = strings.ToLower(input.LogLevel)
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level '%s'. must be debug, info, warn, error", input.LogLevel)
	}

	cfg.Listen = input.Listen
	if cfg.Listen == "" {
		cfg.Listen = DefaultListenAddr
	}

	// --- 5. Backend Validation ---
	return validateBackendConfigs(cfg, input)
}

// processAPISettings validates the backend location and request timeout.
func processAPISettings(cfg *Config, input *ConfigRawInput) error {
	raw := strings.TrimSpace(input.APIURL)
	if raw == "" {
		raw = DefaultAPIURL
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid api-url '%s'. must be an absolute http or https URL", input.APIURL)
	}
	cfg.APIURL = strings.TrimRight(raw, "/")

	cfg.APITimeout = DefaultAPITimeout
	if input.APITimeout != "" {
		timeout, err := ParseLookbackDuration(input.APITimeout)
		if err != nil {
			return fmt.Errorf("invalid api-timeout: %w", err)
		}
		cfg.APITimeout = timeout
	}
	return nil
}

// processTimeRange handles the optional date bounds of the timeline commands.
func processTimeRange(cfg *Config, input *ConfigRawInput) error {
	now := time.Now()
	cfg.StartTime = time.Time{}
	cfg.EndTime = time.Time{}

	parse := func(label, s string) (time.Time, error) {
		if t, ok := schema.ParseBackendTime(s); ok {
			return t, nil
		}
		t, err := ParseRelativeTime(s, now)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid %s date format for '%s'. Expected absolute ISO8601 or 'N [units] ago'", label, s)
		}
		return t.UTC(), nil
	}

	if input.Start != "" {
		t, err := parse("start", input.Start)
		if err != nil {
			return err
		}
		cfg.StartTime = t
	}
	if input.End != "" {
		t, err := parse("end", input.End)
		if err != nil {
			return err
		}
		cfg.EndTime = t
	}

	// --- Final Validation ---
	if !cfg.StartTime.IsZero() && !cfg.EndTime.IsZero() && cfg.StartTime.After(cfg.EndTime) {
		return fmt.Errorf("start time (%s) cannot be after end time (%s)", cfg.StartTime.Format(DateTimeFormat), cfg.EndTime.Format(DateTimeFormat))
	}

	cfg.DateFormat = input.DateFormat
	if cfg.DateFormat == "" {
		cfg.DateFormat = DefaultDateFormat
	}
	return nil
}

// processChartSettings validates the curve tension.
func processChartSettings(cfg *Config, input *ConfigRawInput) error {
	if input.Tension <= 0 || input.Tension > MaxTension {
		return fmt.Errorf("tension must be greater than 0 and at most %.1f (received %g)", MaxTension, input.Tension)
	}
	cfg.Tension = input.Tension
	return nil
}

// processEventIDs parses positional event ids. Commands check how many they need.
func processEventIDs(cfg *Config, input *ConfigRawInput) error {
	cfg.EventIDs = nil
	for _, arg := range input.EventArgs {
		ids, err := ParseIDList(arg)
		if err != nil {
			return err
		}
		cfg.EventIDs = append(cfg.EventIDs, ids...)
	}
	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}
