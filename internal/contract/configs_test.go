package contract

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civiclens/civiclens/schema"
)

// validInput returns the raw input produced by the default flag values.
func validInput() *ConfigRawInput {
	return &ConfigRawInput{
		APIURL:       DefaultAPIURL,
		APITimeout:   "30s",
		Output:       "text",
		Precision:    1,
		Workers:      4,
		Color:        "yes",
		CacheBackend: string(schema.SQLiteBackend),
		CacheTTL:     "1 hour",
		Metric:       string(schema.EngagementMetric),
		Tension:      DefaultTension,
		LogLevel:     "warn",
	}
}

func TestProcessAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		modify      func(*ConfigRawInput)
		expectError bool
	}{
		{name: "valid defaults", modify: func(*ConfigRawInput) {}},
		{name: "invalid workers (zero)", modify: func(in *ConfigRawInput) { in.Workers = 0 }, expectError: true},
		{name: "invalid workers (negative)", modify: func(in *ConfigRawInput) { in.Workers = -1 }, expectError: true},
		{name: "precision zero is allowed", modify: func(in *ConfigRawInput) { in.Precision = 0 }},
		{name: "invalid precision (too high)", modify: func(in *ConfigRawInput) { in.Precision = 5 }, expectError: true},
		{name: "invalid output format", modify: func(in *ConfigRawInput) { in.Output = "xml" }, expectError: true},
		{name: "svg output to stdout", modify: func(in *ConfigRawInput) { in.Output = "SVG" }},
		{name: "png output needs a file", modify: func(in *ConfigRawInput) { in.Output = "png" }, expectError: true},
		{name: "parquet output needs a file", modify: func(in *ConfigRawInput) { in.Output = "parquet" }, expectError: true},
		{
			name: "parquet output with file",
			modify: func(in *ConfigRawInput) {
				in.Output = "parquet"
				in.OutputFile = "merged.parquet"
			},
		},
		{name: "invalid metric", modify: func(in *ConfigRawInput) { in.Metric = "shares" }, expectError: true},
		{name: "empty metric defaults", modify: func(in *ConfigRawInput) { in.Metric = "" }},
		{name: "invalid color", modify: func(in *ConfigRawInput) { in.Color = "sometimes" }, expectError: true},
		{name: "invalid log level", modify: func(in *ConfigRawInput) { in.LogLevel = "trace" }, expectError: true},
		{name: "relative api url", modify: func(in *ConfigRawInput) { in.APIURL = "/api" }, expectError: true},
		{name: "non http api url", modify: func(in *ConfigRawInput) { in.APIURL = "ftp://backend" }, expectError: true},
		{name: "invalid api timeout", modify: func(in *ConfigRawInput) { in.APITimeout = "soon" }, expectError: true},
		{name: "zero tension", modify: func(in *ConfigRawInput) { in.Tension = 0 }, expectError: true},
		{name: "tension too high", modify: func(in *ConfigRawInput) { in.Tension = 2.5 }, expectError: true},
		{name: "tension at max", modify: func(in *ConfigRawInput) { in.Tension = 2 }},
		{name: "absolute start", modify: func(in *ConfigRawInput) { in.Start = "2024-03-01T00:00:00Z" }},
		{name: "relative start", modify: func(in *ConfigRawInput) { in.Start = "2 weeks ago" }},
		{name: "invalid start", modify: func(in *ConfigRawInput) { in.Start = "last tuesday" }, expectError: true},
		{
			name: "start after end",
			modify: func(in *ConfigRawInput) {
				in.Start = "2024-03-02"
				in.End = "2024-03-01"
			},
			expectError: true,
		},
		{name: "event ids", modify: func(in *ConfigRawInput) { in.EventArgs = []string{"1,2", "3"} }},
		{name: "bad event id", modify: func(in *ConfigRawInput) { in.EventArgs = []string{"one"} }, expectError: true},
		{name: "invalid cache backend", modify: func(in *ConfigRawInput) { in.CacheBackend = "redis" }, expectError: true},
		{name: "invalid cache ttl", modify: func(in *ConfigRawInput) { in.CacheTTL = "forever" }, expectError: true},
		{
			name:        "mysql backend without connection string",
			modify:      func(in *ConfigRawInput) { in.CacheBackend = string(schema.MySQLBackend) },
			expectError: true,
		},
		{
			name:        "postgresql backend without connection string",
			modify:      func(in *ConfigRawInput) { in.CacheBackend = string(schema.PostgreSQLBackend) },
			expectError: true,
		},
		{
			name: "mysql backend with connection string",
			modify: func(in *ConfigRawInput) {
				in.CacheBackend = string(schema.MySQLBackend)
				in.CacheDBConnect = "user:pass@tcp(localhost:3306)/civiclens"
			},
		},
		{name: "none backend", modify: func(in *ConfigRawInput) { in.CacheBackend = string(schema.NoneBackend) }},
		{name: "sqlite run backend", modify: func(in *ConfigRawInput) { in.RunBackend = string(schema.SQLiteBackend) }},
		{
			name: "cache and runs share a sqlite file",
			modify: func(in *ConfigRawInput) {
				in.RunBackend = string(schema.SQLiteBackend)
				in.RunDBConnect = GetCacheDBFilePath()
			},
			expectError: true,
		},
		{
			name: "postgres run backend",
			modify: func(in *ConfigRawInput) {
				in.RunBackend = string(schema.PostgreSQLBackend)
				in.RunDBConnect = "host=localhost user=postgres dbname=civiclens sslmode=disable"
			},
		},
		{name: "invalid run backend", modify: func(in *ConfigRawInput) { in.RunBackend = "redis" }, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.modify(input)

			cfg := &Config{}
			err := ProcessAndValidate(cfg, input)

			if tt.expectError {
				assert.Error(t, err, "ProcessAndValidate should return an error for %s", tt.name)
				return
			}
			require.NoError(t, err, "ProcessAndValidate should not return an error for %s", tt.name)
			assert.Equal(t, input.Workers, cfg.Workers)
			assert.NotEmpty(t, cfg.Metric)
			assert.NotEmpty(t, cfg.DateFormat)
		})
	}
}

func TestProcessAndValidateFields(t *testing.T) {
	input := validInput()
	input.APIURL = "https://civic.example.org/"
	input.APITimeout = "2 minutes"
	input.Output = "JSON"
	input.Metric = "Likes"
	input.Start = "2024-03-01 08:00:00"
	input.End = "2024-03-31"
	input.EventArgs = []string{"4", "9,11"}
	input.Cumulative = true
	input.CacheTTL = "15m"

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))

	assert.Equal(t, "https://civic.example.org", cfg.APIURL)
	assert.Equal(t, 2*time.Minute, cfg.APITimeout)
	assert.Equal(t, schema.JSONOut, cfg.Output)
	assert.Equal(t, schema.LikesMetric, cfg.Metric)
	assert.Equal(t, time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC), cfg.StartTime)
	assert.Equal(t, time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), cfg.EndTime)
	assert.Equal(t, []int{4, 9, 11}, cfg.EventIDs)
	assert.True(t, cfg.Cumulative)
	assert.True(t, cfg.UseColors)
	assert.Equal(t, 15*time.Minute, cfg.CacheTTL)
	assert.Equal(t, DefaultDateFormat, cfg.DateFormat)
	assert.Equal(t, DefaultListenAddr, cfg.Listen)
}

func TestConfigInRange(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	unbounded := &Config{}
	assert.True(t, unbounded.InRange(time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)))

	bounded := &Config{StartTime: start, EndTime: end}
	assert.True(t, bounded.InRange(start), "start is inclusive")
	assert.True(t, bounded.InRange(end), "end is inclusive")
	assert.False(t, bounded.InRange(start.Add(-time.Second)))
	assert.False(t, bounded.InRange(end.Add(time.Second)))
}

func TestConfigClone(t *testing.T) {
	cfg := &Config{EventIDs: []int{1, 2}, Metric: schema.LikesMetric}
	clone := cfg.Clone()
	clone.EventIDs[0] = 99
	clone.Metric = schema.CommentsMetric

	assert.Equal(t, []int{1, 2}, cfg.EventIDs)
	assert.Equal(t, schema.LikesMetric, cfg.Metric)
}

func TestParseIDList(t *testing.T) {
	tests := []struct {
		input     string
		expected  []int
		expectErr bool
	}{
		{"1", []int{1}, false},
		{"1, 2,3", []int{1, 2, 3}, false},
		{"4,,5,", []int{4, 5}, false},
		{"", nil, true},
		{"0", nil, true},
		{"-3", nil, true},
		{"a,1", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseIDList(tt.input)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestApplyMetric(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected schema.Metric
		wantErr  string
	}{
		{name: "empty keeps current", raw: "", expected: schema.CommentsMetric},
		{name: "likes", raw: "likes", expected: schema.LikesMetric},
		{name: "case insensitive", raw: "Engagement", expected: schema.EngagementMetric},
		{name: "unknown", raw: "shares", expected: schema.CommentsMetric, wantErr: "invalid metric 'shares'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Metric: schema.CommentsMetric}
			err := cfg.ApplyMetric(tt.raw)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.expected, cfg.Metric)
		})
	}

	_, err := ParseMetric("")
	assert.Error(t, err)
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	tests := []struct {
		name      string
		backend   schema.DatabaseBackend
		conn      string
		expectErr bool
	}{
		{"sqlite empty", schema.SQLiteBackend, "", false},
		{"sqlite path", schema.SQLiteBackend, filepath.Join("tmp", "x.db"), false},
		{"none", schema.NoneBackend, "", false},
		{"mysql ok", schema.MySQLBackend, "root:pw@tcp(localhost:3306)/civiclens", false},
		{"mysql missing tcp", schema.MySQLBackend, "root:pw@localhost/civiclens", true},
		{"postgres ok", schema.PostgreSQLBackend, "host=localhost dbname=civiclens", false},
		{"postgres missing dbname", schema.PostgreSQLBackend, "host=localhost", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDatabaseConnectionString(tt.backend, tt.conn)
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
