package iocache

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/civiclens/civiclens/schema"
)

func TestValidateTableName(t *testing.T) {
	tests := []struct {
		name      string
		tableName string
		wantErr   bool
	}{
		{"simple", "civiclens_runs", false},
		{"with numbers", "responses_2024", false},
		{"leading underscore", "_tmp", false},
		{"empty", "", true},
		{"leading digit", "1table", true},
		{"injection", "runs; DROP TABLE users", true},
		{"quote", `runs"`, true},
		{"dash", "run-values", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTableName(tt.tableName)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestQuoteTableName(t *testing.T) {
	assert.Equal(t, "`civiclens_runs`", quoteTableName("civiclens_runs", schema.MySQLBackend))
	assert.Equal(t, `"civiclens_runs"`, quoteTableName("civiclens_runs", schema.PostgreSQLBackend))
	assert.Equal(t, `"civiclens_runs"`, quoteTableName("civiclens_runs", schema.SQLiteBackend))
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, []string{"?", "?", "?"}, placeholders(schema.SQLiteBackend, 3))
	assert.Equal(t, []string{"?", "?"}, placeholders(schema.MySQLBackend, 2))
	assert.Equal(t, []string{"$1", "$2", "$3"}, placeholders(schema.PostgreSQLBackend, 3))
}

func TestDriverFor(t *testing.T) {
	tests := []struct {
		backend schema.DatabaseBackend
		driver  string
		wantErr bool
	}{
		{schema.SQLiteBackend, "sqlite", false},
		{schema.MySQLBackend, "mysql", false},
		{schema.PostgreSQLBackend, "pgx", false},
		{schema.NoneBackend, "", true},
		{schema.DatabaseBackend("redis"), "", true},
	}

	for _, tt := range tests {
		t.Run(string(tt.backend), func(t *testing.T) {
			got, err := driverFor(tt.backend)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.driver, got)
		})
	}
}

func TestOpenDBInvalidMySQLDSN(t *testing.T) {
	_, err := openDB(schema.MySQLBackend, "not a dsn", "")
	assert.ErrorContains(t, err, "invalid MySQL connection string")
}
