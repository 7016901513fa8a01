package schema

import "time"

// CacheStatus represents the status of the cache store.
type CacheStatus struct {
	Backend         string    `json:"backend"`
	Connected       bool      `json:"connected"`
	TotalEntries    int       `json:"total_entries"`
	LastEntryTime   time.Time `json:"last_entry_time"`
	OldestEntryTime time.Time `json:"oldest_entry_time"`
	TableSizeBytes  int64     `json:"table_size_bytes"`
}

// RunStatus represents the status of the run store.
type RunStatus struct {
	Backend       string           `json:"backend"`
	Connected     bool             `json:"connected"`
	TotalRuns     int              `json:"total_runs"`
	LastRunID     int64            `json:"last_run_id"`
	LastRunTime   time.Time        `json:"last_run_time"`
	OldestRunTime time.Time        `json:"oldest_run_time"`
	TotalRows     int              `json:"total_rows"`
	TableSizes    map[string]int64 `json:"table_sizes"`
}

// RunRecord represents a row from the civiclens_runs table.
type RunRecord struct {
	RunID       int64
	Kind        RunKind
	StartTime   time.Time
	EndTime     *time.Time
	DurationMs  *int32
	SeriesCount int32
	RowCount    int32
	Params      *string
}

// RunValueRecord represents a row from the civiclens_run_values table.
type RunValueRecord struct {
	RunID      int64
	RowIndex   int32
	Timestamp  int64
	DateLabel  string
	SeriesKey  string
	SeriesName string
	Value      float64
}
