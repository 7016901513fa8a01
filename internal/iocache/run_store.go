package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/civiclens/civiclens/internal/contract"
	"github.com/civiclens/civiclens/schema"
)

// Table names for run tracking.
const (
	RunsTable      = "civiclens_runs"
	RunValuesTable = "civiclens_run_values"
)

// RunStoreImpl records merge and trend runs in SQL tables.
type RunStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
	connStr string
}

var _ contract.RunStore = &RunStoreImpl{} // Compile-time check

// NewRunStore opens the run tables for the backend, creating them when needed.
func NewRunStore(backend schema.DatabaseBackend, connStr string) (contract.RunStore, error) {
	if backend == schema.NoneBackend {
		return &RunStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr, contract.GetRunDBFilePath())
	if err != nil {
		return nil, err
	}

	if err := createRunTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create run tables: %w", err)
	}

	return &RunStoreImpl{db: db, backend: backend, connStr: connStr}, nil
}

// createRunTables creates the run tracking tables.
func createRunTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{RunsTable, getCreateRunsQuery(backend)},
		{RunValuesTable, getCreateRunValuesQuery(backend)},
	}

	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}
	return nil
}

// getCreateRunsQuery returns the CREATE TABLE query for civiclens_runs.
func getCreateRunsQuery(backend schema.DatabaseBackend) string {
	quoted := quoteTableName(RunsTable, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				run_kind VARCHAR(16) NOT NULL,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms INT,
				series_count INT NOT NULL DEFAULT 0,
				row_count INT NOT NULL DEFAULT 0,
				run_params TEXT
			);
		`, quoted)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGSERIAL PRIMARY KEY,
				run_kind TEXT NOT NULL,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms INTEGER,
				series_count INTEGER NOT NULL DEFAULT 0,
				row_count INTEGER NOT NULL DEFAULT 0,
				run_params TEXT
			);
		`, quoted)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER PRIMARY KEY AUTOINCREMENT,
				run_kind TEXT NOT NULL,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				series_count INTEGER NOT NULL DEFAULT 0,
				row_count INTEGER NOT NULL DEFAULT 0,
				run_params TEXT
			);
		`, quoted)
	}
}

// getCreateRunValuesQuery returns the CREATE TABLE query for civiclens_run_values.
func getCreateRunValuesQuery(backend schema.DatabaseBackend) string {
	quoted := quoteTableName(RunValuesTable, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				row_index INT NOT NULL,
				point_timestamp BIGINT NOT NULL,
				date_label VARCHAR(64) NOT NULL,
				series_key VARCHAR(32) NOT NULL,
				series_name VARCHAR(255) NOT NULL,
				value DOUBLE NOT NULL,
				PRIMARY KEY (run_id, row_index, series_key)
			);
		`, quoted)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				row_index INTEGER NOT NULL,
				point_timestamp BIGINT NOT NULL,
				date_label TEXT NOT NULL,
				series_key TEXT NOT NULL,
				series_name TEXT NOT NULL,
				value DOUBLE PRECISION NOT NULL,
				PRIMARY KEY (run_id, row_index, series_key)
			);
		`, quoted)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER NOT NULL,
				row_index INTEGER NOT NULL,
				point_timestamp INTEGER NOT NULL,
				date_label TEXT NOT NULL,
				series_key TEXT NOT NULL,
				series_name TEXT NOT NULL,
				value REAL NOT NULL,
				PRIMARY KEY (run_id, row_index, series_key)
			);
		`, quoted)
	}
}

// BeginRun creates a new run and returns its unique ID.
func (rs *RunStoreImpl) BeginRun(kind schema.RunKind, startTime time.Time, params map[string]any) (int64, error) {
	if rs.db == nil {
		return 0, nil
	}

	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal run params: %w", err)
	}

	quoted := quoteTableName(RunsTable, rs.backend)
	args := []any{string(kind), formatTime(startTime, rs.backend), string(paramsJSON)}

	var runID int64
	switch rs.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (run_kind, start_time, run_params) VALUES ($1, $2, $3) RETURNING run_id`, quoted)
		err = rs.db.QueryRow(query, args...).Scan(&runID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (run_kind, start_time, run_params) VALUES (?, ?, ?)`, quoted)
		var result sql.Result
		result, err = rs.db.Exec(query, args...)
		if err == nil {
			runID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	return runID, nil
}

// RecordMergedRows stores every cell of rows as one record in a single transaction.
// names[i] labels the series at index i; missing names fall back to the series key.
func (rs *RunStoreImpl) RecordMergedRows(runID int64, rows []schema.MergedRow, names []string) error {
	if rs.db == nil || len(rows) == 0 {
		return nil
	}

	tx, err := rs.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := fmt.Sprintf(`INSERT INTO %s (run_id, row_index, point_timestamp, date_label, series_key, series_name, value) VALUES (%s)`,
		quoteTableName(RunValuesTable, rs.backend), strings.Join(placeholders(rs.backend, 7), ", "))
	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for rowIdx, row := range rows {
		for seriesIdx, value := range row.Values {
			key := schema.SeriesKey(seriesIdx)
			name := key
			if seriesIdx < len(names) && names[seriesIdx] != "" {
				name = names[seriesIdx]
			}
			if _, err := stmt.Exec(runID, rowIdx, row.Timestamp, row.Date, key, name, value); err != nil {
				return fmt.Errorf("failed to insert row %d of run %d: %w", rowIdx, runID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run values: %w", err)
	}
	return nil
}

// EndRun updates the run with completion data.
func (rs *RunStoreImpl) EndRun(runID int64, endTime time.Time, seriesCount, rowCount int) error {
	if rs.db == nil {
		return nil
	}

	quoted := quoteTableName(RunsTable, rs.backend)
	ph := placeholders(rs.backend, 5)

	row := rs.db.QueryRow(fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = %s`, quoted, ph[0]), runID)
	startTime, err := scanTime(row, rs.backend)
	if err != nil {
		return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}

	durationMs := endTime.Sub(startTime).Milliseconds()
	query := fmt.Sprintf(`UPDATE %s SET end_time = %s, run_duration_ms = %s, series_count = %s, row_count = %s WHERE run_id = %s`,
		quoted, ph[0], ph[1], ph[2], ph[3], ph[4])
	if _, err := rs.db.Exec(query, formatTime(endTime, rs.backend), durationMs, seriesCount, rowCount, runID); err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	return nil
}

// scanTime reads a single timestamp column stored by formatTime.
func scanTime(row *sql.Row, backend schema.DatabaseBackend) (time.Time, error) {
	if backend == schema.SQLiteBackend {
		var s string
		if err := row.Scan(&s); err != nil {
			return time.Time{}, err
		}
		return parseSQLiteTime(s)
	}
	var t time.Time
	if err := row.Scan(&t); err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// Close closes the underlying connection.
func (rs *RunStoreImpl) Close() error {
	if rs.db != nil {
		return rs.db.Close()
	}
	return nil
}

// GetStatus returns run counts, the latest run and per-table sizes.
func (rs *RunStoreImpl) GetStatus() (schema.RunStatus, error) {
	status := schema.RunStatus{
		Backend:    string(rs.backend),
		Connected:  rs.db != nil,
		TableSizes: make(map[string]int64),
	}
	if rs.db == nil {
		return status, nil
	}

	runsQuoted := quoteTableName(RunsTable, rs.backend)
	if err := rs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", runsQuoted)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}
	valuesQuoted := quoteTableName(RunValuesTable, rs.backend)
	if err := rs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", valuesQuoted)).Scan(&status.TotalRows); err != nil {
		return status, fmt.Errorf("failed to get total values: %w", err)
	}

	if status.TotalRuns > 0 {
		if err := rs.db.QueryRow(fmt.Sprintf("SELECT MAX(run_id) FROM %s", runsQuoted)).Scan(&status.LastRunID); err != nil {
			return status, fmt.Errorf("failed to get last run id: %w", err)
		}
		ph := placeholders(rs.backend, 1)[0]
		last, err := scanTime(rs.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s WHERE run_id = %s", runsQuoted, ph), status.LastRunID), rs.backend)
		if err != nil {
			return status, fmt.Errorf("failed to get last run time: %w", err)
		}
		oldest, err := scanTime(rs.db.QueryRow(fmt.Sprintf("SELECT MIN(start_time) FROM %s", runsQuoted)), rs.backend)
		if err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		status.LastRunTime = last
		status.OldestRunTime = oldest
	}

	status.TableSizes[RunsTable] = tableSize(rs.db, rs.backend, rs.connStr, RunsTable, status.TotalRuns)
	status.TableSizes[RunValuesTable] = tableSize(rs.db, rs.backend, rs.connStr, RunValuesTable, status.TotalRows)
	return status, nil
}

// GetAllRuns returns every recorded run, oldest first.
func (rs *RunStoreImpl) GetAllRuns() ([]schema.RunRecord, error) {
	if rs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, run_kind, start_time, end_time, run_duration_ms, series_count, row_count, run_params
		FROM %s ORDER BY run_id`, quoteTableName(RunsTable, rs.backend))
	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []schema.RunRecord
	for rows.Next() {
		var (
			rec      schema.RunRecord
			kind     string
			duration sql.NullInt32
			params   sql.NullString
		)

		if rs.backend == schema.SQLiteBackend {
			var start string
			var end sql.NullString
			if err := rows.Scan(&rec.RunID, &kind, &start, &end, &duration, &rec.SeriesCount, &rec.RowCount, &params); err != nil {
				return nil, fmt.Errorf("failed to scan run: %w", err)
			}
			if rec.StartTime, err = parseSQLiteTime(start); err != nil {
				return nil, fmt.Errorf("failed to parse start_time: %w", err)
			}
			if end.Valid {
				endTime, err := parseSQLiteTime(end.String)
				if err != nil {
					return nil, fmt.Errorf("failed to parse end_time: %w", err)
				}
				rec.EndTime = &endTime
			}
		} else {
			var end sql.NullTime
			if err := rows.Scan(&rec.RunID, &kind, &rec.StartTime, &end, &duration, &rec.SeriesCount, &rec.RowCount, &params); err != nil {
				return nil, fmt.Errorf("failed to scan run: %w", err)
			}
			if end.Valid {
				endTime := end.Time
				rec.EndTime = &endTime
			}
		}

		rec.Kind = schema.RunKind(kind)
		if duration.Valid {
			d := duration.Int32
			rec.DurationMs = &d
		}
		if params.Valid {
			p := params.String
			rec.Params = &p
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// GetAllRowValues returns every recorded value, ordered by run, row and series.
func (rs *RunStoreImpl) GetAllRowValues() ([]schema.RunValueRecord, error) {
	if rs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, row_index, point_timestamp, date_label, series_key, series_name, value
		FROM %s ORDER BY run_id, row_index, series_key`, quoteTableName(RunValuesTable, rs.backend))
	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query run values: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []schema.RunValueRecord
	for rows.Next() {
		var rec schema.RunValueRecord
		if err := rows.Scan(&rec.RunID, &rec.RowIndex, &rec.Timestamp, &rec.DateLabel, &rec.SeriesKey, &rec.SeriesName, &rec.Value); err != nil {
			return nil, fmt.Errorf("failed to scan run value: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
