package iocache

import (
	"fmt"
	"os"
	"sync"

	"github.com/civiclens/civiclens/internal/contract"
	"github.com/civiclens/civiclens/schema"
)

// Global Manager instance for main logic.
var (
	Manager   = &CacheStoreManager{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// InitCaching initializes the global manager with the response cache and the run store.
// An empty backend leaves the corresponding store nil.
func InitCaching(cacheBackend schema.DatabaseBackend, cacheConnStr string, runBackend schema.DatabaseBackend, runConnStr string) error {
	var initErr error

	initOnce.Do(func() {
		responses, runs, err := openStores(cacheBackend, cacheConnStr, runBackend, runConnStr)
		if err != nil {
			initErr = err
			return
		}
		Manager.Lock()
		defer Manager.Unlock()
		Manager.responses = responses
		Manager.runs = runs
	})

	return initErr
}

// NewManager builds a standalone manager, for callers that should not share the global one.
func NewManager(cacheBackend schema.DatabaseBackend, cacheConnStr string, runBackend schema.DatabaseBackend, runConnStr string) (*CacheStoreManager, error) {
	responses, runs, err := openStores(cacheBackend, cacheConnStr, runBackend, runConnStr)
	if err != nil {
		return nil, err
	}
	return &CacheStoreManager{responses: responses, runs: runs}, nil
}

// Close closes every store held by the manager.
func (mgr *CacheStoreManager) Close() {
	mgr.Lock()
	defer mgr.Unlock()
	if mgr.responses != nil {
		_ = mgr.responses.Close()
	}
	if mgr.runs != nil {
		_ = mgr.runs.Close()
	}
}

func openStores(cacheBackend schema.DatabaseBackend, cacheConnStr string, runBackend schema.DatabaseBackend, runConnStr string) (contract.CacheStore, contract.RunStore, error) {
	var (
		responses contract.CacheStore
		runs      contract.RunStore
		err       error
	)
	if cacheBackend != "" {
		responses, err = NewCacheStore(ResponseTableName, cacheBackend, cacheConnStr)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize response caching: %w", err)
		}
	}

	if runBackend != "" {
		runs, err = NewRunStore(runBackend, runConnStr)
		if err != nil {
			if responses != nil {
				_ = responses.Close()
			}
			return nil, nil, fmt.Errorf("failed to initialize run store: %w", err)
		}
	}
	return responses, runs, nil
}

// CloseCaching should be called on application shutdown.
func CloseCaching() { // called in main defer
	closeOnce.Do(Manager.Close)
}

// ClearCache clears cached responses for the specified backend.
// For SQLite, it deletes the database file.
// For MySQL and PostgreSQL, it drops the table.
// For the none backend, it does nothing.
func ClearCache(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	return clearBackend(backend, dbFilePath, connStr, ResponseTableName)
}

// ClearRuns clears run tracking data for the specified backend, in the same way as ClearCache.
func ClearRuns(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	return clearBackend(backend, dbFilePath, connStr, RunValuesTable, RunsTable, "schema_migrations")
}

func clearBackend(backend schema.DatabaseBackend, dbFilePath, connStr string, tables ...string) error {
	switch backend {
	case schema.SQLiteBackend:
		if dbFilePath == "" {
			return fmt.Errorf("dbFilePath cannot be empty for SQLite backend")
		}
		// Remove the file; ignore if it doesn't exist
		if err := os.Remove(dbFilePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove SQLite database file %s: %w", dbFilePath, err)
		}
		return nil

	case schema.MySQLBackend, schema.PostgreSQLBackend:
		return dropTables(backend, connStr, tables...)

	case schema.NoneBackend:
		return nil

	default:
		return fmt.Errorf("unsupported backend for clearing: %s", backend)
	}
}

// dropTables connects to the SQL database and drops each table if it exists.
func dropTables(backend schema.DatabaseBackend, connStr string, tables ...string) error {
	db, err := openDB(backend, connStr, "")
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	for _, table := range tables {
		if err := validateTableName(table); err != nil {
			return err
		}
		query := fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteTableName(table, backend))
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}
	return nil
}
