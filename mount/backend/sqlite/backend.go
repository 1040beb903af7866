package sqlite

import (
	"context"
	"database/sql"
	"sync"

	"github.com/mwantia/tenantvfs/data/errors"
	"github.com/mwantia/tenantvfs/mount/backend"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteBackend stores every content version as a row in a single table.
type SQLiteBackend struct {
	mu sync.RWMutex
	db *sql.DB

	path string
}

// NewSQLiteBackend creates a new SQLite-backed content backend.
// The dbPath can be ":memory:" for an in-memory database or a file path.
func NewSQLiteBackend(dbPath string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.Backend(err, "sqlite", "unable to open '%s'", dbPath)
	}

	// Every connection of an in-memory database would see its own empty database
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, errors.Backend(err, "sqlite", "unable to enable WAL")
	}

	backend := &SQLiteBackend{
		db:   db,
		path: dbPath,
	}

	if err := backend.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return backend, nil
}

// initSchema creates the database schema.
func (sb *SQLiteBackend) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS vfs_content (
		namespace TEXT NOT NULL,
		file_id TEXT NOT NULL,
		version_id TEXT NOT NULL,
		content BLOB NOT NULL,
		size INTEGER NOT NULL CHECK(size >= 0),
		created_at INTEGER NOT NULL,
		PRIMARY KEY (namespace, file_id, version_id)
	);
	CREATE INDEX IF NOT EXISTS idx_vfs_content_file ON vfs_content(namespace, file_id);
	`

	if _, err := sb.db.Exec(schema); err != nil {
		return errors.Backend(err, "sqlite", "unable to initialize schema")
	}
	return nil
}

// Returns the identifier name defined for this backend
func (*SQLiteBackend) Name() string {
	return "sqlite"
}

// Open is part of the lifecycle behaviour and gets called before the first use.
func (sb *SQLiteBackend) Open(ctx context.Context) error {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	if err := sb.db.PingContext(ctx); err != nil {
		return errors.Backend(err, sb.Name(), "unable to ping '%s'", sb.path)
	}
	return nil
}

// Close is part of the lifecycle behaviour and gets called when the tenant is unmounted.
func (sb *SQLiteBackend) Close(ctx context.Context) error {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	return sb.db.Close()
}

// GetCapabilities returns a list of capabilities supported by this backend.
func (sb *SQLiteBackend) GetCapabilities() *backend.BackendCapabilities {
	caps := []backend.BackendCapability{
		backend.CapabilityContent,
		backend.CapabilityVersioning,
	}
	if sb.path != ":memory:" {
		caps = append(caps, backend.CapabilityPersistent)
	}

	return &backend.BackendCapabilities{
		Capabilities: caps,
	}
}
