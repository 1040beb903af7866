package badger

import (
	"context"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/mwantia/tenantvfs/data/errors"
	"github.com/mwantia/tenantvfs/mount/backend"
)

const contentPrefix = "c:"

// BadgerBackendConfig configures the embedded key-value store.
type BadgerBackendConfig struct {
	// Directory used for the database files, ignored when InMemory is set
	Path string `mapstructure:"path"`

	InMemory bool `mapstructure:"in_memory"`
}

// BadgerBackend stores content versions in an embedded BadgerDB.
type BadgerBackend struct {
	mu sync.RWMutex
	db *badger.DB

	inMemory bool
}

func NewBadgerBackend(config *BadgerBackendConfig) (*BadgerBackend, error) {
	if config == nil {
		config = &BadgerBackendConfig{InMemory: true}
	}

	var opts badger.Options
	if config.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if config.Path == "" {
			return nil, errors.InvalidArgument("badger backend requires a path")
		}
		opts = badger.DefaultOptions(config.Path)
	}
	opts = opts.WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Backend(err, "badger", "failed to open database at '%s'", config.Path)
	}

	return &BadgerBackend{
		db:       db,
		inMemory: config.InMemory,
	}, nil
}

// Returns the identifier name defined for this backend
func (*BadgerBackend) Name() string {
	return "badger"
}

// Open is part of the lifecycle behaviour and gets called before the first use.
func (bb *BadgerBackend) Open(ctx context.Context) error {
	bb.mu.RLock()
	defer bb.mu.RUnlock()

	if bb.db.IsClosed() {
		return errors.Backend(nil, bb.Name(), "database is closed")
	}
	return nil
}

// Close is part of the lifecycle behaviour and gets called when the tenant is unmounted.
func (bb *BadgerBackend) Close(ctx context.Context) error {
	bb.mu.Lock()
	defer bb.mu.Unlock()

	if bb.db.IsClosed() {
		return nil
	}
	return bb.db.Close()
}

// GetCapabilities returns a list of capabilities supported by this backend.
func (bb *BadgerBackend) GetCapabilities() *backend.BackendCapabilities {
	caps := []backend.BackendCapability{
		backend.CapabilityContent,
		backend.CapabilityVersioning,
	}
	if !bb.inMemory {
		caps = append(caps, backend.CapabilityPersistent)
	}

	return &backend.BackendCapabilities{
		Capabilities: caps,
	}
}

func contentKey(key backend.ContentKey) []byte {
	return []byte(contentPrefix + key.String())
}
