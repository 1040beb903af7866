package direct

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/mwantia/tenantvfs/data/errors"
	"github.com/mwantia/tenantvfs/mount/backend"
)

// DirectBackend stores content versions as plain files below a billy filesystem.
// Files are laid out as <namespace>/<file-id>/<version-id>.
type DirectBackend struct {
	mu sync.RWMutex
	fs billy.Filesystem

	root       string
	persistent bool
}

// NewDirectBackend creates a backend rooted at a directory on the local disk.
func NewDirectBackend(root string) (*DirectBackend, error) {
	if root == "" {
		return nil, errors.InvalidArgument("direct backend requires a root directory")
	}

	root = filepath.Clean(root)
	return &DirectBackend{
		fs:         osfs.New(root),
		root:       root,
		persistent: true,
	}, nil
}

// NewBillyBackend wraps any billy filesystem, e.g. memfs for tests.
func NewBillyBackend(fs billy.Filesystem) *DirectBackend {
	return &DirectBackend{
		fs:   fs,
		root: fs.Root(),
	}
}

// Returns the identifier name defined for this backend
func (*DirectBackend) Name() string {
	return "direct"
}

// Open is part of the lifecycle behaviour and gets called before the first use.
func (db *DirectBackend) Open(ctx context.Context) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if !db.persistent {
		return nil
	}

	info, err := os.Stat(db.root)
	if err != nil {
		if os.IsNotExist(err) {
			if err := os.MkdirAll(db.root, 0o755); err != nil {
				return errors.Backend(err, db.Name(), "unable to create root '%s'", db.root)
			}
			return nil
		}
		return errors.Backend(err, db.Name(), "unable to stat root '%s'", db.root)
	}

	if !info.IsDir() {
		return errors.Backend(nil, db.Name(), "root '%s' is not a directory", db.root)
	}
	return nil
}

// Close is part of the lifecycle behaviour and gets called when the tenant is unmounted.
func (db *DirectBackend) Close(ctx context.Context) error {
	// The underlying filesystem persists independently
	return nil
}

// GetCapabilities returns a list of capabilities supported by this backend.
func (db *DirectBackend) GetCapabilities() *backend.BackendCapabilities {
	caps := []backend.BackendCapability{
		backend.CapabilityContent,
		backend.CapabilityVersioning,
		backend.CapabilityStreaming,
	}
	if db.persistent {
		caps = append(caps, backend.CapabilityPersistent)
	}

	return &backend.BackendCapabilities{
		Capabilities: caps,
		// Filesystem limits vary by OS, so a practical limit of 10GB is enforced
		MaxObjectSize: 10 << 30,
	}
}
