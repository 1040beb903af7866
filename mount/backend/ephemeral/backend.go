package ephemeral

import (
	"context"
	"sync"

	"github.com/mwantia/tenantvfs/mount/backend"
	"github.com/tidwall/btree"
)

// EphemeralBackend keeps all content in memory.
// Content is lost once the backend is closed.
type EphemeralBackend struct {
	mu sync.RWMutex

	keys  *btree.Map[string, string]
	datas map[string][]byte

	maxObjectSize int64
}

func NewEphemeralBackend() *EphemeralBackend {
	return &EphemeralBackend{
		keys:          btree.NewMap[string, string](0),
		datas:         make(map[string][]byte),
		maxObjectSize: 10485760, // 10 MB
	}
}

// Returns the identifier name defined for this backend
func (*EphemeralBackend) Name() string {
	return "ephemeral"
}

// Open is part of the lifecycle behaviour and gets called before the first use.
func (eb *EphemeralBackend) Open(ctx context.Context) error {
	// No initialization needed - backend is ready to use
	return nil
}

// Close is part of the lifecycle behaviour and gets called when the tenant is unmounted.
func (eb *EphemeralBackend) Close(ctx context.Context) error {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.keys.Clear()
	clear(eb.datas)

	return nil
}

// GetCapabilities returns a list of capabilities supported by this backend.
func (eb *EphemeralBackend) GetCapabilities() *backend.BackendCapabilities {
	return &backend.BackendCapabilities{
		Capabilities: []backend.BackendCapability{
			backend.CapabilityContent,
			backend.CapabilityVersioning,
		},
		MaxObjectSize: eb.maxObjectSize,
	}
}

// Len returns the number of stored content versions.
func (eb *EphemeralBackend) Len() int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	return eb.keys.Len()
}
