package ephemeral

import (
	"github.com/google/uuid"
	"github.com/mwantia/tenantvfs/mount/backend"
)

// This file contains internal "unsafe" methods that perform operations without acquiring locks.
// These methods MUST only be called when the caller already holds the appropriate lock.

// writeUnsafe stores buffer under key, replacing previous content.
// MUST be called while holding a write lock.
func (eb *EphemeralBackend) writeUnsafe(key backend.ContentKey, buffer []byte) {
	nsKey := key.String()
	if id, exists := eb.keys.Get(nsKey); exists {
		delete(eb.datas, id)
	}

	id := uuid.Must(uuid.NewV7()).String()
	eb.keys.Set(nsKey, id)
	eb.datas[id] = buffer
}

// readUnsafe returns the content stored under key.
// MUST be called while holding a read lock.
func (eb *EphemeralBackend) readUnsafe(key backend.ContentKey) ([]byte, bool) {
	id, exists := eb.keys.Get(key.String())
	if !exists {
		return nil, false
	}

	buffer, exists := eb.datas[id]
	return buffer, exists
}

// deleteUnsafe removes key and its content.
// MUST be called while holding a write lock.
func (eb *EphemeralBackend) deleteUnsafe(key backend.ContentKey) {
	if id, exists := eb.keys.Delete(key.String()); exists {
		delete(eb.datas, id)
	}
}
