package backend

import "context"

// Backend is the lifecycle shared by every content backend. A backend
// instance serves exactly one tenant.
type Backend interface {
	// Name identifies the backend implementation in logs and GetInfo.
	Name() string
	// Open connects or creates the underlying store before the first use.
	Open(ctx context.Context) error
	// Close releases the store once the tenant is unmounted.
	Close(ctx context.Context) error

	// GetCapabilities reports the optional features of this backend.
	GetCapabilities() *BackendCapabilities
}
