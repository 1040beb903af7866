package data

import "github.com/mwantia/tenantvfs/data/errors"

// Error kinds surfaced by every vfs operation.
var (
	ErrNotFound  = errors.ErrNotFound
	ErrForbidden = errors.ErrForbidden
	ErrConflict  = errors.ErrConflict
	ErrServer    = errors.ErrServer
)

// Reasons refining the error kinds.
var (
	ErrInvalidPath    = errors.ErrInvalidPath
	ErrLocked         = errors.ErrLocked
	ErrNotSupported   = errors.ErrNotSupported
	ErrMountClosed    = errors.ErrMountClosed
	ErrProviderExists = errors.ErrProviderExists
	ErrProviderLoad   = errors.ErrProviderLoad
)
