package vfs

import "github.com/mwantia/tenantvfs/data"

// Error kinds returned by every operation of the file system. Use
// errors.Is to classify an error, e.g. errors.Is(err, vfs.ErrNotFound).
var (
	ErrNotFound  = data.ErrNotFound
	ErrForbidden = data.ErrForbidden
	ErrConflict  = data.ErrConflict
	ErrServer    = data.ErrServer
)

// Reasons refining a kind.
var (
	ErrInvalidPath  = data.ErrInvalidPath
	ErrLocked       = data.ErrLocked
	ErrNotSupported = data.ErrNotSupported
	ErrMountClosed  = data.ErrMountClosed
)
