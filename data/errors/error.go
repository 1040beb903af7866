package errors

import (
	"errors"
	"fmt"
	"sync"
)

// Error kinds every caller-facing error belongs to.
var (
	ErrNotFound  = errors.New("vfs: item not found")
	ErrForbidden = errors.New("vfs: operation forbidden")
	ErrConflict  = errors.New("vfs: conflict")
	ErrServer    = errors.New("vfs: server error")
)

// Reasons refine a kind and can be matched with errors.Is as well.
var (
	ErrInvalidPath    = errors.New("vfs: invalid path")
	ErrLocked         = errors.New("vfs: item is locked")
	ErrNotSupported   = errors.New("vfs: operation not supported")
	ErrMountClosed    = errors.New("vfs: mount point closed")
	ErrProviderExists = errors.New("vfs: provider already registered")
	ErrProviderLoad   = errors.New("vfs: unable to load provider")
)

// Error is returned by all vfs operations.
// It unwraps to its kind, its optional reason and its cause.
type Error struct {
	Kind    error
	Reason  error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("vfs: %s: %v", e.Message, e.Err)
	}
	return "vfs: " + e.Message
}

func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 3)
	for _, err := range []error{e.Kind, e.Reason, e.Err} {
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// KindOf returns the kind of err.
// Errors not created by this package are treated as server errors.
func KindOf(err error) error {
	if err == nil {
		return nil
	}

	var verr *Error
	if errors.As(err, &verr) && verr.Kind != nil {
		return verr.Kind
	}

	for _, kind := range []error{ErrNotFound, ErrForbidden, ErrConflict} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return ErrServer
}

func newError(kind, reason, err error, format string, args ...any) error {
	return &Error{
		Kind:    kind,
		Reason:  reason,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// Errors collects multiple errors and joins them on request.
type Errors struct {
	mu     sync.RWMutex
	errors []error
}

func (e *Errors) Add(err error) {
	if err == nil {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.errors = append(e.errors, err)
}

func (e *Errors) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return len(e.errors)
}

func (e *Errors) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.errors = make([]error, 0)
}

func (e *Errors) Errors() error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if len(e.errors) == 0 {
		return nil
	}

	return errors.Join(e.errors...)
}
