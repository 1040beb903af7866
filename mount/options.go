package mount

import (
	"time"

	"github.com/mwantia/tenantvfs/data"
	"github.com/mwantia/tenantvfs/data/errors"
	"github.com/mwantia/tenantvfs/event"
	"github.com/mwantia/tenantvfs/identity"
	"github.com/mwantia/tenantvfs/log"
	"github.com/mwantia/tenantvfs/mount/extension/acl"
	"github.com/mwantia/tenantvfs/search"
)

// ImportMode decides how Unzip treats partial failures.
type ImportMode string

const (
	// ImportAtomic validates every entry first and rolls back on failure.
	ImportAtomic ImportMode = "atomic"
	// ImportBestEffort applies every entry and aggregates the errors.
	ImportBestEffort ImportMode = "best_effort"
)

// DefaultRootGroup receives all permissions on the root folder by default.
const DefaultRootGroup = "workspace/developer"

type MountOptions struct {
	Versioning     bool          // Keep old content versions if the backend supports it.
	ImportMode     ImportMode    // Behaviour of Unzip on partial failures.
	RootACL        acl.ACL       // ACL of the root folder.
	TempDir        string        // Directory used to spool uploaded archives.
	LockTimeout    time.Duration // Timeout used by Lock when called without one.
	MaxArchiveSize int64         // Upper bound for spooled archives, zero for unlimited.
	ReadOnly       bool          // Deny every permission except read.

	Logger   *log.Logger
	Events   event.Service
	Searcher search.Searcher
	Resolver identity.Resolver
}

type MountOption func(*MountOptions) error

func newDefaultMountOptions() *MountOptions {
	return &MountOptions{
		Versioning: true,
		ImportMode: ImportAtomic,
		RootACL:    acl.DefaultRootACL(DefaultRootGroup),
		Logger:     log.NewDiscardLogger(),
		Events:     event.Discard,
	}
}

func WithVersioning(enabled bool) MountOption {
	return func(mo *MountOptions) error {
		mo.Versioning = enabled
		return nil
	}
}

// WithReadOnly restricts every caller to read access, regardless of ACLs.
func WithReadOnly(ro bool) MountOption {
	return func(mo *MountOptions) error {
		mo.ReadOnly = ro
		return nil
	}
}

func WithImportMode(mode ImportMode) MountOption {
	return func(mo *MountOptions) error {
		switch mode {
		case ImportAtomic, ImportBestEffort:
			mo.ImportMode = mode
			return nil
		case "":
			mo.ImportMode = ImportAtomic
			return nil
		}
		return errors.InvalidArgument("unknown import mode '%s'", mode)
	}
}

// WithRootACL replaces the default root ACL. An empty list grants every
// permission to everyone.
func WithRootACL(entries ...data.AccessControlEntry) MountOption {
	return func(mo *MountOptions) error {
		mo.RootACL = acl.FromEntries(entries)
		return nil
	}
}

// WithRootACLGroup keeps the default root ACL layout for a different group.
func WithRootACLGroup(group string) MountOption {
	return func(mo *MountOptions) error {
		if group == "" {
			return errors.InvalidArgument("root acl group must not be empty")
		}
		mo.RootACL = acl.DefaultRootACL(group)
		return nil
	}
}

func WithTempDir(dir string) MountOption {
	return func(mo *MountOptions) error {
		mo.TempDir = dir
		return nil
	}
}

func WithDefaultLockTimeout(timeout time.Duration) MountOption {
	return func(mo *MountOptions) error {
		if timeout < 0 {
			return errors.InvalidArgument("lock timeout must not be negative")
		}
		mo.LockTimeout = timeout
		return nil
	}
}

func WithMaxArchiveSize(size int64) MountOption {
	return func(mo *MountOptions) error {
		mo.MaxArchiveSize = size
		return nil
	}
}

func WithLogger(logger *log.Logger) MountOption {
	return func(mo *MountOptions) error {
		if logger != nil {
			mo.Logger = logger
		}
		return nil
	}
}

func WithEventService(service event.Service) MountOption {
	return func(mo *MountOptions) error {
		if service != nil {
			mo.Events = service
		}
		return nil
	}
}

func WithSearcher(searcher search.Searcher) MountOption {
	return func(mo *MountOptions) error {
		mo.Searcher = searcher
		return nil
	}
}

func WithResolver(resolver identity.Resolver) MountOption {
	return func(mo *MountOptions) error {
		mo.Resolver = resolver
		return nil
	}
}
