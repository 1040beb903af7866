package mount

import (
	"context"
	"sync"
	"time"

	"github.com/mwantia/tenantvfs/data"
	"github.com/mwantia/tenantvfs/data/errors"
	"github.com/mwantia/tenantvfs/event"
	"github.com/mwantia/tenantvfs/identity"
	"github.com/mwantia/tenantvfs/log"
	"github.com/mwantia/tenantvfs/mount/backend"
	"github.com/mwantia/tenantvfs/mount/extension/lock"
	"github.com/tidwall/btree"
)

// MountPoint holds the node tree of a single tenant.
// All nodes live in one arena keyed by id and are guarded by mu.
type MountPoint struct {
	mu     sync.RWMutex
	nodes  map[string]*node
	rootID string
	closed bool

	tenant     string
	backend    backend.ContentBackend
	locks      *lock.Manager
	options    *MountOptions
	log        *log.Logger
	versioning bool

	MountTime time.Time // When the mount was created.
}

func NewMountPoint(tenant string, content backend.ContentBackend, opts ...MountOption) (*MountPoint, error) {
	if content == nil {
		return nil, errors.InvalidArgument("mount point of tenant '%s' requires a content backend", tenant)
	}

	options := newDefaultMountOptions()
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}

	caps := content.GetCapabilities()
	if !caps.Contains(backend.CapabilityContent) {
		return nil, errors.Backend(nil, content.Name(), "backend does not provide content storage")
	}

	mp := &MountPoint{
		tenant:     tenant,
		backend:    content,
		locks:      lock.NewManager(),
		options:    options,
		log:        options.Logger.Named(tenant),
		versioning: options.Versioning && caps.Contains(backend.CapabilityVersioning),
		MountTime:  time.Now(),
	}
	mp.locks.OnExpire = mp.onLockExpired
	mp.initUnsafe()

	mp.log.Debug("Mounted tenant with backend '%s' (versioning: %t)", content.Name(), mp.versioning)
	return mp, nil
}

// initUnsafe creates an empty arena containing only the root folder.
// MUST be called while holding the write lock or before the mount is shared.
func (mp *MountPoint) initUnsafe() {
	now := time.Now()
	root := &node{
		id:         newID(),
		kind:       data.ItemTypeFolder,
		createdAt:  now,
		modifiedAt: now,
		properties: make(map[string][]string),
		acl:        mp.options.RootACL.Clone(),
		children:   btree.NewMap[string, string](0),
	}

	mp.nodes = map[string]*node{root.id: root}
	mp.rootID = root.id
}

// Tenant returns the tenant id this mount belongs to.
func (mp *MountPoint) Tenant() string {
	return mp.tenant
}

// Backend returns the content backend of this mount.
func (mp *MountPoint) Backend() backend.ContentBackend {
	return mp.backend
}

// Capabilities returns the capabilities of the content backend.
func (mp *MountPoint) Capabilities() *backend.BackendCapabilities {
	return mp.backend.GetCapabilities()
}

// Versioning returns true if old content versions are retained.
func (mp *MountPoint) Versioning() bool {
	return mp.versioning
}

// Searchable returns true if a searcher is configured.
func (mp *MountPoint) Searchable() bool {
	return mp.options.Searcher != nil
}

// Options returns the options the mount was created with.
func (mp *MountPoint) Options() MountOptions {
	return *mp.options
}

// Root returns the root folder of the tenant.
func (mp *MountPoint) Root() *VirtualFile {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return mp.handle(mp.rootID)
}

// Len returns the number of nodes including the root folder.
func (mp *MountPoint) Len() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.nodes)
}

// GetVirtualFile resolves path below the tenant root.
// Intermediate folders require read permission.
func (mp *MountPoint) GetVirtualFile(ctx context.Context, path data.Path) (*VirtualFile, error) {
	user, err := mp.caller(ctx)
	if err != nil {
		return nil, err
	}

	mp.mu.RLock()
	defer mp.mu.RUnlock()

	if err := mp.checkUnsafe(); err != nil {
		return nil, err
	}

	n, err := mp.resolveUnsafe(mp.nodes[mp.rootID], path, user)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, errors.ItemNotFound(nil, path.String())
	}

	return mp.handle(n.id), nil
}

// GetVirtualFileByID returns the node with id if the caller may read it.
func (mp *MountPoint) GetVirtualFileByID(ctx context.Context, id string) (*VirtualFile, error) {
	user, err := mp.caller(ctx)
	if err != nil {
		return nil, err
	}

	mp.mu.RLock()
	defer mp.mu.RUnlock()

	if err := mp.checkUnsafe(); err != nil {
		return nil, err
	}

	n, exists := mp.nodes[id]
	if !exists {
		return nil, errors.ItemNotFound(nil, id)
	}
	if err := mp.requireUnsafe(n, user, data.PermissionRead); err != nil {
		return nil, err
	}

	return mp.handle(id), nil
}

// Reset drops every node, lock and indexed document and leaves the mount
// unusable. Content stored in the backend is not touched. Calling Reset
// more than once is a no-op.
func (mp *MountPoint) Reset(ctx context.Context) error {
	mp.mu.Lock()
	if mp.closed {
		mp.mu.Unlock()
		return nil
	}

	mp.closed = true
	mp.nodes = make(map[string]*node)
	mp.mu.Unlock()

	mp.locks.Reset()

	if mp.options.Searcher != nil {
		if err := mp.options.Searcher.Reset(ctx); err != nil {
			mp.log.Warn("Unable to reset search index: %v", err)
			return errors.Server(err, "unable to reset search index of tenant '%s'", mp.tenant)
		}
	}

	mp.log.Debug("Reset mount point")
	return nil
}

// Closed returns true after Reset was called.
func (mp *MountPoint) Closed() bool {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return mp.closed
}

// caller returns the identity of ctx, resolving its groups if necessary.
func (mp *MountPoint) caller(ctx context.Context) (*identity.User, error) {
	user := identity.FromContext(ctx)
	if mp.options.Resolver == nil || len(user.Groups) > 0 {
		return user, nil
	}

	resolved, err := identity.Resolve(ctx, mp.options.Resolver, user.ID)
	if err != nil {
		return nil, errors.Server(err, "unable to resolve groups of '%s'", user.ID)
	}
	return resolved, nil
}

func (mp *MountPoint) handle(id string) *VirtualFile {
	return &VirtualFile{
		mp: mp,
		id: id,
	}
}

func (mp *MountPoint) onLockExpired(id string, info data.LockInfo) {
	mp.mu.RLock()
	n, exists := mp.nodes[id]
	var path string
	if exists {
		path = mp.pathUnsafe(n).String()
	}
	mp.mu.RUnlock()

	if !exists {
		return
	}

	mp.log.Debug("Lock of '%s' held by '%s' expired", path, info.Owner)
	mp.options.Events.Publish(context.Background(), event.Event{
		Type:   event.EventUnlocked,
		Tenant: mp.tenant,
		ID:     id,
		Path:   path,
		User:   info.Owner,
		Time:   time.Now(),
	})
}
