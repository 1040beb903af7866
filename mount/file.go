package mount

import (
	"context"
	"iter"

	"github.com/mwantia/tenantvfs/data"
	"github.com/mwantia/tenantvfs/data/errors"
	"github.com/mwantia/tenantvfs/identity"
	"github.com/mwantia/tenantvfs/mount/extension/acl"
)

// CurrentVersion aliases the latest version of a file.
const CurrentVersion = "current"

// VirtualFile is a handle to a node of a MountPoint.
// Handles stay valid across renames and moves; operations on a deleted
// node fail with ErrNotFound.
type VirtualFile struct {
	mp *MountPoint
	id string

	// Pinned version, empty for the live node
	version string
}

func (vf *VirtualFile) ID() string {
	return vf.id
}

// VersionID returns the pinned version, or the current one for live handles.
func (vf *VirtualFile) VersionID() string {
	vf.mp.mu.RLock()
	defer vf.mp.mu.RUnlock()

	if vf.version != "" {
		return vf.version
	}
	if n, exists := vf.mp.nodes[vf.id]; exists {
		if v := n.current(); v != nil {
			return v.id
		}
	}
	return ""
}

func (vf *VirtualFile) MountPoint() *MountPoint {
	return vf.mp
}

func (vf *VirtualFile) Exists() bool {
	vf.mp.mu.RLock()
	defer vf.mp.mu.RUnlock()

	_, exists := vf.mp.nodes[vf.id]
	return exists && !vf.mp.closed
}

func (vf *VirtualFile) IsRoot() bool {
	return vf.id == vf.mp.rootID
}

func (vf *VirtualFile) IsFile() bool {
	vf.mp.mu.RLock()
	defer vf.mp.mu.RUnlock()

	n, exists := vf.mp.nodes[vf.id]
	return exists && !n.isFolder()
}

func (vf *VirtualFile) IsFolder() bool {
	vf.mp.mu.RLock()
	defer vf.mp.mu.RUnlock()

	n, exists := vf.mp.nodes[vf.id]
	return exists && n.isFolder()
}

func (vf *VirtualFile) Name() string {
	vf.mp.mu.RLock()
	defer vf.mp.mu.RUnlock()

	if n, exists := vf.mp.nodes[vf.id]; exists {
		return n.name
	}
	return ""
}

// Path returns the current absolute path, or root for deleted nodes.
func (vf *VirtualFile) Path() data.Path {
	vf.mp.mu.RLock()
	defer vf.mp.mu.RUnlock()

	if n, exists := vf.mp.nodes[vf.id]; exists {
		return vf.mp.pathUnsafe(n)
	}
	return data.Root
}

func (vf *VirtualFile) MediaType() string {
	vf.mp.mu.RLock()
	defer vf.mp.mu.RUnlock()

	if n, exists := vf.mp.nodes[vf.id]; exists {
		return n.mediaType()
	}
	return ""
}

func (vf *VirtualFile) String() string {
	return vf.mp.tenant + ":" + vf.Path().String()
}

// Parent returns the parent folder, or nil for root.
func (vf *VirtualFile) Parent(ctx context.Context) (*VirtualFile, error) {
	vf.mp.mu.RLock()
	defer vf.mp.mu.RUnlock()

	n, err := vf.mp.nodeUnsafe(vf.id)
	if err != nil {
		return nil, err
	}
	if n.parentID == "" {
		return nil, nil
	}
	return vf.mp.handle(n.parentID), nil
}

// Item describes the node for the caller. Requires read permission.
func (vf *VirtualFile) Item(ctx context.Context, includePermissions bool, filter data.PropertyFilter) (*data.Item, error) {
	user, err := vf.mp.caller(ctx)
	if err != nil {
		return nil, err
	}

	vf.mp.mu.RLock()
	defer vf.mp.mu.RUnlock()

	n, err := vf.readableUnsafe(user)
	if err != nil {
		return nil, err
	}
	return vf.itemUnsafe(n, user, includePermissions, filter)
}

// itemUnsafe converts n into an Item.
// MUST be called while holding the read or write lock.
func (vf *VirtualFile) itemUnsafe(n *node, user *identity.User, includePermissions bool, filter data.PropertyFilter) (*data.Item, error) {
	item := &data.Item{
		ID:         n.id,
		Name:       n.name,
		Path:       vf.mp.pathUnsafe(n).String(),
		ParentID:   n.parentID,
		Type:       n.kind,
		MediaType:  n.mediaType(),
		CreatedAt:  n.createdAt,
		ModifiedAt: n.modifiedAt,
		Properties: filter.Apply(n.properties),
		TenantID:   vf.mp.tenant,
	}

	if !n.isFolder() {
		v := n.version(vf.version)
		if v == nil {
			return nil, errors.VersionNotFound(item.Path, vf.version)
		}

		item.VersionID = v.id
		item.Length = v.length
		item.ModifiedAt = v.modifiedAt
		item.Locked = vf.mp.locks.IsLocked(n.id)
	}

	if includePermissions {
		item.Permissions = vf.mp.permissionsUnsafe(n, user).Sorted()
	}
	return item, nil
}

// readableUnsafe returns the node after checking read permission.
// MUST be called while holding the read or write lock.
func (vf *VirtualFile) readableUnsafe(user *identity.User) (*node, error) {
	n, err := vf.mp.nodeUnsafe(vf.id)
	if err != nil {
		return nil, err
	}
	if err := vf.mp.requireUnsafe(n, user, data.PermissionRead); err != nil {
		return nil, err
	}
	return n, nil
}

// writableUnsafe returns the node after checking permission and the lock token.
// Pinned versions are read-only.
// MUST be called while holding the read or write lock.
func (vf *VirtualFile) writableUnsafe(user *identity.User, permission, token string) (*node, error) {
	n, err := vf.mp.nodeUnsafe(vf.id)
	if err != nil {
		return nil, err
	}
	if vf.version != "" {
		return nil, errors.VersionReadOnly(vf.mp.pathUnsafe(n).String(), vf.version)
	}
	if err := vf.mp.requireUnsafe(n, user, permission); err != nil {
		return nil, err
	}
	if !n.isFolder() {
		if err := vf.mp.locks.Check(n.id, vf.mp.pathUnsafe(n).String(), token); err != nil {
			return nil, err
		}
	}
	return n, nil
}

// GetChildren yields the readable children matching filter in name order.
// A file yields nothing. If vf cannot be read, the error is yielded once.
func (vf *VirtualFile) GetChildren(ctx context.Context, filter data.ItemType) iter.Seq2[*VirtualFile, error] {
	return func(yield func(*VirtualFile, error) bool) {
		children, err := vf.Children(ctx, filter)
		if err != nil {
			yield(nil, err)
			return
		}
		for _, child := range children {
			if !yield(child, nil) {
				return
			}
		}
	}
}

// Children returns the readable children matching filter in name order.
func (vf *VirtualFile) Children(ctx context.Context, filter data.ItemType) ([]*VirtualFile, error) {
	user, err := vf.mp.caller(ctx)
	if err != nil {
		return nil, err
	}

	vf.mp.mu.RLock()
	defer vf.mp.mu.RUnlock()

	n, err := vf.readableUnsafe(user)
	if err != nil {
		return nil, err
	}
	if !n.isFolder() {
		return nil, nil
	}

	result := make([]*VirtualFile, 0, n.children.Len())
	n.children.Scan(func(_ string, id string) bool {
		child, exists := vf.mp.nodes[id]
		if !exists || !filter.Matches(child.kind) {
			return true
		}
		if vf.mp.permissionsUnsafe(child, user).Allows(data.PermissionRead) {
			result = append(result, vf.mp.handle(id))
		}
		return true
	})
	return result, nil
}

// GetChild resolves relative below this folder.
// Returns nil without error if this is not a folder or the child is missing.
func (vf *VirtualFile) GetChild(ctx context.Context, relative string) (*VirtualFile, error) {
	path, err := data.ParsePath(relative)
	if err != nil {
		return nil, err
	}

	user, err := vf.mp.caller(ctx)
	if err != nil {
		return nil, err
	}

	vf.mp.mu.RLock()
	defer vf.mp.mu.RUnlock()

	n, err := vf.mp.nodeUnsafe(vf.id)
	if err != nil {
		return nil, err
	}
	if !n.isFolder() {
		return nil, nil
	}

	child, err := vf.mp.resolveUnsafe(n, path, user)
	if err != nil || child == nil {
		return nil, err
	}
	return vf.mp.handle(child.id), nil
}

// GetProperties returns the properties passing filter.
func (vf *VirtualFile) GetProperties(ctx context.Context, filter data.PropertyFilter) ([]data.Property, error) {
	user, err := vf.mp.caller(ctx)
	if err != nil {
		return nil, err
	}

	vf.mp.mu.RLock()
	defer vf.mp.mu.RUnlock()

	n, err := vf.readableUnsafe(user)
	if err != nil {
		return nil, err
	}
	return filter.Apply(n.properties), nil
}

// GetProperty returns the first value of a property.
func (vf *VirtualFile) GetProperty(ctx context.Context, name string) (string, error) {
	properties, err := vf.GetProperties(ctx, data.AllProperties)
	if err != nil {
		return "", err
	}
	for _, property := range properties {
		if property.Name == name && len(property.Values) > 0 {
			return property.Values[0], nil
		}
	}
	return "", nil
}

// GetACL returns the entries set directly on this node.
// An empty result means the ACL is inherited.
func (vf *VirtualFile) GetACL(ctx context.Context) ([]data.AccessControlEntry, error) {
	user, err := vf.mp.caller(ctx)
	if err != nil {
		return nil, err
	}

	vf.mp.mu.RLock()
	defer vf.mp.mu.RUnlock()

	n, err := vf.readableUnsafe(user)
	if err != nil {
		return nil, err
	}
	return n.acl.Entries(), nil
}

// GetEffectiveACL returns the ACL that applies to this node.
func (vf *VirtualFile) GetEffectiveACL(ctx context.Context) ([]data.AccessControlEntry, error) {
	user, err := vf.mp.caller(ctx)
	if err != nil {
		return nil, err
	}

	vf.mp.mu.RLock()
	defer vf.mp.mu.RUnlock()

	n, err := vf.readableUnsafe(user)
	if err != nil {
		return nil, err
	}
	return vf.mp.effectiveACLUnsafe(n).Entries(), nil
}

// Permissions returns the effective permissions of the caller.
func (vf *VirtualFile) Permissions(ctx context.Context) (acl.PermissionSet, error) {
	user, err := vf.mp.caller(ctx)
	if err != nil {
		return nil, err
	}

	vf.mp.mu.RLock()
	defer vf.mp.mu.RUnlock()

	n, err := vf.mp.nodeUnsafe(vf.id)
	if err != nil {
		return nil, err
	}
	return vf.mp.permissionsUnsafe(n, user), nil
}

// GetVersions lists the versions of a file, newest first.
func (vf *VirtualFile) GetVersions(ctx context.Context, filter data.PropertyFilter) ([]*data.Item, error) {
	user, err := vf.mp.caller(ctx)
	if err != nil {
		return nil, err
	}

	vf.mp.mu.RLock()
	defer vf.mp.mu.RUnlock()

	n, err := vf.readableUnsafe(user)
	if err != nil {
		return nil, err
	}
	if n.isFolder() {
		return nil, errors.NotAFile(vf.mp.pathUnsafe(n).String())
	}

	items := make([]*data.Item, 0, len(n.versions))
	for i := len(n.versions) - 1; i >= 0; i-- {
		pinned := &VirtualFile{mp: vf.mp, id: vf.id, version: n.versions[i].id}
		item, err := pinned.itemUnsafe(n, user, false, filter)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// GetVersion returns a read-only handle pinned to versionID.
func (vf *VirtualFile) GetVersion(ctx context.Context, versionID string) (*VirtualFile, error) {
	user, err := vf.mp.caller(ctx)
	if err != nil {
		return nil, err
	}

	vf.mp.mu.RLock()
	defer vf.mp.mu.RUnlock()

	n, err := vf.readableUnsafe(user)
	if err != nil {
		return nil, err
	}
	if n.isFolder() {
		return nil, errors.NotAFile(vf.mp.pathUnsafe(n).String())
	}

	v := n.version(versionID)
	if v == nil {
		return nil, errors.VersionNotFound(vf.mp.pathUnsafe(n).String(), versionID)
	}
	return &VirtualFile{mp: vf.mp, id: vf.id, version: v.id}, nil
}
