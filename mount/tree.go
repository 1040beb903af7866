package mount

import (
	"context"
	"slices"
	"time"

	"github.com/mwantia/tenantvfs/data"
	"github.com/mwantia/tenantvfs/data/errors"
	"github.com/mwantia/tenantvfs/event"
	"github.com/mwantia/tenantvfs/identity"
	"github.com/mwantia/tenantvfs/mount/backend"
	"github.com/mwantia/tenantvfs/mount/extension/acl"
)

// UpdateProperties sets every given property in a single step.
// Properties with an empty value list are removed.
func (vf *VirtualFile) UpdateProperties(ctx context.Context, properties []data.Property, token string) error {
	user, err := vf.mp.caller(ctx)
	if err != nil {
		return err
	}

	for _, property := range properties {
		if data.IsReadOnlyProperty(property.Name) {
			return errors.PropertyReadOnly(property.Name)
		}
		if property.Name == "" {
			return errors.InvalidArgument("property name must not be empty")
		}
	}

	ch := newChanges(user)
	vf.mp.mu.Lock()
	n, err := vf.writableUnsafe(user, data.PermissionWrite, token)
	if err == nil {
		for _, property := range properties {
			values := slices.DeleteFunc(slices.Clone(property.Values), func(value string) bool {
				return value == ""
			})
			if len(values) == 0 {
				delete(n.properties, property.Name)
				continue
			}
			n.properties[property.Name] = values
		}

		touch(n, user)
		vf.mp.emitUnsafe(ch, event.EventPropertiesUpdated, n, "")
	}
	vf.mp.mu.Unlock()

	vf.mp.commit(ctx, ch)
	return err
}

// UpdateACL changes the ACL set on this node. Requires update_acl.
func (vf *VirtualFile) UpdateACL(ctx context.Context, entries []data.AccessControlEntry, override bool, token string) error {
	user, err := vf.mp.caller(ctx)
	if err != nil {
		return err
	}

	ch := newChanges(user)
	vf.mp.mu.Lock()
	n, err := vf.writableUnsafe(user, data.PermissionUpdateACL, token)
	if err == nil {
		n.acl = acl.Update(n.acl, entries, override)
		touch(n, user)
		vf.mp.emitUnsafe(ch, event.EventACLUpdated, n, "")
	}
	vf.mp.mu.Unlock()

	vf.mp.commit(ctx, ch)
	return err
}

// Rename changes name and media type in place. Both empty is a no-op.
func (vf *VirtualFile) Rename(ctx context.Context, newName, newMediaType, token string) (*VirtualFile, error) {
	if newName == "" && newMediaType == "" {
		return vf, nil
	}
	if newName != "" && !data.ValidName(newName) {
		return nil, errors.InvalidName(newName)
	}
	if vf.IsRoot() {
		return nil, errors.RootOperation("rename")
	}

	user, err := vf.mp.caller(ctx)
	if err != nil {
		return nil, err
	}

	ch := newChanges(user)
	vf.mp.mu.Lock()
	err = vf.renameUnsafe(ch, user, newName, newMediaType, token)
	vf.mp.mu.Unlock()

	vf.mp.commit(ctx, ch)
	if err != nil {
		return nil, err
	}
	return vf, nil
}

// renameUnsafe applies Rename.
// MUST be called while holding the write lock.
func (vf *VirtualFile) renameUnsafe(ch *changes, user *identity.User, newName, newMediaType, token string) error {
	n, err := vf.writableUnsafe(user, data.PermissionWrite, token)
	if err != nil {
		return err
	}
	if n.isFolder() {
		if err := vf.mp.checkLocksUnsafe(n, token); err != nil {
			return err
		}
	}

	oldPath := vf.mp.pathUnsafe(n).String()
	if newName != "" && newName != n.name {
		parent := vf.mp.nodes[n.parentID]
		if vf.mp.childUnsafe(parent, newName) != nil {
			return errors.ItemExists(vf.mp.pathUnsafe(parent).String(), newName)
		}

		parent.children.Delete(n.name)
		n.name = newName
		parent.children.Set(n.name, n.id)
	}
	if !n.isFolder() {
		n.setMediaType(newMediaType)
	}

	touch(n, user)
	vf.mp.emitUnsafe(ch, event.EventRenamed, n, oldPath)
	return nil
}

// Delete removes the node and all descendants. Every descendant requires
// write permission and locked files must match token.
func (vf *VirtualFile) Delete(ctx context.Context, token string) error {
	if vf.IsRoot() {
		return errors.RootOperation("delete")
	}

	user, err := vf.mp.caller(ctx)
	if err != nil {
		return err
	}

	ch := newChanges(user)
	vf.mp.mu.Lock()
	n, err := vf.writableUnsafe(user, data.PermissionWrite, token)
	if err == nil {
		err = vf.mp.deleteUnsafe(ch, n, user, token)
	}
	vf.mp.mu.Unlock()

	vf.mp.commit(ctx, ch)
	return err
}

// deletableUnsafe verifies write permission and locks on n and its descendants.
// MUST be called while holding the read or write lock.
func (mp *MountPoint) deletableUnsafe(n *node, user *identity.User, token string) error {
	var err error
	mp.walkUnsafe(n, func(cur *node) bool {
		err = mp.requireUnsafe(cur, user, data.PermissionWrite)
		return err == nil
	})
	if err != nil {
		return err
	}
	return mp.checkLocksUnsafe(n, token)
}

// deleteUnsafe detaches n after checking it can be deleted.
// MUST be called while holding the write lock.
func (mp *MountPoint) deleteUnsafe(ch *changes, n *node, user *identity.User, token string) error {
	if n.id == mp.rootID {
		return errors.RootOperation("delete")
	}
	if err := mp.deletableUnsafe(n, user, token); err != nil {
		return err
	}

	mp.walkUnsafe(n, func(cur *node) bool {
		mp.emitUnsafe(ch, event.EventDeleted, cur, "")
		return true
	})
	if parent, exists := mp.nodes[n.parentID]; exists {
		touch(parent, user)
	}

	removed := mp.detachUnsafe(n)
	mp.discardUnsafe(ch, removed)
	return nil
}

// MoveTo moves the node below parent, optionally renaming it.
// The node keeps its id. Both nodes must belong to the same mount point.
func (vf *VirtualFile) MoveTo(ctx context.Context, parent *VirtualFile, name string, overwrite bool, token string) (*VirtualFile, error) {
	if parent.mp != vf.mp {
		return nil, errors.InvalidArgument("unable to move across mount points")
	}
	if vf.IsRoot() {
		return nil, errors.RootOperation("move")
	}

	user, err := vf.mp.caller(ctx)
	if err != nil {
		return nil, err
	}

	ch := newChanges(user)
	vf.mp.mu.Lock()
	err = vf.moveUnsafe(ch, parent, user, name, overwrite, token)
	vf.mp.mu.Unlock()

	vf.mp.commit(ctx, ch)
	if err != nil {
		return nil, err
	}
	return vf, nil
}

// moveUnsafe applies MoveTo.
// MUST be called while holding the write lock.
func (vf *VirtualFile) moveUnsafe(ch *changes, parent *VirtualFile, user *identity.User, name string, overwrite bool, token string) error {
	n, err := vf.writableUnsafe(user, data.PermissionWrite, token)
	if err != nil {
		return err
	}
	dest, err := vf.mp.destinationUnsafe(parent, n, user)
	if err != nil {
		return err
	}
	if err := vf.mp.checkLocksUnsafe(n, token); err != nil {
		return err
	}

	if name == "" {
		name = n.name
	}
	if !data.ValidName(name) {
		return errors.InvalidName(name)
	}

	if existing := vf.mp.childUnsafe(dest, name); existing != nil {
		if existing.id == n.id {
			return errors.ItemExists(vf.mp.pathUnsafe(dest).String(), name)
		}
		if vf.mp.isAncestorUnsafe(existing, n) {
			return errors.SelfReference(vf.mp.pathUnsafe(n).String(), vf.mp.pathUnsafe(existing).String())
		}
		if !overwrite {
			return errors.ItemExists(vf.mp.pathUnsafe(dest).String(), name)
		}
		if err := vf.mp.deleteUnsafe(ch, existing, user, ""); err != nil {
			return err
		}
	}

	oldPath := vf.mp.pathUnsafe(n).String()
	source := vf.mp.nodes[n.parentID]
	source.children.Delete(n.name)
	touch(source, user)

	n.name = name
	vf.mp.attachUnsafe(dest, n)
	touch(dest, user)

	vf.mp.emitUnsafe(ch, event.EventMoved, n, oldPath)
	return nil
}

// destinationUnsafe validates parent as target folder for n.
// MUST be called while holding the read or write lock.
func (mp *MountPoint) destinationUnsafe(parent *VirtualFile, n *node, user *identity.User) (*node, error) {
	dest, err := mp.nodeUnsafe(parent.id)
	if err != nil {
		return nil, err
	}
	if parent.version != "" || !dest.isFolder() {
		return nil, errors.NotAFolder(mp.pathUnsafe(dest).String())
	}
	if n != nil && n.isFolder() && mp.isAncestorUnsafe(n, dest) {
		return nil, errors.SelfReference(mp.pathUnsafe(n).String(), mp.pathUnsafe(dest).String())
	}
	if err := mp.requireUnsafe(dest, user, data.PermissionWrite); err != nil {
		return nil, err
	}
	return dest, nil
}

// copyEntry is a snapshot of a node taken for CopyTo.
type copyEntry struct {
	source *node
	parent int
	key    backend.ContentKey
	id     string
	target *version
}

// CopyTo copies the node and its readable descendants below parent.
// Copies receive new ids, the current content version only and no ACL.
// The parent may belong to a different mount point; no transactional
// guarantee is given in that case.
func (vf *VirtualFile) CopyTo(ctx context.Context, parent *VirtualFile, name string, overwrite bool) (*VirtualFile, error) {
	source, target := vf.mp, parent.mp

	user, err := source.caller(ctx)
	if err != nil {
		return nil, err
	}
	targetUser := user
	if target != source {
		if targetUser, err = target.caller(ctx); err != nil {
			return nil, err
		}
	}

	source.mu.RLock()
	entries, err := vf.snapshotUnsafe(user)
	if err == nil && target == source {
		_, err = source.destinationUnsafe(parent, entries[0].source, user)
	}
	source.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	if name == "" {
		name = entries[0].source.name
	}
	if !data.ValidName(name) {
		return nil, errors.InvalidName(name)
	}

	ch := newChanges(targetUser)
	defer func() {
		target.commit(ctx, ch)
	}()

	target.mu.RLock()
	dest, err := target.destinationUnsafe(parent, nil, targetUser)
	if err == nil {
		if existing := target.childUnsafe(dest, name); existing != nil && !overwrite {
			err = errors.ItemExists(target.pathUnsafe(dest).String(), name)
		}
	}
	target.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		if entry.source.isFolder() {
			continue
		}
		if entry.target, err = copyContent(ctx, source, target, entry); err != nil {
			target.garbageEntries(ch, entries)
			return nil, err
		}
	}

	target.mu.Lock()
	defer target.mu.Unlock()

	if dest, err = target.destinationUnsafe(parent, nil, targetUser); err == nil {
		if existing := target.childUnsafe(dest, name); existing != nil {
			switch {
			case !overwrite:
				err = errors.ItemExists(target.pathUnsafe(dest).String(), name)
			case existing.id == entries[0].source.id:
				err = errors.SelfReference(target.pathUnsafe(existing).String(), target.pathUnsafe(dest).String())
			default:
				err = target.deleteUnsafe(ch, existing, targetUser, "")
			}
		}
	}
	if err != nil {
		target.garbageEntries(ch, entries)
		return nil, err
	}

	created := make([]*node, len(entries))
	for i, entry := range entries {
		entryName := entry.source.name
		into := dest
		if i == 0 {
			entryName = name
		} else {
			into = created[entry.parent]
		}

		n := entry.source.clone(entry.id, entryName, targetUser)
		if entry.target != nil {
			n.versions = []*version{entry.target}
		}

		target.attachUnsafe(into, n)
		target.emitUnsafe(ch, event.EventCreated, n, "")
		created[i] = n
	}
	touch(dest, targetUser)

	return target.handle(created[0].id), nil
}

// snapshotUnsafe captures the subtree of vf in breadth-first order.
// Descendants without read permission are skipped together with their subtree.
// MUST be called while holding the read or write lock.
func (vf *VirtualFile) snapshotUnsafe(user *identity.User) ([]*copyEntry, error) {
	n, err := vf.readableUnsafe(user)
	if err != nil {
		return nil, err
	}
	if n.id == vf.mp.rootID {
		return nil, errors.RootOperation("copy")
	}

	index := map[string]int{}
	var entries []*copyEntry
	vf.mp.walkUnsafe(n, func(cur *node) bool {
		parent := -1
		if cur.id != n.id {
			i, exists := index[cur.parentID]
			if !exists || !vf.mp.permissionsUnsafe(cur, user).Allows(data.PermissionRead) {
				return true
			}
			parent = i
		}

		entry := &copyEntry{
			source: cur,
			parent: parent,
			id:     newID(),
		}
		if v := cur.version(vf.version); !cur.isFolder() && v != nil {
			entry.key = contentKey(vf.mp.tenant, cur.id, v)
		}

		index[cur.id] = len(entries)
		entries = append(entries, entry)
		return true
	})
	return entries, nil
}

// garbageEntries queues content already copied for entries.
func (mp *MountPoint) garbageEntries(ch *changes, entries []*copyEntry) {
	for _, entry := range entries {
		if entry.target != nil {
			ch.garbage = append(ch.garbage, contentKey(mp.tenant, entry.id, entry.target))
		}
	}
}

func copyContent(ctx context.Context, source, target *MountPoint, entry *copyEntry) (*version, error) {
	r, err := source.backend.ReadContent(ctx, entry.key)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	v, err := target.writeVersion(ctx, entry.id, r)
	if err != nil {
		return nil, err
	}
	v.modifiedAt = time.Now()
	return v, nil
}

// Lock places an exclusive lock on a file. A zero timeout never expires,
// a negative timeout uses the default configured for the mount point.
func (vf *VirtualFile) Lock(ctx context.Context, timeout time.Duration) (data.LockInfo, error) {
	user, err := vf.mp.caller(ctx)
	if err != nil {
		return data.LockInfo{}, err
	}
	if timeout < 0 {
		timeout = vf.mp.options.LockTimeout
	}

	ch := newChanges(user)
	vf.mp.mu.Lock()
	info, err := vf.lockUnsafe(ch, user, timeout)
	vf.mp.mu.Unlock()

	vf.mp.commit(ctx, ch)
	return info, err
}

// lockUnsafe applies Lock.
// MUST be called while holding the write lock.
func (vf *VirtualFile) lockUnsafe(ch *changes, user *identity.User, timeout time.Duration) (data.LockInfo, error) {
	n, err := vf.mp.nodeUnsafe(vf.id)
	if err != nil {
		return data.LockInfo{}, err
	}
	path := vf.mp.pathUnsafe(n).String()
	if n.isFolder() {
		return data.LockInfo{}, errors.NotAFile(path)
	}
	if vf.version != "" {
		return data.LockInfo{}, errors.VersionReadOnly(path, vf.version)
	}
	if err := vf.mp.requireUnsafe(n, user, data.PermissionWrite); err != nil {
		return data.LockInfo{}, err
	}

	info, err := vf.mp.locks.Lock(n.id, path, user.ID, timeout)
	if err != nil {
		return data.LockInfo{}, err
	}

	vf.mp.emitUnsafe(ch, event.EventLocked, n, "")
	return info, nil
}

// Unlock releases the lock of a file if token matches.
func (vf *VirtualFile) Unlock(ctx context.Context, token string) error {
	user, err := vf.mp.caller(ctx)
	if err != nil {
		return err
	}

	ch := newChanges(user)
	vf.mp.mu.Lock()
	n, err := vf.mp.nodeUnsafe(vf.id)
	if err == nil {
		path := vf.mp.pathUnsafe(n).String()
		switch {
		case n.isFolder():
			err = errors.NotAFile(path)
		default:
			if err = vf.mp.locks.Unlock(n.id, path, token); err == nil {
				vf.mp.emitUnsafe(ch, event.EventUnlocked, n, "")
			}
		}
	}
	vf.mp.mu.Unlock()

	vf.mp.commit(ctx, ch)
	return err
}

// IsLocked returns true if the file holds an active lock.
func (vf *VirtualFile) IsLocked() bool {
	return vf.mp.locks.IsLocked(vf.id)
}

// LockInfo returns the active lock of the file.
func (vf *VirtualFile) LockInfo() (data.LockInfo, bool) {
	return vf.mp.locks.Info(vf.id)
}
