package mount

import (
	"github.com/mwantia/tenantvfs/data"
	"github.com/mwantia/tenantvfs/data/errors"
	"github.com/mwantia/tenantvfs/identity"
	"github.com/mwantia/tenantvfs/mount/extension/acl"
)

// checkUnsafe fails once the mount point was reset.
// MUST be called while holding the read or write lock.
func (mp *MountPoint) checkUnsafe() error {
	if mp.closed {
		return errors.MountClosed(mp.tenant)
	}
	return nil
}

// nodeUnsafe returns the node with id or ErrNotFound.
// MUST be called while holding the read or write lock.
func (mp *MountPoint) nodeUnsafe(id string) (*node, error) {
	if err := mp.checkUnsafe(); err != nil {
		return nil, err
	}

	n, exists := mp.nodes[id]
	if !exists {
		return nil, errors.ItemNotFound(nil, id)
	}
	return n, nil
}

// pathUnsafe builds the absolute path of n by walking its parents.
// MUST be called while holding the read or write lock.
func (mp *MountPoint) pathUnsafe(n *node) data.Path {
	var elements []string
	for cur := n; cur != nil && cur.id != mp.rootID; cur = mp.nodes[cur.parentID] {
		elements = append(elements, cur.name)
	}
	if len(elements) == 0 {
		return data.Root
	}

	path := data.Root
	for i := len(elements) - 1; i >= 0; i-- {
		path = path.Child(elements[i])
	}
	return path
}

// childUnsafe returns the direct child of folder called name.
// MUST be called while holding the read or write lock.
func (mp *MountPoint) childUnsafe(folder *node, name string) *node {
	if folder.children == nil {
		return nil
	}
	if id, exists := folder.children.Get(name); exists {
		return mp.nodes[id]
	}
	return nil
}

// resolveUnsafe walks path relative to start, requiring read permission on
// every traversed folder. Returns nil if a segment does not exist.
// MUST be called while holding the read or write lock.
func (mp *MountPoint) resolveUnsafe(start *node, path data.Path, user *identity.User) (*node, error) {
	cur := start
	for _, name := range path.Elements() {
		if !cur.isFolder() {
			return nil, nil
		}
		if err := mp.requireUnsafe(cur, user, data.PermissionRead); err != nil {
			return nil, err
		}

		if cur = mp.childUnsafe(cur, name); cur == nil {
			return nil, nil
		}
	}
	return cur, nil
}

// isAncestorUnsafe returns true if ancestor is n or one of its parents.
// MUST be called while holding the read or write lock.
func (mp *MountPoint) isAncestorUnsafe(ancestor, n *node) bool {
	for cur := n; cur != nil; cur = mp.nodes[cur.parentID] {
		if cur.id == ancestor.id {
			return true
		}
	}
	return false
}

// permissionsUnsafe resolves the ACL of the nearest node with a non-empty ACL.
// Without any ACL on the way to root every permission is granted.
// Read-only mount points reduce the result to read.
// MUST be called while holding the read or write lock.
func (mp *MountPoint) permissionsUnsafe(n *node, user *identity.User) acl.PermissionSet {
	permissions := acl.NewPermissionSet(data.PermissionAll)
	if effective := mp.effectiveACLUnsafe(n); effective != nil {
		permissions = acl.Effective(effective, user)
	}

	if mp.options.ReadOnly {
		if !permissions.Allows(data.PermissionRead) {
			return acl.NewPermissionSet()
		}
		return acl.NewPermissionSet(data.PermissionRead)
	}
	return permissions
}

// effectiveACLUnsafe returns the ACL that applies to n.
// MUST be called while holding the read or write lock.
func (mp *MountPoint) effectiveACLUnsafe(n *node) acl.ACL {
	for cur := n; cur != nil; cur = mp.nodes[cur.parentID] {
		if len(cur.acl) > 0 {
			return cur.acl
		}
	}
	return nil
}

// requireUnsafe fails with ErrForbidden unless user holds permission on n.
// MUST be called while holding the read or write lock.
func (mp *MountPoint) requireUnsafe(n *node, user *identity.User, permission string) error {
	if mp.permissionsUnsafe(n, user).Allows(permission) {
		return nil
	}
	return errors.PermissionDenied(mp.pathUnsafe(n).String(), permission)
}

// walkUnsafe visits n and its descendants in breadth-first order.
// Children are visited in name order. Returning false stops the walk.
// MUST be called while holding the read or write lock.
func (mp *MountPoint) walkUnsafe(n *node, fn func(*node) bool) {
	queue := []*node{n}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if !fn(cur) {
			return
		}
		if cur.children != nil {
			cur.children.Scan(func(_ string, id string) bool {
				if child, exists := mp.nodes[id]; exists {
					queue = append(queue, child)
				}
				return true
			})
		}
	}
}

// checkLocksUnsafe verifies token against n and all locked descendants.
// MUST be called while holding the read or write lock.
func (mp *MountPoint) checkLocksUnsafe(n *node, token string) error {
	var err error
	mp.walkUnsafe(n, func(cur *node) bool {
		if cur.isFolder() {
			return true
		}

		path := mp.pathUnsafe(cur).String()
		if lockErr := mp.locks.Check(cur.id, path, token); lockErr != nil {
			if cur.id == n.id {
				err = lockErr
			} else {
				err = errors.LockedDescendant(mp.pathUnsafe(n).String(), path)
			}
			return false
		}
		return true
	})
	return err
}

// attachUnsafe inserts n into the arena below parent.
// MUST be called while holding the write lock.
func (mp *MountPoint) attachUnsafe(parent, n *node) {
	n.parentID = parent.id
	mp.nodes[n.id] = n
	parent.children.Set(n.name, n.id)
}

// detachUnsafe removes n and its descendants from the arena and returns them.
// MUST be called while holding the write lock.
func (mp *MountPoint) detachUnsafe(n *node) []*node {
	var removed []*node
	mp.walkUnsafe(n, func(cur *node) bool {
		removed = append(removed, cur)
		return true
	})

	if parent, exists := mp.nodes[n.parentID]; exists {
		parent.children.Delete(n.name)
	}
	for _, cur := range removed {
		delete(mp.nodes, cur.id)
		mp.locks.Forget(cur.id)
	}
	return removed
}
