package mount

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"io"
	"time"

	"github.com/mwantia/tenantvfs/data"
	"github.com/mwantia/tenantvfs/data/errors"
	"github.com/mwantia/tenantvfs/event"
	"github.com/mwantia/tenantvfs/identity"
	"github.com/tidwall/btree"
)

// GetContent opens the content of the file or of the pinned version.
func (vf *VirtualFile) GetContent(ctx context.Context) (*ContentStream, error) {
	user, err := vf.mp.caller(ctx)
	if err != nil {
		return nil, err
	}

	vf.mp.mu.RLock()
	n, err := vf.readableUnsafe(user)
	if err != nil {
		vf.mp.mu.RUnlock()
		return nil, err
	}
	if n.isFolder() {
		vf.mp.mu.RUnlock()
		return nil, errors.NotAFile(vf.mp.pathUnsafe(n).String())
	}

	v := n.version(vf.version)
	if v == nil {
		vf.mp.mu.RUnlock()
		return nil, errors.VersionNotFound(vf.mp.pathUnsafe(n).String(), vf.version)
	}
	key := contentKey(vf.mp.tenant, n.id, v)
	name, mediaType := n.name, n.mediaType()
	vf.mp.mu.RUnlock()

	r, err := vf.mp.backend.ReadContent(ctx, key)
	if err != nil {
		return nil, err
	}
	return NewContentStream(r, name, mediaType, v.length, v.modifiedAt), nil
}

// UpdateContent stores r as a new version of the file.
// An empty mediaType keeps the current one.
func (vf *VirtualFile) UpdateContent(ctx context.Context, r io.Reader, mediaType, token string) error {
	user, err := vf.mp.caller(ctx)
	if err != nil {
		return err
	}

	vf.mp.mu.RLock()
	n, err := vf.writableUnsafe(user, data.PermissionWrite, token)
	if err == nil && n.isFolder() {
		err = errors.NotAFile(vf.mp.pathUnsafe(n).String())
	}
	vf.mp.mu.RUnlock()
	if err != nil {
		return err
	}

	v, err := vf.mp.writeVersion(ctx, vf.id, r)
	if err != nil {
		return err
	}

	ch := newChanges(user)
	vf.mp.mu.Lock()
	// Re-check, the node may have been deleted or locked meanwhile
	if n, err = vf.writableUnsafe(user, data.PermissionWrite, token); err == nil {
		vf.mp.appendVersionUnsafe(ch, n, v)
		n.setMediaType(mediaType)
		touch(n, user)
		vf.mp.emitUnsafe(ch, event.EventContentUpdated, n, "")
	} else {
		ch.garbage = append(ch.garbage, contentKey(vf.mp.tenant, vf.id, v))
	}
	vf.mp.mu.Unlock()

	vf.mp.commit(ctx, ch)
	return err
}

// CreateFile creates a file below this folder. Separators in name create
// missing intermediate folders.
func (vf *VirtualFile) CreateFile(ctx context.Context, name, mediaType string, r io.Reader) (*VirtualFile, error) {
	return vf.create(ctx, name, data.ItemTypeFile, mediaType, r)
}

// CreateFolder creates a folder below this folder. Separators in name
// create missing intermediate folders.
func (vf *VirtualFile) CreateFolder(ctx context.Context, name string) (*VirtualFile, error) {
	return vf.create(ctx, name, data.ItemTypeFolder, "", nil)
}

func (vf *VirtualFile) create(ctx context.Context, name string, kind data.ItemType, mediaType string, r io.Reader) (*VirtualFile, error) {
	path, err := data.ParsePath(name)
	if err != nil {
		return nil, err
	}
	if path.IsRoot() {
		return nil, errors.InvalidName(name)
	}

	user, err := vf.mp.caller(ctx)
	if err != nil {
		return nil, err
	}

	vf.mp.mu.RLock()
	_, _, err = vf.prepareUnsafe(path, user)
	vf.mp.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	id := newID()
	var v *version
	if kind == data.ItemTypeFile {
		if v, err = vf.mp.writeVersion(ctx, id, r); err != nil {
			return nil, err
		}
	}

	ch := newChanges(user)
	vf.mp.mu.Lock()
	parent, missing, err := vf.prepareUnsafe(path, user)
	if err == nil {
		parent = vf.mp.mkdirsUnsafe(ch, parent, missing, user)

		n := newNode(id, path.Name(), kind, user)
		if v != nil {
			n.versions = []*version{v}
			n.setMediaType(mediaType)
		}

		vf.mp.attachUnsafe(parent, n)
		vf.mp.emitUnsafe(ch, event.EventCreated, n, "")
	} else if v != nil {
		ch.garbage = append(ch.garbage, contentKey(vf.mp.tenant, id, v))
	}
	vf.mp.mu.Unlock()

	vf.mp.commit(ctx, ch)
	if err != nil {
		return nil, err
	}
	return vf.mp.handle(id), nil
}

// prepareUnsafe resolves the parent folder of path below this folder.
// Returns the deepest existing folder and the names of the missing
// intermediate folders. Fails if the final name already exists.
// MUST be called while holding the read or write lock.
func (vf *VirtualFile) prepareUnsafe(path data.Path, user *identity.User) (*node, []string, error) {
	cur, err := vf.mp.nodeUnsafe(vf.id)
	if err != nil {
		return nil, nil, err
	}
	if vf.version != "" {
		return nil, nil, errors.VersionReadOnly(vf.mp.pathUnsafe(cur).String(), vf.version)
	}

	elements := path.Elements()
	parents := elements[:len(elements)-1]
	for i, name := range parents {
		if !cur.isFolder() {
			return nil, nil, errors.NotAFolder(vf.mp.pathUnsafe(cur).String())
		}
		if err := vf.mp.requireUnsafe(cur, user, data.PermissionRead); err != nil {
			return nil, nil, err
		}

		child := vf.mp.childUnsafe(cur, name)
		if child == nil {
			if err := vf.mp.requireUnsafe(cur, user, data.PermissionWrite); err != nil {
				return nil, nil, err
			}
			return cur, parents[i:], nil
		}
		cur = child
	}

	if !cur.isFolder() {
		return nil, nil, errors.NotAFolder(vf.mp.pathUnsafe(cur).String())
	}
	if err := vf.mp.requireUnsafe(cur, user, data.PermissionWrite); err != nil {
		return nil, nil, err
	}
	if vf.mp.childUnsafe(cur, path.Name()) != nil {
		return nil, nil, errors.ItemExists(vf.mp.pathUnsafe(cur).String(), path.Name())
	}
	return cur, nil, nil
}

// mkdirsUnsafe creates the chain of folders names below parent and returns the last one.
// MUST be called while holding the write lock.
func (mp *MountPoint) mkdirsUnsafe(ch *changes, parent *node, names []string, user *identity.User) *node {
	for _, name := range names {
		folder := newNode(newID(), name, data.ItemTypeFolder, user)
		mp.attachUnsafe(parent, folder)
		mp.emitUnsafe(ch, event.EventCreated, folder, "")
		parent = folder
	}
	return parent
}

// appendVersionUnsafe installs v as current version of n.
// Without versioning all older versions are queued for deletion.
// MUST be called while holding the write lock.
func (mp *MountPoint) appendVersionUnsafe(ch *changes, n *node, v *version) {
	if !mp.versioning {
		for _, old := range n.versions {
			ch.garbage = append(ch.garbage, contentKey(mp.tenant, n.id, old))
		}
		n.versions = n.versions[:0]
	}
	n.versions = append(n.versions, v)
}

// writeVersion stores r as a new version of the file id and hashes it on the way.
func (mp *MountPoint) writeVersion(ctx context.Context, id string, r io.Reader) (*version, error) {
	if r == nil {
		r = bytes.NewReader(nil)
	}

	v := &version{
		id:         newID(),
		modifiedAt: time.Now(),
	}

	hash := md5.New()
	length, err := mp.backend.WriteContent(ctx, contentKey(mp.tenant, id, v), io.TeeReader(r, hash))
	if err != nil {
		return nil, err
	}

	v.length = length
	v.md5 = hex.EncodeToString(hash.Sum(nil))
	return v, nil
}

func newNode(id, name string, kind data.ItemType, user *identity.User) *node {
	now := time.Now()
	n := &node{
		id:         id,
		name:       name,
		kind:       kind,
		createdAt:  now,
		modifiedAt: now,
		properties: map[string][]string{
			PropertyCreatedBy:  {user.ID},
			PropertyModifiedBy: {user.ID},
		},
	}
	if kind == data.ItemTypeFolder {
		n.children = btree.NewMap[string, string](0)
	}
	return n
}
