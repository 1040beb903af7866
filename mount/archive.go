package mount

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/mwantia/tenantvfs/data"
	"github.com/mwantia/tenantvfs/data/errors"
	"github.com/mwantia/tenantvfs/event"
	"github.com/mwantia/tenantvfs/identity"
	"github.com/mwantia/tenantvfs/mount/backend"
)

// ZipFilter decides whether a path relative to the exported folder is part
// of an archive. Folder paths end with "/".
type ZipFilter func(relative string) bool

// zipEntry is captured under the read lock and streamed afterwards.
type zipEntry struct {
	name       string
	folder     bool
	key        backend.ContentKey
	modifiedAt time.Time
}

// Zip streams the readable subtree of this folder as zip archive in
// breadth-first order. A nil filter accepts every entry. Closing the
// returned stream aborts the export.
func (vf *VirtualFile) Zip(ctx context.Context, filter ZipFilter) (*ContentStream, error) {
	user, err := vf.mp.caller(ctx)
	if err != nil {
		return nil, err
	}

	vf.mp.mu.RLock()
	entries, name, err := vf.zipEntriesUnsafe(user, filter)
	vf.mp.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	pr, pw := io.Pipe()
	go func() {
		pw.CloseWithError(vf.mp.writeZip(ctx, pw, entries))
	}()

	return &ContentStream{
		ReadCloser: pr,
		FileName:   name + ".zip",
		MediaType:  data.ContentTypeApplicationZip,
		Length:     -1,
		ModifiedAt: time.Now(),
	}, nil
}

// zipEntriesUnsafe lists the readable descendants of vf.
// MUST be called while holding the read or write lock.
func (vf *VirtualFile) zipEntriesUnsafe(user *identity.User, filter ZipFilter) ([]zipEntry, string, error) {
	n, err := vf.readableUnsafe(user)
	if err != nil {
		return nil, "", err
	}
	if !n.isFolder() {
		return nil, "", errors.NotAFolder(vf.mp.pathUnsafe(n).String())
	}

	name := n.name
	if name == "" {
		name = vf.mp.tenant
	}

	base := vf.mp.pathUnsafe(n)
	readable := map[string]bool{n.id: true}
	var entries []zipEntry
	vf.mp.walkUnsafe(n, func(cur *node) bool {
		if cur.id == n.id {
			return true
		}
		if !readable[cur.parentID] || !vf.mp.permissionsUnsafe(cur, user).Allows(data.PermissionRead) {
			return true
		}
		readable[cur.id] = true

		entry := zipEntry{
			name:       vf.mp.pathUnsafe(cur).Relative(base),
			folder:     cur.isFolder(),
			modifiedAt: cur.modifiedAt,
		}
		if entry.folder {
			entry.name += "/"
		} else {
			v := cur.current()
			entry.key = contentKey(vf.mp.tenant, cur.id, v)
			entry.modifiedAt = v.modifiedAt
		}

		if filter == nil || filter(entry.name) {
			entries = append(entries, entry)
		}
		return true
	})
	return entries, name, nil
}

func (mp *MountPoint) writeZip(ctx context.Context, w io.Writer, entries []zipEntry) error {
	zw := zip.NewWriter(w)
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		header := &zip.FileHeader{
			Name:     entry.name,
			Method:   zip.Deflate,
			Modified: entry.modifiedAt,
		}
		if entry.folder {
			header.Method = zip.Store
			if _, err := zw.CreateHeader(header); err != nil {
				return err
			}
			continue
		}

		fw, err := zw.CreateHeader(header)
		if err != nil {
			return err
		}
		if err := mp.copyContent(ctx, fw, entry.key); err != nil {
			return err
		}
	}
	return zw.Close()
}

func (mp *MountPoint) copyContent(ctx context.Context, w io.Writer, key backend.ContentKey) error {
	r, err := mp.backend.ReadContent(ctx, key)
	if err != nil {
		return err
	}
	defer r.Close()

	_, err = io.Copy(w, r)
	return err
}

// importEntry is a single archive entry planned for Unzip.
type importEntry struct {
	path   data.Path
	folder bool
	file   *zip.File

	// Id of an existing file receiving a new version, empty for new nodes
	existing string
	id       string
	v        *version
}

// Unzip imports an archive below this folder. The first stripLevels path
// components of every entry are skipped. Existing files are replaced only
// with overwrite, locked files are never replaced. The import mode of the
// mount point decides how partial failures are handled.
func (vf *VirtualFile) Unzip(ctx context.Context, r io.Reader, overwrite bool, stripLevels int) error {
	user, err := vf.mp.caller(ctx)
	if err != nil {
		return err
	}

	file, size, err := vf.mp.spool(r)
	if err != nil {
		return err
	}
	defer func() {
		file.Close()
		os.Remove(file.Name())
	}()

	zr, err := zip.NewReader(file, size)
	if err != nil {
		return errors.InvalidArchive(err, vf.Name())
	}

	entries, err := importEntries(zr, stripLevels)
	if err != nil {
		return err
	}

	if vf.mp.options.ImportMode == ImportBestEffort {
		return vf.unzipBestEffort(ctx, user, entries, overwrite)
	}
	return vf.unzipAtomic(ctx, user, entries, overwrite)
}

func importEntries(zr *zip.Reader, stripLevels int) ([]*importEntry, error) {
	entries := make([]*importEntry, 0, len(zr.File))
	for _, f := range zr.File {
		path, err := data.ParsePath(f.Name)
		if err != nil {
			return nil, errors.InvalidArchive(err, f.Name)
		}
		if path.Len() <= stripLevels {
			continue
		}

		entries = append(entries, &importEntry{
			path:   path.SubPathFrom(max(stripLevels, 0)),
			folder: strings.HasSuffix(f.Name, "/") || f.FileInfo().IsDir(),
			file:   f,
		})
	}
	return entries, nil
}

func (vf *VirtualFile) unzipAtomic(ctx context.Context, user *identity.User, entries []*importEntry, overwrite bool) error {
	vf.mp.mu.RLock()
	err := vf.planUnsafe(entries, user, overwrite, true)
	vf.mp.mu.RUnlock()
	if err != nil {
		return err
	}

	ch := newChanges(user)
	defer vf.mp.commit(ctx, ch)

	for _, entry := range entries {
		if err := vf.mp.writeEntry(ctx, entry); err != nil {
			vf.mp.rollbackEntries(ch, entries)
			return err
		}
	}

	vf.mp.mu.Lock()
	defer vf.mp.mu.Unlock()

	if err := vf.planUnsafe(entries, user, overwrite, false); err != nil {
		vf.mp.rollbackEntries(ch, entries)
		return err
	}

	base := vf.mp.nodes[vf.id]
	for _, entry := range entries {
		vf.mp.applyEntryUnsafe(ch, base, entry, user)
	}
	touch(base, user)
	return nil
}

func (vf *VirtualFile) unzipBestEffort(ctx context.Context, user *identity.User, entries []*importEntry, overwrite bool) error {
	errs := &errors.Errors{}
	for _, entry := range entries {
		errs.Add(vf.unzipEntry(ctx, user, entry, overwrite))
	}
	return errs.Errors()
}

func (vf *VirtualFile) unzipEntry(ctx context.Context, user *identity.User, entry *importEntry, overwrite bool) error {
	single := []*importEntry{entry}

	vf.mp.mu.RLock()
	err := vf.planUnsafe(single, user, overwrite, true)
	vf.mp.mu.RUnlock()
	if err != nil {
		return err
	}

	ch := newChanges(user)
	defer vf.mp.commit(ctx, ch)

	if err := vf.mp.writeEntry(ctx, entry); err != nil {
		return err
	}

	vf.mp.mu.Lock()
	defer vf.mp.mu.Unlock()

	if err := vf.planUnsafe(single, user, overwrite, false); err != nil {
		vf.mp.rollbackEntries(ch, single)
		return err
	}

	vf.mp.applyEntryUnsafe(ch, vf.mp.nodes[vf.id], entry, user)
	return nil
}

// planUnsafe validates entries against the tree. The first pass assigns
// ids, later passes fail if the tree changed in between.
// MUST be called while holding the read or write lock.
func (vf *VirtualFile) planUnsafe(entries []*importEntry, user *identity.User, overwrite, first bool) error {
	base, err := vf.writableUnsafe(user, data.PermissionRead, "")
	if err != nil {
		return err
	}
	if !base.isFolder() {
		return errors.NotAFolder(vf.mp.pathUnsafe(base).String())
	}

	planned := make(map[string]data.ItemType)
	for _, entry := range entries {
		if err := vf.mp.planEntryUnsafe(base, entry, planned, user, overwrite, first); err != nil {
			return err
		}
	}
	return nil
}

// planEntryUnsafe validates a single entry. planned holds the paths of
// nodes that earlier entries will create.
// MUST be called while holding the read or write lock.
func (mp *MountPoint) planEntryUnsafe(base *node, entry *importEntry, planned map[string]data.ItemType, user *identity.User, overwrite, first bool) error {
	elements := entry.path.Elements()
	cur := base
	for i, name := range elements {
		last := i == len(elements)-1
		if cur != nil {
			if err := mp.requireUnsafe(cur, user, data.PermissionRead); err != nil {
				return err
			}

			if child := mp.childUnsafe(cur, name); child != nil {
				if !last {
					if !child.isFolder() {
						return errors.NotAFolder(mp.pathUnsafe(child).String())
					}
					cur = child
					continue
				}
				return mp.planExistingUnsafe(entry, child, user, overwrite, first)
			}

			if err := mp.requireUnsafe(cur, user, data.PermissionWrite); err != nil {
				return err
			}
			cur = nil
		}

		key := entry.path.SubPath(0, i+1).String()
		kind, exists := planned[key]
		if !last {
			if exists && kind != data.ItemTypeFolder {
				return errors.InvalidArchive(nil, entry.path.String())
			}
			planned[key] = data.ItemTypeFolder
			continue
		}

		if exists && !(entry.folder && kind == data.ItemTypeFolder) {
			return errors.InvalidArchive(nil, entry.path.String())
		}
		if entry.folder {
			planned[key] = data.ItemTypeFolder
		} else {
			planned[key] = data.ItemTypeFile
		}
	}

	if first {
		entry.existing = ""
		entry.id = newID()
	} else if entry.existing != "" {
		return errors.InvalidArgument("'%s' changed during import", entry.path)
	}
	return nil
}

// planExistingUnsafe validates an entry that targets an existing node.
// MUST be called while holding the read or write lock.
func (mp *MountPoint) planExistingUnsafe(entry *importEntry, existing *node, user *identity.User, overwrite, first bool) error {
	path := mp.pathUnsafe(existing)
	switch {
	case entry.folder && existing.isFolder():
		if first {
			entry.existing, entry.id = existing.id, existing.id
		}
		return nil
	case entry.folder || existing.isFolder() || !overwrite:
		return errors.ItemExists(path.Parent().String(), existing.name)
	}

	if err := mp.requireUnsafe(existing, user, data.PermissionWrite); err != nil {
		return err
	}
	if err := mp.locks.Check(existing.id, path.String(), ""); err != nil {
		return err
	}

	if first {
		entry.existing, entry.id = existing.id, existing.id
	} else if entry.existing != existing.id {
		return errors.InvalidArgument("'%s' changed during import", path)
	}
	return nil
}

// writeEntry stores the content of a file entry.
func (mp *MountPoint) writeEntry(ctx context.Context, entry *importEntry) error {
	if entry.folder {
		return nil
	}

	rc, err := entry.file.Open()
	if err != nil {
		return errors.InvalidArchive(err, entry.file.Name)
	}
	defer rc.Close()

	entry.v, err = mp.writeVersion(ctx, entry.id, rc)
	return err
}

// rollbackEntries queues already written content for deletion.
func (mp *MountPoint) rollbackEntries(ch *changes, entries []*importEntry) {
	for _, entry := range entries {
		if entry.v != nil {
			ch.garbage = append(ch.garbage, contentKey(mp.tenant, entry.id, entry.v))
			entry.v = nil
		}
	}
}

// applyEntryUnsafe installs a planned entry. Planning guarantees it cannot fail.
// MUST be called while holding the write lock.
func (mp *MountPoint) applyEntryUnsafe(ch *changes, base *node, entry *importEntry, user *identity.User) {
	elements := entry.path.Elements()
	cur := base
	for _, name := range elements[:len(elements)-1] {
		child := mp.childUnsafe(cur, name)
		if child == nil {
			child = mp.mkdirsUnsafe(ch, cur, []string{name}, user)
		}
		cur = child
	}

	name := entry.path.Name()
	switch {
	case entry.folder:
		if mp.childUnsafe(cur, name) == nil {
			mp.mkdirsUnsafe(ch, cur, []string{name}, user)
		}
	case entry.existing != "":
		n := mp.nodes[entry.existing]
		mp.appendVersionUnsafe(ch, n, entry.v)
		touch(n, user)
		mp.emitUnsafe(ch, event.EventContentUpdated, n, "")
	default:
		n := newNode(entry.id, name, data.ItemTypeFile, user)
		n.versions = []*version{entry.v}
		mp.attachUnsafe(cur, n)
		mp.emitUnsafe(ch, event.EventCreated, n, "")
	}
}

// spool copies r into a temporary file so the archive can be read randomly.
// The caller closes and removes the file.
func (mp *MountPoint) spool(r io.Reader) (*os.File, int64, error) {
	file, err := os.CreateTemp(mp.options.TempDir, "tenantvfs-import-*.zip")
	if err != nil {
		return nil, 0, errors.Server(err, "unable to create spool file")
	}

	limit := mp.options.MaxArchiveSize
	src := r
	if limit > 0 {
		src = io.LimitReader(r, limit+1)
	}

	size, err := io.Copy(file, src)
	if err == nil && limit > 0 && size > limit {
		err = errors.InvalidArgument("archive exceeds maximum size of %d bytes", limit)
	}
	if err != nil {
		file.Close()
		os.Remove(file.Name())
		return nil, 0, err
	}
	return file, size, nil
}
