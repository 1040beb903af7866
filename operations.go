package vfs

import (
	"context"
	"io"
	"time"

	"github.com/mwantia/tenantvfs/data"
	"github.com/mwantia/tenantvfs/data/errors"
	"github.com/mwantia/tenantvfs/mount"
)

// CreateFile creates a file below the folder parentID.
func (v *VirtualFileSystem) CreateFile(ctx context.Context, parentID, name, mediaType string, r io.Reader) (*data.Item, error) {
	parent, err := v.mount.GetVirtualFileByID(ctx, parentID)
	if err != nil {
		return nil, err
	}
	created, err := parent.CreateFile(ctx, name, mediaType, r)
	return v.item(ctx, created, err)
}

// CreateFolder creates a folder below the folder parentID.
func (v *VirtualFileSystem) CreateFolder(ctx context.Context, parentID, name string) (*data.Item, error) {
	parent, err := v.mount.GetVirtualFileByID(ctx, parentID)
	if err != nil {
		return nil, err
	}
	created, err := parent.CreateFolder(ctx, name)
	return v.item(ctx, created, err)
}

// Copy copies the item id into parentID. An empty name keeps the source name.
func (v *VirtualFileSystem) Copy(ctx context.Context, id, parentID, name string) (*data.Item, error) {
	source, parent, err := v.pair(ctx, id, parentID)
	if err != nil {
		return nil, err
	}
	copied, err := source.CopyTo(ctx, parent, name, false)
	return v.item(ctx, copied, err)
}

// Move moves the item id into parentID. An empty name keeps the source name.
func (v *VirtualFileSystem) Move(ctx context.Context, id, parentID, name, token string) (*data.Item, error) {
	source, parent, err := v.pair(ctx, id, parentID)
	if err != nil {
		return nil, err
	}
	moved, err := source.MoveTo(ctx, parent, name, false, token)
	return v.item(ctx, moved, err)
}

// Rename changes name and media type of id. With both empty the item is
// returned unchanged.
func (v *VirtualFileSystem) Rename(ctx context.Context, id, newName, newMediaType, token string) (*data.Item, error) {
	file, err := v.mount.GetVirtualFileByID(ctx, id)
	if err != nil {
		return nil, err
	}
	renamed, err := file.Rename(ctx, newName, newMediaType, token)
	return v.item(ctx, renamed, err)
}

// Delete removes id and everything below it.
func (v *VirtualFileSystem) Delete(ctx context.Context, id, token string) error {
	file, err := v.mount.GetVirtualFileByID(ctx, id)
	if err != nil {
		return err
	}
	if file.IsRoot() {
		return errors.RootOperation("delete")
	}
	return file.Delete(ctx, token)
}

// UpdateItem sets properties on id and returns the updated item.
func (v *VirtualFileSystem) UpdateItem(ctx context.Context, id string, properties []data.Property, token string) (*data.Item, error) {
	file, err := v.mount.GetVirtualFileByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := file.UpdateProperties(ctx, properties, token); err != nil {
		return nil, err
	}
	return v.item(ctx, file, nil)
}

// GetContent opens the current content of the file id.
func (v *VirtualFileSystem) GetContent(ctx context.Context, id string) (*mount.ContentStream, error) {
	file, err := v.mount.GetVirtualFileByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return file.GetContent(ctx)
}

// GetContentByPath opens the content of the file at path. A non-empty
// versionID selects an older version.
func (v *VirtualFileSystem) GetContentByPath(ctx context.Context, path, versionID string) (*mount.ContentStream, error) {
	file, err := v.fileByPath(ctx, path)
	if err != nil {
		return nil, err
	}

	if versionID != "" {
		if file.IsFolder() {
			return nil, errors.InvalidVersionRequest(file.Path().String())
		}
		if file, err = file.GetVersion(ctx, versionID); err != nil {
			return nil, err
		}
	}
	return file.GetContent(ctx)
}

// UpdateContent stores r as new version of the file id.
func (v *VirtualFileSystem) UpdateContent(ctx context.Context, id string, r io.Reader, mediaType, token string) error {
	file, err := v.mount.GetVirtualFileByID(ctx, id)
	if err != nil {
		return err
	}
	return file.UpdateContent(ctx, r, mediaType, token)
}

// Lock locks the file id. A zero timeout never expires.
func (v *VirtualFileSystem) Lock(ctx context.Context, id string, timeout time.Duration) (data.LockInfo, error) {
	file, err := v.mount.GetVirtualFileByID(ctx, id)
	if err != nil {
		return data.LockInfo{}, err
	}
	if !file.IsFile() {
		return data.LockInfo{}, errors.NotAFile(file.Path().String())
	}
	return file.Lock(ctx, timeout)
}

// Unlock releases the lock of the file id. Folders are never locked.
func (v *VirtualFileSystem) Unlock(ctx context.Context, id, token string) error {
	file, err := v.mount.GetVirtualFileByID(ctx, id)
	if err != nil {
		return err
	}
	if !file.IsFile() {
		return errors.NotLocked(file.Path().String())
	}
	return file.Unlock(ctx, token)
}

// GetACL returns the entries set directly on id.
func (v *VirtualFileSystem) GetACL(ctx context.Context, id string) ([]data.AccessControlEntry, error) {
	file, err := v.mount.GetVirtualFileByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return file.GetACL(ctx)
}

// UpdateACL merges or replaces the ACL of id.
func (v *VirtualFileSystem) UpdateACL(ctx context.Context, id string, entries []data.AccessControlEntry, override bool, token string) error {
	file, err := v.mount.GetVirtualFileByID(ctx, id)
	if err != nil {
		return err
	}
	return file.UpdateACL(ctx, entries, override, token)
}

func (v *VirtualFileSystem) pair(ctx context.Context, id, parentID string) (*mount.VirtualFile, *mount.VirtualFile, error) {
	source, err := v.mount.GetVirtualFileByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	parent, err := v.mount.GetVirtualFileByID(ctx, parentID)
	if err != nil {
		return nil, nil, err
	}
	return source, parent, nil
}
