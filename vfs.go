package vfs

import (
	"context"

	"github.com/mwantia/tenantvfs/data"
	"github.com/mwantia/tenantvfs/data/errors"
	"github.com/mwantia/tenantvfs/log"
	"github.com/mwantia/tenantvfs/mount"
)

// VirtualFileSystem exposes the tree of a single tenant by item id and path.
// It translates caller parameters into MountPoint operations and shapes
// their results into Items.
type VirtualFileSystem struct {
	mount   *mount.MountPoint
	options *VirtualFileSystemOptions
	log     *log.Logger
}

func NewVirtualFileSystem(mp *mount.MountPoint, opts ...VirtualFileSystemOption) (*VirtualFileSystem, error) {
	if mp == nil {
		return nil, errors.InvalidArgument("virtual file system requires a mount point")
	}

	options := newDefaultVirtualFileSystemOptions()
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}

	logger := options.Logger
	if logger == nil {
		logger = log.NewLogger("vfs", options.LogLevel, options.LogFile, options.NoTerminalLog)
	}

	return &VirtualFileSystem{
		mount:   mp,
		options: options,
		log:     logger.Named(mp.Tenant()),
	}, nil
}

// Tenant returns the tenant id served by this file system.
func (v *VirtualFileSystem) Tenant() string {
	return v.mount.Tenant()
}

// MountPoint returns the mount point backing this file system.
func (v *VirtualFileSystem) MountPoint() *mount.MountPoint {
	return v.mount
}

// GetInfo describes the capabilities of the tenant file system.
func (v *VirtualFileSystem) GetInfo(ctx context.Context) (*data.Info, error) {
	root := v.mount.Root()
	if !root.Exists() {
		return nil, errors.MountClosed(v.Tenant())
	}

	caps := v.mount.Capabilities()
	return &data.Info{
		TenantID:        v.Tenant(),
		Versioning:      v.mount.Versioning(),
		LockSupported:   true,
		ACLSupported:    true,
		SearchSupported: v.mount.Searchable(),
		AnyPrincipal:    data.AnyPrincipal,
		Permissions: []string{
			data.PermissionAll,
			data.PermissionRead,
			data.PermissionUpdateACL,
			data.PermissionWrite,
		},
		RootFolderID:    root.ID(),
		RootFolderPath:  data.Root.String(),
		Backend:         v.mount.Backend().Name(),
		BackendFeatures: caps.Strings(),
	}, nil
}

// GetItem returns the item with id.
func (v *VirtualFileSystem) GetItem(ctx context.Context, id string, includePermissions bool, filter data.PropertyFilter) (*data.Item, error) {
	file, err := v.mount.GetVirtualFileByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return file.Item(ctx, includePermissions, filter)
}

// GetItemByPath returns the item at path. A non-empty versionID selects a
// version of a file and is rejected for folders.
func (v *VirtualFileSystem) GetItemByPath(ctx context.Context, path, versionID string, includePermissions bool, filter data.PropertyFilter) (*data.Item, error) {
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
	return file.Item(ctx, includePermissions, filter)
}

func (v *VirtualFileSystem) fileByPath(ctx context.Context, raw string) (*mount.VirtualFile, error) {
	path, err := data.ParsePath(raw)
	if err != nil {
		return nil, err
	}
	return v.mount.GetVirtualFile(ctx, path)
}

// folderByID returns the folder with id or ErrForbidden for files.
func (v *VirtualFileSystem) folderByID(ctx context.Context, id string) (*mount.VirtualFile, error) {
	file, err := v.mount.GetVirtualFileByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !file.IsFolder() {
		return nil, errors.NotAFolder(file.Path().String())
	}
	return file, nil
}

// item converts file into an Item with all properties.
func (v *VirtualFileSystem) item(ctx context.Context, file *mount.VirtualFile, err error) (*data.Item, error) {
	if err != nil {
		return nil, err
	}
	return file.Item(ctx, false, data.AllProperties)
}
