package registry

import (
	"context"

	"github.com/mwantia/tenantvfs"
	"github.com/mwantia/tenantvfs/data/errors"
	"github.com/mwantia/tenantvfs/mount"
	"github.com/mwantia/tenantvfs/mount/backend"
)

// Provider owns the file system of a single tenant.
type Provider interface {
	// Tenant returns the tenant id served by this provider.
	Tenant() string
	// FileSystem returns the facade of the tenant.
	FileSystem() *vfs.VirtualFileSystem
	// Close releases every resource held by the provider.
	Close(ctx context.Context) error
}

// Loader creates the provider of a tenant on first access.
type Loader interface {
	Load(ctx context.Context, tenant string) (Provider, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, tenant string) (Provider, error)

func (f LoaderFunc) Load(ctx context.Context, tenant string) (Provider, error) {
	return f(ctx, tenant)
}

// MountProvider binds a mount point and its content backend.
type MountProvider struct {
	backend backend.ContentBackend
	mount   *mount.MountPoint
	fs      *vfs.VirtualFileSystem
}

// NewMountProvider opens content and mounts the tenant on it. The backend
// is closed again if mounting fails.
func NewMountProvider(ctx context.Context, tenant string, content backend.ContentBackend, mountOpts []mount.MountOption, opts ...vfs.VirtualFileSystemOption) (*MountProvider, error) {
	if content == nil {
		return nil, errors.InvalidArgument("provider of tenant '%s' requires a content backend", tenant)
	}
	if err := content.Open(ctx); err != nil {
		return nil, errors.Backend(err, content.Name(), "failed to open backend of tenant '%s'", tenant)
	}

	mp, err := mount.NewMountPoint(tenant, content, mountOpts...)
	if err != nil {
		_ = content.Close(ctx)
		return nil, err
	}

	fs, err := vfs.NewVirtualFileSystem(mp, opts...)
	if err != nil {
		_ = content.Close(ctx)
		return nil, err
	}

	return &MountProvider{
		backend: content,
		mount:   mp,
		fs:      fs,
	}, nil
}

func (p *MountProvider) Tenant() string {
	return p.mount.Tenant()
}

func (p *MountProvider) FileSystem() *vfs.VirtualFileSystem {
	return p.fs
}

// Close resets the mount point and closes the content backend.
func (p *MountProvider) Close(ctx context.Context) error {
	errs := errors.Errors{}
	errs.Add(p.mount.Reset(ctx))
	if err := p.backend.Close(ctx); err != nil {
		errs.Add(errors.Backend(err, p.backend.Name(), "failed to close backend of tenant '%s'", p.Tenant()))
	}
	return errs.Errors()
}
