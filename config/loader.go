package config

import (
	"context"

	"github.com/mwantia/tenantvfs"
	"github.com/mwantia/tenantvfs/log"
	"github.com/mwantia/tenantvfs/mount"
	"github.com/mwantia/tenantvfs/registry"
	"github.com/mwantia/tenantvfs/search"
)

// BackendFor returns the backend config of tenant, falling back to the
// default backend.
func (c *Config) BackendFor(tenant string) BackendConfig {
	if tc, exists := c.Tenants[tenant]; exists && tc.Backend != nil {
		return *tc.Backend
	}
	return c.Backend
}

// MountOptions translates the mount section into mount point options.
func (c *Config) MountOptions(logger *log.Logger) []mount.MountOption {
	opts := []mount.MountOption{
		mount.WithVersioning(c.Mount.Versioning),
		mount.WithImportMode(mount.ImportMode(c.Mount.ImportMode)),
		mount.WithRootACLGroup(c.Mount.RootACLGroup),
		mount.WithDefaultLockTimeout(c.Mount.LockTimeout),
		mount.WithMaxArchiveSize(c.Mount.MaxArchiveSize),
		mount.WithReadOnly(c.Mount.ReadOnly),
		mount.WithLogger(logger),
	}
	if c.Mount.TempDir != "" {
		opts = append(opts, mount.WithTempDir(c.Mount.TempDir))
	}
	if c.Search.Enabled {
		opts = append(opts, mount.WithSearcher(search.NewMemorySearcher()))
	}
	return opts
}

// NewProviderLoader returns a loader mounting every tenant on the backend
// configured for it.
func NewProviderLoader(cfg *Config, logger *log.Logger) registry.Loader {
	return registry.LoaderFunc(func(ctx context.Context, tenant string) (registry.Provider, error) {
		content, err := NewContentBackend(ctx, tenant, cfg.BackendFor(tenant))
		if err != nil {
			return nil, err
		}

		logger.Debug("Mounting tenant '%s' on backend '%s'", tenant, content.Name())
		return registry.NewMountProvider(ctx, tenant, content, cfg.MountOptions(logger), vfs.WithLogger(logger))
	})
}
