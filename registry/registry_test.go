package registry_test

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mwantia/tenantvfs"
	"github.com/mwantia/tenantvfs/data"
	"github.com/mwantia/tenantvfs/log"
	"github.com/mwantia/tenantvfs/mount/backend/ephemeral"
	"github.com/mwantia/tenantvfs/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testProvider struct {
	tenant   string
	closed   atomic.Int32
	closeErr error
}

func (p *testProvider) Tenant() string                     { return p.tenant }
func (p *testProvider) FileSystem() *vfs.VirtualFileSystem { return nil }

func (p *testProvider) Close(ctx context.Context) error {
	p.closed.Add(1)
	return p.closeErr
}

func newTestRegistry(t *testing.T, loader registry.Loader, opts ...registry.RegistryOption) *registry.Registry {
	t.Helper()

	opts = append([]registry.RegistryOption{registry.WithLogger(log.NewDiscardLogger())}, opts...)
	r, err := registry.NewRegistry(loader, opts...)
	require.NoError(t, err)
	return r
}

func TestRegistry_GetProviderLoadsOnce(t *testing.T) {
	var calls atomic.Int32
	loader := registry.LoaderFunc(func(ctx context.Context, tenant string) (registry.Provider, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return &testProvider{tenant: tenant}, nil
	})
	r := newTestRegistry(t, loader)

	var wg sync.WaitGroup
	results := make([]registry.Provider, 32)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			provider, err := r.GetProvider(t.Context(), "acme")
			assert.NoError(t, err)
			results[i] = provider
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, provider := range results {
		assert.Same(t, results[0], provider)
	}
	assert.Equal(t, []string{"acme"}, r.Tenants())
}

func TestRegistry_DefaultTenant(t *testing.T) {
	loader := registry.LoaderFunc(func(ctx context.Context, tenant string) (registry.Provider, error) {
		return &testProvider{tenant: tenant}, nil
	})
	r := newTestRegistry(t, loader)

	provider, err := r.GetProvider(t.Context(), "")
	require.NoError(t, err)
	assert.Equal(t, registry.DefaultTenant, provider.Tenant())

	again, err := r.GetProvider(t.Context(), registry.DefaultTenant)
	require.NoError(t, err)
	assert.Same(t, provider, again)
}

func TestRegistry_RegisterProvider(t *testing.T) {
	var fatal error
	r := newTestRegistry(t, nil, registry.WithFatalHandler(func(err error) {
		fatal = err
	}))

	require.NoError(t, r.RegisterProvider(&testProvider{tenant: "b"}))
	require.NoError(t, r.RegisterProvider(&testProvider{tenant: "a"}))

	err := r.RegisterProvider(&testProvider{tenant: "a"})
	assert.ErrorIs(t, err, data.ErrProviderExists)
	assert.Equal(t, []string{"a", "b"}, r.Tenants())

	_, err = r.GetProvider(t.Context(), "c")
	assert.ErrorIs(t, err, data.ErrProviderLoad)
	assert.ErrorIs(t, err, data.ErrServer)
	assert.ErrorIs(t, fatal, data.ErrProviderLoad)
}

func TestRegistry_LoadFailureIsFatal(t *testing.T) {
	var fatal error
	loader := registry.LoaderFunc(func(ctx context.Context, tenant string) (registry.Provider, error) {
		return nil, io.ErrUnexpectedEOF
	})
	r := newTestRegistry(t, loader, registry.WithFatalHandler(func(err error) {
		fatal = err
	}))

	_, err := r.GetProvider(t.Context(), "broken")
	assert.ErrorIs(t, err, data.ErrProviderLoad)
	assert.ErrorIs(t, err, data.ErrServer)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.ErrorIs(t, fatal, data.ErrProviderLoad)
	assert.Empty(t, r.Tenants())
}

func TestRegistry_DefaultFatalHandlerExits(t *testing.T) {
	var code atomic.Int32
	logger := log.NewDiscardLogger()
	logger.SetExitFunc(func(c int) {
		code.Store(int32(c))
	})

	loader := registry.LoaderFunc(func(ctx context.Context, tenant string) (registry.Provider, error) {
		return nil, io.EOF
	})
	r, err := registry.NewRegistry(loader, registry.WithLogger(logger))
	require.NoError(t, err)

	_, err = r.GetProvider(t.Context(), "broken")
	assert.ErrorIs(t, err, data.ErrProviderLoad)
	assert.Equal(t, int32(1), code.Load())
}

func TestRegistry_LoadLosesRace(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	loaded := &testProvider{tenant: "acme"}

	loader := registry.LoaderFunc(func(ctx context.Context, tenant string) (registry.Provider, error) {
		close(started)
		<-release
		return loaded, nil
	})
	r := newTestRegistry(t, loader)

	done := make(chan registry.Provider)
	go func() {
		provider, err := r.GetProvider(t.Context(), "acme")
		assert.NoError(t, err)
		done <- provider
	}()

	<-started
	registered := &testProvider{tenant: "acme"}
	require.NoError(t, r.RegisterProvider(registered))
	close(release)

	assert.Same(t, registered, <-done)
	assert.Equal(t, int32(1), loaded.closed.Load())
	assert.Zero(t, registered.closed.Load())
}

func TestRegistry_UnregisterProvider(t *testing.T) {
	r := newTestRegistry(t, nil)
	provider := &testProvider{tenant: "acme"}
	require.NoError(t, r.RegisterProvider(provider))

	removed, err := r.UnregisterProvider(t.Context(), "acme")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, int32(1), provider.closed.Load())

	removed, err = r.UnregisterProvider(t.Context(), "acme")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestRegistry_Shutdown(t *testing.T) {
	r := newTestRegistry(t, nil)

	providers := []*testProvider{
		{tenant: "a"},
		{tenant: "b", closeErr: io.ErrClosedPipe},
		{tenant: "c"},
	}
	for _, provider := range providers {
		require.NoError(t, r.RegisterProvider(provider))
	}

	err := r.Shutdown(t.Context())
	assert.ErrorIs(t, err, io.ErrClosedPipe)
	assert.Empty(t, r.Tenants())
	for _, provider := range providers {
		assert.Equal(t, int32(1), provider.closed.Load(), provider.tenant)
	}
}

func TestMountProvider(t *testing.T) {
	ctx := t.Context()
	provider, err := registry.NewMountProvider(ctx, "acme", ephemeral.NewEphemeralBackend(), nil,
		vfs.WithLogger(log.NewDiscardLogger()))
	require.NoError(t, err)

	r := newTestRegistry(t, nil)
	require.NoError(t, r.RegisterProvider(provider))

	loaded, err := r.GetProvider(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, "acme", loaded.FileSystem().Tenant())

	mp := loaded.FileSystem().MountPoint()
	require.NoError(t, r.Shutdown(ctx))
	assert.True(t, mp.Closed())

	_, err = registry.NewMountProvider(ctx, "acme", nil, nil)
	assert.ErrorIs(t, err, data.ErrConflict)
}
