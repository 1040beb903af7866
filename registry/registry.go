package registry

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/mwantia/tenantvfs/data/errors"
	"github.com/mwantia/tenantvfs/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// DefaultTenant is used for empty tenant ids.
const DefaultTenant = "default"

// Registry maps tenant ids to their providers. Providers missing on first
// access are created once through the loader, even under concurrent access.
type Registry struct {
	mu sync.RWMutex

	loader    Loader
	providers map[string]Provider
	loading   singleflight.Group

	options *RegistryOptions
	log     *log.Logger
}

func NewRegistry(loader Loader, opts ...RegistryOption) (*Registry, error) {
	options := newDefaultRegistryOptions()
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}

	r := &Registry{
		loader:    loader,
		providers: make(map[string]Provider),
		options:   options,
		log:       options.Logger,
	}
	if options.FatalHandler == nil {
		options.FatalHandler = func(err error) {
			r.log.Fatal("%v", err)
		}
	}
	return r, nil
}

// GetProvider returns the provider of tenant, loading it if required.
// A load failure, or a missing loader, is reported to the fatal handler
// and returned as ErrProviderLoad.
func (r *Registry) GetProvider(ctx context.Context, tenant string) (Provider, error) {
	tenant = normalize(tenant)

	r.mu.RLock()
	provider, exists := r.providers[tenant]
	r.mu.RUnlock()
	if exists {
		return provider, nil
	}

	if r.loader == nil {
		err := errors.ProviderLoad(errors.Server(nil, "no loader configured"), tenant)
		r.options.FatalHandler(err)
		return nil, err
	}

	result, err, _ := r.loading.Do(tenant, func() (any, error) {
		return r.load(context.WithoutCancel(ctx), tenant)
	})
	if err != nil {
		return nil, err
	}
	return result.(Provider), nil
}

func (r *Registry) load(ctx context.Context, tenant string) (Provider, error) {
	r.mu.RLock()
	provider, exists := r.providers[tenant]
	r.mu.RUnlock()
	if exists {
		return provider, nil
	}

	r.log.Debug("Loading provider for tenant '%s'", tenant)
	loaded, err := r.loader.Load(ctx, tenant)
	if err == nil && loaded == nil {
		err = errors.Server(nil, "loader returned no provider")
	}
	if err != nil {
		r.log.Error("Unable to load provider for tenant '%s': %v", tenant, err)
		err = errors.ProviderLoad(err, tenant)
		r.options.FatalHandler(err)
		return nil, err
	}

	r.mu.Lock()
	installed, exists := r.providers[tenant]
	if !exists {
		r.providers[tenant] = loaded
	}
	r.mu.Unlock()

	if exists {
		r.log.Debug("Discarding provider for tenant '%s', already registered", tenant)
		if err := loaded.Close(ctx); err != nil {
			r.log.Warn("Unable to close discarded provider for tenant '%s': %v", tenant, err)
		}
		return installed, nil
	}

	r.log.Info("Loaded provider for tenant '%s'", tenant)
	return loaded, nil
}

// RegisterProvider binds provider to its tenant. The first registration wins.
func (r *Registry) RegisterProvider(provider Provider) error {
	if provider == nil {
		return errors.InvalidArgument("provider must not be nil")
	}
	tenant := normalize(provider.Tenant())

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[tenant]; exists {
		return errors.ProviderExists(tenant)
	}
	r.providers[tenant] = provider
	r.log.Debug("Registered provider for tenant '%s'", tenant)
	return nil
}

// UnregisterProvider removes and closes the provider of tenant.
// Returns false if no provider was bound.
func (r *Registry) UnregisterProvider(ctx context.Context, tenant string) (bool, error) {
	tenant = normalize(tenant)

	r.mu.Lock()
	provider, exists := r.providers[tenant]
	delete(r.providers, tenant)
	r.mu.Unlock()

	if !exists {
		return false, nil
	}

	r.log.Debug("Unregistered provider for tenant '%s'", tenant)
	return true, provider.Close(ctx)
}

// Tenants returns the ids of all bound tenants in sorted order.
func (r *Registry) Tenants() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Sorted(maps.Keys(r.providers))
}

// Shutdown unbinds and closes every provider concurrently.
func (r *Registry) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	providers := r.providers
	r.providers = make(map[string]Provider)
	r.mu.Unlock()

	errs := errors.Errors{}
	var g errgroup.Group
	for tenant, provider := range providers {
		g.Go(func() error {
			err := provider.Close(ctx)
			if err != nil {
				r.log.Warn("Unable to close provider for tenant '%s': %v", tenant, err)
				errs.Add(err)
			}
			return err
		})
	}

	// Every error is collected in errs
	_ = g.Wait()
	r.log.Info("Closed %d providers", len(providers))
	return errs.Errors()
}

func normalize(tenant string) string {
	if tenant = strings.TrimSpace(tenant); tenant == "" {
		return DefaultTenant
	}
	return tenant
}
