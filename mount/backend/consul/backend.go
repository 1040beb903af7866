package consul

import (
	"context"
	"strings"
	"sync"

	"github.com/hashicorp/consul/api"
	"github.com/mwantia/tenantvfs/data/errors"
	"github.com/mwantia/tenantvfs/mount/backend"
)

// Consul KV has a default limit of 512KB per value.
const maxObjectSize = 500 * 1024

// ConsulBackend stores content versions as raw values in the Consul KV store.
//
// Limitations:
// - Values are capped at 500KB which makes it a fit for configuration files and small assets
// - Old versions are not retained, so the backend does not advertise versioning
type ConsulBackend struct {
	mu     sync.RWMutex
	client *api.Client
	kv     *api.KV

	config *ConsulBackendConfig
}

// ConsulBackendConfig contains configuration options for the Consul backend
type ConsulBackendConfig struct {
	// Address of the Consul server (default: "127.0.0.1:8500")
	Address string `mapstructure:"address"`

	// Token for Consul ACL authentication (optional)
	Token string `mapstructure:"token"`

	// Datacenter to use (optional)
	Datacenter string `mapstructure:"datacenter"`

	// Namespace for Consul Enterprise (optional)
	Namespace string `mapstructure:"namespace"`

	// Prefix for all keys in Consul KV (default: "tenantvfs")
	Prefix string `mapstructure:"prefix"`
}

// NewConsulBackend creates a new Consul-backed content backend
func NewConsulBackend(config *ConsulBackendConfig) (*ConsulBackend, error) {
	if config == nil {
		config = &ConsulBackendConfig{}
	}

	if config.Address == "" {
		config.Address = "127.0.0.1:8500"
	}
	if config.Prefix == "" {
		config.Prefix = "tenantvfs"
	}

	clientConfig := api.DefaultConfig()
	clientConfig.Address = config.Address
	if config.Token != "" {
		clientConfig.Token = config.Token
	}
	if config.Datacenter != "" {
		clientConfig.Datacenter = config.Datacenter
	}
	if config.Namespace != "" {
		clientConfig.Namespace = config.Namespace
	}

	client, err := api.NewClient(clientConfig)
	if err != nil {
		return nil, errors.Backend(err, "consul", "unable to create client for '%s'", config.Address)
	}

	return &ConsulBackend{
		client: client,
		kv:     client.KV(),
		config: config,
	}, nil
}

// Name returns the identifier name defined for this backend
func (*ConsulBackend) Name() string {
	return "consul"
}

// Open verifies that the agent is reachable.
func (cb *ConsulBackend) Open(ctx context.Context) error {
	if _, err := cb.client.Status().Leader(); err != nil {
		return errors.Backend(err, cb.Name(), "unable to reach '%s'", cb.config.Address)
	}
	return nil
}

// Close is part of the lifecycle behaviour and gets called when the tenant is unmounted.
func (cb *ConsulBackend) Close(ctx context.Context) error {
	return nil
}

// GetCapabilities returns a list of capabilities supported by this backend
func (cb *ConsulBackend) GetCapabilities() *backend.BackendCapabilities {
	return &backend.BackendCapabilities{
		Capabilities: []backend.BackendCapability{
			backend.CapabilityContent,
			backend.CapabilityPersistent,
		},
		MaxObjectSize: maxObjectSize,
	}
}

// buildKey constructs the full Consul KV key from the content key
func (cb *ConsulBackend) buildKey(key backend.ContentKey) string {
	prefix := strings.Trim(cb.config.Prefix, "/")
	if prefix == "" {
		return key.Path()
	}
	return prefix + "/" + key.Path()
}
