package config

import (
	"context"
	"os"
	"path/filepath"

	"github.com/mitchellh/mapstructure"
	"github.com/mwantia/tenantvfs/data/errors"
	"github.com/mwantia/tenantvfs/mount/backend"
	"github.com/mwantia/tenantvfs/mount/backend/badger"
	"github.com/mwantia/tenantvfs/mount/backend/consul"
	"github.com/mwantia/tenantvfs/mount/backend/direct"
	"github.com/mwantia/tenantvfs/mount/backend/ephemeral"
	"github.com/mwantia/tenantvfs/mount/backend/postgres"
	"github.com/mwantia/tenantvfs/mount/backend/s3"
	"github.com/mwantia/tenantvfs/mount/backend/sqlite"
)

const sqliteMemory = ":memory:"

type pathConfig struct {
	Path string `mapstructure:"path"`
}

type postgresConfig struct {
	ConnString string `mapstructure:"conn_string"`
}

// NewContentBackend creates the backend described by cfg for tenant.
// Local databases and directories get a separate location per tenant
// below the configured path. The backend is not opened.
func NewContentBackend(ctx context.Context, tenant string, cfg BackendConfig) (backend.ContentBackend, error) {
	switch cfg.Type {
	case "ephemeral":
		return ephemeral.NewEphemeralBackend(), nil
	case "sqlite":
		return createSQLiteBackend(tenant, cfg.SQLite)
	case "postgres":
		return createPostgresBackend(ctx, cfg.Postgres)
	case "s3":
		return createS3Backend(cfg.S3)
	case "consul":
		return createConsulBackend(cfg.Consul)
	case "badger":
		return createBadgerBackend(tenant, cfg.Badger)
	case "direct":
		return createDirectBackend(tenant, cfg.Direct)
	default:
		return nil, errors.InvalidArgument("unknown backend type '%s'", cfg.Type)
	}
}

func decode(kind string, input map[string]any, output any) error {
	if err := mapstructure.Decode(input, output); err != nil {
		return errors.InvalidArgument("invalid %s backend config: %v", kind, err)
	}
	return nil
}

func createSQLiteBackend(tenant string, options map[string]any) (backend.ContentBackend, error) {
	cfg := pathConfig{Path: sqliteMemory}
	if err := decode("sqlite", options, &cfg); err != nil {
		return nil, err
	}

	path := cfg.Path
	if path != sqliteMemory {
		if err := os.MkdirAll(path, 0o755); err != nil {
			return nil, errors.Backend(err, "sqlite", "failed to create directory '%s'", path)
		}
		path = filepath.Join(path, tenant+".db")
	}
	return sqlite.NewSQLiteBackend(path)
}

func createPostgresBackend(ctx context.Context, options map[string]any) (backend.ContentBackend, error) {
	var cfg postgresConfig
	if err := decode("postgres", options, &cfg); err != nil {
		return nil, err
	}
	if cfg.ConnString == "" {
		return nil, errors.InvalidArgument("postgres backend requires conn_string")
	}
	return postgres.NewPostgresBackend(ctx, cfg.ConnString)
}

func createS3Backend(options map[string]any) (backend.ContentBackend, error) {
	var cfg s3.S3BackendConfig
	if err := decode("s3", options, &cfg); err != nil {
		return nil, err
	}
	return s3.NewS3Backend(&cfg)
}

func createConsulBackend(options map[string]any) (backend.ContentBackend, error) {
	var cfg consul.ConsulBackendConfig
	if err := decode("consul", options, &cfg); err != nil {
		return nil, err
	}
	return consul.NewConsulBackend(&cfg)
}

func createBadgerBackend(tenant string, options map[string]any) (backend.ContentBackend, error) {
	var cfg badger.BadgerBackendConfig
	if err := decode("badger", options, &cfg); err != nil {
		return nil, err
	}
	if !cfg.InMemory && cfg.Path != "" {
		cfg.Path = filepath.Join(cfg.Path, tenant)
	}
	return badger.NewBadgerBackend(&cfg)
}

func createDirectBackend(tenant string, options map[string]any) (backend.ContentBackend, error) {
	var cfg pathConfig
	if err := decode("direct", options, &cfg); err != nil {
		return nil, err
	}
	if cfg.Path == "" {
		return nil, errors.InvalidArgument("direct backend requires a path")
	}
	return direct.NewDirectBackend(filepath.Join(cfg.Path, tenant))
}
