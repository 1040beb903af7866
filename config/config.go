package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mwantia/tenantvfs/data/errors"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment override,
// e.g. TENANTVFS_LOGGING_LEVEL=debug.
const EnvPrefix = "TENANTVFS"

// Output values of LoggingConfig that do not name a file.
const (
	OutputStdout = "stdout"
	OutputNone   = "none"
)

type Config struct {
	Logging LoggingConfig           `mapstructure:"logging" yaml:"logging"`
	Mount   MountConfig             `mapstructure:"mount" yaml:"mount"`
	Backend BackendConfig           `mapstructure:"backend" yaml:"backend"`
	Tenants map[string]TenantConfig `mapstructure:"tenants" yaml:"tenants,omitempty" validate:"dive"`
	Search  SearchConfig            `mapstructure:"search" yaml:"search"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level" yaml:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error"`

	// Either text or json
	Format string `mapstructure:"format" yaml:"format" validate:"required,oneof=text json"`

	// stdout, none or the path of a rotated log file
	Output string `mapstructure:"output" yaml:"output" validate:"required"`

	Rotation RotationConfig `mapstructure:"rotation" yaml:"rotation"`
}

type RotationConfig struct {
	MaxSize    int  `mapstructure:"max_size" yaml:"max_size" validate:"gte=0"`
	MaxBackups int  `mapstructure:"max_backups" yaml:"max_backups" validate:"gte=0"`
	MaxAge     int  `mapstructure:"max_age" yaml:"max_age" validate:"gte=0"`
	Compress   bool `mapstructure:"compress" yaml:"compress"`
}

type MountConfig struct {
	Versioning     bool          `mapstructure:"versioning" yaml:"versioning"`
	ImportMode     string        `mapstructure:"import_mode" yaml:"import_mode" validate:"required,oneof=atomic best_effort"`
	LockTimeout    time.Duration `mapstructure:"lock_timeout" yaml:"lock_timeout" validate:"gte=0"`
	TempDir        string        `mapstructure:"temp_dir" yaml:"temp_dir,omitempty"`
	RootACLGroup   string        `mapstructure:"root_acl_group" yaml:"root_acl_group" validate:"required"`
	MaxArchiveSize int64         `mapstructure:"max_archive_size" yaml:"max_archive_size" validate:"gte=0"`
	ReadOnly       bool          `mapstructure:"read_only" yaml:"read_only"`
}

// BackendConfig selects a content backend. Only the map matching Type is
// decoded, the others are ignored.
type BackendConfig struct {
	Type string `mapstructure:"type" yaml:"type" validate:"required,oneof=ephemeral sqlite postgres s3 consul badger direct"`

	SQLite   map[string]any `mapstructure:"sqlite" yaml:"sqlite,omitempty"`
	Postgres map[string]any `mapstructure:"postgres" yaml:"postgres,omitempty"`
	S3       map[string]any `mapstructure:"s3" yaml:"s3,omitempty"`
	Consul   map[string]any `mapstructure:"consul" yaml:"consul,omitempty"`
	Badger   map[string]any `mapstructure:"badger" yaml:"badger,omitempty"`
	Direct   map[string]any `mapstructure:"direct" yaml:"direct,omitempty"`
}

// TenantConfig overrides the defaults for a single tenant.
type TenantConfig struct {
	Backend *BackendConfig `mapstructure:"backend" yaml:"backend,omitempty"`
}

type SearchConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// Default returns the configuration used for missing keys.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "INFO",
			Format: "text",
			Output: OutputStdout,
			Rotation: RotationConfig{
				MaxSize:    128,
				MaxBackups: 5,
				MaxAge:     16,
			},
		},
		Mount: MountConfig{
			Versioning:   true,
			ImportMode:   "atomic",
			LockTimeout:  10 * time.Minute,
			RootACLGroup: "workspace/developer",
		},
		Backend: BackendConfig{
			Type: "ephemeral",
		},
	}
}

// Load reads the configuration from path and the environment.
// An empty path searches for config.yaml in the default directory; a
// missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setupViper(v, path)
	setDefaults(v, Default())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.Server(err, "failed to read config file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Server(err, "failed to unmarshal config")
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setupViper(v *viper.Viper, path string) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		return
	}
	v.AddConfigPath(Dir())
	v.SetConfigName("config")
	v.SetConfigType("yaml")
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
	v.SetDefault("logging.output", cfg.Logging.Output)
	v.SetDefault("logging.rotation.max_size", cfg.Logging.Rotation.MaxSize)
	v.SetDefault("logging.rotation.max_backups", cfg.Logging.Rotation.MaxBackups)
	v.SetDefault("logging.rotation.max_age", cfg.Logging.Rotation.MaxAge)
	v.SetDefault("logging.rotation.compress", cfg.Logging.Rotation.Compress)

	v.SetDefault("mount.versioning", cfg.Mount.Versioning)
	v.SetDefault("mount.import_mode", cfg.Mount.ImportMode)
	v.SetDefault("mount.lock_timeout", cfg.Mount.LockTimeout)
	v.SetDefault("mount.temp_dir", cfg.Mount.TempDir)
	v.SetDefault("mount.root_acl_group", cfg.Mount.RootACLGroup)
	v.SetDefault("mount.max_archive_size", cfg.Mount.MaxArchiveSize)
	v.SetDefault("mount.read_only", cfg.Mount.ReadOnly)

	v.SetDefault("backend.type", cfg.Backend.Type)
	v.SetDefault("search.enabled", cfg.Search.Enabled)
}

// Write stores cfg as YAML at path, creating missing directories.
func Write(path string, cfg *Config) error {
	buffer, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Server(err, "failed to marshal config")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Server(err, "failed to create config directory")
	}
	if err := os.WriteFile(path, buffer, 0o644); err != nil {
		return errors.Server(err, "failed to write config file '%s'", path)
	}
	return nil
}

// Dir returns the directory searched when Load is called without a path.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "tenantvfs")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "tenantvfs")
}

// DefaultPath returns the config file used when Load is called without a path.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}
