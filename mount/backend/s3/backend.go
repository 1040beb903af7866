package s3

import (
	"context"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/mwantia/tenantvfs/data/errors"
	"github.com/mwantia/tenantvfs/mount/backend"
)

// S3BackendConfig contains the connection settings of an S3 compatible endpoint.
type S3BackendConfig struct {
	Endpoint     string `mapstructure:"endpoint"`
	Bucket       string `mapstructure:"bucket"`
	AccessKey    string `mapstructure:"access_key"`
	SecretKey    string `mapstructure:"secret_key"`
	Region       string `mapstructure:"region"`
	Prefix       string `mapstructure:"prefix"`
	UseSSL       bool   `mapstructure:"use_ssl"`
	CreateBucket bool   `mapstructure:"create_bucket"`
}

// S3Backend stores each content version as a single object.
type S3Backend struct {
	mu sync.RWMutex

	client *minio.Client
	config *S3BackendConfig
}

func NewS3Backend(config *S3BackendConfig) (*S3Backend, error) {
	if config == nil || config.Endpoint == "" || config.Bucket == "" {
		return nil, errors.InvalidArgument("s3 backend requires endpoint and bucket")
	}

	client, err := minio.New(config.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.AccessKey, config.SecretKey, ""),
		Secure: config.UseSSL,
		Region: config.Region,
	})
	if err != nil {
		return nil, errors.Backend(err, "s3", "unable to create client for '%s'", config.Endpoint)
	}

	return &S3Backend{
		client: client,
		config: config,
	}, nil
}

// Returns the identifier name defined for this backend
func (*S3Backend) Name() string {
	return "s3"
}

// Open verifies the bucket and creates it when configured to do so.
func (sb *S3Backend) Open(ctx context.Context) error {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	exists, err := sb.client.BucketExists(ctx, sb.config.Bucket)
	if err != nil {
		return errors.Backend(err, sb.Name(), "unable to check bucket '%s'", sb.config.Bucket)
	}

	if !exists {
		if !sb.config.CreateBucket {
			return errors.Backend(nil, sb.Name(), "bucket '%s' does not exist", sb.config.Bucket)
		}
		if err := sb.client.MakeBucket(ctx, sb.config.Bucket, minio.MakeBucketOptions{
			Region: sb.config.Region,
		}); err != nil {
			return errors.Backend(err, sb.Name(), "unable to create bucket '%s'", sb.config.Bucket)
		}
	}

	return nil
}

// Close is part of the lifecycle behaviour and gets called when the tenant is unmounted.
func (sb *S3Backend) Close(ctx context.Context) error {
	return nil
}

// GetCapabilities returns a list of capabilities supported by this backend.
func (sb *S3Backend) GetCapabilities() *backend.BackendCapabilities {
	return &backend.BackendCapabilities{
		Capabilities: []backend.BackendCapability{
			backend.CapabilityContent,
			backend.CapabilityVersioning,
			backend.CapabilityPersistent,
			backend.CapabilityStreaming,
		},
	}
}

func (sb *S3Backend) objectName(key backend.ContentKey) string {
	prefix := strings.Trim(sb.config.Prefix, "/")
	if prefix == "" {
		return key.Path()
	}
	return prefix + "/" + key.Path()
}

func isNotFound(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NotFound"
}
