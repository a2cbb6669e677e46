package publish

import (
	"bytes"
	"context"
	"fmt"
	"net/url"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Config holds connection settings for an S3-compatible store.
type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl"`

	// CreateBucket makes the bucket on first publish when it is missing.
	CreateBucket bool `yaml:"create_bucket"`
}

// Validate checks that the required settings are present.
func (c S3Config) Validate() error {
	if c.Endpoint == "" {
		return ErrMissingEndpoint
	}
	if c.Bucket == "" {
		return ErrMissingBucket
	}
	if c.AccessKey == "" || c.SecretKey == "" {
		return ErrMissingCredentials
	}
	return nil
}

// S3Store stores objects in a bucket through minio-go.
type S3Store struct {
	client *minio.Client
	cfg    S3Config
	ready  bool
}

// NewS3Store creates an S3Store. No request is sent until the first Put.
func NewS3Store(cfg S3Config) (*S3Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	endpoint, secure := parseEndpoint(cfg.Endpoint, cfg.UseSSL)

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object store client: %w", err)
	}
	return &S3Store{client: client, cfg: cfg}, nil
}

// Put uploads data and returns an s3:// location.
func (s *S3Store) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	clean, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	if err := s.ensureBucket(ctx); err != nil {
		return "", err
	}

	_, err = s.client.PutObject(ctx, s.cfg.Bucket, clean, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", clean, err)
	}
	return fmt.Sprintf("s3://%s/%s", s.cfg.Bucket, clean), nil
}

func (s *S3Store) ensureBucket(ctx context.Context) error {
	if s.ready {
		return nil
	}
	exists, err := s.client.BucketExists(ctx, s.cfg.Bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if !s.cfg.CreateBucket {
			return fmt.Errorf("bucket %s not found: %w", s.cfg.Bucket, ErrMissingBucket)
		}
		if err := s.client.MakeBucket(ctx, s.cfg.Bucket, minio.MakeBucketOptions{Region: s.cfg.Region}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}
	s.ready = true
	return nil
}

// parseEndpoint accepts either host:port or a URL. An https scheme forces
// TLS.
func parseEndpoint(raw string, useSSL bool) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		// host:port without a scheme
		return raw, useSSL
	}
	if u.Scheme == "https" {
		useSSL = true
	}
	return u.Host, useSSL
}
