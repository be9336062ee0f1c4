package s3

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"

	adserrors "github.com/Aztech-1729/sliptads/internal/domain/ads/errors"
)

// maxObjectSize bounds custom media downloads
const maxObjectSize = 50 * 1024 * 1024

// Config holds S3/MinIO configuration
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Client reads custom media objects from an S3 compatible bucket
type Client struct {
	client *minio.Client
	bucket string
	logger zerolog.Logger
}

// NewClient creates a new S3/MinIO client
func NewClient(cfg *Config, logger zerolog.Logger) (*Client, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	return &Client{
		client: client,
		bucket: cfg.Bucket,
		logger: logger,
	}, nil
}

// EnsureBucket creates the bucket if it doesn't exist
func (c *Client) EnsureBucket(ctx context.Context) error {
	exists, err := c.client.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		if err := c.client.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
		c.logger.Info().Str("bucket", c.bucket).Msg("created S3 bucket")
	}

	return nil
}

// Fetch downloads an object. A missing key yields ErrMediaNotFound.
func (c *Client) Fetch(ctx context.Context, key string) ([]byte, error) {
	obj, err := c.client.GetObject(ctx, c.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get media from S3: %w", err)
	}
	defer obj.Close()

	data, err := io.ReadAll(io.LimitReader(obj, maxObjectSize+1))
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, fmt.Errorf("%w: %s", adserrors.ErrMediaNotFound, key)
		}
		return nil, fmt.Errorf("failed to read media from S3: %w", err)
	}
	if len(data) > maxObjectSize {
		return nil, fmt.Errorf("media object %s exceeds %d bytes", key, maxObjectSize)
	}

	c.logger.Debug().
		Str("object_key", key).
		Int("size", len(data)).
		Msg("fetched media from S3")

	return data, nil
}
