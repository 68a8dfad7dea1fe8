package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"time"

	"dataroom/internal/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("dataroom/storage")

// MinIOStore keeps objects in an S3-compatible bucket
type MinIOStore struct {
	client *minio.Client
	// publicClient signs URLs against the endpoint browsers can reach
	publicClient *minio.Client
	bucket       string
	region       string
	urlExpiry    time.Duration
	logger       *slog.Logger
}

// NewMinIOStore connects to the object store. The bucket is not touched
// until EnsureBucket is called.
func NewMinIOStore(cfg config.MinIOConfig, logger *slog.Logger) (*MinIOStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	publicClient := client
	if cfg.PublicEndpoint != "" && cfg.PublicEndpoint != cfg.Endpoint {
		endpoint, secure, err := parsePublicEndpoint(cfg.PublicEndpoint, cfg.UseSSL)
		if err != nil {
			return nil, err
		}
		publicClient, err = minio.New(endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
			Secure: secure,
			// Presigning never dials out when the region is fixed
			Region: regionOrDefault(cfg.Region),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create public MinIO client: %w", err)
		}
	}

	expiry := cfg.URLExpiry
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}

	return &MinIOStore{
		client:       client,
		publicClient: publicClient,
		bucket:       cfg.Bucket,
		region:       cfg.Region,
		urlExpiry:    expiry,
		logger:       logger,
	}, nil
}

// EnsureBucket creates the bucket if it does not exist yet
func (m *MinIOStore) EnsureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if exists {
		return nil
	}

	m.logger.Info("creating bucket", "bucket", m.bucket)
	if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{Region: m.region}); err != nil {
		return fmt.Errorf("failed creating bucket %s: %w", m.bucket, err)
	}
	return nil
}

func (m *MinIOStore) Put(ctx context.Context, r io.Reader, size int64, contentType string) (string, error) {
	key := newObjectKey(time.Now().UTC())

	ctx, span := tracer.Start(ctx, "minio.put",
		trace.WithAttributes(
			attribute.String("object_key", key),
			attribute.Int64("size_bytes", size),
			attribute.String("content_type", contentType),
		),
	)
	defer span.End()

	_, err := m.client.PutObject(ctx, m.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "put failed")
		m.logger.Error("minio upload failed", "object_key", key, "size", size, "bucket", m.bucket, "error", err)
		return "", fmt.Errorf("failed to upload object: %w", err)
	}

	m.logger.Debug("minio upload succeeded", "object_key", key, "size", size, "bucket", m.bucket)
	return key, nil
}

func (m *MinIOStore) Delete(ctx context.Context, ref string) error {
	ctx, span := tracer.Start(ctx, "minio.delete",
		trace.WithAttributes(attribute.String("object_key", ref)),
	)
	defer span.End()

	// RemoveObject succeeds for keys that are already gone
	if err := m.client.RemoveObject(ctx, m.bucket, ref, minio.RemoveObjectOptions{}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete failed")
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

func (m *MinIOStore) PublicURL(ctx context.Context, ref string) (string, error) {
	query := make(url.Values)
	query.Set("response-content-disposition", "inline")

	u, err := m.publicClient.PresignedGetObject(ctx, m.bucket, ref, m.urlExpiry, query)
	if err != nil {
		return "", fmt.Errorf("failed to presign object url: %w", err)
	}
	return u.String(), nil
}

func parsePublicEndpoint(raw string, defaultSecure bool) (string, bool, error) {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		// Bare host:port
		return raw, defaultSecure, nil
	}
	switch u.Scheme {
	case "https":
		return u.Host, true, nil
	case "http":
		return u.Host, false, nil
	default:
		return "", false, fmt.Errorf("unsupported public endpoint scheme %q", u.Scheme)
	}
}

func regionOrDefault(region string) string {
	if region == "" {
		return "us-east-1"
	}
	return region
}
