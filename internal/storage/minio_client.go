package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sirupsen/logrus"

	"blogAPI/internal/config"
)

type Storage interface {
	UploadImage(ctx context.Context, postID, fileName, contentType string, file io.Reader, size int64) (objectName string, imageURL string, err error)
	DeleteImage(ctx context.Context, objectName string) error
}

type MinIOClient struct {
	client *minio.Client
	cfg    config.MinIO
	log    *logrus.Logger
}

func NewMinIOClient(ctx context.Context, cfg config.MinIO, log *logrus.Logger) (*MinIOClient, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	m := &MinIOClient{client: client, cfg: cfg, log: log}
	if err := m.ensureBucket(ctx); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *MinIOClient) ensureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.cfg.BucketName)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", m.cfg.BucketName, err)
	}
	if exists {
		return nil
	}

	if err := m.client.MakeBucket(ctx, m.cfg.BucketName, minio.MakeBucketOptions{Region: m.cfg.Region}); err != nil {
		return fmt.Errorf("create bucket %s: %w", m.cfg.BucketName, err)
	}

	m.log.WithField("bucket", m.cfg.BucketName).Info("created minio bucket")
	return nil
}

// ObjectName lays images out as posts/{postID}/{yyyy}/{mm}/{random}{ext}.
func ObjectName(postID, ext string, now time.Time) string {
	return fmt.Sprintf("posts/%s/%d/%02d/%s%s", postID, now.Year(), now.Month(), uuid.New().String(), ext)
}

// ObjectURL is the public address of objectName under publicURL.
func ObjectURL(publicURL, bucket, objectName string) string {
	return publicURL + "/" + path.Join(bucket, objectName)
}

func (m *MinIOClient) UploadImage(ctx context.Context, postID, fileName, contentType string, file io.Reader, size int64) (string, string, error) {
	ext, ok := AllowedImageTypes[contentType]
	if !ok {
		return "", "", fmt.Errorf("unsupported content type %s", contentType)
	}

	now := time.Now().UTC()
	objectName := ObjectName(postID, ext, now)

	_, err := m.client.PutObject(ctx, m.cfg.BucketName, objectName, file, size,
		minio.PutObjectOptions{
			ContentType: contentType,
			UserMetadata: map[string]string{
				"original-filename": fileName,
				"post-id":           postID,
				"uploaded-at":       now.Format(time.RFC3339),
			},
		})
	if err != nil {
		return "", "", fmt.Errorf("upload to minio: %w", err)
	}

	return objectName, ObjectURL(m.cfg.PublicURL, m.cfg.BucketName, objectName), nil
}

func (m *MinIOClient) DeleteImage(ctx context.Context, objectName string) error {
	err := m.client.RemoveObject(ctx, m.cfg.BucketName, objectName, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("remove from minio: %w", err)
	}
	return nil
}

// HealthCheck reports whether the bucket is reachable.
func (m *MinIOClient) HealthCheck(ctx context.Context) error {
	_, err := m.client.BucketExists(ctx, m.cfg.BucketName)
	return err
}
