// Package blob хранит изображения и файлы товаров в S3-совместимом хранилище (MinIO).
// В базе данных лежат только ключи объектов, ссылки на скачивание выдаются
// подписанными URL с ограниченным сроком жизни.
package blob

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/magabrotheeeer/gifshop/internal/config"
)

// Storage описывает операции с объектами товаров.
type Storage interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	PresignedURL(ctx context.Context, key, downloadName string) (string, error)
	Delete(ctx context.Context, key string) error
}

// MinioStorage реализует Storage поверх minio-go.
type MinioStorage struct {
	client *minio.Client
	bucket string
	urlTTL time.Duration
}

// NewMinio подключается к MinIO и создаёт бакет, если его нет.
func NewMinio(ctx context.Context, cfg config.BlobStorage) (*MinioStorage, error) {
	const op = "blob.NewMinio"

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s := &MinioStorage{client: client, bucket: cfg.Bucket, urlTTL: cfg.URLTTL}
	if err := s.ensureBucket(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s, nil
}

func (s *MinioStorage) ensureBucket(ctx context.Context) error {
	found, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if !found {
		return s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
	}
	return nil
}

// Upload сохраняет объект под ключом key.
func (s *MinioStorage) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	const op = "blob.Upload"
	_, err := s.client.PutObject(ctx, s.bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// PresignedURL возвращает временную ссылку на объект.
// Если downloadName не пуст, браузер сохранит файл под этим именем.
func (s *MinioStorage) PresignedURL(ctx context.Context, key, downloadName string) (string, error) {
	const op = "blob.PresignedURL"
	params := url.Values{}
	if downloadName != "" {
		params.Set("response-content-disposition",
			fmt.Sprintf("attachment; filename=%q", downloadName+path.Ext(key)))
	}
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, s.urlTTL, params)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return u.String(), nil
}

// Delete удаляет объект.
func (s *MinioStorage) Delete(ctx context.Context, key string) error {
	const op = "blob.Delete"
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
