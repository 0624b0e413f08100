package service

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/url"
	"path/filepath"
	"time"

	"LinguaReel-server/config"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectStorage is the MinIO-backed object store the pipeline uploads to and
// downloads from. Keys are opaque uuids; metadata lives in the file table.
type ObjectStorage struct {
	client *minio.Client
	bucket string
}

func InitMinIO() *ObjectStorage {
	cfg := config.AppConfig.MinIO
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		log.Fatalf("minio init failed: %v", err)
	}

	storage := &ObjectStorage{client: client, bucket: cfg.Bucket}
	if err := storage.ensureBucket(context.Background()); err != nil {
		log.Fatalf("minio bucket check failed: %v", err)
	}
	log.Println("minio connected")
	return storage
}

func (s *ObjectStorage) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return err
		}
		log.Printf("bucket %q created", s.bucket)
	}
	return nil
}

// Put uploads data under a fresh opaque key and returns it.
func (s *ObjectStorage) Put(ctx context.Context, data []byte, name, contentType string) (string, error) {
	key := uuid.NewString()
	if contentType == "" {
		contentType = contentTypeFor(name)
	}
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("minio upload failed: %w", err)
	}
	return key, nil
}

// Download fetches an object to a local path.
func (s *ObjectStorage) Download(ctx context.Context, fileRef, localPath string) error {
	if err := s.client.FGetObject(ctx, s.bucket, fileRef, localPath, minio.GetObjectOptions{}); err != nil {
		return fmt.Errorf("minio download of %s failed: %w", fileRef, err)
	}
	return nil
}

// PresignedURL returns a time-limited GET URL for an object; the video host
// ingests the rendered file through it.
func (s *ObjectStorage) PresignedURL(ctx context.Context, fileRef string, ttl time.Duration) (string, error) {
	presigned, err := s.client.PresignedGetObject(ctx, s.bucket, fileRef, ttl, make(url.Values))
	if err != nil {
		return "", fmt.Errorf("presign failed: %w", err)
	}
	return presigned.String(), nil
}

func contentTypeFor(name string) string {
	switch filepath.Ext(name) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".mp4":
		return "video/mp4"
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	}
	return "application/octet-stream"
}
