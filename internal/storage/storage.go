// Package storage implements the media-hosting collaborator on top of
// S3-compatible object storage.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/therealutkarshpriyadarshi/streamtube/internal/config"
	"github.com/therealutkarshpriyadarshi/streamtube/internal/logging"
)

// MediaStore uploads local media files to object storage and hands back
// public URLs.
type MediaStore struct {
	client        *minio.Client
	bucketName    string
	publicBaseURL string
	logger        *logging.Logger
}

// New creates a new media store client
func New(cfg config.StorageConfig, logger *logging.Logger) (*MediaStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	// Ensure bucket exists
	ctx := context.Background()
	exists, err := client.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		err = client.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{
			Region: cfg.Region,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	publicBaseURL := cfg.PublicBaseURL
	if publicBaseURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		publicBaseURL = fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.BucketName)
	}

	return &MediaStore{
		client:        client,
		bucketName:    cfg.BucketName,
		publicBaseURL: publicBaseURL,
		logger:        logger,
	}, nil
}

// UploadLocal transmits a local file to the media host and returns its
// public URL. On transfer failure the local temp file is removed before the
// error is returned; the success-path cleanup is delegated to the cleanup
// worker.
func (s *MediaStore) UploadLocal(ctx context.Context, localPath string) (string, error) {
	if localPath == "" {
		return "", fmt.Errorf("no file path provided for upload")
	}

	objectName := fmt.Sprintf("uploads/%s%s", uuid.New().String(), filepath.Ext(localPath))
	contentType := getContentType(localPath)

	start := time.Now()
	_, err := s.client.FPutObject(ctx, s.bucketName, objectName, localPath, minio.PutObjectOptions{
		ContentType: contentType,
	})
	s.logger.LogStorageOperation("upload", objectName, time.Since(start), err)
	if err != nil {
		// Upload failed: the temp file will never be picked up by the
		// cleanup worker, remove it here. Removal errors are logged only.
		if rmErr := os.Remove(localPath); rmErr != nil && !os.IsNotExist(rmErr) {
			s.logger.Warnf("failed to remove temp file %s: %v", localPath, rmErr)
		}
		return "", fmt.Errorf("failed to upload file: %w", err)
	}

	return fmt.Sprintf("%s/%s", s.publicBaseURL, objectName), nil
}

// objectName maps a public URL back to the object it serves. A value
// without the public prefix is taken as an object name already.
func (s *MediaStore) objectName(url string) string {
	return strings.TrimPrefix(url, s.publicBaseURL+"/")
}

// Delete removes an object from storage. Accepts either the bare object
// name or the public URL UploadLocal returned for it.
func (s *MediaStore) Delete(ctx context.Context, url string) error {
	objectName := s.objectName(url)

	start := time.Now()
	err := s.client.RemoveObject(ctx, s.bucketName, objectName, minio.RemoveObjectOptions{})
	s.logger.LogStorageOperation("delete", objectName, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}

	return nil
}

// getContentType returns the content type based on file extension
func getContentType(filePath string) string {
	ext := filepath.Ext(filePath)
	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".mp4":
		return "video/mp4"
	case ".webm":
		return "video/webm"
	default:
		return "application/octet-stream"
	}
}
