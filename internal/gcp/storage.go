package gcp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"

	"github.com/Lllllllleong/recordexport/internal/models"
)

// GetEnv is a helper to read an environment variable or return a default value.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// SaveToGCSAtomically writes content to a GCS object only if it doesn't already exist.
func SaveToGCSAtomically(ctx context.Context, bucket *storage.BucketHandle, objectName string, content []byte, contentType string) error {
	writer := bucket.Object(objectName).If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	writer.ContentType = contentType

	if _, err := io.Copy(writer, bytes.NewReader(content)); err != nil {
		_ = writer.Close()
		if isPreconditionFailed(err) {
			slog.Warn("Object already exists. Skipping write.", "gcsObject", objectName)
			return nil
		}
		return fmt.Errorf("failed to write to GCS: %w", err)
	}

	if err := writer.Close(); err != nil {
		if isPreconditionFailed(err) {
			slog.Warn("Object already exists. Skipping write.", "gcsObject", objectName)
			return nil
		}
		return fmt.Errorf("failed to finalize GCS write: %w", err)
	}
	return nil
}

func isPreconditionFailed(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusPreconditionFailed
}

// GCSStore stores export artifacts in a Cloud Storage bucket.
type GCSStore struct {
	bucket      *storage.BucketHandle
	bucketName  string
	signerEmail string
}

// NewGCSStore creates a store for bucket. signerEmail selects the service
// account used for V4 signing; empty lets the client detect it from its
// credentials.
func NewGCSStore(client *storage.Client, bucket, signerEmail string) *GCSStore {
	return &GCSStore{
		bucket:      client.Bucket(bucket),
		bucketName:  bucket,
		signerEmail: signerEmail,
	}
}

// Put writes content under key.
func (s *GCSStore) Put(ctx context.Context, key string, content []byte, contentType string) error {
	if err := SaveToGCSAtomically(ctx, s.bucket, key, content, contentType); err != nil {
		return fmt.Errorf("%w: gs://%s/%s: %w", models.ErrStorageWrite, s.bucketName, key, err)
	}
	return nil
}

// SignURL returns a V4 signed GET URL valid for ttl.
func (s *GCSStore) SignURL(_ context.Context, key string, ttl time.Duration) (string, error) {
	opts := &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  http.MethodGet,
		Expires: time.Now().Add(ttl),
	}
	if s.signerEmail != "" {
		opts.GoogleAccessID = s.signerEmail
	}
	signed, err := s.bucket.SignedURL(key, opts)
	if err != nil {
		return "", fmt.Errorf("failed to sign URL for gs://%s/%s: %w", s.bucketName, key, err)
	}
	return signed, nil
}

// PublicURL returns the permanent URL of key.
func (s *GCSStore) PublicURL(key string) string {
	return publicObjectURL(s.bucketName, key)
}

func publicObjectURL(bucket, key string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, url.PathEscape(key))
}
