// Package awss3 stores export artifacts in Amazon S3 or an S3-compatible
// service.
package awss3

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/Lllllllleong/recordexport/internal/models"
)

// Config holds S3 configuration.
type Config struct {
	Region string
	Bucket string
	// EndpointURL targets S3-compatible services (MinIO, LocalStack).
	EndpointURL string
}

// Store wraps the S3 client with the operations an export needs.
type Store struct {
	client        *s3.Client
	presignClient *s3.PresignClient
	config        Config
}

// NewStore creates a Store using the default AWS credential chain.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Region == "" {
		return nil, fmt.Errorf("region is required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var clientOpts []func(*s3.Options)
	if cfg.EndpointURL != "" {
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.EndpointURL)
			o.UsePathStyle = true
		})
	}
	client := s3.NewFromConfig(awsCfg, clientOpts...)

	return &Store{
		client:        client,
		presignClient: s3.NewPresignClient(client),
		config:        cfg,
	}, nil
}

// Put uploads content under key.
func (s *Store) Put(ctx context.Context, key string, content []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.config.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(content),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("%w: s3://%s/%s: %w", models.ErrStorageWrite, s.config.Bucket, key, err)
	}
	return nil
}

// SignURL returns a presigned GET URL valid for ttl.
func (s *Store) SignURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	req, err := s.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.config.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("failed to presign URL: %w", err)
	}
	return req.URL, nil
}

// PublicURL returns the permanent URL of key.
func (s *Store) PublicURL(key string) string {
	return PublicURL(s.config, key)
}

// PublicURL builds the virtual-hosted URL of key, or a path-style URL when
// a custom endpoint is configured.
func PublicURL(cfg Config, key string) string {
	escaped := url.PathEscape(key)
	if cfg.EndpointURL != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(cfg.EndpointURL, "/"), cfg.Bucket, escaped)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", cfg.Bucket, cfg.Region, escaped)
}
