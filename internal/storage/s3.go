package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/BruksfildServices01/barberbook/internal/config"
)

type S3PhotoStore struct {
	client   *s3.Client
	bucket   string
	maxWidth int
}

// NewS3PhotoStore talks to AWS or, when S3_ENDPOINT is set, to any
// S3-compatible server using path-style addressing.
func NewS3PhotoStore(cfg *config.Config) *S3PhotoStore {
	awsCfg := aws.Config{
		Region: cfg.S3Region,
		Credentials: credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKey,
			cfg.S3SecretKey,
			"",
		),
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3PhotoStore{
		client:   client,
		bucket:   cfg.S3Bucket,
		maxWidth: cfg.PhotoMaxWidth,
	}
}

func (s *S3PhotoStore) Save(ctx context.Context, name string, data []byte) (string, error) {
	out, err := Process(data, s.maxWidth)
	if err != nil {
		return "", err
	}

	key := newKey(name)
	if _, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(out),
		ContentType: aws.String("image/webp"),
	}); err != nil {
		return "", fmt.Errorf("storage: put %s: %w", key, err)
	}
	return key, nil
}

func (s *S3PhotoStore) Delete(ctx context.Context, ref string) error {
	if ref == "" {
		return nil
	}
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(ref),
	}); err != nil {
		return fmt.Errorf("storage: delete %s: %w", ref, err)
	}
	return nil
}

// FromConfig returns the S3 store when a bucket is configured.
func FromConfig(cfg *config.Config) PhotoStore {
	if cfg.S3Bucket == "" {
		return NewMemoryStore(cfg.PhotoMaxWidth)
	}
	return NewS3PhotoStore(cfg)
}

var (
	_ PhotoStore = (*S3PhotoStore)(nil)
	_ PhotoStore = (*MemoryStore)(nil)
)
