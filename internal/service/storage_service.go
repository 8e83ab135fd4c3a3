package service

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/fadilmartias/hireprep/internal/config"
	"github.com/google/uuid"
)

// StorageService writes uploads to an S3-compatible host. A zero-value service (no client)
// is disabled: Upload returns an empty key and stores nothing.
type StorageService struct {
	client *s3.Client
}

func NewStorageService(ctx context.Context, cfg *config.StorageConfig) (*StorageService, error) {
	if !cfg.Enabled() {
		return &StorageService{}, nil
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("load storage config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true
	})
	return &StorageService{client: client}, nil
}

func (s *StorageService) Enabled() bool {
	return s != nil && s.client != nil
}

func (s *StorageService) Upload(ctx context.Context, bucket, ownerID, filename, contentType string, data []byte) (string, error) {
	if !s.Enabled() {
		return "", nil
	}
	key := ObjectKey(ownerID, filename)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", fmt.Errorf("failed to put object %s/%s: %w", bucket, key, err)
	}
	return key, nil
}

// ObjectKey namespaces an upload under its owner: "<owner_id>/<uuid>-<filename>".
func ObjectKey(ownerID, filename string) string {
	name := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
	if name == "" || name == "." || name == "_" {
		name = "upload"
	}
	return fmt.Sprintf("%s/%s-%s", ownerID, uuid.NewString(), name)
}
