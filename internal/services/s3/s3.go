// Package s3service reads agent configuration objects from S3.
package s3service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// URIScheme prefixes object locations such as s3://bucket/prompts/agent.txt.
const URIScheme = "s3://"

// maxObjectBytes caps prompt and schema downloads.
const maxObjectBytes = 4 << 20

// GetObjectAPI is the subset of the S3 client used by Service.
type GetObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Service handles S3 operations
type Service struct {
	client GetObjectAPI
	logger *zap.Logger
}

// NewService creates a new S3 service from the default AWS config chain.
func NewService(ctx context.Context, region string, logger *zap.Logger) (*Service, error) {
	opts := []func(*config.LoadOptions) error{}
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return NewWithClient(s3.NewFromConfig(cfg), logger), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client GetObjectAPI, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{client: client, logger: logger}
}

// IsURI reports whether location points at S3.
func IsURI(location string) bool {
	return strings.HasPrefix(location, URIScheme)
}

// ParseURI splits s3://bucket/key into its parts.
func ParseURI(location string) (bucket, key string, err error) {
	if !IsURI(location) {
		return "", "", fmt.Errorf("not an s3 uri: %q", location)
	}
	rest := strings.TrimPrefix(location, URIScheme)
	bucket, key, found := strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", fmt.Errorf("s3 uri must look like s3://bucket/key: %q", location)
	}
	return bucket, key, nil
}

// DownloadFile downloads an object from S3
func (s *Service) DownloadFile(ctx context.Context, bucket, key string) ([]byte, error) {
	input := &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}

	result, err := s.client.GetObject(ctx, input)
	if err != nil {
		s.logger.Error("Failed to download file from S3",
			zap.String("bucket", bucket),
			zap.String("key", key),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(io.LimitReader(result.Body, maxObjectBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read file content: %w", err)
	}

	s.logger.Info("Downloaded file from S3",
		zap.String("bucket", bucket),
		zap.String("key", key),
		zap.Int("size", len(data)),
	)

	return data, nil
}

// Read fetches the object behind an s3:// location.
func (s *Service) Read(ctx context.Context, location string) ([]byte, error) {
	bucket, key, err := ParseURI(location)
	if err != nil {
		return nil, err
	}
	return s.DownloadFile(ctx, bucket, key)
}
