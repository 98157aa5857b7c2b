package storage

import (
	"context"
	"fmt"
	"lessonhub/internal/config"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsCfg "github.com/aws/aws-sdk-go-v2/config" // Alias config to avoid clash
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/charmbracelet/log"
)

// s3Storage keeps lesson PDFs in an S3-compatible bucket (AWS, MinIO, R2).
type s3Storage struct {
	client        *s3.Client
	presignClient *s3.PresignClient
	bucketName    string
	logger        *log.Logger
}

// NewS3Storage builds the PDF store. It does not contact the bucket.
func NewS3Storage(ctx context.Context, cfg config.S3Config, logger *log.Logger) (FileStorage, error) {
	if !cfg.Enabled() {
		return nil, ErrStorageDisabled
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	opts := []func(*awsCfg.LoadOptions) error{awsCfg.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsCfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	sdkConfig, err := awsCfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load s3 config: %w", err)
	}

	endpoint := endpointURL(cfg.Endpoint, cfg.UseSSL)
	client := s3.NewFromConfig(sdkConfig, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			// MinIO and most self-hosted services only support path-style addressing.
			o.UsePathStyle = true
		}
	})

	logger.Info("PDF storage ready", "endpoint", endpoint, "bucket", cfg.BucketName)

	return &s3Storage{
		client:        client,
		presignClient: s3.NewPresignClient(client),
		bucketName:    cfg.BucketName,
		logger:        logger,
	}, nil
}

// endpointURL adds a scheme to a bare host:port endpoint.
func endpointURL(endpoint string, useSSL bool) string {
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if endpoint == "" || strings.Contains(endpoint, "://") {
		return endpoint
	}
	if useSSL {
		return "https://" + endpoint
	}
	return "http://" + endpoint
}

func expiryOrDefault(expires time.Duration) time.Duration {
	if expires <= 0 {
		return DefaultPresignedURLExpiry
	}
	return expires
}

func (s *s3Storage) GeneratePresignedUploadURL(ctx context.Context, objectKey string, contentType string, expires time.Duration) (string, error) {
	req, err := s.presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(objectKey),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(expiryOrDefault(expires)))
	if err != nil {
		s.logger.Error("presign upload failed", "key", objectKey, "err", err)
		return "", err
	}
	return req.URL, nil
}

func (s *s3Storage) GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error) {
	disposition := fmt.Sprintf("inline; filename=%q", path.Base(objectKey))
	req, err := s.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket:                     aws.String(s.bucketName),
		Key:                        aws.String(objectKey),
		ResponseContentType:        aws.String(PDFContentType),
		ResponseContentDisposition: aws.String(disposition),
	}, s3.WithPresignExpires(expiryOrDefault(expires)))
	if err != nil {
		s.logger.Error("presign download failed", "key", objectKey, "err", err)
		return "", err
	}
	return req.URL, nil
}

// DeleteObject removes a replaced or orphaned PDF. S3 reports success for missing keys.
func (s *s3Storage) DeleteObject(ctx context.Context, objectKey string) error {
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(objectKey),
	}); err != nil {
		s.logger.Error("delete PDF failed", "key", objectKey, "bucket", s.bucketName, "err", err)
		return err
	}
	s.logger.Debug("deleted PDF", "key", objectKey, "bucket", s.bucketName)
	return nil
}
