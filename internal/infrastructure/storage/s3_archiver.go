// Package storage archives exported reports in S3-compatible object storage.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/erp/ledger/internal/infrastructure/config"
	"go.uber.org/zap"
)

// objectAPI is the subset of *s3.Client the archiver uses
type objectAPI interface {
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3ReportArchiver stores exported reports under <prefix>/<key>.
// It works against AWS S3 and S3-compatible servers such as MinIO or RustFS.
type S3ReportArchiver struct {
	client objectAPI
	bucket string
	prefix string
	logger *zap.Logger
}

// S3ReportArchiverOption configures an S3ReportArchiver
type S3ReportArchiverOption func(*S3ReportArchiver)

// WithLogger sets a custom logger
func WithLogger(logger *zap.Logger) S3ReportArchiverOption {
	return func(a *S3ReportArchiver) {
		a.logger = logger
	}
}

// NewS3ReportArchiver builds an archiver from the export configuration.
// Static credentials are used when an access key is configured; otherwise
// the default AWS credential chain applies.
func NewS3ReportArchiver(ctx context.Context, cfg config.ExportConfig, opts ...S3ReportArchiverOption) (*S3ReportArchiver, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("export bucket is required")
	}
	if (cfg.AccessKey == "") != (cfg.SecretKey == "") {
		return nil, errors.New("export access key and secret key must be set together")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	endpoint := cfg.Endpoint
	if endpoint != "" && !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	return newArchiver(client, cfg.Bucket, cfg.Prefix, opts...), nil
}

func newArchiver(client objectAPI, bucket, prefix string, opts ...S3ReportArchiverOption) *S3ReportArchiver {
	a := &S3ReportArchiver{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// EnsureBucket creates the bucket if it doesn't exist.
// Call this during application startup.
func (a *S3ReportArchiver) EnsureBucket(ctx context.Context) error {
	_, err := a.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(a.bucket)})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	a.logger.Info("Creating export bucket", zap.String("bucket", a.bucket))
	_, err = a.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(a.bucket)})
	if err != nil {
		// Another instance may have created it first
		var alreadyOwned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &alreadyOwned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Archive uploads content and returns its s3:// location
func (a *S3ReportArchiver) Archive(ctx context.Context, key string, content []byte, contentType string) (string, error) {
	if key == "" {
		return "", errors.New("storage key is required")
	}
	objectKey := a.objectKey(key)

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(objectKey),
		Body:          bytes.NewReader(content),
		ContentLength: aws.Int64(int64(len(content))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", objectKey, err)
	}

	location := fmt.Sprintf("s3://%s/%s", a.bucket, objectKey)
	a.logger.Info("Report archived", zap.String("location", location), zap.Int("bytes", len(content)))
	return location, nil
}

// Bucket returns the bucket name
func (a *S3ReportArchiver) Bucket() string {
	return a.bucket
}

func (a *S3ReportArchiver) objectKey(key string) string {
	key = strings.TrimLeft(key, "/")
	if a.prefix == "" {
		return key
	}
	return path.Join(a.prefix, key)
}
