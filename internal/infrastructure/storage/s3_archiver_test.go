package storage

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/erp/ledger/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeS3 struct {
	headErr   error
	createErr error
	putErr    error

	created bool
	puts    []*s3.PutObjectInput
	bodies  [][]byte
}

func (f *fakeS3) HeadBucket(context.Context, *s3.HeadBucketInput, ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	return &s3.HeadBucketOutput{}, f.headErr
}

func (f *fakeS3) CreateBucket(context.Context, *s3.CreateBucketInput, ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	f.created = true
	return &s3.CreateBucketOutput{}, f.createErr
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	body, _ := io.ReadAll(in.Body)
	f.puts = append(f.puts, in)
	f.bodies = append(f.bodies, body)
	return &s3.PutObjectOutput{}, nil
}

func TestNewS3ReportArchiver_Validation(t *testing.T) {
	t.Run("missing bucket returns error", func(t *testing.T) {
		_, err := NewS3ReportArchiver(context.Background(), config.ExportConfig{Region: "us-east-1"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bucket is required")
	})

	t.Run("access key without secret returns error", func(t *testing.T) {
		_, err := NewS3ReportArchiver(context.Background(), config.ExportConfig{
			Bucket:    "reports",
			Region:    "us-east-1",
			AccessKey: "minio",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "set together")
	})

	t.Run("valid config with custom endpoint", func(t *testing.T) {
		a, err := NewS3ReportArchiver(context.Background(), config.ExportConfig{
			Bucket:       "reports",
			Region:       "us-east-1",
			Endpoint:     "localhost:9000",
			AccessKey:    "minio",
			SecretKey:    "minio123",
			UsePathStyle: true,
			Prefix:       "/exports/",
		}, WithLogger(zaptest.NewLogger(t)))
		require.NoError(t, err)
		assert.Equal(t, "reports", a.Bucket())
		assert.Equal(t, "exports", a.prefix)
	})
}

func TestS3ReportArchiver_Archive(t *testing.T) {
	fake := &fakeS3{}
	a := newArchiver(fake, "reports", "exports")

	location, err := a.Archive(context.Background(), "tenant-1/trial-balance-2026-03-31.xlsx",
		[]byte("xlsx-bytes"), "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	require.NoError(t, err)
	assert.Equal(t, "s3://reports/exports/tenant-1/trial-balance-2026-03-31.xlsx", location)
	require.Len(t, fake.puts, 1)
	assert.Equal(t, "reports", aws.ToString(fake.puts[0].Bucket))
	assert.Equal(t, int64(10), aws.ToInt64(fake.puts[0].ContentLength))
	assert.Equal(t, "xlsx-bytes", string(fake.bodies[0]))
}

func TestS3ReportArchiver_ArchiveErrors(t *testing.T) {
	t.Run("empty key", func(t *testing.T) {
		_, err := newArchiver(&fakeS3{}, "reports", "").Archive(context.Background(), "", nil, "text/csv")
		assert.ErrorContains(t, err, "storage key is required")
	})

	t.Run("upload failure is wrapped", func(t *testing.T) {
		uploadErr := errors.New("connection reset")
		_, err := newArchiver(&fakeS3{putErr: uploadErr}, "reports", "").
			Archive(context.Background(), "/a.xlsx", []byte("x"), "text/csv")
		require.Error(t, err)
		assert.ErrorIs(t, err, uploadErr)
		assert.Contains(t, err.Error(), "failed to upload a.xlsx")
	})
}

func TestS3ReportArchiver_EnsureBucket(t *testing.T) {
	t.Run("existing bucket is left alone", func(t *testing.T) {
		fake := &fakeS3{}
		require.NoError(t, newArchiver(fake, "reports", "").EnsureBucket(context.Background()))
		assert.False(t, fake.created)
	})

	t.Run("missing bucket is created", func(t *testing.T) {
		fake := &fakeS3{headErr: &types.NotFound{}}
		require.NoError(t, newArchiver(fake, "reports", "").EnsureBucket(context.Background()))
		assert.True(t, fake.created)
	})

	t.Run("creation race is tolerated", func(t *testing.T) {
		fake := &fakeS3{headErr: &types.NoSuchBucket{}, createErr: &types.BucketAlreadyOwnedByYou{}}
		require.NoError(t, newArchiver(fake, "reports", "").EnsureBucket(context.Background()))
	})

	t.Run("other head errors are returned", func(t *testing.T) {
		fake := &fakeS3{headErr: errors.New("access denied")}
		err := newArchiver(fake, "reports", "").EnsureBucket(context.Background())
		assert.ErrorContains(t, err, "failed to check bucket existence")
		assert.False(t, fake.created)
	})
}
