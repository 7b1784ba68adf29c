package services

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"resumeanalyzer/config"
)

type fakeS3 struct {
	s3iface.S3API
	putKey  string
	putBody string
	deleted string
	err     error
}

func (f *fakeS3) PutObjectWithContext(_ aws.Context, in *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.putKey = aws.StringValue(in.Key)
	b, _ := io.ReadAll(in.Body)
	f.putBody = string(b)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObjectWithContext(_ aws.Context, in *s3.DeleteObjectInput, _ ...request.Option) (*s3.DeleteObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.deleted = aws.StringValue(in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func TestNewS3Service(t *testing.T) {
	service, err := NewS3Service(config.S3Config{Region: "us-east-1"}, nil)

	assert.ErrorIs(t, err, ErrS3NotConfigured)
	assert.Nil(t, service)
}

func TestGeneratePresignedURL(t *testing.T) {
	service, err := NewS3Service(config.S3Config{
		AccessKeyID:     "AKIDEXAMPLE",
		SecretAccessKey: "secret",
		Region:          "us-east-1",
		Bucket:          "test-bucket",
	}, zap.NewNop())
	require.NoError(t, err)

	url, err := service.GeneratePresignedURL(ExportKey("job-1", "report.xlsx"))
	require.NoError(t, err)
	assert.Contains(t, url, "test-bucket")
	assert.Contains(t, url, "exports/job-1/report.xlsx")
	assert.Contains(t, url, "X-Amz-Signature=")
	assert.Contains(t, url, "X-Amz-Expires=3600")
}

func TestUploadAndDeleteFile(t *testing.T) {
	fake := &fakeS3{}
	service := &S3Service{s3Client: fake, bucket: "exports-bucket", region: "eu-west-1", logger: zap.NewNop()}

	path := filepath.Join(t.TempDir(), "results.csv")
	require.NoError(t, os.WriteFile(path, []byte("filename\ncv.pdf\n"), 0o644))

	url, err := service.UploadFile(context.Background(), path, "exports/job-1/results.csv", "text/csv")
	require.NoError(t, err)
	assert.Equal(t, "https://exports-bucket.s3.eu-west-1.amazonaws.com/exports/job-1/results.csv", url)
	assert.Equal(t, "exports/job-1/results.csv", fake.putKey)
	assert.Equal(t, "filename\ncv.pdf\n", fake.putBody)

	require.NoError(t, service.DeleteFile(context.Background(), "exports/job-1/results.csv"))
	assert.Equal(t, "exports/job-1/results.csv", fake.deleted)
}

func TestUploadFileErrors(t *testing.T) {
	service := &S3Service{s3Client: &fakeS3{err: errors.New("access denied")}, bucket: "b", region: "r", logger: zap.NewNop()}

	_, err := service.UploadFile(context.Background(), filepath.Join(t.TempDir(), "missing.csv"), "k", "text/csv")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "results.csv")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	_, err = service.UploadFile(context.Background(), path, "k", "text/csv")
	assert.ErrorContains(t, err, "failed to upload to S3")

	assert.ErrorContains(t, service.DeleteFile(context.Background(), "k"), "failed to delete file from S3")
}

func TestS3ServiceValidation(t *testing.T) {
	tests := []struct {
		name    string
		bucket  string
		region  string
		isValid bool
	}{
		{
			name:    "valid configuration",
			bucket:  "my-bucket",
			region:  "us-east-1",
			isValid: true,
		},
		{
			name:    "empty bucket",
			bucket:  "",
			region:  "us-east-1",
			isValid: false,
		},
		{
			name:    "empty region",
			bucket:  "my-bucket",
			region:  "",
			isValid: false,
		},
		{
			name:    "both empty",
			bucket:  "",
			region:  "",
			isValid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &S3Service{
				bucket: tt.bucket,
				region: tt.region,
			}

			err := service.validate()
			if tt.isValid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
