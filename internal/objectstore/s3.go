package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	"github.com/example/image-pipeline/internal/logging"
)

// GetObjectAPI is the subset of the S3 client the store calls.
type GetObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Store downloads objects with the AWS SDK.
type S3Store struct {
	client GetObjectAPI
	logger *zap.Logger
}

// NewS3Store wraps an S3 client.
func NewS3Store(client GetObjectAPI, logger *zap.Logger) *S3Store {
	return &S3Store{client: client, logger: logger.Named("objectstore_s3")}
}

// NewS3StoreFromConfig builds the SDK client from a resolved AWS config.
func NewS3StoreFromConfig(cfg aws.Config, logger *zap.Logger) *S3Store {
	return NewS3Store(s3.NewFromConfig(cfg), logger)
}

// Get downloads the whole object into memory.
func (s *S3Store) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		var noSuchBucket *types.NoSuchBucket
		if errors.As(err, &noSuchKey) || errors.As(err, &noSuchBucket) {
			err = fmt.Errorf("s3://%s/%s: %w", bucket, key, ErrObjectNotFound)
		}
		s.logger.Error("get object failed", zap.Error(err), zap.String("bucket", bucket), zap.String("key", key))
		return nil, logging.NewOperationError("objectstore.s3_get", "", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		s.logger.Error("read object body failed", zap.Error(err), zap.String("bucket", bucket), zap.String("key", key))
		return nil, logging.NewOperationError("objectstore.s3_read", "", err)
	}
	s.logger.Debug("object downloaded", zap.String("bucket", bucket), zap.String("key", key), zap.Int("bytes", len(data)))
	return data, nil
}
