package pipeline

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/example/image-pipeline/internal/logging"
	"github.com/example/image-pipeline/internal/objectstore"
)

// Serializer downloads the source image and base64-encodes it into a fresh record.
type Serializer struct {
	store  objectstore.Store
	logger *zap.Logger
}

func NewSerializer(store objectstore.Store, logger *zap.Logger) *Serializer {
	return &Serializer{store: store, logger: logger.Named("serialize_image")}
}

// Handle fetches s3_bucket/s3_key and returns a record with empty inferences.
func (s *Serializer) Handle(ctx context.Context, req SerializeRequest) (Response, error) {
	requestID := RequestID(ctx)
	opLogger := logging.WithOperation(s.logger, "serialize.fetch_object", requestID)

	// Keys may legally carry surrounding spaces, so they are used verbatim.
	bucket, key := req.S3Bucket, req.S3Key
	if strings.TrimSpace(bucket) == "" || strings.TrimSpace(key) == "" {
		err := fmt.Errorf("%w: s3_bucket and s3_key are required", ErrInvalidInput)
		opLogger.Warn("rejected request", zap.Error(err))
		return Response{}, logging.NewOperationError("serialize.validate", requestID, err)
	}

	data, err := s.store.Get(ctx, bucket, key)
	if err != nil {
		wrapped := logging.NewOperationError("serialize.fetch_object", requestID, err)
		opLogger.Error("failed to fetch object", zap.Error(wrapped), zap.String("bucket", bucket), zap.String("key", key))
		return Response{}, wrapped
	}

	opLogger.Info("image serialized", zap.String("bucket", bucket), zap.String("key", key), zap.Int("bytes", len(data)))
	return ok(Record{
		ImageData: base64.StdEncoding.EncodeToString(data),
		S3Bucket:  bucket,
		S3Key:     key,
	}), nil
}
