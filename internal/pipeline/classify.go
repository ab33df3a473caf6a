package pipeline

import (
	"context"
	"encoding/base64"
	"fmt"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/example/image-pipeline/internal/logging"
	"github.com/example/image-pipeline/internal/predictor"
)

// Classifier submits the decoded image to the hosted model and records its answer.
type Classifier struct {
	predictor   predictor.Predictor
	endpoint    string
	contentType string
	logger      *zap.Logger
}

func NewClassifier(p predictor.Predictor, endpoint, contentType string, logger *zap.Logger) *Classifier {
	return &Classifier{
		predictor:   p,
		endpoint:    endpoint,
		contentType: contentType,
		logger:      logger.Named("classify_image"),
	}
}

// Handle sets body.inferences to the model's raw response text.
func (c *Classifier) Handle(ctx context.Context, in Response) (Response, error) {
	requestID := RequestID(ctx)
	opLogger := logging.WithOperation(c.logger, "classify.predict", requestID).
		With(zap.String("endpoint", c.endpoint))

	rec := in.Body
	if rec.ImageData == "" {
		err := fmt.Errorf("%w: image_data is required", ErrInvalidInput)
		opLogger.Warn("rejected record", zap.Error(err))
		return Response{}, logging.NewOperationError("classify.decode", requestID, err)
	}
	image, err := base64.StdEncoding.DecodeString(rec.ImageData)
	if err != nil {
		err = fmt.Errorf("%w: image_data is not base64: %v", ErrInvalidInput, err)
		opLogger.Warn("rejected record", zap.Error(err))
		return Response{}, logging.NewOperationError("classify.decode", requestID, err)
	}

	out, err := c.predictor.Predict(ctx, c.endpoint, image, c.contentType)
	if err != nil {
		wrapped := logging.NewOperationError("classify.predict", requestID, err)
		opLogger.Error("prediction failed", zap.Error(wrapped))
		return Response{}, wrapped
	}
	if len(out) == 0 || !utf8.Valid(out) {
		err := fmt.Errorf("%w: response is empty or not utf-8", ErrMalformedPrediction)
		opLogger.Error("prediction unusable", zap.Error(err), zap.Int("bytes", len(out)))
		return Response{}, logging.NewOperationError("classify.predict", requestID, err)
	}

	rec.Inferences = NewInferences(string(out))
	opLogger.Info("image classified", zap.String("inferences", rec.Inferences.Raw()))
	return ok(rec), nil
}
