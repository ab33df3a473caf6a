package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/example/image-pipeline/internal/logging"
)

// Runner chains the three stages in-process for local runs. It stops at the
// first failure; retries and branching stay with the workflow engine.
type Runner struct {
	serializer *Serializer
	classifier *Classifier
	filter     *Filter
	logger     *zap.Logger
}

func NewRunner(serializer *Serializer, classifier *Classifier, filter *Filter, logger *zap.Logger) *Runner {
	return &Runner{
		serializer: serializer,
		classifier: classifier,
		filter:     filter,
		logger:     logger.Named("runner"),
	}
}

// Run feeds each stage's envelope to the next. Errors are wrapped with the
// failing stage as pipeline.<stage>.
func (r *Runner) Run(ctx context.Context, req SerializeRequest) (Response, error) {
	requestID := RequestID(ctx)
	ctx = WithRequestID(ctx, requestID)
	runLogger := logging.WithOperation(r.logger, "pipeline.run", requestID)

	resp, err := r.serializer.Handle(ctx, req)
	if err != nil {
		return Response{}, r.fail(runLogger, "pipeline.serialize_image", requestID, err)
	}
	resp, err = r.classifier.Handle(ctx, resp)
	if err != nil {
		return Response{}, r.fail(runLogger, "pipeline.classify_image", requestID, err)
	}
	resp, err = r.filter.Handle(ctx, resp)
	if err != nil {
		return Response{}, r.fail(runLogger, "pipeline.filter_inferences", requestID, err)
	}

	runLogger.Info("pipeline completed", zap.String("bucket", resp.Body.S3Bucket), zap.String("key", resp.Body.S3Key))
	return resp, nil
}

func (r *Runner) fail(logger *zap.Logger, stage, requestID string, err error) error {
	logger.Warn("pipeline halted", zap.String("stage", stage), zap.Error(err))
	return logging.NewOperationError(stage, requestID, err)
}
