package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/example/image-pipeline/internal/logging"
)

// Filter passes records whose best score reaches the threshold.
type Filter struct {
	threshold float64
	logger    *zap.Logger
}

func NewFilter(threshold float64, logger *zap.Logger) *Filter {
	return &Filter{threshold: threshold, logger: logger.Named("filter_inferences")}
}

func (f *Filter) Threshold() float64 { return f.threshold }

// Handle returns the input untouched when max(scores) >= threshold. A miss is
// returned as a bare *ThresholdError so the Lambda runtime reports it by type.
func (f *Filter) Handle(ctx context.Context, in Response) (Response, error) {
	requestID := RequestID(ctx)
	opLogger := logging.WithOperation(f.logger, "filter.check_threshold", requestID)

	scores, err := in.Body.Inferences.Scores()
	if err != nil {
		opLogger.Warn("rejected record", zap.Error(err))
		return Response{}, logging.NewOperationError("filter.parse_inferences", requestID, err)
	}

	best := maxScore(scores)
	if best < f.threshold {
		thresholdErr := &ThresholdError{Max: best, Threshold: f.threshold}
		opLogger.Warn("confidence below threshold",
			zap.Float64("max", best),
			zap.Float64("threshold", f.threshold),
			zap.String("key", in.Body.S3Key),
		)
		return Response{}, thresholdErr
	}

	opLogger.Info("confidence threshold met", zap.Float64("max", best), zap.Float64("threshold", f.threshold))
	return ok(in.Body), nil
}

func maxScore(scores []float64) float64 {
	best := scores[0]
	for _, s := range scores[1:] {
		if s > best {
			best = s
		}
	}
	return best
}
