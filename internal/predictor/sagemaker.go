package predictor

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sagemakerruntime"
	"go.uber.org/zap"

	"github.com/example/image-pipeline/internal/logging"
)

// InvokeEndpointAPI is the subset of the SageMaker Runtime client used here.
type InvokeEndpointAPI interface {
	InvokeEndpoint(ctx context.Context, params *sagemakerruntime.InvokeEndpointInput, optFns ...func(*sagemakerruntime.Options)) (*sagemakerruntime.InvokeEndpointOutput, error)
}

// SageMaker invokes a real-time SageMaker endpoint with the payload as-is.
type SageMaker struct {
	client InvokeEndpointAPI
	logger *zap.Logger
}

func NewSageMaker(client InvokeEndpointAPI, logger *zap.Logger) *SageMaker {
	return &SageMaker{client: client, logger: logger.Named("predictor_sagemaker")}
}

func NewSageMakerFromConfig(cfg aws.Config, logger *zap.Logger) *SageMaker {
	return NewSageMaker(sagemakerruntime.NewFromConfig(cfg), logger)
}

func (s *SageMaker) Predict(ctx context.Context, endpoint string, payload []byte, contentType string) ([]byte, error) {
	out, err := s.client.InvokeEndpoint(ctx, &sagemakerruntime.InvokeEndpointInput{
		EndpointName: aws.String(endpoint),
		ContentType:  aws.String(contentType),
		Body:         payload,
	})
	if err != nil {
		wrapped := logging.NewOperationError("predictor.sagemaker_invoke", "", fmt.Errorf("%w: %w", ErrInvocationFailed, err))
		s.logger.Error("invoke endpoint failed", zap.Error(wrapped), zap.String("endpoint", endpoint))
		return nil, wrapped
	}
	s.logger.Debug("endpoint invoked",
		zap.String("endpoint", endpoint),
		zap.String("response_content_type", aws.ToString(out.ContentType)),
		zap.Int("bytes", len(out.Body)),
	)
	return out.Body, nil
}
