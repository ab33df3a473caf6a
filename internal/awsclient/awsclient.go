// Package awsclient loads the shared AWS configuration used by the S3 and
// SageMaker Runtime clients.
package awsclient

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"go.uber.org/zap"

	"github.com/example/image-pipeline/internal/logging"
)

// Load resolves credentials and region from the default chain (Lambda role,
// environment, shared profile).
func Load(ctx context.Context, logger *zap.Logger) (aws.Config, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		wrapped := logging.NewOperationError("awsclient.load_config", "", err)
		logger.Error("failed to load aws config", zap.Error(wrapped))
		return aws.Config{}, wrapped
	}
	logger.Debug("aws config loaded", zap.String("region", cfg.Region))
	return cfg, nil
}
