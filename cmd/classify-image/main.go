// Command classify-image is the Lambda that sends the encoded image to the
// hosted model and attaches the raw prediction.
package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/example/image-pipeline/internal/config"
	"github.com/example/image-pipeline/internal/logging"
	"github.com/example/image-pipeline/internal/pipeline"
	"github.com/example/image-pipeline/internal/predictor"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer logger.Sync() //nolint:errcheck

	model, closer, err := predictor.New(context.Background(), cfg.Predictor, logger)
	if err != nil {
		logger.Fatal("failed to initialise predictor", zap.Error(err))
	}
	defer closer.Close()

	classifier := pipeline.NewClassifier(model, cfg.Model.EndpointName, cfg.Model.ContentType, logger)
	lambda.Start(classifier.Handle)
}
