// Command serialize-image is the Lambda that loads an image from object storage
// and base64-encodes it for the rest of the workflow.
package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/example/image-pipeline/internal/config"
	"github.com/example/image-pipeline/internal/logging"
	"github.com/example/image-pipeline/internal/objectstore"
	"github.com/example/image-pipeline/internal/pipeline"
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

	store, err := objectstore.New(context.Background(), cfg.Storage, logger)
	if err != nil {
		logger.Fatal("failed to initialise object store", zap.Error(err))
	}

	lambda.Start(pipeline.NewSerializer(store, logger).Handle)
}
