// Command filter-inferences is the Lambda that fails the workflow with
// THRESHOLD_CONFIDENCE_NOT_MET when no score reaches the threshold.
package main

import (
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/example/image-pipeline/internal/config"
	"github.com/example/image-pipeline/internal/logging"
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

	lambda.Start(pipeline.NewFilter(cfg.Model.Threshold, logger).Handle)
}
