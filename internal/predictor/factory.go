package predictor

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/example/image-pipeline/internal/awsclient"
	"github.com/example/image-pipeline/internal/config"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New builds the predictor selected by cfg.Backend. The returned closer releases
// any connection the backend holds.
func New(ctx context.Context, cfg config.PredictorConfig, logger *zap.Logger) (Predictor, io.Closer, error) {
	switch cfg.Backend {
	case config.PredictorSageMaker, "":
		awsCfg, err := awsclient.Load(ctx, logger)
		if err != nil {
			return nil, nil, err
		}
		return NewSageMakerFromConfig(awsCfg, logger), nopCloser{}, nil
	case config.PredictorGRPC:
		p, conn, err := DialGRPC(ctx, cfg.GRPCAddr, cfg.GRPCMethod, logger)
		if err != nil {
			return nil, nil, err
		}
		return p, conn, nil
	default:
		return nil, nil, fmt.Errorf("unknown predictor: %s", cfg.Backend)
	}
}
