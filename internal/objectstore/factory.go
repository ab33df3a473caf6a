package objectstore

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/example/image-pipeline/internal/awsclient"
	"github.com/example/image-pipeline/internal/config"
)

// New builds the store selected by cfg.Provider.
func New(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (Store, error) {
	switch cfg.Provider {
	case config.StorageS3, "":
		awsCfg, err := awsclient.Load(ctx, logger)
		if err != nil {
			return nil, err
		}
		return NewS3StoreFromConfig(awsCfg, logger), nil
	case config.StorageLocalFS:
		return NewLocalFS(cfg.LocalRoot), nil
	default:
		return nil, fmt.Errorf("unknown storage provider: %s", cfg.Provider)
	}
}
