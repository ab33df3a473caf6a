package main

import (
	"context"
	"errors"
	"io/fs"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/example/image-pipeline/internal/auth"
	"github.com/example/image-pipeline/internal/config"
	"github.com/example/image-pipeline/internal/handlers"
	"github.com/example/image-pipeline/internal/logging"
	"github.com/example/image-pipeline/internal/objectstore"
	"github.com/example/image-pipeline/internal/pipeline"
	"github.com/example/image-pipeline/internal/predictor"
)

// main serves the three stages and the in-process runner over HTTP for local
// development. Production runs the cmd/ Lambda binaries instead.
func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if err := cfg.Server.Validate(); err != nil {
		panic(err)
	}

	logger, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	store, err := objectstore.New(ctx, cfg.Storage, logger)
	if err != nil {
		logger.Fatal("failed to initialise object store", zap.Error(err))
	}
	model, closer, err := predictor.New(ctx, cfg.Predictor, logger)
	if err != nil {
		logger.Fatal("failed to initialise predictor", zap.Error(err))
	}
	defer closer.Close()

	serializer := pipeline.NewSerializer(store, logger)
	classifier := pipeline.NewClassifier(model, cfg.Model.EndpointName, cfg.Model.ContentType, logger)
	filter := pipeline.NewFilter(cfg.Model.Threshold, logger)
	runner := pipeline.NewRunner(serializer, classifier, filter, logger)

	r := gin.Default()
	handlers.RegisterRoutes(r, handlers.Stages{
		Serializer: serializer,
		Classifier: classifier,
		Filter:     filter,
		Runner:     runner,
		Logger:     logger,
	}, auth.JWTMiddleware(cfg.Server.JWTSecret, cfg.Server.JWTAudience))

	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: r,
	}

	logger.Info("pipeline API listening",
		zap.String("addr", cfg.Server.Addr),
		zap.String("storage", cfg.Storage.Provider),
		zap.String("predictor", cfg.Predictor.Backend),
		zap.String("endpoint", cfg.Model.EndpointName),
		zap.Float64("threshold", cfg.Model.Threshold),
	)
	if err := serveHTTPServer(server, 15*time.Second, logger); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func serveHTTPServer(server *http.Server, shutdownTimeout time.Duration, logger *zap.Logger) error {
	return serveHTTPServerWithOptions(server, shutdownTimeout, logger, nil, nil)
}

func serveHTTPServerWithOptions(server *http.Server, shutdownTimeout time.Duration, logger *zap.Logger, listener net.Listener, signalCh <-chan os.Signal) error {
	errCh := make(chan error, 1)
	go func() {
		var err error
		if listener != nil {
			err = server.Serve(listener)
		} else {
			err = server.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		errCh <- err
	}()

	var (
		sigCh       <-chan os.Signal
		stopSignals func()
	)

	if signalCh != nil {
		sigCh = signalCh
		stopSignals = func() {}
	} else {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
		sigCh = ch
		stopSignals = func() {
			signal.Stop(ch)
		}
	}
	defer stopSignals()

	select {
	case err := <-errCh:
		return err
	case sig, ok := <-sigCh:
		if !ok {
			return <-errCh
		}
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return <-errCh
	}
}
