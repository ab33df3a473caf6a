package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/image-pipeline/internal/auth"
	"github.com/example/image-pipeline/internal/logging"
	"github.com/example/image-pipeline/internal/objectstore"
	"github.com/example/image-pipeline/internal/pipeline"
	"github.com/example/image-pipeline/internal/predictor"
)

// MaxRecordSize caps request bodies. Records carry the base64 image inline.
const MaxRecordSize = 8 << 20

// RequestIDHeader lets callers pin the request ID used in logs.
const RequestIDHeader = "X-Request-ID"

// Stages bundles the handlers served over HTTP.
type Stages struct {
	Serializer *pipeline.Serializer
	Classifier *pipeline.Classifier
	Filter     *pipeline.Filter
	Runner     *pipeline.Runner
	Logger     *zap.Logger
}

// RegisterRoutes wires the stage endpoints to the Gin router.
func RegisterRoutes(router *gin.Engine, stages Stages, authMiddleware gin.HandlerFunc) {
	logger := stages.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("http")

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/v1")
	if authMiddleware != nil {
		v1.Use(authMiddleware)
	}
	v1.Use(limitBody(MaxRecordSize), withRequestID())

	v1.POST("/stages/serialize", func(c *gin.Context) {
		var req pipeline.SerializeRequest
		if !bind(c, &req) {
			return
		}
		respond(c, logger, "serialize", stages.Serializer.Handle, req)
	})

	v1.POST("/stages/classify", func(c *gin.Context) {
		var in pipeline.Response
		if !bind(c, &in) {
			return
		}
		respond(c, logger, "classify", stages.Classifier.Handle, in)
	})

	v1.POST("/stages/filter", func(c *gin.Context) {
		var in pipeline.Response
		if !bind(c, &in) {
			return
		}
		respond(c, logger, "filter", stages.Filter.Handle, in)
	})

	v1.POST("/pipeline", func(c *gin.Context) {
		var req pipeline.SerializeRequest
		if !bind(c, &req) {
			return
		}
		respond(c, logger, "pipeline", stages.Runner.Run, req)
	})
}

func respond[T any](c *gin.Context, logger *zap.Logger, stage string, handle func(context.Context, T) (pipeline.Response, error), in T) {
	ctx := c.Request.Context()
	caller, _ := auth.GetCaller(ctx)
	reqLogger := logging.WithOperation(logger, "http."+stage, pipeline.RequestID(ctx)).
		With(zap.String("caller", caller))

	resp, err := handle(ctx, in)
	if err != nil {
		reqLogger.Warn("stage request failed", zap.Error(err))
		writeError(c, err)
		return
	}
	reqLogger.Info("stage request served")
	c.JSON(http.StatusOK, resp)
}

func bind(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "record too large"})
			return false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON record"})
		return false
	}
	return true
}

func writeError(c *gin.Context, err error) {
	body := gin.H{"error": err.Error()}
	if op := logging.OutermostOperation(err); op != "" {
		body["operation"] = op
	}

	var thresholdErr *pipeline.ThresholdError
	switch {
	case errors.As(err, &thresholdErr):
		body["error"] = pipeline.ThresholdNotMetMessage
		body["detail"] = thresholdErr.Detail()
		c.JSON(http.StatusUnprocessableEntity, body)
	case errors.Is(err, pipeline.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, body)
	case errors.Is(err, objectstore.ErrObjectNotFound):
		c.JSON(http.StatusNotFound, body)
	case errors.Is(err, predictor.ErrInvocationFailed), errors.Is(err, pipeline.ErrMalformedPrediction):
		c.JSON(http.StatusBadGateway, body)
	default:
		c.JSON(http.StatusInternalServerError, body)
	}
}

func limitBody(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}

func withRequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Request = c.Request.WithContext(pipeline.WithRequestID(c.Request.Context(), id))
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}
