package predictor

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/example/image-pipeline/internal/logging"
)

// Metadata keys carrying the invocation parameters on the gRPC backend.
const (
	EndpointMetadataKey    = "x-endpoint-name"
	ContentTypeMetadataKey = "x-content-type"
)

// DialGRPC connects to a model server exposing a unary method that takes a
// google.protobuf.BytesValue image and answers with a BytesValue prediction.
func DialGRPC(ctx context.Context, addr, method string, logger *zap.Logger, opts ...grpc.DialOption) (*GRPC, *grpc.ClientConn, error) {
	dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithBlock(),
	}, opts...)

	conn, err := grpc.DialContext(dialCtx, addr, dialOpts...)
	if err != nil {
		wrapped := logging.NewOperationError("predictor.grpc_dial", "", fmt.Errorf("%w: %w", ErrInvocationFailed, err))
		logger.Error("failed to dial model server", zap.Error(wrapped), zap.String("addr", addr))
		return nil, nil, wrapped
	}
	return NewGRPC(conn, method, logger), conn, nil
}

// GRPC calls a model server over an established connection.
type GRPC struct {
	conn   grpc.ClientConnInterface
	method string
	logger *zap.Logger
}

func NewGRPC(conn grpc.ClientConnInterface, method string, logger *zap.Logger) *GRPC {
	return &GRPC{conn: conn, method: method, logger: logger.Named("predictor_grpc")}
}

func (g *GRPC) Predict(ctx context.Context, endpoint string, payload []byte, contentType string) ([]byte, error) {
	ctx = metadata.AppendToOutgoingContext(ctx,
		EndpointMetadataKey, endpoint,
		ContentTypeMetadataKey, contentType,
	)

	resp := &wrapperspb.BytesValue{}
	if err := g.conn.Invoke(ctx, g.method, wrapperspb.Bytes(payload), resp); err != nil {
		wrapped := logging.NewOperationError("predictor.grpc_invoke", "", fmt.Errorf("%w: %w", ErrInvocationFailed, err))
		g.logger.Error("model server call failed", zap.Error(wrapped), zap.String("endpoint", endpoint), zap.String("method", g.method))
		return nil, wrapped
	}
	return resp.GetValue(), nil
}
