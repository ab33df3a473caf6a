package predictor

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const testMethod = "/inference.Predictor/Predict"

type seenCall struct {
	payload     []byte
	endpoint    string
	contentType string
}

func startModelServer(t *testing.T, reply []byte, replyErr error) (*bufconn.Listener, *seenCall) {
	t.Helper()

	seen := &seenCall{}
	handler := func(srv interface{}, ctx context.Context, dec func(interface{}) error, _ grpc.UnaryServerInterceptor) (interface{}, error) {
		in := &wrapperspb.BytesValue{}
		if err := dec(in); err != nil {
			return nil, err
		}
		seen.payload = in.GetValue()
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if v := md.Get(EndpointMetadataKey); len(v) > 0 {
				seen.endpoint = v[0]
			}
			if v := md.Get(ContentTypeMetadataKey); len(v) > 0 {
				seen.contentType = v[0]
			}
		}
		if replyErr != nil {
			return nil, replyErr
		}
		return wrapperspb.Bytes(reply), nil
	}

	server := grpc.NewServer()
	server.RegisterService(&grpc.ServiceDesc{
		ServiceName: "inference.Predictor",
		HandlerType: (*interface{})(nil),
		Methods:     []grpc.MethodDesc{{MethodName: "Predict", Handler: handler}},
	}, struct{}{})

	listener := bufconn.Listen(1 << 20)
	go func() { _ = server.Serve(listener) }()
	t.Cleanup(server.Stop)

	return listener, seen
}

func dialBufconn(t *testing.T, listener *bufconn.Listener) *GRPC {
	t.Helper()

	p, conn, err := DialGRPC(context.Background(), "bufnet", testMethod, zap.NewNop(),
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return listener.DialContext(ctx)
		}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return p
}

func TestGRPCPredictRoundTrip(t *testing.T) {
	listener, seen := startModelServer(t, []byte("[0.12, 0.88]"), nil)
	p := dialBufconn(t, listener)

	out, err := p.Predict(context.Background(), "image-classification-endpoint", []byte("png"), "image/png")
	require.NoError(t, err)

	assert.Equal(t, "[0.12, 0.88]", string(out))
	assert.Equal(t, []byte("png"), seen.payload)
	assert.Equal(t, "image-classification-endpoint", seen.endpoint)
	assert.Equal(t, "image/png", seen.contentType)
}

func TestGRPCPredictWrapsServerErrors(t *testing.T) {
	listener, _ := startModelServer(t, nil, status.Error(codes.Unavailable, "model loading"))
	p := dialBufconn(t, listener)

	_, err := p.Predict(context.Background(), "ep", []byte("png"), "image/png")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvocationFailed)
	assert.Contains(t, err.Error(), "model loading")
}
