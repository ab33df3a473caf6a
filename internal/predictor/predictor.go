// Package predictor submits encoded images to a hosted classification model.
package predictor

import (
	"context"
	"errors"
)

// ErrInvocationFailed marks failures reaching or running the hosted model.
var ErrInvocationFailed = errors.New("model invocation failed")

// Predictor sends payload to the named endpoint and returns the raw response body.
type Predictor interface {
	Predict(ctx context.Context, endpoint string, payload []byte, contentType string) ([]byte, error)
}
