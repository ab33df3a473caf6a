package pipeline

import (
	"context"
	"fmt"

	"github.com/example/image-pipeline/internal/objectstore"
)

type stubStore struct {
	objects map[string][]byte
	err     error
	calls   int
}

func (s *stubStore) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	data, ok := s.objects[bucket+"/"+key]
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", bucket, key, objectstore.ErrObjectNotFound)
	}
	return data, nil
}

type stubPredictor struct {
	response    []byte
	err         error
	endpoint    string
	payload     []byte
	contentType string
	calls       int
}

func (s *stubPredictor) Predict(ctx context.Context, endpoint string, payload []byte, contentType string) ([]byte, error) {
	s.calls++
	s.endpoint = endpoint
	s.payload = payload
	s.contentType = contentType
	if s.err != nil {
		return nil, s.err
	}
	return s.response, nil
}
