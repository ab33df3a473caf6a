// Package objectstore reads image blobs addressed by bucket and key.
package objectstore

import (
	"context"
	"errors"
)

// ErrObjectNotFound reports that the bucket/key pair does not exist.
var ErrObjectNotFound = errors.New("object not found")

// Store is the read side of object storage used by the serialize stage.
type Store interface {
	Get(ctx context.Context, bucket, key string) ([]byte, error)
}
