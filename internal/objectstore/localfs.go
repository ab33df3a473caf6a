package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalFS serves objects from <root>/<bucket>/<key>. It stands in for S3 when
// running the pipeline on a workstation.
type LocalFS struct {
	root string
}

func NewLocalFS(root string) *LocalFS {
	return &LocalFS{root: root}
}

func (l *LocalFS) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := l.resolve(bucket, key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s/%s: %w", bucket, key, ErrObjectNotFound)
		}
		return nil, err
	}
	return data, nil
}

// resolve keeps lookups inside root.
func (l *LocalFS) resolve(bucket, key string) (string, error) {
	base := filepath.Clean(l.root)
	p := filepath.Join(base, filepath.FromSlash(bucket), filepath.FromSlash(key))
	rel, err := filepath.Rel(base, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("object path escapes storage root: %s/%s", bucket, key)
	}
	return p, nil
}
