// Package objectstore lists and reads raw lyric files from a bucket-like
// store.
package objectstore

import (
	"context"
	"fmt"

	"lyricflow/internal/config"
	"lyricflow/internal/util"
)

type Object struct {
	Name string
	Size int64
}

type Store interface {
	// List returns objects under prefix in lexical name order.
	List(ctx context.Context, prefix string) ([]Object, error)
	Read(ctx context.Context, name string) ([]byte, error)
	Close() error
}

// Open selects the backend named by cfg.ObjectStore.
func Open(ctx context.Context, cfg config.Config) (Store, error) {
	switch cfg.ObjectStore {
	case "local", "":
		return NewLocal(cfg.DataInRoot), nil
	case "gcs":
		return NewGCS(ctx, cfg.BucketName)
	case "s3":
		return NewS3(cfg.BucketName, cfg.S3Region, cfg.S3Endpoint)
	default:
		return nil, fmt.Errorf("%w: object store %q", util.ErrUnknownBackend, cfg.ObjectStore)
	}
}
