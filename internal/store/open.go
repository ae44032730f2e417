// ABOUTME: Opens the configured asset and library stores from storage configuration
// ABOUTME: An S3 asset store is paired with a SQLite library at storage.path

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/2389/fitcheck-studio/internal/config"
)

// Stores bundles the asset store and library store selected by configuration.
type Stores struct {
	Assets  AssetStore
	Library LibraryStore

	closers []func() error
}

// Open constructs the stores for cfg.Driver.
func Open(ctx context.Context, cfg config.StorageConfig) (*Stores, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		m := NewMockStore()
		return &Stores{Assets: m, Library: m}, nil

	case config.DriverSQLite, "":
		s, err := NewSQLiteStore(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		return &Stores{Assets: s, Library: s, closers: []func() error{s.Close}}, nil

	case config.DriverS3:
		assets, err := NewS3Store(ctx, S3Options{
			Bucket:          cfg.S3.Bucket,
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			PathStyle:       cfg.S3.PathStyle,
			Prefix:          cfg.S3.Prefix,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
		})
		if err != nil {
			return nil, fmt.Errorf("opening s3 store: %w", err)
		}
		lib, err := NewSQLiteStore(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("opening library store: %w", err)
		}
		return &Stores{Assets: assets, Library: lib, closers: []func() error{assets.Close, lib.Close}}, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// Close releases every underlying store.
func (s *Stores) Close() error {
	var errs []error
	for _, c := range s.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
