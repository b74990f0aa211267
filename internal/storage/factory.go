package storage

import (
	"context"
	"fmt"
)

// Config selects and configures a storage driver.
type Config struct {
	Driver             string
	LocalDir           string
	LocalURLPrefix     string
	LocalPublicBaseURL string
	S3                 S3Config
}

// New builds the Storage named by cfg.Driver ("local" or "s3").
func New(ctx context.Context, cfg Config) (Storage, error) {
	switch cfg.Driver {
	case "", "local":
		l := NewLocal(cfg.LocalDir, cfg.LocalURLPrefix)
		l.PublicBaseURL = cfg.LocalPublicBaseURL
		return l, nil

	case "s3":
		if cfg.S3.Region == "" || cfg.S3.Bucket == "" || cfg.S3.PublicBaseURL == "" {
			return nil, fmt.Errorf("S3 config missing: S3_REGION, S3_BUCKET, S3_PUBLIC_BASE_URL required")
		}
		return NewS3(ctx, cfg.S3)

	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER: %s", cfg.Driver)
	}
}
