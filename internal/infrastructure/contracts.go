package infrastructure

import (
	"context"

	"github.com/mercatto/catalog-sync/internal/dto"
)

type (
	// EventPublisher is the fire-and-forget side of background dispatch:
	// request handlers publish and return, workers consume.
	EventPublisher interface {
		PublishSyncRequested(ctx context.Context, event dto.SyncRequested) error
		PublishForkRequested(ctx context.Context, event dto.ForkRequested) error
		PublishBrandCopyRequested(ctx context.Context, event dto.BrandCopyRequested) error
		Close() error
	}

	// ImageTranscoder normalizes raw bytes to the managed format before
	// upload. Returns the encoded bytes and their content type.
	ImageTranscoder interface {
		Normalize(ctx context.Context, data []byte) ([]byte, string, error)
	}

	// ImageFetcher pulls bytes from an external URL under a bounded timeout.
	ImageFetcher interface {
		Fetch(ctx context.Context, url string) ([]byte, error)
	}
)
