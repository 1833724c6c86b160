package ingest

import (
	"testing"

	"github.com/mercatto/catalog-sync/internal/entity"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	const managedHost = "cdn.example.com"

	tests := []struct {
		name           string
		rawURL         string
		wantStatus     entity.SyncStatus
		wantNote       string
		wantNormalized string
	}{
		{
			name:       "empty url is a no-op success",
			rawURL:     "",
			wantStatus: entity.SyncSynced,
			wantNote:   NoURLNote,
		},
		{
			name:       "whitespace-only url is a no-op success",
			rawURL:     "   \t",
			wantStatus: entity.SyncSynced,
			wantNote:   NoURLNote,
		},
		{
			name:       "unparseable url fails",
			rawURL:     "http://bad url with spaces",
			wantStatus: entity.SyncFailed,
			wantNote:   "malformed image url",
		},
		{
			name:       "relative url without host fails",
			rawURL:     "/images/foo.jpg",
			wantStatus: entity.SyncFailed,
			wantNote:   "malformed image url",
		},
		{
			name:       "non-http scheme fails",
			rawURL:     "ftp://files.example.com/foo.jpg",
			wantStatus: entity.SyncFailed,
			wantNote:   "malformed image url",
		},
		{
			name:           "managed host needs no work",
			rawURL:         "https://cdn.example.com/t1/products/a.jpg",
			wantStatus:     entity.SyncSynced,
			wantNormalized: "https://cdn.example.com/t1/products/a.jpg",
		},
		{
			name:           "managed host match is case-insensitive",
			rawURL:         "https://CDN.Example.COM/t1/products/a.jpg",
			wantStatus:     entity.SyncSynced,
			wantNormalized: "https://CDN.Example.COM/t1/products/a.jpg",
		},
		{
			name:           "external url produces pending work",
			rawURL:         "https://supplier.example.net/catalog/42.png",
			wantStatus:     entity.SyncPending,
			wantNormalized: "https://supplier.example.net/catalog/42.png",
		},
		{
			name:           "surrounding whitespace is trimmed",
			rawURL:         "  https://supplier.example.net/catalog/42.png  ",
			wantStatus:     entity.SyncPending,
			wantNormalized: "https://supplier.example.net/catalog/42.png",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := Classify(tt.rawURL, managedHost)

			assert.Equal(t, tt.wantStatus, c.Status)
			assert.Equal(t, tt.wantNote, c.Note)
			assert.Equal(t, tt.wantNormalized, c.NormalizedURL)
		})
	}
}
