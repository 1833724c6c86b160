// Package ingest classifies incoming image URLs and decides the initial sync
// state. Pure: same input, same classification, no I/O.
package ingest

import (
	"net/url"
	"strings"

	"github.com/mercatto/catalog-sync/internal/entity"
)

// NoURLNote explains a synced entity that had nothing to internalize.
const NoURLNote = "URL não fornecida"

const malformedNote = "malformed image url"

type Classification struct {
	// NormalizedURL is empty when the input was blank or malformed.
	NormalizedURL string
	Status        entity.SyncStatus
	// Note carries the sync_error explanation for synced-without-work and
	// failed outcomes.
	Note string
}

// Classify decides what to do with an incoming image URL. Blank input is a
// valid no-op success; anything that does not parse as an absolute http(s)
// URL is failed outright; a URL already pointing at managedHost needs no
// internalization; only a well-formed external URL produces pending work.
func Classify(rawURL, managedHost string) Classification {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return Classification{Status: entity.SyncSynced, Note: NoURLNote}
	}

	u, err := url.Parse(trimmed)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return Classification{Status: entity.SyncFailed, Note: malformedNote}
	}

	if strings.EqualFold(u.Host, managedHost) {
		return Classification{NormalizedURL: u.String(), Status: entity.SyncSynced}
	}

	return Classification{NormalizedURL: u.String(), Status: entity.SyncPending}
}
