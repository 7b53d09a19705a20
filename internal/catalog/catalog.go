// Package catalog talks to the YouTube Data API: playlist search, playlist
// membership and video metadata.
package catalog

import (
	"context"

	"github.com/Nixie-Tech-LLC/powerhour/internal/model"
)

const (
	// MaxBatch is the most ids the videos endpoint accepts per request.
	MaxBatch = 50

	// SearchLimit is how many playlists one search asks for.
	SearchLimit = 50
)

// Catalog is the read API the validator needs.
type Catalog interface {
	SearchPlaylists(ctx context.Context, query string) ([]model.PlaylistSummary, error)
	PlaylistVideoIDs(ctx context.Context, playlistID string) ([]string, error)
	// Videos fetches metadata in batches and stops once eligible has accepted
	// model.ClipsPerHour records. A nil eligible fetches every batch.
	Videos(ctx context.Context, ids []string, eligible func(model.RawVideo) bool) ([]model.RawVideo, error)
	Playlist(ctx context.Context, playlistID string) (model.PlaylistSummary, bool, error)
}
