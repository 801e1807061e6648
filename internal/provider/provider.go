package provider

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a lookup or search produced no result.
var ErrNotFound = errors.New("not found")

// ErrNoCredentials is returned by catalog resolvers that were created
// without API credentials.
var ErrNoCredentials = errors.New("catalog credentials missing")

// Track is one catalog entry.
type Track struct {
	Artist   string
	Title    string
	Album    string
	CoverURL string
	Year     string
	TrackNo  int
	URL      string
}

// Collection is a catalog playlist, album or single track, with every
// page of tracks already fetched.
type Collection struct {
	Title  string
	Tracks []Track
}

// Video describes one video on the video platform.
type Video struct {
	ID        string
	URL       string
	Title     string
	Channel   string
	Thumbnail string
}

// Playlist is a video playlist in playlist order.
type Playlist struct {
	Title   string
	Channel string
	Videos  []Video
}

// CatalogResolver expands catalog URLs into tracks.
type CatalogResolver interface {
	Resolve(ctx context.Context, url string) (*Collection, error)
}

// VideoResolver looks up videos and playlists.
type VideoResolver interface {
	ResolveVideo(ctx context.Context, url string) (*Video, error)
	ResolvePlaylist(ctx context.Context, url string) (*Playlist, error)

	// Search returns the first result for query, or ErrNotFound.
	Search(ctx context.Context, query string) (*Video, error)
}
