// Package spotify resolves catalog URLs through the Spotify Web API using
// client-credential authentication.
package spotify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/handiism/mediaqueue/internal/provider"
)

// UnknownArtist is used for tracks that list no artist.
const UnknownArtist = "Bilinmiyor"

// Resolver implements provider.CatalogResolver.
type Resolver struct {
	client *spotify.Client
}

// New creates a Resolver authenticated with the client-credentials flow.
//
// The returned Resolver is usable even without credentials: Resolve then
// fails with provider.ErrNoCredentials and the queue falls back to a
// placeholder item.
func New(ctx context.Context, clientID, clientSecret string) *Resolver {
	if clientID == "" || clientSecret == "" {
		slog.Warn("spotify credentials missing")
		return &Resolver{}
	}
	cfg := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}
	return &Resolver{client: spotify.New(cfg.Client(ctx))}
}

// NewWithClient wraps an existing API client.
func NewWithClient(client *spotify.Client) *Resolver {
	return &Resolver{client: client}
}

// Resolve expands a playlist, album or track URL. Every page of a
// playlist or album is fetched before returning.
func (r *Resolver) Resolve(ctx context.Context, url string) (*provider.Collection, error) {
	if r.client == nil {
		return nil, provider.ErrNoCredentials
	}
	if id, ok := provider.CatalogID(url, "playlist"); ok {
		return r.playlist(ctx, spotify.ID(id))
	}
	if id, ok := provider.CatalogID(url, "album"); ok {
		return r.album(ctx, spotify.ID(id))
	}
	if id, ok := provider.CatalogID(url, "track"); ok {
		return r.track(ctx, spotify.ID(id))
	}
	return nil, fmt.Errorf("unsupported catalog url %q", url)
}

func (r *Resolver) playlist(ctx context.Context, id spotify.ID) (*provider.Collection, error) {
	pl, err := r.client.GetPlaylist(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get playlist: %w", err)
	}
	name := pl.Name
	if name == "" {
		name = "Playlist " + string(id)
	}
	slog.Info("resolved playlist", "name", name, "owner", pl.Owner.DisplayName)

	page, err := r.client.GetPlaylistItems(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get playlist items: %w", err)
	}

	// the playlist name overrides each track's album so the whole
	// playlist lands in one directory
	col := &provider.Collection{Title: name}
	for {
		for _, item := range page.Items {
			if item.Track.Track == nil {
				continue
			}
			t := fullTrack(item.Track.Track)
			t.Album = name
			col.Tracks = append(col.Tracks, t)
		}
		if err := r.client.NextPage(ctx, page); err != nil {
			if errors.Is(err, spotify.ErrNoMorePages) {
				break
			}
			return nil, fmt.Errorf("next playlist page: %w", err)
		}
	}
	return col, nil
}

func (r *Resolver) album(ctx context.Context, id spotify.ID) (*provider.Collection, error) {
	album, err := r.client.GetAlbum(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get album: %w", err)
	}
	slog.Info("resolved album", "name", album.Name)

	page, err := r.client.GetAlbumTracks(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get album tracks: %w", err)
	}

	col := &provider.Collection{Title: album.Name}
	for {
		for _, item := range page.Tracks {
			col.Tracks = append(col.Tracks, simpleTrack(item, album.SimpleAlbum))
		}
		if err := r.client.NextPage(ctx, page); err != nil {
			if errors.Is(err, spotify.ErrNoMorePages) {
				break
			}
			return nil, fmt.Errorf("next album page: %w", err)
		}
	}
	return col, nil
}

func (r *Resolver) track(ctx context.Context, id spotify.ID) (*provider.Collection, error) {
	track, err := r.client.GetTrack(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get track: %w", err)
	}
	t := fullTrack(track)
	return &provider.Collection{Title: t.Title, Tracks: []provider.Track{t}}, nil
}

func fullTrack(track *spotify.FullTrack) provider.Track {
	t := simpleTrack(track.SimpleTrack, track.Album)
	t.Album = track.Album.Name
	return t
}

func simpleTrack(track spotify.SimpleTrack, album spotify.SimpleAlbum) provider.Track {
	t := provider.Track{
		Artist:  UnknownArtist,
		Title:   track.Name,
		Album:   album.Name,
		Year:    releaseYear(album.ReleaseDate),
		TrackNo: int(track.TrackNumber),
		URL:     track.ExternalURLs["spotify"],
	}
	if len(track.Artists) > 0 {
		t.Artist = track.Artists[0].Name
	}
	if len(album.Images) > 0 {
		t.CoverURL = album.Images[0].URL
	}
	return t
}

// releaseYear returns the leading year of a "2006", "2006-01" or
// "2006-01-02" release date.
func releaseYear(date string) string {
	date = strings.TrimSpace(date)
	if len(date) < 4 {
		return date
	}
	return date[:4]
}
