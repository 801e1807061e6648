package provider

import (
	"fmt"
	"strings"
)

// URL markers used for classification.
const (
	PlaylistParam  = "list="
	ParamSeparator = "&"
)

// ThumbnailURLTemplate builds the highest resolution still for a video ID.
const ThumbnailURLTemplate = "https://i.ytimg.com/vi/%s/maxresdefault.jpg"

// VideoURLTemplate builds a watch URL from a video ID.
const VideoURLTemplate = "https://www.youtube.com/watch?v=%s"

// IsCatalogURL reports whether url points to the music catalog.
func IsCatalogURL(url string) bool {
	return strings.Contains(url, "spotify.com") || strings.Contains(url, "spotify.link")
}

// IsVideoURL reports whether url points to the video platform.
func IsVideoURL(url string) bool {
	return strings.Contains(url, "youtube.com") || strings.Contains(url, "youtu.be")
}

// IsPlaylistURL reports whether a video platform URL lists several videos.
func IsPlaylistURL(url string) bool {
	return strings.Contains(url, PlaylistParam) || strings.Contains(url, "/playlist")
}

// PlaylistID extracts the playlist ID from "...list=ID&..." or
// ".../playlist/ID?..." URLs. It returns "" when there is none.
func PlaylistID(url string) string {
	if _, rest, ok := strings.Cut(url, PlaylistParam); ok {
		id, _, _ := strings.Cut(rest, ParamSeparator)
		return id
	}
	if _, rest, ok := strings.Cut(url, "playlist/"); ok {
		id, _, _ := strings.Cut(rest, "?")
		return id
	}
	return ""
}

// VideoID extracts the video ID from watch, short-link and shorts URLs.
func VideoID(url string) string {
	for _, marker := range []string{"v=", "youtu.be/", "/shorts/"} {
		if _, rest, ok := strings.Cut(url, marker); ok {
			id, _, _ := strings.Cut(rest, ParamSeparator)
			id, _, _ = strings.Cut(id, "?")
			return id
		}
	}
	return ""
}

// ThumbnailURL returns the fallback thumbnail for a video ID, or "" when
// id is empty.
func ThumbnailURL(id string) string {
	if id == "" {
		return ""
	}
	return fmt.Sprintf(ThumbnailURLTemplate, id)
}

// CatalogID returns the ID following kind ("playlist", "album" or
// "track") in a catalog URL.
func CatalogID(url, kind string) (string, bool) {
	_, rest, ok := strings.Cut(url, kind+"/")
	if !ok {
		return "", false
	}
	id, _, _ := strings.Cut(rest, "?")
	return id, id != ""
}
