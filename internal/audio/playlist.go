package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/handiism/mediaqueue/internal/model"
)

// PlaylistFormat represents supported playlist file formats.
type PlaylistFormat int

const (
	// FormatM3U creates extended .m3u files, the most widely supported.
	FormatM3U PlaylistFormat = iota

	// FormatPLS creates .pls files (Winamp/SHOUTcast format).
	FormatPLS
)

// ParsePlaylistFormat maps "m3u" or "pls" to a format. Unknown names
// fall back to FormatM3U.
func ParsePlaylistFormat(name string) PlaylistFormat {
	if strings.EqualFold(name, "pls") {
		return FormatPLS
	}
	return FormatM3U
}

// Ext returns the file extension for the format, including the dot.
func (f PlaylistFormat) Ext() string {
	if f == FormatPLS {
		return ".pls"
	}
	return ".m3u"
}

// PlaylistEntry is one file in a batch playlist.
type PlaylistEntry struct {
	Path   string
	Title  string
	Artist string
}

// PlaylistCreator generates a playlist for the files of one batch
// directory (an album, a video playlist or a URL list).
//
// Entry paths are written relative to the playlist, which is saved next
// to the files.
//
// Example:
//
//	creator := NewPlaylistCreator(FormatM3U)
//	path, err := creator.Write("/music/Album", "Album", entries)
//
//	// Album.m3u:
//	// #EXTM3U
//	// #EXTINF:-1,Artist - Song Title
//	// Song Title.mp3
type PlaylistCreator struct {
	format PlaylistFormat
}

// NewPlaylistCreator creates a new PlaylistCreator.
func NewPlaylistCreator(format PlaylistFormat) *PlaylistCreator {
	return &PlaylistCreator{format: format}
}

// CreatePlaylist renders entries in the creator's format.
func (p *PlaylistCreator) CreatePlaylist(entries []PlaylistEntry) string {
	if p.format == FormatPLS {
		return createPLS(entries)
	}
	return createM3U(entries)
}

// Write saves the playlist for entries as dir/<name><ext> and returns its
// path. name is sanitized like a collection directory.
func (p *PlaylistCreator) Write(dir, name string, entries []PlaylistEntry) (string, error) {
	if len(entries) == 0 {
		return "", fmt.Errorf("playlist %q has no entries", name)
	}
	path := filepath.Join(dir, model.CollectionDirName(name)+p.format.Ext())
	if err := os.WriteFile(path, []byte(p.CreatePlaylist(entries)), 0644); err != nil {
		return "", err
	}
	return path, nil
}

// createM3U generates an extended M3U playlist. Durations are unknown
// and written as -1.
func createM3U(entries []PlaylistEntry) string {
	var sb strings.Builder

	sb.WriteString("#EXTM3U\n")
	for _, e := range entries {
		fmt.Fprintf(&sb, "#EXTINF:-1,%s\n", displayName(e))
		sb.WriteString(filepath.Base(e.Path) + "\n")
	}

	return sb.String()
}

// createPLS generates a PLS playlist.
//
//	[playlist]
//	File1=filename1.mp3
//	Title1=Artist - Song Title
//	Length1=-1
//	NumberOfEntries=1
//	Version=2
func createPLS(entries []PlaylistEntry) string {
	var sb strings.Builder

	sb.WriteString("[playlist]\n")
	for i, e := range entries {
		idx := i + 1
		fmt.Fprintf(&sb, "File%d=%s\n", idx, filepath.Base(e.Path))
		fmt.Fprintf(&sb, "Title%d=%s\n", idx, displayName(e))
		fmt.Fprintf(&sb, "Length%d=-1\n", idx)
	}
	fmt.Fprintf(&sb, "NumberOfEntries=%d\n", len(entries))
	sb.WriteString("Version=2\n")

	return sb.String()
}

func displayName(e PlaylistEntry) string {
	title := e.Title
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(e.Path), filepath.Ext(e.Path))
	}
	if e.Artist == "" {
		return title
	}
	return e.Artist + " - " + title
}
