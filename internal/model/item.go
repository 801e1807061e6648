package model

import (
	"github.com/google/uuid"
)

// Placeholder values used when a provider cannot describe an item.
const (
	UnknownTrack  = "Bilinmeyen Parça"
	UnknownArtist = "Bilinmeyen"
	UnknownVideo  = "Bilinmeyen Video"
	VideoArtist   = "YouTube"
	SingleAlbum   = "Tekli"
)

// SourceKind selects the resolution and download strategy for an item.
type SourceKind int

const (
	// KindVideo items are fetched directly from the video platform.
	KindVideo SourceKind = iota

	// KindCatalog items come from the music catalog and are fetched by
	// searching the video platform for "artist - title".
	KindCatalog
)

// String returns a short lowercase name for the kind.
func (k SourceKind) String() string {
	switch k {
	case KindCatalog:
		return "catalog"
	default:
		return "video"
	}
}

// Metadata is the tag and display information carried by a queue item.
//
// Metadata is a plain value: copying it is a deep copy, so a downloader
// holding its own copy is unaffected by later edits to the queue.
type Metadata struct {
	// Title is the track or video title.
	Title string

	// Artist is the performer or channel name.
	Artist string

	// Album doubles as the output sub-directory for batch members.
	Album string

	// CoverURL points to the cover image. Empty means no cover.
	CoverURL string

	// Year is the release year as provided, e.g. "2019". Only four-digit
	// values end up in tags.
	Year string

	// TrackNo is the 1-based position in the collection, 0 when unknown.
	TrackNo int
}

// IsEmpty reports whether m carries no usable tag information.
func (m Metadata) IsEmpty() bool {
	return m.Title == "" && m.Artist == "" && m.Album == "" &&
		m.CoverURL == "" && m.Year == "" && m.TrackNo == 0
}

// HasKnownIdentity reports whether both artist and title are real values
// rather than placeholders. Only such items take part in duplicate detection.
func (m Metadata) HasKnownIdentity() bool {
	switch m.Title {
	case "", UnknownArtist, UnknownTrack, "Unknown":
		return false
	}
	switch m.Artist {
	case "", UnknownArtist, "Unknown":
		return false
	}
	return true
}

// QueueItem is one unit of work in the download queue.
//
// Items are created by ingestion and mutated only by the queue manager on
// behalf of the worker that owns the item during a run.
//
// Example:
//
//	item := NewQueueItem(KindVideo, "https://youtu.be/abc", Metadata{
//	    Title:  "Song",
//	    Artist: "Channel",
//	    Album:  SingleAlbum,
//	}, false)
//	fmt.Println(item.State.Status()) // "Beklemede"
type QueueItem struct {
	// ID is generated at creation and never changes.
	ID string

	// Kind selects the download strategy.
	Kind SourceKind

	// URL is the resolved fetch target, which may differ from the URL
	// that was ingested (e.g. a playlist entry's own URL).
	URL string

	// Metadata holds the display and tag strings.
	Metadata Metadata

	// BatchMember is true for items that came from a playlist, album or
	// URL list file. Batch members are saved in a sub-directory named
	// after Metadata.Album.
	BatchMember bool

	// State is the current lifecycle state.
	State State
}

// NewQueueItem creates a pending item with a fresh ID.
func NewQueueItem(kind SourceKind, url string, meta Metadata, batch bool) *QueueItem {
	return &QueueItem{
		ID:          uuid.NewString(),
		Kind:        kind,
		URL:         url,
		Metadata:    meta,
		BatchMember: batch,
		State:       Pending(),
	}
}

// Status returns the human-readable status string for the item.
func (q *QueueItem) Status() string {
	return q.State.Status()
}
