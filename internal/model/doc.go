// Package model defines the core data structures shared by the queue,
// the downloader and the tagger.
//
// # QueueItem
//
// QueueItem is one unit of work. It carries a SourceKind that selects the
// download strategy, the resolved URL, tag Metadata and a lifecycle State:
//
//	item := model.NewQueueItem(model.KindCatalog, trackURL, model.Metadata{
//	    Title:   "Song",
//	    Artist:  "Artist",
//	    Album:   "Album",
//	    TrackNo: 3,
//	}, true)
//
// # State
//
// State is a tagged variant (pending, skipped, found, downloading, tagging,
// completed, failed). Status projects it to the display strings used by the
// user interfaces:
//
//	model.Downloading(42.9).Status() // "%42"
//	model.Failed("Video özel").Status() // "Hata: Video özel"
//
// # File names
//
// SanitizeFileName strips characters that are invalid on common filesystems
// and caps the length; SanitizeASCII additionally transliterates to ASCII.
package model
