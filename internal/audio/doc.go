// Package audio writes metadata into downloaded files and builds batch
// playlists.
//
// # Tagging
//
// Use the Tagger to write tags after a download finishes:
//
//	tagger := audio.NewTagger(coverResolver)
//	err := tagger.Tag(ctx, path, item.Metadata)
//
// Supported containers:
//   - MP3 (ID3v2.3)
//   - M4A and MP4 (iTunes atoms)
//   - FLAC (Vorbis comments and a picture block)
//
// # Playlist Generation
//
// After a run, the files that landed in one batch directory can be listed
// in a playlist:
//
//	creator := audio.NewPlaylistCreator(audio.FormatM3U)
//	path, err := creator.Write(dir, album, entries)
package audio
