// Package ioutils provides file system and image utilities for the
// downloader.
//
// This package contains functions for:
//   - Directory creation
//   - Cleanup of transient download fragments
//   - Locating the newest produced file in a directory
//   - Renaming without overwriting
//   - Finding already downloaded tracks
//   - Shrinking cover images for embedding
//
// # Cover Images
//
// ShrinkCover prepares downloaded cover art for embedding in tags. It keeps
// covers within DefaultCoverLimits (300x300 pixels, 80KB):
//
//	small, err := ioutils.ShrinkCover(data, ioutils.DefaultCoverLimits)
//
// # Artifacts
//
// After a fetch, CleanupFragments removes intermediate stream files and
// NewestFile locates the produced file when the fetch tool did not report
// it. DirLocks serializes that scan per directory.
package ioutils
