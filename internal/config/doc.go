// Package config provides configuration management for mediaqueue.
//
// This package handles:
//   - Loading and saving settings from JSON files
//   - Default configuration values
//   - Immutable snapshots handed to the queue and the downloaders
//
// # Loading from File
//
//	settings, err := config.Load(config.DefaultPath())
//	if err != nil {
//	    // Uses defaults if file doesn't exist
//	}
//
// # Snapshots
//
// Downloads never read Settings directly. A run captures a Snapshot and
// passes it by value:
//
//	snap := settings.Snapshot()
//	settings.AudioFormat = "flac" // does not affect snap
//	snap.AudioFormat()            // still the old value
package config
