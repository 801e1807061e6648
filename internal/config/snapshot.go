package config

import (
	"os"
	"slices"
	"strings"
)

// Snapshot is a read-only view of Settings captured at one point in time.
//
// A run takes one Snapshot and passes it down to every downloader, so a
// settings change while items are in flight never alters what an item was
// started with.
type Snapshot struct {
	settings Settings
}

func (s Snapshot) DownloadDir() string      { return s.settings.DownloadDir }
func (s Snapshot) SkipExisting() bool       { return s.settings.SkipExisting }
func (s Snapshot) RestrictFilenames() bool  { return s.settings.RestrictFilenames }
func (s Snapshot) AudioBitrateMode() string { return strings.ToLower(s.settings.AudioBitrateMode) }
func (s Snapshot) AudioSampleRate() string  { return s.settings.AudioSampleRate }
func (s Snapshot) AudioChannels() string    { return s.settings.AudioChannels }
func (s Snapshot) MP3Codec() string         { return s.settings.MP3Codec }
func (s Snapshot) AACCodec() string         { return s.settings.AACCodec }
func (s Snapshot) VideoCodec() string       { return strings.ToLower(s.settings.VideoCodec) }
func (s Snapshot) VideoQuality() string     { return strings.ToLower(s.settings.VideoQuality) }
func (s Snapshot) VideoBitrate() string     { return s.settings.VideoBitrate }
func (s Snapshot) VideoFPS() string         { return s.settings.VideoFPS }
func (s Snapshot) VideoCRF() string         { return s.settings.VideoCRF }
func (s Snapshot) VideoPreset() string      { return s.settings.VideoPreset }
func (s Snapshot) ExtraFFmpegArgs() string  { return s.settings.ExtraFFmpegArgs }
func (s Snapshot) CreatePlaylist() bool     { return s.settings.CreatePlaylist }
func (s Snapshot) CoverCacheSize() int      { return s.settings.CoverCacheSize }
func (s Snapshot) CoverRateLimitMS() int    { return s.settings.CoverRateLimitMS }
func (s Snapshot) SpotifyClientID() string  { return s.settings.SpotifyClientID }

func (s Snapshot) SpotifyClientSecret() string { return s.settings.SpotifyClientSecret }

// NotifyURIs returns a copy of the notification targets.
func (s Snapshot) NotifyURIs() []string { return slices.Clone(s.settings.NotifyURIs) }

// DownloadMode returns the mode, defaulting to audio when unset.
func (s Snapshot) DownloadMode() string {
	mode := strings.ToLower(s.settings.DownloadMode)
	if mode == "" {
		return ModeAudio
	}
	if mode == "both" {
		return ModeVideoAudio
	}
	return mode
}

// AudioFormat returns the lowercase target audio container, "mp3" if unset.
func (s Snapshot) AudioFormat() string {
	if s.settings.AudioFormat == "" {
		return "mp3"
	}
	return strings.ToLower(s.settings.AudioFormat)
}

// AudioQuality returns the configured quality, "192" if unset.
func (s Snapshot) AudioQuality() string {
	if s.settings.AudioQuality == "" {
		return "192"
	}
	return s.settings.AudioQuality
}

// VideoFormat returns the lowercase target video container, "mp4" if unset.
func (s Snapshot) VideoFormat() string {
	if s.settings.VideoFormat == "" {
		return "mp4"
	}
	return strings.ToLower(s.settings.VideoFormat)
}

// MaxConcurrentDownloads returns the worker pool size, at least 1.
func (s Snapshot) MaxConcurrentDownloads() int {
	return max(s.settings.MaxConcurrentDownloads, 1)
}

// CookiesFile returns the cookie file path when it exists on disk.
func (s Snapshot) CookiesFile() string {
	if s.settings.CookiesFile == "" {
		return ""
	}
	if _, err := os.Stat(s.settings.CookiesFile); err != nil {
		return ""
	}
	return s.settings.CookiesFile
}
