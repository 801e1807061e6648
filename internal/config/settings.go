package config

import (
	"os"
	"path/filepath"
	"slices"

	"github.com/goccy/go-json"
)

// Download modes.
const (
	ModeAudio      = "audio"
	ModeVideo      = "video"
	ModeVideoAudio = "video+audio"
)

// Settings holds all configuration options as stored on disk.
//
// Settings is mutable and meant for loading, editing and saving. Code that
// downloads should work from a Snapshot instead, taken once per run.
type Settings struct {
	// Download settings
	DownloadDir            string `json:"download_dir"`
	DownloadMode           string `json:"download_mode"` // audio, video, video+audio
	MaxConcurrentDownloads int    `json:"max_concurrent_downloads"`
	SkipExisting           bool   `json:"skip_existing"`
	RestrictFilenames      bool   `json:"restrict_filenames"`
	CookiesFile            string `json:"cookies_file"`

	// Audio settings
	AudioFormat      string `json:"audio_format"`
	AudioQuality     string `json:"audio_quality"`
	AudioBitrateMode string `json:"audio_bitrate_mode"` // cbr, abr
	AudioSampleRate  string `json:"audio_sample_rate"`
	AudioChannels    string `json:"audio_channels"`
	MP3Codec         string `json:"mp3_codec"`
	AACCodec         string `json:"aac_codec"`

	// Video settings
	VideoFormat  string `json:"video_format"`
	VideoCodec   string `json:"video_codec"` // h264, h265, copy
	VideoQuality string `json:"video_quality"`
	VideoBitrate string `json:"video_bitrate"`
	VideoFPS     string `json:"video_fps"`
	VideoCRF     string `json:"video_crf"`
	VideoPreset  string `json:"video_preset"`

	// ExtraFFmpegArgs is appended to every post-processing step, split
	// with shell quoting rules.
	ExtraFFmpegArgs string `json:"extra_ffmpeg_args"`

	// Catalog credentials
	SpotifyClientID     string `json:"spotify_client_id"`
	SpotifyClientSecret string `json:"spotify_client_secret"`

	// Cover art settings
	CoverCacheSize   int `json:"cover_cache_size"`
	CoverRateLimitMS int `json:"cover_rate_limit_ms"`

	// Post-run settings
	CreatePlaylist bool     `json:"create_playlist"`
	NotifyURIs     []string `json:"notify_uris"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	homeDir, _ := os.UserHomeDir()
	return &Settings{
		DownloadDir:            filepath.Join(homeDir, "Music", "mediaqueue"),
		DownloadMode:           ModeAudio,
		MaxConcurrentDownloads: 3,
		SkipExisting:           true,

		AudioFormat:      "m4a",
		AudioQuality:     "192",
		AudioBitrateMode: "cbr",
		AudioSampleRate:  "44100",
		AudioChannels:    "2",
		MP3Codec:         "libmp3lame",
		AACCodec:         "aac",

		VideoFormat:  "mp4",
		VideoCodec:   "h264",
		VideoQuality: "1080p",
		VideoBitrate: "auto",
		VideoFPS:     "source",
		VideoCRF:     "23",
		VideoPreset:  "medium",

		CoverCacheSize: 100,
	}
}

// DefaultPath returns the default settings file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "mediaqueue", "config.json")
}

// Load reads settings from a JSON file.
//
// Keys missing from the file keep their default values. A missing file is
// not an error: the defaults are returned.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, err
	}

	return settings, nil
}

// Save writes settings to a JSON file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Snapshot returns an immutable copy of the settings.
func (s *Settings) Snapshot() Snapshot {
	snap := Snapshot{settings: *s}
	snap.settings.NotifyURIs = slices.Clone(s.NotifyURIs)
	return snap
}
