package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Parallel()

	s, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), s)
}

func TestLoadMergesDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"audio_format":"mp3","max_concurrent_downloads":5}`), 0644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "mp3", s.AudioFormat)
	assert.Equal(t, 5, s.MaxConcurrentDownloads)
	assert.Equal(t, "cbr", s.AudioBitrateMode)
	assert.True(t, s.SkipExisting)
}

func TestLoadInvalidJSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{`), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "config.json")
	s := DefaultSettings()
	s.DownloadMode = ModeVideo
	s.NotifyURIs = []string{"generic://example.com"}
	require.NoError(t, s.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, s, loaded)
}

func TestSnapshotIsIsolated(t *testing.T) {
	t.Parallel()

	s := DefaultSettings()
	s.NotifyURIs = []string{"a"}
	snap := s.Snapshot()

	s.AudioFormat = "flac"
	s.NotifyURIs[0] = "b"

	assert.Equal(t, "m4a", snap.AudioFormat())
	assert.Equal(t, []string{"a"}, snap.NotifyURIs())
}

func TestSnapshotDefaults(t *testing.T) {
	t.Parallel()

	var s Settings
	snap := s.Snapshot()
	assert.Equal(t, ModeAudio, snap.DownloadMode())
	assert.Equal(t, "mp3", snap.AudioFormat())
	assert.Equal(t, "192", snap.AudioQuality())
	assert.Equal(t, "mp4", snap.VideoFormat())
	assert.Equal(t, 1, snap.MaxConcurrentDownloads())
	assert.Equal(t, "", snap.CookiesFile())
}

func TestSnapshotCookiesFileMustExist(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s := DefaultSettings()
	s.CookiesFile = filepath.Join(dir, "cookies.txt")
	assert.Equal(t, "", s.Snapshot().CookiesFile())

	require.NoError(t, os.WriteFile(s.CookiesFile, []byte("# Netscape"), 0600))
	assert.Equal(t, s.CookiesFile, s.Snapshot().CookiesFile())
}

func TestSnapshotModeAlias(t *testing.T) {
	t.Parallel()

	s := DefaultSettings()
	s.DownloadMode = "both"
	assert.Equal(t, ModeVideoAudio, s.Snapshot().DownloadMode())
}
