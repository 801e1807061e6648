package ioutils

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

var (
	// ErrNoArtifact is returned by NewestFile when the directory holds no
	// candidate file.
	ErrNoArtifact = errors.New("no downloaded file found")

	formatFragment = regexp.MustCompile(`\.f\d+\.`)

	// fragmentPatterns are removed after a successful post-processing step.
	fragmentPatterns = []string{
		"*.temp.*",
		"*.f[0-9]*.webm",
		"*.f[0-9]*.mp4",
		"*.f[0-9]*.m4a",
	}

	// skippedExtensions mark files still being written by the fetch tool.
	skippedExtensions = []string{".part", ".ytdl"}
)

// EnsureDir creates a directory and all parent directories if they don't exist.
//
// Directories are created with mode 0755 (rwxr-xr-x).
// If the directory already exists, no error is returned.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// IsFragment reports whether name looks like a transient file left by the
// fetch tool: intermediate ".temp." files, per-format streams such as
// "video.f137.mp4", or partial downloads.
func IsFragment(name string) bool {
	base := filepath.Base(name)
	if strings.Contains(base, ".temp.") || formatFragment.MatchString(base) {
		return true
	}
	ext := strings.ToLower(filepath.Ext(base))
	for _, skip := range skippedExtensions {
		if ext == skip {
			return true
		}
	}
	return false
}

// CleanupFragments deletes intermediate stream files in dir and returns
// the paths it removed. Removal errors are collected and joined; a failed
// removal does not stop the others.
func CleanupFragments(dir string) ([]string, error) {
	var removed []string
	var errs []error
	for _, pattern := range fragmentPatterns {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, match := range matches {
			if err := os.Remove(match); err != nil {
				errs = append(errs, err)
				continue
			}
			removed = append(removed, match)
		}
	}
	return removed, errors.Join(errs...)
}

// NewestFile returns the most recently modified regular file in dir that
// is not a fragment. Sub-directories are not searched.
//
// This is a fallback for when the fetch tool does not report the file it
// produced. It is inherently racy when several downloads write into the
// same directory at once; callers should hold a DirLocks lock for dir.
func NewestFile(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var newest string
	var newestInfo fs.FileInfo
	for _, entry := range entries {
		if !entry.Type().IsRegular() || IsFragment(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if newestInfo == nil || info.ModTime().After(newestInfo.ModTime()) {
			newest = filepath.Join(dir, entry.Name())
			newestInfo = info
		}
	}

	if newest == "" {
		return "", ErrNoArtifact
	}
	return newest, nil
}

// RenameNoClobber renames path to newBase (a file name without extension)
// in the same directory, keeping the extension.
//
// If a file with the new name already exists, nothing is renamed and the
// original path is returned with renamed=false. The same happens when the
// name would not change.
func RenameNoClobber(path, newBase string) (result string, renamed bool, err error) {
	dir := filepath.Dir(path)
	ext := filepath.Ext(path)
	target := filepath.Join(dir, newBase+ext)
	if target == path {
		return path, false, nil
	}

	if _, err := os.Lstat(target); err == nil {
		return path, false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return path, false, err
	}

	if err := os.Rename(path, target); err != nil {
		return path, false, err
	}
	return target, true, nil
}

// DirLocks hands out one mutex per directory path.
//
// The zero value is ready to use.
//
//	var locks DirLocks
//	unlock := locks.Lock("/music/Album")
//	defer unlock()
type DirLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// Lock blocks until the lock for dir is held and returns its release func.
func (d *DirLocks) Lock(dir string) (unlock func()) {
	dir = filepath.Clean(dir)

	d.mu.Lock()
	if d.locks == nil {
		d.locks = make(map[string]*sync.Mutex)
	}
	l, ok := d.locks[dir]
	if !ok {
		l = &sync.Mutex{}
		d.locks[dir] = l
	}
	d.mu.Unlock()

	l.Lock()
	return l.Unlock
}
