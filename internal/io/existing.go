package ioutils

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// AudioExtensions are the file types considered by FindExisting.
var AudioExtensions = map[string]bool{
	".mp3":  true,
	".m4a":  true,
	".opus": true,
	".flac": true,
	".wav":  true,
	".ogg":  true,
}

// FindExisting walks root looking for an audio file whose name (without
// extension) contains both artist and title, ignoring case.
//
// Matching is a substring heuristic, not a content comparison: it can
// report a false positive when a title is part of an unrelated name, and
// misses files that spell the artist differently. Directories are walked
// in lexical order and the first match wins.
//
// Names are compared after Unicode NFC normalization and full case
// folding, so decomposed names written by macOS match their composed form.
//
// Returns the matching path, or "" and false. A missing root is not an
// error.
//
// Example:
//
//	if path, ok := FindExisting("/music", "Tarkan", "Kuzu Kuzu"); ok {
//	    fmt.Println("already have", path)
//	}
func FindExisting(root, artist, title string) (string, bool) {
	fold := cases.Fold()
	needleArtist := fold.String(norm.NFC.String(artist))
	needleTitle := fold.String(norm.NFC.String(title))
	if needleArtist == "" || needleTitle == "" {
		return "", false
	}

	var found string
	errFound := errors.New("found")
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() && path != root {
				return fs.SkipDir
			}
			return err
		}
		if d.IsDir() {
			return nil
		}

		name := d.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if !AudioExtensions[ext] {
			return nil
		}

		stem := fold.String(norm.NFC.String(strings.TrimSuffix(name, filepath.Ext(name))))
		if strings.Contains(stem, needleTitle) && strings.Contains(stem, needleArtist) {
			found = path
			return errFound
		}
		return nil
	})
	if err != nil && !errors.Is(err, errFound) {
		return "", false
	}
	return found, found != ""
}
