package model

import (
	"regexp"
	"strings"

	"github.com/rainycape/unidecode"
)

// Length caps for sanitized names.
const (
	MaxFileNameLength       = 200
	MaxCollectionNameLength = 100
)

var invalidChars = regexp.MustCompile(`[<>:"/\\|?*]`)

// SanitizeFileName makes name safe to use as a file or directory name.
//
// The following transformations are applied:
//   - Characters invalid on common filesystems (<>:"/\|?*) are removed
//   - Leading and trailing dots and spaces are trimmed
//   - The result is cut to maxLength runes (no cut when maxLength <= 0)
//   - An empty result becomes "Unknown"
//
// Example:
//
//	SanitizeFileName("AC/DC: Live?", 200)  // Returns "ACDC Live"
//	SanitizeFileName("...", 200)           // Returns "Unknown"
func SanitizeFileName(name string, maxLength int) string {
	clean := invalidChars.ReplaceAllString(name, "")
	clean = strings.Trim(clean, ". ")

	if maxLength > 0 {
		if r := []rune(clean); len(r) > maxLength {
			clean = string(r[:maxLength])
		}
	}

	if clean == "" {
		return "Unknown"
	}
	return clean
}

// SanitizeASCII is SanitizeFileName preceded by transliteration to ASCII,
// for filesystems or players that mangle non-ASCII names.
//
//	SanitizeASCII("Müslüm Gürses", 200) // Returns "Muslum Gurses"
func SanitizeASCII(name string, maxLength int) string {
	return SanitizeFileName(unidecode.Unidecode(name), maxLength)
}

// CollectionDirName returns the sanitized directory name for a collection.
func CollectionDirName(album string) string {
	return SanitizeFileName(album, MaxCollectionNameLength)
}
