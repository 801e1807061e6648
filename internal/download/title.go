package download

import (
	"regexp"
	"strings"

	"github.com/handiism/mediaqueue/internal/model"
)

// noisePatterns are removed from video titles, in this order.
var noisePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\s*\(Official.*?\)`),
	regexp.MustCompile(`(?i)\s*\[Official.*?\]`),
	regexp.MustCompile(`(?i)\s*Official\s+(Video|Audio|Music\s+Video).*$`),
	regexp.MustCompile(`(?i)\s*\(Lyric.*?\)`),
	regexp.MustCompile(`(?i)\s*\[Lyric.*?\]`),
	regexp.MustCompile(`(?i)\s*Lyric\s+Video.*$`),
	regexp.MustCompile(`(?i)\s*\(HD\)`),
	regexp.MustCompile(`(?i)\s*\[HD\]`),
	regexp.MustCompile(`(?i)\s*\(4K\)`),
	regexp.MustCompile(`(?i)\s*\[4K\]`),
	regexp.MustCompile(`(?i)\s*\(.*?Audio\)`),
	regexp.MustCompile(`(?i)\s*\(.*?Video\)`),
}

// labelWords mark the first part of "Label - Song" titles uploaded by
// channels rather than artists.
var labelWords = []string{"official", "music", "plak", "records", "channel", "vevo", "topic"}

const titleSeparator = " - "

// CleanTitle turns a video title into a file name.
//
// Marketing suffixes such as "(Official Video)", "[HD]" or "(Lyric
// Video)" are removed. The rest is split on " - " and the first rule
// that matches wins:
//  1. "A - A - Song" (repeated artist, known artist given) keeps "A - Song"
//  2. "Artist - Song - Extra" starting with the known artist keeps "Artist - Song"
//  3. Three or more parts keep the last two
//  4. "Some Records - Song" keeps "Song"
//
// The result is sanitized for use as a file name.
//
// Example:
//
//	CleanTitle("Artist - Artist - Song (Official Video)", "Artist") // "Artist - Song"
//	CleanTitle("Various Channel - Song Title", "")                  // "Song Title"
func CleanTitle(title, artist string) string {
	for _, re := range noisePatterns {
		title = re.ReplaceAllString(title, "")
	}

	if strings.Contains(title, titleSeparator) {
		parts := strings.Split(title, titleSeparator)
		artist = strings.TrimSpace(artist)

		if artist != "" && len(parts) >= 2 {
			if len(parts) >= 3 && strings.EqualFold(strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])) {
				return sanitizeTitle(parts[0] + titleSeparator + parts[2])
			}
			if strings.EqualFold(strings.TrimSpace(parts[0]), artist) {
				return sanitizeTitle(strings.Join(parts[:2], titleSeparator))
			}
		}

		switch {
		case len(parts) >= 3:
			title = parts[len(parts)-2] + titleSeparator + parts[len(parts)-1]
		case len(parts) == 2 && isLabel(parts[0]):
			title = parts[1]
		}
	}

	return sanitizeTitle(title)
}

func isLabel(s string) bool {
	s = strings.ToLower(s)
	for _, w := range labelWords {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func sanitizeTitle(s string) string {
	return model.SanitizeFileName(strings.TrimSpace(s), model.MaxFileNameLength)
}
