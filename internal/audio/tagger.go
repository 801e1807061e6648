package audio

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/bogem/id3v2"
	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
	"github.com/go-flac/go-flac"
	"github.com/zhaarey/go-mp4tag"

	"github.com/handiism/mediaqueue/internal/model"
)

const (
	// MinAudioFileSize is the smallest file the tagger accepts. Anything
	// shorter is an aborted download or an error page saved by mistake.
	MinAudioFileSize = 50_000

	// MaxTagLength caps title, artist and album values, in runes.
	MaxTagLength = 128
)

var (
	ErrFileTooSmall      = errors.New("file too small to be audio")
	ErrEmptyMetadata     = errors.New("no metadata to write")
	ErrUnsupportedFormat = errors.New("unsupported audio format")
)

var fourDigitYear = regexp.MustCompile(`^\d{4}$`)

// CoverSource resolves a cover URL to image bytes, nil when unavailable.
// *coverart.Resolver satisfies it.
type CoverSource interface {
	GetOrFetch(ctx context.Context, url string) []byte
}

// Tagger writes title, artist, album, track number, year and cover art
// into MP3, M4A/MP4 and FLAC files.
//
// Existing values of the fields it manages are replaced; other tags in
// the file are kept. Comments and lyrics are removed from MP3 and M4A
// files because video descriptions often end up there.
//
// Example:
//
//	tagger := NewTagger(resolver)
//	err := tagger.Tag(ctx, "/music/Song.mp3", model.Metadata{
//	    Title:  "Song",
//	    Artist: "Artist",
//	    Year:   "2019",
//	})
//	if errors.Is(err, ErrFileTooSmall) {
//	    // the download is broken
//	}
type Tagger struct {
	covers CoverSource
}

// NewTagger creates a Tagger. covers may be nil to never embed artwork.
func NewTagger(covers CoverSource) *Tagger {
	return &Tagger{covers: covers}
}

// tagValues is Metadata normalized for writing.
type tagValues struct {
	title, artist, album string
	year                 string // empty unless exactly four digits
	track                int    // 0 when unknown
	cover                []byte
	coverMime            string
}

// Tag writes meta into the file at path.
//
// The writer is chosen by extension: .mp3 uses ID3v2.3, .m4a and .mp4
// use iTunes atoms, .flac uses Vorbis comments plus a picture block.
//
// Returns an error if:
//   - The file is missing or smaller than MinAudioFileSize (ErrFileTooSmall)
//   - meta carries nothing to write (ErrEmptyMetadata)
//   - The extension is not supported (ErrUnsupportedFormat)
//   - The format library fails to read or save the file
//
// Cover art is best effort: an unavailable cover never fails the call.
func (t *Tagger) Tag(ctx context.Context, path string, meta model.Metadata) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.Size() < MinAudioFileSize {
		return fmt.Errorf("%w: %s is %d bytes", ErrFileTooSmall, filepath.Base(path), info.Size())
	}
	if meta.IsEmpty() {
		return ErrEmptyMetadata
	}

	var write func(string, tagValues) error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		write = writeID3
	case ".m4a", ".mp4":
		write = writeMP4
	case ".flac":
		write = writeFLAC
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}

	values := tagValues{
		title:  truncate(meta.Title, MaxTagLength),
		artist: truncate(meta.Artist, MaxTagLength),
		album:  truncate(meta.Album, MaxTagLength),
		track:  max(meta.TrackNo, 0),
	}
	if fourDigitYear.MatchString(meta.Year) {
		values.year = meta.Year
	}
	if t.covers != nil && meta.CoverURL != "" {
		values.cover = t.covers.GetOrFetch(ctx, meta.CoverURL)
	}
	if len(values.cover) > 0 {
		// small covers skip resizing and keep their source format
		values.coverMime = http.DetectContentType(values.cover)
	}

	return write(path, values)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func writeID3(path string, v tagValues) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("open id3: %w", err)
	}
	defer tag.Close()

	tag.SetVersion(3)
	tag.SetDefaultEncoding(id3v2.EncodingUTF16)
	for _, id := range []string{"TIT2", "TPE1", "TALB", "TRCK", "TYER", "TDRC", "APIC", "COMM", "USLT"} {
		tag.DeleteFrames(id)
	}

	if v.title != "" {
		tag.SetTitle(v.title)
	}
	if v.artist != "" {
		tag.SetArtist(v.artist)
	}
	if v.album != "" {
		tag.SetAlbum(v.album)
	}
	if v.track > 0 {
		tag.AddTextFrame("TRCK", tag.DefaultEncoding(), strconv.Itoa(v.track))
	}
	if v.year != "" {
		tag.SetYear(v.year)
	}
	if len(v.cover) > 0 {
		tag.AddAttachedPicture(id3v2.PictureFrame{
			Encoding:    tag.DefaultEncoding(),
			MimeType:    v.coverMime,
			PictureType: id3v2.PTFrontCover,
			Description: "Cover",
			Picture:     v.cover,
		})
	}

	if err := tag.Save(); err != nil {
		return fmt.Errorf("save id3: %w", err)
	}
	return nil
}

func writeMP4(path string, v tagValues) error {
	tags := &mp4tag.MP4Tags{
		Title:  v.title,
		Artist: v.artist,
		Album:  v.album,
		Date:   v.year,
	}
	if v.track > 0 && v.track <= 1<<15-1 {
		tags.TrackNumber = int16(v.track)
	}
	if len(v.cover) > 0 {
		tags.Pictures = []*mp4tag.MP4Picture{{Data: v.cover}}
	}

	mp4, err := mp4tag.Open(path)
	if err != nil {
		return fmt.Errorf("open mp4: %w", err)
	}
	defer mp4.Close()

	if err := mp4.Write(tags, mp4Deletes(v)); err != nil {
		return fmt.Errorf("save mp4: %w", err)
	}
	return nil
}

// mp4Deletes lists the atoms to clear because v carries no value for
// them. Comments and descriptions always go, as for MP3.
func mp4Deletes(v tagValues) []string {
	del := []string{"comment", "description", "lyrics"}
	for name, empty := range map[string]bool{
		"title":        v.title == "",
		"artist":       v.artist == "",
		"album":        v.album == "",
		"date":         v.year == "",
		"track_number": v.track <= 0 || v.track > 1<<15-1,
		"allpictures":  len(v.cover) == 0,
	} {
		if empty {
			del = append(del, name)
		}
	}
	slices.Sort(del)
	return del
}

func writeFLAC(path string, v tagValues) error {
	f, err := flac.ParseFile(path)
	if err != nil {
		return fmt.Errorf("parse flac: %w", err)
	}

	// existing comments and pictures are replaced
	kept := f.Meta[:0]
	for _, block := range f.Meta {
		if block.Type != flac.VorbisComment && block.Type != flac.Picture {
			kept = append(kept, block)
		}
	}
	f.Meta = kept

	comment := flacvorbis.New()
	addField(comment, flacvorbis.FIELD_TITLE, v.title)
	addField(comment, flacvorbis.FIELD_ARTIST, v.artist)
	addField(comment, flacvorbis.FIELD_ALBUM, v.album)
	addField(comment, flacvorbis.FIELD_DATE, v.year)
	if v.track > 0 {
		addField(comment, flacvorbis.FIELD_TRACKNUMBER, strconv.Itoa(v.track))
	}
	commentBlock := comment.Marshal()
	f.Meta = append(f.Meta, &commentBlock)

	if len(v.cover) > 0 {
		picture, err := flacpicture.NewFromImageData(flacpicture.PictureTypeFrontCover, "Front Cover", v.cover, v.coverMime)
		if err == nil {
			pictureBlock := picture.Marshal()
			f.Meta = append(f.Meta, &pictureBlock)
		}
	}

	if err := f.Save(path); err != nil {
		return fmt.Errorf("save flac: %w", err)
	}
	return nil
}

func addField(comment *flacvorbis.MetaDataBlockVorbisComment, field, value string) {
	if value != "" {
		comment.Add(field, value)
	}
}
