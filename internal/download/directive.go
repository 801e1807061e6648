package download

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/shlex"

	"github.com/handiism/mediaqueue/internal/config"
	"github.com/handiism/mediaqueue/internal/model"
)

// Fixed transfer parameters.
const (
	Retries       = 2
	SocketTimeout = 30 * time.Second

	// TitleTemplate names files after the video title; the extension is
	// chosen by the fetch tool.
	TitleTemplate = "%(title)s.%(ext)s"
)

// Directive is a declarative description of one fetch: which streams to
// select, how to post-process them and where to write the result.
//
// A Directive carries no behavior. A Fetcher maps it onto the external
// fetch tool.
type Directive struct {
	// Format is the stream selection expression, e.g. "bestaudio/best".
	Format string

	// ExtractAudio converts the download to AudioFormat at AudioQuality
	// (a bitrate in kbit/s without unit).
	ExtractAudio bool
	AudioFormat  string
	AudioQuality string

	// MergeOutputFormat is the container used when video and audio
	// streams are merged. RecodeVideo, when set, converts the final file
	// to that container.
	MergeOutputFormat string
	RecodeVideo       string

	// FFmpegArgs are passed to every ffmpeg post-processing step.
	FFmpegArgs []string

	// Output is the output template including the destination directory.
	Output string

	NoPlaylist        bool
	Retries           int
	SocketTimeout     time.Duration
	CookiesFile       string
	RestrictFilenames bool
}

// Dir returns the destination directory of the directive.
func (d Directive) Dir() string {
	return filepath.Dir(d.Output)
}

// DestinationDir returns where an item is written: a sub-directory named
// after the album for batch members, the download root otherwise. Items
// whose album is one of the single-item placeholders stay in the root.
func DestinationDir(root string, meta model.Metadata, batch bool) string {
	album := model.CollectionDirName(meta.Album)
	if batch && album != model.SingleAlbum && album != model.VideoArtist {
		return filepath.Join(root, album)
	}
	return root
}

// ResolveDirective builds the directive for a direct fetch of one item.
//
// Audio mode extracts audio with the configured codec, bitrate policy,
// sample rate and channel count. Video modes select a stream by height
// cap, re-encode with the configured codec and, with audio included,
// merge in an AAC track.
//
// Returns an error only if extra_ffmpeg_args cannot be split.
//
// Example:
//
//	d, err := ResolveDirective(snap, item.Metadata, item.BatchMember)
//	// audio mode, m4a at 192:
//	// d.Format       == "bestaudio/best"
//	// d.AudioQuality == "192"
//	// d.FFmpegArgs   == [-acodec aac -b:a 192k -minrate 192k -maxrate 192k -bufsize 2M -ar 44100 -ac 2]
func ResolveDirective(snap config.Snapshot, meta model.Metadata, batch bool) (Directive, error) {
	d := baseDirective(snap)
	d.Output = filepath.Join(DestinationDir(snap.DownloadDir(), meta, batch), TitleTemplate)

	switch snap.DownloadMode() {
	case config.ModeAudio:
		setupAudio(&d, snap)
	case config.ModeVideo:
		setupVideo(&d, snap, false)
	default:
		setupVideo(&d, snap, true)
	}

	extra, err := shlex.Split(snap.ExtraFFmpegArgs())
	if err != nil {
		return Directive{}, fmt.Errorf("extra ffmpeg args: %w", err)
	}
	d.FFmpegArgs = append(d.FFmpegArgs, extra...)

	return d, nil
}

// SearchDirective builds the directive used for catalog items: plain
// audio extraction into "<root>/<album>/<artist> - <title>.<ext>".
func SearchDirective(snap config.Snapshot, meta model.Metadata) Directive {
	d := baseDirective(snap)
	d.Format = "bestaudio/best"
	d.ExtractAudio = true
	d.AudioFormat = SearchAudioFormat(snap)
	d.AudioQuality = strings.ReplaceAll(snap.AudioQuality(), "k", "")

	dir := filepath.Join(snap.DownloadDir(), model.CollectionDirName(meta.Album))
	d.Output = filepath.Join(dir, searchBaseName(meta)+".%(ext)s")
	return d
}

// SearchAudioFormat is the configured audio format with "aac" mapped to
// its usual "m4a" container.
func SearchAudioFormat(snap config.Snapshot) string {
	if f := snap.AudioFormat(); f != "aac" {
		return f
	}
	return "m4a"
}

func searchBaseName(meta model.Metadata) string {
	return model.CollectionDirName(meta.Artist) + " - " + model.CollectionDirName(meta.Title)
}

func baseDirective(snap config.Snapshot) Directive {
	return Directive{
		NoPlaylist:        true,
		Retries:           Retries,
		SocketTimeout:     SocketTimeout,
		CookiesFile:       snap.CookiesFile(),
		RestrictFilenames: snap.RestrictFilenames(),
	}
}

func setupAudio(d *Directive, snap config.Snapshot) {
	format := snap.AudioFormat()
	quality := snap.AudioQuality()
	if isDigits(quality) {
		quality += "k"
	}

	d.Format = "bestaudio/best"
	d.ExtractAudio = true
	d.AudioFormat = format
	d.AudioQuality = strings.ReplaceAll(quality, "k", "")

	switch format {
	case "mp3":
		d.FFmpegArgs = append(d.FFmpegArgs, "-acodec", orDefault(snap.MP3Codec(), "libmp3lame"))
	case "m4a", "aac":
		d.FFmpegArgs = append(d.FFmpegArgs, "-acodec", orDefault(snap.AACCodec(), "aac"))
	}

	// numeric qualities carry a unit by now, so this applies to every
	// bitrate the user can pick
	if !isDigits(quality) {
		switch snap.AudioBitrateMode() {
		case "cbr":
			d.FFmpegArgs = append(d.FFmpegArgs, "-b:a", quality, "-minrate", quality, "-maxrate", quality, "-bufsize", "2M")
		case "abr":
			d.FFmpegArgs = append(d.FFmpegArgs, "-b:a", quality)
		}
	}

	d.FFmpegArgs = append(d.FFmpegArgs,
		"-ar", orDefault(snap.AudioSampleRate(), "44100"),
		"-ac", orDefault(snap.AudioChannels(), "2"),
	)
}

func setupVideo(d *Directive, snap config.Snapshot, withAudio bool) {
	d.Format = videoFormat(snap.VideoQuality(), withAudio)

	codec := snap.VideoCodec()
	switch codec {
	case "h264":
		d.FFmpegArgs = append(d.FFmpegArgs, "-vcodec", "libx264")
	case "h265":
		d.FFmpegArgs = append(d.FFmpegArgs, "-vcodec", "libx265")
	case "copy":
		d.FFmpegArgs = append(d.FFmpegArgs, "-vcodec", "copy")
	}
	if crf := snap.VideoCRF(); (codec == "h264" || codec == "h265") && crf != "auto" && crf != "" {
		d.FFmpegArgs = append(d.FFmpegArgs, "-crf", crf, "-preset", orDefault(snap.VideoPreset(), "medium"))
	}
	if bitrate := snap.VideoBitrate(); bitrate != "auto" && bitrate != "" {
		d.FFmpegArgs = append(d.FFmpegArgs, "-b:v", bitrate)
	}
	if fps := snap.VideoFPS(); fps != "source" && fps != "" {
		d.FFmpegArgs = append(d.FFmpegArgs, "-r", fps)
	}

	container := snap.VideoFormat()
	if withAudio {
		d.FFmpegArgs = append(d.FFmpegArgs, "-acodec", "aac", "-b:a", "192k")
		d.RecodeVideo = container
	}
	d.MergeOutputFormat = container
}

// videoFormat returns the stream selection expression for a quality
// such as "best", "worst" or "720p".
func videoFormat(quality string, withAudio bool) string {
	switch quality {
	case "best":
		if withAudio {
			return "bestvideo+bestaudio/best"
		}
		return "bestvideo"
	case "worst":
		if withAudio {
			return "worstvideo+worstaudio/worst"
		}
		return "worstvideo"
	}

	height := strings.TrimSuffix(quality, "p")
	if withAudio {
		return fmt.Sprintf("bestvideo[height<=%s]+bestaudio/best[height<=%s]", height, height)
	}
	return fmt.Sprintf("bestvideo[height<=%s]", height)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
