package youtube

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lrstanley/go-ytdlp"

	"github.com/handiism/mediaqueue/internal/download"
)

// ProgressInterval is how often yt-dlp progress is reported.
const ProgressInterval = 500 * time.Millisecond

// Fetcher implements download.Fetcher with the yt-dlp binary.
type Fetcher struct{}

// NewFetcher creates a Fetcher.
func NewFetcher() *Fetcher {
	return &Fetcher{}
}

// Install makes sure a yt-dlp binary is available, downloading it into
// the user cache when none is found.
func Install(ctx context.Context) error {
	_, err := ytdlp.Install(ctx, nil)
	return err
}

// Command translates d into a yt-dlp command.
func Command(d download.Directive) *ytdlp.Command {
	cmd := ytdlp.New().
		Format(d.Format).
		Output(d.Output).
		EmbedMetadata().
		NoWarnings()

	if d.NoPlaylist {
		cmd.NoPlaylist()
	}
	if d.Retries > 0 {
		cmd.Retries(strconv.Itoa(d.Retries))
	}
	if d.SocketTimeout > 0 {
		cmd.SocketTimeout(d.SocketTimeout.Seconds())
	}
	if d.ExtractAudio {
		cmd.ExtractAudio().AudioFormat(d.AudioFormat)
		if d.AudioQuality != "" {
			cmd.AudioQuality(d.AudioQuality)
		}
	}
	if d.MergeOutputFormat != "" {
		cmd.MergeOutputFormat(d.MergeOutputFormat)
	}
	if d.RecodeVideo != "" {
		cmd.RecodeVideo(d.RecodeVideo)
	}
	if len(d.FFmpegArgs) > 0 {
		cmd.PostProcessorArgs("ffmpeg:" + joinArgs(d.FFmpegArgs))
	}
	if d.CookiesFile != "" {
		cmd.Cookies(d.CookiesFile)
	}
	if d.RestrictFilenames {
		cmd.RestrictFilenames()
	}
	return cmd
}

// Fetch downloads url as described by d. The final file paths are
// collected with yt-dlp's after-move print hook.
func (f *Fetcher) Fetch(ctx context.Context, url string, d download.Directive, progress func(download.FetchProgress)) ([]string, error) {
	hook, err := os.CreateTemp("", "mediaqueue-paths-*.txt")
	if err != nil {
		return nil, err
	}
	hookPath := hook.Name()
	hook.Close()
	defer os.Remove(hookPath)

	cmd := Command(d).PrintToFile("after_move:filepath", hookPath)
	if progress != nil {
		cmd.ProgressFunc(ProgressInterval, func(update ytdlp.ProgressUpdate) {
			progress(toFetchProgress(update))
		})
	}

	res, err := cmd.Run(ctx, url)
	if err != nil {
		if res != nil && res.Stderr != "" {
			return nil, fmt.Errorf("%w: %s", err, lastLine(res.Stderr))
		}
		return nil, err
	}

	paths, err := readLines(hookPath)
	if err != nil {
		slog.Debug("read path hook", "err", err)
	}
	return paths, nil
}

func toFetchProgress(update ytdlp.ProgressUpdate) download.FetchProgress {
	if string(update.Status) == "post_processing" {
		return download.FetchProgress{Percent: 100, PostProcessing: true}
	}
	if update.TotalBytes <= 0 {
		return download.FetchProgress{Percent: -1}
	}
	return download.FetchProgress{
		Percent: float64(update.DownloadedBytes) / float64(update.TotalBytes) * 100,
	}
}

func readLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}

// joinArgs quotes arguments for yt-dlp's shell-style argument parser.
func joinArgs(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		if a == "" || strings.ContainsAny(a, " \t\"'\\") {
			a = `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(a) + `"`
		}
		quoted[i] = a
	}
	return strings.Join(quoted, " ")
}

var _ download.Fetcher = (*Fetcher)(nil)
