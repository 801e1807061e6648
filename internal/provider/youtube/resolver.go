// Package youtube talks to the video platform: metadata lookups and
// search through the yt-dlp binary (via go-ytdlp), playlist listing
// through the ytget client, and downloads driven by a download.Directive.
package youtube

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/lrstanley/go-ytdlp"
	ytget "github.com/ytget/ytdlp/v2"

	"github.com/handiism/mediaqueue/internal/provider"
)

// Defaults for metadata lookups.
const (
	DefaultLookupTimeout = 60 * time.Second
	DefaultPlaylistTitle = "YouTube Playlist"
)

// videoInfo is the subset of yt-dlp's info JSON the resolver reads.
type videoInfo struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	Channel    string      `json:"channel"`
	Uploader   string      `json:"uploader"`
	Thumbnail  string      `json:"thumbnail"`
	WebpageURL string      `json:"webpage_url"`
	URL        string      `json:"url"`
	Entries    []videoInfo `json:"entries"`
}

func (v videoInfo) channel() string {
	if v.Channel != "" {
		return v.Channel
	}
	return v.Uploader
}

func (v videoInfo) toVideo(fallbackURL string) provider.Video {
	video := provider.Video{
		ID:        v.ID,
		URL:       v.WebpageURL,
		Title:     v.Title,
		Channel:   v.channel(),
		Thumbnail: v.Thumbnail,
	}
	if video.URL == "" && strings.HasPrefix(v.URL, "http") {
		video.URL = v.URL
	}
	if video.URL == "" && v.ID != "" {
		video.URL = fmt.Sprintf(provider.VideoURLTemplate, v.ID)
	}
	if video.URL == "" {
		video.URL = fallbackURL
	}
	if video.ID == "" {
		video.ID = provider.VideoID(video.URL)
	}
	if video.Thumbnail == "" {
		video.Thumbnail = provider.ThumbnailURL(video.ID)
	}
	return video
}

// Resolver implements provider.VideoResolver.
type Resolver struct {
	timeout     time.Duration
	cookiesFile string
}

// NewResolver creates a Resolver. cookiesFile may be empty.
func NewResolver(cookiesFile string) *Resolver {
	return &Resolver{timeout: DefaultLookupTimeout, cookiesFile: cookiesFile}
}

// SetTimeout sets the timeout for lookups.
func (r *Resolver) SetTimeout(timeout time.Duration) {
	r.timeout = timeout
}

func (r *Resolver) command() *ytdlp.Command {
	cmd := ytdlp.New().
		SkipDownload().
		NoWarnings()
	if r.cookiesFile != "" {
		cmd.Cookies(r.cookiesFile)
	}
	return cmd
}

// ResolveVideo reads title, channel and thumbnail of a single video.
func (r *Resolver) ResolveVideo(ctx context.Context, url string) (*provider.Video, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	infos, err := r.dump(ctx, r.command().NoPlaylist().DumpJSON(), url)
	if err != nil {
		return nil, err
	}
	if len(infos) == 0 {
		return nil, provider.ErrNotFound
	}
	video := infos[0].toVideo(url)
	return &video, nil
}

// ResolvePlaylist lists a playlist without downloading anything.
//
// The flat listing from yt-dlp is preferred since it carries the playlist
// title. When the binary fails, the playlist items are fetched with the
// ytget client instead and the title falls back to DefaultPlaylistTitle.
func (r *Resolver) ResolvePlaylist(ctx context.Context, url string) (*provider.Playlist, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	infos, err := r.dump(ctx, r.command().FlatPlaylist().DumpSingleJSON(), url)
	if err == nil && len(infos) > 0 && len(infos[0].Entries) > 0 {
		info := infos[0]
		pl := &provider.Playlist{Title: info.Title, Channel: info.channel()}
		for _, entry := range info.Entries {
			v := entry.toVideo("")
			if v.Channel == "" {
				v.Channel = pl.Channel
			}
			pl.Videos = append(pl.Videos, v)
		}
		if pl.Title == "" {
			pl.Title = DefaultPlaylistTitle
		}
		return pl, nil
	}
	if err != nil {
		slog.Debug("flat playlist listing failed, using ytget", "url", url, "err", err)
	}

	return r.playlistItems(ctx, url)
}

func (r *Resolver) playlistItems(ctx context.Context, url string) (*provider.Playlist, error) {
	id := provider.PlaylistID(url)
	if id == "" {
		return nil, fmt.Errorf("could not extract playlist ID from URL: %s", url)
	}

	items, err := ytget.New().GetPlaylistItemsAll(ctx, id, 0)
	if err != nil {
		return nil, fmt.Errorf("get playlist items: %w", err)
	}

	pl := &provider.Playlist{Title: DefaultPlaylistTitle}
	for _, it := range items {
		pl.Videos = append(pl.Videos, provider.Video{
			ID:        it.VideoID,
			URL:       fmt.Sprintf(provider.VideoURLTemplate, it.VideoID),
			Title:     it.Title,
			Thumbnail: provider.ThumbnailURL(it.VideoID),
		})
	}
	return pl, nil
}

// Search returns the first search hit for query.
func (r *Resolver) Search(ctx context.Context, query string) (*provider.Video, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	infos, err := r.dump(ctx, r.command().DumpJSON(), "ytsearch1:"+query)
	if err != nil {
		return nil, err
	}
	if len(infos) == 0 {
		return nil, provider.ErrNotFound
	}
	video := infos[0].toVideo("")
	if video.URL == "" {
		return nil, provider.ErrNotFound
	}
	return &video, nil
}

// SearchURL returns the watch URL of the first hit for query.
func (r *Resolver) SearchURL(ctx context.Context, query string) (string, error) {
	video, err := r.Search(ctx, query)
	if err != nil {
		return "", err
	}
	return video.URL, nil
}

// dump runs cmd and parses one info JSON object per stdout line.
func (r *Resolver) dump(ctx context.Context, cmd *ytdlp.Command, target string) ([]videoInfo, error) {
	res, err := cmd.Run(ctx, target)
	if err != nil {
		if res != nil && res.Stderr != "" {
			return nil, fmt.Errorf("yt-dlp: %w: %s", err, lastLine(res.Stderr))
		}
		return nil, fmt.Errorf("yt-dlp: %w", err)
	}
	return parseInfoLines(res.Stdout)
}

func parseInfoLines(stdout string) ([]videoInfo, error) {
	var infos []videoInfo
	scanner := bufio.NewScanner(strings.NewReader(stdout))
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "{") {
			continue
		}
		var info videoInfo
		if err := json.Unmarshal([]byte(line), &info); err != nil {
			return nil, fmt.Errorf("parse info json: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, scanner.Err()
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[i+1:])
	}
	return s
}

var _ provider.VideoResolver = (*Resolver)(nil)

// IsNotFound reports whether err means the lookup had no result.
func IsNotFound(err error) bool {
	return errors.Is(err, provider.ErrNotFound)
}
