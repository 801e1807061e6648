package queue

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/handiism/mediaqueue/internal/model"
	"github.com/handiism/mediaqueue/internal/provider"
)

// Title and album defaults for video records without them.
const (
	DefaultVideoTitle    = "YouTube Video"
	DefaultPlaylistEntry = "Video"
	DefaultPlaylistAlbum = "YouTube Playlist"
)

// Classify returns the item kind for url. URLs of neither provider are
// treated as video URLs.
func Classify(url string) model.SourceKind {
	if provider.IsCatalogURL(url) {
		return model.KindCatalog
	}
	return model.KindVideo
}

// Ingest resolves url in the background and appends the resulting items
// to the queue, selecting each of them.
//
// With replace the queue and selection are cleared first, in the same
// critical section as the append. label names the batch for single
// videos, e.g. the name of the URL list the URL came from.
//
// Resolution failures never surface as errors: the URL is queued as a
// single placeholder item instead.
func (m *Manager) Ingest(url string, replace bool, label string) {
	m.ingestions.Add(1)
	go func() {
		defer m.ingestions.Done()
		items := m.resolve(m.ctx, url, label)
		m.add(items, replace)
	}()
}

// IngestAll resolves urls one after another on a single goroutine, so
// their items are queued in the order of urls. replace applies to the
// first URL only.
func (m *Manager) IngestAll(urls []string, replace bool, label string) {
	m.ingestions.Add(1)
	go func() {
		defer m.ingestions.Done()
		for i, url := range urls {
			if m.ctx.Err() != nil {
				return
			}
			m.add(m.resolve(m.ctx, url, label), replace && i == 0)
		}
	}()
}

// WaitIngestions blocks until every pending Ingest has finished.
func (m *Manager) WaitIngestions() {
	m.ingestions.Wait()
}

func (m *Manager) add(items []*model.QueueItem, replace bool) {
	m.mu.Lock()
	if replace {
		m.items = nil
		clear(m.selected)
	}
	for _, item := range items {
		m.items = append(m.items, item)
		m.selected[item.ID] = true
	}
	m.mu.Unlock()

	m.emit(Event{
		Kind:    EventItemsAdded,
		Message: fmt.Sprintf("%d parça eklendi", len(items)),
		Level:   LevelInfo,
	})
}

func (m *Manager) resolve(ctx context.Context, url, label string) []*model.QueueItem {
	kind := Classify(url)

	var (
		items []*model.QueueItem
		err   error
	)
	switch {
	case kind == model.KindCatalog:
		items, err = m.resolveCatalog(ctx, url)
	case provider.IsVideoURL(url) && provider.IsPlaylistURL(url):
		items, err = m.resolvePlaylist(ctx, url)
		if err != nil || len(items) == 0 {
			slog.Warn("resolve playlist, trying as single video", "url", url, "err", err)
			items, err = m.resolveVideo(ctx, url, label), nil
		}
	default:
		items = m.resolveVideo(ctx, url, label)
	}
	if err != nil {
		slog.Warn("resolve url", "url", url, "err", err)
		m.message(LevelWarning, fmt.Sprintf("Çözümlenemedi: %s", url))
	}

	if len(items) == 0 {
		return []*model.QueueItem{fallbackItem(kind, url)}
	}
	slog.Debug("resolved url", "url", url, "items", len(items))
	return items
}

func (m *Manager) resolveCatalog(ctx context.Context, url string) ([]*model.QueueItem, error) {
	if m.deps.Catalog == nil {
		return nil, provider.ErrNoCredentials
	}
	col, err := m.deps.Catalog.Resolve(ctx, url)
	if err != nil {
		return nil, err
	}
	return catalogItems(col, url), nil
}

func catalogItems(col *provider.Collection, url string) []*model.QueueItem {
	album := model.CollectionDirName(col.Title)
	batch := len(col.Tracks) > 1

	items := make([]*model.QueueItem, 0, len(col.Tracks))
	for i, t := range col.Tracks {
		trackURL := t.URL
		if trackURL == "" {
			trackURL = url
		}
		trackNo := t.TrackNo
		if trackNo <= 0 {
			trackNo = i + 1
		}
		items = append(items, model.NewQueueItem(model.KindCatalog, trackURL, model.Metadata{
			Title:    model.SanitizeFileName(orDefault(t.Title, model.UnknownArtist), model.MaxCollectionNameLength),
			Artist:   model.SanitizeFileName(orDefault(t.Artist, model.UnknownArtist), model.MaxCollectionNameLength),
			Album:    album,
			CoverURL: t.CoverURL,
			Year:     t.Year,
			TrackNo:  trackNo,
		}, batch))
	}
	return items
}

func (m *Manager) resolvePlaylist(ctx context.Context, url string) ([]*model.QueueItem, error) {
	if m.deps.Video == nil {
		return nil, errors.New("no video resolver")
	}
	pl, err := m.deps.Video.ResolvePlaylist(ctx, url)
	if err != nil {
		return nil, err
	}
	return playlistItems(pl, url), nil
}

func playlistItems(pl *provider.Playlist, url string) []*model.QueueItem {
	album := model.CollectionDirName(orDefault(pl.Title, DefaultPlaylistAlbum))

	items := make([]*model.QueueItem, 0, len(pl.Videos))
	for _, v := range pl.Videos {
		items = append(items, model.NewQueueItem(model.KindVideo, orDefault(v.URL, url), model.Metadata{
			Title:    model.SanitizeFileName(orDefault(v.Title, DefaultPlaylistEntry), model.MaxFileNameLength),
			Artist:   model.SanitizeFileName(orDefault(v.Channel, orDefault(pl.Channel, model.VideoArtist)), model.MaxFileNameLength),
			Album:    album,
			CoverURL: thumbnail(v),
		}, true))
	}
	return items
}

// resolveVideo never fails: a lookup error yields a placeholder item.
func (m *Manager) resolveVideo(ctx context.Context, url, label string) []*model.QueueItem {
	album := model.SingleAlbum
	if label != "" {
		album = model.CollectionDirName(label)
	}
	batch := label != ""

	meta := model.Metadata{
		Title:  model.UnknownVideo,
		Artist: model.VideoArtist,
		Album:  album,
	}

	if m.deps.Video != nil {
		v, err := m.deps.Video.ResolveVideo(ctx, url)
		if err != nil {
			slog.Warn("resolve video", "url", url, "err", err)
		} else {
			meta.Title = model.SanitizeFileName(orDefault(v.Title, DefaultVideoTitle), model.MaxFileNameLength)
			meta.Artist = model.SanitizeFileName(orDefault(v.Channel, model.VideoArtist), model.MaxFileNameLength)
			meta.CoverURL = thumbnail(*v)
			if meta.CoverURL == "" {
				meta.CoverURL = provider.ThumbnailURL(provider.VideoID(url))
			}
		}
	}

	return []*model.QueueItem{model.NewQueueItem(model.KindVideo, url, meta, batch)}
}

// fallbackItem is queued when a URL resolved to nothing.
func fallbackItem(kind model.SourceKind, url string) *model.QueueItem {
	return model.NewQueueItem(kind, url, model.Metadata{
		Title:  model.UnknownTrack,
		Artist: model.UnknownArtist,
		Album:  model.SingleAlbum,
	}, false)
}

func thumbnail(v provider.Video) string {
	if v.Thumbnail != "" {
		return v.Thumbnail
	}
	if id := v.ID; id != "" {
		return provider.ThumbnailURL(id)
	}
	if id := provider.VideoID(v.URL); id != "" {
		return provider.ThumbnailURL(id)
	}
	return ""
}

// ParseURLList reads one URL per line. Blank lines, comments starting
// with '#' and lines that are not http(s) URLs are skipped.
func ParseURLList(r io.Reader) ([]string, error) {
	var urls []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !strings.HasPrefix(line, "http://") && !strings.HasPrefix(line, "https://") {
			continue
		}
		urls = append(urls, line)
	}
	return urls, scanner.Err()
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
