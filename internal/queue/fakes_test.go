package queue

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/handiism/mediaqueue/internal/config"
	"github.com/handiism/mediaqueue/internal/download"
	"github.com/handiism/mediaqueue/internal/model"
	"github.com/handiism/mediaqueue/internal/provider"
)

type fakeCatalog struct {
	col *provider.Collection
	err error
}

func (f *fakeCatalog) Resolve(_ context.Context, _ string) (*provider.Collection, error) {
	return f.col, f.err
}

type fakeVideo struct {
	video       *provider.Video
	videoErr    error
	playlist    *provider.Playlist
	playlistErr error
}

func (f *fakeVideo) ResolveVideo(_ context.Context, _ string) (*provider.Video, error) {
	if f.videoErr != nil {
		return nil, f.videoErr
	}
	return f.video, nil
}

func (f *fakeVideo) ResolvePlaylist(_ context.Context, _ string) (*provider.Playlist, error) {
	if f.playlistErr != nil {
		return nil, f.playlistErr
	}
	return f.playlist, nil
}

func (f *fakeVideo) Search(_ context.Context, query string) (*provider.Video, error) {
	return nil, provider.ErrNotFound
}

// gateFetcher writes a file for every fetch. When gate is set, each fetch
// blocks until gate is closed.
type gateFetcher struct {
	gate    chan struct{}
	started chan string
	fail    map[string]error

	mu        sync.Mutex
	active    int
	maxActive int
	calls     int
}

func (f *gateFetcher) Fetch(ctx context.Context, url string, d download.Directive, progress func(download.FetchProgress)) ([]string, error) {
	f.mu.Lock()
	f.active++
	f.calls++
	f.maxActive = max(f.maxActive, f.active)
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.active--
		f.mu.Unlock()
	}()

	if f.started != nil {
		f.started <- url
	}
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if progress != nil {
		progress(download.FetchProgress{Percent: 50})
	}
	if err := f.fail[url]; err != nil {
		return nil, err
	}

	ext := d.AudioFormat
	if !d.ExtractAudio {
		ext = d.MergeOutputFormat
	}
	path := strings.Replace(d.Output, "%(title)s", nameFor(url), 1)
	path = strings.Replace(path, "%(ext)s", ext, 1)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, []byte("media"), 0644); err != nil {
		return nil, err
	}
	return []string{path}, nil
}

func (f *gateFetcher) stats() (calls, maxActive int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls, f.maxActive
}

type fakeSearcher struct {
	url string
	err error
}

func (f *fakeSearcher) SearchURL(_ context.Context, _ string) (string, error) {
	return f.url, f.err
}

func nameFor(url string) string {
	return url[strings.LastIndexByte(url, '/')+1:]
}

// eventLog records events for assertions.
type eventLog struct {
	mu     sync.Mutex
	events []Event
}

func (l *eventLog) record(ev Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
}

func (l *eventLog) messages(level Level) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []string
	for _, ev := range l.events {
		if ev.Kind == EventMessage && ev.Level == level {
			out = append(out, ev.Message)
		}
	}
	return out
}

func (l *eventLog) states(id string) []model.State {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []model.State
	for _, ev := range l.events {
		if ev.Kind == EventItemChanged && ev.ItemID == id {
			out = append(out, ev.State)
		}
	}
	return out
}

func testSettings(t *testing.T) *config.Settings {
	t.Helper()
	s := config.DefaultSettings()
	s.DownloadDir = t.TempDir()
	s.SkipExisting = false
	s.MaxConcurrentDownloads = 2
	return s
}

func newTestManager(t *testing.T, settings *config.Settings, deps Deps) (*Manager, *eventLog) {
	t.Helper()
	log := &eventLog{}
	m := NewManager(settings, deps, log.record)
	t.Cleanup(m.Close)
	return m, log
}

func videoItems(n int) []*model.QueueItem {
	items := make([]*model.QueueItem, n)
	for i := range items {
		url := "https://youtu.be/v" + string(rune('a'+i))
		items[i] = model.NewQueueItem(model.KindVideo, url, model.Metadata{
			Title:  "Video " + string(rune('A'+i)),
			Artist: "Chan",
			Album:  model.SingleAlbum,
		}, false)
	}
	return items
}
