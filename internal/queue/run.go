package queue

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/handiism/mediaqueue/internal/audio"
	"github.com/handiism/mediaqueue/internal/config"
	"github.com/handiism/mediaqueue/internal/download"
	ioutils "github.com/handiism/mediaqueue/internal/io"
	"github.com/handiism/mediaqueue/internal/model"
)

// ErrItemTimeout is the outcome of an item that produced no result
// within the item timeout.
var ErrItemTimeout = errors.New("item timed out")

// errNotRun marks items that were removed before a worker got to them or
// picked up after a stop request.
var errNotRun = errors.New("item not run")

type outcome struct {
	item  model.QueueItem
	path  string
	state model.State
	err   error
}

// run drains ids through a pool of snap.MaxConcurrentDownloads workers.
func (m *Manager) run(ids []string, snap config.Snapshot, done chan struct{}) {
	summary := Summary{}
	defer func() {
		m.mu.Lock()
		m.running = false
		m.summary = summary
		m.mu.Unlock()
		close(done)

		slog.Info("run finished", "completed", summary.Completed, "skipped", summary.Skipped,
			"failed", summary.Failed, "timed_out", summary.TimedOut, "not_run", summary.NotRun)
		m.emit(Event{Kind: EventRunFinished, Message: summary.String(), Level: LevelSuccess, Summary: &summary})
	}()

	deps := m.deps.Download
	if deps.Locks == nil {
		deps.Locks = &ioutils.DirLocks{}
	}

	limit := snap.MaxConcurrentDownloads()
	results := make(chan outcome, len(ids))
	var outcomes []outcome

	var g errgroup.Group
	g.SetLimit(limit)
	inFlight := 0
	collect := func() {
		o := <-results
		inFlight--
		outcomes = append(outcomes, o)
	}

	dispatched := 0
	for _, id := range ids {
		if inFlight >= limit {
			collect()
		}
		if m.stop.Load() {
			slog.Info("run stopped", "dispatched", dispatched, "remaining", len(ids)-dispatched)
			m.message(LevelWarning, MsgStopped)
			break
		}
		inFlight++
		dispatched++
		g.Go(func() error {
			results <- m.process(m.ctx, id, snap, deps)
			return nil
		})
	}
	for inFlight > 0 {
		collect()
	}
	_ = g.Wait()

	summary.NotRun = len(ids) - dispatched
	for _, o := range outcomes {
		switch {
		case errors.Is(o.err, errNotRun):
			summary.NotRun++
		case errors.Is(o.err, ErrItemTimeout):
			summary.TimedOut++
		case o.err != nil:
			summary.Failed++
		case o.state.Phase == model.PhaseSkipped:
			summary.Skipped++
		default:
			summary.Completed++
		}
	}

	if snap.CreatePlaylist() && snap.DownloadMode() == config.ModeAudio {
		summary.Playlists = writePlaylists(outcomes)
	}
}

// process runs one item to its terminal state. Errors are recorded on
// the item and returned in the outcome, never propagated.
func (m *Manager) process(ctx context.Context, id string, snap config.Snapshot, deps download.Deps) outcome {
	item, ok := m.Item(id)
	if !ok || m.stop.Load() {
		return outcome{item: item, err: errNotRun}
	}

	if snap.SkipExisting() && item.Metadata.HasKnownIdentity() {
		if path, found := ioutils.FindExisting(snap.DownloadDir(), item.Metadata.Artist, item.Metadata.Title); found {
			slog.Info("skipping existing", "item", id, "path", path)
			m.setState(id, model.Skipped())
			return outcome{item: item, path: path, state: model.Skipped()}
		}
	}

	// A timed-out transfer is canceled and awaited before the worker
	// slot is released. Progress arriving after the timeout is dropped so
	// the item keeps the state it had when the worker gave up on it.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	var abandoned atomic.Bool
	update := func(state model.State) {
		if !abandoned.Load() {
			m.setState(id, state)
		}
	}

	var results <-chan download.Result
	switch item.Kind {
	case model.KindCatalog:
		ch := make(chan download.Result, 1)
		go func() {
			path, err := download.SearchFetch(ctx, item.Metadata, snap, deps, func(u download.Update) {
				update(searchState(u))
			})
			ch <- download.Result{Path: path, Err: err}
		}()
		results = ch
	default:
		dl := download.New(item.URL, item.Metadata, item.BatchMember, snap, deps)
		dl.OnProgress = func(u download.Update) {
			update(fetchState(u))
		}
		results = dl.Start(ctx)
	}

	timer := time.NewTimer(m.itemTimeout)
	defer timer.Stop()

	select {
	case res := <-results:
		if res.Err != nil {
			reason := download.Reason(res.Err)
			slog.Warn("item failed", "item", id, "title", item.Metadata.Title, "err", res.Err)
			state := model.Failed(reason)
			m.setState(id, state)
			return outcome{item: item, state: state, err: res.Err}
		}
		slog.Info("item completed", "item", id, "path", res.Path)
		m.setState(id, model.Completed())
		return outcome{item: item, path: res.Path, state: model.Completed()}
	case <-timer.C:
		abandoned.Store(true)
		slog.Warn("item timed out", "item", id, "title", item.Metadata.Title, "after", m.itemTimeout)
		cancel()
		<-results
		return outcome{item: item, err: ErrItemTimeout}
	}
}

// searchState maps search-and-fetch progress to item states.
func searchState(u download.Update) model.State {
	switch u.Stage {
	case download.StageStarting:
		return model.Found()
	case download.StageTagging:
		return model.Tagging()
	default:
		return model.Starting()
	}
}

// fetchState maps direct download progress to item states.
func fetchState(u download.Update) model.State {
	if u.Stage == download.StageTagging {
		return model.Tagging()
	}
	return model.Downloading(u.Percent)
}

// writePlaylists writes one playlist per batch directory that received
// completed files.
func writePlaylists(outcomes []outcome) []string {
	type batch struct {
		album   string
		entries []audio.PlaylistEntry
	}
	var dirs []string
	batches := make(map[string]*batch)
	for _, o := range outcomes {
		if o.err != nil || o.state.Phase != model.PhaseCompleted || !o.item.BatchMember || o.path == "" {
			continue
		}
		dir := filepath.Dir(o.path)
		b, ok := batches[dir]
		if !ok {
			b = &batch{album: o.item.Metadata.Album}
			batches[dir] = b
			dirs = append(dirs, dir)
		}
		b.entries = append(b.entries, audio.PlaylistEntry{
			Path:   o.path,
			Title:  o.item.Metadata.Title,
			Artist: o.item.Metadata.Artist,
		})
	}

	creator := audio.NewPlaylistCreator(audio.FormatM3U)
	var written []string
	for _, dir := range dirs {
		b := batches[dir]
		path, err := creator.Write(dir, b.album, b.entries)
		if err != nil {
			slog.Warn("write playlist", "dir", dir, "err", err)
			continue
		}
		slog.Info("playlist written", "path", path, "entries", len(b.entries))
		written = append(written, path)
	}
	return written
}
