package queue

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handiism/mediaqueue/internal/download"
	"github.com/handiism/mediaqueue/internal/model"
)

func TestStartWithEmptySelectionIsNoop(t *testing.T) {
	m, log := newTestManager(t, testSettings(t), Deps{})

	m.Start()
	assert.False(t, m.IsRunning())
	assert.Equal(t, []string{MsgEmptySelection}, log.messages(LevelWarning))

	m.add(videoItems(2), false)
	for _, id := range m.Selected() {
		m.SetSelected(id, false)
	}
	m.Start()
	assert.False(t, m.IsRunning())
	assert.Len(t, log.messages(LevelWarning), 2)
}

func TestStartWhileRunningWarns(t *testing.T) {
	fetcher := &gateFetcher{gate: make(chan struct{}), started: make(chan string, 4)}
	m, log := newTestManager(t, testSettings(t), Deps{Download: download.Deps{Fetcher: fetcher}})
	m.add(videoItems(1), false)

	m.Start()
	<-fetcher.started
	assert.True(t, m.IsRunning())

	m.Start()
	assert.Equal(t, []string{MsgAlreadyRunning}, log.messages(LevelWarning))

	close(fetcher.gate)
	m.Wait()
	assert.False(t, m.IsRunning())
}

func TestRunRespectsConcurrencyLimit(t *testing.T) {
	settings := testSettings(t)
	settings.MaxConcurrentDownloads = 2

	fetcher := &gateFetcher{gate: make(chan struct{}), started: make(chan string, 6)}
	m, _ := newTestManager(t, settings, Deps{Download: download.Deps{Fetcher: fetcher}})
	m.add(videoItems(6), false)

	m.Start()
	<-fetcher.started
	<-fetcher.started
	select {
	case url := <-fetcher.started:
		t.Fatalf("third fetch %s started while two were in flight", url)
	case <-time.After(50 * time.Millisecond):
	}
	close(fetcher.gate)
	m.Wait()

	calls, maxActive := fetcher.stats()
	assert.Equal(t, 6, calls)
	assert.Equal(t, 2, maxActive)

	summary := m.LastSummary()
	assert.Equal(t, 6, summary.Completed)
	assert.Equal(t, 6, summary.Total())
	for _, item := range m.Snapshot() {
		assert.Equal(t, model.Completed(), item.State, item.Metadata.Title)
	}
}

func TestRunLimitBelowOneRunsSequentially(t *testing.T) {
	settings := testSettings(t)
	settings.MaxConcurrentDownloads = 0

	fetcher := &gateFetcher{}
	m, _ := newTestManager(t, settings, Deps{Download: download.Deps{Fetcher: fetcher}})
	m.add(videoItems(3), false)

	m.Start()
	m.Wait()

	_, maxActive := fetcher.stats()
	assert.Equal(t, 1, maxActive)
	assert.Equal(t, 3, m.LastSummary().Completed)
}

func TestStopDrainsInFlightAndDispatchesNothing(t *testing.T) {
	settings := testSettings(t)
	settings.MaxConcurrentDownloads = 1

	fetcher := &gateFetcher{gate: make(chan struct{}), started: make(chan string, 3)}
	m, log := newTestManager(t, settings, Deps{Download: download.Deps{Fetcher: fetcher}})
	items := videoItems(3)
	m.add(items, false)

	m.Start()
	<-fetcher.started
	m.Stop()
	close(fetcher.gate)
	m.Wait()

	calls, _ := fetcher.stats()
	assert.Equal(t, 1, calls)

	summary := m.LastSummary()
	assert.Equal(t, 1, summary.Completed)
	assert.Equal(t, 2, summary.NotRun)
	assert.NotEmpty(t, log.messages(LevelWarning))

	first, _ := m.Item(items[0].ID)
	assert.Equal(t, model.Completed(), first.State)
	for _, item := range items[1:] {
		got, _ := m.Item(item.ID)
		assert.Equal(t, model.Pending(), got.State)
	}
}

func TestSkipExisting(t *testing.T) {
	settings := testSettings(t)
	settings.SkipExisting = true
	require.NoError(t, os.MkdirAll(filepath.Join(settings.DownloadDir, "Album"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(settings.DownloadDir, "Album", "Chan - Video A.mp3"), []byte("x"), 0644))

	fetcher := &gateFetcher{}
	m, _ := newTestManager(t, settings, Deps{Download: download.Deps{Fetcher: fetcher}})
	items := videoItems(2)
	m.add(items, false)

	m.Start()
	m.Wait()

	skipped, _ := m.Item(items[0].ID)
	assert.Equal(t, model.Skipped(), skipped.State)
	assert.Equal(t, "Atlandı (Mevcut)", skipped.Status())

	done, _ := m.Item(items[1].ID)
	assert.Equal(t, model.Completed(), done.State)

	calls, _ := fetcher.stats()
	assert.Equal(t, 1, calls)

	summary := m.LastSummary()
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 1, summary.Completed)
}

func TestSkipExistingIgnoresPlaceholders(t *testing.T) {
	settings := testSettings(t)
	settings.SkipExisting = true
	require.NoError(t, os.WriteFile(filepath.Join(settings.DownloadDir, "Bilinmeyen - Bilinmeyen Parça.mp3"), []byte("x"), 0644))

	fetcher := &gateFetcher{}
	m, _ := newTestManager(t, settings, Deps{Download: download.Deps{Fetcher: fetcher}})
	item := fallbackItem(model.KindVideo, "https://youtu.be/zz")
	m.add([]*model.QueueItem{item}, false)

	m.Start()
	m.Wait()

	got, _ := m.Item(item.ID)
	assert.Equal(t, model.Completed(), got.State)
}

func TestFailureIsIsolated(t *testing.T) {
	items := videoItems(3)
	fetcher := &gateFetcher{fail: map[string]error{
		items[1].URL: errors.New("ERROR: [youtube] vb: Private video. Sign in"),
	}}
	m, log := newTestManager(t, testSettings(t), Deps{Download: download.Deps{Fetcher: fetcher}})
	m.add(items, false)

	m.Start()
	m.Wait()

	failed, _ := m.Item(items[1].ID)
	assert.Equal(t, model.Failed(download.MsgPrivate), failed.State)
	assert.Equal(t, "Hata: "+download.MsgPrivate, failed.Status())

	for _, i := range []int{0, 2} {
		got, _ := m.Item(items[i].ID)
		assert.Equal(t, model.Completed(), got.State)
	}

	summary := m.LastSummary()
	assert.Equal(t, 2, summary.Completed)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, "Tamamlandı 2 / Hata 1", summary.String())

	states := log.states(items[0].ID)
	require.NotEmpty(t, states)
	assert.Equal(t, model.Downloading(0), states[0])
	assert.Contains(t, states, model.Downloading(50))
	assert.Equal(t, model.Completed(), states[len(states)-1])
}

func TestItemTimeoutKeepsLastState(t *testing.T) {
	fetcher := &gateFetcher{gate: make(chan struct{})}
	m, _ := newTestManager(t, testSettings(t), Deps{Download: download.Deps{Fetcher: fetcher}})
	m.itemTimeout = 50 * time.Millisecond
	items := videoItems(1)
	m.add(items, false)

	m.Start()
	m.Wait()

	summary := m.LastSummary()
	assert.Equal(t, 1, summary.TimedOut)
	assert.Equal(t, 0, summary.Completed)

	close(fetcher.gate)
	time.Sleep(20 * time.Millisecond)

	got, _ := m.Item(items[0].ID)
	assert.Equal(t, model.Downloading(0), got.State)
}

func TestItemTimeoutHoldsWorkerUntilTransferEnds(t *testing.T) {
	settings := testSettings(t)
	settings.MaxConcurrentDownloads = 1
	fetcher := &gateFetcher{gate: make(chan struct{})}
	defer close(fetcher.gate)

	m, _ := newTestManager(t, settings, Deps{Download: download.Deps{Fetcher: fetcher}})
	m.itemTimeout = 50 * time.Millisecond
	m.add(videoItems(2), false)

	m.Start()
	m.Wait()

	assert.Equal(t, 2, m.LastSummary().TimedOut)
	calls, maxActive := fetcher.stats()
	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, maxActive)
}

func TestRunWithCanceledContextDispatchesNothing(t *testing.T) {
	fetcher := &gateFetcher{}
	m, log := newTestManager(t, testSettings(t), Deps{Download: download.Deps{Fetcher: fetcher}})
	m.add(videoItems(3), false)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	summary := m.Run(ctx)

	assert.Equal(t, 3, summary.NotRun)
	assert.False(t, m.IsRunning())
	assert.Equal(t, []string{MsgStopped}, log.messages(LevelWarning))
	calls, _ := fetcher.stats()
	assert.Zero(t, calls)
}

func TestRunStopsWhenContextCanceled(t *testing.T) {
	settings := testSettings(t)
	settings.MaxConcurrentDownloads = 1
	fetcher := &gateFetcher{gate: make(chan struct{}), started: make(chan string, 3)}
	m, _ := newTestManager(t, settings, Deps{Download: download.Deps{Fetcher: fetcher}})
	m.add(videoItems(3), false)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-fetcher.started
		cancel()
		for !m.stop.Load() {
			time.Sleep(time.Millisecond)
		}
		close(fetcher.gate)
	}()
	summary := m.Run(ctx)

	assert.Equal(t, 1, summary.Completed)
	assert.Equal(t, 2, summary.NotRun)
	calls, _ := fetcher.stats()
	assert.Equal(t, 1, calls)
}

func TestCatalogItemsUseSearch(t *testing.T) {
	settings := testSettings(t)
	fetcher := &gateFetcher{}
	deps := Deps{Download: download.Deps{
		Fetcher:  fetcher,
		Searcher: &fakeSearcher{url: "https://www.youtube.com/watch?v=hit"},
	}}
	m, log := newTestManager(t, settings, deps)

	item := model.NewQueueItem(model.KindCatalog, "https://open.spotify.com/track/1", model.Metadata{
		Title:  "Gülümse",
		Artist: "Sezen Aksu",
		Album:  "Hits",
	}, true)
	m.add([]*model.QueueItem{item}, false)

	m.Start()
	m.Wait()

	got, _ := m.Item(item.ID)
	assert.Equal(t, model.Completed(), got.State)
	assert.FileExists(t, filepath.Join(settings.DownloadDir, "Hits", "Sezen Aksu - Gülümse.m4a"))

	states := log.states(item.ID)
	assert.Equal(t, []model.State{model.Found(), model.Starting(), model.Completed()}, states)
}

func TestCatalogSearchMiss(t *testing.T) {
	deps := Deps{Download: download.Deps{
		Fetcher:  &gateFetcher{},
		Searcher: &fakeSearcher{err: errors.New("no network")},
	}}
	m, _ := newTestManager(t, testSettings(t), deps)
	item := model.NewQueueItem(model.KindCatalog, "u", model.Metadata{Title: "T", Artist: "A"}, false)
	m.add([]*model.QueueItem{item}, false)

	m.Start()
	m.Wait()

	got, _ := m.Item(item.ID)
	assert.Equal(t, model.PhaseFailed, got.State.Phase)
	assert.Equal(t, 1, m.LastSummary().Failed)
}

func TestRemoveAndClearTerminal(t *testing.T) {
	m, log := newTestManager(t, testSettings(t), Deps{})
	items := videoItems(4)
	m.add(items, false)

	assert.True(t, m.Remove(items[3].ID))
	assert.False(t, m.Remove(items[3].ID))
	assert.Equal(t, 3, m.Len())
	assert.NotContains(t, m.Selected(), items[3].ID)

	m.setState(items[0].ID, model.Completed())
	m.setState(items[1].ID, model.Failed("x"))

	assert.Equal(t, 2, m.ClearTerminal())
	remaining := m.Snapshot()
	require.Len(t, remaining, 1)
	assert.Equal(t, items[2].ID, remaining[0].ID)
	assert.Equal(t, []string{items[2].ID}, m.Selected())

	removed := 0
	for _, ev := range log.events {
		if ev.Kind == EventItemRemoved {
			removed++
		}
	}
	assert.Equal(t, 3, removed)
}

func TestSelection(t *testing.T) {
	m, _ := newTestManager(t, testSettings(t), Deps{})
	items := videoItems(3)
	m.add(items, false)

	m.SetSelected(items[1].ID, false)
	m.SetSelected("missing", true)
	assert.Equal(t, []string{items[0].ID, items[2].ID}, m.Selected())

	m.SelectAll()
	assert.Len(t, m.Selected(), 3)
}

func TestSetStateIgnoresRemovedItems(t *testing.T) {
	m, log := newTestManager(t, testSettings(t), Deps{})
	items := videoItems(1)
	m.add(items, false)
	m.Remove(items[0].ID)

	m.setState(items[0].ID, model.Completed())
	assert.Empty(t, log.states(items[0].ID))
}

func TestBatchPlaylistWritten(t *testing.T) {
	settings := testSettings(t)
	settings.CreatePlaylist = true

	fetcher := &gateFetcher{}
	m, _ := newTestManager(t, settings, Deps{Download: download.Deps{Fetcher: fetcher}})

	var items []*model.QueueItem
	for _, name := range []string{"one", "two"} {
		items = append(items, model.NewQueueItem(model.KindVideo, "https://youtu.be/"+name, model.Metadata{
			Title:  name,
			Artist: "Chan",
			Album:  "Road Trip",
		}, true))
	}
	items = append(items, model.NewQueueItem(model.KindVideo, "https://youtu.be/solo", model.Metadata{
		Title: "solo", Artist: "Chan", Album: model.SingleAlbum,
	}, false))
	m.add(items, false)

	m.Start()
	m.Wait()

	summary := m.LastSummary()
	want := filepath.Join(settings.DownloadDir, "Road Trip", "Road Trip.m3u")
	assert.Equal(t, []string{want}, summary.Playlists)

	data, err := os.ReadFile(want)
	require.NoError(t, err)
	assert.Contains(t, string(data), "#EXTINF:-1,Chan - one\none.m4a\n")
	assert.Contains(t, string(data), "two.m4a")
	assert.NotContains(t, string(data), "solo")
}
