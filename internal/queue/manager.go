package queue

import (
	"context"
	"log/slog"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/handiism/mediaqueue/internal/config"
	"github.com/handiism/mediaqueue/internal/download"
	"github.com/handiism/mediaqueue/internal/model"
	"github.com/handiism/mediaqueue/internal/provider"
)

// ItemTimeout bounds how long a worker waits for one item's result.
const ItemTimeout = 300 * time.Second

// Run warnings.
const (
	MsgAlreadyRunning = "İndirme zaten sürüyor"
	MsgEmptySelection = "⚠️ Parça seçin!"
	MsgStopped        = "Kullanıcı tarafından durduruldu"
)

// Deps are the collaborators of a Manager.
type Deps struct {
	Catalog  provider.CatalogResolver
	Video    provider.VideoResolver
	Download download.Deps
}

// Manager owns the queue, the selection and the active run.
//
// All methods are safe for concurrent use.
type Manager struct {
	settings *config.Settings
	deps     Deps
	onEvent  func(Event)

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.RWMutex
	items    []*model.QueueItem
	selected map[string]bool
	running  bool
	done     chan struct{}
	summary  Summary

	stop        atomic.Bool
	ingestions  sync.WaitGroup
	itemTimeout time.Duration
}

// NewManager creates a Manager. Each run takes a snapshot of settings at
// Start. onEvent may be nil.
func NewManager(settings *config.Settings, deps Deps, onEvent func(Event)) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		settings:    settings,
		deps:        deps,
		onEvent:     onEvent,
		ctx:         ctx,
		cancel:      cancel,
		selected:    make(map[string]bool),
		itemTimeout: ItemTimeout,
	}
}

// Close cancels ingestions and transfers still running.
func (m *Manager) Close() {
	m.cancel()
}

// IsRunning reports whether a run is active.
func (m *Manager) IsRunning() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}

// Start launches a run over the selected items, in queue order.
//
// When a run is already active or nothing is selected, Start only emits
// a warning event.
func (m *Manager) Start() {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		m.message(LevelWarning, MsgAlreadyRunning)
		return
	}

	var ids []string
	for _, item := range m.items {
		if m.selected[item.ID] {
			ids = append(ids, item.ID)
		}
	}
	if len(ids) == 0 {
		m.mu.Unlock()
		m.message(LevelWarning, MsgEmptySelection)
		return
	}

	m.running = true
	m.stop.Store(false)
	done := make(chan struct{})
	m.done = done
	snap := m.settings.Snapshot()
	m.mu.Unlock()

	slog.Info("run started", "items", len(ids), "workers", snap.MaxConcurrentDownloads())
	m.emit(Event{Kind: EventRunStarted, Message: strconv.Itoa(len(ids)) + " parça indirilecek", Level: LevelInfo})

	go m.run(ids, snap, done)
}

// Run starts a run over the selection and blocks until it finishes.
// Canceling ctx stops the run the way Stop does. When ctx is already
// done nothing is dispatched and every selected item counts as not run.
func (m *Manager) Run(ctx context.Context) Summary {
	if ctx.Err() != nil {
		m.message(LevelWarning, MsgStopped)
		return Summary{NotRun: len(m.Selected())}
	}

	m.Start()
	defer context.AfterFunc(ctx, m.Stop)()
	m.Wait()
	return m.LastSummary()
}

// Stop asks the active run to dispatch nothing further.
func (m *Manager) Stop() {
	m.stop.Store(true)
}

// Wait blocks until the active run, if any, has finished.
func (m *Manager) Wait() {
	m.mu.RLock()
	done := m.done
	m.mu.RUnlock()
	if done != nil {
		<-done
	}
}

// LastSummary returns the summary of the most recent finished run.
func (m *Manager) LastSummary() Summary {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := m.summary
	s.Playlists = slices.Clone(s.Playlists)
	return s
}

// Remove deletes the item with id and its selection entry.
func (m *Manager) Remove(id string) bool {
	m.mu.Lock()
	i := m.index(id)
	if i < 0 {
		m.mu.Unlock()
		return false
	}
	m.items = slices.Delete(m.items, i, i+1)
	delete(m.selected, id)
	m.mu.Unlock()

	m.emit(Event{Kind: EventItemRemoved, ItemID: id})
	return true
}

// ClearTerminal removes every completed, skipped or failed item and
// returns how many were removed.
func (m *Manager) ClearTerminal() int {
	m.mu.Lock()
	var removed []string
	m.items = slices.DeleteFunc(m.items, func(item *model.QueueItem) bool {
		if item.State.IsTerminal() {
			removed = append(removed, item.ID)
			delete(m.selected, item.ID)
			return true
		}
		return false
	})
	m.mu.Unlock()

	for _, id := range removed {
		m.emit(Event{Kind: EventItemRemoved, ItemID: id})
	}
	return len(removed)
}

// SetSelected adds id to or removes it from the selection. Unknown IDs
// are ignored.
func (m *Manager) SetSelected(id string, selected bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.index(id) < 0 {
		return
	}
	if selected {
		m.selected[id] = true
	} else {
		delete(m.selected, id)
	}
}

// SelectAll selects every item in the queue.
func (m *Manager) SelectAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range m.items {
		m.selected[item.ID] = true
	}
}

// Selected returns the selected IDs in queue order.
func (m *Manager) Selected() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var ids []string
	for _, item := range m.items {
		if m.selected[item.ID] {
			ids = append(ids, item.ID)
		}
	}
	return ids
}

// IsSelected reports whether id is selected.
func (m *Manager) IsSelected(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.selected[id]
}

// Snapshot returns copies of all items in queue order.
func (m *Manager) Snapshot() []model.QueueItem {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.QueueItem, len(m.items))
	for i, item := range m.items {
		out[i] = *item
	}
	return out
}

// Item returns a copy of the item with id.
func (m *Manager) Item(id string) (model.QueueItem, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if i := m.index(id); i >= 0 {
		return *m.items[i], true
	}
	return model.QueueItem{}, false
}

// Len returns the number of queued items.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// setState is the only writer of item states. It is a no-op for items
// that were removed meanwhile or already hold state.
func (m *Manager) setState(id string, state model.State) {
	m.mu.Lock()
	i := m.index(id)
	if i < 0 || m.items[i].State == state {
		m.mu.Unlock()
		return
	}
	m.items[i].State = state
	title := m.items[i].Metadata.Title
	m.mu.Unlock()

	m.emit(Event{Kind: EventItemChanged, ItemID: id, Title: title, State: state, Message: state.Status()})
}

// index must be called with mu held.
func (m *Manager) index(id string) int {
	return slices.IndexFunc(m.items, func(item *model.QueueItem) bool { return item.ID == id })
}

func (m *Manager) message(level Level, msg string) {
	m.emit(Event{Kind: EventMessage, Message: msg, Level: level})
}

func (m *Manager) emit(ev Event) {
	if m.onEvent != nil {
		m.onEvent(ev)
	}
}
