package queue

import (
	"fmt"

	"github.com/handiism/mediaqueue/internal/model"
)

// Level indicates the severity of an event message.
type Level int

const (
	LevelInfo Level = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// EventKind identifies what an Event reports.
type EventKind int

const (
	// EventMessage carries a user-facing message only.
	EventMessage EventKind = iota

	// EventItemsAdded is sent after an ingestion added items.
	EventItemsAdded

	// EventItemChanged is sent after an item's state changed.
	EventItemChanged

	// EventItemRemoved is sent after an item left the queue.
	EventItemRemoved

	// EventRunStarted and EventRunFinished bracket a run. The finish
	// event carries the run summary.
	EventRunStarted
	EventRunFinished
)

// Event is a queue notification.
type Event struct {
	Kind    EventKind
	ItemID  string
	Title   string
	State   model.State
	Message string
	Level   Level
	Summary *Summary
}

// Summary counts the outcomes of one run.
type Summary struct {
	Completed int
	Skipped   int
	Failed    int
	TimedOut  int

	// NotRun counts selected items that were never dispatched because
	// of a stop, or that were removed before their turn.
	NotRun int

	// Playlists lists the batch playlists written after the run.
	Playlists []string
}

// Total is the number of items the run was started with.
func (s Summary) Total() int {
	return s.Completed + s.Skipped + s.Failed + s.TimedOut + s.NotRun
}

// String renders the summary line shown at the end of a run.
func (s Summary) String() string {
	return fmt.Sprintf("Tamamlandı %d / Hata %d", s.Completed+s.Skipped, s.Failed+s.TimedOut)
}
