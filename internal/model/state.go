package model

import "fmt"

// Phase identifies which lifecycle state a queue item is in.
type Phase int

const (
	PhasePending Phase = iota
	PhaseSkipped
	PhaseFound
	PhaseDownloading
	PhaseTagging
	PhaseCompleted
	PhaseFailed
)

// State is the tagged lifecycle state of a queue item.
//
// Only the fields relevant to Phase are meaningful: Percent for
// PhaseDownloading (negative when no progress is known yet) and Reason for
// PhaseFailed. Construct states with the helper functions rather than by
// hand.
//
// The user-facing text is a projection of the state, see Status.
type State struct {
	Phase   Phase
	Percent int
	Reason  string
}

// Pending is the initial state of every item.
func Pending() State { return State{Phase: PhasePending} }

// Skipped marks an item whose file already exists. It counts as success.
func Skipped() State { return State{Phase: PhaseSkipped} }

// Found marks a catalog item whose search produced a match.
func Found() State { return State{Phase: PhaseFound} }

// Starting marks a transfer that has begun but reported no progress yet.
func Starting() State { return State{Phase: PhaseDownloading, Percent: -1} }

// Downloading marks a transfer at the given percentage. Fractions are
// truncated and the value is clamped to [0,100].
func Downloading(percent float64) State {
	p := int(percent)
	if p < 0 {
		p = 0
	}
	if p > 100 {
		p = 100
	}
	return State{Phase: PhaseDownloading, Percent: p}
}

// Tagging marks an item whose file is being tagged.
func Tagging() State { return State{Phase: PhaseTagging} }

// Completed marks a successful item.
func Completed() State { return State{Phase: PhaseCompleted} }

// Failed marks a failed item with an optional user-facing reason.
func Failed(reason string) State { return State{Phase: PhaseFailed, Reason: reason} }

// Status renders the state in the queue's display vocabulary.
func (s State) Status() string {
	switch s.Phase {
	case PhasePending:
		return "Beklemede"
	case PhaseSkipped:
		return "Atlandı (Mevcut)"
	case PhaseFound:
		return "Bulundu..."
	case PhaseDownloading:
		if s.Percent < 0 {
			return "İndiriliyor..."
		}
		return fmt.Sprintf("%%%d", s.Percent)
	case PhaseTagging:
		return "Tag yazılıyor..."
	case PhaseCompleted:
		return "Tamamlandı"
	case PhaseFailed:
		if s.Reason == "" {
			return "Hata"
		}
		return "Hata: " + s.Reason
	}
	return ""
}

// String implements fmt.Stringer.
func (s State) String() string { return s.Status() }

// IsTerminal reports whether no further transition is expected.
func (s State) IsTerminal() bool {
	switch s.Phase {
	case PhaseSkipped, PhaseCompleted, PhaseFailed:
		return true
	}
	return false
}

// IsActive reports whether a worker currently owns the item.
func (s State) IsActive() bool {
	switch s.Phase {
	case PhaseFound, PhaseDownloading, PhaseTagging:
		return true
	}
	return false
}

// IsSuccess reports whether the item ended well (completed or skipped).
func (s State) IsSuccess() bool {
	return s.Phase == PhaseCompleted || s.Phase == PhaseSkipped
}
