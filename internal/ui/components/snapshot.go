package components

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"studydesk/internal/modules/desk/dto"
)

// SnapshotMsg carries controller state back to the app after an operation.
// Action names the operation for the status bar.
type SnapshotMsg struct {
	Action   string
	Snapshot dto.Snapshot
	Err      error
}

// Do runs fn off the update loop and reports its snapshot.
func Do(action string, fn func(context.Context) (dto.Snapshot, error)) tea.Cmd {
	return func() tea.Msg {
		snap, err := fn(context.Background())
		return SnapshotMsg{Action: action, Snapshot: snap, Err: err}
	}
}

// WriteThrough keeps at most one write of a field in flight. Edits made
// while a write runs are coalesced, so the last value always lands last.
type WriteThrough struct {
	inflight bool
	sent     string
}

// Changed reports whether value should be written now.
func (w *WriteThrough) Changed(value string) bool {
	if w.inflight {
		return false
	}
	w.inflight = true
	w.sent = value
	return true
}

// Done marks the write finished and reports whether current still needs to
// be written.
func (w *WriteThrough) Done(current string) bool {
	w.inflight = false
	if current == w.sent {
		return false
	}
	return w.Changed(current)
}

// StatusMsg reports the outcome of an operation that returns no snapshot.
type StatusMsg struct {
	Text string
	Err  error
}

// PreviewMsg asks the app to show the image overlay.
type PreviewMsg struct {
	Detail dto.ImageDetail
	Err    error
}
