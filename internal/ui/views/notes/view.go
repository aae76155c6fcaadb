package notes

import (
	"context"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	deskdto "studydesk/internal/modules/desk/dto"
	"studydesk/internal/ui/components"
	"studydesk/internal/ui/theme"
)

type Port interface {
	EditNotes(ctx context.Context, text string) deskdto.Snapshot
	FlushNotes(ctx context.Context) (deskdto.Snapshot, error)
}

// EditedMsg reports that the controller accepted an edit. It must reach
// this view even when another tab is active.
type EditedMsg struct {
	Snapshot deskdto.Snapshot
}

// Model is the free-form notes pad. The controller debounces persistence;
// the view only coalesces edits so they reach it in order.
type Model struct {
	port    Port
	area    textarea.Model
	write   components.WriteThrough
	pending bool
	width   int
	height  int
}

func New(port Port) Model {
	ta := textarea.New()
	ta.Placeholder = "notes…"
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	return Model{port: port, area: ta}
}

func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

func (m Model) Capturing() bool {
	return m.area.Focused()
}

func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.area.SetWidth(max(10, w-4))
	m.area.SetHeight(max(3, h-4))
}

func (m *Model) SetSnapshot(snap deskdto.Snapshot) {
	m.pending = snap.NotesPending
	if !m.area.Focused() && m.area.Value() != snap.Notes {
		m.area.SetValue(snap.Notes)
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case EditedMsg:
		m.pending = msg.Snapshot.NotesPending
		forward := func() tea.Msg { return components.SnapshotMsg{Snapshot: msg.Snapshot} }
		if m.write.Done(m.area.Value()) {
			return m, tea.Batch(forward, m.editCmd(m.area.Value()))
		}
		return m, forward
	case tea.KeyMsg:
		if !m.area.Focused() {
			if msg.String() == "i" || msg.String() == "enter" {
				return m, m.area.Focus()
			}
			return m, nil
		}
		switch msg.String() {
		case "esc":
			m.area.Blur()
			return m, m.FlushCmd()
		case "ctrl+s":
			return m, m.FlushCmd()
		}
	}
	if !m.area.Focused() {
		return m, nil
	}
	before := m.area.Value()
	var cmd tea.Cmd
	m.area, cmd = m.area.Update(msg)
	if after := m.area.Value(); after != before && m.write.Changed(after) {
		return m, tea.Batch(cmd, m.editCmd(after))
	}
	return m, cmd
}

func (m Model) editCmd(text string) tea.Cmd {
	port := m.port
	return func() tea.Msg {
		return EditedMsg{Snapshot: port.EditNotes(context.Background(), text)}
	}
}

func (m Model) FlushCmd() tea.Cmd {
	return components.Do("notes saved", m.port.FlushNotes)
}

func (m Model) View() string {
	state := theme.Good.Render("saved")
	if m.pending {
		state = theme.Warn.Render("saving…")
	}
	header := theme.Title.Render("Notes") + "  " + state
	hint := theme.Muted.Render("i: write  esc: stop and save  ctrl+s: save now")
	return lipgloss.JoinVertical(lipgloss.Left, header, m.area.View(), hint)
}
