package todos

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	deskdto "studydesk/internal/modules/desk/dto"
	"studydesk/internal/ui/components"
	"studydesk/internal/ui/theme"
)

type Port interface {
	AddTodo(ctx context.Context, text string) (deskdto.Snapshot, error)
	ToggleTodo(ctx context.Context, index int) (deskdto.Snapshot, error)
	RemoveTodo(ctx context.Context, index int) (deskdto.Snapshot, error)
}

// Model lists todos in storage order. Nothing is rendered or accepted until
// the todo collection has been hydrated.
type Model struct {
	port          Port
	items         []deskdto.Todo
	ready         bool
	cursor        int
	input         textinput.Model
	adding        bool
	confirmDelete int
	spinner       spinner.Model
	width         int
	height        int
}

func New(port Port) Model {
	ti := textinput.New()
	ti.Placeholder = "new todo"
	ti.CharLimit = 256
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)
	return Model{port: port, input: ti, spinner: sp}
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Capturing() bool {
	return m.adding
}

func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.input.Width = max(10, w-6)
}

func (m *Model) SetSnapshot(snap deskdto.Snapshot) {
	m.ready = snap.TodosReady
	m.items = snap.Todos
	if m.cursor >= len(m.items) {
		m.cursor = max(0, len(m.items)-1)
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if tick, ok := msg.(spinner.TickMsg); ok {
		if m.ready {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(tick)
		return m, cmd
	}
	if !m.ready {
		return m, nil
	}
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		if m.adding {
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	if m.adding {
		switch key.String() {
		case "esc":
			m.adding = false
			m.input.Blur()
			return m, nil
		case "enter":
			text := m.input.Value()
			m.input.SetValue("")
			return m, m.AddCmd(text)
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	if m.confirmDelete > 0 {
		index := m.confirmDelete
		m.confirmDelete = 0
		if key.String() == "y" || key.String() == "d" {
			return m, m.RemoveCmd(index)
		}
		return m, nil
	}

	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case "a":
		m.adding = true
		return m, m.input.Focus()
	case " ", "x", "enter":
		if len(m.items) > 0 {
			return m, m.ToggleCmd(m.cursor + 1)
		}
	case "d":
		if len(m.items) > 0 {
			m.confirmDelete = m.cursor + 1
		}
	}
	return m, nil
}

func (m Model) AddCmd(text string) tea.Cmd {
	return components.Do("todo added", func(ctx context.Context) (deskdto.Snapshot, error) {
		return m.port.AddTodo(ctx, text)
	})
}

func (m Model) ToggleCmd(index int) tea.Cmd {
	return components.Do(fmt.Sprintf("todo %d toggled", index), func(ctx context.Context) (deskdto.Snapshot, error) {
		return m.port.ToggleTodo(ctx, index)
	})
}

func (m Model) RemoveCmd(index int) tea.Cmd {
	return components.Do(fmt.Sprintf("todo %d removed", index), func(ctx context.Context) (deskdto.Snapshot, error) {
		return m.port.RemoveTodo(ctx, index)
	})
}

func (m Model) View() string {
	if !m.ready {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" opening todo store…")
	}
	var sb strings.Builder
	pending := 0
	for _, item := range m.items {
		if !item.Completed {
			pending++
		}
	}
	sb.WriteString(theme.Title.Render("Todos") + theme.Muted.Render(fmt.Sprintf("  %d open / %d", pending, len(m.items))) + "\n\n")
	if len(m.items) == 0 {
		sb.WriteString(theme.Muted.Render("nothing to do yet") + "\n")
	}
	for i, item := range m.items {
		box := "[ ]"
		text := item.Text
		if item.Completed {
			box = theme.Good.Render("[x]")
			text = theme.Muted.Strikethrough(true).Render(text)
		}
		line := fmt.Sprintf("%s %2d. %s", box, item.Index, text)
		if i == m.cursor {
			line = theme.Hot.Render("›") + " " + line
		} else {
			line = "  " + line
		}
		sb.WriteString(line + "\n")
	}
	sb.WriteString("\n")
	switch {
	case m.adding:
		sb.WriteString(m.input.View() + "\n" + theme.Muted.Render("enter: add  esc: cancel"))
	case m.confirmDelete > 0:
		sb.WriteString(theme.Warn.Render(fmt.Sprintf("delete todo %d? y/n", m.confirmDelete)))
	default:
		sb.WriteString(theme.Muted.Render("a: add  space: toggle  d: delete"))
	}
	return theme.Pane.Width(max(20, m.width-2)).Render(sb.String())
}
