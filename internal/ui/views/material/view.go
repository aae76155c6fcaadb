package material

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	deskdto "studydesk/internal/modules/desk/dto"
	"studydesk/internal/ui/components"
	"studydesk/internal/ui/theme"
)

type Port interface {
	SetMaterialName(ctx context.Context, name string) (deskdto.Snapshot, error)
	SetTotalPages(ctx context.Context, raw string) (deskdto.Snapshot, error)
	SetCurrentPage(ctx context.Context, raw string) (deskdto.Snapshot, error)
}

type field int

const (
	fieldName field = iota
	fieldTotal
	fieldCurrent
	fieldCount
)

var fieldLabels = [fieldCount]string{"material", "total pages", "current page"}

// WrittenMsg reports a finished write-through of one field. It must reach
// this view even when another tab is active.
type WrittenMsg struct {
	field  field
	Result components.SnapshotMsg
}

// Model edits the reading material with every keystroke written through.
type Model struct {
	port     Port
	inputs   [fieldCount]textinput.Model
	writes   [fieldCount]components.WriteThrough
	focus    field
	editing  bool
	material deskdto.Material
	bar      progress.Model
	width    int
}

func New(port Port) Model {
	m := Model{port: port, bar: progress.New(progress.WithDefaultGradient())}
	for i := range m.inputs {
		ti := textinput.New()
		ti.Placeholder = fieldLabels[i]
		ti.CharLimit = 128
		m.inputs[i] = ti
	}
	m.inputs[fieldTotal].CharLimit = 9
	m.inputs[fieldCurrent].CharLimit = 9
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Capturing() bool {
	return m.editing
}

func (m *Model) SetSize(w, _ int) {
	m.width = w
	m.bar.Width = max(10, min(60, w-10))
	for i := range m.inputs {
		m.inputs[i].Width = max(10, min(60, w-20))
	}
}

// SetSnapshot refreshes the fields that are not being typed into.
func (m *Model) SetSnapshot(snap deskdto.Snapshot) {
	m.material = snap.Material
	values := [fieldCount]string{
		snap.Material.Name,
		pageString(snap.Material.TotalPages),
		pageString(snap.Material.CurrentPage),
	}
	for i := range m.inputs {
		if m.editing && field(i) == m.focus {
			continue
		}
		m.inputs[i].SetValue(values[i])
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case WrittenMsg:
		result := msg.Result
		forward := func() tea.Msg { return result }
		current := m.inputs[msg.field].Value()
		if m.writes[msg.field].Done(current) {
			return m, tea.Batch(forward, m.writeCmd(msg.field, current))
		}
		return m, forward

	case tea.KeyMsg:
		if !m.editing {
			if msg.String() == "i" || msg.String() == "enter" {
				m.editing = true
				return m, m.inputs[m.focus].Focus()
			}
			return m, nil
		}
		switch msg.String() {
		case "esc", "enter":
			m.editing = false
			m.inputs[m.focus].Blur()
			return m, nil
		case "tab", "down":
			return m, m.moveFocus(1)
		case "shift+tab", "up":
			return m, m.moveFocus(fieldCount - 1)
		}
	}
	if !m.editing {
		return m, nil
	}

	before := m.inputs[m.focus].Value()
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	after := m.inputs[m.focus].Value()
	if after != before && m.writes[m.focus].Changed(after) {
		return m, tea.Batch(cmd, m.writeCmd(m.focus, after))
	}
	return m, cmd
}

func (m *Model) moveFocus(step field) tea.Cmd {
	m.inputs[m.focus].Blur()
	m.focus = (m.focus + step) % fieldCount
	return m.inputs[m.focus].Focus()
}

func (m Model) writeCmd(f field, value string) tea.Cmd {
	port := m.port
	return func() tea.Msg {
		ctx := context.Background()
		var (
			snap deskdto.Snapshot
			err  error
		)
		switch f {
		case fieldName:
			snap, err = port.SetMaterialName(ctx, value)
		case fieldTotal:
			snap, err = port.SetTotalPages(ctx, value)
		default:
			snap, err = port.SetCurrentPage(ctx, value)
		}
		return WrittenMsg{field: f, Result: components.SnapshotMsg{Snapshot: snap, Err: err}}
	}
}

func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Reading material") + "\n\n")
	for i := range m.inputs {
		label := fmt.Sprintf("%-13s", fieldLabels[i])
		sb.WriteString(theme.Muted.Render(label) + m.inputs[i].View() + "\n")
	}
	sb.WriteString("\n")

	mat := m.material
	switch {
	case mat.TotalPages <= 0:
		sb.WriteString(theme.Muted.Render("set a page total to see your pace") + "\n")
	case mat.Completed:
		sb.WriteString(m.bar.ViewAs(1) + "\n")
		sb.WriteString(theme.Good.Render("finished, well done") + "\n")
	default:
		sb.WriteString(m.bar.ViewAs(float64(mat.Percent)/100) + "\n")
		sb.WriteString(fmt.Sprintf("%s %d  %s %d\n",
			theme.Muted.Render("pages left:"), mat.RemainingPages,
			theme.Muted.Render("days left:"), mat.DaysRemaining))
		if mat.DaysRemaining > 0 {
			sb.WriteString(theme.Hot.Render(fmt.Sprintf("%d pages / day", mat.PagesPerDay)) + "\n")
		} else {
			sb.WriteString(theme.Muted.Render("set an exam date on target 1 to get a daily pace") + "\n")
		}
	}
	sb.WriteString("\n")
	if m.editing {
		sb.WriteString(theme.Muted.Render("tab: next field  esc: done"))
	} else {
		sb.WriteString(theme.Muted.Render("i: edit  material:pdf <path> loads a PDF"))
	}
	return theme.Pane.Width(max(20, m.width-2)).Render(sb.String())
}

func pageString(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}
