package countdown

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	deskdto "studydesk/internal/modules/desk/dto"
	"studydesk/internal/ui/components"
	"studydesk/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type Port interface {
	BeginSchoolEdit(ctx context.Context, panel int) (deskdto.Snapshot, error)
	UpdateSchoolDraft(ctx context.Context, panel int, name, date string) (deskdto.Snapshot, error)
	SaveSchool(ctx context.Context, panel int) (deskdto.Snapshot, error)
	CancelSchoolEdit(ctx context.Context, panel int) (deskdto.Snapshot, error)
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model shows one card per school panel. A card enters its form only once
// the controller confirms the panel is Editing, and leaves it when a
// snapshot shows the panel Idle again.
type Model struct {
	port         Port
	panels       []deskdto.Countdown
	cursor       int
	editing      int
	pendingBegin int
	name         textinput.Model
	date         textinput.Model
	focus        int
	width        int
	height       int
}

func New(port Port) Model {
	name := textinput.New()
	name.Placeholder = "school name"
	name.CharLimit = 120
	date := textinput.New()
	date.Placeholder = "2027-02-25 or \"in 90 days\""
	date.CharLimit = 64
	return Model{port: port, name: name, date: date}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Capturing reports whether a form owns the keyboard.
func (m Model) Capturing() bool {
	return m.editing > 0
}

func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	inputW := max(10, w/len(m.cardsOrOne())-8)
	m.name.Width = inputW
	m.date.Width = inputW
}

func (m *Model) SetSnapshot(snap deskdto.Snapshot) {
	m.panels = snap.Countdowns
	if m.cursor >= len(m.panels) {
		m.cursor = max(0, len(m.panels)-1)
	}
	switch {
	case m.editing > 0:
		if m.editing > len(m.panels) || !m.panels[m.editing-1].Editing {
			m.stopEditing()
		}
	case m.pendingBegin > 0 && m.pendingBegin <= len(m.panels) && m.panels[m.pendingBegin-1].Editing:
		cd := m.panels[m.pendingBegin-1]
		m.editing = m.pendingBegin
		m.pendingBegin = 0
		m.name.SetValue(cd.DraftName)
		m.date.SetValue(cd.DraftDate)
		m.focus = 0
		m.name.Focus()
		m.date.Blur()
	}
}

// Edit starts editing panel (1-based), as the palette does.
func (m *Model) Edit(panel int) tea.Cmd {
	if panel < 1 || panel > len(m.panels) {
		return func() tea.Msg {
			return components.StatusMsg{Err: fmt.Errorf("no panel %d", panel)}
		}
	}
	m.cursor = panel - 1
	m.pendingBegin = panel
	return components.Do(fmt.Sprintf("editing panel %d", panel), func(ctx context.Context) (deskdto.Snapshot, error) {
		return m.port.BeginSchoolEdit(ctx, panel)
	})
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		if m.editing > 0 {
			return m.updateInputs(msg)
		}
		return m, nil
	}
	if m.editing > 0 {
		switch key.String() {
		case "esc":
			panel := m.editing
			m.stopEditing()
			return m, components.Do(fmt.Sprintf("panel %d unchanged", panel), func(ctx context.Context) (deskdto.Snapshot, error) {
				return m.port.CancelSchoolEdit(ctx, panel)
			})
		case "enter":
			return m, m.saveCmd(m.editing, m.name.Value(), m.date.Value())
		case "tab", "shift+tab", "up", "down":
			m.focus = 1 - m.focus
			if m.focus == 0 {
				m.date.Blur()
				return m, m.name.Focus()
			}
			m.name.Blur()
			return m, m.date.Focus()
		}
		return m.updateInputs(msg)
	}

	switch key.String() {
	case "left", "h", "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "right", "l", "down", "j":
		if m.cursor < len(m.panels)-1 {
			m.cursor++
		}
	case "e", "enter":
		if len(m.panels) > 0 {
			return m, m.Edit(m.cursor + 1)
		}
	}
	return m, nil
}

func (m Model) updateInputs(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.focus == 0 {
		m.name, cmd = m.name.Update(msg)
	} else {
		m.date, cmd = m.date.Update(msg)
	}
	return m, cmd
}

func (m Model) View() string {
	if len(m.panels) == 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, theme.Muted.Render("loading panels…"))
	}
	cardW := max(24, m.width/len(m.panels)-2)
	cards := make([]string, 0, len(m.panels))
	for i, cd := range m.panels {
		cards = append(cards, m.renderCard(i, cd, cardW))
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top, cards...)
	hint := "←/→ select  e: edit"
	if m.editing > 0 {
		hint = "tab: switch field  enter: save  esc: cancel"
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, "", theme.Muted.Render(hint))
}

func (m Model) renderCard(i int, cd deskdto.Countdown, width int) string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render(fmt.Sprintf("Target %d", cd.Panel)) + "\n\n")
	if m.editing == cd.Panel {
		sb.WriteString(theme.Muted.Render("name") + "\n" + m.name.View() + "\n")
		sb.WriteString(theme.Muted.Render("exam date") + "\n" + m.date.View() + "\n")
		return theme.PaneEdit.Width(width).Render(sb.String())
	}
	name := cd.Name
	if name == "" {
		name = theme.Muted.Render("(no school)")
	}
	sb.WriteString(name + "\n")
	switch {
	case cd.ExamDate == "":
		sb.WriteString(theme.Muted.Render("no exam date") + "\n")
	case cd.DaysRemaining == 0:
		sb.WriteString(theme.Hot.Render("exam day reached") + "\n")
		sb.WriteString(theme.Muted.Render(cd.ExamDate) + "\n")
	default:
		sb.WriteString(theme.Big.Render(fmt.Sprintf("%d", cd.DaysRemaining)) + theme.Muted.Render(" days left") + "\n")
		sb.WriteString(theme.Muted.Render(cd.ExamDate) + "\n")
	}
	style := theme.Pane
	if i == m.cursor {
		style = theme.PaneActive
	}
	return style.Width(width).Render(sb.String())
}

func (m *Model) stopEditing() {
	m.editing = 0
	m.name.Blur()
	m.date.Blur()
}

func (m Model) cardsOrOne() []deskdto.Countdown {
	if len(m.panels) == 0 {
		return make([]deskdto.Countdown, 1)
	}
	return m.panels
}

func (m Model) saveCmd(panel int, name, date string) tea.Cmd {
	return components.Do(fmt.Sprintf("panel %d saved", panel), func(ctx context.Context) (deskdto.Snapshot, error) {
		if snap, err := m.port.UpdateSchoolDraft(ctx, panel, name, date); err != nil {
			return snap, err
		}
		return m.port.SaveSchool(ctx, panel)
	})
}
