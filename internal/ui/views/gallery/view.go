package gallery

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	deskdto "studydesk/internal/modules/desk/dto"
	"studydesk/internal/ui/components"
	"studydesk/internal/ui/theme"
)

type Port interface {
	AddImageFile(ctx context.Context, path string) (deskdto.AddImageOutput, error)
	RemoveImage(ctx context.Context, id int64) (deskdto.Snapshot, error)
	Image(ctx context.Context, id int64) (deskdto.ImageDetail, error)
	OpenImageExternal(ctx context.Context, id int64) error
}

type imageItem struct {
	image deskdto.Image
}

func (i imageItem) Title() string { return i.image.Name }
func (i imageItem) Description() string {
	return fmt.Sprintf("#%d  %s  %dx%d  %s",
		i.image.ID, humanize.IBytes(uint64(i.image.Size)), i.image.Width, i.image.Height, humanize.Time(i.image.CreatedAt))
}
func (i imageItem) FilterValue() string { return i.image.Name }

// Model is the review-image scrapbook. It waits for the image collection
// to be hydrated before listing anything.
type Model struct {
	port          Port
	list          list.Model
	ready         bool
	input         textinput.Model
	adding        bool
	confirmDelete int64
	spinner       spinner.Model
	width         int
	height        int
}

func New(port Port) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Review images"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()

	ti := textinput.New()
	ti.Placeholder = "path to an image file (max 10 MB)"
	ti.CharLimit = 1024

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	return Model{port: port, list: l, input: ti, spinner: sp}
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Capturing reports whether typing belongs to this view.
func (m Model) Capturing() bool {
	return m.adding || m.list.FilterState() == list.Filtering
}

func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.list.SetSize(w, max(3, h-3))
	m.input.Width = max(10, w-4)
}

func (m *Model) SetSnapshot(snap deskdto.Snapshot) tea.Cmd {
	m.ready = snap.ImagesReady
	items := make([]list.Item, len(snap.Images))
	for i, img := range snap.Images {
		items[i] = imageItem{image: img}
	}
	return m.list.SetItems(items)
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

	if key, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		if m.adding {
			switch key.String() {
			case "esc":
				m.adding = false
				m.input.Blur()
				return m, nil
			case "enter":
				path := strings.TrimSpace(m.input.Value())
				m.input.SetValue("")
				m.adding = false
				m.input.Blur()
				return m, m.AddCmd(path)
			}
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
		if m.confirmDelete > 0 {
			id := m.confirmDelete
			m.confirmDelete = 0
			if key.String() == "y" || key.String() == "d" {
				return m, m.RemoveCmd(id)
			}
			return m, nil
		}
		switch key.String() {
		case "a":
			m.adding = true
			return m, m.input.Focus()
		case "enter", "p":
			if id, ok := m.selectedID(); ok {
				return m, m.PreviewCmd(id)
			}
			return m, nil
		case "o":
			if id, ok := m.selectedID(); ok {
				return m, m.OpenCmd(id)
			}
			return m, nil
		case "d":
			if id, ok := m.selectedID(); ok {
				m.confirmDelete = id
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) selectedID() (int64, bool) {
	if item, ok := m.list.SelectedItem().(imageItem); ok {
		return item.image.ID, true
	}
	return 0, false
}

func (m Model) AddCmd(path string) tea.Cmd {
	port := m.port
	return func() tea.Msg {
		out, err := port.AddImageFile(context.Background(), path)
		return components.SnapshotMsg{Action: "added " + out.Image.Name, Snapshot: out.Snapshot, Err: err}
	}
}

func (m Model) RemoveCmd(id int64) tea.Cmd {
	return components.Do(fmt.Sprintf("image #%d removed", id), func(ctx context.Context) (deskdto.Snapshot, error) {
		return m.port.RemoveImage(ctx, id)
	})
}

func (m Model) PreviewCmd(id int64) tea.Cmd {
	port := m.port
	return func() tea.Msg {
		detail, err := port.Image(context.Background(), id)
		return components.PreviewMsg{Detail: detail, Err: err}
	}
}

func (m Model) OpenCmd(id int64) tea.Cmd {
	port := m.port
	return func() tea.Msg {
		err := port.OpenImageExternal(context.Background(), id)
		return components.StatusMsg{Text: fmt.Sprintf("image #%d opened externally", id), Err: err}
	}
}

func (m Model) View() string {
	if !m.ready {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" opening image store…")
	}
	var footer string
	switch {
	case m.adding:
		footer = m.input.View()
	case m.confirmDelete > 0:
		footer = theme.Warn.Render(fmt.Sprintf("delete image #%d? y/n", m.confirmDelete))
	case len(m.list.Items()) == 0:
		footer = theme.Muted.Render("no images yet  a: add")
	default:
		footer = theme.Muted.Render("a: add  enter: preview  o: open externally  d: delete  /: filter")
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.list.View(), "", footer)
}
