package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	deskdto "studydesk/internal/modules/desk/dto"
	"studydesk/internal/ui/components"
	"studydesk/internal/ui/theme"
	countdownview "studydesk/internal/ui/views/countdown"
	galleryview "studydesk/internal/ui/views/gallery"
	materialview "studydesk/internal/ui/views/material"
	notesview "studydesk/internal/ui/views/notes"
	todosview "studydesk/internal/ui/views/todos"
)

// ─── ports ───────────────────────────────────────────────────────────────────
// DeskPort is everything the TUI needs from the desk module. Sub-views get
// the same value narrowed to their own port interfaces.

type DeskPort interface {
	countdownview.Port
	todosview.Port
	materialview.Port
	galleryview.Port
	notesview.Port
	Hydrate(ctx context.Context) (deskdto.Snapshot, error)
	LoadMaterialFromPDF(ctx context.Context, path string) (deskdto.Snapshot, error)
}

// ─── tab index ───────────────────────────────────────────────────────────────

type tabID int

const (
	tabCountdown tabID = iota
	tabTodos
	tabMaterial
	tabGallery
	tabNotes
	tabCount
)

var tabLabels = [tabCount]string{
	"Countdown", "Todos", "Material", "Gallery", "Notes",
}

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	Tab     key.Binding
	Help    key.Binding
	Palette key.Binding
	Quit    key.Binding
	Edit    key.Binding
	Add     key.Binding
	Delete  key.Binding
	Preview key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
		Edit:    key.NewBinding(key.WithKeys("e", "i"), key.WithHelp("e/i", "edit school, material or notes")),
		Add:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add todo or image")),
		Delete:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete (confirm with y)")),
		Preview: key.NewBinding(key.WithKeys("enter", "o"), key.WithHelp("enter/o", "preview / open image")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Help, k.Palette, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.Edit, k.Add},
		{k.Delete, k.Preview},
		{k.Help, k.Palette, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It owns tab routing, the help overlay,
// the command palette and the image preview. Every operation goes through
// the desk port; the latest snapshot it returns is pushed to all views.
type Model struct {
	dataDir string
	desk    DeskPort

	countdownView countdownview.Model
	todosView     todosview.Model
	materialView  materialview.Model
	galleryView   galleryview.Model
	notesView     notesview.Model

	activeTab tabID
	keys      keyMap
	help      help.Model
	showHelp  bool
	palette   components.Palette
	preview   components.Preview
	snapshot  deskdto.Snapshot
	status    string
	statusErr bool
	width     int
	height    int
}

func NewModel(dataDir string, desk DeskPort) Model {
	return Model{
		dataDir:       dataDir,
		desk:          desk,
		countdownView: countdownview.New(desk),
		todosView:     todosview.New(desk),
		materialView:  materialview.New(desk),
		galleryView:   galleryview.New(desk),
		notesView:     notesview.New(desk),
		activeTab:     tabCountdown,
		keys:          defaultKeys(),
		help:          help.New(),
		palette:       components.NewPalette(),
		status:        "loading…",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.countdownView.Init(),
		m.todosView.Init(),
		m.materialView.Init(),
		m.galleryView.Init(),
		m.notesView.Init(),
		m.hydrateCmd(),
	)
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// The palette intercepts all input while open.
	if m.palette.Visible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd
	}
	if m.preview.Visible() {
		switch msg.(type) {
		case tea.KeyMsg, tea.MouseMsg:
			if k, ok := msg.(tea.KeyMsg); ok && k.String() == "ctrl+c" {
				return m, tea.Quit
			}
			var cmd tea.Cmd
			m.preview, cmd = m.preview.Update(msg)
			return m, cmd
		}
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.propagateSize()
		return m, nil

	case components.SnapshotMsg:
		return m, m.applySnapshot(msg)

	case components.StatusMsg:
		m.setStatus(msg.Text, msg.Err)
		return m, nil

	case components.PreviewMsg:
		if msg.Err != nil {
			m.setStatus("", msg.Err)
			return m, nil
		}
		m.preview.Show(msg.Detail)
		m.setStatus("previewing "+msg.Detail.Name, nil)
		return m, nil

	case components.PreviewClosedMsg:
		m.setStatus("ready", nil)
		return m, nil

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.setStatus("ready", nil)
		return m, nil

	// Write-through results belong to the view that issued them, whichever
	// tab is showing now.
	case materialview.WrittenMsg:
		var cmd tea.Cmd
		m.materialView, cmd = m.materialView.Update(msg)
		return m, cmd

	case notesview.EditedMsg:
		var cmd tea.Cmd
		m.notesView, cmd = m.notesView.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}
		if msg.String() == "ctrl+c" {
			return m, m.quitCmd()
		}

		// Yield to the sub-view while it owns the keyboard.
		if m.subViewCapturing() {
			return m.updateActive(msg)
		}

		switch msg.String() {
		case "q":
			return m, m.quitCmd()
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.activeTab = (m.activeTab + tabCount - 1) % tabCount
			return m, nil
		case "1", "2", "3", "4", "5":
			m.activeTab = tabID(msg.String()[0] - '1')
			return m, nil
		case "?":
			m.showHelp = !m.showHelp
			return m, nil
		case ":":
			return m, m.palette.Open()
		}
		return m.updateActive(msg)

	case tea.MouseMsg:
		return m.updateActive(msg)
	}

	// Timers, blinks and spinner ticks carry their own ids; every view may
	// own one.
	return m, m.broadcast(msg)
}

func (m Model) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.activeTab {
	case tabCountdown:
		m.countdownView, cmd = m.countdownView.Update(msg)
	case tabTodos:
		m.todosView, cmd = m.todosView.Update(msg)
	case tabMaterial:
		m.materialView, cmd = m.materialView.Update(msg)
	case tabGallery:
		m.galleryView, cmd = m.galleryView.Update(msg)
	case tabNotes:
		m.notesView, cmd = m.notesView.Update(msg)
	}
	return m, cmd
}

func (m *Model) broadcast(msg tea.Msg) tea.Cmd {
	cmds := make([]tea.Cmd, 5)
	m.countdownView, cmds[0] = m.countdownView.Update(msg)
	m.todosView, cmds[1] = m.todosView.Update(msg)
	m.materialView, cmds[2] = m.materialView.Update(msg)
	m.galleryView, cmds[3] = m.galleryView.Update(msg)
	m.notesView, cmds[4] = m.notesView.Update(msg)
	return tea.Batch(cmds...)
}

// applySnapshot adopts the snapshot carried by msg, if any, and reports the
// action or error in the status bar.
func (m *Model) applySnapshot(msg components.SnapshotMsg) tea.Cmd {
	var cmd tea.Cmd
	if !msg.Snapshot.Today.IsZero() {
		m.snapshot = msg.Snapshot
		m.countdownView.SetSnapshot(msg.Snapshot)
		m.todosView.SetSnapshot(msg.Snapshot)
		m.materialView.SetSnapshot(msg.Snapshot)
		cmd = m.galleryView.SetSnapshot(msg.Snapshot)
		m.notesView.SetSnapshot(msg.Snapshot)
	}
	switch {
	case msg.Err != nil:
		m.setStatus(msg.Action, msg.Err)
	case msg.Action != "":
		m.setStatus(msg.Action, nil)
	}
	return cmd
}

func (m *Model) setStatus(text string, err error) {
	m.statusErr = err != nil
	switch {
	case err == nil:
		m.status = text
	case text == "":
		m.status = err.Error()
	default:
		m.status = text + ": " + err.Error()
	}
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	tabBar := m.renderTabBar()
	statusBar := m.renderStatusBar()
	tabBarH := lipgloss.Height(tabBar)
	statusBarH := lipgloss.Height(statusBar)

	contentH := m.height - tabBarH - statusBarH
	if contentH < 1 {
		contentH = 1
	}

	var content string
	switch {
	case m.preview.Visible():
		content = m.preview.View()
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).
			Render(m.help.View(m.keys) + "\n\n" + theme.Muted.Render("data: "+m.dataDir))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH,
			lipgloss.Center, lipgloss.Center, m.palette.View())
	default:
		content = m.activeView()
	}

	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)
}

func (m Model) activeView() string {
	switch m.activeTab {
	case tabCountdown:
		return m.countdownView.View()
	case tabTodos:
		return m.todosView.View()
	case tabMaterial:
		return m.materialView.View()
	case tabGallery:
		return m.galleryView.View()
	case tabNotes:
		return m.notesView.View()
	}
	return ""
}

func (m Model) renderTabBar() string {
	parts := make([]string, tabCount)
	for i := tabID(0); i < tabCount; i++ {
		label := fmt.Sprintf("%d %s", i+1, tabLabels[i])
		if i == m.activeTab {
			parts[i] = theme.Hot.Render(" " + label + " ")
		} else {
			parts[i] = theme.Muted.Render(" " + label + " ")
		}
	}
	sep := theme.Muted.Render(" │ ")
	bar := "studydesk  " + strings.Join(parts, sep)
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	if m.statusErr {
		left = theme.Bad.Render(left)
	}
	if n := m.snapshot.OpenTodos; n > 0 {
		left = theme.Muted.Render(fmt.Sprintf("%d open", n)) + "  " + left
	}
	if n := len(m.snapshot.Unsaved); n > 0 {
		left = theme.Warn.Render(fmt.Sprintf("● %d unsaved", n)) + "  " + left
	}
	right := theme.Muted.Render("?:help  tab:switch  :::palette  q:quit")
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ─── palette execution ────────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	if strings.TrimSpace(input) == "" {
		return m, nil
	}
	parts := strings.Fields(input)
	rest := strings.TrimSpace(strings.TrimPrefix(input, parts[0]))

	switch parts[0] {
	case "school:edit":
		panel, ok := m.intArg(parts, "usage: school:edit <panel>")
		if !ok {
			return m, nil
		}
		m.activeTab = tabCountdown
		return m, m.countdownView.Edit(panel)

	case "todo:add":
		m.activeTab = tabTodos
		return m, m.todosView.AddCmd(rest)

	case "todo:done":
		index, ok := m.intArg(parts, "usage: todo:done <n>")
		if !ok {
			return m, nil
		}
		m.activeTab = tabTodos
		return m, m.todosView.ToggleCmd(index)

	case "todo:rm":
		index, ok := m.intArg(parts, "usage: todo:rm <n>")
		if !ok {
			return m, nil
		}
		m.activeTab = tabTodos
		return m, m.todosView.RemoveCmd(index)

	case "material:pdf":
		if rest == "" {
			m.setStatus("usage: material:pdf <path>", nil)
			return m, nil
		}
		m.activeTab = tabMaterial
		return m, components.Do("material loaded from "+rest, func(ctx context.Context) (deskdto.Snapshot, error) {
			return m.desk.LoadMaterialFromPDF(ctx, rest)
		})

	case "image:add":
		if rest == "" {
			m.setStatus("usage: image:add <path>", nil)
			return m, nil
		}
		m.activeTab = tabGallery
		return m, m.galleryView.AddCmd(rest)

	case "image:preview", "image:open", "image:rm":
		id, ok := m.intArg(parts, "usage: "+parts[0]+" <id>")
		if !ok {
			return m, nil
		}
		m.activeTab = tabGallery
		switch parts[0] {
		case "image:preview":
			return m, m.galleryView.PreviewCmd(int64(id))
		case "image:open":
			return m, m.galleryView.OpenCmd(int64(id))
		}
		return m, m.galleryView.RemoveCmd(int64(id))

	case "notes:flush":
		return m, m.notesView.FlushCmd()

	case "reload":
		m.setStatus("reloading…", nil)
		return m, m.hydrateCmd()

	default:
		m.setStatus("unknown command: "+parts[0], nil)
	}
	return m, nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

func (m *Model) intArg(parts []string, usage string) (int, bool) {
	if len(parts) < 2 {
		m.setStatus(usage, nil)
		return 0, false
	}
	n, err := strconv.Atoi(parts[1])
	if err != nil {
		m.setStatus(usage, errors.New("not a number: "+parts[1]))
		return 0, false
	}
	return n, true
}

// subViewCapturing reports whether the active tab is taking text input, in
// which case global key bindings must yield to allow free typing.
func (m Model) subViewCapturing() bool {
	switch m.activeTab {
	case tabCountdown:
		return m.countdownView.Capturing()
	case tabTodos:
		return m.todosView.Capturing()
	case tabMaterial:
		return m.materialView.Capturing()
	case tabGallery:
		return m.galleryView.Capturing()
	case tabNotes:
		return m.notesView.Capturing()
	}
	return false
}

func (m *Model) propagateSize() {
	w, h := m.width, m.height-3
	m.countdownView.SetSize(w, h)
	m.todosView.SetSize(w, h)
	m.materialView.SetSize(w, h)
	m.galleryView.SetSize(w, h)
	m.notesView.SetSize(w, h)
	m.preview.SetSize(w, h)
}

// ─── async commands ───────────────────────────────────────────────────────────

func (m Model) hydrateCmd() tea.Cmd {
	return components.Do("ready", m.desk.Hydrate)
}

// quitCmd persists pending notes before leaving.
func (m Model) quitCmd() tea.Cmd {
	desk := m.desk
	return tea.Sequence(func() tea.Msg {
		_, _ = desk.FlushNotes(context.Background())
		return nil
	}, tea.Quit)
}
