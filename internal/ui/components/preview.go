package components

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"studydesk/internal/modules/desk/dto"
	"studydesk/internal/ui/theme"
)

// PreviewClosedMsg is emitted when the overlay is dismissed.
type PreviewClosedMsg struct{}

// Preview is the full-screen image overlay. Esc, enter or any mouse click
// closes it.
type Preview struct {
	visible bool
	image   dto.ImageDetail
	decoded image.Image
	width   int
	height  int
}

func (p Preview) Visible() bool { return p.visible }

func (p *Preview) Show(detail dto.ImageDetail) {
	p.visible = true
	p.image = detail
	p.decoded = nil
	if img, _, err := image.Decode(bytes.NewReader(detail.Data)); err == nil {
		p.decoded = img
	}
}

func (p *Preview) SetSize(w, h int) {
	p.width = w
	p.height = h
}

func (p Preview) Update(msg tea.Msg) (Preview, tea.Cmd) {
	if !p.visible {
		return p, nil
	}
	closeCmd := func() tea.Msg { return PreviewClosedMsg{} }
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "enter", "q", " ":
			p.visible = false
			return p, closeCmd
		}
	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress {
			p.visible = false
			return p, closeCmd
		}
	}
	return p, nil
}

func (p Preview) View() string {
	if !p.visible {
		return ""
	}
	img := p.image
	header := theme.Title.Render(img.Name) + "  " + theme.Muted.Render(fmt.Sprintf(
		"#%d  %s  %dx%d  %s  %s",
		img.ID, img.MIME, img.Width, img.Height,
		humanize.IBytes(uint64(img.Size)), humanize.Time(img.CreatedAt),
	))
	footer := theme.Muted.Render("esc / enter / click to close")

	bodyH := p.height - 4
	var body string
	if p.decoded == nil {
		body = theme.Warn.Render("no terminal preview for " + img.MIME + "; use image:open to view it externally")
	} else {
		body = renderHalfBlocks(p.decoded, p.width-2, bodyH)
	}
	content := lipgloss.JoinVertical(lipgloss.Center, header, "", body, "", footer)
	return lipgloss.Place(p.width, p.height, lipgloss.Center, lipgloss.Center, content,
		lipgloss.WithWhitespaceBackground(theme.Base))
}

// renderHalfBlocks draws img with one "▀" per two vertical pixels, scaled
// to fit within cols x rows while keeping its aspect ratio.
func renderHalfBlocks(img image.Image, cols, rows int) string {
	b := img.Bounds()
	if cols < 1 || rows < 1 || b.Dx() == 0 || b.Dy() == 0 {
		return ""
	}
	scale := float64(cols) / float64(b.Dx())
	if s := float64(rows*2) / float64(b.Dy()); s < scale {
		scale = s
	}
	if scale > 1 {
		scale = 1
	}
	w := max(1, int(float64(b.Dx())*scale))
	h := max(2, int(float64(b.Dy())*scale))

	at := func(x, y int) lipgloss.Color {
		sx := b.Min.X + int(float64(x)/scale)
		sy := b.Min.Y + int(float64(y)/scale)
		if sy >= b.Max.Y {
			sy = b.Max.Y - 1
		}
		if sx >= b.Max.X {
			sx = b.Max.X - 1
		}
		r, g, bl, _ := img.At(sx, sy).RGBA()
		return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, bl>>8))
	}

	var sb strings.Builder
	for y := 0; y < h; y += 2 {
		for x := 0; x < w; x++ {
			style := lipgloss.NewStyle().Foreground(at(x, y)).Background(at(x, y+1))
			sb.WriteString(style.Render("▀"))
		}
		if y+2 < h {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
