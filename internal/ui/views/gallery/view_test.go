package gallery_test

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	deskdto "studydesk/internal/modules/desk/dto"
	"studydesk/internal/ui/components"
	"studydesk/internal/ui/views/gallery"
)

type fakePort struct {
	removed []int64
	opened  []int64
}

func (f *fakePort) AddImageFile(context.Context, string) (deskdto.AddImageOutput, error) {
	return deskdto.AddImageOutput{}, nil
}

func (f *fakePort) RemoveImage(_ context.Context, id int64) (deskdto.Snapshot, error) {
	f.removed = append(f.removed, id)
	return deskdto.Snapshot{}, nil
}

func (f *fakePort) Image(_ context.Context, id int64) (deskdto.ImageDetail, error) {
	return deskdto.ImageDetail{Image: deskdto.Image{ID: id}}, nil
}

func (f *fakePort) OpenImageExternal(_ context.Context, id int64) error {
	f.opened = append(f.opened, id)
	return nil
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func readyModel(port gallery.Port) gallery.Model {
	m := gallery.New(port)
	m.SetSize(80, 20)
	m.SetSnapshot(deskdto.Snapshot{ImagesReady: true, Images: []deskdto.Image{
		{ID: 4, Name: "graph.png", MIME: "image/png", Size: 2048, CreatedAt: time.Now()},
		{ID: 9, Name: "table.jpg", MIME: "image/jpeg", Size: 4096, CreatedAt: time.Now()},
	}})
	return m
}

func TestGalleryIgnoresKeysUntilHydrated(t *testing.T) {
	t.Parallel()
	m := gallery.New(&fakePort{})
	m.SetSnapshot(deskdto.Snapshot{Images: []deskdto.Image{{ID: 1}}})
	m, cmd := m.Update(runes("a"))
	if cmd != nil || m.Capturing() {
		t.Fatalf("gallery must stay inert before the image store is ready")
	}
}

func TestGalleryPreviewAndOpenUseSelectedImage(t *testing.T) {
	t.Parallel()
	port := &fakePort{}
	m := readyModel(port)

	_, cmd := m.Update(runes("p"))
	if cmd == nil {
		t.Fatalf("p should preview")
	}
	msg, ok := cmd().(components.PreviewMsg)
	if !ok || msg.Detail.ID != 4 {
		t.Fatalf("expected preview of image 4, got %#v", msg)
	}

	_, cmd = m.Update(runes("o"))
	if _, ok := cmd().(components.StatusMsg); !ok {
		t.Fatalf("open should report a status")
	}
	if len(port.opened) != 1 || port.opened[0] != 4 {
		t.Fatalf("expected image 4 opened, got %v", port.opened)
	}
}

func TestGalleryDeleteNeedsConfirmation(t *testing.T) {
	t.Parallel()
	port := &fakePort{}
	m := readyModel(port)

	m, cmd := m.Update(runes("d"))
	if cmd != nil {
		t.Fatalf("delete must wait for confirmation")
	}
	m, cmd = m.Update(runes("n"))
	if cmd != nil || len(port.removed) != 0 {
		t.Fatalf("declined delete must not run")
	}
	m, _ = m.Update(runes("d"))
	_, cmd = m.Update(runes("y"))
	if cmd == nil {
		t.Fatalf("confirmed delete should run")
	}
	if _, ok := cmd().(components.SnapshotMsg); !ok {
		t.Fatalf("expected snapshot message")
	}
	if len(port.removed) != 1 || port.removed[0] != 4 {
		t.Fatalf("expected image 4 removed, got %v", port.removed)
	}
}
