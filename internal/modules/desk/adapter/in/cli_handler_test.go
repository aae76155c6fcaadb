package in_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	deskin "studydesk/internal/modules/desk/adapter/in"
	"studydesk/internal/modules/desk/dto"
	deskport "studydesk/internal/modules/desk/port/in"
)

type fakeUsecase struct {
	deskport.Usecase
	calls  []string
	images []dto.AddImageInput

	// partial, when set, is what Hydrate returns alongside hydrateErr.
	partial    dto.Snapshot
	hydrateErr error
}

func (f *fakeUsecase) Hydrate(context.Context) (dto.Snapshot, error) {
	f.calls = append(f.calls, "hydrate")
	if f.hydrateErr != nil {
		return f.partial, f.hydrateErr
	}
	return dto.Snapshot{Hydrated: true}, nil
}

func (f *fakeUsecase) AddTodo(_ context.Context, text string) (dto.Snapshot, error) {
	f.calls = append(f.calls, "todo="+text)
	return dto.Snapshot{}, nil
}

func (f *fakeUsecase) RemoveImage(_ context.Context, id int64) (dto.Snapshot, error) {
	f.calls = append(f.calls, "rm-image")
	return dto.Snapshot{}, nil
}

func (f *fakeUsecase) SetMaterialName(_ context.Context, name string) (dto.Snapshot, error) {
	f.calls = append(f.calls, "name="+name)
	return dto.Snapshot{Material: dto.Material{Name: name}}, nil
}

func (f *fakeUsecase) SetTotalPages(_ context.Context, raw string) (dto.Snapshot, error) {
	f.calls = append(f.calls, "total="+raw)
	return dto.Snapshot{}, nil
}

func (f *fakeUsecase) SetCurrentPage(_ context.Context, raw string) (dto.Snapshot, error) {
	f.calls = append(f.calls, "current="+raw)
	return dto.Snapshot{}, nil
}

func (f *fakeUsecase) AddImage(_ context.Context, input dto.AddImageInput) (dto.AddImageOutput, error) {
	f.images = append(f.images, input)
	return dto.AddImageOutput{Image: dto.Image{ID: 7, Name: input.Name}}, nil
}

func (f *fakeUsecase) EditNotes(_ context.Context, text string) dto.Snapshot {
	f.calls = append(f.calls, "notes="+text)
	return dto.Snapshot{Notes: text, NotesPending: true}
}

func (f *fakeUsecase) FlushNotes(context.Context) (dto.Snapshot, error) {
	f.calls = append(f.calls, "flush")
	return dto.Snapshot{}, nil
}

func TestSetMaterialOnlyTouchesGivenFields(t *testing.T) {
	t.Parallel()
	uc := &fakeUsecase{}
	h := deskin.NewCLIHandler(uc)
	total := "300"
	if _, err := h.SetMaterial(context.Background(), deskin.MaterialUpdate{Total: &total}); err != nil {
		t.Fatalf("set material: %v", err)
	}
	if len(uc.calls) != 2 || uc.calls[0] != "hydrate" || uc.calls[1] != "total=300" {
		t.Fatalf("unexpected calls: %v", uc.calls)
	}
}

func TestAddImageFileSendsBaseNameAndBytes(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "figure.png")
	if err := os.WriteFile(path, []byte("png-bytes"), 0o644); err != nil {
		t.Fatalf("write image: %v", err)
	}
	uc := &fakeUsecase{}
	out, err := deskin.NewCLIHandler(uc).AddImageFile(context.Background(), path)
	if err != nil {
		t.Fatalf("add image file: %v", err)
	}
	if out.Image.ID != 7 || len(uc.images) != 1 || uc.images[0].Name != "figure.png" || string(uc.images[0].Data) != "png-bytes" {
		t.Fatalf("unexpected upload: %+v %+v", out, uc.images)
	}
}

func TestAddImageFileMissingPath(t *testing.T) {
	t.Parallel()
	uc := &fakeUsecase{}
	if _, err := deskin.NewCLIHandler(uc).AddImageFile(context.Background(), filepath.Join(t.TempDir(), "nope.png")); err == nil {
		t.Fatalf("expected read error")
	}
	if len(uc.images) != 0 {
		t.Fatalf("nothing should be uploaded")
	}
}

func TestSetNotesFlushesImmediately(t *testing.T) {
	t.Parallel()
	uc := &fakeUsecase{}
	if _, err := deskin.NewCLIHandler(uc).SetNotes(context.Background(), "read ch. 4"); err != nil {
		t.Fatalf("set notes: %v", err)
	}
	want := []string{"hydrate", "notes=read ch. 4", "flush"}
	if len(uc.calls) != len(want) {
		t.Fatalf("unexpected calls: %v", uc.calls)
	}
	for i := range want {
		if uc.calls[i] != want[i] {
			t.Fatalf("call %d: want %s, got %s", i, want[i], uc.calls[i])
		}
	}
}

func TestCommandsSurviveFailureInAnotherCollection(t *testing.T) {
	t.Parallel()
	galleryDown := errors.New("images: store unavailable")
	uc := &fakeUsecase{
		partial:    dto.Snapshot{Hydrated: true, TodosReady: true},
		hydrateErr: galleryDown,
	}
	h := deskin.NewCLIHandler(uc)
	ctx := context.Background()

	if _, err := h.AddTodo(ctx, "past paper"); err != nil {
		t.Fatalf("add todo: %v", err)
	}
	if _, err := h.SetNotes(ctx, "ch. 5"); err != nil {
		t.Fatalf("set notes: %v", err)
	}
	if _, err := h.RemoveImage(ctx, 3); !errors.Is(err, galleryDown) {
		t.Fatalf("remove image should report the gallery failure, got %v", err)
	}
	for _, call := range uc.calls {
		if call == "rm-image" {
			t.Fatalf("remove image ran against an unloaded gallery: %v", uc.calls)
		}
	}
	snap, err := h.Status(ctx)
	if !errors.Is(err, galleryDown) || !deskin.TodosReady(snap) || deskin.ImagesReady(snap) {
		t.Fatalf("status should return the partial snapshot and the error, got %+v %v", snap, err)
	}
}
