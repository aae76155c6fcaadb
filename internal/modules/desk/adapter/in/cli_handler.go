package in

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"studydesk/internal/modules/desk/dto"
	deskin "studydesk/internal/modules/desk/port/in"
)

// CLIHandler serves one-shot commands. Every call hydrates first so the
// command sees the persisted state. A command only fails on a hydration
// error when the part of the state it touches did not load.
type CLIHandler struct {
	usecase deskin.Usecase
}

func NewCLIHandler(usecase deskin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

// FieldsReady, TodosReady and ImagesReady report whether one part of a
// hydrated snapshot loaded.
func FieldsReady(s dto.Snapshot) bool { return s.Hydrated }
func TodosReady(s dto.Snapshot) bool  { return s.TodosReady }
func ImagesReady(s dto.Snapshot) bool { return s.ImagesReady }

func (h CLIHandler) hydrate(ctx context.Context, ready func(dto.Snapshot) bool) (dto.Snapshot, error) {
	snap, err := h.usecase.Hydrate(ctx)
	if err != nil && !ready(snap) {
		return dto.Snapshot{}, err
	}
	return snap, nil
}

// Status returns whatever hydrated along with any hydration error, so a
// caller can still show the parts that loaded.
func (h CLIHandler) Status(ctx context.Context) (dto.Snapshot, error) {
	return h.usecase.Hydrate(ctx)
}

func (h CLIHandler) SetSchool(ctx context.Context, panel int, name, date string) (dto.Snapshot, error) {
	if _, err := h.hydrate(ctx, FieldsReady); err != nil {
		return dto.Snapshot{}, err
	}
	return h.usecase.SetSchool(ctx, dto.SchoolInput{Panel: panel, Name: name, Date: date})
}

func (h CLIHandler) AddTodo(ctx context.Context, text string) (dto.Snapshot, error) {
	if _, err := h.hydrate(ctx, TodosReady); err != nil {
		return dto.Snapshot{}, err
	}
	return h.usecase.AddTodo(ctx, text)
}

func (h CLIHandler) ToggleTodo(ctx context.Context, index int) (dto.Snapshot, error) {
	if _, err := h.hydrate(ctx, TodosReady); err != nil {
		return dto.Snapshot{}, err
	}
	return h.usecase.ToggleTodo(ctx, index)
}

func (h CLIHandler) RemoveTodo(ctx context.Context, index int) (dto.Snapshot, error) {
	if _, err := h.hydrate(ctx, TodosReady); err != nil {
		return dto.Snapshot{}, err
	}
	return h.usecase.RemoveTodo(ctx, index)
}

// MaterialUpdate carries the material fields a command changes. Nil fields
// are left alone.
type MaterialUpdate struct {
	Name    *string
	Total   *string
	Current *string
}

func (h CLIHandler) SetMaterial(ctx context.Context, update MaterialUpdate) (dto.Snapshot, error) {
	snap, err := h.hydrate(ctx, FieldsReady)
	if err != nil {
		return dto.Snapshot{}, err
	}
	if update.Name != nil {
		if snap, err = h.usecase.SetMaterialName(ctx, *update.Name); err != nil {
			return snap, err
		}
	}
	if update.Total != nil {
		if snap, err = h.usecase.SetTotalPages(ctx, *update.Total); err != nil {
			return snap, err
		}
	}
	if update.Current != nil {
		if snap, err = h.usecase.SetCurrentPage(ctx, *update.Current); err != nil {
			return snap, err
		}
	}
	return snap, nil
}

func (h CLIHandler) LoadMaterialFromPDF(ctx context.Context, path string) (dto.Snapshot, error) {
	if _, err := h.hydrate(ctx, FieldsReady); err != nil {
		return dto.Snapshot{}, err
	}
	return h.usecase.LoadMaterialFromPDF(ctx, path)
}

func (h CLIHandler) AddImageFile(ctx context.Context, path string) (dto.AddImageOutput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return dto.AddImageOutput{}, fmt.Errorf("read image: %w", err)
	}
	if _, err := h.hydrate(ctx, ImagesReady); err != nil {
		return dto.AddImageOutput{}, err
	}
	return h.usecase.AddImage(ctx, dto.AddImageInput{Name: filepath.Base(path), Data: data})
}

func (h CLIHandler) RemoveImage(ctx context.Context, id int64) (dto.Snapshot, error) {
	if _, err := h.hydrate(ctx, ImagesReady); err != nil {
		return dto.Snapshot{}, err
	}
	return h.usecase.RemoveImage(ctx, id)
}

func (h CLIHandler) Image(ctx context.Context, id int64) (dto.ImageDetail, error) {
	if _, err := h.hydrate(ctx, ImagesReady); err != nil {
		return dto.ImageDetail{}, err
	}
	return h.usecase.Image(ctx, id)
}

func (h CLIHandler) OpenImage(ctx context.Context, id int64) error {
	if _, err := h.hydrate(ctx, ImagesReady); err != nil {
		return err
	}
	return h.usecase.OpenImageExternal(ctx, id)
}

// SetNotes replaces the notes and writes them without waiting for the
// debounce window.
func (h CLIHandler) SetNotes(ctx context.Context, text string) (dto.Snapshot, error) {
	if _, err := h.hydrate(ctx, FieldsReady); err != nil {
		return dto.Snapshot{}, err
	}
	h.usecase.EditNotes(ctx, text)
	return h.usecase.FlushNotes(ctx)
}
