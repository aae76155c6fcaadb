package in

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"studydesk/internal/modules/desk/dto"
	deskin "studydesk/internal/modules/desk/port/in"
)

// TUIHandler exposes the controller to the interactive views. Unlike the
// CLI it hydrates once at startup and relies on the controller's readiness
// gates afterwards.
type TUIHandler struct {
	usecase deskin.Usecase
}

func NewTUIHandler(usecase deskin.Usecase) TUIHandler {
	return TUIHandler{usecase: usecase}
}

func (h TUIHandler) Hydrate(ctx context.Context) (dto.Snapshot, error) {
	return h.usecase.Hydrate(ctx)
}

func (h TUIHandler) Snapshot(ctx context.Context) dto.Snapshot {
	return h.usecase.Snapshot(ctx)
}

func (h TUIHandler) BeginSchoolEdit(ctx context.Context, panel int) (dto.Snapshot, error) {
	return h.usecase.BeginSchoolEdit(ctx, panel)
}

func (h TUIHandler) UpdateSchoolDraft(ctx context.Context, panel int, name, date string) (dto.Snapshot, error) {
	return h.usecase.UpdateSchoolDraft(ctx, dto.SchoolInput{Panel: panel, Name: name, Date: date})
}

func (h TUIHandler) SaveSchool(ctx context.Context, panel int) (dto.Snapshot, error) {
	return h.usecase.SaveSchool(ctx, panel)
}

func (h TUIHandler) CancelSchoolEdit(ctx context.Context, panel int) (dto.Snapshot, error) {
	return h.usecase.CancelSchoolEdit(ctx, panel)
}

func (h TUIHandler) AddTodo(ctx context.Context, text string) (dto.Snapshot, error) {
	return h.usecase.AddTodo(ctx, text)
}

func (h TUIHandler) ToggleTodo(ctx context.Context, index int) (dto.Snapshot, error) {
	return h.usecase.ToggleTodo(ctx, index)
}

func (h TUIHandler) RemoveTodo(ctx context.Context, index int) (dto.Snapshot, error) {
	return h.usecase.RemoveTodo(ctx, index)
}

func (h TUIHandler) SetMaterialName(ctx context.Context, name string) (dto.Snapshot, error) {
	return h.usecase.SetMaterialName(ctx, name)
}

func (h TUIHandler) SetTotalPages(ctx context.Context, raw string) (dto.Snapshot, error) {
	return h.usecase.SetTotalPages(ctx, raw)
}

func (h TUIHandler) SetCurrentPage(ctx context.Context, raw string) (dto.Snapshot, error) {
	return h.usecase.SetCurrentPage(ctx, raw)
}

func (h TUIHandler) LoadMaterialFromPDF(ctx context.Context, path string) (dto.Snapshot, error) {
	return h.usecase.LoadMaterialFromPDF(ctx, path)
}

func (h TUIHandler) AddImageFile(ctx context.Context, path string) (dto.AddImageOutput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return dto.AddImageOutput{Snapshot: h.usecase.Snapshot(ctx)}, fmt.Errorf("read image: %w", err)
	}
	return h.usecase.AddImage(ctx, dto.AddImageInput{Name: filepath.Base(path), Data: data})
}

func (h TUIHandler) RemoveImage(ctx context.Context, id int64) (dto.Snapshot, error) {
	return h.usecase.RemoveImage(ctx, id)
}

func (h TUIHandler) Image(ctx context.Context, id int64) (dto.ImageDetail, error) {
	return h.usecase.Image(ctx, id)
}

func (h TUIHandler) OpenImageExternal(ctx context.Context, id int64) error {
	return h.usecase.OpenImageExternal(ctx, id)
}

func (h TUIHandler) EditNotes(ctx context.Context, text string) dto.Snapshot {
	return h.usecase.EditNotes(ctx, text)
}

func (h TUIHandler) FlushNotes(ctx context.Context) (dto.Snapshot, error) {
	return h.usecase.FlushNotes(ctx)
}
