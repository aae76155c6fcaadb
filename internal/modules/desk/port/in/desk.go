package in

import (
	"context"

	"studydesk/internal/modules/desk/dto"
)

type Usecase interface {
	Hydrate(ctx context.Context) (dto.Snapshot, error)
	Snapshot(ctx context.Context) dto.Snapshot

	BeginSchoolEdit(ctx context.Context, panel int) (dto.Snapshot, error)
	UpdateSchoolDraft(ctx context.Context, input dto.SchoolInput) (dto.Snapshot, error)
	SaveSchool(ctx context.Context, panel int) (dto.Snapshot, error)
	CancelSchoolEdit(ctx context.Context, panel int) (dto.Snapshot, error)
	SetSchool(ctx context.Context, input dto.SchoolInput) (dto.Snapshot, error)

	AddTodo(ctx context.Context, text string) (dto.Snapshot, error)
	ToggleTodo(ctx context.Context, index int) (dto.Snapshot, error)
	RemoveTodo(ctx context.Context, index int) (dto.Snapshot, error)

	SetMaterialName(ctx context.Context, name string) (dto.Snapshot, error)
	SetTotalPages(ctx context.Context, raw string) (dto.Snapshot, error)
	SetCurrentPage(ctx context.Context, raw string) (dto.Snapshot, error)
	LoadMaterialFromPDF(ctx context.Context, path string) (dto.Snapshot, error)

	AddImage(ctx context.Context, input dto.AddImageInput) (dto.AddImageOutput, error)
	RemoveImage(ctx context.Context, id int64) (dto.Snapshot, error)
	Image(ctx context.Context, id int64) (dto.ImageDetail, error)
	OpenImageExternal(ctx context.Context, id int64) error

	EditNotes(ctx context.Context, text string) dto.Snapshot
	FlushNotes(ctx context.Context) (dto.Snapshot, error)

	Close(ctx context.Context) error
}
