package usecase_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	deskadapter "studydesk/internal/modules/desk/adapter/out"
	"studydesk/internal/modules/desk/dto"
	apperrors "studydesk/internal/platform/errors"
)

func flakyDeps(t *testing.T) (deps, *flakyRecords) {
	t.Helper()
	records := newFlakyRecords(deskadapter.NewSQLiteRecordStore(filepath.Join(t.TempDir(), "records.db")))
	return deps{fields: newMemoryFields(), records: records}, records
}

func TestRecordMutationsWaitForHydration(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	d, _ := flakyDeps(t)
	ctl := newController(t, d)

	if _, err := ctl.AddTodo(ctx, "too early"); !errors.Is(err, apperrors.ErrNotHydrated) {
		t.Fatalf("expected not hydrated for todos, got %v", err)
	}
	out, err := ctl.AddImage(ctx, dto.AddImageInput{Name: "a.png", Data: pngBytes(t, 2, 2)})
	if !errors.Is(err, apperrors.ErrNotHydrated) {
		t.Fatalf("expected not hydrated for images, got %v", err)
	}
	if out.Snapshot.TodosReady || out.Snapshot.ImagesReady || len(out.Snapshot.Images) != 0 {
		t.Fatalf("unexpected snapshot before hydration: %+v", out.Snapshot)
	}
}

func TestHydrateGatesEachCollectionIndependently(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	d, records := flakyDeps(t)
	records.openFails["images"] = 1
	ctl := newController(t, d)

	snap, err := ctl.Hydrate(ctx)
	if !errors.Is(err, apperrors.ErrStoreUnavailable) {
		t.Fatalf("expected store unavailable, got %v", err)
	}
	if !snap.Hydrated || !snap.TodosReady || snap.ImagesReady {
		t.Fatalf("expected todos ready and images gated, got %+v", snap)
	}
	if _, err := ctl.AddTodo(ctx, "still works"); err != nil {
		t.Fatalf("todos should be usable: %v", err)
	}
	if _, err := ctl.AddImage(ctx, dto.AddImageInput{Name: "a.png", Data: pngBytes(t, 2, 2)}); !errors.Is(err, apperrors.ErrNotHydrated) {
		t.Fatalf("images should stay gated, got %v", err)
	}

	snap, err = ctl.Hydrate(ctx)
	if err != nil {
		t.Fatalf("retry hydrate: %v", err)
	}
	if !snap.ImagesReady || len(snap.Todos) != 1 {
		t.Fatalf("retry should open images and keep todos, got %+v", snap)
	}
}

func TestAddTodo(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	d, _ := flakyDeps(t)
	ctl := newController(t, d)
	hydrated(t, ctl)

	for _, blank := range []string{"", "   ", "\t\n"} {
		snap, err := ctl.AddTodo(ctx, blank)
		if !errors.Is(err, apperrors.ErrEmptyTodo) {
			t.Fatalf("expected empty todo error for %q, got %v", blank, err)
		}
		if len(snap.Todos) != 0 {
			t.Fatalf("blank todo must not change the sequence, got %+v", snap.Todos)
		}
	}
	snap, err := ctl.AddTodo(ctx, "  review chapter 3 ")
	if err != nil {
		t.Fatalf("add todo: %v", err)
	}
	if len(snap.Todos) != 1 || snap.Todos[0] != (dto.Todo{Index: 1, Text: "review chapter 3"}) {
		t.Fatalf("expected one pending todo, got %+v", snap.Todos)
	}
}

func TestToggleTodoFlipsOnlyThatItemAndPersists(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()
	ctl := newController(t, sqliteDeps(t, dir))
	hydrated(t, ctl)
	for _, text := range []string{"one", "two", "three"} {
		if _, err := ctl.AddTodo(ctx, text); err != nil {
			t.Fatalf("add %s: %v", text, err)
		}
	}
	snap, err := ctl.ToggleTodo(ctx, 2)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	want := []dto.Todo{{Index: 1, Text: "one"}, {Index: 2, Text: "two", Completed: true}, {Index: 3, Text: "three"}}
	if len(snap.Todos) != len(want) {
		t.Fatalf("length changed: %+v", snap.Todos)
	}
	for i := range want {
		if snap.Todos[i] != want[i] {
			t.Fatalf("item %d: want %+v, got %+v", i+1, want[i], snap.Todos[i])
		}
	}
	if snap.OpenTodos != 2 {
		t.Fatalf("expected 2 open todos, got %d", snap.OpenTodos)
	}
	if _, err := ctl.ToggleTodo(ctx, 4); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found for out of range index, got %v", err)
	}
	if err := ctl.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}

	reloaded := newController(t, sqliteDeps(t, dir))
	got, err := reloaded.Hydrate(ctx)
	if err != nil {
		t.Fatalf("rehydrate: %v", err)
	}
	for i := range want {
		if got.Todos[i] != want[i] {
			t.Fatalf("persisted item %d: want %+v, got %+v", i+1, want[i], got.Todos[i])
		}
	}
}

func TestRemoveTodoKeepsOrder(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	d, _ := flakyDeps(t)
	ctl := newController(t, d)
	hydrated(t, ctl)
	for _, text := range []string{"a", "b", "c"} {
		if _, err := ctl.AddTodo(ctx, text); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	snap, err := ctl.RemoveTodo(ctx, 2)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(snap.Todos) != 2 || snap.Todos[0].Text != "a" || snap.Todos[1].Text != "c" || snap.Todos[1].Index != 2 {
		t.Fatalf("unexpected todos after remove: %+v", snap.Todos)
	}
}

func TestTodoWriteFailurePreservesMirror(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	d, records := flakyDeps(t)
	ctl := newController(t, d)
	hydrated(t, ctl)
	if _, err := ctl.AddTodo(ctx, "kept"); err != nil {
		t.Fatalf("add: %v", err)
	}

	records.setFailWrites(true)
	for name, op := range map[string]func() (dto.Snapshot, error){
		"add":    func() (dto.Snapshot, error) { return ctl.AddTodo(ctx, "lost") },
		"toggle": func() (dto.Snapshot, error) { return ctl.ToggleTodo(ctx, 1) },
		"remove": func() (dto.Snapshot, error) { return ctl.RemoveTodo(ctx, 1) },
	} {
		snap, err := op()
		if !errors.Is(err, apperrors.ErrStoreUnavailable) {
			t.Fatalf("%s: expected store unavailable, got %v", name, err)
		}
		if len(snap.Todos) != 1 || snap.Todos[0] != (dto.Todo{Index: 1, Text: "kept"}) {
			t.Fatalf("%s: mirror changed on failure: %+v", name, snap.Todos)
		}
	}

	records.setFailWrites(false)
	if _, err := ctl.Hydrate(ctx); err != nil {
		t.Fatalf("rehydrate: %v", err)
	}
	if snap := ctl.Snapshot(ctx); len(snap.Todos) != 1 || snap.Todos[0].Completed {
		t.Fatalf("store should hold only the committed sequence, got %+v", snap.Todos)
	}
}

func TestAddImageValidation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	d, _ := flakyDeps(t)
	ctl := newController(t, d)
	hydrated(t, ctl)

	if _, err := ctl.AddImage(ctx, dto.AddImageInput{Name: "notes.txt", Data: []byte("plain text notes")}); !errors.Is(err, apperrors.ErrUnsupportedImage) {
		t.Fatalf("expected unsupported image, got %v", err)
	}
	huge := append(pngBytes(t, 2, 2), make([]byte, 15*1024*1024)...)
	if _, err := ctl.AddImage(ctx, dto.AddImageInput{Name: "huge.png", Data: huge}); !errors.Is(err, apperrors.ErrImageTooLarge) {
		t.Fatalf("expected image too large, got %v", err)
	}
	if snap := ctl.Snapshot(ctx); len(snap.Images) != 0 {
		t.Fatalf("rejected uploads must not add images, got %+v", snap.Images)
	}

	valid := append(pngBytes(t, 8, 6), make([]byte, 2*1024*1024)...)
	out, err := ctl.AddImage(ctx, dto.AddImageInput{Name: "scan.png", Data: valid})
	if err != nil {
		t.Fatalf("add valid image: %v", err)
	}
	if out.Image.ID == 0 || out.Image.Name != "scan.png" || out.Image.Size != int64(len(valid)) {
		t.Fatalf("unexpected image: %+v", out.Image)
	}
	if len(out.Snapshot.Images) != 1 || out.Snapshot.Images[0].ID != out.Image.ID {
		t.Fatalf("expected exactly one gallery entry, got %+v", out.Snapshot.Images)
	}

	detail, err := ctl.Image(ctx, out.Image.ID)
	if err != nil {
		t.Fatalf("image detail: %v", err)
	}
	if len(detail.Data) != len(valid) || detail.Width != 8 || detail.Height != 6 {
		t.Fatalf("unexpected detail: %+v (%d bytes)", detail.Image, len(detail.Data))
	}
}

func TestRemoveImageByIdentity(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	d, _ := flakyDeps(t)
	ctl := newController(t, d)
	hydrated(t, ctl)

	ids := []int64{}
	for _, name := range []string{"a.png", "b.png", "c.png"} {
		out, err := ctl.AddImage(ctx, dto.AddImageInput{Name: name, Data: pngBytes(t, 2, 2)})
		if err != nil {
			t.Fatalf("add %s: %v", name, err)
		}
		ids = append(ids, out.Image.ID)
	}
	snap, err := ctl.RemoveImage(ctx, ids[1])
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(snap.Images) != 2 || snap.Images[0].ID != ids[0] || snap.Images[1].ID != ids[2] {
		t.Fatalf("expected only the matching image removed, got %+v", snap.Images)
	}
	snap, err = ctl.RemoveImage(ctx, ids[2]+1000)
	if err != nil {
		t.Fatalf("removing an unknown id must not fail: %v", err)
	}
	if len(snap.Images) != 2 {
		t.Fatalf("unknown id must be a no-op, got %+v", snap.Images)
	}
	if _, err := ctl.Image(ctx, ids[1]); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected removed image to be gone, got %v", err)
	}

	if _, err := ctl.Hydrate(ctx); err != nil {
		t.Fatalf("rehydrate: %v", err)
	}
	if got := ctl.Snapshot(ctx).Images; len(got) != 2 || got[0].ID != ids[0] || got[1].ID != ids[2] {
		t.Fatalf("store disagrees with mirror: %+v", got)
	}
}

func TestImageWriteFailurePreservesGallery(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	d, records := flakyDeps(t)
	ctl := newController(t, d)
	hydrated(t, ctl)
	out, err := ctl.AddImage(ctx, dto.AddImageInput{Name: "kept.png", Data: pngBytes(t, 2, 2)})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	records.setFailWrites(true)
	failed, err := ctl.AddImage(ctx, dto.AddImageInput{Name: "lost.png", Data: pngBytes(t, 2, 2)})
	if !errors.Is(err, apperrors.ErrStoreUnavailable) {
		t.Fatalf("expected store unavailable, got %v", err)
	}
	if len(failed.Snapshot.Images) != 1 {
		t.Fatalf("failed add must not grow the gallery, got %+v", failed.Snapshot.Images)
	}
	snap, err := ctl.RemoveImage(ctx, out.Image.ID)
	if !errors.Is(err, apperrors.ErrStoreUnavailable) {
		t.Fatalf("expected store unavailable on remove, got %v", err)
	}
	if len(snap.Images) != 1 {
		t.Fatalf("failed remove must keep the image, got %+v", snap.Images)
	}
}

func TestOpenImageExternalHandsDecodedImageToViewer(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	d, _ := flakyDeps(t)
	viewer := &recordingViewer{}
	d.viewer = viewer
	ctl := newController(t, d)
	hydrated(t, ctl)
	out, err := ctl.AddImage(ctx, dto.AddImageInput{Name: "map.png", Data: pngBytes(t, 3, 3)})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := ctl.OpenImageExternal(ctx, out.Image.ID); err != nil {
		t.Fatalf("open external: %v", err)
	}
	if len(viewer.shown) != 1 || viewer.shown[0].ID != out.Image.ID || viewer.shown[0].MIME != "image/png" {
		t.Fatalf("unexpected viewer calls: %+v", viewer.shown)
	}
	if err := ctl.OpenImageExternal(ctx, out.Image.ID+1); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestHydrateSkipsUnreadableImageRecord(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()

	first := newController(t, sqliteDeps(t, dir))
	hydrated(t, first)
	added, err := first.AddImage(ctx, dto.AddImageInput{Name: "good.png", Data: pngBytes(t, 2, 2)})
	if err != nil {
		t.Fatalf("add image: %v", err)
	}

	raw := deskadapter.NewSQLiteRecordStore(filepath.Join(dir, "records.db"))
	t.Cleanup(func() { _ = raw.Close() })
	coll, err := raw.Open(ctx, "images").Await(ctx)
	if err != nil {
		t.Fatalf("open images: %v", err)
	}
	if _, err := coll.Append(ctx, []byte("{not json")).Await(ctx); err != nil {
		t.Fatalf("append corrupt row: %v", err)
	}

	ctl := newController(t, sqliteDeps(t, dir))
	snap, err := ctl.Hydrate(ctx)
	if err != nil {
		t.Fatalf("a corrupt row should not fail hydration: %v", err)
	}
	if !snap.Hydrated || !snap.TodosReady || !snap.ImagesReady {
		t.Fatalf("every part should load, got %+v", snap)
	}
	if len(snap.Images) != 1 || snap.Images[0].ID != added.Image.ID {
		t.Fatalf("expected only the readable image, got %+v", snap.Images)
	}
	if _, err := ctl.AddTodo(ctx, "revise"); err != nil {
		t.Fatalf("add todo: %v", err)
	}
	ctl.EditNotes(ctx, "still editable")
	if snap, err = ctl.FlushNotes(ctx); err != nil || snap.Notes != "still editable" {
		t.Fatalf("flush notes: %+v %v", snap, err)
	}
	if _, err := ctl.RemoveImage(ctx, added.Image.ID); err != nil {
		t.Fatalf("remove image: %v", err)
	}
}
