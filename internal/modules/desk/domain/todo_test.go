package domain_test

import (
	"errors"
	"testing"

	"studydesk/internal/modules/desk/domain"
	apperrors "studydesk/internal/platform/errors"
)

func TestNewTodoRejectsBlankText(t *testing.T) {
	t.Parallel()
	for _, text := range []string{"", "   ", "\t\n"} {
		if _, err := domain.NewTodo(text); !errors.Is(err, apperrors.ErrEmptyTodo) {
			t.Fatalf("expected empty todo error for %q, got %v", text, err)
		}
	}
	item, err := domain.NewTodo("  review chapter 3 ")
	if err != nil {
		t.Fatalf("new todo: %v", err)
	}
	if item.Text != "review chapter 3" || item.Completed {
		t.Fatalf("unexpected item: %+v", item)
	}
}

func TestTodoListOperationsAreCopyOnWrite(t *testing.T) {
	t.Parallel()
	base := domain.TodoList{{Text: "a"}, {Text: "b"}, {Text: "c"}}

	toggled, err := base.Toggle(1)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if base[1].Completed {
		t.Fatalf("toggle mutated the receiver")
	}
	for i, item := range toggled {
		if item.Text != base[i].Text {
			t.Fatalf("order changed: %+v", toggled)
		}
		if item.Completed != (i == 1) {
			t.Fatalf("only item 1 should flip: %+v", toggled)
		}
	}
	if toggled.Pending() != 2 {
		t.Fatalf("expected 2 pending, got %d", toggled.Pending())
	}

	removed, err := base.Remove(0)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(removed) != 2 || removed[0].Text != "b" || len(base) != 3 {
		t.Fatalf("unexpected remove result %+v (base %+v)", removed, base)
	}

	appended := base.Append(domain.TodoItem{Text: "d"})
	if len(appended) != 4 || len(base) != 3 || appended[3].Text != "d" {
		t.Fatalf("unexpected append result %+v", appended)
	}

	if _, err := base.Toggle(3); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := base.Remove(-1); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
