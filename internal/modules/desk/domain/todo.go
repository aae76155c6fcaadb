package domain

import (
	"fmt"
	"strings"

	apperrors "studydesk/internal/platform/errors"
)

type TodoItem struct {
	Text      string
	Completed bool
}

func NewTodo(text string) (TodoItem, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return TodoItem{}, apperrors.ErrEmptyTodo
	}
	return TodoItem{Text: text}, nil
}

// TodoList is the ordered todo sequence. Every operation returns a new
// slice and leaves the receiver untouched, so a failed write can keep the
// previous list.
type TodoList []TodoItem

func (l TodoList) Append(item TodoItem) TodoList {
	out := make(TodoList, 0, len(l)+1)
	out = append(out, l...)
	return append(out, item)
}

func (l TodoList) Toggle(index int) (TodoList, error) {
	if err := l.check(index); err != nil {
		return nil, err
	}
	out := append(TodoList(nil), l...)
	out[index].Completed = !out[index].Completed
	return out, nil
}

func (l TodoList) Remove(index int) (TodoList, error) {
	if err := l.check(index); err != nil {
		return nil, err
	}
	out := make(TodoList, 0, len(l)-1)
	out = append(out, l[:index]...)
	return append(out, l[index+1:]...), nil
}

func (l TodoList) Pending() int {
	n := 0
	for _, item := range l {
		if !item.Completed {
			n++
		}
	}
	return n
}

func (l TodoList) check(index int) error {
	if index < 0 || index >= len(l) {
		return fmt.Errorf("%w: todo %d of %d", apperrors.ErrNotFound, index+1, len(l))
	}
	return nil
}
