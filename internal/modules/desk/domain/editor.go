package domain

import apperrors "studydesk/internal/platform/errors"

// Editor is the Idle/Editing state machine of a field group with an
// explicit save step. Only the draft changes while editing; the caller
// persists the value returned by Commit.
type Editor[T any] struct {
	editing bool
	draft   T
}

func (e *Editor[T]) Editing() bool {
	return e.editing
}

// Begin enters Editing with a draft copied from the persisted value. A panel
// already being edited keeps its draft.
func (e *Editor[T]) Begin(current T) T {
	if !e.editing {
		e.editing = true
		e.draft = current
	}
	return e.draft
}

func (e *Editor[T]) Update(draft T) error {
	if !e.editing {
		return apperrors.ErrNotEditing
	}
	e.draft = draft
	return nil
}

func (e *Editor[T]) Draft() (T, bool) {
	return e.draft, e.editing
}

func (e *Editor[T]) Commit() (T, error) {
	if !e.editing {
		var zero T
		return zero, apperrors.ErrNotEditing
	}
	out := e.draft
	e.Cancel()
	return out, nil
}

func (e *Editor[T]) Cancel() {
	var zero T
	e.editing = false
	e.draft = zero
}
