package apperrors

import "errors"

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrNotFound         = errors.New("not found")
	ErrInvalidPanel     = errors.New("invalid panel")
	ErrEmptyTodo        = errors.New("todo text is empty")
	ErrUnsupportedImage = errors.New("file is not an image")
	ErrImageTooLarge    = errors.New("image exceeds size limit")
	ErrNotEditing       = errors.New("panel is not being edited")
	ErrNotHydrated      = errors.New("store not hydrated yet")
	ErrStoreUnavailable = errors.New("store unavailable")
)
