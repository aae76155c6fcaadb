package usecase

import (
	"context"
	"fmt"

	"studydesk/internal/modules/desk/domain"
	"studydesk/internal/modules/desk/dto"
	apperrors "studydesk/internal/platform/errors"
)

func (c *Controller) requireTodosLocked() error {
	if c.closed {
		return fmt.Errorf("%w: controller closed", apperrors.ErrStoreUnavailable)
	}
	if !c.todosReady || c.todos == nil {
		return fmt.Errorf("%w: todos", apperrors.ErrNotHydrated)
	}
	return nil
}

func (c *Controller) AddTodo(ctx context.Context, text string) (dto.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireTodosLocked(); err != nil {
		return c.snapshotLocked(), err
	}
	item, err := domain.NewTodo(text)
	if err != nil {
		return c.snapshotLocked(), err
	}
	return c.commitTodosLocked(ctx, c.state.Todos.Append(item))
}

// ToggleTodo flips completion of the item at a 1-based index.
func (c *Controller) ToggleTodo(ctx context.Context, index int) (dto.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireTodosLocked(); err != nil {
		return c.snapshotLocked(), err
	}
	next, err := c.state.Todos.Toggle(index - 1)
	if err != nil {
		return c.snapshotLocked(), err
	}
	return c.commitTodosLocked(ctx, next)
}

func (c *Controller) RemoveTodo(ctx context.Context, index int) (dto.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireTodosLocked(); err != nil {
		return c.snapshotLocked(), err
	}
	next, err := c.state.Todos.Remove(index - 1)
	if err != nil {
		return c.snapshotLocked(), err
	}
	return c.commitTodosLocked(ctx, next)
}

// commitTodosLocked rewrites the whole sequence and adopts next only after
// the store confirms it. The mutex keeps replacements from overlapping.
func (c *Controller) commitTodosLocked(ctx context.Context, next domain.TodoList) (dto.Snapshot, error) {
	payloads, err := c.codec.EncodeTodos(next)
	if err != nil {
		return c.snapshotLocked(), err
	}
	if _, err := c.todos.ReplaceAll(ctx, payloads).Await(context.WithoutCancel(ctx)); err != nil {
		err = storeErr("replace todos", err)
		c.log.WithError(err).Warn("todo write failed")
		return c.snapshotLocked(), err
	}
	c.state.Todos = next
	c.todosGen++
	return c.snapshotLocked(), nil
}
