package usecase

import (
	"context"
	"fmt"
	"strings"

	"studydesk/internal/modules/desk/domain"
	"studydesk/internal/modules/desk/dto"
	apperrors "studydesk/internal/platform/errors"
)

func (c *Controller) panelIndex(panel int) (int, error) {
	if panel < 1 || panel > len(c.editors) {
		return 0, fmt.Errorf("%w: panel %d of %d", apperrors.ErrInvalidPanel, panel, len(c.editors))
	}
	return panel - 1, nil
}

// BeginSchoolEdit moves a panel into Editing with a draft of its persisted
// values.
func (c *Controller) BeginSchoolEdit(_ context.Context, panel int) (dto.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx, err := c.panelIndex(panel)
	if err != nil {
		return c.snapshotLocked(), err
	}
	c.editors[idx].Begin(c.state.Schools[idx].Draft())
	return c.snapshotLocked(), nil
}

// UpdateSchoolDraft replaces the draft only; nothing is persisted and no
// derived value moves until SaveSchool.
func (c *Controller) UpdateSchoolDraft(_ context.Context, input dto.SchoolInput) (dto.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx, err := c.panelIndex(input.Panel)
	if err != nil {
		return c.snapshotLocked(), err
	}
	if err := c.editors[idx].Update(domain.SchoolDraft{Name: input.Name, Date: input.Date}); err != nil {
		return c.snapshotLocked(), fmt.Errorf("panel %d: %w", input.Panel, err)
	}
	return c.snapshotLocked(), nil
}

// SaveSchool validates the draft and commits name and date together. An
// unparseable date keeps the panel in Editing with its draft.
func (c *Controller) SaveSchool(ctx context.Context, panel int) (dto.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.saveSchoolLocked(ctx, panel); err != nil {
		return c.snapshotLocked(), err
	}
	return c.snapshotLocked(), nil
}

func (c *Controller) saveSchoolLocked(ctx context.Context, panel int) error {
	idx, err := c.panelIndex(panel)
	if err != nil {
		return err
	}
	draft, editing := c.editors[idx].Draft()
	if !editing {
		return fmt.Errorf("panel %d: %w", panel, apperrors.ErrNotEditing)
	}
	date, err := domain.ParseExamDate(draft.Date, c.clock.Now())
	if err != nil {
		return err
	}
	target := domain.SchoolTarget{Name: strings.TrimSpace(draft.Name), ExamDate: date}
	if _, err := c.editors[idx].Commit(); err != nil {
		return err
	}
	c.state.Schools[idx] = target
	c.writeFieldsLocked(ctx, map[string]string{
		domain.SchoolNameKey(panel): target.Name,
		domain.SchoolDateKey(panel): target.DateString(),
	})
	c.log.WithField("panel", panel).Debug("school saved")
	return nil
}

func (c *Controller) CancelSchoolEdit(_ context.Context, panel int) (dto.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx, err := c.panelIndex(panel)
	if err != nil {
		return c.snapshotLocked(), err
	}
	c.editors[idx].Cancel()
	return c.snapshotLocked(), nil
}

// SetSchool runs a full edit cycle in one call. On failure the panel is left
// Idle with its previous values.
func (c *Controller) SetSchool(ctx context.Context, input dto.SchoolInput) (dto.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx, err := c.panelIndex(input.Panel)
	if err != nil {
		return c.snapshotLocked(), err
	}
	editor := c.editors[idx]
	editor.Cancel()
	editor.Begin(c.state.Schools[idx].Draft())
	if err := editor.Update(domain.SchoolDraft{Name: input.Name, Date: input.Date}); err != nil {
		editor.Cancel()
		return c.snapshotLocked(), err
	}
	if err := c.saveSchoolLocked(ctx, input.Panel); err != nil {
		editor.Cancel()
		return c.snapshotLocked(), err
	}
	return c.snapshotLocked(), nil
}
