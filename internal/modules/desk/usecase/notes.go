package usecase

import (
	"context"

	"studydesk/internal/modules/desk/domain"
	"studydesk/internal/modules/desk/dto"
)

// EditNotes updates the mirror at once and reschedules the single pending
// write, so a burst of edits persists only its last value.
func (c *Controller) EditNotes(_ context.Context, text string) dto.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Notes = text
	c.notesDirty = true
	c.notes.Schedule(c.persistScheduledNotes)
	return c.snapshotLocked()
}

// FlushNotes persists a pending notes write now.
func (c *Controller) FlushNotes(ctx context.Context) (dto.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.flushNotesLocked(ctx)
	return c.snapshotLocked(), nil
}

func (c *Controller) persistScheduledNotes() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || !c.notesDirty {
		return
	}
	c.writeNotesLocked(context.Background())
}

func (c *Controller) flushNotesLocked(ctx context.Context) {
	c.notes.Stop()
	if c.notesDirty {
		c.writeNotesLocked(ctx)
	}
}

func (c *Controller) writeNotesLocked(ctx context.Context) {
	c.notesDirty = false
	c.writeFieldsLocked(ctx, map[string]string{domain.KeyNotes: c.state.Notes})
}
