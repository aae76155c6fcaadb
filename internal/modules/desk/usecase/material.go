package usecase

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"strings"

	"studydesk/internal/modules/desk/domain"
	"studydesk/internal/modules/desk/dto"
	apperrors "studydesk/internal/platform/errors"
)

func (c *Controller) SetMaterialName(ctx context.Context, name string) (dto.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Material.Name = name
	c.writeFieldsLocked(ctx, map[string]string{domain.KeyMaterialName: name})
	return c.snapshotLocked(), nil
}

// SetTotalPages stores the parsed page count. Malformed input reads as 0.
func (c *Controller) SetTotalPages(ctx context.Context, raw string) (dto.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Material.TotalPages = domain.ParsePages(raw)
	c.writeFieldsLocked(ctx, map[string]string{
		domain.KeyMaterialTotal: strconv.Itoa(c.state.Material.TotalPages),
	})
	return c.snapshotLocked(), nil
}

func (c *Controller) SetCurrentPage(ctx context.Context, raw string) (dto.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Material.CurrentPage = domain.ParsePages(raw)
	c.writeFieldsLocked(ctx, map[string]string{
		domain.KeyMaterialCurrent: strconv.Itoa(c.state.Material.CurrentPage),
	})
	return c.snapshotLocked(), nil
}

// LoadMaterialFromPDF names the material after the file and takes its total
// from the page count. The current page is kept.
func (c *Controller) LoadMaterialFromPDF(ctx context.Context, path string) (dto.Snapshot, error) {
	if c.pages == nil {
		return c.Snapshot(ctx), errors.New("pdf page counting is not configured")
	}
	total, err := c.pages.CountPages(ctx, path)
	if err != nil {
		return c.Snapshot(ctx), err
	}
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if name == "" {
		return c.Snapshot(ctx), apperrors.ErrInvalidInput
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Material.Name = name
	c.state.Material.TotalPages = total
	c.writeFieldsLocked(ctx, map[string]string{
		domain.KeyMaterialName:  name,
		domain.KeyMaterialTotal: strconv.Itoa(total),
	})
	return c.snapshotLocked(), nil
}
