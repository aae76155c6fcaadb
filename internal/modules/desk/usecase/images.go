package usecase

import (
	"context"
	"fmt"

	"studydesk/internal/modules/desk/domain"
	"studydesk/internal/modules/desk/dto"
	apperrors "studydesk/internal/platform/errors"
)

func (c *Controller) requireImagesLocked() error {
	if c.closed {
		return fmt.Errorf("%w: controller closed", apperrors.ErrStoreUnavailable)
	}
	if !c.imagesReady || c.gallery == nil {
		return fmt.Errorf("%w: images", apperrors.ErrNotHydrated)
	}
	return nil
}

// AddImage validates the upload, appends it and adds it to the mirror under
// the identity the store assigned.
func (c *Controller) AddImage(ctx context.Context, input dto.AddImageInput) (dto.AddImageOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireImagesLocked(); err != nil {
		return dto.AddImageOutput{Snapshot: c.snapshotLocked()}, err
	}
	img, err := c.images.Prepare(input.Name, input.Data)
	if err != nil {
		return dto.AddImageOutput{Snapshot: c.snapshotLocked()}, err
	}
	payload, err := c.codec.EncodeImage(img)
	if err != nil {
		return dto.AddImageOutput{Snapshot: c.snapshotLocked()}, err
	}
	id, err := c.gallery.Append(ctx, payload).Await(context.WithoutCancel(ctx))
	if err != nil {
		err = storeErr("append image", err)
		c.log.WithError(err).WithField("name", img.Name).Warn("image write failed")
		return dto.AddImageOutput{Snapshot: c.snapshotLocked()}, err
	}
	img.ID = id
	next := make([]domain.ReviewImage, 0, len(c.state.Images)+1)
	next = append(next, c.state.Images...)
	c.state.Images = append(next, img)
	c.imagesGen++
	c.log.WithField("id", id).WithField("size", img.Size).Debug("image added")
	return dto.AddImageOutput{Image: toImageDTO(img), Snapshot: c.snapshotLocked()}, nil
}

// RemoveImage deletes the record with id. Unknown ids are a no-op.
func (c *Controller) RemoveImage(ctx context.Context, id int64) (dto.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireImagesLocked(); err != nil {
		return c.snapshotLocked(), err
	}
	if _, err := c.gallery.Remove(ctx, id).Await(context.WithoutCancel(ctx)); err != nil {
		err = storeErr("remove image", err)
		c.log.WithError(err).WithField("id", id).Warn("image delete failed")
		return c.snapshotLocked(), err
	}
	next := make([]domain.ReviewImage, 0, len(c.state.Images))
	for _, img := range c.state.Images {
		if img.ID != id {
			next = append(next, img)
		}
	}
	if len(next) != len(c.state.Images) {
		c.state.Images = next
		c.imagesGen++
	}
	return c.snapshotLocked(), nil
}

func (c *Controller) Image(_ context.Context, id int64) (dto.ImageDetail, error) {
	c.mu.Lock()
	img, err := c.findImageLocked(id)
	c.mu.Unlock()
	if err != nil {
		return dto.ImageDetail{}, err
	}
	raw, err := img.Bytes()
	if err != nil {
		return dto.ImageDetail{}, err
	}
	return dto.ImageDetail{Image: toImageDTO(img), Data: raw}, nil
}

// OpenImageExternal hands the image to the desktop viewer outside the lock.
func (c *Controller) OpenImageExternal(ctx context.Context, id int64) error {
	c.mu.Lock()
	img, err := c.findImageLocked(id)
	c.mu.Unlock()
	if err != nil {
		return err
	}
	if c.viewer == nil {
		return fmt.Errorf("external image viewer is not configured")
	}
	return c.viewer.Show(ctx, img)
}

func (c *Controller) findImageLocked(id int64) (domain.ReviewImage, error) {
	if err := c.requireImagesLocked(); err != nil {
		return domain.ReviewImage{}, err
	}
	for _, img := range c.state.Images {
		if img.ID == id {
			return img, nil
		}
	}
	return domain.ReviewImage{}, fmt.Errorf("%w: image %d", apperrors.ErrNotFound, id)
}
