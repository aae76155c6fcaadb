package service

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"studydesk/internal/modules/desk/domain"
	"studydesk/internal/platform/clock"
	apperrors "studydesk/internal/platform/errors"
)

type ImageService struct {
	clock    clock.Clock
	maxBytes int64
}

func NewImageService(clock clock.Clock, maxBytes int64) *ImageService {
	return &ImageService{clock: clock, maxBytes: maxBytes}
}

// Prepare validates an uploaded file and turns it into an unsaved
// ReviewImage. The type comes from the file extension when it names an
// image type, otherwise from the content; anything else is rejected before
// the size check.
func (s *ImageService) Prepare(name string, data []byte) (domain.ReviewImage, error) {
	name = strings.TrimSpace(filepath.Base(name))
	if name == "" || name == "." {
		return domain.ReviewImage{}, fmt.Errorf("%w: image name is required", apperrors.ErrInvalidInput)
	}
	mimeType := detectType(name, data)
	if !strings.HasPrefix(mimeType, "image/") {
		return domain.ReviewImage{}, fmt.Errorf("%w: %s is %s", apperrors.ErrUnsupportedImage, name, mimeType)
	}
	if int64(len(data)) > s.maxBytes {
		return domain.ReviewImage{}, fmt.Errorf("%w: %s is %d bytes, limit %d", apperrors.ErrImageTooLarge, name, len(data), s.maxBytes)
	}
	img := domain.ReviewImage{
		Data:      domain.EncodeDataURL(mimeType, data),
		Name:      name,
		MIME:      mimeType,
		Size:      int64(len(data)),
		CreatedAt: s.clock.Now(),
	}
	// Formats without a registered decoder (svg, avif) keep zero dimensions.
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		img.Width = cfg.Width
		img.Height = cfg.Height
	}
	return img, nil
}

func detectType(name string, data []byte) string {
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); byExt != "" {
		if mediaType, _, err := mime.ParseMediaType(byExt); err == nil && strings.HasPrefix(mediaType, "image/") {
			return mediaType
		}
	}
	sniffed := http.DetectContentType(data)
	if mediaType, _, err := mime.ParseMediaType(sniffed); err == nil {
		return mediaType
	}
	return sniffed
}
