package out

import (
	"context"
	"fmt"
	"mime"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"studydesk/internal/modules/desk/domain"
	deskout "studydesk/internal/modules/desk/port/out"
	"studydesk/internal/platform/slug"
)

// OSImageViewer writes the image to a file under dir and hands it to the
// desktop's default viewer.
type OSImageViewer struct {
	dir     string
	command func(name string, args ...string) *exec.Cmd
}

func NewOSImageViewer(dir string) deskout.ImageViewer {
	return &OSImageViewer{dir: dir, command: exec.Command}
}

func (v *OSImageViewer) Show(_ context.Context, img domain.ReviewImage) error {
	name, err := v.opener()
	if err != nil {
		return err
	}
	path, err := v.materialize(img)
	if err != nil {
		return err
	}
	if err := v.command(name, path).Start(); err != nil {
		return fmt.Errorf("open image viewer: %w", err)
	}
	return nil
}

func (v *OSImageViewer) opener() (string, error) {
	switch runtime.GOOS {
	case "darwin":
		return "open", nil
	case "linux":
		return "xdg-open", nil
	default:
		return "", fmt.Errorf("external open is not supported on %s", runtime.GOOS)
	}
}

func (v *OSImageViewer) materialize(img domain.ReviewImage) (string, error) {
	raw, err := img.Bytes()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(v.dir, 0o755); err != nil {
		return "", fmt.Errorf("create preview dir: %w", err)
	}
	path := filepath.Join(v.dir, fmt.Sprintf("%d-%s", img.ID, previewName(img)))
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", fmt.Errorf("write preview: %w", err)
	}
	return path, nil
}

// previewName is a filesystem-safe name for img that keeps an extension the
// desktop viewer can dispatch on.
func previewName(img domain.ReviewImage) string {
	base := filepath.Base(img.Name)
	ext := strings.ToLower(filepath.Ext(base))
	stem := slug.Make(strings.TrimSuffix(base, filepath.Ext(base)))
	if ext == "" {
		if exts, _ := mime.ExtensionsByType(img.MIME); len(exts) > 0 {
			ext = exts[0]
		}
	}
	return stem + ext
}
