package logging_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"studydesk/internal/platform/logging"
)

func TestNewWritesToRotatingFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "logs", "studydesk.log")
	logger, closer, err := logging.New(path, "debug")
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.WithField("panel", 1).Debug("school saved")
	if err := closer.Close(); err != nil {
		t.Fatalf("close sink: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(b), `"msg":"school saved"`) || !strings.Contains(string(b), `"panel":1`) {
		t.Fatalf("unexpected log content: %s", b)
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	t.Parallel()
	if _, _, err := logging.New(filepath.Join(t.TempDir(), "x.log"), "chatty"); err == nil {
		t.Fatalf("expected level parse error")
	}
}
