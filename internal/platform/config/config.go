package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	FileName             = "studydesk.yaml"
	DefaultPanels        = 3
	DefaultNotesDebounce = 800 * time.Millisecond
	DefaultMaxImageBytes = 10 * 1024 * 1024
	maxPanels            = 12
)

type Config struct {
	DataDir       string
	FieldDBPath   string
	RecordDBPath  string
	LogPath       string
	Panels        int
	NotesDebounce time.Duration
	MaxImageBytes int64
	LogLevel      string
}

// fileConfig is the optional on-disk overlay read from studydesk.yaml.
type fileConfig struct {
	Panels        int    `yaml:"panels"`
	NotesDebounce string `yaml:"notes_debounce"`
	MaxImageBytes int64  `yaml:"max_image_bytes"`
	LogLevel      string `yaml:"log_level"`
}

func New(dataDir string) (Config, error) {
	if dataDir == "" {
		return Config{}, fmt.Errorf("data dir is required")
	}
	return Config{
		DataDir:       dataDir,
		FieldDBPath:   filepath.Join(dataDir, "fields.db"),
		RecordDBPath:  filepath.Join(dataDir, "records.db"),
		LogPath:       filepath.Join(dataDir, "logs", "studydesk.log"),
		Panels:        DefaultPanels,
		NotesDebounce: DefaultNotesDebounce,
		MaxImageBytes: DefaultMaxImageBytes,
		LogLevel:      "info",
	}, nil
}

// Load builds the default config for dataDir and applies studydesk.yaml
// from the same directory when it exists.
func Load(dataDir string) (Config, error) {
	cfg, err := New(dataDir)
	if err != nil {
		return Config{}, err
	}
	raw, err := os.ReadFile(filepath.Join(dataDir, FileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if fc.Panels != 0 {
		if fc.Panels < 1 || fc.Panels > maxPanels {
			return Config{}, fmt.Errorf("panels must be between 1 and %d, got %d", maxPanels, fc.Panels)
		}
		cfg.Panels = fc.Panels
	}
	if fc.NotesDebounce != "" {
		d, err := time.ParseDuration(fc.NotesDebounce)
		if err != nil || d < 0 {
			return Config{}, fmt.Errorf("invalid notes_debounce %q", fc.NotesDebounce)
		}
		cfg.NotesDebounce = d
	}
	if fc.MaxImageBytes > 0 {
		cfg.MaxImageBytes = fc.MaxImageBytes
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
	return cfg, nil
}

// DefaultDataDir is ~/.studydesk, falling back to ./.studydesk when the home
// directory cannot be resolved.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".studydesk"
	}
	return filepath.Join(home, ".studydesk")
}
