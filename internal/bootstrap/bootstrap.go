package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	deskinadapter "studydesk/internal/modules/desk/adapter/in"
	deskoutadapter "studydesk/internal/modules/desk/adapter/out"
	deskin "studydesk/internal/modules/desk/port/in"
	deskservice "studydesk/internal/modules/desk/service"
	deskusecase "studydesk/internal/modules/desk/usecase"
	"studydesk/internal/platform/clock"
	"studydesk/internal/platform/config"
	"studydesk/internal/platform/logging"
	uiapp "studydesk/internal/ui/app"
)

type App struct {
	DataDir string
	DeskCLI deskinadapter.CLIHandler
	DeskTUI deskinadapter.TUIHandler
	Log     logrus.FieldLogger

	desk      deskin.Usecase
	logCloser io.Closer
}

func New(cfg config.Config) (*App, error) {
	logger, logCloser, err := logging.New(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("new logger: %w", err)
	}
	clk := clock.SystemClock{}

	fields, err := deskoutadapter.NewSQLiteFieldStore(cfg.FieldDBPath)
	if err != nil {
		_ = logCloser.Close()
		return nil, fmt.Errorf("new field store: %w", err)
	}
	records := deskoutadapter.NewSQLiteRecordStore(cfg.RecordDBPath)

	deskUC := deskusecase.NewController(
		clk,
		logger,
		fields,
		records,
		deskservice.NewImageService(clk, cfg.MaxImageBytes),
		deskoutadapter.NewPDFPageCounter(),
		deskoutadapter.NewOSImageViewer(filepath.Join(cfg.DataDir, "previews")),
		deskusecase.Options{Panels: cfg.Panels, NotesDebounce: cfg.NotesDebounce},
	)
	logger.WithField("data_dir", cfg.DataDir).Debug("desk ready")

	return &App{
		DataDir:   cfg.DataDir,
		DeskCLI:   deskinadapter.NewCLIHandler(deskUC),
		DeskTUI:   deskinadapter.NewTUIHandler(deskUC),
		Log:       logger,
		desk:      deskUC,
		logCloser: logCloser,
	}, nil
}

// Close flushes pending notes and releases both stores and the log file.
func (a *App) Close(ctx context.Context) error {
	return errors.Join(a.desk.Close(ctx), a.logCloser.Close())
}

func RunTUI(app *App) error {
	model := uiapp.NewModel(app.DataDir, app.DeskTUI)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := program.Run()
	return err
}
