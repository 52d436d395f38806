// Package wire is the composition root for formcraft. It builds an App from
// configuration; there are no package-level singletons.
package wire

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"

	log "github.com/sirupsen/logrus"

	cliadapter "github.com/example/formcraft/internal/adapters/cli"
	"github.com/example/formcraft/internal/adapters/sqlite"
	"github.com/example/formcraft/internal/adapters/tabular"
	"github.com/example/formcraft/internal/app"
	"github.com/example/formcraft/internal/catalog"
	"github.com/example/formcraft/internal/config"
	"github.com/example/formcraft/internal/db"
	"github.com/example/formcraft/internal/ports/primary"
)

// App holds the store, repositories and services for one process.
type App struct {
	Config *config.Config
	Store  *db.Store
	Logger *log.Logger

	Catalog    catalog.Catalog
	RefreshKey *app.RefreshKey
	Canvas     *app.DirectCanvas

	Questionnaires primary.QuestionnaireService
	Sections       primary.SectionService
	Imports        primary.ImportService
	Exports        primary.ExportService

	questionnaireRepo *sqlite.QuestionnaireRepository
	sectionRepo       *sqlite.SectionRepository
	controlRepo       *sqlite.ControlRepository
	settings          app.SyncSettings

	mu      sync.Mutex
	engines map[string]*app.ControlSyncEngine
}

// NewLogger returns a logger at the configured level. FORMCRAFT_DEBUG=true
// forces debug output.
func NewLogger(cfg *config.Config, out io.Writer) *log.Logger {
	logger := log.New()
	logger.SetOutput(out)

	level := log.InfoLevel
	if cfg != nil && cfg.LogLevel != "" {
		if parsed, err := log.ParseLevel(cfg.LogLevel); err == nil {
			level = parsed
		}
	}
	if dbg, err := strconv.ParseBool(os.Getenv("FORMCRAFT_DEBUG")); err == nil && dbg {
		level = log.DebugLevel
	}
	logger.SetLevel(level)
	return logger
}

// New opens the configured store and builds every service.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	path := cfg.DatabasePath
	if path == "" {
		var err error
		path, err = db.DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	store := db.New(path)
	if err := store.Open(ctx); err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	a, err := NewWithStore(cfg, store, NewLogger(cfg, os.Stderr))
	if err != nil {
		store.Close()
		return nil, err
	}
	return a, nil
}

// NewWithStore builds an App around an already constructed store.
func NewWithStore(cfg *config.Config, store *db.Store, logger *log.Logger) (*App, error) {
	settings, err := cfg.SyncSettings()
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:            cfg,
		Store:             store,
		Logger:            logger,
		Catalog:           catalog.New(),
		RefreshKey:        app.NewRefreshKey(),
		Canvas:            app.NewDirectCanvas(),
		questionnaireRepo: sqlite.NewQuestionnaireRepository(store),
		sectionRepo:       sqlite.NewSectionRepository(store),
		controlRepo:       sqlite.NewControlRepository(store),
		settings:          settings,
		engines:           make(map[string]*app.ControlSyncEngine),
	}

	a.Questionnaires = app.NewQuestionnaireService(a.questionnaireRepo, a.sectionRepo, a.controlRepo)
	a.Sections = app.NewSectionService(a.sectionRepo, a.controlRepo, a.RefreshKey)
	a.Imports = app.NewImportService(app.ImportServiceConfig{
		Controls:   a.controlRepo,
		Sections:   a.sectionRepo,
		Catalog:    a.Catalog,
		Parse:      tabular.ReadRows,
		RefreshKey: a.RefreshKey,
		Reset:      a.resetEngine,
		Canvas:     a.Canvas,
		Logger:     log.NewEntry(logger).WithField("component", "import"),
	})
	a.Exports = app.NewExportService(a.questionnaireRepo, a.sectionRepo, a.controlRepo, tabular.WriteControls)

	return a, nil
}

// Engine returns the sync engine for a questionnaire, creating it on first use.
func (a *App) Engine(questionnaireID string) *app.ControlSyncEngine {
	a.mu.Lock()
	defer a.mu.Unlock()

	if e, ok := a.engines[questionnaireID]; ok {
		return e
	}
	e := app.NewControlSyncEngine(app.ControlSyncEngineConfig{
		QuestionnaireID: questionnaireID,
		Controls:        a.controlRepo,
		Sections:        a.sectionRepo,
		Catalog:         a.Catalog,
		Readiness:       a.Store,
		Feed:            a.Store,
		RefreshKey:      a.RefreshKey,
		Settings:        a.settings,
		Logger:          log.NewEntry(a.Logger).WithField("component", "sync"),
	})
	a.engines[questionnaireID] = e
	return e
}

// resetEngine resets the questionnaire's engine if one is running in this process.
func (a *App) resetEngine(ctx context.Context, questionnaireID string) error {
	a.mu.Lock()
	e, ok := a.engines[questionnaireID]
	a.mu.Unlock()
	if !ok {
		return nil
	}
	return e.NuclearReset(ctx)
}

// DriftWatcher returns a watcher guarding the questionnaire's engine.
func (a *App) DriftWatcher(questionnaireID string) *app.DriftWatcher {
	return app.NewDriftWatcher(
		a.Engine(questionnaireID),
		a.controlRepo,
		questionnaireID,
		a.Config.DriftTolerance,
		a.settings.PollInterval*5,
		log.NewEntry(a.Logger).WithField("component", "drift"),
	)
}

// QuestionnaireAdapter returns a new QuestionnaireAdapter writing to out.
func (a *App) QuestionnaireAdapter(out io.Writer) *cliadapter.QuestionnaireAdapter {
	return cliadapter.NewQuestionnaireAdapter(a.Questionnaires, out)
}

// SectionAdapter returns a new SectionAdapter writing to out.
func (a *App) SectionAdapter(out io.Writer) *cliadapter.SectionAdapter {
	return cliadapter.NewSectionAdapter(a.Sections, out)
}

// ControlAdapter returns a new ControlAdapter for a questionnaire writing to out.
func (a *App) ControlAdapter(questionnaireID string, out io.Writer) *cliadapter.ControlAdapter {
	return cliadapter.NewControlAdapter(a.Engine(questionnaireID), out)
}

// TransferAdapter returns a new TransferAdapter writing to out.
func (a *App) TransferAdapter(out io.Writer) *cliadapter.TransferAdapter {
	return cliadapter.NewTransferAdapter(a.Imports, a.Exports, out)
}

// Close stops every engine and closes the store.
func (a *App) Close() error {
	a.mu.Lock()
	engines := make([]*app.ControlSyncEngine, 0, len(a.engines))
	for _, e := range a.engines {
		engines = append(engines, e)
	}
	a.mu.Unlock()

	for _, e := range engines {
		e.Stop()
	}
	return a.Store.Close()
}
