package app

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/example/formcraft/internal/core/control"
	"github.com/example/formcraft/internal/ports/primary"
	"github.com/example/formcraft/internal/ports/secondary"
)

// Resettable is the part of the sync engine the drift watcher drives.
type Resettable interface {
	Snapshot() primary.Snapshot
	NuclearReset(ctx context.Context) error
}

// DriftWatcher compares the projection's length with a fresh store count
// and resets the engine when they diverge beyond a tolerance.
type DriftWatcher struct {
	engine          Resettable
	controlRepo     secondary.ControlRepository
	questionnaireID string
	tolerance       int
	interval        time.Duration
	log             *log.Entry
}

// NewDriftWatcher creates a DriftWatcher.
func NewDriftWatcher(engine Resettable, controlRepo secondary.ControlRepository, questionnaireID string, tolerance int, interval time.Duration, logger *log.Entry) *DriftWatcher {
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &DriftWatcher{
		engine:          engine,
		controlRepo:     controlRepo,
		questionnaireID: questionnaireID,
		tolerance:       tolerance,
		interval:        interval,
		log:             logger.WithFields(log.Fields{"questionnaire": questionnaireID, "op": "drift"}),
	}
}

// Check compares once and resets on divergence. It reports whether a reset
// was issued. Only a STABLE projection is compared.
func (w *DriftWatcher) Check(ctx context.Context) (bool, error) {
	snap := w.engine.Snapshot()
	if snap.State != primary.SyncStateStable {
		return false, nil
	}

	stored, err := w.controlRepo.Count(ctx, secondary.ControlFilters{QuestionnaireID: w.questionnaireID})
	if err != nil {
		return false, err
	}

	projected := len(snap.Controls)
	if !control.Diverged(projected, stored, w.tolerance) {
		return false, nil
	}

	w.log.WithFields(log.Fields{"projected": projected, "stored": stored}).Warn("projection diverged from store, resetting")
	return true, w.engine.NuclearReset(ctx)
}

// Run checks on every interval until ctx is done.
func (w *DriftWatcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.Check(ctx); err != nil && ctx.Err() == nil {
				w.log.WithError(err).Warn("drift check failed")
			}
		}
	}
}
