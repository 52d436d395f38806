package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/example/formcraft/internal/catalog"
	"github.com/example/formcraft/internal/core/control"
	"github.com/example/formcraft/internal/core/section"
	"github.com/example/formcraft/internal/ports/primary"
	"github.com/example/formcraft/internal/ports/secondary"
)

// SyncSettings tunes the background loop and the recovery delays.
type SyncSettings struct {
	PollInterval time.Duration
	RetryDelay   time.Duration
	ResetDelay   time.Duration
}

// DefaultSyncSettings returns the settings used when none are configured.
func DefaultSyncSettings() SyncSettings {
	return SyncSettings{
		PollInterval: 2 * time.Second,
		RetryDelay:   300 * time.Millisecond,
		ResetDelay:   500 * time.Millisecond,
	}
}

// ControlCatalog looks up control type definitions.
type ControlCatalog interface {
	Lookup(controlType string) (catalog.Definition, bool)
}

// ControlSyncEngineConfig wires a ControlSyncEngine.
type ControlSyncEngineConfig struct {
	QuestionnaireID string
	Controls        secondary.ControlRepository
	Sections        secondary.SectionRepository
	Catalog         ControlCatalog
	Readiness       secondary.Readiness
	Feed            secondary.ChangeFeed // optional push trigger
	RefreshKey      *RefreshKey          // optional out-of-band trigger
	Settings        SyncSettings
	NewID           func() string
	Now             func() time.Time
	Logger          *log.Entry
}

// syncSnapshot is written only by Reconcile, ForceReload and NuclearReset.
type syncSnapshot struct {
	controls     []*secondary.ControlRecord
	hash         string
	version      uint64
	lastSync     time.Time
	forceSync    bool
	stableStreak int
}

// ControlSyncEngine implements primary.ControlSyncService for one questionnaire.
type ControlSyncEngine struct {
	questionnaireID string
	controlRepo     secondary.ControlRepository
	sectionRepo     secondary.SectionRepository
	catalog         ControlCatalog
	ready           secondary.Readiness
	feed            secondary.ChangeFeed
	refresh         *RefreshKey
	settings        SyncSettings
	newID           func() string
	now             func() time.Time
	log             *log.Entry

	// syncMu is held for one reconciliation (or reset) at a time.
	syncMu sync.Mutex

	mu       sync.RWMutex
	snap     syncSnapshot
	state    primary.SyncState
	selected *secondary.ControlRecord

	subsMu  sync.Mutex
	subs    map[int]chan primary.Snapshot
	nextSub int

	loopMu     sync.Mutex
	loopParent context.Context
	cancel     context.CancelFunc
	loopDone   chan struct{}
}

// NewControlSyncEngine creates an engine in the UNINITIALIZED state.
func NewControlSyncEngine(cfg ControlSyncEngineConfig) *ControlSyncEngine {
	defaults := DefaultSyncSettings()
	settings := cfg.Settings
	if settings.PollInterval <= 0 {
		settings.PollInterval = defaults.PollInterval
	}
	if settings.RetryDelay <= 0 {
		settings.RetryDelay = defaults.RetryDelay
	}
	if settings.ResetDelay <= 0 {
		settings.ResetDelay = defaults.ResetDelay
	}

	newID := cfg.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}

	return &ControlSyncEngine{
		questionnaireID: cfg.QuestionnaireID,
		controlRepo:     cfg.Controls,
		sectionRepo:     cfg.Sections,
		catalog:         cfg.Catalog,
		ready:           cfg.Readiness,
		feed:            cfg.Feed,
		refresh:         cfg.RefreshKey,
		settings:        settings,
		newID:           newID,
		now:             now,
		log:             logger.WithField("questionnaire", cfg.QuestionnaireID),
		snap:            syncSnapshot{hash: control.InitialFingerprint},
		state:           primary.SyncStateUninitialized,
		subs:            make(map[int]chan primary.Snapshot),
	}
}

// ============================================================================
// Reconciliation
// ============================================================================

// Reconcile reads the questionnaire's controls and replaces the projection
// when the fingerprint or the length differs, or a forced sync is pending.
// Otherwise the projection is left alone and the stable streak grows.
func (e *ControlSyncEngine) Reconcile(ctx context.Context) (bool, error) {
	if !e.ready.Ready() {
		e.log.WithField("op", "reconcile").Debug("store not ready, skipping")
		return false, secondary.ErrNotInitialized
	}

	e.syncMu.Lock()
	defer e.syncMu.Unlock()

	e.setState(primary.SyncStateSyncing)

	records, err := e.controlRepo.List(ctx, secondary.ControlFilters{QuestionnaireID: e.questionnaireID})
	if err != nil {
		e.settle()
		e.log.WithError(err).WithField("op", "reconcile").Warn("failed to read controls")
		return false, err
	}
	hash := control.Fingerprint(records)

	e.mu.Lock()
	replace := hash != e.snap.hash || len(records) != len(e.snap.controls) || e.snap.forceSync
	if replace {
		e.snap = syncSnapshot{
			controls: records,
			hash:     hash,
			version:  e.snap.version + 1,
			lastSync: e.now(),
		}
		e.refreshSelectionLocked()
	} else {
		e.snap.stableStreak++
	}
	e.state = primary.SyncStateStable
	out := e.snapshotLocked()
	e.mu.Unlock()

	e.log.WithFields(log.Fields{
		"op":            "reconcile",
		"replaced":      replace,
		"version":       out.Version,
		"hash":          out.Hash,
		"stable_streak": out.StableStreak,
	}).Debug("reconciled")

	if replace {
		e.publish(out)
	}
	return replace, nil
}

// settle leaves SYNCING after a failed read.
func (e *ControlSyncEngine) settle() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.snap.lastSync.IsZero() {
		e.state = primary.SyncStateUninitialized
	} else {
		e.state = primary.SyncStateStable
	}
}

func (e *ControlSyncEngine) setState(s primary.SyncState) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}

// refreshSelectionLocked keeps the selected mirror in step with a new projection.
func (e *ControlSyncEngine) refreshSelectionLocked() {
	if e.selected == nil {
		return
	}
	for _, c := range e.snap.controls {
		if c.ID == e.selected.ID {
			e.selected = c.Clone()
			return
		}
	}
}

func (e *ControlSyncEngine) requestSync(ctx context.Context, op string) {
	if _, err := e.Reconcile(ctx); err != nil {
		e.log.WithError(err).WithField("op", op).Warn("reconcile after write failed")
	}
}

// ============================================================================
// Mutations (write-through, then reconcile)
// ============================================================================

func (e *ControlSyncEngine) requireReady(op string) error {
	if e.ready.Ready() {
		return nil
	}
	e.log.WithField("op", op).Warn("store not ready, dropping write")
	return secondary.ErrNotInitialized
}

func (e *ControlSyncEngine) logFailure(op, controlID string, err error) {
	e.log.WithError(err).WithFields(log.Fields{"op": op, "control": controlID}).Warn("store operation failed")
}

// resolveSection returns sectionID when it exists, the default section otherwise.
func (e *ControlSyncEngine) resolveSection(ctx context.Context, sectionID string) (string, error) {
	if sectionID == "" || sectionID == secondary.DefaultSectionID {
		return secondary.DefaultSectionID, nil
	}
	exists, err := e.sectionRepo.Exists(ctx, e.questionnaireID, sectionID)
	if err != nil {
		return "", err
	}
	resolved := section.ResolveSectionID(sectionID, exists)
	if resolved != sectionID {
		e.log.WithField("section", sectionID).Info("unknown section, using default")
	}
	return resolved, nil
}

func (e *ControlSyncEngine) sectionControls(ctx context.Context, sectionID string) ([]*secondary.ControlRecord, error) {
	return e.controlRepo.List(ctx, secondary.ControlFilters{QuestionnaireID: e.questionnaireID, SectionID: sectionID})
}

// Add appends a control of controlType to the end of sectionID.
func (e *ControlSyncEngine) Add(ctx context.Context, controlType, sectionID string) (*primary.Control, error) {
	if err := e.requireReady("add"); err != nil {
		return nil, err
	}

	def, ok := e.catalog.Lookup(controlType)
	if !ok {
		return nil, fmt.Errorf("unknown control type %q", controlType)
	}

	target, err := e.resolveSection(ctx, sectionID)
	if err != nil {
		e.logFailure("add", "", err)
		return nil, err
	}

	siblings, err := e.sectionControls(ctx, target)
	if err != nil {
		e.logFailure("add", "", err)
		return nil, err
	}

	record := &secondary.ControlRecord{
		ID:              e.newID(),
		QuestionnaireID: e.questionnaireID,
		SectionID:       target,
		Type:            def.Type,
		Name:            def.Label,
		Position:        secondary.Position{X: 0, Y: control.NextPosition(siblings, target)},
		Size:            secondary.Size{Width: catalog.DefaultWidth, Height: def.DefaultHeight},
		Properties:      def.DefaultProperties(),
	}

	if err := e.controlRepo.Create(ctx, record); err != nil {
		e.logFailure("add", record.ID, err)
		return nil, err
	}

	e.requestSync(ctx, "add")
	return recordToControl(record), nil
}

// Update applies a partial update. Moving a control to another section
// appends it there and closes the gap it left behind.
func (e *ControlSyncEngine) Update(ctx context.Context, id string, req primary.UpdateControlRequest) error {
	if err := e.requireReady("update"); err != nil {
		return err
	}

	patch := requestToPatch(req)

	var left *secondary.ControlRecord
	if patch.SectionID != nil {
		current, err := e.controlRepo.GetByID(ctx, id)
		if err != nil {
			e.logFailure("update", id, err)
			return err
		}
		target, err := e.resolveSection(ctx, *patch.SectionID)
		if err != nil {
			e.logFailure("update", id, err)
			return err
		}
		patch.SectionID = &target

		if target != current.SectionID {
			if patch.Position == nil {
				siblings, err := e.sectionControls(ctx, target)
				if err != nil {
					e.logFailure("update", id, err)
					return err
				}
				patch.Position = &secondary.Position{X: 0, Y: control.NextPosition(siblings, target)}
			}
			left = current
		}
	}

	if err := e.controlRepo.Update(ctx, id, patch); err != nil {
		e.logFailure("update", id, err)
		return err
	}

	var compactErr error
	if left != nil {
		compactErr = e.compact(ctx, "update", left)
	}

	e.mu.Lock()
	if e.selected != nil && e.selected.ID == id {
		e.selected = applyPatch(e.selected, patch)
	}
	e.mu.Unlock()

	e.requestSync(ctx, "update")
	return compactErr
}

// compact closes the gap left in removed's section, using a fresh read.
func (e *ControlSyncEngine) compact(ctx context.Context, op string, removed *secondary.ControlRecord) error {
	siblings, err := e.sectionControls(ctx, removed.SectionID)
	if err != nil {
		e.logFailure(op, removed.ID, err)
		return err
	}
	updates := control.CompactAfterRemove(siblings, removed)
	if err := e.controlRepo.Reorder(ctx, updates); err != nil {
		e.logFailure(op, removed.ID, err)
		return err
	}
	return nil
}

// Remove deletes a control and renumbers the rest of its section.
func (e *ControlSyncEngine) Remove(ctx context.Context, id string) error {
	if err := e.requireReady("remove"); err != nil {
		return err
	}

	record, err := e.controlRepo.GetByID(ctx, id)
	if err != nil {
		e.logFailure("remove", id, err)
		return err
	}

	if err := e.controlRepo.Delete(ctx, id); err != nil {
		e.logFailure("remove", id, err)
		return err
	}

	compactErr := e.compact(ctx, "remove", record)

	e.mu.Lock()
	if e.selected != nil && e.selected.ID == id {
		e.selected = nil
	}
	e.mu.Unlock()

	e.requestSync(ctx, "remove")
	return compactErr
}

// Move swaps a control with its neighbour in one batched write.
func (e *ControlSyncEngine) Move(ctx context.Context, id, direction string) error {
	dir, err := control.ParseDirection(direction)
	if err != nil {
		return err
	}
	if err := e.requireReady("move"); err != nil {
		return err
	}

	record, err := e.controlRepo.GetByID(ctx, id)
	if err != nil {
		e.logFailure("move", id, err)
		return err
	}

	siblings, err := e.sectionControls(ctx, record.SectionID)
	if err != nil {
		e.logFailure("move", id, err)
		return err
	}

	updates, ok := control.PlanMove(control.SectionView(siblings, record.SectionID), id, dir)
	if !ok {
		e.log.WithFields(log.Fields{"op": "move", "control": id}).Debug("already at section boundary")
		return nil
	}

	if err := e.controlRepo.Reorder(ctx, updates); err != nil {
		e.logFailure("move", id, err)
		return err
	}

	e.requestSync(ctx, "move")
	return nil
}

// Reorder moves the control at dragIndex to hoverIndex within sectionID.
// Other sections are never renumbered.
func (e *ControlSyncEngine) Reorder(ctx context.Context, sectionID string, dragIndex, hoverIndex int) error {
	if err := e.requireReady("reorder"); err != nil {
		return err
	}
	if sectionID == "" {
		sectionID = secondary.DefaultSectionID
	}

	siblings, err := e.sectionControls(ctx, sectionID)
	if err != nil {
		e.logFailure("reorder", "", err)
		return err
	}

	updates, err := control.PlanReorder(control.SectionView(siblings, sectionID), dragIndex, hoverIndex)
	if err != nil {
		return err
	}
	if len(updates) == 0 {
		return nil
	}

	if err := e.controlRepo.Reorder(ctx, updates); err != nil {
		e.logFailure("reorder", "", err)
		return err
	}

	e.requestSync(ctx, "reorder")
	return nil
}

// ============================================================================
// Selection (local only)
// ============================================================================

// Select marks a projected control as selected.
func (e *ControlSyncEngine) Select(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, c := range e.snap.controls {
		if c.ID == id {
			e.selected = c.Clone()
			return nil
		}
	}
	return fmt.Errorf("control %s %w", id, secondary.ErrNotFound)
}

// ClearSelection clears the selection.
func (e *ControlSyncEngine) ClearSelection() {
	e.mu.Lock()
	e.selected = nil
	e.mu.Unlock()
}

// Selected returns the selected control, or nil.
func (e *ControlSyncEngine) Selected() *primary.Control {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return recordToControl(e.selected)
}

// ============================================================================
// Recovery
// ============================================================================

// ForceRefresh forces a replacement. When the content is unchanged it
// retries once after RetryDelay to cover a read racing a recent write.
func (e *ControlSyncEngine) ForceRefresh(ctx context.Context) error {
	e.mu.Lock()
	e.snap.forceSync = true
	before := e.snap.hash
	e.mu.Unlock()

	if _, err := e.Reconcile(ctx); err != nil {
		return err
	}
	if e.Snapshot().Hash != before {
		return nil
	}

	e.log.WithField("op", "force_refresh").Debug("content unchanged, retrying once")
	if err := waitWithContext(ctx, e.settings.RetryDelay); err != nil {
		return err
	}
	_, err := e.Reconcile(ctx)
	return err
}

// ForceReload empties the projection and reloads it after RetryDelay.
func (e *ControlSyncEngine) ForceReload(ctx context.Context) error {
	e.syncMu.Lock()
	e.mu.Lock()
	e.snap = syncSnapshot{hash: control.InitialFingerprint, version: e.snap.version + 1}
	e.state = primary.SyncStateSyncing
	out := e.snapshotLocked()
	e.mu.Unlock()
	e.publish(out)
	e.syncMu.Unlock()

	e.log.WithField("op", "force_reload").Info("projection cleared")
	if err := waitWithContext(ctx, e.settings.RetryDelay); err != nil {
		return err
	}
	_, err := e.Reconcile(ctx)
	return err
}

// NuclearReset stops the background loop, clears every piece of engine
// state including the selection, reloads after ResetDelay and restarts the
// loop if it was running.
func (e *ControlSyncEngine) NuclearReset(ctx context.Context) error {
	parent, wasRunning := e.stopLoop()

	e.syncMu.Lock()
	e.mu.Lock()
	e.snap = syncSnapshot{hash: control.InitialFingerprint, version: e.snap.version + 1}
	e.selected = nil
	e.state = primary.SyncStateResetting
	out := e.snapshotLocked()
	e.mu.Unlock()
	e.publish(out)
	e.syncMu.Unlock()

	e.log.WithField("op", "nuclear_reset").Warn("engine state cleared")

	err := waitWithContext(ctx, e.settings.ResetDelay)
	if err == nil {
		_, err = e.Reconcile(ctx)
	}

	if wasRunning {
		e.Start(parent)
	}
	return err
}

// ============================================================================
// Background loop
// ============================================================================

// Start launches the background loop: an initial load, then a reconcile on
// every poll tick, refresh-key increase and store change signal.
// Starting a running engine is a no-op.
func (e *ControlSyncEngine) Start(ctx context.Context) {
	e.loopMu.Lock()
	defer e.loopMu.Unlock()

	if e.cancel != nil {
		return
	}

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	e.loopParent = ctx
	e.cancel = cancel
	e.loopDone = done

	go e.run(loopCtx, done, e.subscribeTriggers())
}

// loopTriggers are the out-of-band signals one run of the loop listens to.
type loopTriggers struct {
	lastKey   uint64
	refreshed <-chan struct{}
	changes   <-chan struct{}
	release   []func()
}

// subscribeTriggers takes this engine's own subscriptions before the loop
// starts, so a bump right after Start is never lost.
func (e *ControlSyncEngine) subscribeTriggers() loopTriggers {
	var t loopTriggers
	if e.refresh != nil {
		ch, unsubscribe := e.refresh.Subscribe()
		t.lastKey = e.refresh.Value()
		t.refreshed = ch
		t.release = append(t.release, unsubscribe)
	}
	if e.feed != nil {
		ch, unsubscribe := e.feed.SubscribeChanges()
		t.changes = ch
		t.release = append(t.release, unsubscribe)
	}
	return t
}

// Stop cancels the background loop and waits for it to exit.
func (e *ControlSyncEngine) Stop() {
	e.stopLoop()
}

func (e *ControlSyncEngine) stopLoop() (context.Context, bool) {
	e.loopMu.Lock()
	cancel, done, parent := e.cancel, e.loopDone, e.loopParent
	e.cancel, e.loopDone = nil, nil
	e.loopMu.Unlock()

	if cancel == nil {
		return nil, false
	}
	cancel()
	<-done
	return parent, true
}

func (e *ControlSyncEngine) run(ctx context.Context, done chan struct{}, triggers loopTriggers) {
	defer close(done)
	defer func() {
		for _, release := range triggers.release {
			release()
		}
	}()

	ticker := time.NewTicker(e.settings.PollInterval)
	defer ticker.Stop()

	lastKey := triggers.lastKey

	e.trigger(ctx, "initial")

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.trigger(ctx, "poll")
		case <-triggers.refreshed:
			if key := e.refresh.Value(); key > lastKey {
				lastKey = key
				e.trigger(ctx, "refresh_key")
			}
		case <-triggers.changes:
			e.trigger(ctx, "change_feed")
		}
	}
}

func (e *ControlSyncEngine) trigger(ctx context.Context, reason string) {
	if !e.ready.Ready() {
		return
	}
	if _, err := e.Reconcile(ctx); err != nil && ctx.Err() == nil {
		e.log.WithError(err).WithField("trigger", reason).Warn("background reconcile failed")
	}
}

// ============================================================================
// Read side
// ============================================================================

// Controls returns a copy of the current projection.
func (e *ControlSyncEngine) Controls() []*primary.Control {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return recordsToControls(e.snap.controls)
}

// Snapshot returns a copy of the current snapshot.
func (e *ControlSyncEngine) Snapshot() primary.Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snapshotLocked()
}

// State returns the current synchronization state.
func (e *ControlSyncEngine) State() primary.SyncState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

func (e *ControlSyncEngine) snapshotLocked() primary.Snapshot {
	return primary.Snapshot{
		QuestionnaireID: e.questionnaireID,
		Controls:        recordsToControls(e.snap.controls),
		Hash:            e.snap.hash,
		Version:         e.snap.version,
		LastSync:        e.snap.lastSync,
		StableStreak:    e.snap.stableStreak,
		State:           e.state,
	}
}

// Subscribe returns a channel that always holds the most recent unread
// snapshot. Slow readers miss intermediate snapshots, never the latest.
func (e *ControlSyncEngine) Subscribe() (<-chan primary.Snapshot, func()) {
	ch := make(chan primary.Snapshot, 1)

	e.subsMu.Lock()
	id := e.nextSub
	e.nextSub++
	e.subs[id] = ch
	e.subsMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			e.subsMu.Lock()
			delete(e.subs, id)
			e.subsMu.Unlock()
		})
	}
}

func (e *ControlSyncEngine) publish(s primary.Snapshot) {
	e.subsMu.Lock()
	defer e.subsMu.Unlock()
	for _, ch := range e.subs {
		select {
		case ch <- s:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- s:
		default:
		}
	}
}

func waitWithContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Ensure ControlSyncEngine implements the interface
var _ primary.ControlSyncService = (*ControlSyncEngine)(nil)
