package wire

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/example/formcraft/internal/config"
	"github.com/example/formcraft/internal/db"
	"github.com/example/formcraft/internal/ports/primary"
	"github.com/example/formcraft/internal/ports/secondary"
)

func newTestApp(t *testing.T) *App {
	t.Helper()

	store, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	cfg := config.Default()
	cfg.RetryDelay = "1ms"
	cfg.ResetDelay = "1ms"

	a, err := NewWithStore(cfg, store, NewLogger(cfg, io.Discard))
	if err != nil {
		t.Fatalf("failed to build app: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func TestApp_EndToEnd(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	q, err := a.Questionnaires.CreateQuestionnaire(ctx, primary.CreateQuestionnaireRequest{Name: "Feedback"})
	if err != nil {
		t.Fatalf("create questionnaire: %v", err)
	}

	engine := a.Engine(q.ID)
	if a.Engine(q.ID) != engine {
		t.Error("expected one engine per questionnaire")
	}

	first, err := engine.Add(ctx, "textInput", "")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if first.Position.Y != 0 {
		t.Errorf("expected first control at 0, got %d", first.Position.Y)
	}

	csv := "type,name,required\nemailInput,email,TRUE\n,,\ncheckbox,consent,FALSE\n"
	result, err := a.Imports.Import(ctx, primary.ImportRequest{
		QuestionnaireID: q.ID,
		Source:          strings.NewReader(csv),
		Mode:            primary.ImportModePersisted,
	})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if result.Imported != 2 {
		t.Errorf("expected 2 imported, got %d (%v)", result.Imported, result.Errors)
	}

	if _, err := engine.Reconcile(ctx); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	controls := engine.Controls()
	if len(controls) != 3 {
		t.Fatalf("expected 3 controls, got %d", len(controls))
	}
	for i, c := range controls {
		if c.Position.Y != i {
			t.Errorf("expected contiguous positions, %s at %d", c.ID, c.Position.Y)
		}
	}

	data, err := a.Exports.ExportJSON(ctx, q.ID)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	restored, err := a.Exports.Restore(ctx, data)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if restored.ID == q.ID || restored.ControlCount != 3 {
		t.Errorf("unexpected restore %+v", restored)
	}
}

func TestApp_ImportResetsRunningEngine(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	q, _ := a.Questionnaires.CreateQuestionnaire(ctx, primary.CreateQuestionnaireRequest{Name: "Feedback"})
	engine := a.Engine(q.ID)
	if _, err := engine.Reconcile(ctx); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	before := engine.Snapshot().Version

	_, err := a.Imports.Import(ctx, primary.ImportRequest{
		QuestionnaireID: q.ID,
		Source:          strings.NewReader("type,name\ntextInput,a\n"),
	})
	if err != nil {
		t.Fatalf("import: %v", err)
	}

	snap := engine.Snapshot()
	if snap.Version <= before {
		t.Errorf("expected version to advance past %d, got %d", before, snap.Version)
	}
	if len(snap.Controls) != 1 {
		t.Errorf("expected imported control projected, got %d", len(snap.Controls))
	}
}

func TestApp_OutOfBandWritesReachEveryEngine(t *testing.T) {
	a := newTestApp(t)
	a.settings.PollInterval = time.Hour
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	const engines = 5
	ids := make([]string, engines)
	feeds := make([]<-chan primary.Snapshot, engines)
	for i := range ids {
		q, err := a.Questionnaires.CreateQuestionnaire(ctx, primary.CreateQuestionnaireRequest{Name: fmt.Sprintf("Form %d", i)})
		if err != nil {
			t.Fatalf("create questionnaire: %v", err)
		}
		ids[i] = q.ID

		engine := a.Engine(q.ID)
		ch, unsubscribe := engine.Subscribe()
		defer unsubscribe()
		feeds[i] = ch
		engine.Start(ctx)
		waitForControls(t, ch, 0)
	}

	for round := 1; round <= 6; round++ {
		for i, qID := range ids {
			err := a.controlRepo.Create(ctx, &secondary.ControlRecord{
				ID:              fmt.Sprintf("%s-%d", qID, round),
				QuestionnaireID: qID,
				SectionID:       secondary.DefaultSectionID,
				Type:            "textInput",
				Name:            fmt.Sprintf("field_%d", round),
				Position:        secondary.Position{Y: round - 1},
				Size:            secondary.Size{Width: 100, Height: 40},
				Properties:      map[string]any{},
			})
			if err != nil {
				t.Fatalf("insert: %v", err)
			}
			a.RefreshKey.Bump()

			waitForControls(t, feeds[i], round)
		}
	}
}

// waitForControls waits until a snapshot with n controls is published.
func waitForControls(t *testing.T, ch <-chan primary.Snapshot, n int) {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case snap := <-ch:
			if snap.State == primary.SyncStateStable && len(snap.Controls) == n {
				return
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %d controls", n)
		}
	}
}

func TestApp_Adapters(t *testing.T) {
	a := newTestApp(t)
	var buf bytes.Buffer

	if _, err := a.QuestionnaireAdapter(&buf).List(context.Background(), primary.QuestionnaireFilters{}); err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(buf.String(), "No questionnaires found.") {
		t.Errorf("unexpected output '%s'", buf.String())
	}
}

func TestNewLogger_DebugEnv(t *testing.T) {
	t.Setenv("FORMCRAFT_DEBUG", "true")

	logger := NewLogger(&config.Config{LogLevel: "warn"}, io.Discard)
	if logger.GetLevel().String() != "debug" {
		t.Errorf("expected debug level, got %s", logger.GetLevel())
	}
}

func TestNewLogger_ConfiguredLevel(t *testing.T) {
	t.Setenv("FORMCRAFT_DEBUG", "")

	logger := NewLogger(&config.Config{LogLevel: "warn"}, io.Discard)
	if logger.GetLevel().String() != "warning" {
		t.Errorf("expected warning level, got %s", logger.GetLevel())
	}
}
