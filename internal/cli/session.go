package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/formcraft/internal/config"
	"github.com/example/formcraft/internal/wire"
)

// session is an opened App plus the directory its config came from.
type session struct {
	dir string
	cfg *config.Config
	app *wire.App
}

// openSession loads .formcraft/config.json from the working directory and
// opens the store it points at. Callers must Close the session.
func openSession(cmd *cobra.Command) (*session, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	cfg, err := config.LoadConfig(dir)
	if err != nil {
		return nil, fmt.Errorf("%w\nHint: run 'formcraft init' first", err)
	}

	a, err := wire.New(commandContext(cmd), cfg)
	if err != nil {
		return nil, err
	}
	return &session{dir: dir, cfg: cfg, app: a}, nil
}

func (s *session) Close() {
	s.app.Close()
}

// questionnaireID returns the --questionnaire flag, falling back to the
// active questionnaire from config.
func (s *session) questionnaireID(cmd *cobra.Command) (string, error) {
	id, _ := cmd.Flags().GetString("questionnaire")
	if id == "" {
		id = s.cfg.ActiveQuestionnaireID
	}
	if id == "" {
		return "", fmt.Errorf("no active questionnaire\nHint: use --questionnaire or run 'formcraft questionnaire use <id>'")
	}
	return id, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// addQuestionnaireFlag registers the shared --questionnaire flag.
func addQuestionnaireFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("questionnaire", "q", "", "Questionnaire ID (defaults to the active questionnaire)")
}
