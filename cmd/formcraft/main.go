package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/example/formcraft/internal/cli"
	"github.com/example/formcraft/internal/ctxutil"
	"github.com/example/formcraft/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "formcraft",
		Short:   "formcraft - questionnaire builder with a synchronized control canvas",
		Version: version.String(),
		Long: `formcraft builds questionnaires out of form controls laid out in sections.
Every edit is persisted first and the canvas is reconciled against the store.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.QuestionnaireCmd())
	rootCmd.AddCommand(cli.SectionCmd())
	rootCmd.AddCommand(cli.ControlCmd())
	rootCmd.AddCommand(cli.CatalogCmd())

	// Bulk transfer
	rootCmd.AddCommand(cli.ImportCmd())
	rootCmd.AddCommand(cli.ExportCmd())

	rootCmd.AddCommand(cli.WatchCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = ctxutil.WithActor(ctx, actor())

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// actor is recorded as the creator of new questionnaires.
func actor() string {
	if a := os.Getenv("FORMCRAFT_ACTOR"); a != "" {
		return a
	}
	return os.Getenv("USER")
}
