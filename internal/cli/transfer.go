package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/formcraft/internal/ports/primary"
)

// ImportCmd returns the import command
func ImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [file.csv]",
		Short: "Bulk-import controls from a CSV file",
		Long: `Import controls from a CSV file with a header row.

Recognized columns include type, name, label, required, placeholder,
options (pipe separated) and section. Other columns become properties.
Rows that fail are reported; the rest are kept.

With --direct the rows are only parsed and placed on the local canvas,
without touching the store.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			direct, _ := cmd.Flags().GetBool("direct")

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[0], err)
			}
			defer f.Close()

			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			qID, err := s.questionnaireID(cmd)
			if err != nil {
				return err
			}

			mode := primary.ImportModePersisted
			if direct {
				mode = primary.ImportModeDirect
			}

			_, err = s.app.TransferAdapter(os.Stdout).Import(commandContext(cmd), primary.ImportRequest{
				QuestionnaireID: qID,
				Source:          f,
				Mode:            mode,
			})
			return err
		},
	}

	addQuestionnaireFlag(cmd)
	cmd.Flags().Bool("direct", false, "Place rows on the local canvas without persisting")
	return cmd
}

// ExportCmd returns the export command
func ExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a questionnaire, or restore one from an export",
		Long: `Write the questionnaire as a JSON document (default) or as CSV rows.

With --restore the given JSON document is imported as a new questionnaire.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			asCSV, _ := cmd.Flags().GetBool("csv")
			restore, _ := cmd.Flags().GetString("restore")
			output, _ := cmd.Flags().GetString("output")

			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			ctx := commandContext(cmd)

			if restore != "" {
				data, err := os.ReadFile(restore)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", restore, err)
				}
				_, err = s.app.TransferAdapter(os.Stdout).Restore(ctx, data)
				return err
			}

			qID, err := s.questionnaireID(cmd)
			if err != nil {
				return err
			}

			var w io.Writer = os.Stdout
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}

			adapter := s.app.TransferAdapter(os.Stderr)
			if asCSV {
				err = adapter.ExportCSV(ctx, qID, w)
			} else {
				err = adapter.ExportJSON(ctx, qID, w)
			}
			if err != nil {
				return err
			}
			if output != "" {
				fmt.Fprintf(os.Stderr, "✓ Exported %s to %s\n", qID, output)
			}
			return nil
		},
	}

	addQuestionnaireFlag(cmd)
	cmd.Flags().Bool("csv", false, "Export controls as CSV instead of JSON")
	cmd.Flags().String("restore", "", "Restore a questionnaire from a JSON export file")
	cmd.Flags().StringP("output", "o", "", "Write to a file instead of stdout")
	return cmd
}
