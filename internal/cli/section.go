package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/example/formcraft/internal/ports/primary"
)

var sectionCmd = &cobra.Command{
	Use:   "section",
	Short: "Manage questionnaire sections",
}

var sectionCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Append a section",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, _ := cmd.Flags().GetString("id")
		description, _ := cmd.Flags().GetString("description")
		color, _ := cmd.Flags().GetString("color")
		icon, _ := cmd.Flags().GetString("icon")
		required, _ := cmd.Flags().GetBool("required")

		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		qID, err := s.questionnaireID(cmd)
		if err != nil {
			return err
		}

		_, err = s.app.SectionAdapter(os.Stdout).Create(commandContext(cmd), primary.CreateSectionRequest{
			QuestionnaireID: qID,
			ID:              id,
			Name:            args[0],
			Description:     description,
			Color:           color,
			Icon:            icon,
			Required:        required,
		})
		return err
	},
}

var sectionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sections in display order",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		qID, err := s.questionnaireID(cmd)
		if err != nil {
			return err
		}
		_, err = s.app.SectionAdapter(os.Stdout).List(commandContext(cmd), qID)
		return err
	},
}

var sectionDeleteCmd = &cobra.Command{
	Use:   "delete [section-id]",
	Short: "Delete a section, moving its controls to the default section",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		qID, err := s.questionnaireID(cmd)
		if err != nil {
			return err
		}
		_, err = s.app.SectionAdapter(os.Stdout).Delete(commandContext(cmd), qID, args[0])
		return err
	},
}

func init() {
	for _, c := range []*cobra.Command{sectionCreateCmd, sectionListCmd, sectionDeleteCmd} {
		addQuestionnaireFlag(c)
	}

	// section create flags
	sectionCreateCmd.Flags().String("id", "", "Section ID (generated when empty)")
	sectionCreateCmd.Flags().StringP("description", "d", "", "Description")
	sectionCreateCmd.Flags().String("color", "", "Display color (default #3b82f6)")
	sectionCreateCmd.Flags().String("icon", "", "Icon name (default folder)")
	sectionCreateCmd.Flags().Bool("required", false, "Mark the section as required")

	// Register subcommands
	sectionCmd.AddCommand(sectionCreateCmd)
	sectionCmd.AddCommand(sectionListCmd)
	sectionCmd.AddCommand(sectionDeleteCmd)
}

// SectionCmd returns the section command
func SectionCmd() *cobra.Command {
	return sectionCmd
}
