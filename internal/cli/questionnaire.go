package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/formcraft/internal/config"
	"github.com/example/formcraft/internal/ports/primary"
)

var questionnaireCmd = &cobra.Command{
	Use:     "questionnaire",
	Aliases: []string{"q"},
	Short:   "Manage questionnaires",
	Long:    "Create, list, inspect, activate and delete questionnaires",
}

var questionnaireCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a new questionnaire",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		description, _ := cmd.Flags().GetString("description")
		purpose, _ := cmd.Flags().GetString("purpose")
		category, _ := cmd.Flags().GetString("category")
		tier, _ := cmd.Flags().GetString("tier")
		use, _ := cmd.Flags().GetBool("use")

		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		q, err := s.app.QuestionnaireAdapter(os.Stdout).Create(commandContext(cmd), primary.CreateQuestionnaireRequest{
			Name:        args[0],
			Description: description,
			Purpose:     purpose,
			Category:    category,
			Tier:        tier,
		})
		if err != nil {
			return err
		}

		if use {
			s.cfg.ActiveQuestionnaireID = q.ID
			if err := config.SaveConfig(s.dir, s.cfg); err != nil {
				return err
			}
			fmt.Println("  Now active")
		}
		return nil
	},
}

var questionnaireListCmd = &cobra.Command{
	Use:   "list",
	Short: "List questionnaires",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetString("status")
		limit, _ := cmd.Flags().GetInt("limit")

		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		_, err = s.app.QuestionnaireAdapter(os.Stdout).List(commandContext(cmd), primary.QuestionnaireFilters{
			Status: status,
			Limit:  limit,
		})
		return err
	},
}

var questionnaireShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show questionnaire details",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		id := s.cfg.ActiveQuestionnaireID
		if len(args) == 1 {
			id = args[0]
		}
		if id == "" {
			return fmt.Errorf("no questionnaire given and none active")
		}

		_, err = s.app.QuestionnaireAdapter(os.Stdout).Show(commandContext(cmd), id)
		return err
	},
}

var questionnaireUpdateCmd = &cobra.Command{
	Use:   "update [id]",
	Short: "Update questionnaire metadata",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		description, _ := cmd.Flags().GetString("description")
		status, _ := cmd.Flags().GetString("status")
		tier, _ := cmd.Flags().GetString("tier")

		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		return s.app.QuestionnaireAdapter(os.Stdout).Update(commandContext(cmd), primary.UpdateQuestionnaireRequest{
			ID:          args[0],
			Name:        name,
			Description: description,
			Status:      status,
			Tier:        tier,
		})
	},
}

var questionnaireUseCmd = &cobra.Command{
	Use:   "use [id]",
	Short: "Make a questionnaire the active one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		q, err := s.app.Questionnaires.GetQuestionnaire(commandContext(cmd), args[0])
		if err != nil {
			return err
		}

		s.cfg.ActiveQuestionnaireID = q.ID
		if err := config.SaveConfig(s.dir, s.cfg); err != nil {
			return err
		}
		fmt.Printf("✓ Active questionnaire: %s (%s)\n", q.ID, q.Name)
		return nil
	},
}

var questionnaireDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a questionnaire with its sections and controls",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.app.QuestionnaireAdapter(os.Stdout).Delete(commandContext(cmd), args[0]); err != nil {
			return err
		}

		if s.cfg.ActiveQuestionnaireID == args[0] {
			s.cfg.ActiveQuestionnaireID = ""
			return config.SaveConfig(s.dir, s.cfg)
		}
		return nil
	},
}

func init() {
	// questionnaire create flags
	questionnaireCreateCmd.Flags().StringP("description", "d", "", "Description")
	questionnaireCreateCmd.Flags().String("purpose", "", "Purpose")
	questionnaireCreateCmd.Flags().String("category", "", "Category")
	questionnaireCreateCmd.Flags().String("tier", "basic", "Tier (basic, professional, enterprise)")
	questionnaireCreateCmd.Flags().Bool("use", false, "Make the new questionnaire active")

	// questionnaire list flags
	questionnaireListCmd.Flags().String("status", "", "Filter by status (draft, published, archived)")
	questionnaireListCmd.Flags().Int("limit", 0, "Maximum number of results")

	// questionnaire update flags
	questionnaireUpdateCmd.Flags().String("name", "", "New name")
	questionnaireUpdateCmd.Flags().StringP("description", "d", "", "New description")
	questionnaireUpdateCmd.Flags().String("status", "", "New status (draft, published, archived)")
	questionnaireUpdateCmd.Flags().String("tier", "", "New tier")

	// Register subcommands
	questionnaireCmd.AddCommand(questionnaireCreateCmd)
	questionnaireCmd.AddCommand(questionnaireListCmd)
	questionnaireCmd.AddCommand(questionnaireShowCmd)
	questionnaireCmd.AddCommand(questionnaireUpdateCmd)
	questionnaireCmd.AddCommand(questionnaireUseCmd)
	questionnaireCmd.AddCommand(questionnaireDeleteCmd)
}

// QuestionnaireCmd returns the questionnaire command
func QuestionnaireCmd() *cobra.Command {
	return questionnaireCmd
}
