package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/formcraft/internal/config"
	"github.com/example/formcraft/internal/db"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize formcraft in the current directory",
		Long: `Write .formcraft/config.json and create the database with the required schema.
With --seed a sample questionnaire is created and made active.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath, _ := cmd.Flags().GetString("db")
			seed, _ := cmd.Flags().GetBool("seed")

			dir, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}

			cfg, err := config.LoadConfig(dir)
			if err != nil {
				cfg = config.Default()
			}
			if dbPath != "" {
				cfg.DatabasePath = dbPath
			}
			if cfg.DatabasePath == "" {
				if cfg.DatabasePath, err = db.DefaultPath(); err != nil {
					return err
				}
			}

			fmt.Printf("Initializing formcraft database at %s\n", cfg.DatabasePath)

			store := db.New(cfg.DatabasePath)
			if err := store.Open(commandContext(cmd)); err != nil {
				return fmt.Errorf("failed to initialize schema: %w", err)
			}
			defer store.Close()
			fmt.Println("✓ Database initialized successfully")

			if seed {
				database, err := store.DB()
				if err != nil {
					return err
				}
				if err := db.SeedFixtures(database); err != nil {
					return fmt.Errorf("failed to seed sample data: %w", err)
				}
				cfg.ActiveQuestionnaireID = db.SampleQuestionnaireID
				fmt.Printf("✓ Sample questionnaire %s created\n", db.SampleQuestionnaireID)
			}

			if err := config.SaveConfig(dir, cfg); err != nil {
				return err
			}
			fmt.Println("✓ Config written to .formcraft/config.json")
			fmt.Println()
			fmt.Println("Next steps:")
			fmt.Println("  formcraft questionnaire create \"My first form\"")
			fmt.Println("  formcraft control add textInput")
			return nil
		},
	}

	cmd.Flags().String("db", "", "Database path (default ~/.formcraft/formcraft.db)")
	cmd.Flags().Bool("seed", false, "Create a sample questionnaire")
	return cmd
}
