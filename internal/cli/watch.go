package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/formcraft/internal/ports/primary"
)

// WatchCmd returns the watch command
func WatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run the sync loop and print every published snapshot",
		Long: `Start the background sync loop for a questionnaire and print each
snapshot it publishes. Changes made from another terminal show up here.
A drift watcher runs alongside and resets the loop if the projection
falls out of step with the store. Stop with Ctrl-C.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			noDrift, _ := cmd.Flags().GetBool("no-drift")

			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			qID, err := s.questionnaireID(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(commandContext(cmd))
			defer cancel()

			engine := s.app.Engine(qID)
			updates, unsubscribe := engine.Subscribe()
			defer unsubscribe()

			engine.Start(ctx)
			defer engine.Stop()

			driftErr := make(chan error, 1)
			if !noDrift {
				watcher := s.app.DriftWatcher(qID)
				go func() { driftErr <- watcher.Run(ctx) }()
			}

			fmt.Printf("Watching %s (Ctrl-C to stop)\n", qID)
			for {
				select {
				case <-ctx.Done():
					fmt.Println()
					return nil
				case err := <-driftErr:
					if err != nil && !errors.Is(err, context.Canceled) {
						return err
					}
				case snap := <-updates:
					printSnapshot(snap)
				}
			}
		},
	}

	addQuestionnaireFlag(cmd)
	cmd.Flags().Bool("no-drift", false, "Disable the drift watcher")
	return cmd
}

func stateColor(state primary.SyncState) *color.Color {
	switch state {
	case primary.SyncStateStable:
		return color.New(color.FgGreen)
	case primary.SyncStateSyncing:
		return color.New(color.FgYellow)
	case primary.SyncStateResetting:
		return color.New(color.FgRed, color.Bold)
	default:
		return color.New(color.FgHiBlack)
	}
}

func printSnapshot(snap primary.Snapshot) {
	stamp := "--:--:--"
	if !snap.LastSync.IsZero() {
		stamp = snap.LastSync.Format("15:04:05")
	}
	hash := snap.Hash
	if len(hash) > 12 {
		hash = hash[:12]
	}
	fmt.Printf("%s %-13s %s  %d control(s)  %s\n",
		stamp,
		stateColor(snap.State).Sprint(snap.State),
		color.New(color.FgHiMagenta).Sprintf("v%d", snap.Version),
		len(snap.Controls),
		hash,
	)
}
