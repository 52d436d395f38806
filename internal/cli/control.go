package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/formcraft/internal/ports/primary"
)

var controlCmd = &cobra.Command{
	Use:     "control",
	Aliases: []string{"c"},
	Short:   "Manage controls on the active questionnaire",
	Long: `Add, edit, remove and reorder form controls.

Every change is written to the store and followed by a reconcile, so the
listing always reflects persisted state.`,
}

var controlAddCmd = &cobra.Command{
	Use:   "add [type]",
	Short: "Append a control of the given type",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sectionID, _ := cmd.Flags().GetString("section")

		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		qID, err := s.questionnaireID(cmd)
		if err != nil {
			return err
		}
		_, err = s.app.ControlAdapter(qID, os.Stdout).Add(commandContext(cmd), args[0], sectionID)
		return err
	},
}

var controlListCmd = &cobra.Command{
	Use:   "list",
	Short: "List controls grouped by section",
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
		_, err = s.app.ControlAdapter(qID, os.Stdout).List(commandContext(cmd))
		return err
	},
}

var controlUpdateCmd = &cobra.Command{
	Use:   "update [control-id]",
	Short: "Update a control",
	Long: `Update a control's name, type, section or properties.

Properties are given as key=value and merged into the current set:
  formcraft control update c-1 --prop label="Your email" --prop required=true`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		props, _ := cmd.Flags().GetStringArray("prop")

		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		qID, err := s.questionnaireID(cmd)
		if err != nil {
			return err
		}

		ctx := commandContext(cmd)
		engine := s.app.Engine(qID)

		var req primary.UpdateControlRequest
		if cmd.Flags().Changed("name") {
			name, _ := cmd.Flags().GetString("name")
			req.Name = &name
		}
		if cmd.Flags().Changed("type") {
			controlType, _ := cmd.Flags().GetString("type")
			if _, ok := s.app.Catalog.Lookup(controlType); !ok {
				return fmt.Errorf("unknown control type %q", controlType)
			}
			req.Type = &controlType
		}
		if cmd.Flags().Changed("section") {
			sectionID, _ := cmd.Flags().GetString("section")
			req.SectionID = &sectionID
		}

		if len(props) > 0 {
			if _, err := engine.Reconcile(ctx); err != nil {
				return err
			}
			current := findControl(engine.Controls(), args[0])
			if current == nil {
				return fmt.Errorf("control %s not found", args[0])
			}
			merged, err := mergeProperties(current.Properties, props)
			if err != nil {
				return err
			}
			req.Properties = merged
		}

		return s.app.ControlAdapter(qID, os.Stdout).Update(ctx, args[0], req)
	},
}

var controlRemoveCmd = &cobra.Command{
	Use:     "remove [control-id]",
	Aliases: []string{"rm"},
	Short:   "Remove a control",
	Args:    cobra.ExactArgs(1),
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
		return s.app.ControlAdapter(qID, os.Stdout).Remove(commandContext(cmd), args[0])
	},
}

var controlMoveCmd = &cobra.Command{
	Use:       "move [control-id] [up|down]",
	Short:     "Swap a control with its neighbour",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{primary.DirectionUp, primary.DirectionDown},
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
		return s.app.ControlAdapter(qID, os.Stdout).Move(commandContext(cmd), args[0], args[1])
	},
}

var controlReorderCmd = &cobra.Command{
	Use:   "reorder [section-id] [from] [to]",
	Short: "Drag the control at one index of a section to another",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid from index %q", args[1])
		}
		to, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid to index %q", args[2])
		}

		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		qID, err := s.questionnaireID(cmd)
		if err != nil {
			return err
		}
		return s.app.ControlAdapter(qID, os.Stdout).Reorder(commandContext(cmd), args[0], from, to)
	},
}

var controlStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Reconcile once and show the sync snapshot",
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
		if _, err := s.app.Engine(qID).Reconcile(commandContext(cmd)); err != nil {
			return err
		}
		s.app.ControlAdapter(qID, os.Stdout).Status()
		return nil
	},
}

func findControl(controls []*primary.Control, id string) *primary.Control {
	for _, c := range controls {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// mergeProperties overlays key=value pairs on a copy of current. true/false
// and integers are stored typed; anything else stays a string.
func mergeProperties(current map[string]any, pairs []string) (map[string]any, error) {
	merged := make(map[string]any, len(current)+len(pairs))
	for k, v := range current {
		merged[k] = v
	}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid property %q (expected key=value)", pair)
		}
		merged[key] = parsePropertyValue(value)
	}
	return merged, nil
}

func parsePropertyValue(value string) any {
	switch {
	case strings.EqualFold(value, "true"):
		return true
	case strings.EqualFold(value, "false"):
		return false
	}
	if n, err := strconv.Atoi(value); err == nil {
		return n
	}
	return value
}

func init() {
	for _, c := range []*cobra.Command{
		controlAddCmd, controlListCmd, controlUpdateCmd, controlRemoveCmd,
		controlMoveCmd, controlReorderCmd, controlStatusCmd,
	} {
		addQuestionnaireFlag(c)
	}

	// control add flags
	controlAddCmd.Flags().StringP("section", "s", "", "Target section (defaults to the default section)")

	// control update flags
	controlUpdateCmd.Flags().String("name", "", "New name")
	controlUpdateCmd.Flags().String("type", "", "New control type")
	controlUpdateCmd.Flags().StringP("section", "s", "", "Move to section")
	controlUpdateCmd.Flags().StringArray("prop", nil, "Property as key=value (repeatable)")

	// Register subcommands
	controlCmd.AddCommand(controlAddCmd)
	controlCmd.AddCommand(controlListCmd)
	controlCmd.AddCommand(controlUpdateCmd)
	controlCmd.AddCommand(controlRemoveCmd)
	controlCmd.AddCommand(controlMoveCmd)
	controlCmd.AddCommand(controlReorderCmd)
	controlCmd.AddCommand(controlStatusCmd)
}

// ControlCmd returns the control command
func ControlCmd() *cobra.Command {
	return controlCmd
}
