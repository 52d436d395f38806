package cli

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/formcraft/internal/catalog"
)

// CatalogCmd returns the catalog command
func CatalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List the control types that can be added",
		RunE: func(cmd *cobra.Command, args []string) error {
			printCatalog(catalog.New())
			return nil
		},
	}
}

func printCatalog(c catalog.Catalog) {
	header := color.New(color.FgHiMagenta, color.Bold)

	category := ""
	var w *tabwriter.Writer
	for _, def := range c.All() {
		if def.Category != category {
			if w != nil {
				w.Flush()
				fmt.Println()
			}
			category = def.Category
			fmt.Println(header.Sprint(strings.ToUpper(category)))
			w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		}

		props := make([]string, 0, len(def.Properties))
		for _, p := range def.Properties {
			props = append(props, p.Name)
		}
		fmt.Fprintf(w, "  %s\t%s\t%dpx\t%s\n", def.Type, def.Label, def.DefaultHeight, strings.Join(props, ", "))
	}
	if w != nil {
		w.Flush()
	}
}
