package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/polyast/internal/hierarchy"
)

var (
	hierarchyObject string
	hierarchyOrder  bool
)

// hierarchyCmd represents the hierarchy command
var hierarchyCmd = &cobra.Command{
	Use:   "hierarchy [file]",
	Short: "Show the inheritance hierarchy of extracted objects",
	Long: `Hierarchy extracts objects and prints the inheritance tree, bases first.
Bases that are not declared in the input are marked external.

Examples:
  # Whole tree
  polyast hierarchy input.json

  # Ancestors and descendants of one object
  polyast hierarchy input.json --object Point

  # Bases-first ordering, one name per line
  polyast hierarchy input.json --order
`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHierarchy,
}

func init() {
	rootCmd.AddCommand(hierarchyCmd)
	hierarchyCmd.Flags().StringVarP(&hierarchyObject, "object", "o", "", "Show ancestors and descendants of this object")
	hierarchyCmd.Flags().BoolVar(&hierarchyOrder, "order", false, "Print a bases-first topological order")
}

func runHierarchy(cmd *cobra.Command, args []string) error {
	result, err := loadAndExtract(cmd.Context(), cmd, args, true)
	if err != nil {
		return err
	}

	h, err := hierarchy.Build(result.Objects)
	if err != nil {
		return fmt.Errorf("failed to build hierarchy: %w", err)
	}

	out := cmd.OutOrStdout()
	switch {
	case hierarchyObject != "":
		up, err := h.Ancestors(hierarchyObject)
		if err != nil {
			return err
		}
		down, err := h.Descendants(hierarchyObject)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "ancestors:   %s\n", strings.Join(up, ", "))
		fmt.Fprintf(out, "descendants: %s\n", strings.Join(down, ", "))
	case hierarchyOrder:
		order, err := h.TopologicalOrder()
		if err != nil {
			return err
		}
		for _, name := range order {
			fmt.Fprintln(out, name)
		}
	default:
		return h.Write(out)
	}
	return nil
}
