package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/polyast/internal/search"
)

var (
	searchKind  string
	searchFile  string
	searchLimit int
	searchJSON  bool
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search QUERY [file]",
	Short: "Full-text search over extracted symbols",
	Long: `Search extracts objects and looks up objects, functions and variables with
a bleve query string. Fields: name, kind, parent, file, type, signature.

Examples:
  polyast search area input.json
  polyast search 'type:i32' input.json --kind variable
  polyast search 'name:Point' input.json --file 'src/*.rs'
`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVar(&searchKind, "kind", "", "Restrict to object, function or variable")
	searchCmd.Flags().StringVar(&searchFile, "file", "", "Restrict to files matching this wildcard")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", search.DefaultLimit, "Maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Print hits as JSON")
}

func runSearch(cmd *cobra.Command, args []string) error {
	switch searchKind {
	case "", "object", "function", "variable":
	default:
		return fmt.Errorf("unknown kind %q (want object, function or variable)", searchKind)
	}

	ctx := cmd.Context()
	result, err := loadAndExtract(ctx, cmd, args[1:], true)
	if err != nil {
		return err
	}

	idx, err := search.New(ctx, result.Objects)
	if err != nil {
		return err
	}
	defer idx.Close()

	hits, err := idx.Search(ctx, args[0], &search.Options{Kind: searchKind, File: searchFile, Limit: searchLimit})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if searchJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(hits)
	}
	for _, h := range hits {
		fmt.Fprintf(out, "%-8s %s:%d  %s\n", h.Kind, h.File, h.Line, h.Signature)
	}
	return nil
}
