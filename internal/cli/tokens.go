package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/polyast/internal/lexer"
	"github.com/mvp-joe/polyast/internal/source"
	"github.com/mvp-joe/polyast/internal/token"
)

// tokensCmd represents the tokens command
var tokensCmd = &cobra.Command{
	Use:   "tokens [file]",
	Short: "Print the token stream of each input line",
	Long: `Tokens runs only the lexer and prints every line's tokens, one line per
source line. Useful for checking how a declaration is seen by the parser.

Example:
  polyast tokens input.json
  src/point.rs:1  [ObjectDeclaration("struct"), Identifier("Point"), BlockOpen("{")]
`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTokens,
}

func init() {
	rootCmd.AddCommand(tokensCmd)
}

func runTokens(cmd *cobra.Command, args []string) error {
	files, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	dialects, err := source.NewDialects(appConfig.Parse.Dialects)
	if err != nil {
		return fmt.Errorf("failed to resolve dialects: %w", err)
	}

	lx := lexer.New(lexer.WithTabWidth(appConfig.Parse.TabWidth))
	tokenized, err := lx.TokenizeAll(cmd.Context(), files, dialects, nil)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, f := range tokenized {
		for _, n := range f.LineNumbers() {
			fmt.Fprintf(out, "%s:%d  %s\n", f.Path, n, token.DescribeAll(f.Tokens(n)))
		}
	}
	return nil
}
