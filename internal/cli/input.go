package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/polyast/internal/extractor"
	"github.com/mvp-joe/polyast/internal/source"
)

// readInput decodes the input file named by args[0], or stdin when no file
// (or "-") is given.
func readInput(cmd *cobra.Command, args []string) ([]*source.File, error) {
	if len(args) == 0 || args[0] == "-" {
		files, err := source.Decode(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return files, nil
	}

	f, err := os.Open(args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()

	files, err := source.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	return files, nil
}

// extract runs the pipeline over files with the loaded configuration.
func extract(ctx context.Context, cmd *cobra.Command, files []*source.File, quiet bool) (*extractor.Result, error) {
	var progress extractor.Progress = extractor.NoOpProgress{}
	if !quiet {
		progress = NewCLIProgressReporter(cmd.ErrOrStderr(), false)
	}

	e, err := extractor.New(appConfig.ToExtractorConfig(),
		extractor.WithLogger(logger),
		extractor.WithProgress(progress),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create extractor: %w", err)
	}
	defer e.Close()

	return e.Run(ctx, files)
}

// loadAndExtract reads the input and extracts it.
func loadAndExtract(ctx context.Context, cmd *cobra.Command, args []string, quiet bool) (*extractor.Result, error) {
	files, err := readInput(cmd, args)
	if err != nil {
		return nil, err
	}
	return extract(ctx, cmd, files, quiet)
}
