package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/polyast/internal/ast"
	"github.com/mvp-joe/polyast/internal/extractor"
	"github.com/mvp-joe/polyast/internal/storage"
	"github.com/mvp-joe/polyast/internal/watcher"
)

var (
	parseFormat string
	parseDB     string
	quietFlag   bool
	watchFlag   bool
)

// parseCmd represents the parse command
var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Extract objects from source files",
	Long: `Parse tokenizes the input files, finds object declarations and prints the
extracted objects with their variables, functions and bases.

Examples:
  # Print objects as JSON
  polyast parse input.json

  # Read from stdin and print an outline
  cat input.json | polyast parse --format tree

  # Also store the run in SQLite
  polyast parse input.json --db ast.db

  # Re-parse whenever the input changes
  polyast parse input.json --watch --format tree
`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringVarP(&parseFormat, "format", "f", "json", "Output format: json or tree")
	parseCmd.Flags().StringVar(&parseDB, "db", "", "Store the run in this SQLite database (overrides storage.db_path)")
	parseCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "Disable progress bars and non-error output")
	parseCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Re-parse when the input file changes")
}

func runParse(cmd *cobra.Command, args []string) error {
	if parseFormat != "json" && parseFormat != "tree" {
		return fmt.Errorf("unknown format %q (want json or tree)", parseFormat)
	}
	if watchFlag && (len(args) == 0 || args[0] == "-") {
		return fmt.Errorf("--watch requires an input file")
	}

	// Cancel on Ctrl+C
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := parseOnce(ctx, cmd, args); err != nil {
		if !watchFlag {
			return err
		}
		logger.Error().Err(err).Msg("parse failed")
	}
	if !watchFlag {
		return nil
	}

	w, err := watcher.New(args[:1],
		watcher.WithDebounce(time.Duration(appConfig.Watch.DebounceMS)*time.Millisecond),
		watcher.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	err = w.Start(ctx, func(files []string) {
		logger.Info().Strs("files", files).Msg("input changed, re-parsing")
		if err := parseOnce(ctx, cmd, args); err != nil {
			logger.Error().Err(err).Msg("parse failed")
		}
	})
	if err != nil {
		w.Stop()
		return err
	}

	logger.Info().Str("file", args[0]).Msg("watching for changes")
	<-ctx.Done()
	return w.Stop()
}

// parseOnce extracts, prints and optionally stores one run.
func parseOnce(ctx context.Context, cmd *cobra.Command, args []string) error {
	result, err := loadAndExtract(ctx, cmd, args, quietFlag)
	if err != nil {
		return err
	}

	if err := writeResult(cmd, result); err != nil {
		return err
	}

	dbPath := parseDB
	if dbPath == "" {
		dbPath = appConfig.Storage.DBPath
	}
	if dbPath == "" {
		return nil
	}
	return storeResult(ctx, dbPath, result)
}

func writeResult(cmd *cobra.Command, result *extractor.Result) error {
	out := cmd.OutOrStdout()
	if parseFormat == "tree" {
		return ast.WriteTree(out, result.Objects)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	objects := result.Objects
	if objects == nil {
		objects = []*ast.Object{}
	}
	if err := enc.Encode(objects); err != nil {
		return fmt.Errorf("failed to encode objects: %w", err)
	}
	return nil
}

func storeResult(ctx context.Context, dbPath string, result *extractor.Result) error {
	w, err := storage.NewWriter(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer w.Close()

	runID, err := w.WriteRun(ctx, result)
	if err != nil {
		return fmt.Errorf("failed to store run: %w", err)
	}
	logger.Info().Str("run", runID).Str("db", dbPath).Msg("stored extraction run")
	return nil
}
