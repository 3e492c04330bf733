package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mvp-joe/polyast/internal/config"
)

var (
	cfgFile  string
	verbose  bool
	logLevel string

	// Set by the root command before any subcommand runs
	appConfig *config.Config
	logger    = zerolog.Nop()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "polyast",
	Short: "Polyast - extract object ASTs from line-indexed source files",
	Long: `Polyast reads source files delivered as JSON arrays of numbered lines and
extracts object declarations (classes, structs, traits, ...) with their
member variables, functions and inheritance.

Input is a JSON array on stdin or in a file:
  [{"fileNo": 1, "fileName": "a.py", "fileType": "python",
    "lines": [[1, "class A:"], [2, "    x = 1"]]}]`,
	SilenceUsage:      true,
	PersistentPreRunE: initApp,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .polyast/config.yml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: trace, debug, info, warn, error")
}

// initApp loads configuration and sets up logging.
func initApp(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if verbose {
		cfg.Log.Level = "debug"
	}

	log, err := newLogger(cmd.ErrOrStderr(), cfg.Log.Level)
	if err != nil {
		return err
	}

	appConfig = cfg
	logger = log
	return nil
}

func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.NewFileLoader(cfgFile).Load()
	}
	rootDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return config.LoadConfigFromDir(rootDir)
}

// newLogger builds a console logger writing to w.
func newLogger(w io.Writer, level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", level, err)
	}
	console := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "15:04:05",
	}
	return zerolog.New(console).Level(lvl).With().Timestamp().Logger(), nil
}
