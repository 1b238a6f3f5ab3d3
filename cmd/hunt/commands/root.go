package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/dyluth/hunt/internal/app"
	"github.com/dyluth/hunt/internal/config"
	"github.com/dyluth/hunt/internal/logging"
	"github.com/dyluth/hunt/internal/printer"
	"github.com/dyluth/hunt/internal/progress"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	version string
	commit  string
	date    string

	// Global flags
	configPath string
	verbose    bool
	dataDir    string
	modeFlag   string

	cfg    *config.HuntConfig
	logger *zap.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "hunt",
	Short: "Hunt - sequential scavenger hunt tracker",
	Long: `Hunt walks a participant through a fixed sequence of stages. Each stage
unlocks once the ones before it are completed, and progress survives restarts.

Progress is kept in a local state file, or in a shared Redis or SQLite record
store so that several devices of one participant see the same progress.`,
	Version: version,
	// Prevent silent success when unknown flags are passed to root command
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadRuntime()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	FParseErrWhitelist: cobra.FParseErrWhitelist{},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	// We print formatted colored errors directly in the printer package
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	return rootCmd.Execute()
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "Path to hunt.yml")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Directory for local state (overrides storage.data_dir)")
	rootCmd.PersistentFlags().StringVar(&modeFlag, "mode", "", "Storage backend: auto, local or remote (overrides storage.mode)")
}

// loadRuntime resolves configuration from file, environment and flags, in
// increasing precedence, and builds the logger.
func loadRuntime() error {
	loaded, err := config.Load(configPath)
	if errors.Is(err, fs.ErrNotExist) && configPath == config.DefaultPath {
		loaded, err = config.Default(), nil
	}
	if err != nil {
		return printer.Error(
			"failed to load configuration",
			err.Error(),
			[]string{fmt.Sprintf("Check the file:\n  %s", configPath)},
		)
	}

	loaded.ApplyEnv(os.Getenv)

	if dataDir != "" {
		loaded.Storage.DataDir = dataDir
	}
	if modeFlag != "" {
		loaded.Storage.Mode = modeFlag
	}
	// Validate once, after every layer, so a flag can repair an env override.
	if err := loaded.Validate(); err != nil {
		return printer.Error(
			"invalid configuration",
			err.Error(),
			[]string{
				fmt.Sprintf("Valid modes: %s, %s, %s", progress.ModeAuto, progress.ModeLocal, progress.ModeRemote),
				"Remote mode needs storage.remote.redis_url or storage.remote.sqlite_path",
				"Check the HUNT_* environment variables",
			},
		)
	}

	l, err := logging.New(loaded.Logging, verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	cfg = loaded
	logger = l
	return nil
}

// openApp wires the runtime for one command. Callers must Close it.
func openApp() (*app.App, error) {
	a, err := app.New(cfg, logger)
	if err != nil {
		return nil, printer.Error(
			"failed to open progress storage",
			err.Error(),
			[]string{"Check the storage section of hunt.yml", "Run with --mode local to use the local state file"},
		)
	}
	return a, nil
}
