/*
Package commands implements the finditor command line. The root command runs
a search when invoked without a subcommand, so "finditor -n '*.go' ." and
"finditor search -n '*.go' ." are equivalent.
*/
package commands

import (
	"fmt"

	"github.com/sonemaro/finditor/internal/config"
	"github.com/sonemaro/finditor/pkg/logger"
	"github.com/spf13/cobra"
)

// Options holds command-line options that apply to all commands
type Options struct {
	Config     *config.Config
	ConfigPath string
	Verbose    int
	NoProgress bool
	NoColor    bool
}

// NewRootCommand creates the root command for the application
func NewRootCommand() *cobra.Command {
	opts := &Options{}
	so := &searchOptions{Options: opts}

	rootCmd := &cobra.Command{
		Use:   "finditor [command] [flags] <root>...",
		Short: "Find files and directories by name, path, size and content",
		Long: `Finditor searches one or more directory trees for entries matching
declarative rules: element type, glob or regex name and path patterns, size
rules, content and age predicates, prune and discard patterns and depth bounds.

Results are printed as a list, a tree, JSON or YAML, optionally with xxhash
fingerprints of every matched file.`,
		Example: `  finditor -t file -n '*.go' -N '*_test.go' .
  finditor search -s '> 10M' -p node_modules -o tree ~/src
  finditor -n '/^report-\d+\.csv$/i' --hash -o json -f reports.json /data`,
		Args: cobra.ArbitraryArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initializeCommand(cmd, opts)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, args, so)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().CountVarP(&opts.Verbose, "verbose", "v",
		"verbose output (can be used multiple times)")
	rootCmd.PersistentFlags().BoolVar(&opts.NoProgress, "no-progress", false,
		"disable progress reporting")
	rootCmd.PersistentFlags().BoolVar(&opts.NoColor, "no-color", false,
		"disable colored output")
	rootCmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "",
		"config file (default: ./"+config.DefaultFile+" when present)")

	addSearchFlags(rootCmd, so)

	rootCmd.AddCommand(
		newSearchCommand(opts),
		newVersionCommand(opts),
	)

	return rootCmd
}

// initializeCommand loads the configuration and applies global flags on top
func initializeCommand(cmd *cobra.Command, opts *Options) error {
	log := logger.NewLogger(logger.Config{
		Verbosity: opts.Verbose,
		Output:    cmd.ErrOrStderr(),
	})

	log.WithFields(logger.Fields{
		"verbosity": opts.Verbose,
		"command":   cmd.Name(),
		"config":    opts.ConfigPath,
	}).Debug("Initializing command")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		log.WithFields(logger.Fields{
			"error": err,
		}).Error("Failed to load configuration")
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("verbose") {
		cfg.Verbose = opts.Verbose
	}
	if flags.Changed("no-progress") {
		cfg.NoProgress = opts.NoProgress
	}
	if flags.Changed("no-color") {
		cfg.NoColor = opts.NoColor
	}

	opts.Config = &cfg

	return nil
}
