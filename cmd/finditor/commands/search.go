package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/sonemaro/finditor/cmd/finditor/app"
	"github.com/sonemaro/finditor/internal/config"
	"github.com/spf13/cobra"
)

type searchOptions struct {
	*Options

	kind      string
	nameRules []config.Rule
	pathRules []config.Rule
	sizes     []string
	prunes    []string
	discards  []string

	minDepth       int
	maxDepth       int
	sortMode       string
	vcs            bool
	relative       bool
	followSymlinks bool

	newer    time.Duration
	contains string
	empty    bool
	glob     string

	outputFormat string
	outputFile   string
	hash         bool
	workers      int
	rateLimit    int
	stats        bool
}

func newSearchCommand(opts *Options) *cobra.Command {
	so := &searchOptions{Options: opts}

	cmd := &cobra.Command{
		Use:   "search [flags] <root>...",
		Short: "Search directory trees (default command)",
		Long: `Search one or more directory trees. With no root the working directory
is searched.

Name and path patterns are shell globs (*, ?, {a,b}, \x) or delimited regular
expressions such as /^v\d+$/i. Rules are evaluated in the order given and the
first matching rule decides; --name adds an accepting rule and --not-name a
rejecting one. Size rules take an optional comparator (<, <=, ==, >=, >) and a
size with an optional unit: 10K, 1.5mi, 2G. Only the first size rule applies.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, args, so)
		},
	}

	addSearchFlags(cmd, so)

	return cmd
}

// addSearchFlags registers the search flags on cmd. Pattern flags are string
// arrays so that brace patterns such as "*.{jpg,png}" are not split on commas.
func addSearchFlags(cmd *cobra.Command, so *searchOptions) {
	flags := cmd.Flags()

	flags.StringVarP(&so.kind, "type", "t", "any",
		"element type: file|directory|any")
	flags.VarP(&ruleFlag{rules: &so.nameRules}, "name", "n",
		"accept base names matching pattern (repeatable)")
	flags.VarP(&ruleFlag{rules: &so.nameRules, negated: true}, "not-name", "N",
		"reject base names matching pattern (repeatable)")
	flags.Var(&ruleFlag{rules: &so.pathRules}, "path",
		"accept root-relative paths matching pattern (repeatable)")
	flags.Var(&ruleFlag{rules: &so.pathRules, negated: true}, "not-path",
		"reject root-relative paths matching pattern (repeatable)")
	flags.StringArrayVarP(&so.sizes, "size", "s", nil,
		"size rule such as '> 10K' (repeatable, first one applies)")
	flags.StringArrayVarP(&so.prunes, "prune", "p", nil,
		"do not descend into matching directories (repeatable)")
	flags.StringArrayVarP(&so.discards, "discard", "x", nil,
		"drop matching entries and their subtrees (repeatable)")

	flags.IntVar(&so.minDepth, "min-depth", 0,
		"skip entries shallower than depth (1 = root children)")
	flags.IntVarP(&so.maxDepth, "max-depth", "d", config.UnlimitedDepth,
		"maximum depth (1 = root children only, -1 = unlimited)")
	flags.StringVar(&so.sortMode, "sort", "type",
		"sort order: type|name")
	flags.BoolVar(&so.vcs, "vcs", true,
		"exclude version control directories (.git, .svn, ...)")
	flags.BoolVarP(&so.relative, "relative", "r", false,
		"print paths relative to their root")
	flags.BoolVarP(&so.followSymlinks, "follow-symlinks", "L", false,
		"descend into symlinked directories")

	flags.DurationVar(&so.newer, "newer", 0,
		"only entries modified within duration, e.g. 24h")
	flags.StringVar(&so.contains, "contains", "",
		"only regular files containing text")
	flags.BoolVar(&so.empty, "empty", false,
		"only empty files and directories")
	flags.StringVar(&so.glob, "glob", "",
		"only entries whose relative path matches a ** glob")

	flags.StringVarP(&so.outputFormat, "output", "o", config.DefaultOutput,
		"output format: list|tree|json|yaml")
	flags.StringVarP(&so.outputFile, "file", "f", "",
		"write output to file instead of stdout")
	flags.BoolVar(&so.hash, "hash", false,
		"fingerprint matched files with xxhash64")
	flags.IntVarP(&so.workers, "workers", "w", 0,
		"number of hashing workers (default: number of CPUs)")
	flags.IntVar(&so.rateLimit, "rate-limit", 0,
		"maximum files hashed per second (0 = unlimited)")
	flags.BoolVar(&so.stats, "stats", false,
		"append result statistics")
}

// ruleFlag appends every value to a rule list shared by an accepting and a
// rejecting flag, so interleaved flags keep their command-line order.
type ruleFlag struct {
	rules   *[]config.Rule
	negated bool
}

func (f *ruleFlag) Set(pattern string) error {
	*f.rules = append(*f.rules, config.Rule{Pattern: pattern, Negated: f.negated})
	return nil
}

func (f *ruleFlag) String() string {
	var patterns []string
	for _, r := range *f.rules {
		if r.Negated == f.negated {
			patterns = append(patterns, r.Pattern)
		}
	}
	if len(patterns) == 0 {
		return ""
	}
	return "[" + strings.Join(patterns, ",") + "]"
}

func (f *ruleFlag) Type() string {
	return "pattern"
}

// mergeFlags returns the loaded configuration with every flag the user set
// applied on top
func mergeFlags(cmd *cobra.Command, so *searchOptions) (config.Config, error) {
	cfg := *so.Config
	flags := cmd.Flags()

	if flags.Changed("type") {
		cfg.Type = so.kind
	}
	if flags.Changed("name") || flags.Changed("not-name") {
		cfg.Names, cfg.NotNames = nil, nil
		cfg.NameRules = so.nameRules
	}
	if flags.Changed("path") || flags.Changed("not-path") {
		cfg.Paths, cfg.NotPaths = nil, nil
		cfg.PathRules = so.pathRules
	}
	if flags.Changed("size") {
		cfg.Sizes = so.sizes
	}
	if flags.Changed("prune") {
		cfg.Prunes = so.prunes
	}
	if flags.Changed("discard") {
		cfg.Discards = so.discards
	}
	if flags.Changed("min-depth") {
		cfg.MinDepth = so.minDepth
	}
	if flags.Changed("max-depth") {
		cfg.MaxDepth = so.maxDepth
	}
	if flags.Changed("sort") {
		cfg.Sort = so.sortMode
	}
	if flags.Changed("vcs") {
		cfg.IgnoreVCS = so.vcs
	}
	if flags.Changed("relative") {
		cfg.Relative = so.relative
	}
	if flags.Changed("follow-symlinks") {
		cfg.FollowSymlinks = so.followSymlinks
	}
	if flags.Changed("output") {
		cfg.Output = so.outputFormat
	}
	if flags.Changed("file") {
		cfg.OutputFile = so.outputFile
	}
	if flags.Changed("workers") && so.workers > 0 {
		cfg.Workers = so.workers
	}
	if flags.Changed("rate-limit") {
		cfg.RateLimit = so.rateLimit
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func runSearch(cmd *cobra.Command, roots []string, so *searchOptions) error {
	cfg, err := mergeFlags(cmd, so)
	if err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	application := app.New(&cfg)
	defer application.Shutdown()

	if len(roots) == 0 {
		roots = []string{"."}
	}

	return application.Run(&app.SearchOptions{
		Roots:    roots,
		Newer:    so.newer,
		Contains: so.contains,
		Empty:    so.empty,
		Glob:     so.glob,
		Hash:     so.hash,
		Stats:    so.stats,
	})
}
