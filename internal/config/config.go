/*
Package config loads finditor settings from defaults, an optional YAML file
and FINDITOR_* environment variables, in increasing order of precedence.
Command-line flags are applied on top by the caller.

Config file (.finditor.yaml in the working directory, or --config):

	type: file
	names: ["*.go", "*.md"]
	not_names: ["*_test.go"]
	prunes: [vendor, node_modules]
	sizes: ["< 1M"]
	max_depth: 4
	sort: name
	output: tree
	workers: 8

Environment variables use the same keys, upper-cased: FINDITOR_MAX_DEPTH=4,
FINDITOR_NAMES="*.go,*.md", FINDITOR_VERBOSE=vv.
*/
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/sonemaro/finditor/pkg/finder"
	"github.com/sonemaro/finditor/pkg/output"
	"github.com/spf13/viper"
)

// Config holds all configuration parameters for the application
type Config struct {
	// Type restricts results to "file", "directory" or "any"
	Type string

	// Names and NotNames are base-name patterns, evaluated in order
	Names    []string
	NotNames []string

	// Paths and NotPaths are root-relative path patterns, evaluated in order
	Paths    []string
	NotPaths []string

	// NameRules and PathRules hold accepting and rejecting patterns
	// interleaved as given on the command line. They are applied after the
	// lists above.
	NameRules []Rule
	PathRules []Rule

	// Prunes stop descent into matching directories
	Prunes []string

	// Discards drop matching entries and, for directories, their subtree
	Discards []string

	// Sizes are size rules such as "> 10K"; only the first one is applied
	Sizes []string

	// MinDepth skips entries shallower than this (0 for no bound)
	MinDepth int

	// MaxDepth is the maximum entry depth (-1 for unlimited)
	MaxDepth int

	// Sort is "type" or "name"
	Sort string

	IgnoreVCS      bool
	Relative       bool
	FollowSymlinks bool

	// Workers is the number of concurrent hashing workers
	Workers int

	// RateLimit is the maximum number of files hashed per second (0 for unlimited)
	RateLimit int

	// Output specifies the output format (list, tree, json or yaml)
	Output string

	// OutputFile is the path to write the output (empty for stdout)
	OutputFile string

	NoProgress bool
	NoColor    bool

	// Verbose sets the verbosity level
	Verbose int

	// File is the config file that was read, if any
	File string
}

// Rule is one accepting or, when Negated, rejecting pattern
type Rule struct {
	Pattern string
	Negated bool
}

// Load reads configuration from file and environment and validates it. An
// empty file looks for DefaultFile in the working directory and tolerates its
// absence.
func Load(file string) (Config, error) {
	v := viper.New()

	v.SetDefault("type", "any")
	v.SetDefault("min_depth", 0)
	v.SetDefault("max_depth", UnlimitedDepth)
	v.SetDefault("sort", "type")
	v.SetDefault("ignore_vcs", true)
	v.SetDefault("relative", false)
	v.SetDefault("follow_symlinks", false)
	v.SetDefault("workers", runtime.NumCPU())
	v.SetDefault("rate_limit", 0)
	v.SetDefault("output", DefaultOutput)
	v.SetDefault("output_file", "")
	v.SetDefault("no_progress", false)
	v.SetDefault("no_color", false)
	v.SetDefault("verbose", 0)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	for _, key := range listKeys {
		v.BindEnv(key)
	}

	if file == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			file = DefaultFile
		}
	}
	if file != "" {
		v.SetConfigFile(file)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("config file not found: %s", file)
			}
			return Config{}, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	cfg := Config{
		Type:           v.GetString("type"),
		Names:          stringList(v, "names"),
		NotNames:       stringList(v, "not_names"),
		Paths:          stringList(v, "paths"),
		NotPaths:       stringList(v, "not_paths"),
		Prunes:         stringList(v, "prunes"),
		Discards:       stringList(v, "discards"),
		Sizes:          stringList(v, "sizes"),
		MinDepth:       v.GetInt("min_depth"),
		MaxDepth:       v.GetInt("max_depth"),
		Sort:           v.GetString("sort"),
		IgnoreVCS:      v.GetBool("ignore_vcs"),
		Relative:       v.GetBool("relative"),
		FollowSymlinks: v.GetBool("follow_symlinks"),
		Workers:        v.GetInt("workers"),
		RateLimit:      v.GetInt("rate_limit"),
		Output:         v.GetString("output"),
		OutputFile:     v.GetString("output_file"),
		NoProgress:     v.GetBool("no_progress"),
		NoColor:        v.GetBool("no_color"),
		Verbose:        verbosity(v),
		File:           v.ConfigFileUsed(),
	}

	// Handle special case for workers=0
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// stringList accepts a YAML sequence or a comma separated string.
func stringList(v *viper.Viper, key string) []string {
	raw, ok := v.Get(key).(string)
	if !ok {
		return v.GetStringSlice(key)
	}

	var list []string
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			list = append(list, trimmed)
		}
	}
	return list
}

// verbosity reads either a run of 'v's or a number.
func verbosity(v *viper.Viper) int {
	s := strings.TrimSpace(v.GetString("verbose"))
	if s != "" && strings.Trim(s, "v") == "" {
		return len(s)
	}
	return v.GetInt("verbose")
}

// Validate checks if the configuration is valid
func (c Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers count must be positive")
	}
	if c.Workers > runtime.NumCPU()*MaxWorkerMultiplier {
		return fmt.Errorf("workers count cannot exceed system CPU count * %d", MaxWorkerMultiplier)
	}

	if c.MinDepth < 0 {
		return fmt.Errorf("min depth must not be negative")
	}
	if c.MaxDepth < UnlimitedDepth || c.MaxDepth == 0 {
		return fmt.Errorf("max depth must be -1 (unlimited) or at least 1")
	}

	if _, err := output.ParseFormat(c.Output); err != nil {
		return err
	}

	if _, err := finder.ParseSortMode(c.Sort); err != nil {
		return err
	}

	for _, rule := range c.Sizes {
		if _, err := finder.ParseSizeRule(rule); err != nil {
			return fmt.Errorf("invalid size rule: %w", err)
		}
	}

	if c.RateLimit < 0 {
		return fmt.Errorf("rate limit must be non-negative")
	}

	return nil
}

// Apply configures f with the search rules held in c.
func (c Config) Apply(f *finder.Finder) *finder.Finder {
	f.SetType(c.Type).
		AddNames(c.Names...).
		AddNotNames(c.NotNames...).
		AddPaths(c.Paths...).
		AddNotPaths(c.NotPaths...)

	for _, r := range c.NameRules {
		if r.Negated {
			f.AddNotNames(r.Pattern)
		} else {
			f.AddNames(r.Pattern)
		}
	}
	for _, r := range c.PathRules {
		if r.Negated {
			f.AddNotPaths(r.Pattern)
		} else {
			f.AddPaths(r.Pattern)
		}
	}

	f.AddSizes(c.Sizes...).
		AddPrunes(c.Prunes...).
		AddDiscards(c.Discards...).
		IgnoreVersionControl(c.IgnoreVCS).
		ReturnRelativePaths(c.Relative).
		FollowSymlinks(c.FollowSymlinks)

	if c.MinDepth > 0 {
		f.SetMinimumDepth(c.MinDepth)
	}
	if c.MaxDepth != UnlimitedDepth {
		f.SetMaximumDepth(c.MaxDepth)
	}
	if strings.EqualFold(strings.TrimSpace(c.Sort), "name") {
		f.SortByName()
	} else {
		f.SortByType()
	}

	return f
}

// String returns a string representation of the configuration
func (c Config) String() string {
	return fmt.Sprintf(
		"Config{Type: %s, Names: %v, NotNames: %v, Paths: %v, NotPaths: %v, "+
			"NameRules: %v, PathRules: %v, "+
			"Prunes: %v, Discards: %v, Sizes: %v, MinDepth: %d, MaxDepth: %d, "+
			"Sort: %s, IgnoreVCS: %v, Relative: %v, FollowSymlinks: %v, "+
			"Workers: %d, RateLimit: %d, Output: %s, OutputFile: %s, "+
			"NoProgress: %v, NoColor: %v, Verbose: %d}",
		c.Type, c.Names, c.NotNames, c.Paths, c.NotPaths,
		c.NameRules, c.PathRules,
		c.Prunes, c.Discards, c.Sizes, c.MinDepth, c.MaxDepth,
		c.Sort, c.IgnoreVCS, c.Relative, c.FollowSymlinks,
		c.Workers, c.RateLimit, c.Output, c.OutputFile,
		c.NoProgress, c.NoColor, c.Verbose,
	)
}
