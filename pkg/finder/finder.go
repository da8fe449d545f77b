/*
Package finder searches directory trees for entries matching a declarative
set of constraints: element type, name and path patterns, size rules, caller
predicates, prune and discard rules, depth bounds, sort order, symlink policy
and version control exclusion.

A Finder is configured through chained builder calls and then searched any
number of times. Each Search works on a private copy of the configuration, so
injected rules never leak into the Finder.

Basic usage:

	paths, err := finder.New(nil, nil).
		SetType("file").
		AddNames("*.go").
		AddPrunes("vendor").
		SortByName().
		Search("./src")
*/
package finder

import (
	"github.com/sonemaro/finditor/pkg/glob"
	"github.com/sonemaro/finditor/pkg/logger"
	"github.com/spf13/afero"
)

// Finder holds a search configuration and the filesystem it searches.
type Finder struct {
	cfg      Config
	fs       afero.Fs
	log      logger.Logger
	compiler glob.Compiler
}

// New creates a Finder with the default configuration. A nil fs searches the
// OS filesystem and a nil log discards all output.
func New(fs afero.Fs, log logger.Logger) *Finder {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if log == nil {
		log = logger.NewNop()
	}

	return &Finder{
		cfg:      DefaultConfig(),
		fs:       fs,
		log:      log,
		compiler: glob.Default(),
	}
}

// WithCompiler sets the compiler used for patterns added afterwards.
func (f *Finder) WithCompiler(c glob.Compiler) *Finder {
	f.compiler = c
	return f
}

// Config returns a deep copy of the current configuration.
func (f *Finder) Config() Config {
	return f.cfg.Clone()
}

// SetType restricts results by kind: "file", "dir"/"directory", anything else for both.
func (f *Finder) SetType(kind string) *Finder {
	f.cfg.Type = ParseElementType(kind)
	return f
}

// SetElementType restricts results to t.
func (f *Finder) SetElementType(t ElementType) *Finder {
	f.cfg.Type = t
	return f
}

// AddNames adds base name patterns an entry must match.
func (f *Finder) AddNames(patterns ...string) *Finder {
	f.cfg.names = f.appendRules(f.cfg.names, patterns, false, glob.ScopeName)
	return f
}

// AddNotNames adds base name patterns that reject an entry.
func (f *Finder) AddNotNames(patterns ...string) *Finder {
	f.cfg.names = f.appendRules(f.cfg.names, patterns, true, glob.ScopeName)
	return f
}

// AddPaths adds patterns matched against the path relative to the search root.
func (f *Finder) AddPaths(patterns ...string) *Finder {
	f.cfg.paths = f.appendRules(f.cfg.paths, patterns, false, glob.ScopePath)
	return f
}

// AddNotPaths adds relative path patterns that reject an entry.
func (f *Finder) AddNotPaths(patterns ...string) *Finder {
	f.cfg.paths = f.appendRules(f.cfg.paths, patterns, true, glob.ScopePath)
	return f
}

// AddSizes adds size rules. They are validated when the search starts.
func (f *Finder) AddSizes(rules ...string) *Finder {
	f.cfg.sizes = append(f.cfg.sizes, rules...)
	return f
}

// AddExecs adds predicates every candidate must satisfy.
func (f *Finder) AddExecs(predicates ...Predicate) *Finder {
	f.cfg.execs = append(f.cfg.execs, predicates...)
	return f
}

// AddPrunes adds base name patterns of directories that are never descended into.
func (f *Finder) AddPrunes(patterns ...string) *Finder {
	f.cfg.prunes = f.appendPatterns(f.cfg.prunes, patterns)
	return f
}

// AddDiscards adds base name patterns of entries that are never returned.
func (f *Finder) AddDiscards(patterns ...string) *Finder {
	f.cfg.discards = f.appendPatterns(f.cfg.discards, patterns)
	return f
}

// SetMinimumDepth skips entries shallower than depth, where 1 is the root's
// direct children.
func (f *Finder) SetMinimumDepth(depth int) *Finder {
	f.cfg.minDepth = depth - 1
	return f
}

// SetMaximumDepth stops the walk below depth, where 1 lists only the root's
// direct children.
func (f *Finder) SetMaximumDepth(depth int) *Finder {
	f.cfg.maxDepth = depth - 1
	return f
}

// SortByName sorts the merged result list lexicographically.
func (f *Finder) SortByName() *Finder {
	f.cfg.Sort = SortByName
	return f
}

// SortByType lists, per directory level, subdirectories by name and then
// files by name. This is the default.
func (f *Finder) SortByType() *Finder {
	f.cfg.Sort = SortByType
	return f
}

// IgnoreVersionControl toggles the exclusion of version control directories.
func (f *Finder) IgnoreVersionControl(ignore bool) *Finder {
	f.cfg.IgnoreVCS = ignore
	return f
}

// ReturnRelativePaths toggles stripping the root from results.
func (f *Finder) ReturnRelativePaths(relative bool) *Finder {
	f.cfg.RelativePaths = relative
	return f
}

// FollowSymlinks toggles reporting and descending into symbolic links.
func (f *Finder) FollowSymlinks(follow bool) *Finder {
	f.cfg.FollowSymlinks = follow
	return f
}

func (f *Finder) appendRules(rules []nameRule, patterns []string, negated bool, scope glob.Scope) []nameRule {
	for _, p := range patterns {
		rules = append(rules, nameRule{
			negated: negated,
			pattern: f.compiler.Compile(p, scope),
		})
	}
	return rules
}

func (f *Finder) appendPatterns(list []*glob.Pattern, patterns []string) []*glob.Pattern {
	for _, p := range patterns {
		list = append(list, f.compiler.Compile(p, glob.ScopeName))
	}
	return list
}
