package finder

import (
	"fmt"
	"math"
	"strings"

	"github.com/sonemaro/finditor/pkg/glob"
)

// ElementType restricts which kinds of entries a search returns
type ElementType int

const (
	// Any returns both files and directories
	Any ElementType = iota
	// File returns only non-directory entries
	File
	// Directory returns only directories
	Directory
)

func (t ElementType) String() string {
	switch t {
	case File:
		return "file"
	case Directory:
		return "directory"
	default:
		return "any"
	}
}

// ParseElementType normalizes a free-form kind. Unknown values mean Any.
func ParseElementType(kind string) ElementType {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "file", "files":
		return File
	case "dir", "directory", "directories":
		return Directory
	default:
		return Any
	}
}

// SortMode controls result ordering
type SortMode int

const (
	// SortByType lists, per directory level, subdirectories by name and then files by name
	SortByType SortMode = iota
	// SortByName sorts the merged result list lexicographically
	SortByName
)

func (m SortMode) String() string {
	if m == SortByName {
		return "name"
	}
	return "type"
}

// ParseSortMode accepts "name" or "type".
func ParseSortMode(s string) (SortMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "type":
		return SortByType, nil
	case "name":
		return SortByName, nil
	default:
		return SortByType, fmt.Errorf("unknown sort mode %q: must be one of [name type]", s)
	}
}

// Predicate is a caller-supplied filter over the slash-separated path of a
// candidate entry. Every predicate must return true for the entry to match.
type Predicate func(path string) bool

type nameRule struct {
	negated bool
	pattern *glob.Pattern
}

// unlimitedDepth is the stored maximum depth of a fresh configuration.
const unlimitedDepth = math.MaxInt

// Config is the complete set of search constraints. Rule lists are private so
// that a Config can only grow through a Finder; Clone gives an independent copy.
type Config struct {
	// Type restricts results to files, directories or both
	Type ElementType

	// Sort selects the result ordering
	Sort SortMode

	// IgnoreVCS prunes and discards version control metadata directories
	IgnoreVCS bool

	// RelativePaths strips the search root from every result
	RelativePaths bool

	// FollowSymlinks descends into and reports symbolic links
	FollowSymlinks bool

	names    []nameRule
	paths    []nameRule
	sizes    []string
	execs    []Predicate
	prunes   []*glob.Pattern
	discards []*glob.Pattern

	// stored as the depth passed to the setters minus one
	minDepth int
	maxDepth int
}

// DefaultConfig returns the configuration of a fresh Finder.
func DefaultConfig() Config {
	return Config{
		Type:      Any,
		Sort:      SortByType,
		IgnoreVCS: true,
		minDepth:  0,
		maxDepth:  unlimitedDepth,
	}
}

// Clone returns a deep copy of the rule lists. Compiled patterns are immutable
// and shared.
func (c Config) Clone() Config {
	out := c
	out.names = append([]nameRule(nil), c.names...)
	out.paths = append([]nameRule(nil), c.paths...)
	out.sizes = append([]string(nil), c.sizes...)
	out.execs = append([]Predicate(nil), c.execs...)
	out.prunes = append([]*glob.Pattern(nil), c.prunes...)
	out.discards = append([]*glob.Pattern(nil), c.discards...)
	return out
}

// MinimumDepth returns the stored minimum depth.
func (c Config) MinimumDepth() int { return c.minDepth }

// MaximumDepth returns the stored maximum depth.
func (c Config) MaximumDepth() int { return c.maxDepth }

// Sizes returns the raw size rules.
func (c Config) Sizes() []string { return append([]string(nil), c.sizes...) }

// Names returns the name rule sources, negated ones prefixed with "!".
func (c Config) Names() []string { return ruleSources(c.names) }

// Paths returns the path rule sources, negated ones prefixed with "!".
func (c Config) Paths() []string { return ruleSources(c.paths) }

// Prunes returns the prune pattern sources.
func (c Config) Prunes() []string { return patternSources(c.prunes) }

// Discards returns the discard pattern sources.
func (c Config) Discards() []string { return patternSources(c.discards) }

// Execs returns the number of predicates.
func (c Config) Execs() int { return len(c.execs) }

func ruleSources(rules []nameRule) []string {
	out := make([]string, 0, len(rules))
	for _, r := range rules {
		if r.negated {
			out = append(out, "!"+r.pattern.Source())
		} else {
			out = append(out, r.pattern.Source())
		}
	}
	return out
}

func patternSources(patterns []*glob.Pattern) []string {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, p.Source())
	}
	return out
}
