package finder

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/sonemaro/finditor/pkg/glob"
	"github.com/sonemaro/finditor/pkg/logger"
	"github.com/spf13/afero"
)

// versionControlDirs are the metadata directories excluded when IgnoreVCS is set.
var versionControlDirs = []string{
	".svn", "_svn", "CVS", "_darcs", ".arch-params", ".monotone", ".bzr", ".git", ".hg",
}

// Search walks every root and returns the matching paths, merged in root order,
// optionally sorted, with duplicates removed. Roots that are missing or are not
// directories are skipped. The only error is a *ConfigError, returned before
// the filesystem is touched.
func (f *Finder) Search(roots ...string) ([]string, error) {
	cfg := f.cfg.Clone()
	if cfg.IgnoreVCS {
		for _, name := range versionControlDirs {
			p := f.compiler.Compile(name, glob.ScopeName)
			cfg.prunes = append(cfg.prunes, p)
			cfg.discards = append(cfg.discards, p)
		}
	}

	w, err := newWalker(cfg, f.fs, f.log)
	if err != nil {
		f.log.WithFields(logger.Fields{
			"error": err,
		}).Error("Invalid search configuration")
		return nil, err
	}

	f.log.WithFields(logger.Fields{
		"roots":    roots,
		"type":     cfg.Type.String(),
		"sort":     cfg.Sort.String(),
		"minDepth": cfg.minDepth,
		"maxDepth": cfg.maxDepth,
	}).Debug("Starting search")

	var files []string
	for _, root := range roots {
		dir, ok := resolveRoot(f.fs, root)
		if !ok {
			f.log.WithFields(logger.Fields{
				"path": root,
			}).Debug("Skipping root: not a readable directory")
			continue
		}

		result := w.walkRoot(dir)
		if cfg.RelativePaths {
			prefix := strings.TrimRight(dir, "/") + "/"
			for i := range result {
				result[i] = strings.TrimPrefix(result[i], prefix)
			}
		}
		files = append(files, result...)
	}

	if cfg.Sort == SortByName {
		sort.Strings(files)
	}
	files = unique(files)

	f.log.WithFields(logger.Fields{
		"matches": len(files),
	}).Debug("Search completed")

	return files, nil
}

// walker carries the validated working configuration of one Search call.
type walker struct {
	cfg   Config
	sizes []SizeRule
	fs    afero.Fs
	log   logger.Logger

	// prefix of the current root, stripped to obtain relative paths
	rootPrefix string
}

func newWalker(cfg Config, fs afero.Fs, log logger.Logger) (*walker, error) {
	sizes := make([]SizeRule, 0, len(cfg.sizes))
	for _, raw := range cfg.sizes {
		rule, err := ParseSizeRule(raw)
		if err != nil {
			return nil, &ConfigError{Method: "AddSizes", Value: raw, Err: err}
		}
		sizes = append(sizes, rule)
	}

	for i, p := range cfg.execs {
		if p == nil {
			return nil, &ConfigError{
				Method: "AddExecs",
				Err:    fmt.Errorf("predicate %d: %w", i, ErrNilPredicate),
			}
		}
	}

	return &walker{
		cfg:   cfg,
		sizes: sizes,
		fs:    fs,
		log:   log,
	}, nil
}

func (w *walker) walkRoot(dir string) []string {
	w.rootPrefix = strings.TrimRight(dir, "/") + "/"

	var stack []string
	if w.cfg.FollowSymlinks {
		if resolved, err := realPath(w.fs, dir); err == nil {
			stack = []string{resolved}
		}
	}

	return w.walk(dir, 0, stack)
}

// entry is the metadata a filter decision needs.
type entry struct {
	path    string
	rel     string
	link    bool
	dir     bool
	regular bool
	size    int64
}

func (w *walker) walk(dir string, depth int, stack []string) []string {
	if depth > w.cfg.maxDepth {
		return nil
	}

	names, err := readDirNames(w.fs, dir)
	if err != nil {
		w.log.WithFields(logger.Fields{
			"path":  dir,
			"error": err,
		}).Debug("Failed to read directory")
		return nil
	}

	byType := w.cfg.Sort == SortByType

	var files, dirs, pendingFiles []string
	var pendingDirs []entry

	for _, name := range names {
		e, ok := w.inspect(joinPath(dir, name))
		if !ok {
			continue
		}
		if e.link && !w.cfg.FollowSymlinks {
			continue
		}

		if e.dir {
			if byType {
				pendingDirs = append(pendingDirs, e)
				continue
			}
			files = append(files, w.visitDir(e, depth, stack)...)
			continue
		}

		if !w.acceptFile(e, depth) {
			continue
		}
		if byType {
			pendingFiles = append(pendingFiles, e.path)
		} else {
			files = append(files, e.path)
		}
	}

	if !byType {
		return files
	}

	sort.Slice(pendingDirs, func(i, j int) bool {
		return pendingDirs[i].path < pendingDirs[j].path
	})
	for _, e := range pendingDirs {
		dirs = append(dirs, w.visitDir(e, depth, stack)...)
	}
	sort.Strings(pendingFiles)

	return append(dirs, pendingFiles...)
}

// visitDir lists a directory when it matches and descends into it unless it
// is pruned or already on the descent stack.
func (w *walker) visitDir(e entry, depth int, stack []string) []string {
	var out []string
	if w.acceptDir(e, depth) {
		out = append(out, e.path)
	}

	if anyMatch(w.cfg.prunes, e.rel) {
		w.log.WithFields(logger.Fields{
			"path": e.path,
		}).Trace("Pruned directory")
		return out
	}

	if w.cfg.FollowSymlinks {
		resolved, err := realPath(w.fs, e.path)
		if err != nil {
			return out
		}
		for _, seen := range stack {
			if seen == resolved {
				w.log.WithFields(logger.Fields{
					"path":   e.path,
					"target": resolved,
				}).Debug("Symlink cycle detected, not descending")
				return out
			}
		}
		stack = append(stack[:len(stack):len(stack)], resolved)
	}

	return append(out, w.walk(e.path, depth+1, stack)...)
}

// inspect reads the metadata of path. When links are followed, a link is
// described by its target; a broken link stays a non-regular file.
func (w *walker) inspect(path string) (entry, bool) {
	info, err := lstat(w.fs, path)
	if err != nil {
		w.log.WithFields(logger.Fields{
			"path":  path,
			"error": err,
		}).Trace("Failed to stat entry")
		return entry{}, false
	}

	e := entry{
		path: path,
		rel:  strings.TrimPrefix(path, w.rootPrefix),
		link: info.Mode()&os.ModeSymlink != 0,
	}

	if e.link {
		if !w.cfg.FollowSymlinks {
			return e, true
		}
		target, err := w.fs.Stat(path)
		if err != nil {
			return e, true
		}
		info = target
	}

	e.dir = info.IsDir()
	e.regular = info.Mode().IsRegular()
	e.size = info.Size()

	return e, true
}

func (w *walker) acceptDir(e entry, depth int) bool {
	if w.cfg.Type == File || depth < w.cfg.minDepth {
		return false
	}
	return !anyMatch(w.cfg.discards, e.rel) &&
		matchRules(w.cfg.names, e.rel) &&
		matchRules(w.cfg.paths, e.rel) &&
		w.matchExecs(e.path)
}

func (w *walker) acceptFile(e entry, depth int) bool {
	if w.cfg.Type == Directory || depth < w.cfg.minDepth {
		return false
	}
	return !anyMatch(w.cfg.discards, e.rel) &&
		matchRules(w.cfg.names, e.rel) &&
		matchRules(w.cfg.paths, e.rel) &&
		w.matchSizes(e) &&
		w.matchExecs(e.path)
}

// matchSizes evaluates only the first size rule. Entries that are not regular
// files pass.
func (w *walker) matchSizes(e entry) bool {
	if len(w.sizes) == 0 || !e.regular {
		return true
	}
	return w.sizes[0].Match(e.size)
}

func (w *walker) matchExecs(path string) bool {
	for _, p := range w.cfg.execs {
		if !p(path) {
			return false
		}
	}
	return true
}

// matchRules applies the first matching rule. Without a match the entry is
// rejected if any positive rule exists.
func matchRules(rules []nameRule, rel string) bool {
	if len(rules) == 0 {
		return true
	}

	positive := false
	for _, r := range rules {
		if !r.negated {
			positive = true
		}
		if r.pattern.MatchEntry(rel) {
			return !r.negated
		}
	}

	return !positive
}

func anyMatch(patterns []*glob.Pattern, rel string) bool {
	for _, p := range patterns {
		if p.MatchEntry(rel) {
			return true
		}
	}
	return false
}

// unique removes repeated paths, keeping the first occurrence.
func unique(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	out := paths[:0]
	for _, p := range paths {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
