package finder

import (
	"path"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
)

// ModifiedSince matches entries modified at or after t.
func ModifiedSince(fs afero.Fs, t time.Time) Predicate {
	return func(p string) bool {
		info, err := fs.Stat(p)
		return err == nil && !info.ModTime().Before(t)
	}
}

// ModifiedBefore matches entries modified strictly before t.
func ModifiedBefore(fs afero.Fs, t time.Time) Predicate {
	return func(p string) bool {
		info, err := fs.Stat(p)
		return err == nil && info.ModTime().Before(t)
	}
}

// Empty matches zero-length files and directories without entries.
func Empty(fs afero.Fs) Predicate {
	return func(p string) bool {
		empty, err := afero.IsEmpty(fs, p)
		return err == nil && empty
	}
}

// Contains matches regular files whose content includes needle.
func Contains(fs afero.Fs, needle string) Predicate {
	sub := []byte(needle)
	return func(p string) bool {
		info, err := fs.Stat(p)
		if err != nil || !info.Mode().IsRegular() {
			return false
		}
		found, err := afero.FileContainsBytes(fs, p, sub)
		return err == nil && found
	}
}

// MatchGlob matches "**" patterns against the path relative to the first of
// roots that contains it, or the full path when none does. A path also matches
// when its base name does. Invalid patterns never match.
func MatchGlob(pattern string, roots ...string) Predicate {
	if !doublestar.ValidatePattern(pattern) {
		return func(string) bool { return false }
	}

	prefixes := make([]string, 0, len(roots))
	for _, r := range roots {
		prefixes = append(prefixes, strings.TrimRight(r, "/")+"/")
	}

	return func(p string) bool {
		rel := p
		for _, prefix := range prefixes {
			if strings.HasPrefix(p, prefix) {
				rel = strings.TrimPrefix(p, prefix)
				break
			}
		}

		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
		ok, _ := doublestar.Match(pattern, path.Base(rel))
		return ok
	}
}
