package finder

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sonemaro/finditor/pkg/glob"
	"github.com/sonemaro/finditor/pkg/logger"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLogger implements logger.Logger interface for testing
type mockLogger struct {
	logs []string
}

func (m *mockLogger) Info(msg string)                               { m.logs = append(m.logs, "INFO: "+msg) }
func (m *mockLogger) Debug(msg string)                              { m.logs = append(m.logs, "DEBUG: "+msg) }
func (m *mockLogger) Error(msg string)                              { m.logs = append(m.logs, "ERROR: "+msg) }
func (m *mockLogger) Warn(msg string)                               { m.logs = append(m.logs, "WARN: "+msg) }
func (m *mockLogger) Trace(msg string)                              { m.logs = append(m.logs, "TRACE: "+msg) }
func (m *mockLogger) WithFields(fields logger.Fields) logger.Logger { return m }

func setupTestFS(t *testing.T) afero.Fs {
	fs := afero.NewMemMapFs()

	files := map[string]string{
		"/src/a.txt":               "hello",
		"/src/b.log":               strings.Repeat("x", 20000),
		"/src/.hidden.txt":         "secret",
		"/src/docs/readme.md":      "# readme",
		"/src/docs/guide.txt":      "guide",
		"/src/vendor/lib.go":       "package lib",
		"/src/.git/config":         "[core]",
		"/src/deep/l1/l2/file.txt": "deep",
	}

	for path, content := range files {
		require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0644))
	}

	return fs
}

func writeFiles(t *testing.T, fs afero.Fs, paths ...string) {
	for _, path := range paths {
		require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, afero.WriteFile(fs, path, []byte("x"), 0644))
	}
}

func TestSearch(t *testing.T) {
	tests := []struct {
		name      string
		configure func(*Finder)
		roots     []string
		expected  []string
	}{
		{
			name:      "default configuration",
			configure: func(f *Finder) {},
			expected: []string{
				"/src/deep", "/src/deep/l1", "/src/deep/l1/l2", "/src/deep/l1/l2/file.txt",
				"/src/docs", "/src/docs/guide.txt", "/src/docs/readme.md",
				"/src/vendor", "/src/vendor/lib.go",
				"/src/.hidden.txt", "/src/a.txt", "/src/b.log",
			},
		},
		{
			name: "files by name",
			configure: func(f *Finder) {
				f.SetType("files").AddNames("*.txt")
			},
			expected: []string{"/src/deep/l1/l2/file.txt", "/src/docs/guide.txt", "/src/a.txt"},
		},
		{
			name: "directories only",
			configure: func(f *Finder) {
				f.SetType("DIRECTORY")
			},
			expected: []string{"/src/deep", "/src/deep/l1", "/src/deep/l1/l2", "/src/docs", "/src/vendor"},
		},
		{
			name: "relative paths",
			configure: func(f *Finder) {
				f.SetType("file").AddNames("*.md", "*.go").ReturnRelativePaths(true)
			},
			expected: []string{"docs/readme.md", "vendor/lib.go"},
		},
		{
			name: "size rule",
			configure: func(f *Finder) {
				f.AddSizes("> 10K")
				f.SetType("file")
			},
			expected: []string{"/src/b.log"},
		},
		{
			name: "first size rule wins",
			configure: func(f *Finder) {
				f.SetType("file").AddSizes("> 10K", "< 1")
			},
			expected: []string{"/src/b.log"},
		},
		{
			name: "prune keeps the directory but skips its contents",
			configure: func(f *Finder) {
				f.AddPrunes("vendor", "deep")
			},
			expected: []string{
				"/src/deep",
				"/src/docs", "/src/docs/guide.txt", "/src/docs/readme.md",
				"/src/vendor",
				"/src/.hidden.txt", "/src/a.txt", "/src/b.log",
			},
		},
		{
			name: "discard hides the directory but still descends",
			configure: func(f *Finder) {
				f.AddDiscards("docs", "*.log")
			},
			expected: []string{
				"/src/deep", "/src/deep/l1", "/src/deep/l1/l2", "/src/deep/l1/l2/file.txt",
				"/src/docs/guide.txt", "/src/docs/readme.md",
				"/src/vendor", "/src/vendor/lib.go",
				"/src/.hidden.txt", "/src/a.txt",
			},
		},
		{
			name: "maximum depth one lists direct children",
			configure: func(f *Finder) {
				f.SetMaximumDepth(1)
			},
			expected: []string{
				"/src/deep", "/src/docs", "/src/vendor",
				"/src/.hidden.txt", "/src/a.txt", "/src/b.log",
			},
		},
		{
			name: "minimum depth two skips direct children",
			configure: func(f *Finder) {
				f.SetMinimumDepth(2).SetMaximumDepth(2)
			},
			expected: []string{
				"/src/deep/l1",
				"/src/docs/guide.txt", "/src/docs/readme.md",
				"/src/vendor/lib.go",
			},
		},
		{
			name: "sort by name",
			configure: func(f *Finder) {
				f.SortByName().AddPrunes("deep")
			},
			expected: []string{
				"/src/.hidden.txt", "/src/a.txt", "/src/b.log",
				"/src/deep", "/src/docs", "/src/docs/guide.txt", "/src/docs/readme.md",
				"/src/vendor", "/src/vendor/lib.go",
			},
		},
		{
			name: "version control included when not ignored",
			configure: func(f *Finder) {
				f.IgnoreVersionControl(false).SetMaximumDepth(1).SetType("dir")
			},
			expected: []string{"/src/.git", "/src/deep", "/src/docs", "/src/vendor"},
		},
		{
			name: "path rules match the relative path",
			configure: func(f *Finder) {
				f.SetType("file").AddNotPaths("docs/readme.md").AddPaths("docs/*", "*.log")
			},
			expected: []string{"/src/docs/guide.txt", "/src/b.log"},
		},
		{
			name: "exec predicates",
			configure: func(f *Finder) {
				f.SetType("file").AddExecs(func(path string) bool {
					return strings.HasPrefix(path, "/src/docs/")
				})
			},
			expected: []string{"/src/docs/guide.txt", "/src/docs/readme.md"},
		},
		{
			name: "missing and file roots are skipped",
			configure: func(f *Finder) {
				f.SetType("file").AddNames("*.md")
			},
			roots:    []string{"/nope", "/src/a.txt", "/src/docs"},
			expected: []string{"/src/docs/readme.md"},
		},
		{
			name: "overlapping roots are de-duplicated",
			configure: func(f *Finder) {
				f.SetType("file").AddNames("*.md")
			},
			roots:    []string{"/src", "/src/docs"},
			expected: []string{"/src/docs/readme.md"},
		},
		{
			name: "backslash separators are unified",
			configure: func(f *Finder) {
				f.SetType("file").AddNames("*.go")
			},
			roots:    []string{`\src\vendor`},
			expected: []string{"/src/vendor/lib.go"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New(setupTestFS(t), &mockLogger{})
			tt.configure(f)

			roots := tt.roots
			if roots == nil {
				roots = []string{"/src"}
			}

			result, err := f.Search(roots...)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestNameRuleFallback(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, "/pics/a.jpg", "/pics/b.tmp", "/pics/c.txt")

	denyOnly, err := New(fs, nil).AddNotNames("*.tmp").Search("/pics")
	require.NoError(t, err)
	assert.Equal(t, []string{"/pics/a.jpg", "/pics/c.txt"}, denyOnly)

	allowOnly, err := New(fs, nil).AddNames("*.jpg").Search("/pics")
	require.NoError(t, err)
	assert.Equal(t, []string{"/pics/a.jpg"}, allowOnly)

	// first matching rule decides
	mixed, err := New(fs, nil).AddNotNames("a.*").AddNames("*.jpg", "*.txt").Search("/pics")
	require.NoError(t, err)
	assert.Equal(t, []string{"/pics/c.txt"}, mixed)
}

func TestSortByTypeOrdersEachLevel(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, "/r/b.txt", "/r/a.txt", "/r/z/y.txt", "/r/m/x.txt")

	result, err := New(fs, nil).Search("/r")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"/r/m", "/r/m/x.txt",
		"/r/z", "/r/z/y.txt",
		"/r/a.txt", "/r/b.txt",
	}, result)

	result, err = New(fs, nil).SortByName().Search("/r")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"/r/a.txt", "/r/b.txt",
		"/r/m", "/r/m/x.txt",
		"/r/z", "/r/z/y.txt",
	}, result)

	result, err = New(fs, nil).SortByName().SortByType().SetElementType(File).Search("/r")
	require.NoError(t, err)
	assert.Equal(t, []string{"/r/m/x.txt", "/r/z/y.txt", "/r/a.txt", "/r/b.txt"}, result)
}

func TestVersionControlExclusion(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, "/repo/.git/HEAD", "/repo/sub/.hg/store", "/repo/sub/CVS/Root", "/repo/main.go")

	visited := map[string]bool{}
	f := New(fs, nil).AddExecs(func(path string) bool {
		visited[path] = true
		return true
	})

	result, err := f.Search("/repo")
	require.NoError(t, err)
	assert.Equal(t, []string{"/repo/sub", "/repo/main.go"}, result)

	for path := range visited {
		assert.NotContains(t, path, ".git")
		assert.NotContains(t, path, ".hg")
		assert.NotContains(t, path, "CVS")
	}

	// injected rules stay on the working copy
	assert.Empty(t, f.Config().Prunes())
	assert.Empty(t, f.Config().Discards())
}

func TestSearchIsRepeatable(t *testing.T) {
	f := New(setupTestFS(t), nil).SetType("file").AddNames("*.txt")

	first, err := f.Search("/src")
	require.NoError(t, err)
	second, err := f.Search("/src")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestConfigurationErrors(t *testing.T) {
	tests := []struct {
		name      string
		configure func(*Finder)
		sentinel  error
		method    string
	}{
		{
			name:      "malformed size rule",
			configure: func(f *Finder) { f.AddSizes("> 10K", "big") },
			sentinel:  ErrInvalidSizeRule,
			method:    "AddSizes",
		},
		{
			name:      "nil predicate",
			configure: func(f *Finder) { f.AddExecs(nil) },
			sentinel:  ErrNilPredicate,
			method:    "AddExecs",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := &mockLogger{}
			f := New(setupTestFS(t), log)
			tt.configure(f)

			result, err := f.Search("/does-not-exist")
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, errors.Is(err, tt.sentinel))

			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.method, cfgErr.Method)
			assert.Contains(t, log.logs, "ERROR: Invalid search configuration")
		})
	}
}

func TestConfigIsDeepCopy(t *testing.T) {
	f := New(nil, nil).AddNames("*.go").AddSizes("> 1k")

	cfg := f.Config()
	cfg.Type = Directory
	cfg.sizes[0] = "broken"
	cfg.names = append(cfg.names, nameRule{pattern: glob.Default().Compile("x", glob.ScopeName)})

	fresh := f.Config()
	assert.Equal(t, Any, fresh.Type)
	assert.Equal(t, []string{"> 1k"}, fresh.Sizes())
	assert.Equal(t, []string{"*.go"}, fresh.Names())
}

func TestDefaultConfig(t *testing.T) {
	cfg := New(nil, nil).Config()

	assert.Equal(t, Any, cfg.Type)
	assert.Equal(t, SortByType, cfg.Sort)
	assert.True(t, cfg.IgnoreVCS)
	assert.False(t, cfg.RelativePaths)
	assert.False(t, cfg.FollowSymlinks)
	assert.Equal(t, 0, cfg.MinimumDepth())
	assert.Equal(t, unlimitedDepth, cfg.MaximumDepth())
	assert.Empty(t, cfg.Names())
	assert.Zero(t, cfg.Execs())
}

func TestBuilderStoresAdjustedDepths(t *testing.T) {
	cfg := New(nil, nil).SetMinimumDepth(2).SetMaximumDepth(3).Config()
	assert.Equal(t, 1, cfg.MinimumDepth())
	assert.Equal(t, 2, cfg.MaximumDepth())
}

func TestNotNamesAndPathsRecordNegation(t *testing.T) {
	cfg := New(nil, nil).
		AddNames("*.go").
		AddNotNames("*_test.go").
		AddNotPaths("internal/*").
		Config()

	assert.Equal(t, []string{"*.go", "!*_test.go"}, cfg.Names())
	assert.Equal(t, []string{"!internal/*"}, cfg.Paths())
}

func TestWithCompiler(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, "/d/.env.txt", "/d/a.txt")

	strict, err := New(fs, nil).AddNames("*.txt").Search("/d")
	require.NoError(t, err)
	assert.Equal(t, []string{"/d/a.txt"}, strict)

	relaxed, err := New(fs, nil).WithCompiler(glob.Compiler{}).AddNames("*.txt").Search("/d")
	require.NoError(t, err)
	assert.Equal(t, []string{"/d/.env.txt", "/d/a.txt"}, relaxed)
}

func TestParseElementType(t *testing.T) {
	tests := map[string]ElementType{
		"file":        File,
		"Files":       File,
		"dir":         Directory,
		"directory":   Directory,
		"directories": Directory,
		"":            Any,
		"links":       Any,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseElementType(in), in)
	}
}

func TestParseSortMode(t *testing.T) {
	mode, err := ParseSortMode("name")
	require.NoError(t, err)
	assert.Equal(t, SortByName, mode)

	mode, err = ParseSortMode("")
	require.NoError(t, err)
	assert.Equal(t, SortByType, mode)

	_, err = ParseSortMode("size")
	assert.Error(t, err)
}
