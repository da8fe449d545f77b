package glob

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name     string
		compiler Compiler
		pattern  string
		expected string
	}{
		{
			name:     "star with leading dot guard",
			compiler: Default(),
			pattern:  "*.txt",
			expected: `(?=[^\.])[^/]*\.txt`,
		},
		{
			name:     "leading dot pattern has no guard",
			compiler: Default(),
			pattern:  ".*",
			expected: `\.[^/]*`,
		},
		{
			name:     "question mark",
			compiler: Default(),
			pattern:  "a?c",
			expected: `(?=[^\.])a[^/]c`,
		},
		{
			name:     "relaxed modes",
			compiler: Compiler{},
			pattern:  "*/?",
			expected: `.*/.`,
		},
		{
			name:     "guard on every segment",
			compiler: Default(),
			pattern:  "src/*.go",
			expected: `(?=[^\.])src/(?=[^\.])[^/]*\.go`,
		},
		{
			name:     "brace alternation",
			compiler: Default(),
			pattern:  "*.{jpg,png}",
			expected: `(?=[^\.])[^/]*\.(jpg|png)`,
		},
		{
			name:     "stray closing brace and comma are literal",
			compiler: Compiler{},
			pattern:  "a},b",
			expected: `a\},b`,
		},
		{
			name:     "escaped wildcard",
			compiler: Compiler{},
			pattern:  `a\*b`,
			expected: `a\*b`,
		},
		{
			name:     "double backslash",
			compiler: Compiler{},
			pattern:  `a\\b`,
			expected: `a\\b`,
		},
		{
			name:     "escaped leading dot skips guard",
			compiler: Default(),
			pattern:  `\.env`,
			expected: `\.env`,
		},
		{
			name:     "escaped multibyte character",
			compiler: Compiler{},
			pattern:  `caf\é`,
			expected: `café`,
		},
		{
			name:     "regex metacharacters escaped",
			compiler: Compiler{},
			pattern:  "a+b(c)|$^",
			expected: `a\+b\(c\)\|\$\^`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.compiler.Translate(tt.pattern))
		})
	}
}

func TestMatchShellSemantics(t *testing.T) {
	tests := []struct {
		pattern string
		matches []string
		misses  []string
	}{
		{
			pattern: "*.txt",
			matches: []string{"a.txt", "notes.v2.txt", "txt.txt"},
			misses:  []string{".hidden.txt", "a.txt.bak", "a.TXT", "dir/a.txt"},
		},
		{
			pattern: ".*",
			matches: []string{".hidden", ".hidden.txt", "."},
			misses:  []string{"visible", "a.b"},
		},
		{
			pattern: "file?.log",
			matches: []string{"file1.log", "fileA.log"},
			misses:  []string{"file.log", "file12.log", "file/.log"},
		},
		{
			pattern: "*.{jpg,png}",
			matches: []string{"a.jpg", "b.png"},
			misses:  []string{"a.gif", "a.jpgpng", ".a.jpg"},
		},
		{
			pattern: "{src,lib}",
			matches: []string{"src", "lib"},
			misses:  []string{"srclib", "bin"},
		},
		{
			pattern: "a{b,c{d,e}}f",
			matches: []string{"abf", "acdf", "acef"},
			misses:  []string{"acf", "adf"},
		},
		{
			pattern: "*",
			matches: []string{"anything", "x"},
			misses:  []string{".git", ""},
		},
		{
			pattern: "skip",
			matches: []string{"skip"},
			misses:  []string{"skipped", "Skip"},
		},
		{
			pattern: `caf\é`,
			matches: []string{"café"},
			misses:  []string{"cafe", "cafÃ©"},
		},
		{
			pattern: "#*#",
			matches: []string{"#notes.txt#", "##"},
			misses:  []string{"notes.txt", "#notes.txt"},
		},
		{
			pattern: "%*%",
			matches: []string{"%tmp%"},
			misses:  []string{"tmp"},
		},
		{
			pattern: `\*.md`,
			matches: []string{"*.md"},
			misses:  []string{"a.md"},
		},
	}

	c := Default()
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			p := c.Compile(tt.pattern, ScopeName)
			for _, name := range tt.matches {
				assert.True(t, p.Match(name), "%q should match %q (expr %s)", tt.pattern, name, p)
			}
			for _, name := range tt.misses {
				assert.False(t, p.Match(name), "%q should not match %q (expr %s)", tt.pattern, name, p)
			}
		})
	}
}

func TestRelaxedModes(t *testing.T) {
	c := Compiler{StrictLeadingDot: false, StrictWildcardSlash: false}

	p := c.Compile("*.txt", ScopePath)
	assert.True(t, p.Match(".hidden.txt"))
	assert.True(t, p.Match("dir/sub/a.txt"))

	strict := Default().Compile("*.txt", ScopePath)
	assert.False(t, strict.Match("dir/a.txt"))
}

func TestRegexPassThrough(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		isRegex bool
		match   string
		miss    string
	}{
		{
			name:    "slash delimited",
			pattern: `/^report-\d+\.csv$/`,
			isRegex: true,
			match:   "report-42.csv",
			miss:    "report-x.csv",
		},
		{
			name:    "case insensitive flag",
			pattern: "#^readme#i",
			isRegex: true,
			match:   "README.md",
			miss:    "docs",
		},
		{
			name:    "unanchored body",
			pattern: "/tmp/",
			isRegex: true,
			match:   "my_tmp_file",
			miss:    "temp",
		},
		{
			name:    "path with glob is not a regex",
			pattern: "/src/*",
			isRegex: false,
		},
		{
			name:    "single slash is not a regex",
			pattern: "/",
			isRegex: false,
		},
	}

	c := Default()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.isRegex, IsRegex(tt.pattern))

			p := c.Compile(tt.pattern, ScopeName)
			assert.Equal(t, tt.isRegex, p.IsRegex())
			if tt.match != "" {
				assert.True(t, p.Match(tt.match))
			}
			if tt.miss != "" {
				assert.False(t, p.Match(tt.miss))
			}
		})
	}
}

func TestCompileNeverFails(t *testing.T) {
	c := Default()

	// unbalanced brace opens a group that is never closed
	p := c.Compile("a{b", ScopeName)
	assert.True(t, p.Match("a{b"))
	assert.False(t, p.Match("ab"))

	// broken user regex
	p = c.Compile("/[unclosed/", ScopeName)
	assert.False(t, p.IsRegex())
	assert.True(t, p.Match("/[unclosed/"))

	// delimited shape with an invalid body is globbed
	p = c.Compile("#*#", ScopeName)
	assert.False(t, p.IsRegex())
	assert.True(t, p.Match("#notes.txt#"))
	assert.Equal(t, `^(?=[^\.])#[^/]*#$`, p.String())

	// character classes pass through
	p = c.Compile("[ab].go", ScopeName)
	assert.True(t, p.Match("a.go"))
	assert.False(t, p.Match("c.go"))
}

func TestMatchEntry(t *testing.T) {
	c := Default()

	name := c.Compile("*.go", ScopeName)
	assert.True(t, name.MatchEntry("pkg/glob/glob.go"))
	assert.Equal(t, ScopeName, name.Scope())

	path := c.Compile("pkg/*/glob.go", ScopePath)
	assert.True(t, path.MatchEntry("pkg/glob/glob.go"))
	assert.False(t, path.MatchEntry("pkg/a/b/glob.go"))
	assert.False(t, path.MatchEntry("pkg/.hidden/glob.go"))
	assert.Equal(t, "pkg/*/glob.go", path.Source())
}
