/*
Package glob compiles shell-style wildcard patterns into anchored regular
expressions that can be matched against a single path segment or a full
slash-separated relative path.

Supported syntax:

	syntax   meaning
	*        any run of characters (not crossing "/" in strict slash mode)
	?        exactly one character (not "/" in strict slash mode)
	{a,b}    alternation, may be nested
	\x       literal x; "\\" is a literal backslash
	/re/ims  already-delimited regular expression, used as-is

In strict leading dot mode a segment that does not itself start with "." never
matches a hidden name, so "*.txt" does not match ".hidden.txt" while ".*" does.

Basic usage:

	p := glob.Default().Compile("*.{jpg,png}", glob.ScopeName)
	p.Match("photo.jpg") // true
*/
package glob

import (
	"strings"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
)

// Scope tells callers which candidate string a pattern is anchored against.
type Scope int

const (
	// ScopeName anchors a pattern to the base name of an entry
	ScopeName Scope = iota
	// ScopePath anchors a pattern to the slash-separated path relative to a search root
	ScopePath
)

// leadingDotGuard forbids a segment from starting with a literal dot.
const leadingDotGuard = `(?=[^\.])`

// regexDelimiters lists the characters accepted as regular expression delimiters.
const regexDelimiters = "/#~@%"

// Compiler translates glob patterns. The zero value disables both strict modes;
// use Default for the usual shell behaviour.
type Compiler struct {
	// StrictLeadingDot keeps wildcards from matching names that start with "."
	StrictLeadingDot bool

	// StrictWildcardSlash keeps "*" and "?" from matching "/"
	StrictWildcardSlash bool
}

// Default returns a Compiler with both strict modes enabled.
func Default() Compiler {
	return Compiler{
		StrictLeadingDot:    true,
		StrictWildcardSlash: true,
	}
}

// Pattern is a compiled glob or regular expression.
type Pattern struct {
	source string
	expr   string
	scope  Scope
	regex  bool
	re     *regexp2.Regexp
}

// Compile turns pattern into an anchored Pattern. It never fails: a delimited
// regular expression the engine rejects is compiled as a glob instead, and a
// glob the engine rejects (for example an unbalanced "{") degrades to a literal
// match of the pattern text.
func (c Compiler) Compile(pattern string, scope Scope) *Pattern {
	p := &Pattern{
		source: pattern,
		scope:  scope,
	}

	var opts regexp2.RegexOptions
	if body, flags, ok := splitRegex(pattern); ok {
		p.regex = true
		p.expr = body
		opts = flags
	} else {
		p.expr = "^" + c.Translate(pattern) + "$"
	}

	re, err := regexp2.Compile(p.expr, opts)
	if err != nil && p.regex {
		// "#*#" looks delimited but is a glob
		p.regex = false
		p.expr = "^" + c.Translate(pattern) + "$"
		re, err = regexp2.Compile(p.expr, regexp2.None)
	}
	if err != nil {
		p.expr = "^" + regexp2.Escape(pattern) + "$"
		re = regexp2.MustCompile(p.expr, regexp2.None)
	}
	p.re = re

	return p
}

// Translate returns the unanchored regular expression for a glob pattern.
func (c Compiler) Translate(pattern string) string {
	var b strings.Builder

	segmentStart := true
	escaped := false
	depth := 0

	for i := 0; i < len(pattern); i++ {
		ch := pattern[i]

		if segmentStart {
			if c.StrictLeadingDot && firstLiteral(pattern, i) != '.' {
				b.WriteString(leadingDotGuard)
			}
			segmentStart = false
		}

		if escaped {
			escaped = false
			_, size := utf8.DecodeRuneInString(pattern[i:])
			b.WriteString(regexp2.Escape(pattern[i : i+size]))
			i += size - 1
			continue
		}

		switch ch {
		case '\\':
			escaped = true
		case '/':
			b.WriteByte('/')
			segmentStart = true
		case '.', '(', ')', '|', '+', '^', '$':
			b.WriteByte('\\')
			b.WriteByte(ch)
		case '*':
			if c.StrictWildcardSlash {
				b.WriteString("[^/]*")
			} else {
				b.WriteString(".*")
			}
		case '?':
			if c.StrictWildcardSlash {
				b.WriteString("[^/]")
			} else {
				b.WriteByte('.')
			}
		case '{':
			b.WriteByte('(')
			depth++
		case '}':
			if depth > 0 {
				b.WriteByte(')')
				depth--
			} else {
				b.WriteString(`\}`)
			}
		case ',':
			if depth > 0 {
				b.WriteByte('|')
			} else {
				b.WriteByte(',')
			}
		default:
			b.WriteByte(ch)
		}
	}

	// trailing lone backslash
	if escaped {
		b.WriteString(`\\`)
	}

	return b.String()
}

// firstLiteral returns the character a segment starting at i literally begins with.
func firstLiteral(pattern string, i int) byte {
	if pattern[i] == '\\' && i+1 < len(pattern) {
		return pattern[i+1]
	}
	return pattern[i]
}

// IsRegex reports whether pattern has the shape of a delimited regular
// expression. Compile may still treat it as a glob when the body is invalid.
func IsRegex(pattern string) bool {
	_, _, ok := splitRegex(pattern)
	return ok
}

func splitRegex(pattern string) (string, regexp2.RegexOptions, bool) {
	if len(pattern) < 3 {
		return "", regexp2.None, false
	}

	delim := pattern[0]
	if strings.IndexByte(regexDelimiters, delim) < 0 {
		return "", regexp2.None, false
	}

	end := strings.LastIndexByte(pattern, delim)
	if end <= 1 {
		return "", regexp2.None, false
	}

	opts := regexp2.None
	for _, flag := range pattern[end+1:] {
		switch flag {
		case 'i':
			opts |= regexp2.IgnoreCase
		case 'm':
			opts |= regexp2.Multiline
		case 's':
			opts |= regexp2.Singleline
		default:
			return "", regexp2.None, false
		}
	}

	return pattern[1:end], opts, true
}

// Match reports whether candidate matches the whole pattern.
func (p *Pattern) Match(candidate string) bool {
	ok, err := p.re.MatchString(candidate)
	return err == nil && ok
}

// MatchEntry matches a slash-separated relative path, using only its last
// segment when the pattern has ScopeName.
func (p *Pattern) MatchEntry(rel string) bool {
	if p.scope == ScopeName {
		if i := strings.LastIndexByte(rel, '/'); i >= 0 {
			rel = rel[i+1:]
		}
	}
	return p.Match(rel)
}

// Source returns the pattern text as given to Compile.
func (p *Pattern) Source() string { return p.source }

// Scope returns the scope the pattern was compiled for.
func (p *Pattern) Scope() Scope { return p.scope }

// IsRegex reports whether the pattern was passed through as a regular expression.
func (p *Pattern) IsRegex() bool { return p.regex }

// String returns the compiled regular expression.
func (p *Pattern) String() string { return p.expr }
