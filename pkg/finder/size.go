package finder

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// Comparator is the relational operator of a size rule
type Comparator int

const (
	Equal Comparator = iota
	Less
	LessOrEqual
	Greater
	GreaterOrEqual
)

var comparatorTokens = []struct {
	token string
	cmp   Comparator
}{
	// two-character tokens first so "<=" is not read as "<"
	{"<=", LessOrEqual},
	{">=", GreaterOrEqual},
	{"==", Equal},
	{"<", Less},
	{">", Greater},
}

func (c Comparator) String() string {
	switch c {
	case Less:
		return "<"
	case LessOrEqual:
		return "<="
	case Greater:
		return ">"
	case GreaterOrEqual:
		return ">="
	default:
		return "=="
	}
}

// SizeRule compares a file size against a target in bytes.
type SizeRule struct {
	Comparator Comparator
	Target     uint64
}

// ParseSizeRule parses rules such as "> 10K", "<=1.5mi" or "2048".
func ParseSizeRule(rule string) (SizeRule, error) {
	s := strings.TrimSpace(rule)

	r := SizeRule{Comparator: Equal}
	for _, c := range comparatorTokens {
		if strings.HasPrefix(s, c.token) {
			r.Comparator = c.cmp
			s = strings.TrimSpace(s[len(c.token):])
			break
		}
	}

	if s == "" || !isDigit(s[0]) {
		return SizeRule{}, fmt.Errorf("%w: %q", ErrInvalidSizeRule, rule)
	}

	target, err := humanize.ParseBytes(s)
	if err != nil {
		return SizeRule{}, fmt.Errorf("%w: %q: %v", ErrInvalidSizeRule, rule, err)
	}
	r.Target = target

	return r, nil
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// Match reports whether size satisfies the rule.
func (r SizeRule) Match(size int64) bool {
	if size < 0 {
		return false
	}
	n := uint64(size)

	switch r.Comparator {
	case Less:
		return n < r.Target
	case LessOrEqual:
		return n <= r.Target
	case Greater:
		return n > r.Target
	case GreaterOrEqual:
		return n >= r.Target
	default:
		return n == r.Target
	}
}

func (r SizeRule) String() string {
	return fmt.Sprintf("%s %d", r.Comparator, r.Target)
}
