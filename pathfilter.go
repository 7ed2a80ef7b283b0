package minihttp

import (
	"fmt"
	"regexp"
)

// Verdict is the outcome of evaluating a request path against a PathFilter.
type Verdict int

const (
	Allow Verdict = iota
	Block
)

func (v Verdict) String() string {
	if v == Block {
		return "block"
	}
	return "allow"
}

// PathFilter rejects request paths matching any of a set of patterns.
// Patterns are RE2 regular expressions matched case-insensitively anywhere in
// the path. A PathFilter is immutable and safe for concurrent use.
type PathFilter struct {
	patterns []string
	rules    []*regexp.Regexp
}

// NewPathFilter compiles the given patterns in order. A pattern that does not
// compile is a configuration error.
func NewPathFilter(patterns []string) (*PathFilter, error) {
	f := &PathFilter{
		patterns: make([]string, 0, len(patterns)),
		rules:    make([]*regexp.Regexp, 0, len(patterns)),
	}

	for i, p := range patterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, fmt.Errorf("compile path filter %d %q: %w: %w", i, p, ErrInvalidConfig, err)
		}
		f.patterns = append(f.patterns, p)
		f.rules = append(f.rules, re)
	}

	return f, nil
}

// Evaluate reports whether requestPath is allowed. An empty rule set or an
// empty path is always allowed.
func (f *PathFilter) Evaluate(requestPath string) Verdict {
	if f == nil || len(f.rules) == 0 || requestPath == "" {
		return Allow
	}

	for _, re := range f.rules {
		if re.MatchString(requestPath) {
			return Block
		}
	}
	return Allow
}

// Patterns returns a copy of the configured patterns.
func (f *PathFilter) Patterns() []string {
	if f == nil {
		return nil
	}
	out := make([]string, len(f.patterns))
	copy(out, f.patterns)
	return out
}

// Len returns the number of rules.
func (f *PathFilter) Len() int {
	if f == nil {
		return 0
	}
	return len(f.rules)
}
