package mesh

import (
	"fmt"
	"regexp"
	"strings"
)

// Pattern matches region names either literally or as a regular expression.
// A pattern wrapped in double quotes, or containing regular expression
// metacharacters, is compiled as a regular expression anchored at both ends
type Pattern struct {
	literal string
	re      *regexp.Regexp
}

const regexMeta = `.*+?|()[]{}^$\`

// CompilePattern parses a single name or pattern
func CompilePattern(s string) (Pattern, error) {
	s = strings.TrimSpace(s)
	quoted := len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"'
	if quoted {
		s = s[1 : len(s)-1]
	}
	if s == "" {
		return Pattern{}, fmt.Errorf("empty region pattern")
	}
	if !quoted && !strings.ContainsAny(s, regexMeta) {
		return Pattern{literal: s}, nil
	}
	re, err := regexp.Compile("^(?:" + s + ")$")
	if err != nil {
		return Pattern{}, fmt.Errorf("invalid region pattern %q: %w", s, err)
	}
	return Pattern{re: re}, nil
}

// IsLiteral reports whether the pattern matches one exact name
func (p Pattern) IsLiteral() bool {
	return p.re == nil
}

// Match reports whether name matches the pattern
func (p Pattern) Match(name string) bool {
	if p.re != nil {
		return p.re.MatchString(name)
	}
	return p.literal == name
}

func (p Pattern) String() string {
	if p.re != nil {
		return `"` + strings.TrimSuffix(strings.TrimPrefix(p.re.String(), "^(?:"), ")$") + `"`
	}
	return p.literal
}

// ResolveRegions returns the indices of regions matching any of the patterns,
// in region order and without duplicates. An empty result is not an error here
func (m *Mesh) ResolveRegions(patterns []string) ([]int, error) {
	compiled := make([]Pattern, 0, len(patterns))
	for _, s := range patterns {
		p, err := CompilePattern(s)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, p)
	}

	var ids []int
	for i, r := range m.Regions {
		for _, p := range compiled {
			if p.Match(r.Name) {
				ids = append(ids, i)
				break
			}
		}
	}
	return ids, nil
}

// UnmatchedLiterals returns the literal names among patterns that name no
// region. Regular expressions are never reported
func (m *Mesh) UnmatchedLiterals(patterns []string) []string {
	var out []string
	for _, s := range patterns {
		p, err := CompilePattern(s)
		if err != nil || !p.IsLiteral() {
			continue
		}
		if _, ok := m.Region(p.literal); !ok {
			out = append(out, p.literal)
		}
	}
	return out
}
