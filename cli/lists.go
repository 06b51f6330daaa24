package cli

import (
	"fmt"
	"strings"
	"unicode"
)

// ParseList splits a region list argument into names and patterns. The list
// may be wrapped in parentheses, as in '(wall "inlet.*")', and entries are
// separated by whitespace or commas. Double quoted entries keep their quotes
// so that they are matched as regular expressions
func ParseList(arg string) ([]string, error) {
	s := strings.TrimSpace(arg)
	if strings.HasPrefix(s, "(") {
		if !strings.HasSuffix(s, ")") {
			return nil, fmt.Errorf("unbalanced parentheses in list %q", arg)
		}
		s = s[1 : len(s)-1]
	}

	var (
		out    []string
		cur    strings.Builder
		quoted bool
	)
	flush := func() {
		if cur.Len() > 0 {
			out = append(out, cur.String())
			cur.Reset()
		}
	}
	for _, r := range s {
		switch {
		case r == '"':
			cur.WriteRune(r)
			if quoted {
				flush()
			}
			quoted = !quoted
		case quoted:
			cur.WriteRune(r)
		case unicode.IsSpace(r) || r == ',':
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	if quoted {
		return nil, fmt.Errorf("unterminated quote in list %q", arg)
	}
	flush()
	return out, nil
}
