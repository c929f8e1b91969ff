// Package template expands $NAME and ${NAME} placeholders in template files.
package template

import (
	"fmt"
	"strings"
)

// Mode selects how unknown or malformed placeholders are handled
type Mode int

const (
	// Strict fails on a placeholder with no value or a '$' that starts no placeholder
	Strict Mode = iota
	// Safe leaves such text untouched
	Safe
)

// Expand substitutes placeholders in s from values. "$$" becomes "$". Identifiers start with
// a letter or underscore and continue with letters, digits or underscores.
func Expand(s string, values map[string]string, mode Mode) (string, error) {
	var buf strings.Builder
	buf.Grow(len(s))

	line := 1
	i := 0
	for j := 0; j < len(s); j++ {
		if s[j] == '\n' {
			line++
			continue
		}
		if s[j] != '$' {
			continue
		}
		buf.WriteString(s[i:j])

		name, width := scan(s[j+1:])
		switch {
		case name == "" && width == 1:
			buf.WriteByte('$')
		case width == 0:
			if mode == Strict {
				return "", fmt.Errorf("line %d: invalid placeholder after '$'", line)
			}
			buf.WriteByte('$')
		default:
			value, ok := values[name]
			if !ok {
				if mode == Strict {
					return "", &MissingKeyError{Key: name, Line: line}
				}
				value = s[j : j+1+width]
			}
			buf.WriteString(value)
		}
		j += width
		i = j + 1
	}
	buf.WriteString(s[i:])
	return buf.String(), nil
}

// scan reads the placeholder following a '$'. width is the number of bytes consumed after
// the '$'; zero means no valid placeholder starts here.
func scan(s string) (name string, width int) {
	if len(s) == 0 {
		return "", 0
	}
	if s[0] == '$' {
		return "", 1
	}
	if s[0] == '{' {
		n := identLen(s[1:])
		if n == 0 || 1+n >= len(s) || s[1+n] != '}' {
			return "", 0
		}
		return s[1 : 1+n], n + 2
	}
	n := identLen(s)
	return s[:n], n
}

func identLen(s string) int {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z'):
		case i > 0 && c >= '0' && c <= '9':
		default:
			return i
		}
	}
	return len(s)
}

// MissingKeyError reports a placeholder with no value in strict mode
type MissingKeyError struct {
	Key  string
	Line int
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("line %d: no value for placeholder '%s'", e.Line, e.Key)
}
