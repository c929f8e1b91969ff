package libpatch

import (
	"fmt"
	"strings"
)

// ApplyChanges applies changes to text in order. For each change the first len(Old)-1 old
// strings are replaced on consecutive lines, each by the value popped from the end of New
// (the empty string once New is exhausted); the last old string is replaced by the remaining
// New entries joined with newlines. Line endings are preserved.
func ApplyChanges(text string, changes []Change) (string, error) {
	lines := strings.SplitAfter(text, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	for _, c := range changes {
		if len(c.Old) == 0 {
			continue
		}
		remaining := append([]string(nil), c.New...)
		idx := c.Line - 1

		for _, old := range c.Old[:len(c.Old)-1] {
			if idx < 0 || idx >= len(lines) {
				return "", fmt.Errorf("change at line %d: line %d is out of range (%d lines)", c.Line, idx+1, len(lines))
			}
			replacement := ""
			if n := len(remaining); n > 0 {
				replacement = remaining[n-1]
				remaining = remaining[:n-1]
			}
			lines[idx] = strings.ReplaceAll(lines[idx], old, replacement)
			idx++
		}

		if idx < 0 || idx >= len(lines) {
			return "", fmt.Errorf("change at line %d: line %d is out of range (%d lines)", c.Line, idx+1, len(lines))
		}
		lines[idx] = strings.ReplaceAll(lines[idx], c.Old[len(c.Old)-1], strings.Join(remaining, "\n"))
	}
	return strings.Join(lines, ""), nil
}
