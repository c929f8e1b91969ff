//go:build !windows

package i18n

// POSIX systems expose the user locale through LC_ALL, LC_MESSAGES and LANG only
func osLocales() []string { return nil }
