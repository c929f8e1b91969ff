// Package textio reads text leniently as UTF-8 and writes it as ASCII, dropping whatever
// does not fit either encoding.
package textio

import (
	"os"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

func decoder() transform.Transformer {
	return transform.Chain(
		runes.ReplaceIllFormed(),
		runes.Remove(runes.Predicate(func(r rune) bool { return r == utf8.RuneError })),
	)
}

func encoder() transform.Transformer {
	return runes.Remove(runes.Predicate(func(r rune) bool { return r > unicode.MaxASCII }))
}

// Decode converts raw bytes to a string, dropping ill-formed UTF-8
func Decode(data []byte) string {
	out, _, err := transform.Bytes(decoder(), data)
	if err != nil {
		return string(data)
	}
	return string(out)
}

// Encode converts text to ASCII bytes, dropping non-ASCII runes
func Encode(s string) []byte {
	out, _, err := transform.String(encoder(), s)
	if err != nil {
		return []byte(s)
	}
	return []byte(out)
}

// ReadFile reads a text file
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return Decode(data), nil
}

// WriteFile writes a text file as ASCII
func WriteFile(path, content string, perm os.FileMode) error {
	return os.WriteFile(path, Encode(content), perm)
}
