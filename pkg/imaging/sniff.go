// Package imaging classifies resource files as images and resamples launcher icons.
package imaging

import (
	"bytes"
	"io"
	"os"
)

type signature struct {
	format string
	match  func(h []byte) bool
}

func prefix(p string) func([]byte) bool {
	return func(h []byte) bool { return bytes.HasPrefix(h, []byte(p)) }
}

// netpbm headers are "P<n>" followed by whitespace
func netpbm(kinds string) func([]byte) bool {
	return func(h []byte) bool {
		return len(h) >= 3 && h[0] == 'P' && bytes.IndexByte([]byte(kinds), h[1]) >= 0 &&
			bytes.IndexByte([]byte(" \t\n\r"), h[2]) >= 0
	}
}

var signatures = []signature{
	{"jpeg", func(h []byte) bool {
		return bytes.HasPrefix(h, []byte{0xff, 0xd8}) ||
			(len(h) >= 10 && (bytes.Equal(h[6:10], []byte("JFIF")) || bytes.Equal(h[6:10], []byte("Exif"))))
	}},
	{"png", prefix("\x89PNG\r\n\x1a\n")},
	{"gif", func(h []byte) bool { return bytes.HasPrefix(h, []byte("GIF87a")) || bytes.HasPrefix(h, []byte("GIF89a")) }},
	{"tiff", func(h []byte) bool { return bytes.HasPrefix(h, []byte("MM")) || bytes.HasPrefix(h, []byte("II")) }},
	{"rgb", prefix("\x01\xda")},
	{"pbm", netpbm("14")},
	{"pgm", netpbm("25")},
	{"ppm", netpbm("36")},
	{"rast", prefix("\x59\xa6\x6a\x95")},
	{"xbm", prefix("#define ")},
	{"bmp", prefix("BM")},
	{"webp", func(h []byte) bool {
		return len(h) >= 12 && bytes.HasPrefix(h, []byte("RIFF")) && bytes.Equal(h[8:12], []byte("WEBP"))
	}},
}

// headerSize covers the longest signature
const headerSize = 32

// Format returns the image format named by the header, or "" for anything else
func Format(header []byte) string {
	for _, s := range signatures {
		if s.match(header) {
			return s.format
		}
	}
	return ""
}

// IsBinaryFile reports whether the file content is a recognised image format. Such files are
// copied verbatim instead of being template-expanded.
func IsBinaryFile(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	header := make([]byte, headerSize)
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return false, err
	}
	return Format(header[:n]) != "", nil
}
