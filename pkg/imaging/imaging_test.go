package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, x%h, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestFormat(t *testing.T) {
	testCases := []struct {
		header string
		want   string
	}{
		{"\x89PNG\r\n\x1a\n....", "png"},
		{"GIF89a...", "gif"},
		{"\xff\xd8\xff\xe0\x00\x10JFIF", "jpeg"},
		{"BM6\x00\x00", "bmp"},
		{"II*\x00", "tiff"},
		{"P6\n32 32\n255\n", "ppm"},
		{"P5 ", "pgm"},
		{"P4\n", "pbm"},
		{"\x01\xda\x01\x01", "rgb"},
		{"\x59\xa6\x6a\x95", "rast"},
		{"#define icon_width 16", "xbm"},
		{"RIFF\x10\x00\x00\x00WEBPVP8 ", "webp"},
		{"<?xml version=\"1.0\"?>", ""},
		{"apply plugin: 'com.android.application'", ""},
		{"Plain", ""},
		{"", ""},
	}
	for _, tc := range testCases {
		if got := Format([]byte(tc.header)); got != tc.want {
			t.Errorf("Format(%q) = %q, want %q", tc.header, got, tc.want)
		}
	}
}

func TestIsBinaryFile(t *testing.T) {
	dir := t.TempDir()
	img := filepath.Join(dir, "icon.png")
	writePNG(t, img, 4, 4)
	text := filepath.Join(dir, "strings.xml")
	if err := os.WriteFile(text, []byte("<resources/>"), 0644); err != nil {
		t.Fatal(err)
	}

	if ok, err := IsBinaryFile(img); err != nil || !ok {
		t.Errorf("png classified as text: %v", err)
	}
	if ok, err := IsBinaryFile(text); err != nil || ok {
		t.Errorf("xml classified as binary: %v", err)
	}
	if _, err := IsBinaryFile(filepath.Join(dir, "missing")); err == nil {
		t.Error("missing file should fail")
	}
}

func TestResampleIcon(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "big.png")
	dst := filepath.Join(dir, "small.png")
	writePNG(t, src, 512, 512)

	if err := ResampleIcon(src, dst, LauncherSizes["hdpi"]); err != nil {
		t.Fatalf("ResampleIcon: %v", err)
	}
	f, err := os.Open(dst)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 72 || cfg.Height != 72 {
		t.Errorf("resampled to %dx%d", cfg.Width, cfg.Height)
	}
}
