package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// LauncherSizes maps a density bucket to its launcher icon edge in pixels
var LauncherSizes = map[string]uint{
	"mdpi":    48,
	"hdpi":    72,
	"xhdpi":   96,
	"xxhdpi":  144,
	"xxxhdpi": 192,
}

// Densities in ascending order
var Densities = []string{"mdpi", "hdpi", "xhdpi", "xxhdpi", "xxxhdpi"}

// ResampleIcon decodes src and writes a size x size PNG to dst
func ResampleIcon(src, dst string, size uint) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", src, err)
	}

	b := img.Bounds()
	if uint(b.Dx()) != size || uint(b.Dy()) != size || format != "png" {
		img = resize.Resize(size, size, img, resize.Lanczos3)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return os.WriteFile(dst, buf.Bytes(), 0644)
}
