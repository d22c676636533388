package testsupport

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// GradientImage builds a deterministic mid-range grayscale pattern. Images
// with the same seed hash identically; different seeds produce patterns far
// apart in Hamming distance.
func GradientImage(width, height int, seed int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := uint8(50 + (x*(7+seed*13)+y*(11+seed*5))%150)
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return img
}

// BrightenedCopy returns img with a uniform brightness offset, which leaves
// the dHash unchanged as long as no pixel clips.
func BrightenedCopy(img *image.Gray, offset uint8) *image.Gray {
	out := image.NewGray(img.Bounds())
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			out.SetGray(x, y, color.Gray{Y: img.GrayAt(x, y).Y + offset})
		}
	}
	return out
}

// WritePNG encodes img to path, creating parent directories as needed.
func WritePNG(t testing.TB, path string, img image.Image) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
}

// WriteGradientPNG writes a deterministic test image and returns its path.
func WriteGradientPNG(t testing.TB, dir, name string, seed int) string {
	t.Helper()

	path := filepath.Join(dir, name)
	WritePNG(t, path, GradientImage(96, 96, seed))
	return path
}
