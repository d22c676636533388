package imagehash

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"

	"winnow/internal/errkind"
)

// CoreSize bounds. The documented sweet spot is 8-64; anything above 512
// produces fingerprints too large to be useful and is rejected outright.
const (
	MinCoreSize = 1
	MaxCoreSize = 512
)

// ValidateCoreSize rejects resolutions outside the supported range.
func ValidateCoreSize(coreSize int) error {
	if coreSize < MinCoreSize || coreSize > MaxCoreSize {
		return errkind.Wrap(errkind.ErrConfig, "imagehash", "core size",
			fmt.Sprintf("must be between %d and %d, got %d", MinCoreSize, MaxCoreSize, coreSize), nil)
	}
	return nil
}

// DHash computes the horizontal-gradient perceptual fingerprint of img at
// the given core size. The image is downscaled to (coreSize+1) x coreSize
// grayscale samples and each pixel is compared to its right neighbor,
// emitting 1 where the left pixel is brighter. The result is coreSize^2
// bits, row-major.
//
// Comparing adjacent samples makes the fingerprint invariant to uniform
// brightness and contrast shifts and tolerant of compression noise, without
// the cost of spectral transforms.
func DHash(img image.Image, coreSize int) (BitVector, error) {
	if err := ValidateCoreSize(coreSize); err != nil {
		return BitVector{}, err
	}
	if img == nil {
		return BitVector{}, errkind.Wrap(errkind.ErrDecode, "imagehash", "dhash", "nil image", nil)
	}
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return BitVector{}, errkind.Wrap(errkind.ErrDecode, "imagehash", "dhash",
			fmt.Sprintf("zero-dimension image %dx%d", bounds.Dx(), bounds.Dy()), nil)
	}

	gray := image.NewGray(image.Rect(0, 0, coreSize+1, coreSize))
	draw.ApproxBiLinear.Scale(gray, gray.Bounds(), img, bounds, draw.Src, nil)

	vector := NewBitVector(coreSize * coreSize)
	idx := 0
	for y := 0; y < coreSize; y++ {
		row := y * gray.Stride
		for x := 0; x < coreSize; x++ {
			if gray.Pix[row+x] > gray.Pix[row+x+1] {
				vector.setBit(idx)
			}
			idx++
		}
	}
	return vector, nil
}
