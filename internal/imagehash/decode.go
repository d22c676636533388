package imagehash

import (
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"winnow/internal/errkind"
)

// DHashFile decodes the image at path and fingerprints it. Unreadable files
// surface ErrRead; undecodable ones ErrDecode. Callers exclude both from
// grouping and report them, never treating them as unique or duplicate.
func DHashFile(path string, coreSize int) (BitVector, error) {
	f, err := os.Open(path)
	if err != nil {
		return BitVector{}, errkind.Wrap(errkind.ErrRead, "imagehash", "open", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return BitVector{}, errkind.Wrap(errkind.ErrDecode, "imagehash", "decode", path, err)
	}
	return DHash(img, coreSize)
}
