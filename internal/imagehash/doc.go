// Package imagehash computes dHash perceptual fingerprints.
//
// A dHash encodes the sign of the horizontal brightness gradient across a
// downsampled grayscale grid: visually similar images produce fingerprints
// with a small Hamming distance even after resizing or recompression, while
// the fingerprint width (core size squared) tunes how small a region of
// change the hash can see.
//
// Decoder registration covers JPEG, PNG, and GIF from the standard library
// plus WebP, BMP, and TIFF via golang.org/x/image.
package imagehash
