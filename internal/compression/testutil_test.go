package compression

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"
)

// makeTestImage builds a deterministic noisy gradient. The xorshift noise
// keeps the content hard to compress so encoded sizes respond to quality.
func makeTestImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	seed := uint32(2463534242)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			seed ^= seed << 13
			seed ^= seed >> 17
			seed ^= seed << 5
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x*255/w) ^ uint8(seed),
				G: uint8(y*255/h) ^ uint8(seed>>8),
				B: uint8(seed >> 16),
				A: 255,
			})
		}
	}
	return img
}

// encodePNG returns img encoded as PNG bytes.
func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
