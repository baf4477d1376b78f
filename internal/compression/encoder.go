package compression

import (
	"bytes"
	"image"

	"github.com/deepteams/webp"
	"github.com/disintegration/imaging"
)

// Encoder performs one lossy re-encode at a requested quality.
type Encoder interface {
	Encode(img image.Image, quality int) ([]byte, error)
}

// encodeSettings are the codec parameters derived from a single quality value.
type encodeSettings struct {
	Quality      int
	AlphaQuality int
	Method       int
	UseSharpYUV  bool
}

// settingsFor derives the full codec configuration from the search quality.
// The alpha channel trails the main quality by 10 points (never below 10),
// and sharp YUV conversion is only worth its cost at quality >= 30.
func settingsFor(quality int) encodeSettings {
	alpha := quality - 10
	if alpha < 10 {
		alpha = 10
	}
	return encodeSettings{
		Quality:      quality,
		AlphaQuality: alpha,
		Method:       6, // maximum compression effort
		UseSharpYUV:  quality >= 30,
	}
}

// WebPEncoder normalizes every input to lossy WebP. Output carries no
// ICC/EXIF/XMP chunks, so source metadata is always stripped.
type WebPEncoder struct{}

// Encode re-encodes img at the requested quality and returns the encoded
// buffer. The result is deterministic for a fixed (img, quality) pair.
func (WebPEncoder) Encode(img image.Image, quality int) ([]byte, error) {
	s := settingsFor(quality)

	opts := webp.DefaultOptions()
	opts.Quality = float32(s.Quality)
	opts.Method = s.Method
	opts.AlphaQuality = s.AlphaQuality
	opts.UseSharpYUV = s.UseSharpYUV

	var buf bytes.Buffer
	if err := webp.Encode(&buf, prefilter(img, quality), opts); err != nil {
		return nil, &EncodeError{Quality: quality, Err: err}
	}
	return buf.Bytes(), nil
}

// prefilter tones down hard-to-compress detail before the encode. Low-quality
// encodes get a stronger saturation cut plus a very light blur; everything
// else only loses 2% saturation.
func prefilter(img image.Image, quality int) image.Image {
	if quality < 50 {
		out := imaging.AdjustSaturation(img, -5)
		return imaging.Blur(out, 0.3)
	}
	return imaging.AdjustSaturation(img, -2)
}
