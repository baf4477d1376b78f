package compression

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	// Register decoders for the accepted input formats.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// Metadata describes a raw image buffer without fully decoding its pixels.
type Metadata struct {
	Width    int
	Height   int
	Format   string // "jpeg", "png" or "webp"
	HasAlpha bool
	Channels int
}

// Inspect extracts dimensions, format and channel layout from raw bytes.
// It returns an error wrapping ErrInvalidImage on empty, corrupt, or
// unsupported input.
func Inspect(data []byte) (*Metadata, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty buffer", ErrInvalidImage)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	hasAlpha, channels := channelInfo(cfg.ColorModel)
	return &Metadata{
		Width:    cfg.Width,
		Height:   cfg.Height,
		Format:   format,
		HasAlpha: hasAlpha,
		Channels: channels,
	}, nil
}

// Validate enforces the boundary limits on an inspected image. It runs before
// any encode is attempted so oversized or undersized inputs never reach the
// codec.
func (l Limits) Validate(meta *Metadata, size int64) error {
	if size > l.MaxFileSizeBytes {
		return &ValidationError{Reason: fmt.Sprintf("file size %d exceeds limit of %d bytes", size, l.MaxFileSizeBytes)}
	}
	if !l.formatAllowed(meta.Format) {
		return &ValidationError{Reason: fmt.Sprintf("format %q is not allowed", meta.Format)}
	}
	if meta.Width < l.MinWidth || meta.Height < l.MinHeight {
		return &ValidationError{Reason: fmt.Sprintf("dimensions %dx%d below minimum %dx%d", meta.Width, meta.Height, l.MinWidth, l.MinHeight)}
	}
	return nil
}

func channelInfo(m color.Model) (hasAlpha bool, channels int) {
	switch m {
	case color.NRGBAModel, color.RGBAModel, color.NRGBA64Model, color.RGBA64Model, color.NYCbCrAModel:
		return true, 4
	case color.YCbCrModel:
		return false, 3
	case color.GrayModel, color.Gray16Model:
		return false, 1
	case color.CMYKModel:
		return false, 4
	}

	// Paletted images carry alpha only if some palette entry is translucent.
	if p, ok := m.(color.Palette); ok {
		for _, c := range p {
			if _, _, _, a := c.RGBA(); a < 0xffff {
				return true, 4
			}
		}
		return false, 3
	}

	return false, 3
}
