package compression

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"math"
)

// Result is the outcome of one compression run.
type Result struct {
	// Data is the encoded WebP buffer.
	Data []byte
	// Size is len(Data).
	Size int64
	// Quality is the quality of the last encode.
	Quality int
	// AttemptsUsed counts encode calls, including the initial predictive one.
	AttemptsUsed int
	// CompressionApplied is false when the original already fit the target
	// and only a format-normalizing encode happened.
	CompressionApplied bool
	// AchievedTarget reports Size <= Target.SizeBytes.
	AchievedTarget bool
}

// Compressor converts an image buffer into lossy WebP that satisfies a
// byte-size budget through a bounded, monotonically-decreasing quality
// search. It trades optimality for a hard ceiling on re-encode calls, since
// encoding cost dominates latency.
type Compressor struct {
	target  Target
	encoder Encoder
	obs     Observer
}

// NewCompressor builds a Compressor. A nil encoder defaults to WebPEncoder
// and a nil observer to NopObserver.
func NewCompressor(target Target, enc Encoder, obs Observer) *Compressor {
	if enc == nil {
		enc = WebPEncoder{}
	}
	if obs == nil {
		obs = NopObserver{}
	}
	return &Compressor{target: target, encoder: enc, obs: obs}
}

// Target returns the configured size target.
func (c *Compressor) Target() Target {
	return c.target
}

// Compress runs the quality search on a raw image buffer. The buffer is
// decoded exactly once; every attempt re-encodes from the same pixels.
//
// When the original already fits the target, exactly one encode happens at
// the quality ceiling to normalize the format. Otherwise the loop starts at
// the predicted quality and strictly decreases it until the target is met,
// the floor is hit, or the attempt budget is spent. Exhausting the budget is
// not an error: the result simply reports AchievedTarget=false.
func (c *Compressor) Compress(ctx context.Context, data []byte) (*Result, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	originalSize := int64(len(data))

	// Already under budget: single normalization encode, no compression.
	if originalSize <= c.target.SizeBytes {
		out, err := c.encoder.Encode(img, c.target.QualityCeiling)
		if err != nil {
			return nil, err
		}
		size := int64(len(out))
		c.obs.EncodeAttempt(1, c.target.QualityCeiling, size)
		return &Result{
			Data:               out,
			Size:               size,
			Quality:            c.target.QualityCeiling,
			AttemptsUsed:       1,
			CompressionApplied: false,
			AchievedTarget:     size <= c.target.SizeBytes,
		}, nil
	}

	bounds := img.Bounds()
	quality := c.target.PredictQuality(originalSize, bounds.Dx(), bounds.Dy())

	var (
		out      []byte
		size     int64
		attempts int
	)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		out, err = c.encoder.Encode(img, quality)
		if err != nil {
			return nil, err
		}
		attempts++
		size = int64(len(out))
		c.obs.EncodeAttempt(attempts, quality, size)

		if size <= c.target.SizeBytes || quality == c.target.QualityFloor || attempts == c.target.maxAttempts() {
			break
		}

		next := c.nextQuality(quality, size, attempts)
		if next == quality {
			// Already at the floor with no legal decrease left.
			break
		}
		c.obs.QualityRefined(quality, next)
		quality = next
	}

	res := &Result{
		Data:               out,
		Size:               size,
		Quality:            quality,
		AttemptsUsed:       attempts,
		CompressionApplied: true,
		AchievedTarget:     size <= c.target.SizeBytes,
	}
	if !res.AchievedTarget {
		c.obs.TargetMissed(size, c.target.SizeBytes)
	}
	return res, nil
}

// nextQuality picks the quality for the next attempt. The first refinement
// uses square-root dampening on the size ratio to avoid oscillatory
// overcorrection; later refinements correct linearly with a 0.8 safety
// discount. If the correction fails to decrease the quality, a forced
// 5-point drop keeps the search strictly monotone and therefore terminating.
func (c *Compressor) nextQuality(quality int, size int64, attempts int) int {
	adjustment := float64(c.target.SizeBytes) / float64(size)

	var next int
	if attempts == 1 {
		next = int(math.Round(float64(quality) * math.Sqrt(adjustment)))
		if next > 95 {
			next = 95
		}
	} else {
		next = int(math.Round(float64(quality) * adjustment * 0.8))
	}
	if next < c.target.QualityFloor {
		next = c.target.QualityFloor
	}

	if next >= quality {
		next = quality - 5
		if next < c.target.QualityFloor {
			next = c.target.QualityFloor
		}
	}
	return next
}
