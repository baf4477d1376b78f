package compression

import "math"

// predictInput carries the values the tier predicates look at.
type predictInput struct {
	OriginalSize int64
	Ratio        float64 // target size / original size
	Megapixels   float64
}

// qualityTier pairs a predicate with the ratio multiplier to apply when it
// matches. Tiers are evaluated in order; the first match wins.
type qualityTier struct {
	name       string
	matches    func(in predictInput) bool
	multiplier float64
}

// Higher-resolution or larger images compress more efficiently per
// quality point, so the multipliers discount the naive ratio-to-quality
// mapping as resolution and byte size grow. The first tier maps extreme
// compression ratios straight to the floor (multiplier 0 rounds to 0 and
// the minimum-of-1 rule takes over).
var qualityTiers = []qualityTier{
	{
		name:       "extreme-ratio",
		matches:    func(in predictInput) bool { return in.Ratio < 0.1 },
		multiplier: 0,
	},
	{
		name:       "huge-resolution",
		matches:    func(in predictInput) bool { return in.Megapixels > 20 },
		multiplier: 0.3,
	},
	{
		name:       "high-resolution",
		matches:    func(in predictInput) bool { return in.Megapixels > 10 },
		multiplier: 0.5,
	},
	{
		name:       "large-file",
		matches:    func(in predictInput) bool { return in.OriginalSize > 5*1024*1024 },
		multiplier: 0.6,
	},
	{
		name:       "standard",
		matches:    func(in predictInput) bool { return true },
		multiplier: 0.8,
	},
}

// PredictQuality maps (original size, resolution, target size) to the initial
// lossy-quality guess for the refinement loop.
func (t Target) PredictQuality(originalSize int64, width, height int) int {
	in := predictInput{
		OriginalSize: originalSize,
		Ratio:        float64(t.SizeBytes) / float64(originalSize),
		Megapixels:   float64(width) * float64(height) / 1_000_000,
	}

	for _, tier := range qualityTiers {
		if !tier.matches(in) {
			continue
		}
		q := int(math.Round(in.Ratio * 100 * tier.multiplier))
		if q < 1 {
			q = 1
		}
		return t.clampQuality(q)
	}

	// Unreachable: the standard tier always matches.
	return t.clampQuality(1)
}
