package compression

// Target configures the byte-size goal of the quality search.
type Target struct {
	// SizeBytes is the byte-size ceiling the search attempts to reach.
	SizeBytes int64
	// MaxRefinementAttempts bounds the encode calls issued after the initial
	// predictive encode. Total encode calls per image never exceed
	// 1 + MaxRefinementAttempts.
	MaxRefinementAttempts int
	// QualityFloor and QualityCeiling bound the lossy quality parameter.
	QualityFloor   int
	QualityCeiling int
}

// DefaultTarget returns the standard 100KB target with a two-refinement budget.
func DefaultTarget() Target {
	return Target{
		SizeBytes:             100 * 1024,
		MaxRefinementAttempts: 2,
		QualityFloor:          1,
		QualityCeiling:        100,
	}
}

// maxAttempts is the hard ceiling on encode calls for one image.
func (t Target) maxAttempts() int {
	return 1 + t.MaxRefinementAttempts
}

// clampQuality forces q into [QualityFloor, QualityCeiling].
func (t Target) clampQuality(q int) int {
	if q < t.QualityFloor {
		return t.QualityFloor
	}
	if q > t.QualityCeiling {
		return t.QualityCeiling
	}
	return q
}

// Limits bound what the engine accepts before any encode is attempted.
type Limits struct {
	MaxFileSizeBytes int64
	MaxFilesPerBatch int
	MinWidth         int
	MinHeight        int
	AllowedFormats   []string
}

// DefaultLimits returns the boundary constraints for uploaded images.
func DefaultLimits() Limits {
	return Limits{
		MaxFileSizeBytes: 11_534_336,
		MaxFilesPerBatch: 10,
		MinWidth:         100,
		MinHeight:        100,
		AllowedFormats:   []string{"jpeg", "png", "webp"},
	}
}

func (l Limits) formatAllowed(format string) bool {
	for _, f := range l.AllowedFormats {
		if f == format {
			return true
		}
	}
	return false
}
