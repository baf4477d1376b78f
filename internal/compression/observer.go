package compression

import "log"

// Observer receives engine events. The engine itself keeps no global log
// state; callers inject whatever sink they want. A compression run invokes
// its observer sequentially from a single goroutine.
type Observer interface {
	// EncodeAttempt fires after every encode call with the measured size.
	EncodeAttempt(attempt, quality int, size int64)
	// QualityRefined fires when the loop picks a lower quality to retry with.
	QualityRefined(from, to int)
	// TargetMissed fires when the attempt budget runs out with the final size
	// still above the target. This is a reported outcome, not an error.
	TargetMissed(finalSize, targetSize int64)
}

// NopObserver discards all events.
type NopObserver struct{}

func (NopObserver) EncodeAttempt(attempt, quality int, size int64) {}
func (NopObserver) QualityRefined(from, to int)                    {}
func (NopObserver) TargetMissed(finalSize, targetSize int64)       {}

// LogObserver writes engine events to a standard logger.
type LogObserver struct {
	Logger *log.Logger
}

func (o LogObserver) EncodeAttempt(attempt, quality int, size int64) {
	o.Logger.Printf("encode attempt %d at quality %d produced %d bytes", attempt, quality, size)
}

func (o LogObserver) QualityRefined(from, to int) {
	o.Logger.Printf("refining quality %d -> %d", from, to)
}

func (o LogObserver) TargetMissed(finalSize, targetSize int64) {
	o.Logger.Printf("attempt budget exhausted at %d bytes (target %d)", finalSize, targetSize)
}
