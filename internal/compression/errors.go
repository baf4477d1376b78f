package compression

import (
	"errors"
	"fmt"
)

// ErrInvalidImage reports an empty, corrupt, or otherwise undecodable buffer.
var ErrInvalidImage = errors.New("invalid image")

// ValidationError rejects an image that decodes fine but violates the
// configured boundary limits. It is raised before any encode call.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "image rejected: " + e.Reason
}

// EncodeError reports a codec failure during a lossy re-encode. It is fatal
// for the file being processed.
type EncodeError struct {
	Quality int
	Err     error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("webp encode at quality %d: %v", e.Quality, e.Err)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}
