package media

import (
	"time"
)

// Image is a persisted listing image record with its compression annotations.
type Image struct {
	ID                 string    `json:"id"`
	Filename           string    `json:"filename"`
	PublicID           string    `json:"-"` // sink locator, internal
	URL                string    `json:"url"`
	Format             string    `json:"format"`
	Width              int       `json:"width"`
	Height             int       `json:"height"`
	Size               int64     `json:"size"`
	OriginalSize       int64     `json:"original_size"`
	Quality            int       `json:"quality"`
	CompressionRatio   int       `json:"compression_ratio"`
	CompressionApplied bool      `json:"compression_applied"`
	AchievedTarget     bool      `json:"achieved_target"`
	AltText            string    `json:"alt_text"`
	DisplayOrder       int       `json:"display_order"`
	IsMain             bool      `json:"is_main"`
	CreatedAt          time.Time `json:"created_at"`
}

// ContentURL returns the route that streams an image's bytes by record ID.
func ContentURL(id string) string {
	return "/v1/media/images/" + id + "/content"
}
