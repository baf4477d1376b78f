package http

import "github.com/mossydrift/estate-listing-backend/internal/media"

// UploadResponse is returned after a successful batch upload.
type UploadResponse struct {
	Message string          `json:"message"`
	Images  []ImageResponse `json:"images"`
}

// ImageResponse is the public view of one processed image.
type ImageResponse struct {
	ID                 string `json:"id"`
	OriginalName       string `json:"original_name"`
	URL                string `json:"url"`
	ContentURL         string `json:"content_url"`
	Format             string `json:"format"`
	Width              int    `json:"width"`
	Height             int    `json:"height"`
	Size               int64  `json:"size"`
	OriginalSize       int64  `json:"original_size"`
	Quality            int    `json:"quality"`
	CompressionRatio   int    `json:"compression_ratio"`
	Compressed         bool   `json:"compressed"`
	CompressionApplied bool   `json:"compression_applied"`
	AltText            string `json:"alt_text"`
	Order              int    `json:"order"`
	IsMain             bool   `json:"is_main"`
}

func toImageResponse(img *media.Image) ImageResponse {
	return ImageResponse{
		ID:                 img.ID,
		OriginalName:       img.Filename,
		URL:                img.URL,
		ContentURL:         media.ContentURL(img.ID),
		Format:             img.Format,
		Width:              img.Width,
		Height:             img.Height,
		Size:               img.Size,
		OriginalSize:       img.OriginalSize,
		Quality:            img.Quality,
		CompressionRatio:   img.CompressionRatio,
		Compressed:         img.AchievedTarget,
		CompressionApplied: img.CompressionApplied,
		AltText:            img.AltText,
		Order:              img.DisplayOrder,
		IsMain:             img.IsMain,
	}
}
