// Package upload orchestrates batch image uploads: per-file validation,
// adaptive compression, metadata attachment, and delegation of final buffers
// to a persistence sink.
package upload

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/mossydrift/estate-listing-backend/internal/compression"
	"github.com/mossydrift/estate-listing-backend/internal/pkg/storage"
)

// FileInput is one raw uploaded file.
type FileInput struct {
	Name     string
	MimeType string
	Data     []byte
}

// MetadataEntry is caller-supplied per-image metadata, indexed to upload
// order. All fields are optional.
type MetadataEntry struct {
	AltText string `json:"altText"`
	Order   *int   `json:"order"`
	IsMain  bool   `json:"isMain"`
}

// ProcessedImage is the engine's per-image output: the persisted locator plus
// compression annotations and attached metadata.
type ProcessedImage struct {
	OriginalName       string
	URL                string
	PublicID           string
	Format             string
	Width              int
	Height             int
	Size               int64
	OriginalSize       int64
	Quality            int
	CompressionRatio   int
	CompressionApplied bool
	AchievedTarget     bool
	AltText            string
	Order              int
	IsMain             bool
}

// BatchError identifies the file that aborted a batch. Files persisted
// earlier in the same batch are left in place; cleanup is the caller's
// responsibility.
type BatchError struct {
	Index    int
	Filename string
	Err      error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("file %q (position %d): %v", e.Filename, e.Index+1, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}

// Orchestrator runs the full pipeline over an ordered batch of files.
type Orchestrator struct {
	compressor *compression.Compressor
	sink       storage.Sink
	limits     compression.Limits
}

// NewOrchestrator wires the compression engine to a persistence sink.
func NewOrchestrator(c *compression.Compressor, sink storage.Sink, limits compression.Limits) *Orchestrator {
	return &Orchestrator{compressor: c, sink: sink, limits: limits}
}

// ProcessBatch validates, compresses, and persists each file in order.
//
// Files are processed sequentially so peak resident memory stays bounded to
// one raw+encoded buffer pair; file i+1 never starts before file i's full
// pipeline completes. The first failure aborts the batch with a BatchError
// naming the offending file; earlier files remain persisted. If the context
// is cancelled mid-batch, already persisted files are cleaned up best-effort
// before returning.
func (o *Orchestrator) ProcessBatch(ctx context.Context, files []FileInput, meta []MetadataEntry) ([]ProcessedImage, error) {
	if len(files) == 0 {
		return nil, &compression.ValidationError{Reason: "no files provided"}
	}
	if len(files) > o.limits.MaxFilesPerBatch {
		return nil, &compression.ValidationError{
			Reason: fmt.Sprintf("batch of %d files exceeds limit of %d", len(files), o.limits.MaxFilesPerBatch),
		}
	}

	results := make([]ProcessedImage, 0, len(files))
	for i, f := range files {
		if err := ctx.Err(); err != nil {
			o.Cleanup(context.WithoutCancel(ctx), results)
			return nil, err
		}

		img, err := o.processOne(ctx, f)
		if err != nil {
			return nil, &BatchError{Index: i, Filename: f.Name, Err: err}
		}

		img.Order = i
		if i < len(meta) {
			img.AltText = meta[i].AltText
			img.IsMain = meta[i].IsMain
			if meta[i].Order != nil {
				img.Order = *meta[i].Order
			}
		}
		results = append(results, *img)
	}

	normalizeMain(results)
	return results, nil
}

// Cleanup deletes already persisted objects by locator, best effort. It is
// the explicit hook for callers that need to reconcile a batch after a
// downstream failure.
func (o *Orchestrator) Cleanup(ctx context.Context, images []ProcessedImage) {
	for _, img := range images {
		_ = o.sink.Delete(ctx, img.PublicID)
	}
}

func (o *Orchestrator) processOne(ctx context.Context, f FileInput) (*ProcessedImage, error) {
	if !strings.HasPrefix(f.MimeType, "image/") {
		return nil, &compression.ValidationError{Reason: fmt.Sprintf("mimetype %q is not an image", f.MimeType)}
	}

	meta, err := compression.Inspect(f.Data)
	if err != nil {
		return nil, err
	}
	if err := o.limits.Validate(meta, int64(len(f.Data))); err != nil {
		return nil, err
	}

	res, err := o.compressor.Compress(ctx, f.Data)
	if err != nil {
		return nil, err
	}

	obj, err := o.sink.Store(ctx, webpName(f.Name), bytes.NewReader(res.Data))
	if err != nil {
		return nil, fmt.Errorf("persist: %w", err)
	}

	return &ProcessedImage{
		OriginalName:       f.Name,
		URL:                obj.URL,
		PublicID:           obj.PublicID,
		Format:             "webp",
		Width:              meta.Width,
		Height:             meta.Height,
		Size:               res.Size,
		OriginalSize:       int64(len(f.Data)),
		Quality:            res.Quality,
		CompressionRatio:   compressionRatio(res.Size, int64(len(f.Data))),
		CompressionApplied: res.CompressionApplied,
		AchievedTarget:     res.AchievedTarget,
	}, nil
}

// normalizeMain forces exactly one main image per batch: the first flagged
// image wins, and the first image is the default when none is flagged.
func normalizeMain(images []ProcessedImage) {
	mainIdx := -1
	for i := range images {
		if images[i].IsMain {
			mainIdx = i
			break
		}
	}
	if mainIdx == -1 {
		mainIdx = 0
	}
	for i := range images {
		images[i].IsMain = i == mainIdx
	}
}

// compressionRatio is the percentage reduction from original to final size,
// clamped to [0, 100].
func compressionRatio(size, originalSize int64) int {
	if originalSize <= 0 {
		return 0
	}
	r := int(math.Round((1 - float64(size)/float64(originalSize)) * 100))
	if r < 0 {
		return 0
	}
	if r > 100 {
		return 100
	}
	return r
}

// webpName swaps the file extension for .webp, since every output is
// normalized to that format.
func webpName(name string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	if base == "" {
		base = "image"
	}
	return base + ".webp"
}
