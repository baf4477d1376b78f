package media

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/mossydrift/estate-listing-backend/internal/pkg/storage"
	"github.com/mossydrift/estate-listing-backend/internal/upload"
)

type Service interface {
	// UploadBatch runs the compression pipeline on a batch of files and
	// records the results.
	UploadBatch(ctx context.Context, files []upload.FileInput, meta []upload.MetadataEntry) ([]*Image, error)
	Get(ctx context.Context, id string) (*Image, error)
	List(ctx context.Context) ([]*Image, error)
	// Content streams a stored image's bytes along with its record.
	Content(ctx context.Context, id string) (io.ReadCloser, *Image, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo Repository
	sink storage.Sink
	orch *upload.Orchestrator
}

func NewService(repo Repository, sink storage.Sink, orch *upload.Orchestrator) Service {
	return &service{repo: repo, sink: sink, orch: orch}
}

func (s *service) UploadBatch(ctx context.Context, files []upload.FileInput, meta []upload.MetadataEntry) ([]*Image, error) {
	processed, err := s.orch.ProcessBatch(ctx, files, meta)
	if err != nil {
		return nil, err
	}

	images := make([]*Image, 0, len(processed))
	for _, p := range processed {
		img := &Image{
			ID:                 uuid.New().String(),
			Filename:           p.OriginalName,
			PublicID:           p.PublicID,
			URL:                p.URL,
			Format:             p.Format,
			Width:              p.Width,
			Height:             p.Height,
			Size:               p.Size,
			OriginalSize:       p.OriginalSize,
			Quality:            p.Quality,
			CompressionRatio:   p.CompressionRatio,
			CompressionApplied: p.CompressionApplied,
			AchievedTarget:     p.AchievedTarget,
			AltText:            p.AltText,
			DisplayOrder:       p.Order,
			IsMain:             p.IsMain,
			CreatedAt:          time.Now(),
		}

		if err := s.repo.Create(ctx, img); err != nil {
			// Reconcile: sink objects without a record are unreachable, so
			// roll back everything this batch persisted, records included.
			cleanupCtx := context.WithoutCancel(ctx)
			s.orch.Cleanup(cleanupCtx, processed)
			for _, created := range images {
				_ = s.repo.Delete(cleanupCtx, created.ID)
			}
			return nil, fmt.Errorf("failed to record image %q: %w", p.OriginalName, err)
		}
		images = append(images, img)
	}

	return images, nil
}

func (s *service) Get(ctx context.Context, id string) (*Image, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context) ([]*Image, error) {
	return s.repo.List(ctx)
}

func (s *service) Content(ctx context.Context, id string) (io.ReadCloser, *Image, error) {
	img, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	stream, err := s.sink.Open(ctx, img.PublicID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to retrieve image from storage: %w", err)
	}
	return stream, img, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	img, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	// Best-effort storage cleanup; the record is the source of truth.
	_ = s.sink.Delete(ctx, img.PublicID)

	return s.repo.Delete(ctx, id)
}
