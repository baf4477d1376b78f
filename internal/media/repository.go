package media

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mossydrift/estate-listing-backend/internal/pkg/apperror"
)

type Repository interface {
	Create(ctx context.Context, img *Image) error
	GetByID(ctx context.Context, id string) (*Image, error)
	List(ctx context.Context) ([]*Image, error)
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewPgxRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

var imageColumns = []string{
	"id", "filename", "public_id", "url", "format", "width", "height",
	"size", "original_size", "quality", "compression_ratio",
	"compression_applied", "achieved_target", "alt_text", "display_order",
	"is_main", "created_at",
}

func (r *repository) Create(ctx context.Context, img *Image) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("media_images").
		Columns(imageColumns...).
		Values(
			img.ID, img.Filename, img.PublicID, img.URL, img.Format,
			img.Width, img.Height, img.Size, img.OriginalSize, img.Quality,
			img.CompressionRatio, img.CompressionApplied, img.AchievedTarget,
			img.AltText, img.DisplayOrder, img.IsMain, img.CreatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	_, err = r.db.Exec(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return apperror.Wrap(err, http.StatusConflict, "image already recorded")
		}
		return fmt.Errorf("failed to create image record: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Image, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(imageColumns...).
		From("media_images").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	img := &Image{}
	err = r.db.QueryRow(ctx, query, args...).Scan(
		&img.ID, &img.Filename, &img.PublicID, &img.URL, &img.Format,
		&img.Width, &img.Height, &img.Size, &img.OriginalSize, &img.Quality,
		&img.CompressionRatio, &img.CompressionApplied, &img.AchievedTarget,
		&img.AltText, &img.DisplayOrder, &img.IsMain, &img.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.New(http.StatusNotFound, "image not found")
		}
		return nil, fmt.Errorf("failed to get image: %w", err)
	}

	return img, nil
}

func (r *repository) List(ctx context.Context) ([]*Image, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(imageColumns...).
		From("media_images").
		OrderBy("created_at DESC", "display_order ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	defer rows.Close()

	var images []*Image
	for rows.Next() {
		img := &Image{}
		if err := rows.Scan(
			&img.ID, &img.Filename, &img.PublicID, &img.URL, &img.Format,
			&img.Width, &img.Height, &img.Size, &img.OriginalSize, &img.Quality,
			&img.CompressionRatio, &img.CompressionApplied, &img.AchievedTarget,
			&img.AltText, &img.DisplayOrder, &img.IsMain, &img.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan image row: %w", err)
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

func (r *repository) Delete(ctx context.Context, id string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Delete("media_images").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	_, err = r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete image record: %w", err)
	}
	return nil
}
