package app

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mossydrift/estate-listing-backend/internal/api"
	"github.com/mossydrift/estate-listing-backend/internal/compression"
	"github.com/mossydrift/estate-listing-backend/internal/media"
	"github.com/mossydrift/estate-listing-backend/internal/pkg/storage"
	"github.com/mossydrift/estate-listing-backend/internal/upload"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	DBPool       *pgxpool.Pool
	Sink         storage.Sink
	Target       compression.Target
	Limits       compression.Limits
	Observer     compression.Observer
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router       *gin.Engine
	MediaService media.Service
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) *Container {
	// Compression engine
	compressor := compression.NewCompressor(cfg.Target, nil, cfg.Observer)
	orchestrator := upload.NewOrchestrator(compressor, cfg.Sink, cfg.Limits)

	// Media module
	mediaRepo := media.NewPgxRepository(cfg.DBPool)
	mediaService := media.NewService(mediaRepo, cfg.Sink, orchestrator)

	// Router
	router := api.NewRouter(api.Config{
		IsProduction:   cfg.IsProduction,
		ProdOrigins:    cfg.ProdOrigins,
		MediaService:   mediaService,
		MaxUploadBytes: cfg.Limits.MaxFileSizeBytes,
	})

	return &Container{
		Router:       router,
		MediaService: mediaService,
	}
}
