package api

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/mossydrift/estate-listing-backend/internal/media"
	mediaHttp "github.com/mossydrift/estate-listing-backend/internal/media/http"
)

// Config holds the dependencies the router needs.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	MediaService media.Service
	// MaxUploadBytes caps the multipart body size gin buffers in memory.
	MaxUploadBytes int64
}

// NewRouter initializes the HTTP router engine. It assembles middleware
// (CORS, Logger, Recovery) and registers routes for the media module.
func NewRouter(cfg Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	if cfg.MaxUploadBytes > 0 {
		r.MaxMultipartMemory = cfg.MaxUploadBytes
	}

	corsConfig := cors.DefaultConfig()
	if cfg.IsProduction && cfg.ProdOrigins != "" {
		corsConfig.AllowOrigins = []string{cfg.ProdOrigins}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	mediaHandler := mediaHttp.NewHandler(cfg.MediaService)

	v1 := r.Group("/v1")
	{
		mediaHttp.RegisterRoutes(v1, mediaHandler)
	}

	return r
}
