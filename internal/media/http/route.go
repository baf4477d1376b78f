package http

import "github.com/gin-gonic/gin"

// RegisterRoutes registers media routes.
func RegisterRoutes(r gin.IRouter, handler *Handler) {
	group := r.Group("/media/images")

	group.POST("", handler.Upload)
	group.GET("", handler.List)
	group.GET("/:id", handler.Get)
	group.GET("/:id/content", handler.Content)
	group.DELETE("/:id", handler.Delete)
}
