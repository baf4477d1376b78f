package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mossydrift/estate-listing-backend/internal/compression"
	"github.com/mossydrift/estate-listing-backend/internal/media"
	"github.com/mossydrift/estate-listing-backend/internal/pkg/apperror"
	"github.com/mossydrift/estate-listing-backend/internal/pkg/request"
	"github.com/mossydrift/estate-listing-backend/internal/pkg/response"
	"github.com/mossydrift/estate-listing-backend/internal/upload"
)

type Handler struct {
	service media.Service
}

func NewHandler(service media.Service) *Handler {
	return &Handler{service: service}
}

// Upload accepts a multipart batch: files under the "images" field, plus an
// optional "imageMetadata" JSON array ({altText, order, isMain}) indexed to
// upload order.
func (h *Handler) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart form is required"})
		return
	}

	headers := form.File["images"]
	if len(headers) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at least one file under \"images\" is required"})
		return
	}

	var meta []upload.MetadataEntry
	if raw := c.PostForm("imageMetadata"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &meta); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "imageMetadata must be a JSON array"})
			return
		}
	}

	files := make([]upload.FileInput, 0, len(headers))
	for _, header := range headers {
		src, err := header.Open()
		if err != nil {
			response.Error(c, apperror.Wrap(err, http.StatusBadRequest, "failed to open uploaded file "+header.Filename))
			return
		}
		data, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			response.Error(c, apperror.Wrap(err, http.StatusBadRequest, "failed to read uploaded file "+header.Filename))
			return
		}
		files = append(files, upload.FileInput{
			Name:     header.Filename,
			MimeType: header.Header.Get("Content-Type"),
			Data:     data,
		})
	}

	images, err := h.service.UploadBatch(c.Request.Context(), files, meta)
	if err != nil {
		response.Error(c, mapUploadError(err))
		return
	}

	resp := UploadResponse{Message: "images uploaded successfully", Images: make([]ImageResponse, 0, len(images))}
	for _, img := range images {
		resp.Images = append(resp.Images, toImageResponse(img))
	}
	c.JSON(http.StatusCreated, resp)
}

// List returns all recorded images.
func (h *Handler) List(c *gin.Context) {
	images, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]ImageResponse, 0, len(images))
	for _, img := range images {
		items = append(items, toImageResponse(img))
	}
	c.JSON(http.StatusOK, response.NewPageResponse(items, 1, len(items), len(items)))
}

// Get returns one image record by ID.
func (h *Handler) Get(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "valid image ID is required"})
		return
	}

	img, err := h.service.Get(c.Request.Context(), req.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, toImageResponse(img))
}

// Content streams the stored image bytes.
func (h *Handler) Content(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "valid image ID is required"})
		return
	}

	stream, img, err := h.service.Content(c.Request.Context(), req.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer stream.Close()

	c.Header("Content-Type", "image/webp")
	c.Header("Content-Disposition", "inline; filename=\""+img.Filename+"\"")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, stream); err != nil {
		// Response already started; nothing useful left to send.
		return
	}
}

// Delete removes an image record and its stored object.
func (h *Handler) Delete(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "valid image ID is required"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), req.ID); err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "image deleted"})
}

// mapUploadError translates engine failures into HTTP semantics: boundary
// violations and undecodable buffers are the client's fault; encode and
// persistence failures are server-side but still name the offending file.
func mapUploadError(err error) error {
	var vErr *compression.ValidationError
	if errors.As(err, &vErr) || errors.Is(err, compression.ErrInvalidImage) {
		return apperror.Wrap(err, http.StatusBadRequest, err.Error())
	}

	var bErr *upload.BatchError
	if errors.As(err, &bErr) {
		return apperror.Wrap(err, http.StatusInternalServerError, err.Error())
	}
	return err
}
