package handler

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/roadsafety-api/pkg/response"
	"github.com/noah-isme/roadsafety-api/pkg/storage"
)

type mediaOpener interface {
	Open(token string) (*os.File, error)
}

// MediaHandler streams uploaded images behind signed links.
type MediaHandler struct {
	media mediaOpener
}

// NewMediaHandler constructs the handler.
func NewMediaHandler(media mediaOpener) *MediaHandler {
	return &MediaHandler{media: media}
}

// Serve godoc
// @Summary Download an uploaded image
// @Tags Media
// @Produce octet-stream
// @Param token path string true "Signed media token"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /media/{token} [get]
func (h *MediaHandler) Serve(c *gin.Context) {
	file, err := h.media.Open(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		response.Error(c, err)
		return
	}
	name := filepath.Base(file.Name())
	c.Header("Content-Type", storage.ContentTypeFor(name))
	c.Header("X-Content-Type-Options", "nosniff")
	c.Header("Cache-Control", "private, max-age=300")
	http.ServeContent(c.Writer, c.Request, name, info.ModTime(), file)
}
