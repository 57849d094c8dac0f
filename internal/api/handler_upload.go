package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"notebook-loans-backend/internal/apperr"
	"notebook-loans-backend/internal/media"
)

// UploadFile handles POST /files/upload/ with a multipart "file" part.
func (h *Handler) UploadFile(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		respondError(c, apperr.ErrNoFile)
		return
	}
	f, err := fh.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer f.Close()

	fileURL, err := h.media.Save(fh.Filename, f)
	if errors.Is(err, media.ErrBadName) {
		respondError(c, apperr.ErrNoFile)
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"file_url": fileURL})
}
