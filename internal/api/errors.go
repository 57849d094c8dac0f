package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"notebook-loans-backend/internal/apperr"
	"notebook-loans-backend/internal/query"
)

const (
	detailNotFound    = "Não encontrado."
	detailInvalidPage = "Página inválida."
	detailInternal    = "Erro interno do servidor."
)

// respondError writes the response for any error a handler returns.
func respondError(c *gin.Context, err error) {
	var (
		verr     *apperr.ValidationError
		nf       *apperr.NotFoundError
		conflict *apperr.ConflictError
		authErr  *apperr.AuthError
		upload   *apperr.UploadError
	)

	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, verr.Fields)
	case errors.As(err, &nf):
		c.JSON(http.StatusNotFound, gin.H{"detail": detailNotFound})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{conflict.Field: []string{conflict.Message()}})
	case errors.As(err, &authErr):
		status := http.StatusUnauthorized
		if authErr.Forbidden {
			status = http.StatusForbidden
		}
		c.JSON(status, gin.H{"detail": authErr.Detail})
	case errors.As(err, &upload):
		c.JSON(http.StatusBadRequest, gin.H{"error": upload.Message})
	case errors.Is(err, query.ErrInvalidPage):
		c.JSON(http.StatusNotFound, gin.H{"detail": detailInvalidPage})
	default:
		log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": detailInternal})
	}
}
