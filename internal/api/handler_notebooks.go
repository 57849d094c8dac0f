package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"notebook-loans-backend/internal/dto"
	"notebook-loans-backend/internal/model"
)

const notebookResource = "notebook"

// ListNotebooks handles GET /notebooks/.
func (h *Handler) ListNotebooks(c *gin.Context) {
	q, err := h.parseQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}
	notebooks, total, err := h.store.ListNotebooks(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	writePage(c, q, total, dto.NewNotebookResponses(notebooks))
}

// CreateNotebook handles POST /notebooks/.
func (h *Handler) CreateNotebook(c *gin.Context) {
	body, err := readBody(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var in dto.NotebookInput
	if err := in.Decode(body, dto.Create); err != nil {
		respondError(c, err)
		return
	}

	var n model.Notebook
	in.Apply(&n)
	if err := h.store.CreateNotebook(c.Request.Context(), &n); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewNotebookResponse(&n))
}

// GetNotebook handles GET /notebooks/:id/.
func (h *Handler) GetNotebook(c *gin.Context) {
	id, err := pathID(c, notebookResource)
	if err != nil {
		respondError(c, err)
		return
	}
	n, err := h.store.GetNotebook(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewNotebookResponse(n))
}

// UpdateNotebook handles PUT and PATCH /notebooks/:id/.
func (h *Handler) UpdateNotebook(mode dto.Mode) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, notebookResource)
		if err != nil {
			respondError(c, err)
			return
		}
		ctx := c.Request.Context()
		n, err := h.store.GetNotebook(ctx, id)
		if err != nil {
			respondError(c, err)
			return
		}
		body, err := readBody(c)
		if err != nil {
			respondError(c, err)
			return
		}

		in := dto.NotebookInputFrom(n)
		if err := in.Decode(body, mode); err != nil {
			respondError(c, err)
			return
		}
		in.Apply(n)
		if err := h.store.UpdateNotebook(ctx, n); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.NewNotebookResponse(n))
	}
}

// DeleteNotebook handles DELETE /notebooks/:id/.
func (h *Handler) DeleteNotebook(c *gin.Context) {
	id, err := pathID(c, notebookResource)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.store.DeleteNotebook(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
