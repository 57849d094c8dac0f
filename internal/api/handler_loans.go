package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"notebook-loans-backend/internal/dto"
	"notebook-loans-backend/internal/model"
)

const loanResource = "emprestimo"

// ListLoans handles GET /emprestimos/.
func (h *Handler) ListLoans(c *gin.Context) {
	q, err := h.parseQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}
	loans, total, err := h.store.ListLoans(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	writePage(c, q, total, dto.NewLoanResponses(loans))
}

// CreateLoan handles POST /emprestimos/. Status defaults to active.
func (h *Handler) CreateLoan(c *gin.Context) {
	body, err := readBody(c)
	if err != nil {
		respondError(c, err)
		return
	}
	in := dto.NewLoanInput()
	if err := in.Decode(body, dto.Create); err != nil {
		respondError(c, err)
		return
	}

	var l model.Loan
	in.Apply(&l)
	if err := h.store.CreateLoan(c.Request.Context(), &l); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewLoanResponse(&l))
}

// GetLoan handles GET /emprestimos/:id/.
func (h *Handler) GetLoan(c *gin.Context) {
	id, err := pathID(c, loanResource)
	if err != nil {
		respondError(c, err)
		return
	}
	l, err := h.store.GetLoan(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewLoanResponse(l))
}

// UpdateLoan handles PUT and PATCH /emprestimos/:id/.
func (h *Handler) UpdateLoan(mode dto.Mode) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, loanResource)
		if err != nil {
			respondError(c, err)
			return
		}
		ctx := c.Request.Context()
		l, err := h.store.GetLoan(ctx, id)
		if err != nil {
			respondError(c, err)
			return
		}
		body, err := readBody(c)
		if err != nil {
			respondError(c, err)
			return
		}

		in := dto.LoanInputFrom(l)
		if err := in.Decode(body, mode); err != nil {
			respondError(c, err)
			return
		}
		in.Apply(l)
		if err := h.store.UpdateLoan(ctx, l); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.NewLoanResponse(l))
	}
}

// DeleteLoan handles DELETE /emprestimos/:id/ (admins only).
func (h *Handler) DeleteLoan(c *gin.Context) {
	id, err := pathID(c, loanResource)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.store.DeleteLoan(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
