package api

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"notebook-loans-backend/internal/auth"
	"notebook-loans-backend/internal/dto"
	"notebook-loans-backend/internal/model"
)

const userResource = "user"

// ListUsers handles GET /users/.
func (h *Handler) ListUsers(c *gin.Context) {
	q, err := h.parseQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}
	users, total, err := h.store.ListUsers(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	writePage(c, q, total, dto.NewUserResponses(users))
}

// CreateUser handles POST /users/ (admins only).
func (h *Handler) CreateUser(c *gin.Context) {
	body, err := readBody(c)
	if err != nil {
		respondError(c, err)
		return
	}
	in := dto.NewUserInput()
	if err := in.Decode(body, dto.Create); err != nil {
		respondError(c, err)
		return
	}

	var u model.User
	in.Apply(&u)
	if u.PasswordHash, err = auth.HashPassword(in.Password); err != nil {
		respondError(c, err)
		return
	}
	if err := h.store.CreateUser(c.Request.Context(), &u); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewUserResponse(&u))
}

// GetUser handles GET /users/:id/.
func (h *Handler) GetUser(c *gin.Context) {
	id, err := pathID(c, userResource)
	if err != nil {
		respondError(c, err)
		return
	}
	u, err := h.store.GetUser(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponse(u))
}

// UpdateUser handles PUT and PATCH /users/:id/ (admins only). A new password,
// or deactivation, ends every session of the user.
func (h *Handler) UpdateUser(mode dto.Mode) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, userResource)
		if err != nil {
			respondError(c, err)
			return
		}
		ctx := c.Request.Context()
		u, err := h.store.GetUser(ctx, id)
		if err != nil {
			respondError(c, err)
			return
		}
		body, err := readBody(c)
		if err != nil {
			respondError(c, err)
			return
		}

		in := dto.UserInputFrom(u)
		if err := in.Decode(body, mode); err != nil {
			respondError(c, err)
			return
		}

		wasActive := u.IsActive
		in.Apply(u)
		if in.Password != "" {
			if u.PasswordHash, err = auth.HashPassword(in.Password); err != nil {
				respondError(c, err)
				return
			}
		}
		if err := h.store.UpdateUser(ctx, u); err != nil {
			respondError(c, err)
			return
		}
		if in.Password != "" || (wasActive && !u.IsActive) {
			h.revokeSessions(ctx, u.ID)
		}
		c.JSON(http.StatusOK, dto.NewUserResponse(u))
	}
}

// DeleteUser handles DELETE /users/:id/ (admins only).
func (h *Handler) DeleteUser(c *gin.Context) {
	id, err := pathID(c, userResource)
	if err != nil {
		respondError(c, err)
		return
	}
	ctx := c.Request.Context()
	if err := h.store.DeleteUser(ctx, id); err != nil {
		respondError(c, err)
		return
	}
	h.revokeSessions(ctx, id)
	c.Status(http.StatusNoContent)
}

func (h *Handler) revokeSessions(ctx context.Context, userID int64) {
	if err := h.sessions.RevokeAllForUser(ctx, userID); err != nil {
		log.Printf("Failed to revoke sessions of user %d: %v", userID, err)
	}
}
