package api

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"notebook-loans-backend/internal/apperr"
	"notebook-loans-backend/internal/auth"
	"notebook-loans-backend/internal/dto"
	"notebook-loans-backend/internal/mw"
)

// Login handles POST /auth/login/. The token is returned in the body and
// also set as the session cookie.
func (h *Handler) Login(c *gin.Context) {
	body, err := readBody(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var in dto.LoginInput
	if err := in.Decode(body); err != nil {
		respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	u, err := h.store.GetUserByUsername(ctx, in.Username)
	var nf *apperr.NotFoundError
	if errors.As(err, &nf) {
		_ = auth.RejectPassword(in.Password)
		respondError(c, apperr.ErrBadCredentials)
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	if err := auth.CheckPassword(u.PasswordHash, in.Password); err != nil || !u.IsActive {
		if err != nil && !errors.Is(err, auth.ErrMismatch) {
			log.Printf("Password check for %q failed: %v", u.Username, err)
		}
		respondError(c, apperr.ErrBadCredentials)
		return
	}

	sess, err := h.sessions.Create(ctx, u.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	now := h.now().UTC().Truncate(time.Microsecond)
	if err := h.store.TouchLastLogin(ctx, u.ID, now); err != nil {
		log.Printf("Failed to record login of user %d: %v", u.ID, err)
	} else {
		u.LastLogin = &now
	}

	maxAge := int(sess.ExpiresAt.Sub(sess.IssuedAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(mw.SessionCookie, sess.Token, maxAge, "/", "", h.cookieSecure, true)
	c.JSON(http.StatusOK, dto.LoginResponse{
		Token:     sess.Token,
		ExpiresAt: sess.ExpiresAt,
		User:      dto.NewUserResponse(u),
	})
}

// Logout handles POST /auth/logout/.
func (h *Handler) Logout(c *gin.Context) {
	if sess := mw.CurrentSession(c); sess != nil {
		if err := h.sessions.Delete(c.Request.Context(), sess.Token); err != nil {
			respondError(c, err)
			return
		}
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(mw.SessionCookie, "", -1, "/", "", h.cookieSecure, true)
	c.Status(http.StatusNoContent)
}

// Me handles GET /auth/me/.
func (h *Handler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewUserResponse(mw.CurrentUser(c)))
}
