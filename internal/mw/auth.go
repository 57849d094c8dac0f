package mw

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"notebook-loans-backend/internal/apperr"
	"notebook-loans-backend/internal/model"
	"notebook-loans-backend/internal/session"
)

// SessionCookie carries the session token for browser clients.
const SessionCookie = "app_session"

const (
	ctxUser    = "user"
	ctxSession = "session"
)

// UserGetter loads the account behind a session.
type UserGetter interface {
	GetUser(ctx context.Context, id int64) (*model.User, error)
}

// Token extracts the session token from the Authorization header
// ("Bearer <t>" or "Token <t>") or, failing that, the session cookie.
func Token(c *gin.Context) string {
	if h := strings.TrimSpace(c.GetHeader("Authorization")); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && (strings.EqualFold(scheme, "Bearer") || strings.EqualFold(scheme, "Token")) {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if ck, err := c.Cookie(SessionCookie); err == nil {
		return ck
	}
	return ""
}

// RequireAuth rejects requests without a live session of an active user.
func RequireAuth(sessions session.Store, users UserGetter) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := Token(c)
		if token == "" {
			abortAuth(c, apperr.ErrNotAuthenticated)
			return
		}

		ctx := c.Request.Context()
		sess, err := sessions.Get(ctx, token)
		if errors.Is(err, session.ErrNotFound) {
			abortAuth(c, apperr.ErrInvalidSession)
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "Erro ao validar a sessão."})
			return
		}

		u, err := users.GetUser(ctx, sess.UserID)
		if err != nil || !u.IsActive {
			_ = sessions.Delete(ctx, token)
			abortAuth(c, apperr.ErrInvalidSession)
			return
		}

		c.Set(ctxUser, u)
		c.Set(ctxSession, sess)
		c.Next()
	}
}

// AdminOnly must run after RequireAuth.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		u := CurrentUser(c)
		if u == nil {
			abortAuth(c, apperr.ErrNotAuthenticated)
			return
		}
		if !u.IsAdmin() {
			abortAuth(c, apperr.ErrForbidden)
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user set by RequireAuth, or nil.
func CurrentUser(c *gin.Context) *model.User {
	v, ok := c.Get(ctxUser)
	if !ok {
		return nil
	}
	u, _ := v.(*model.User)
	return u
}

// CurrentSession returns the session set by RequireAuth, or nil.
func CurrentSession(c *gin.Context) *session.Session {
	v, ok := c.Get(ctxSession)
	if !ok {
		return nil
	}
	s, _ := v.(*session.Session)
	return s
}

func abortAuth(c *gin.Context, err *apperr.AuthError) {
	status := http.StatusUnauthorized
	if err.Forbidden {
		status = http.StatusForbidden
	} else {
		c.Header("WWW-Authenticate", `Bearer realm="api"`)
	}
	c.AbortWithStatusJSON(status, gin.H{"detail": err.Detail})
}
