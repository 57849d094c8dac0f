package api

import (
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"

	"notebook-loans-backend/internal/apperr"
	"notebook-loans-backend/internal/dto"
	"notebook-loans-backend/internal/media"
	"notebook-loans-backend/internal/parse"
	"notebook-loans-backend/internal/query"
	"notebook-loans-backend/internal/session"
	"notebook-loans-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store        store.Store
	sessions     session.Store
	media        *media.Storage
	webpush      *webpush.Options
	pageOpts     query.Options
	cookieSecure bool
	now          func() time.Time
	loc          *time.Location
}

// NewHandler creates a new API handler from the router dependencies.
func NewHandler(d Deps) *Handler {
	h := &Handler{
		store:    d.Store,
		sessions: d.Sessions,
		media:    d.Media,
		webpush:  d.Webpush,
		pageOpts: query.DefaultOptions,
		now:      d.Now,
		loc:      d.Location,
	}
	if d.Config != nil {
		h.pageOpts = query.Options{
			DefaultPageSize: d.Config.Pagination.DefaultPageSize,
			MaxPageSize:     d.Config.Pagination.MaxPageSize,
		}
		h.cookieSecure = d.Config.Auth.CookieSecure
	}
	if h.now == nil {
		h.now = time.Now
	}
	if h.loc == nil {
		h.loc = time.UTC
	}
	return h
}

// today is the current calendar day in the configured timezone.
func (h *Handler) today() time.Time {
	return parse.Day(h.now(), h.loc)
}

// pathID reads the :id parameter. Anything but a positive integer is a 404,
// as no record can match it.
func pathID(c *gin.Context, resource string) (int64, error) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, &apperr.NotFoundError{Resource: resource, ID: raw}
	}
	return id, nil
}

func readBody(c *gin.Context) ([]byte, error) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, apperr.FieldError(dto.NonFieldErrors, "Não foi possível ler o corpo da requisição.")
	}
	return body, nil
}

func (h *Handler) parseQuery(c *gin.Context) (query.Query, error) {
	return query.Parse(c.Request.URL.Query(), h.pageOpts)
}

// requestURL rebuilds the absolute URL of the current request for page links.
func requestURL(c *gin.Context) *url.URL {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if fwd := c.GetHeader("X-Forwarded-Proto"); fwd != "" {
		scheme = fwd
	}
	return &url.URL{
		Scheme:   scheme,
		Host:     c.Request.Host,
		Path:     c.Request.URL.Path,
		RawQuery: c.Request.URL.RawQuery,
	}
}

func writePage[T any](c *gin.Context, q query.Query, total int64, results []T) {
	next, previous := query.Links(requestURL(c), q.Page, total)
	c.JSON(http.StatusOK, dto.Page[T]{
		Count:    total,
		Next:     next,
		Previous: previous,
		Results:  results,
	})
}
