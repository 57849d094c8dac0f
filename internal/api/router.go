package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"notebook-loans-backend/config"
	"notebook-loans-backend/internal/dto"
	"notebook-loans-backend/internal/media"
	"notebook-loans-backend/internal/mw"
	"notebook-loans-backend/internal/session"
	"notebook-loans-backend/internal/store"
)

// Deps are the collaborators of the HTTP layer.
type Deps struct {
	Store    store.Store
	Sessions session.Store
	Media    *media.Storage
	Webpush  *webpush.Options
	Config   *config.Config
	// Now and Location default to time.Now and UTC.
	Now      func() time.Time
	Location *time.Location
}

// NewRouter creates and configures a new Gin router.
func NewRouter(d Deps) *gin.Engine {
	r := gin.Default()

	cfg := d.Config
	if cfg == nil {
		cfg = &config.Config{}
	}
	handler := NewHandler(d)

	r.Use(mw.CORS(cfg.Server.CORSAllowOrigins))
	r.GET("/healthz", handler.Health)
	if d.Media != nil && d.Media.ServesLocally() {
		r.Static(d.Media.BaseURL, d.Media.Root)
	}

	perSec, burst := cfg.Server.RateLimitPerSec, cfg.Server.RateLimitBurst
	if perSec <= 0 {
		perSec, burst = 10, 20
	}
	rateLimiter := mw.RateLimiter(rate.Limit(perSec), burst)

	loginPerMin := cfg.Server.LoginRatePerMin
	if loginPerMin <= 0 {
		loginPerMin = 10
	}
	loginLimiter := mw.RateLimiter(rate.Limit(loginPerMin/60), 5)

	ttl := time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	reportCache := cache.New(ttl, 2*ttl)
	caching := mw.Cache(reportCache, ttl)

	api := r.Group(cfg.Server.BasePath)
	api.Use(rateLimiter, mw.FlushOnWrite(reportCache))

	api.POST("/auth/login/", loginLimiter, handler.Login)
	api.GET("/push/vapid-public-key/", handler.GetVAPIDPublicKey)

	authed := api.Group("", mw.RequireAuth(d.Sessions, d.Store))
	admin := mw.AdminOnly()
	{
		authed.POST("/auth/logout/", handler.Logout)
		authed.GET("/auth/me/", handler.Me)

		authed.GET("/notebooks/", handler.ListNotebooks)
		authed.POST("/notebooks/", handler.CreateNotebook)
		authed.GET("/notebooks/:id/", handler.GetNotebook)
		authed.PUT("/notebooks/:id/", handler.UpdateNotebook(dto.Replace))
		authed.PATCH("/notebooks/:id/", handler.UpdateNotebook(dto.Patch))
		authed.DELETE("/notebooks/:id/", handler.DeleteNotebook)

		authed.GET("/emprestimos/", handler.ListLoans)
		authed.POST("/emprestimos/", handler.CreateLoan)
		authed.GET("/emprestimos/:id/", handler.GetLoan)
		authed.PUT("/emprestimos/:id/", handler.UpdateLoan(dto.Replace))
		authed.PATCH("/emprestimos/:id/", handler.UpdateLoan(dto.Patch))
		authed.DELETE("/emprestimos/:id/", admin, handler.DeleteLoan)

		authed.GET("/users/", handler.ListUsers)
		authed.POST("/users/", admin, handler.CreateUser)
		authed.GET("/users/:id/", handler.GetUser)
		authed.PUT("/users/:id/", admin, handler.UpdateUser(dto.Replace))
		authed.PATCH("/users/:id/", admin, handler.UpdateUser(dto.Patch))
		authed.DELETE("/users/:id/", admin, handler.DeleteUser)

		authed.POST("/files/upload/", handler.UploadFile)

		authed.GET("/reports/summary/", caching, handler.Summary)
		authed.GET("/reports/overdue/", caching, handler.Overdue)
		authed.GET("/reports/available/", caching, handler.Available)

		authed.GET("/push/subscriptions/", handler.GetSubscription)
		authed.PUT("/push/subscriptions/", handler.PutSubscription)
		authed.DELETE("/push/subscriptions/", handler.DeleteSubscription)
	}

	return r
}
