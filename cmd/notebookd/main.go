package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/redis/go-redis/v9"

	"notebook-loans-backend/config"
	"notebook-loans-backend/internal/api"
	"notebook-loans-backend/internal/auth"
	"notebook-loans-backend/internal/db"
	"notebook-loans-backend/internal/media"
	"notebook-loans-backend/internal/reminder"
	"notebook-loans-backend/internal/session"
	"notebook-loans-backend/internal/store"
)

// memoryRedisAddr keeps sessions in process, for development without Redis.
const memoryRedisAddr = "memory"

func main() {
	logger := log.New(os.Stdout, "notebookd ", log.LstdFlags)

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	loc, err := time.LoadLocation(cfg.Reminder.Timezone)
	if err != nil {
		logger.Fatalf("invalid reminder.timezone %q: %v", cfg.Reminder.Timezone, err)
	}

	var webpushOptions *webpush.Options
	if cfg.Push.Enabled() {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
	} else {
		logger.Println("VAPID keys are not configured; push notifications are disabled")
	}

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)
	logger.Println("data store initialized")

	created, err := auth.EnsureAdmin(ctx, appStore, cfg.Auth.BootstrapAdmin)
	if err != nil {
		logger.Fatalf("failed to bootstrap administrator: %v", err)
	}
	if created {
		logger.Println("created bootstrap administrator account")
	}

	sessions, closeSessions := newSessionStore(ctx, cfg, logger)
	defer closeSessions()

	mediaStorage := media.NewStorage(cfg.Media.Root, cfg.Media.BaseURL, cfg.Media.UniqueNames)

	reminderDone := make(chan struct{})
	if webpushOptions != nil {
		reminderSvc := reminder.NewService(cfg, appStore, webpushOptions, loc)
		go func() {
			reminderSvc.Run(ctx)
			close(reminderDone)
		}()
	} else {
		close(reminderDone)
	}

	router := api.NewRouter(api.Deps{
		Store:    appStore,
		Sessions: sessions,
		Media:    mediaStorage,
		Webpush:  webpushOptions,
		Config:   cfg,
		Location: loc,
	})
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Printf("HTTP server Shutdown: %v", err)
	}
	cancel()
	select {
	case <-reminderDone:
	case <-shutdownCtx.Done():
		logger.Println("reminder workers did not stop in time")
	}

	logger.Println("Server gracefully stopped")
}

// newSessionStore connects to Redis, or keeps sessions in memory when the
// configured address is "memory".
func newSessionStore(ctx context.Context, cfg *config.Config, logger *log.Logger) (session.Store, func()) {
	if cfg.Redis.Addr == memoryRedisAddr {
		logger.Println("using in-memory session store; sessions are lost on restart")
		return session.NewMemoryStore(cfg.Auth.SessionTTL), func() {}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Fatalf("failed to connect to redis at %s: %v", cfg.Redis.Addr, err)
	}
	logger.Printf("connected to redis at %s", cfg.Redis.Addr)

	return session.NewRedisStore(rdb, cfg.Auth.SessionTTL), func() {
		if err := rdb.Close(); err != nil {
			logger.Printf("failed to close redis client: %v", err)
		}
	}
}
