package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"browse-movies/internal/cache"
	"browse-movies/internal/config"
	"browse-movies/internal/db"
	"browse-movies/internal/handler"
	"browse-movies/internal/metrics"
	"browse-movies/internal/notify"
	"browse-movies/internal/ratelimit"
	"browse-movies/internal/repository"
	"browse-movies/internal/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// @title Browse Movies API
// @version 1.0
// @description Signup/login con JWT, favoritos por usuario y proxy a TMDB
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Mongo y Redis
	mongoDB, err := db.Connect(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	redisCache, err := cache.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPass)
	if err != nil {
		// sin Redis seguimos, solo se pierde el cache de TMDB
		log.Printf("[redis] WARNING: %v (cache deshabilitado)", err)
		redisCache = nil
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New("browse_movies", reg)

	// repos
	userRepo := repository.NewUserRepository(mongoDB.DB())

	// services
	hub := notify.NewHub()
	authSvc := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpiresIn)
	favSvc := service.NewFavoritesService(userRepo, hub, m)
	movieSvc := service.NewMovieService(cfg.TMDBBaseURL, cfg.TMDBAPIKey, redisCache, cfg.TMDBCacheTTL, m)

	loginLimiter := ratelimit.New(cfg.LoginRatePerSec, cfg.LoginBurst)
	go loginLimiter.StartCleanupWorker(ctx, time.Minute, 10*time.Minute)

	router := handler.NewRouter(handler.Deps{
		Auth:           handler.NewAuthHandler(authSvc),
		Favorites:      handler.NewFavoritesHandler(favSvc, hub, m),
		Movies:         handler.NewMovieHandler(movieSvc),
		Health:         handler.NewHealthHandler(mongoDB, redisCache, redisCache.Enabled()),
		Guard:          authSvc,
		Metrics:        m,
		LoginLimiter:   loginLimiter,
		CORSOrigins:    cfg.CORSOrigins,
		RequestLogging: true,

		TrustProxyHeaders: cfg.TrustProxyHeaders,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		log.Println("[http] apagando servidor...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("[http] error en shutdown: %v", err)
		}
	}()

	log.Printf("HTTP escuchando en :%s", cfg.HTTPPort)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}

	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisCache.Close(); err != nil {
		log.Printf("[redis] error cerrando: %v", err)
	}
	if err := mongoDB.Close(closeCtx); err != nil {
		log.Printf("[mongo] error cerrando: %v", err)
	}
}
