package handler

import (
	"net/http"

	"browse-movies/internal/metrics"
	"browse-movies/internal/ratelimit"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Deps agrupa lo que necesita el router. Metrics y LoginLimiter son opcionales.
type Deps struct {
	Auth         *AuthHandler
	Favorites    *FavoritesHandler
	Movies       *MovieHandler
	Health       *HealthHandler
	Guard        Identifier
	Metrics      *metrics.Metrics
	LoginLimiter *ratelimit.Limiter
	CORSOrigins  []string

	// TrustProxyHeaders=true solo detrás de un proxy propio: con RealIP el
	// rate limit usa X-Forwarded-For / X-Real-IP en vez de RemoteAddr
	TrustProxyHeaders bool

	// RequestLogging=false en tests para no ensuciar la salida
	RequestLogging bool
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	if d.TrustProxyHeaders {
		r.Use(middleware.RealIP)
	}
	if d.RequestLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	r.Get("/health", d.Health.Health)

	// =============
	// Rutas públicas
	// =============
	r.Route("/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if d.LoginLimiter != nil {
				r.Use(d.LoginLimiter.Middleware(tooManyRequests))
			}
			r.Post("/signup", d.Auth.Register)
			r.Post("/login", d.Auth.Login)
		})
		r.With(JWTAuth(d.Guard)).Get("/me", d.Auth.Me)
	})

	r.Route("/movies", func(r chi.Router) {
		r.Get("/popular", d.Movies.Popular)
		r.Get("/search", d.Movies.Search)
		r.Get("/genres", d.Movies.Genres)
		r.Get("/discover", d.Movies.Discover)
	})

	// ===========================
	// Rutas protegidas con JWT
	// ===========================
	r.Route("/users/favorites", func(r chi.Router) {
		r.With(JWTAuth(d.Guard)).Get("/", d.Favorites.List)
		r.With(JWTAuth(d.Guard)).Post("/add", d.Favorites.Add)
		r.With(JWTAuth(d.Guard)).Delete("/remove", d.Favorites.Remove)
		r.With(TokenFromQuery, JWTAuth(d.Guard)).Get("/ws", d.Favorites.Stream)
	})

	return r
}

func tooManyRequests(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Retry-After", "1")
	writeError(w, http.StatusTooManyRequests, "Too many requests, try again later")
}
