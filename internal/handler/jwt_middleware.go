package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"browse-movies/internal/models"
	"browse-movies/internal/service"
)

type ctxKey string

const ctxUser ctxKey = "user"

// Identifier resuelve un bearer token a un usuario existente.
type Identifier interface {
	Identify(ctx context.Context, token string) (*models.User, error)
}

// JWTAuth devuelve un middleware que valida el bearer token, busca el
// usuario y lo mete (sin hash) en el contexto del request.
func JWTAuth(auth Identifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, ok := bearerToken(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, service.ErrInvalidToken.Error())
				return
			}

			u, err := auth.Identify(r.Context(), tokenStr)
			if err != nil {
				if errors.Is(err, service.ErrInvalidToken) {
					writeError(w, http.StatusUnauthorized, service.ErrInvalidToken.Error())
					return
				}
				log.Printf("[auth] error resolviendo token: %v", err)
				writeError(w, http.StatusInternalServerError, "Internal server error")
				return
			}

			ctx := context.WithValue(r.Context(), ctxUser, u)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(authHeader, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// TokenFromQuery copia ?access_token= al header Authorization si no viene.
// Solo para el websocket: el browser no deja setear headers en el handshake.
func TokenFromQuery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			if tok := r.URL.Query().Get("access_token"); tok != "" {
				r.Header.Set("Authorization", "Bearer "+tok)
			}
		}
		next.ServeHTTP(w, r)
	})
}

// IdentityFromContext devuelve el usuario autenticado o nil.
func IdentityFromContext(ctx context.Context) *models.User {
	u, _ := ctx.Value(ctxUser).(*models.User)
	return u
}
