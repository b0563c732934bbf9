package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"browse-movies/internal/service"
)

// errorResponse tiene la misma forma que lee el frontend: message puede ser
// un string o una lista de strings (errores de validación).
type errorResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    any    `json:"message"`
	Error      string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[http] error escribiendo respuesta: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message any) {
	writeJSON(w, status, errorResponse{
		StatusCode: status,
		Message:    message,
		Error:      http.StatusText(status),
	})
}

// writeServiceError traduce los errores de service a status HTTP.
func writeServiceError(w http.ResponseWriter, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Messages)
	case errors.Is(err, service.ErrEmailTaken), errors.Is(err, service.ErrUsernameTaken):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, unwrapMessage(err))
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrUpstream):
		log.Printf("[http] upstream: %v", err)
		writeError(w, http.StatusBadGateway, service.ErrUpstream.Error())
	default:
		log.Printf("[http] error interno: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// no filtramos el detalle del parser de JWT al cliente
func unwrapMessage(err error) string {
	if errors.Is(err, service.ErrInvalidToken) {
		return service.ErrInvalidToken.Error()
	}
	return service.ErrInvalidCredentials.Error()
}

// decodeJSON decodifica el body en dst de forma estricta: body vacío, JSON
// inválido, campos desconocidos o datos extra después del objeto => 400.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}
