package handler

import (
	"net/http"

	"browse-movies/internal/service"
)

type AuthHandler struct {
	svc *service.AuthService
}

func NewAuthHandler(s *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: s}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// @Summary Signup
// @Description Crea un usuario nuevo (role user). La respuesta no incluye el password.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body service.RegisterUserData true "datos"
// @Success 201 {object} models.User
// @Failure 400 {object} errorResponse
// @Failure 409 {object} errorResponse
// @Router /auth/signup [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterUserData
	if !decodeJSON(w, r, &req) {
		return
	}

	u, err := h.svc.Register(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

// @Summary Login
// @Tags auth
// @Accept json
// @Produce json
// @Param body body loginRequest true "credenciales"
// @Success 200 {object} service.LoginResult
// @Failure 401 {object} errorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := service.Validate(&req); err != nil {
		writeServiceError(w, err)
		return
	}

	res, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// @Summary Usuario autenticado
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {object} errorResponse
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	u := IdentityFromContext(r.Context())
	if u == nil {
		writeError(w, http.StatusUnauthorized, service.ErrInvalidToken.Error())
		return
	}
	writeJSON(w, http.StatusOK, u)
}
