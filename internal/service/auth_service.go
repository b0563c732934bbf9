package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"browse-movies/internal/models"
	"browse-movies/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// BcryptCost fijo en 10 rondas.
const BcryptCost = 10

// BcryptMaxBytes es el largo máximo que acepta bcrypt.
const BcryptMaxBytes = 72

// UserStore es lo que el servicio de auth necesita del repositorio.
type UserStore interface {
	Insert(ctx context.Context, u *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByEmailWithPassword(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type AuthService struct {
	users     UserStore
	jwtSecret []byte
	tokenTTL  time.Duration
	now       func() time.Time
}

type RegisterUserData struct {
	Username  string `json:"username" validate:"required,max=50"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=5,max=20,bcryptmax"`
}

type LoginResult struct {
	Message     string `json:"message"`
	AccessToken string `json:"accessToken"`
}

// Claims del access token: sub = id del usuario, email denormalizado.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func NewAuthService(users UserStore, secret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		users:     users,
		jwtSecret: []byte(secret),
		tokenTTL:  tokenTTL,
		now:       time.Now,
	}
}

// ================== REGISTER & LOGIN ==================

// Register valida, hashea el password y crea el usuario con role "user".
// El usuario devuelto no trae el hash.
func (s *AuthService) Register(ctx context.Context, data RegisterUserData) (*models.User, error) {
	if err := Validate(&data); err != nil {
		return nil, err
	}

	existing, err := s.users.FindByEmail(ctx, data.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(data.Password), BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &models.User{
		Username:       data.Username,
		FirstName:      data.FirstName,
		LastName:       data.LastName,
		Email:          data.Email,
		PasswordHash:   string(hash),
		Role:           models.RoleUser,
		FavoriteMovies: []string{},
	}

	if err := s.users.Insert(ctx, u); err != nil {
		var dup *repository.DuplicateKeyError
		if errors.As(err, &dup) {
			if dup.Field == "username" {
				return nil, ErrUsernameTaken
			}
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	log.Printf("[auth] usuario registrado id=%s", u.ID.Hex())
	return u.Public(), nil
}

// Login devuelve el mismo error si el email no existe o si el password no coincide.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	u, err := s.users.FindByEmailWithPassword(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.IssueToken(u)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Message: "Login successful", AccessToken: token}, nil
}

// IssueToken firma un HS256 con sub, email, iat y exp.
func (s *AuthService) IssueToken(u *models.User) (string, error) {
	now := s.now()
	claims := Claims{
		Email: u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.Hex(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			ID:        uuid.NewString(),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// ================== TOKENS ==================

// ParseToken valida firma y expiración. Cualquier falla es ErrInvalidToken.
func (s *AuthService) ParseToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims,
		func(t *jwt.Token) (interface{}, error) {
			return s.jwtSecret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Identify resuelve el token a un usuario existente (sin hash).
func (s *AuthService) Identify(ctx context.Context, tokenStr string) (*models.User, error) {
	claims, err := s.ParseToken(tokenStr)
	if err != nil {
		return nil, err
	}

	u, err := s.users.FindByID(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrInvalidToken
	}
	return u.Public(), nil
}
