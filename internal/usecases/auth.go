package usecases

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"project_asesoria/internal/entities"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// UserStore persists the ops-panel accounts.
type UserStore interface {
	GetByUsername(ctx context.Context, username string) (*entities.User, error)
	EnsureUser(ctx context.Context, username, passwordHash, role string) error
}

const tokenTTL = 12 * time.Hour

// AuthUsecase issues and validates the JWTs protecting the ops API.
type AuthUsecase struct {
	users  UserStore
	secret []byte
}

func NewAuthUsecase(users UserStore, secret string) *AuthUsecase {
	return &AuthUsecase{users: users, secret: []byte(secret)}
}

type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Login checks the password and returns a signed token.
func (a *AuthUsecase) Login(ctx context.Context, username, password string) (string, error) {
	user, err := a.users.GetByUsername(ctx, username)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}

	now := time.Now()
	claims := Claims{
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Verify parses a bearer token and returns its claims.
func (a *AuthUsecase) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidCredentials
	}
	return claims, nil
}

// EnsureAdmin creates the initial operator account when missing.
func (a *AuthUsecase) EnsureAdmin(ctx context.Context, username, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return a.users.EnsureUser(ctx, username, string(hash), "admin")
}
