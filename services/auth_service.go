package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Dosada05/swiss-tournament/models"
	"github.com/Dosada05/swiss-tournament/utils"
	"github.com/golang-jwt/jwt/v4"
)

const defaultTokenTTL = 24 * time.Hour

type LoginInput struct {
	Password string `json:"password"`
}

type TokenResult struct {
	Token     string    `json:"token"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AuthService issues organizer tokens. There are no user accounts: the
// organizer proves identity with the shared password whose bcrypt hash is
// configured at startup.
type AuthService interface {
	Login(ctx context.Context, input LoginInput) (*TokenResult, error)
}

type authService struct {
	passwordHash string
	jwtSecret    []byte
	tokenTTL     time.Duration
	now          func() time.Time
}

func NewAuthService(organizerPasswordHash, jwtSecret string, tokenTTL time.Duration) AuthService {
	if tokenTTL <= 0 {
		tokenTTL = defaultTokenTTL
	}
	return &authService{
		passwordHash: organizerPasswordHash,
		jwtSecret:    []byte(jwtSecret),
		tokenTTL:     tokenTTL,
		now:          time.Now,
	}
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*TokenResult, error) {
	if s.passwordHash == "" || len(s.jwtSecret) == 0 {
		return nil, ErrAuthNotConfigured
	}
	if input.Password == "" {
		return nil, ErrInvalidCredentials
	}

	if !utils.CheckPasswordHash(input.Password, s.passwordHash) {
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	expiresAt := now.Add(s.tokenTTL)
	claims := jwt.MapClaims{
		"role": string(models.RoleOrganizer),
		"exp":  expiresAt.Unix(),
		"iat":  now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &TokenResult{
		Token:     tokenString,
		Role:      string(models.RoleOrganizer),
		ExpiresAt: expiresAt.UTC(),
	}, nil
}
