package services

import (
	"errors"
	"time"

	"github.com/cuesoftinc/cuelabs-backend/internal/models"
	"github.com/cuesoftinc/cuelabs-backend/internal/repository"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

type TokenClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// TokenService issues and validates personal API tokens for programmatic
// access. Tokens are JWTs and are also stored locally so they can be listed
// and revoked.
type TokenService struct {
	tokenRepo *repository.TokenRepository
	jwtSecret string
}

func NewTokenService(tokenRepo *repository.TokenRepository, jwtSecret string) *TokenService {
	return &TokenService{
		tokenRepo: tokenRepo,
		jwtSecret: jwtSecret,
	}
}

func (s *TokenService) GenerateToken(userID, email string, expiresIn time.Duration) (string, error) {
	claims := TokenClaims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "cuelabs",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", err
	}

	apiToken := &models.APIToken{
		UserID:    userID,
		Email:     email,
		Token:     tokenString,
		ExpiresAt: time.Now().Add(expiresIn),
	}

	if err := s.tokenRepo.Create(apiToken); err != nil {
		return "", err
	}

	return tokenString, nil
}

func (s *TokenService) ValidateToken(tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(s.jwtSecret), nil
	})

	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	dbToken, err := s.tokenRepo.FindByToken(tokenString)
	if err != nil {
		return nil, err
	}
	if dbToken == nil {
		return nil, ErrInvalidToken
	}

	if dbToken.ExpiresAt.Before(time.Now()) {
		return nil, ErrExpiredToken
	}

	return claims, nil
}

func (s *TokenService) ListUserTokens(userID string) ([]models.APIToken, error) {
	return s.tokenRepo.FindByUserID(userID)
}

func (s *TokenService) DeleteToken(tokenID uint, userID string) error {
	return s.tokenRepo.Delete(tokenID, userID)
}
