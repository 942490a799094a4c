package services

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	apierrors "github.com/yukikurage/todo-reminder-api/internal/errors"
)

// TokenService issues and verifies HMAC-signed bearer tokens.
type TokenService struct {
	signingKey []byte
	ttl        time.Duration
	clockSkew  time.Duration
	now        func() time.Time
}

type tokenClaims struct {
	UserID uint64 `json:"id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// TokenClaims is the verified content of a token.
type TokenClaims struct {
	UserID    uint64
	Email     string
	ExpiresAt time.Time
}

// NewTokenService creates a new TokenService
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("jwt secret must be at least 32 characters")
	}
	return &TokenService{
		signingKey: []byte(secret),
		ttl:        ttl,
		clockSkew:  time.Minute,
		now:        time.Now,
	}, nil
}

// Issue signs a token for the user.
func (s *TokenService) Issue(userID uint64, email string) (string, error) {
	now := s.now()
	claims := tokenClaims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry. Expired tokens yield ErrCredentialExpired,
// every other defect ErrInvalidCredential.
func (s *TokenService) Verify(tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&tokenClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.signingKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithLeeway(s.clockSkew),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apierrors.ErrCredentialExpired
		}
		return nil, apierrors.ErrInvalidCredential
	}

	claims, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid || claims.UserID == 0 {
		return nil, apierrors.ErrInvalidCredential
	}

	return &TokenClaims{
		UserID:    claims.UserID,
		Email:     claims.Email,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
