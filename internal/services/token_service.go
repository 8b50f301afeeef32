package services

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mustafa2080/tourism-API/internal/domain"
	"github.com/mustafa2080/tourism-API/internal/utils"
)

const (
	refreshTokenBytes = 40
	resetTokenBytes   = 32
	resetTokenTTL     = time.Hour
)

type AccessClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// TokenService signs HS256 access tokens and mints opaque refresh tokens.
type TokenService struct {
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Now        func() time.Time
}

func (s TokenService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s TokenService) IssueAccess(userID string) (string, error) {
	now := s.now()
	ttl := s.AccessTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	return token.SignedString(s.Secret)
}

func (s TokenService) ParseAccess(raw string) (AccessClaims, error) {
	var claims AccessClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return s.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return claims, domain.UnauthorizedError{Msg: "Token expired", Err: err}
	case err != nil:
		return claims, domain.UnauthorizedError{Msg: "Invalid token", Err: err}
	case claims.UserID == "":
		return claims, domain.UnauthorizedError{Msg: "Invalid token"}
	}
	return claims, nil
}

// NewRefresh returns a random refresh token value and its expiry.
func (s TokenService) NewRefresh() (string, time.Time, error) {
	ttl := s.RefreshTTL
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	tok, err := utils.RandomHex(refreshTokenBytes)
	if err != nil {
		return "", time.Time{}, err
	}
	return tok, s.now().Add(ttl), nil
}
