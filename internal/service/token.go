package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"sociogram/internal/config"
	"sociogram/internal/model"
)

// TokenService issues and verifies signed, time-bound bearer tokens.
// Tokens are self-contained: verification is a pure function of the token,
// the secret and the clock. There is no server-side revocation.
type TokenService struct {
	secret []byte
	maxAge time.Duration
	now    func() time.Time
}

func NewTokenService(cfg *config.Config) *TokenService {
	return &TokenService{
		secret: []byte(cfg.JWTSecret),
		maxAge: time.Duration(cfg.TokenMaxAge) * time.Second,
		now:    time.Now,
	}
}

// Issue mints an HS256 token binding the user identity with issue and
// expiry times.
func (s *TokenService) Issue(userID int64) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"iat":     now.Unix(),
		"exp":     now.Add(s.maxAge).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks signature and expiry and returns the bound user identifier.
// Expired tokens and invalid ones fail with distinct kinds so callers can
// report them separately.
func (s *TokenService) Verify(tokenString string) (int64, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)

	token, err := parser.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, model.ErrTokenExpired
		}
		return 0, model.ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, model.ErrTokenInvalid
	}

	userIDFloat, ok := claims["user_id"].(float64)
	if !ok {
		return 0, model.ErrTokenInvalid
	}

	return int64(userIDFloat), nil
}

// MaxAgeSeconds reports the configured token lifetime, used to tell clients
// when to expect expiry.
func (s *TokenService) MaxAgeSeconds() int {
	return int(s.maxAge / time.Second)
}
