package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"merit/config"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the access-token payload. Role rides in the token so admin
// endpoints can gate without a user lookup per request.
type Claims struct {
	UserID uint   `json:"uid"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies the service's JWTs. Access tokens are short
// lived and carry identity claims; refresh tokens carry only the subject.
type Tokens struct {
	cfg *config.JWTConfig
}

func NewTokens(cfg *config.JWTConfig) *Tokens { return &Tokens{cfg: cfg} }

func (t *Tokens) IssueAccess(userID uint, email, role string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			Issuer:    t.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.cfg.AccessExpiry)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(t.cfg.AccessSecret))
}

func (t *Tokens) IssueRefresh(userID uint) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		Issuer:    t.cfg.Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.cfg.RefreshExpiry)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(t.cfg.RefreshSecret))
}

// VerifyRefresh validates a refresh token and returns the user id it was
// issued to.
func (t *Tokens) VerifyRefresh(raw string) (uint, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims,
		func(tok *jwt.Token) (interface{}, error) {
			return []byte(t.cfg.RefreshSecret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.cfg.Issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return 0, ErrInvalidToken
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 32)
	if err != nil || id == 0 {
		return 0, ErrInvalidToken
	}
	return uint(id), nil
}

// VerifyAccess parses and validates an access token. Tokens signed with any
// method other than HS256, issued by someone else, or without an expiry are
// all rejected.
func (t *Tokens) VerifyAccess(raw string) (*Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims,
		func(tok *jwt.Token) (interface{}, error) {
			return []byte(t.cfg.AccessSecret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.cfg.Issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}
