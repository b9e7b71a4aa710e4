package services

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/gigboard/engine/internal/models"
	"github.com/gigboard/engine/internal/policy"
	appErr "github.com/gigboard/engine/pkg/errors"
)

// Claims is the payload of an access token.
type Claims struct {
	Role     models.Role `json:"role"`
	Username string      `json:"username"`
	jwt.RegisteredClaims
}

type TokenService interface {
	Issue(user *models.User) (string, time.Time, error)
	Parse(token string) (policy.Actor, error)
}

type tokenService struct {
	hmacSecret []byte
	ttl        time.Duration
	now        func() time.Time
}

func NewTokenService(secret []byte, ttl time.Duration) TokenService {
	return &tokenService{hmacSecret: secret, ttl: ttl, now: time.Now}
}

func (s *tokenService) Issue(user *models.User) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role:     user.Role,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	signed, err := token.SignedString(s.hmacSecret)
	if err != nil {
		return "", time.Time{}, appErr.Wrap(err, appErr.CodeUnknown, "sign token failed")
	}
	return signed, exp, nil
}

func (s *tokenService) Parse(raw string) (policy.Actor, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return s.hmacSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return policy.Actor{}, appErr.New(appErr.CodeUnauthorized, "token expired")
		}
		return policy.Actor{}, appErr.Wrap(err, appErr.CodeUnauthorized, "invalid token")
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 || !claims.Role.Valid() {
		return policy.Actor{}, appErr.New(appErr.CodeUnauthorized, "invalid token")
	}
	return policy.Actor{ID: uint(id), Role: claims.Role}, nil
}
