package jwtutil

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Options carries the signing material shared by issuer and verifier.
type Options struct {
	Secret    string
	Algorithm string
	TTL       time.Duration
}

type Claims struct {
	UserID uint
	jwt.RegisteredClaims
}

func signingMethod(alg string) (jwt.SigningMethod, error) {
	switch alg {
	case "", "HS256":
		return jwt.SigningMethodHS256, nil
	case "HS384":
		return jwt.SigningMethodHS384, nil
	case "HS512":
		return jwt.SigningMethodHS512, nil
	default:
		return nil, fmt.Errorf("unsupported jwt algorithm %q", alg)
	}
}

// GenerateToken signs a token whose subject is the decimal user id.
func GenerateToken(opts Options, userID uint) (string, error) {
	method, err := signingMethod(opts.Algorithm)
	if err != nil {
		return "", err
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(opts.TTL)),
	}
	signed, err := jwt.NewWithClaims(method, claims).SignedString([]byte(opts.Secret))
	if err != nil {
		return "", fmt.Errorf("sign token failed: %w", err)
	}
	return signed, nil
}

// ParseToken verifies signature, algorithm and expiry and resolves the user id.
func ParseToken(opts Options, token string) (*Claims, error) {
	method, err := signingMethod(opts.Algorithm)
	if err != nil {
		return nil, err
	}

	var registered jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &registered, func(t *jwt.Token) (interface{}, error) {
		return []byte(opts.Secret), nil
	},
		jwt.WithValidMethods([]string{method.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	userID, err := strconv.ParseUint(registered.Subject, 10, 64)
	if err != nil || userID == 0 {
		return nil, ErrInvalidToken
	}
	return &Claims{UserID: uint(userID), RegisteredClaims: registered}, nil
}
