package crypto

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// Issuer is stamped on every token and required when parsing.
	Issuer = "bookstore"

	// RoleAdmin may trigger catalog refreshes on the storefront.
	RoleAdmin = "ADMIN"
)

var ErrMissingRole = errors.New("token carries no role")

// Claims is the token body. The operator id travels in Subject.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken signs an HS256 token for subject and returns it with its id.
func GenerateToken(secret, subject, role string, ttl time.Duration) (string, string, error) {
	now := time.Now()
	jti := uuid.NewString()
	c := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    Issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(secret))
	if err != nil {
		return "", "", err
	}
	return signed, jti, nil
}

// ParseToken accepts only HS256 tokens from Issuer that carry an expiry and a
// role.
func ParseToken(secret, tokenStr string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims,
		func(*jwt.Token) (any, error) { return []byte(secret), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if claims.Role == "" {
		return nil, ErrMissingRole
	}
	return claims, nil
}
