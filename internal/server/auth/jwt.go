package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/linguabridge/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// timeNow is swapped in tests to move the verifier's clock.
var timeNow = time.Now

// Identity is the claim a session token asserts about its bearer.
type Identity struct {
	UserID string
	Email  string
}

// Claims is the token payload: registered exp/iat plus the identity.
type Claims struct {
	jwt.RegisteredClaims
	Email  string `json:"email"`
	UserID string `json:"user_id"`
}

// GenerateToken signs an HS256 token for id that expires validityDuration
// from now.
func GenerateToken(id Identity, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := timeNow().UTC()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt(now, validityDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Email:  id.Email,
		UserID: id.UserID,
	})

	return token.SignedString(secretKey)
}

// expiresAt rounds now+ttl up to the next whole second for positive ttl, so
// the second-precision exp claim never ends a token's life early.
func expiresAt(now time.Time, ttl time.Duration) time.Time {
	exp := now.Add(ttl)
	if ttl <= 0 {
		return exp
	}
	if t := exp.Truncate(time.Second); t.Before(exp) {
		return t.Add(time.Second)
	}
	return exp
}

// ParseToken verifies the signature and expiry of tokenString and returns
// the identity it carries. Expired tokens yield common.ErrTokenExpired; any
// other defect, including missing or malformed identity fields, yields
// common.ErrTokenInvalid.
func ParseToken(tokenString string, secretKey []byte) (Identity, error) {
	claims := &Claims{}

	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return secretKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(timeNow),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, common.ErrTokenExpired
		}
		return Identity{}, common.ErrTokenInvalid
	}

	if claims.Email == "" || claims.UserID == "" {
		return Identity{}, common.ErrTokenInvalid
	}
	if _, err := uuid.Parse(claims.UserID); err != nil {
		return Identity{}, common.ErrTokenInvalid
	}

	return Identity{UserID: claims.UserID, Email: claims.Email}, nil
}
