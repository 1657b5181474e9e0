// Package auth issues and verifies the bearer tokens that carry a user's
// identity claim. The rest of the system treats it as a black box: the API
// middleware verifies a token into a user id, and the core never sees the
// credential itself.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims includes the registered claims plus the user id the token was
// issued for.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
}

// JWT issues and verifies HS256-signed tokens.
type JWT struct {
	secret   []byte
	validity time.Duration
}

// NewJWT creates a token issuer/verifier with the given signing secret and
// token validity duration.
func NewJWT(secret []byte, validity time.Duration) *JWT {
	return &JWT{secret: secret, validity: validity}
}

// Issue mints a signed token for the given user.
func (j *JWT) Issue(userID uuid.UUID) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(j.validity)),
		},
		UserID: userID.String(),
	})

	return token.SignedString(j.secret)
}

// Verify parses a token and returns the user id it was issued for.
func (j *JWT) Verify(tokenString string) (uuid.UUID, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return j.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	if !token.Valid {
		return uuid.Nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}

	return userID, nil
}
