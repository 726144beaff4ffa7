// Package auth implements the signing primitives for session tokens:
// HS256 JWTs binding a token string to a user id.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/taskit/internal/common"
)

// Claims includes the standard registered claims plus the user id the
// token was issued for.
type Claims struct {
	jwt.RegisteredClaims
	UserID string
}

// GenerateToken signs a token for userID. A validity of zero produces a
// token without an exp claim; the server-side active-token list is then
// the only revocation mechanism. Any other validity sets the exp claim,
// so a negative value yields an already-expired token.
func GenerateToken(userID string, secretKey []byte, validity time.Duration) (string, error) {
	claims := Claims{UserID: userID}
	if validity != 0 {
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(validity))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}
	return tokenString, nil
}

// GetUserIDFromToken verifies the signature of tokenString and returns the
// embedded user id. Every failure mode (bad signature, wrong algorithm,
// expired, empty subject) maps to common.ErrInvalidToken.
func GetUserIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) { return secretKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", common.ErrInvalidToken
	}
	if !token.Valid || claims.UserID == "" {
		return "", common.ErrInvalidToken
	}

	return claims.UserID, nil
}
