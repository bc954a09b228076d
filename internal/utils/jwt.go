package utils

import (
	"time" // Token lifetime math

	"github.com/golang-jwt/jwt/v5" // JWT library
)

// SessionTTL is how long a marketplace login stays valid. Buyers and vendors
// re-authenticate daily; there is no refresh flow.
const SessionTTL = 24 * time.Hour

// Claims carries the authenticated user id alongside the registered claims.
type Claims struct {
	UserID               uint `json:"user_id"` // Account the token was minted for
	jwt.RegisteredClaims      // Expiry and issue time
}

// GenerateJWT mints an HS256 session token for the user.
func GenerateJWT(userID uint, secret string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(SessionTTL)), // Sessions expire after SessionTTL
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseJWT validates a session token and returns its claims.
func ParseJWT(tokenStr, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		return []byte(secret), nil // Symmetric key, same secret signs and verifies
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrSignatureInvalid
	}
	return claims, nil
}
