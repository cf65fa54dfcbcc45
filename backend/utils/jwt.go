package utils

import (
	"errors"
	"strconv"
	"time"

	"coursehub/backend/config"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// Claims is the identity+role payload embedded in a session token.
type Claims struct {
	UserID uint   `json:"id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenID returns the jti used as the revocation key.
func (c *Claims) TokenID() string {
	return c.ID
}

func (c *Claims) ExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// GenerateJWTToken signs a token for userID/role valid for cfg.TokenTTL from issuedAt.
func GenerateJWTToken(userID uint, role string, cfg *config.Config, issuedAt time.Time) (string, *Claims, error) {
	claims := &Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(cfg.TokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

// ParseJWTToken verifies signature and expiry against now. An elapsed window
// yields ErrTokenExpired; everything else that is wrong yields ErrUnauthenticated.
func ParseJWTToken(tokenString string, cfg *config.Config, now time.Time) (*Claims, error) {
	if tokenString == "" {
		return nil, Unauthenticated("No token, authorization denied")
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	claims := &Claims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, WrapError(ErrUnauthenticated, "Token is not valid", err)
	}

	if claims.ExpiresAt == nil || !claims.VerifyExpiresAt(now, true) {
		return nil, NewError(ErrTokenExpired, "Token expired")
	}
	if claims.UserID == 0 || claims.ID == "" {
		return nil, Unauthenticated("Token is not valid")
	}

	return claims, nil
}
