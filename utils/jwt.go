package utils

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nishcheyk/infinity-workspace/types"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"

	accessTokenTTL  = 30 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
)

type UserClaims struct {
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	TokenType string `json:"type"`
	jwt.RegisteredClaims
}

func jwtSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "default_secret" // Fallback secret, should be changed in production
	}
	return []byte(secret)
}

func generateToken(user *types.User, tokenType string, ttl time.Duration) (string, error) {
	claims := UserClaims{
		Email:     user.Email,
		FullName:  user.FullName,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Subject:   user.ID,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret())
}

func GenerateAccessToken(user *types.User) (string, error) {
	return generateToken(user, tokenTypeAccess, accessTokenTTL)
}

func GenerateRefreshToken(user *types.User) (string, error) {
	return generateToken(user, tokenTypeRefresh, refreshTokenTTL)
}

func parseToken(tokenString, wantType string) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return jwtSecret(), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*UserClaims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if claims.TokenType != wantType {
		return nil, errors.New("unexpected token type")
	}
	return claims, nil
}

func ParseAccessToken(tokenString string) (*UserClaims, error) {
	return parseToken(tokenString, tokenTypeAccess)
}

func ParseRefreshToken(tokenString string) (*UserClaims, error) {
	return parseToken(tokenString, tokenTypeRefresh)
}
