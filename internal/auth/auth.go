// Package auth is the single credential-verification contract for the
// system: it issues bearer tokens at login and resolves them back to a user
// identity for both HTTP handlers and the websocket handshake.
package auth

import (
	"time"

	"campusfix/backend/internal/apperr"

	jwt "github.com/golang-jwt/jwt/v5"
)

const tokenTTL = time.Hour * 72

// Identity is the verified subject of a bearer token.
type Identity struct {
	UserID string
	Role   string
}

// Service signs and verifies bearer tokens with a shared HS256 secret.
type Service struct {
	secret []byte
}

func NewService(secret string) *Service {
	return &Service{secret: []byte(secret)}
}

// IssueToken creates a signed JWT carrying the user id and role.
func (s *Service) IssueToken(userID, role string) (string, error) {
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"exp":  time.Now().Add(tokenTTL).Unix(),
		"iss":  "campusfix-service",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// VerifyToken validates a raw bearer token and returns the identity it
// carries. Any parse or claim failure maps to Unauthorized.
func (s *Service) VerifyToken(raw string) (*Identity, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperr.Unauthorized("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, apperr.Unauthorized("Invalid token or expired")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apperr.Unauthorized("Invalid token claims")
	}

	sub, _ := claims["sub"].(string)
	role, _ := claims["role"].(string)
	if sub == "" {
		return nil, apperr.Unauthorized("Token missing subject")
	}

	return &Identity{UserID: sub, Role: role}, nil
}
