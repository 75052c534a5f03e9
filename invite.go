package main

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// InviteSigner mints shareable room links as signed tokens carrying the room
// code and an expiry. Invites authenticate nothing; anyone with the code can
// join anyway, the token only makes the link opaque and bounded in time.
type InviteSigner struct {
	secret string
	ttl    time.Duration
}

func NewInviteSigner(secret string, ttl time.Duration) *InviteSigner {
	return &InviteSigner{secret, ttl}
}

func (s InviteSigner) Generate(roomCode string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"room": roomCode, "exp": jwt.NewNumericDate(time.Now().Add(s.ttl))})
	return token.SignedString([]byte(s.secret))
}

// RoomCode returns the code carried by a valid token, or "" for anything
// expired, tampered with, or otherwise unparseable.
func (s InviteSigner) RoomCode(tokenString string) string {
	token, _ := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.secret), nil
	})
	if token == nil {
		return ""
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		if roomCode, ok := claims["room"].(string); ok {
			return roomCode
		}
	}
	return ""
}
