package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/veilchat/chat-server/internal/core/domain"
)

// signSessionToken issues an HS256 bearer token scoped to the given identity.
// Both the login path and the duress switch path mint tokens through here so
// a decoy session is indistinguishable from a normal one on the wire.
func signSessionToken(secret string, ttl time.Duration, identity *domain.Identity) (string, error) {
	claims := jwt.MapClaims{
		"sub":      identity.ID,
		"username": identity.Username,
		"is_decoy": identity.IsDecoy,
		"exp":      time.Now().Add(ttl).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}
