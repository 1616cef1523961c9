package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ChangeTicketClaims is the payload of the short-lived token handed out when
// a login hits mustChangePassword. It is the only credential the forced
// change-password endpoint accepts in place of a session.
type ChangeTicketClaims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// IssueChangeTicket signs a password-change ticket for the user.
func IssueChangeTicket(secret string, userID uint, username string, ttl time.Duration) (string, error) {
	if ttl == 0 {
		ttl = 15 * time.Minute
	}
	now := time.Now()
	claims := &ChangeTicketClaims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseChangeTicket verifies a ticket and returns its claims.
func ParseChangeTicket(secret, tokenStr string) (*ChangeTicketClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &ChangeTicketClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*ChangeTicketClaims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
