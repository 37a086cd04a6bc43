// Package utils provides helpers for identity token creation and parsing.
package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// IdentityToken is a signed HS256 JWT handed out at login. It carries
// the user's id and account type so requests can be attributed without
// a session store.
type IdentityToken struct {
	Token string    `json:"token"`
	Exp   time.Time `json:"expiresAt"`
}

// NewIdentityToken builds and signs an identity token for a user. The
// claims are the standard sub/exp/iat plus the account type under
// "utype".
func NewIdentityToken(secret string, userID uint64, userType string, ttlMin int) (IdentityToken, error) {
	exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub":   userID,
		"utype": userType,
		"exp":   exp.Unix(),
		"iat":   time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return IdentityToken{}, err
	}
	return IdentityToken{Token: signed, Exp: exp}, nil
}

// ParseIdentityToken validates a signed identity token and returns the
// user id and account type it was issued for.
func ParseIdentityToken(secret, tokenStr string) (uint64, string, error) {
	tok, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return 0, "", err
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok || !tok.Valid {
		return 0, "", errors.New("invalid token")
	}
	sub, ok := claims["sub"].(float64)
	if !ok {
		return 0, "", errors.New("missing sub claim")
	}
	utype, _ := claims["utype"].(string)
	return uint64(sub), utype, nil
}
