package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "autoapprove"

// ErrWrongAdmin is returned when a token is valid but was issued for a
// different admin id than the one the bot is configured with.
var ErrWrongAdmin = errors.New("token subject is not the configured admin")

// Claims is the payload of an admin API token.
//
// There is exactly one admin, identified by the same Telegram user id the
// bot sends notifications to. The id is also written into Subject so
// standard JWT tooling shows who the token is for.
type Claims struct {
	AdminID int64 `json:"admin_id"`
	jwt.RegisteredClaims
}

// GenerateToken signs an HS256 token for adminID that expires after ttl.
func GenerateToken(adminID int64, secret string, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := Claims{
		AdminID: adminID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(adminID, 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// ParseToken checks signature, expiry, issuer and signing method, and
// returns the claims.
func ParseToken(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{},
		func(token *jwt.Token) (any, error) {
			// Only HMAC. A token claiming "none" or RSA is rejected here.
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(secret), nil
		},
		jwt.WithIssuer(issuer),
	)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	return claims, nil
}

// Validator binds a secret and the configured admin id so callers only
// pass the raw token.
type Validator struct {
	secret  string
	adminID int64
}

// NewValidator returns a Validator for tokens signed with secret.
func NewValidator(secret string, adminID int64) *Validator {
	return &Validator{secret: secret, adminID: adminID}
}

// Validate parses the token and checks it belongs to the configured admin.
// A token minted before ADMIN_ID changed stops working.
func (v *Validator) Validate(tokenString string) (*Claims, error) {
	claims, err := ParseToken(tokenString, v.secret)
	if err != nil {
		return nil, err
	}
	if claims.AdminID != v.adminID {
		return nil, ErrWrongAdmin
	}
	return claims, nil
}
