package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenIssuer binds bearer tokens to account ids
type TokenIssuer interface {
	Issue(accountID string) (string, error)
	// Parse returns the account id a token was issued for
	Parse(token string) (string, error)
}

// DevTokenIssuer derives tokens as "<prefix>-<accountID>". Development only:
// anyone who knows an account id can forge its token.
type DevTokenIssuer struct {
	prefix string
}

// NewDevTokenIssuer creates a dev issuer with the given prefix
func NewDevTokenIssuer(prefix string) *DevTokenIssuer {
	return &DevTokenIssuer{prefix: prefix + "-"}
}

// Issue implements TokenIssuer
func (i *DevTokenIssuer) Issue(accountID string) (string, error) {
	return i.prefix + accountID, nil
}

// Parse implements TokenIssuer
func (i *DevTokenIssuer) Parse(token string) (string, error) {
	id, ok := strings.CutPrefix(token, i.prefix)
	if !ok || id == "" {
		return "", fmt.Errorf("malformed token: %w", ErrNotAuthorized)
	}
	return id, nil
}

// JWTTokenIssuer signs HS256 tokens carrying the account id
type JWTTokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTTokenIssuer creates a signed token issuer
func NewJWTTokenIssuer(secret string, ttl time.Duration) *JWTTokenIssuer {
	return &JWTTokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue implements TokenIssuer
func (i *JWTTokenIssuer) Issue(accountID string) (string, error) {
	now := i.now()
	claims := jwt.MapClaims{
		"account_id": accountID,
		"exp":        now.Add(i.ttl).Unix(),
		"iat":        now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// Parse implements TokenIssuer
func (i *JWTTokenIssuer) Parse(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w: %w", ErrNotAuthorized, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid token claims: %w", ErrNotAuthorized)
	}

	accountID, ok := claims["account_id"].(string)
	if !ok || accountID == "" {
		return "", fmt.Errorf("account_id not found in token: %w", ErrNotAuthorized)
	}
	return accountID, nil
}
