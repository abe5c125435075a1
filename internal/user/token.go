package user

import (
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

const defaultTokenTTL = 72 * time.Hour

// TokenIssuer mints and verifies the HS256 bearer tokens the API
// hands out on login and registration.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	clock  func() time.Time
}

func NewTokenIssuer(secret string) *TokenIssuer {
	return &TokenIssuer{
		secret: []byte(secret),
		ttl:    defaultTokenTTL,
		clock:  time.Now,
	}
}

// Issue signs a token for username.
func (t *TokenIssuer) Issue(username string) (string, error) {
	now := t.clock()
	claims := gojwt.MapClaims{
		"username": username,
		"iat":      gojwt.NewNumericDate(now),
		"exp":      gojwt.NewNumericDate(now.Add(t.ttl)),
	}

	return gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Verify checks the signature and expiry and returns the username the
// token was issued for.
func (t *TokenIssuer) Verify(token string) (string, error) {
	parsed, err := gojwt.Parse(token, func(parsed *gojwt.Token) (interface{}, error) {
		if _, ok := parsed.Method.(*gojwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", parsed.Header["alg"])
		}

		return t.secret, nil
	}, gojwt.WithTimeFunc(t.clock))
	if err != nil {
		return "", err
	}

	claims, ok := parsed.Claims.(gojwt.MapClaims)
	if !ok {
		return "", errors.New("unexpected claims shape")
	}

	username, ok := claims["username"].(string)
	if !ok || username == "" {
		return "", errors.New("token carries no username")
	}

	return username, nil
}
