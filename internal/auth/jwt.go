package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTAuth signs a short-lived HS512 token for every request. Shaarli only
// checks the iat claim, so the token carries nothing else.
type JWTAuth struct {
	secret []byte
	now    func() time.Time
}

// NewJWTAuth creates a JWT provider signing with the shared API secret.
func NewJWTAuth(secret string) *JWTAuth {
	return &JWTAuth{
		secret: []byte(secret),
		now:    time.Now,
	}
}

// WithClock replaces the clock used for the iat claim.
func (j *JWTAuth) WithClock(now func() time.Time) *JWTAuth {
	j.now = now
	return j
}

// Token signs a new token issued at the current time.
func (j *JWTAuth) Token() (string, error) {
	claims := jwt.MapClaims{
		"iat": j.now().UTC().Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Headers returns the Authorization header with a freshly signed token.
func (j *JWTAuth) Headers() (map[string]string, error) {
	token, err := j.Token()
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"Authorization": "Bearer " + token,
	}, nil
}

// Type returns the authentication type.
func (j *JWTAuth) Type() AuthType {
	return AuthTypeJWT
}
