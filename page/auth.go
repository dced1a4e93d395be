package page

import (
	"github.com/cristalhq/jwt/v4"
)

// StaticAuthProvider pins the authentication state. Tests and the fixture
// demo use it in place of a real session.
type StaticAuthProvider bool

func (provider StaticAuthProvider) IsAuthenticated() bool {
	return bool(provider)
}

// TokenAuthProvider treats a verifiable bearer token as an active session.
type TokenAuthProvider struct {
	token    string
	verifier *jwt.HSAlg
}

func NewTokenAuthProvider(token string, secretKey []byte) (*TokenAuthProvider, error) {
	verifier, err := jwt.NewVerifierHS(jwt.HS256, secretKey)
	if err != nil {
		return nil, err
	}
	return &TokenAuthProvider{
		token:    token,
		verifier: verifier,
	}, nil
}

func (provider *TokenAuthProvider) IsAuthenticated() bool {
	if provider.token == "" {
		return false
	}
	_, err := jwt.Parse([]byte(provider.token), provider.verifier)
	return err == nil
}
