// Package auth provides authentication mechanisms for Shaarli API requests.
package auth

// AuthType represents the type of authentication.
type AuthType string

const (
	AuthTypeNone AuthType = "none"
	AuthTypeJWT  AuthType = "jwt"
)

// Provider defines the interface for authentication providers.
type Provider interface {
	// Headers returns the headers to include in the next request. Providers
	// that sign requests produce fresh credentials on every call.
	Headers() (map[string]string, error)

	// Type returns the authentication type
	Type() AuthType
}

// NoAuth represents no authentication.
type NoAuth struct{}

func (n *NoAuth) Headers() (map[string]string, error) {
	return nil, nil
}

func (n *NoAuth) Type() AuthType {
	return AuthTypeNone
}
