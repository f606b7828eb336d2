package httpclient

import "net/http"

// AuthType identifies the authentication method.
type AuthType int

const (
	// AuthNone disables authentication.
	AuthNone AuthType = iota
	// AuthBearer sends "Authorization: Bearer <token>".
	AuthBearer
	// AuthAPIKey sends the key in a named header.
	AuthAPIKey
)

// AuthConfig configures request authentication.
type AuthConfig struct {
	Type  AuthType
	Token string
	// Name is the header used by AuthAPIKey. Defaults to "X-API-Key".
	Name string
}

// BearerAuth creates a bearer token auth config. An empty token disables auth.
func BearerAuth(token string) *AuthConfig {
	if token == "" {
		return nil
	}
	return &AuthConfig{Type: AuthBearer, Token: token}
}

// APIKeyAuth creates an API key auth config sent in header.
func APIKeyAuth(key, header string) *AuthConfig {
	if key == "" {
		return nil
	}
	return &AuthConfig{Type: AuthAPIKey, Token: key, Name: header}
}

func (a *AuthConfig) apply(req *http.Request) {
	if a == nil {
		return
	}
	switch a.Type {
	case AuthBearer:
		req.Header.Set("Authorization", "Bearer "+a.Token)
	case AuthAPIKey:
		name := a.Name
		if name == "" {
			name = "X-API-Key"
		}
		req.Header.Set(name, a.Token)
	}
}
