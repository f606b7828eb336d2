package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/kbukum/podscribe/errors"
)

// ContextKeySubject is the Gin context key holding the authenticated subject.
const ContextKeySubject = "auth_subject"

// TokenValidator validates a bearer token and returns its claims.
type TokenValidator func(token string) (jwt.MapClaims, error)

// JWTConfig configures HMAC-signed bearer tokens. When Enabled is false no
// authentication is performed.
type JWTConfig struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	Secret   string `yaml:"secret" mapstructure:"secret" validate:"required_if=Enabled true"`
	Issuer   string `yaml:"issuer" mapstructure:"issuer"`
	Audience string `yaml:"audience" mapstructure:"audience"`

	// Leeway tolerates clock skew when checking exp and nbf.
	Leeway time.Duration `yaml:"leeway" mapstructure:"leeway"`
}

// NewJWTValidator returns a TokenValidator accepting HS256/384/512 tokens
// signed with cfg.Secret. Issuer and audience are checked when configured.
func NewJWTValidator(cfg JWTConfig) (TokenValidator, error) {
	if cfg.Secret == "" {
		return nil, apperrors.MissingField("auth.secret")
	}
	key := []byte(cfg.Secret)
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(cfg.Leeway),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}
	parser := jwt.NewParser(opts...)

	return func(token string) (jwt.MapClaims, error) {
		claims := jwt.MapClaims{}
		if _, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
			return key, nil
		}); err != nil {
			return nil, fmt.Errorf("parse token: %w", err)
		}
		return claims, nil
	}, nil
}

// Auth returns a Gin middleware that requires a valid bearer token. The
// token subject is stored under ContextKeySubject.
func Auth(validate TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortUnauthorized(c, "Authorization header required.")
			return
		}
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			abortUnauthorized(c, "Authorization header must be a bearer token.")
			return
		}

		claims, err := validate(token)
		if err != nil {
			abortUnauthorized(c, "Invalid or expired token.")
			return
		}
		if sub, err := claims.GetSubject(); err == nil && sub != "" {
			c.Set(ContextKeySubject, sub)
		}
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, reason string) {
	c.Header("WWW-Authenticate", `Bearer realm="podscribe"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, apperrors.Unauthorized(reason).ToResponse())
}
