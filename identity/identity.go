// Package identity verifies the bearer token on gateway requests and maps
// it to the calling user's ID. Two providers are supported: HS256 JWTs
// signed with a shared secret, and OIDC ID/access tokens verified against
// the provider's published keys.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Authenticator validates a raw bearer token and returns the user ID it
// was issued for. Every failure wraps attachly.ErrUnauthorized.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (userID string, err error)
}

// Config selects and configures a provider.
type Config struct {
	Type string     `mapstructure:"type" validate:"required,oneof=jwt oidc"`
	JWT  JWTConfig  `mapstructure:"jwt"`
	OIDC OIDCConfig `mapstructure:"oidc"`
}

// New builds the Authenticator named by cfg.Type.
func New(ctx context.Context, cfg Config) (Authenticator, error) {
	switch cfg.Type {
	case "jwt":
		return NewJWT(cfg.JWT)
	case "oidc":
		return NewOIDC(ctx, cfg.OIDC)
	default:
		return nil, fmt.Errorf("new authenticator: unknown type %q", cfg.Type)
	}
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

var errEmptySubject = errors.New("token has no subject")
