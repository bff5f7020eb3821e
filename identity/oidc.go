package identity

import (
	"context"
	"errors"
	"fmt"

	gooidc "github.com/coreos/go-oidc/v3/oidc"

	"github.com/sagarc03/attachly"
)

// OIDCConfig defines OIDC verification settings.
// Either Issuer (discovery) or JWKSURL must be set.
type OIDCConfig struct {
	// Issuer is the OIDC issuer URL. When set, the provider's well-known
	// metadata is used to find the JWKS endpoint and the issuer is enforced.
	Issuer string `mapstructure:"issuer"`

	// ClientID is the expected audience unless Audience is set.
	ClientID string `mapstructure:"client_id"`

	// Audience overrides ClientID as the expected audience.
	Audience string `mapstructure:"audience"`

	// JWKSURL is a direct JWKS endpoint, used when Issuer is empty.
	JWKSURL string `mapstructure:"jwks_url"`
}

// OIDCAuthenticator verifies tokens issued by an OIDC provider. The user ID
// is the token's subject.
type OIDCAuthenticator struct {
	verifier *gooidc.IDTokenVerifier
}

func NewOIDC(ctx context.Context, cfg OIDCConfig) (*OIDCAuthenticator, error) {
	expectedAud := cfg.Audience
	if expectedAud == "" {
		expectedAud = cfg.ClientID
	}
	oidcCfg := &gooidc.Config{
		ClientID:          expectedAud,
		SkipClientIDCheck: expectedAud == "",
	}

	switch {
	case cfg.Issuer != "":
		provider, err := gooidc.NewProvider(ctx, cfg.Issuer)
		if err != nil {
			return nil, fmt.Errorf("new oidc authenticator: provider discovery failed: %w", err)
		}
		return &OIDCAuthenticator{verifier: provider.Verifier(oidcCfg)}, nil
	case cfg.JWKSURL != "":
		keySet := gooidc.NewRemoteKeySet(ctx, cfg.JWKSURL)
		oidcCfg.SkipIssuerCheck = true
		return &OIDCAuthenticator{verifier: gooidc.NewVerifier("", keySet, oidcCfg)}, nil
	default:
		return nil, errors.New("new oidc authenticator: either issuer or jwks_url must be provided")
	}
}

// Authenticate implements Authenticator.
func (a *OIDCAuthenticator) Authenticate(ctx context.Context, raw string) (string, error) {
	token, err := a.verifier.Verify(ctx, raw)
	if err != nil {
		return "", fmt.Errorf("authenticate oidc: %w: %w", attachly.ErrUnauthorized, err)
	}
	if token.Subject == "" {
		return "", fmt.Errorf("authenticate oidc: %w: %w", attachly.ErrUnauthorized, errEmptySubject)
	}
	return token.Subject, nil
}
