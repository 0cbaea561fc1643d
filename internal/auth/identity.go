package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
)

const GoogleIssuer = "https://accounts.google.com"

// Identity is what the identity provider vouches for on login.
type Identity struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

type IdentityVerifier interface {
	Verify(ctx context.Context, rawIDToken string) (*Identity, error)
}

type googleClaims struct {
	Sub     string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// OIDCVerifier checks ID tokens issued for clientID.
type OIDCVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewGoogleVerifier discovers Google's signing keys.
func NewGoogleVerifier(ctx context.Context, clientID string) (*OIDCVerifier, error) {
	provider, err := oidc.NewProvider(ctx, GoogleIssuer)
	if err != nil {
		return nil, fmt.Errorf("oidc provider: %w", err)
	}

	return &OIDCVerifier{
		verifier: provider.Verifier(&oidc.Config{
			ClientID: clientID,
		}),
	}, nil
}

// NewStaticVerifier verifies against a fixed key set instead of discovery.
func NewStaticVerifier(issuer, clientID string, keys oidc.KeySet) *OIDCVerifier {
	return &OIDCVerifier{
		verifier: oidc.NewVerifier(issuer, keys, &oidc.Config{ClientID: clientID}),
	}
}

func (v *OIDCVerifier) Verify(ctx context.Context, rawIDToken string) (*Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	idToken, err := v.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("verify id token: %w", err)
	}

	var claims googleClaims
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("parse id token claims: %w", err)
	}
	if claims.Sub == "" {
		claims.Sub = idToken.Subject
	}

	return &Identity{
		Subject: claims.Sub,
		Email:   claims.Email,
		Name:    claims.Name,
		Picture: claims.Picture,
	}, nil
}
