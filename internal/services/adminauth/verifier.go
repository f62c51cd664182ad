package adminauth

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/yashmitb/CleanPlate/internal/models"
)

// AdminRole is the role claim value that grants access to admin endpoints.
const AdminRole = "admin"

var (
	// ErrInvalidToken is returned for tokens that fail signature or claim checks.
	ErrInvalidToken = errors.New("invalid admin token")
	// ErrForbidden is returned for valid tokens without the admin role.
	ErrForbidden = errors.New("admin role required")
)

// Verifier checks admin bearer tokens against the issuer's key set
type Verifier struct {
	jwksManager *JWKSManager
	jwksURL     string
	issuer      string
}

// NewVerifier creates a new admin token verifier
func NewVerifier(jwksManager *JWKSManager, jwksURL, issuer string) *Verifier {
	return &Verifier{
		jwksManager: jwksManager,
		jwksURL:     jwksURL,
		issuer:      issuer,
	}
}

// Verify parses tokenString and returns the admin it identifies.
func (v *Verifier) Verify(ctx context.Context, tokenString string) (*models.AdminPrincipal, error) {
	keys, err := v.jwksManager.GetJWKS(ctx, v.jwksURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get JWKS: %w", err)
	}

	opts := []jwt.ParseOption{jwt.WithKeySet(keys), jwt.WithValidate(true)}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	token, err := jwt.Parse([]byte(tokenString), opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if token.Subject() == "" {
		return nil, fmt.Errorf("%w: token missing subject claim", ErrInvalidToken)
	}

	principal := &models.AdminPrincipal{Subject: token.Subject()}
	if email, ok := token.Get("email"); ok {
		if emailStr, ok := email.(string); ok {
			principal.Email = emailStr
		}
	}
	principal.Roles = stringList(token, "roles")

	if !slices.Contains(principal.Roles, AdminRole) {
		return principal, ErrForbidden
	}
	return principal, nil
}

// stringList reads a claim that may be a single string or a list of strings.
func stringList(token jwt.Token, name string) []string {
	raw, ok := token.Get(name)
	if !ok {
		return nil
	}
	switch val := raw.(type) {
	case string:
		return []string{val}
	case []string:
		return val
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
