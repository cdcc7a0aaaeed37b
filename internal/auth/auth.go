// Package auth validates bearer tokens and maps their roles onto the
// account groups that gate registry rules.
package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"

	"mhregistry/internal/registry"
	dErrors "mhregistry/pkg/domain-errors"
)

// Role names carried in token claims.
const (
	RoleStaff             = "mhr_staff"
	RoleQualifiedSupplier = "mhr_qualified_supplier"
	RoleManufacturer      = "mhr_manufacturer"
)

// Claims are the token claims issued for registry access.
type Claims struct {
	Username  string   `json:"username"`
	AccountID string   `json:"account_id"`
	Roles     []string `json:"roles"`
	jwt.RegisteredClaims
}

// Group maps the token roles onto the rule-gating account group. The most
// privileged matching role wins.
func (c *Claims) Group() registry.Group {
	groups := map[string]registry.Group{
		RoleStaff:             registry.GroupStaff,
		RoleQualifiedSupplier: registry.GroupQualifiedSupplier,
		RoleManufacturer:      registry.GroupManufacturer,
	}
	for _, role := range []string{RoleStaff, RoleQualifiedSupplier, RoleManufacturer} {
		for _, have := range c.Roles {
			if have == role {
				return groups[role]
			}
		}
	}
	return registry.GroupGeneral
}

// IsStaff reports whether the token carries the staff role.
func (c *Claims) IsStaff() bool {
	return c.Group() == registry.GroupStaff
}

// Verifier validates registry access tokens.
type Verifier struct {
	signingKey []byte
	issuer     string
}

// NewVerifier constructs a token verifier.
func NewVerifier(signingKey string, issuer string) *Verifier {
	return &Verifier{
		signingKey: []byte(signingKey),
		issuer:     issuer,
	}
}

// ValidateToken parses and verifies a bearer token, returning its claims.
func (v *Verifier) ValidateToken(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return v.signingKey, nil
	}, jwt.WithIssuer(v.issuer))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return claims, nil
}
