package authz

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrMissingToken = errors.New("missing bearer token")

// Claims are the admin token claims. Tokens are minted by the venue's
// identity provider and signed with a shared HMAC secret.
type Claims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Verifier validates admin bearer tokens.
type Verifier struct {
	secret []byte
	issuer string
}

func NewVerifier(secret, issuer string) *Verifier {
	return &Verifier{secret: []byte(secret), issuer: issuer}
}

// Verify parses raw and returns the user it identifies. Only HS256 tokens
// with a subject, a role, and an unexpired exp claim are accepted.
func (v *Verifier) Verify(raw string) (*AuthUser, error) {
	if v == nil || len(v.secret) == 0 {
		return nil, fmt.Errorf("admin token verification is not configured")
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("invalid admin token: %w", err)
	}
	if claims.Subject == "" || claims.Role == "" {
		return nil, fmt.Errorf("invalid admin token: subject and role are required")
	}
	return &AuthUser{ID: claims.Subject, Email: claims.Email, Role: strings.ToLower(claims.Role)}, nil
}

// VerifyRequest reads the Authorization bearer token from r.
func (v *Verifier) VerifyRequest(r *http.Request) (*AuthUser, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return nil, ErrMissingToken
	}
	return v.Verify(strings.TrimSpace(token))
}

// Issue signs a token for subject. It backs operational tooling and tests;
// production tokens normally come from the identity provider.
func (v *Verifier) Issue(subject, email, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}
