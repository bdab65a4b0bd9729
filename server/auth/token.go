package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/convinceapp/backend/server/internal/errors"
)

const (
	// TokenIssuer is embedded in every session token. The issuer check is
	// advisory while the signing secret stays private, but it defends
	// against token confusion if the secret is ever shared across systems.
	TokenIssuer = "convince-backend"
	// TokenAudience scopes session tokens to the frontend.
	TokenAudience = "convince-frontend"

	// sessionTTL is the fixed session lifetime: 604800 seconds.
	sessionTTL = 7 * 24 * time.Hour
)

// SessionClaims is the self-describing payload of a session token.
type SessionClaims struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Picture  string `json:"picture,omitempty"`
	Provider string `json:"provider"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies signed session tokens. It exclusively
// owns the signing secret; tokens are stateless and never revoked
// server-side, they simply expire.
type TokenService struct {
	secret []byte
	now    func() time.Time
}

// NewTokenService creates a token service around the shared HMAC secret.
func NewTokenService(secret string) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		now:    time.Now,
	}
}

// Issue signs a new session token for the given identity, valid for exactly
// seven days from now.
func (s *TokenService) Issue(identity *CanonicalIdentity) (string, error) {
	now := s.now()
	claims := &SessionClaims{
		Name:     identity.DisplayName,
		Email:    identity.Email,
		Picture:  identity.PictureURL,
		Provider: string(identity.Provider),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.Subject,
			Issuer:    TokenIssuer,
			Audience:  jwt.ClaimStrings{TokenAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify decodes and validates a session token. Signature, signing method,
// audience, issuer, and expiry are all checked; any failure collapses to a
// single unauthenticated outcome so callers cannot distinguish which check
// failed.
func (s *TokenService) Verify(token string) (*CanonicalIdentity, error) {
	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(TokenAudience),
		jwt.WithIssuer(TokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return nil, apperrors.Unauthenticated("session token rejected")
	}

	return &CanonicalIdentity{
		Subject:     claims.Subject,
		DisplayName: claims.Name,
		Email:       claims.Email,
		PictureURL:  claims.Picture,
		Provider:    Provider(claims.Provider),
	}, nil
}
