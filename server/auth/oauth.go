package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"
	"golang.org/x/oauth2/google"

	"github.com/convinceapp/backend/internal/profile"
	apperrors "github.com/convinceapp/backend/server/internal/errors"
)

const (
	googleUserInfoURL    = "https://www.googleapis.com/oauth2/v3/userinfo"
	googleAltUserInfoURL = "https://www.googleapis.com/userinfo/v2/me"
	facebookUserInfoURL  = "https://graph.facebook.com/me?fields=id,name,email,picture.type(large)"
)

// ProviderClient bundles everything the flow needs to drive one identity
// provider: the OAuth2 configuration, the profile endpoints in fallback
// order, and the adapter that normalizes its payloads.
type ProviderClient struct {
	OAuth           *oauth2.Config
	UserInfoURL     string
	AltUserInfoURL  string
	AuthCodeOptions []oauth2.AuthCodeOption
	Adapter         ProfileAdapter
}

// Flow drives the authorization-code protocol. Each login attempt is fully
// resumable from the authorization code alone: no in-process state survives
// between the redirect and the callback, and a failed attempt always
// restarts from scratch.
type Flow struct {
	providers map[Provider]*ProviderClient
	tokens    *TokenService
	timeout   time.Duration
}

// NewFlow wires the configured providers. Google is always present;
// Facebook only when its credentials are configured.
func NewFlow(p *profile.Profile, tokens *TokenService) *Flow {
	providers := map[Provider]*ProviderClient{
		ProviderGoogle: {
			OAuth: &oauth2.Config{
				ClientID:     p.GoogleClientID,
				ClientSecret: p.GoogleClientSecret,
				Endpoint:     google.Endpoint,
				RedirectURL:  fmt.Sprintf("%s/api/auth/callback/%s", p.PublicURL, ProviderGoogle),
				Scopes:       []string{"openid", "email", "profile"},
			},
			UserInfoURL:     googleUserInfoURL,
			AltUserInfoURL:  googleAltUserInfoURL,
			AuthCodeOptions: []oauth2.AuthCodeOption{oauth2.SetAuthURLParam("prompt", "consent")},
			Adapter:         googleAdapter{},
		},
	}
	if p.HasFacebook() {
		providers[ProviderFacebook] = &ProviderClient{
			OAuth: &oauth2.Config{
				ClientID:     p.FacebookClientID,
				ClientSecret: p.FacebookClientSecret,
				Endpoint:     facebook.Endpoint,
				RedirectURL:  fmt.Sprintf("%s/api/auth/callback/%s", p.PublicURL, ProviderFacebook),
				Scopes:       []string{"public_profile", "email"},
			},
			UserInfoURL: facebookUserInfoURL,
			Adapter:     facebookAdapter{},
		}
	}
	return NewFlowWithProviders(providers, tokens, p.UpstreamTimeout)
}

// NewFlowWithProviders builds a flow from an explicit provider set. Tests
// use it to point the flow at local stand-in endpoints.
func NewFlowWithProviders(providers map[Provider]*ProviderClient, tokens *TokenService, timeout time.Duration) *Flow {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Flow{
		providers: providers,
		tokens:    tokens,
		timeout:   timeout,
	}
}

// BeginLogin builds the provider authorization URL for a fresh login
// attempt, together with the CSRF state echoed back on the callback.
func (f *Flow) BeginLogin(providerName string) (authURL string, state string, err error) {
	provider, err := ParseProvider(providerName)
	if err != nil {
		return "", "", err
	}
	pc, ok := f.providers[provider]
	if !ok {
		return "", "", apperrors.UnsupportedProvider(providerName)
	}

	state, err = generateState()
	if err != nil {
		return "", "", err
	}
	return pc.OAuth.AuthCodeURL(state, pc.AuthCodeOptions...), state, nil
}

// CompleteLogin exchanges the authorization code, recovers the user profile,
// normalizes it, and issues a session token. The profile is fetched in a
// deterministic fallback order: primary userinfo endpoint, then the
// alternate endpoint, then the claims of any ID token obtained during the
// exchange. Nothing is retried; any failure ends the whole attempt.
func (f *Flow) CompleteLogin(ctx context.Context, providerName, code string) (string, *CanonicalIdentity, error) {
	provider, err := ParseProvider(providerName)
	if err != nil {
		return "", nil, err
	}
	pc, ok := f.providers[provider]
	if !ok {
		return "", nil, apperrors.UnsupportedProvider(providerName)
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Timeout: f.timeout})
	token, err := pc.OAuth.Exchange(ctx, code)
	if err != nil {
		// The raw error may embed provider response bodies but never the
		// access token itself; the token is deliberately kept out of logs.
		return "", nil, apperrors.UpstreamFailure("authorization code exchange failed", err)
	}

	identity, err := f.recoverIdentity(ctx, pc, token)
	if err != nil {
		return "", nil, err
	}

	signed, err := f.tokens.Issue(identity)
	if err != nil {
		return "", nil, err
	}
	return signed, identity, nil
}

// recoverIdentity walks the profile fallback chain until an adapter accepts
// a payload.
func (f *Flow) recoverIdentity(ctx context.Context, pc *ProviderClient, token *oauth2.Token) (*CanonicalIdentity, error) {
	client := pc.OAuth.Client(ctx, token)

	var lastErr error
	for _, endpoint := range []string{pc.UserInfoURL, pc.AltUserInfoURL} {
		if endpoint == "" {
			continue
		}
		raw, err := fetchProfile(ctx, client, endpoint)
		if err != nil {
			lastErr = err
			slog.Warn("profile fetch failed, trying next source",
				slog.String("provider", string(pc.Adapter.Provider())),
				slog.String("error", err.Error()))
			continue
		}
		identity, err := pc.Adapter.Normalize(raw)
		if err != nil {
			lastErr = err
			continue
		}
		return identity, nil
	}

	// Last resort: the ID token minted during the exchange already carries
	// the OIDC claims. Its signature is not re-verified here because it
	// arrived over the provider's TLS token endpoint moments ago.
	if raw := idTokenClaims(token); raw != nil {
		if identity, err := pc.Adapter.Normalize(raw); err == nil {
			return identity, nil
		} else {
			lastErr = err
		}
	}

	return nil, apperrors.ProfileUnavailable("no profile source yielded a subject id", lastErr)
}

func fetchProfile(ctx context.Context, client *http.Client, endpoint string) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("profile endpoint returned status %d", resp.StatusCode)
	}

	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("malformed profile payload: %w", err)
	}
	return raw, nil
}

// idTokenClaims decodes the payload of an ID token carried in the exchange
// response, if any.
func idTokenClaims(token *oauth2.Token) map[string]any {
	idToken, _ := token.Extra("id_token").(string)
	if idToken == "" {
		return nil
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, claims); err != nil {
		return nil
	}
	return claims
}

func generateState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
