package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	apperrors "github.com/convinceapp/backend/server/internal/errors"
)

// fakeProvider is a stand-in identity provider: a token endpoint and two
// userinfo endpoints whose behavior each test controls.
type fakeProvider struct {
	tokenServer   *httptest.Server
	primaryServer *httptest.Server
	altServer     *httptest.Server
}

func newFakeProvider(t *testing.T, tokenExtra map[string]any, primary, alt http.HandlerFunc) *fakeProvider {
	t.Helper()

	fp := &fakeProvider{}
	fp.tokenServer = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		response := map[string]any{
			"access_token": "fake-access-token",
			"token_type":   "Bearer",
			"expires_in":   3600,
		}
		for k, v := range tokenExtra {
			response[k] = v
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(response)
	}))
	t.Cleanup(fp.tokenServer.Close)

	if primary != nil {
		fp.primaryServer = httptest.NewServer(primary)
		t.Cleanup(fp.primaryServer.Close)
	}
	if alt != nil {
		fp.altServer = httptest.NewServer(alt)
		t.Cleanup(fp.altServer.Close)
	}
	return fp
}

func (fp *fakeProvider) flow(tokens *TokenService) *Flow {
	client := &ProviderClient{
		OAuth: &oauth2.Config{
			ClientID:     "test-client-id",
			ClientSecret: "test-client-secret",
			Endpoint: oauth2.Endpoint{
				AuthURL:  fp.tokenServer.URL + "/auth",
				TokenURL: fp.tokenServer.URL + "/token",
			},
			RedirectURL: "http://localhost:5000/api/auth/callback/google",
			Scopes:      []string{"openid", "email", "profile"},
		},
		Adapter: googleAdapter{},
	}
	if fp.primaryServer != nil {
		client.UserInfoURL = fp.primaryServer.URL
	}
	if fp.altServer != nil {
		client.AltUserInfoURL = fp.altServer.URL
	}
	return NewFlowWithProviders(map[Provider]*ProviderClient{ProviderGoogle: client}, tokens, 5*time.Second)
}

func serveJSON(payload map[string]any) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func serveStatus(status int) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
	}
}

func TestBeginLoginUnsupportedProvider(t *testing.T) {
	fp := newFakeProvider(t, nil, nil, nil)
	flow := fp.flow(NewTokenService("test-secret"))

	_, _, err := flow.BeginLogin("twitter")
	require.Error(t, err)
	require.Equal(t, apperrors.ErrCodeUnsupportedProvider, apperrors.CodeOf(err))
}

func TestBeginLoginBuildsAuthorizationURL(t *testing.T) {
	fp := newFakeProvider(t, nil, nil, nil)
	flow := fp.flow(NewTokenService("test-secret"))

	authURL, state, err := flow.BeginLogin("google")
	require.NoError(t, err)
	require.NotEmpty(t, state)
	require.Contains(t, authURL, "client_id=test-client-id")
	require.Contains(t, authURL, "response_type=code")
	require.Contains(t, authURL, "redirect_uri=")
	require.Contains(t, authURL, "state="+state)
	require.Contains(t, authURL, "scope=openid+email+profile")

	// Each attempt gets a fresh state.
	_, state2, err := flow.BeginLogin("google")
	require.NoError(t, err)
	require.NotEqual(t, state, state2)
}

func TestCompleteLoginFromPrimaryUserInfo(t *testing.T) {
	fp := newFakeProvider(t, nil,
		serveJSON(map[string]any{"sub": "108", "name": "Deniz", "email": "deniz@example.com"}),
		nil,
	)
	tokens := NewTokenService("test-secret")
	flow := fp.flow(tokens)

	token, identity, err := flow.CompleteLogin(context.Background(), "google", "fake-code")
	require.NoError(t, err)
	require.Equal(t, "google:108", identity.Subject)
	require.Equal(t, "Deniz", identity.DisplayName)

	verified, err := tokens.Verify(token)
	require.NoError(t, err)
	require.Equal(t, identity, verified)
}

func TestCompleteLoginFallsBackToAlternateEndpoint(t *testing.T) {
	fp := newFakeProvider(t, nil,
		serveStatus(http.StatusInternalServerError),
		serveJSON(map[string]any{"id": "42", "name": "Deniz"}),
	)
	flow := fp.flow(NewTokenService("test-secret"))

	_, identity, err := flow.CompleteLogin(context.Background(), "google", "fake-code")
	require.NoError(t, err)
	require.Equal(t, "google:42", identity.Subject)
}

func TestCompleteLoginFallsBackToIDToken(t *testing.T) {
	idToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "777",
		"name":  "Deniz",
		"email": "deniz@example.com",
	}).SignedString([]byte("provider-signing-key"))
	require.NoError(t, err)

	fp := newFakeProvider(t,
		map[string]any{"id_token": idToken},
		serveStatus(http.StatusInternalServerError),
		serveJSON(map[string]any{"name": "no subject here"}),
	)
	flow := fp.flow(NewTokenService("test-secret"))

	_, identity, err := flow.CompleteLogin(context.Background(), "google", "fake-code")
	require.NoError(t, err)
	require.Equal(t, "google:777", identity.Subject)
	require.Equal(t, "deniz@example.com", identity.Email)
}

func TestCompleteLoginProfileUnavailable(t *testing.T) {
	fp := newFakeProvider(t, nil,
		serveStatus(http.StatusInternalServerError),
		serveJSON(map[string]any{"name": "no subject here"}),
	)
	flow := fp.flow(NewTokenService("test-secret"))

	_, _, err := flow.CompleteLogin(context.Background(), "google", "fake-code")
	require.Error(t, err)
	require.Equal(t, apperrors.ErrCodeProfileUnavailable, apperrors.CodeOf(err))
}

func TestCompleteLoginExchangeFailure(t *testing.T) {
	fp := newFakeProvider(t, nil, nil, nil)
	fp.tokenServer.Config.Handler = serveStatus(http.StatusInternalServerError)
	flow := fp.flow(NewTokenService("test-secret"))

	_, _, err := flow.CompleteLogin(context.Background(), "google", "bad-code")
	require.Error(t, err)
	require.Equal(t, apperrors.ErrCodeUpstreamFailure, apperrors.CodeOf(err))
}

func TestCompleteLoginUnsupportedProvider(t *testing.T) {
	fp := newFakeProvider(t, nil, nil, nil)
	flow := fp.flow(NewTokenService("test-secret"))

	_, _, err := flow.CompleteLogin(context.Background(), "twitter", "fake-code")
	require.Error(t, err)
	require.Equal(t, apperrors.ErrCodeUnsupportedProvider, apperrors.CodeOf(err))
}
