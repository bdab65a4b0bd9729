package auth

import (
	apperrors "github.com/convinceapp/backend/server/internal/errors"
)

// ProfileAdapter converts a provider's raw profile payload into a canonical
// identity. Adapters are pure transforms: providers disagree on field names
// and may omit email or picture, so each adapter applies a deterministic
// fallback order and fails only when no stable subject id can be extracted.
type ProfileAdapter interface {
	Provider() Provider
	Normalize(raw map[string]any) (*CanonicalIdentity, error)
}

// AdapterFor returns the profile adapter for a provider.
func AdapterFor(provider Provider) (ProfileAdapter, error) {
	switch provider {
	case ProviderGoogle:
		return googleAdapter{}, nil
	case ProviderFacebook:
		return facebookAdapter{}, nil
	default:
		return nil, apperrors.UnsupportedProvider(string(provider))
	}
}

// MustAdapterFor is AdapterFor for statically known providers.
func MustAdapterFor(provider Provider) ProfileAdapter {
	adapter, err := AdapterFor(provider)
	if err != nil {
		panic(err)
	}
	return adapter
}

type googleAdapter struct{}

func (googleAdapter) Provider() Provider { return ProviderGoogle }

// Normalize accepts both the OIDC userinfo shape ("sub") and the legacy
// Google profile shape ("id"). Email and picture are optional.
func (googleAdapter) Normalize(raw map[string]any) (*CanonicalIdentity, error) {
	id := stringField(raw, "sub")
	if id == "" {
		id = stringField(raw, "id")
	}
	if id == "" {
		return nil, apperrors.IncompleteProfile("google profile has no sub or id")
	}
	return &CanonicalIdentity{
		Subject:     namespacedSubject(ProviderGoogle, id),
		DisplayName: stringField(raw, "name"),
		Email:       stringField(raw, "email"),
		PictureURL:  stringField(raw, "picture"),
		Provider:    ProviderGoogle,
	}, nil
}

type facebookAdapter struct{}

func (facebookAdapter) Provider() Provider { return ProviderFacebook }

// Normalize reads the Graph API "me" shape. Email may be absent when the app
// was not granted the email permission; the picture URL is nested under
// picture.data.url.
func (facebookAdapter) Normalize(raw map[string]any) (*CanonicalIdentity, error) {
	id := stringField(raw, "id")
	if id == "" {
		return nil, apperrors.IncompleteProfile("facebook profile has no id")
	}

	var pictureURL string
	if picture, ok := raw["picture"].(map[string]any); ok {
		if data, ok := picture["data"].(map[string]any); ok {
			pictureURL = stringField(data, "url")
		}
	}

	return &CanonicalIdentity{
		Subject:     namespacedSubject(ProviderFacebook, id),
		DisplayName: stringField(raw, "name"),
		Email:       stringField(raw, "email"),
		PictureURL:  pictureURL,
		Provider:    ProviderFacebook,
	}, nil
}

func stringField(raw map[string]any, key string) string {
	value, _ := raw[key].(string)
	return value
}
