// Package auth implements the login pipeline: the OAuth authorization-code
// flow against the identity providers, normalization of provider profiles
// into a canonical identity, and issuance/verification of the signed session
// tokens handed to the frontend.
package auth

import (
	"fmt"

	apperrors "github.com/convinceapp/backend/server/internal/errors"
)

// Provider identifies a supported identity provider.
type Provider string

const (
	ProviderGoogle   Provider = "google"
	ProviderFacebook Provider = "facebook"
)

// ParseProvider validates a provider name from the request path.
func ParseProvider(name string) (Provider, error) {
	switch Provider(name) {
	case ProviderGoogle, ProviderFacebook:
		return Provider(name), nil
	default:
		return "", apperrors.UnsupportedProvider(name)
	}
}

// CanonicalIdentity is this system's normalized representation of a user,
// independent of which provider authenticated them. Subject is
// provider-namespaced ("google:<sub>") and stable across logins; it is never
// rebuilt from mutable fields like email or display name.
type CanonicalIdentity struct {
	Subject     string   `json:"sub"`
	DisplayName string   `json:"name,omitempty"`
	Email       string   `json:"email,omitempty"`
	PictureURL  string   `json:"picture,omitempty"`
	Provider    Provider `json:"provider"`
}

// namespacedSubject builds the globally unique subject for a provider account.
func namespacedSubject(provider Provider, id string) string {
	return fmt.Sprintf("%s:%s", provider, id)
}
