package profile

import (
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Profile is the configuration to start main server.
type Profile struct {
	// Mode can be "prod" or "dev"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Version is the current version of server
	Version string

	// FrontendURL is the origin the browser is redirected back to after login.
	FrontendURL string
	// PublicURL is this service's own public base URL, used to build OAuth
	// callback URLs.
	PublicURL string

	// JWTSecret signs session tokens.
	JWTSecret string

	// OAuth provider credentials. Google is required; Facebook is enabled
	// only when both of its values are present.
	GoogleClientID       string
	GoogleClientSecret   string
	FacebookClientID     string
	FacebookClientSecret string

	// Completion endpoint configuration.
	OpenAIAPIKey  string // CONVINCE_OPENAI_API_KEY
	OpenAIBaseURL string // CONVINCE_OPENAI_BASE_URL (default: https://api.openai.com/v1)
	ChatModel     string // CONVINCE_CHAT_MODEL (default: gpt-4o-mini)

	// UpstreamTimeout bounds outbound calls to the identity providers and
	// the completion endpoint.
	UpstreamTimeout time.Duration

	// ScenarioFile optionally overrides the embedded scenario catalog.
	ScenarioFile string
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// HasFacebook reports whether Facebook login can be offered.
func (p *Profile) HasFacebook() bool {
	return p.FacebookClientID != "" && p.FacebookClientSecret != ""
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FromEnv loads configuration from CONVINCE_* environment variables.
func (p *Profile) FromEnv() {
	p.FrontendURL = getEnvOrDefault("CONVINCE_FRONTEND_URL", "http://localhost:3000")
	p.PublicURL = getEnvOrDefault("CONVINCE_PUBLIC_URL", "http://localhost:5000")
	p.JWTSecret = os.Getenv("CONVINCE_JWT_SECRET")
	p.GoogleClientID = os.Getenv("CONVINCE_GOOGLE_CLIENT_ID")
	p.GoogleClientSecret = os.Getenv("CONVINCE_GOOGLE_CLIENT_SECRET")
	p.FacebookClientID = os.Getenv("CONVINCE_FACEBOOK_CLIENT_ID")
	p.FacebookClientSecret = os.Getenv("CONVINCE_FACEBOOK_CLIENT_SECRET")
	p.OpenAIAPIKey = os.Getenv("CONVINCE_OPENAI_API_KEY")
	p.OpenAIBaseURL = getEnvOrDefault("CONVINCE_OPENAI_BASE_URL", "https://api.openai.com/v1")
	p.ChatModel = getEnvOrDefault("CONVINCE_CHAT_MODEL", "gpt-4o-mini")
	p.ScenarioFile = os.Getenv("CONVINCE_SCENARIO_FILE")

	if v := os.Getenv("CONVINCE_UPSTREAM_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			p.UpstreamTimeout = d
		}
	}
	if p.UpstreamTimeout == 0 {
		p.UpstreamTimeout = 30 * time.Second
	}
}

// Validate checks that every setting the server cannot run without is
// present. Missing values are a startup error, never a runtime one.
func (p *Profile) Validate() error {
	if p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "dev"
	}

	var missing []string
	if p.JWTSecret == "" {
		missing = append(missing, "CONVINCE_JWT_SECRET")
	}
	if p.FrontendURL == "" {
		missing = append(missing, "CONVINCE_FRONTEND_URL")
	}
	if p.PublicURL == "" {
		missing = append(missing, "CONVINCE_PUBLIC_URL")
	}
	if p.GoogleClientID == "" {
		missing = append(missing, "CONVINCE_GOOGLE_CLIENT_ID")
	}
	if p.GoogleClientSecret == "" {
		missing = append(missing, "CONVINCE_GOOGLE_CLIENT_SECRET")
	}
	if p.OpenAIAPIKey == "" {
		missing = append(missing, "CONVINCE_OPENAI_API_KEY")
	}
	if len(missing) > 0 {
		return errors.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	p.FrontendURL = strings.TrimRight(p.FrontendURL, "/")
	p.PublicURL = strings.TrimRight(p.PublicURL, "/")
	return nil
}
