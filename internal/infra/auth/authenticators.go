// Package auth resolves request principals for the authorization pipeline.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"storefront/internal/config"
	"storefront/internal/domain"
)

// Anonymous authenticates every caller. It backs deployments with
// authentication switched off.
type Anonymous struct{}

func (Anonymous) Authenticate(context.Context, http.Header) (domain.Principal, error) {
	return domain.Principal{Subject: domain.SubjectAnonymous, Authenticated: true, Scheme: config.AuthModeAnonymous}, nil
}

// HeaderPresence authenticates any request that carries an Authorization
// header. The credential itself is not inspected.
type HeaderPresence struct{}

func (HeaderPresence) Authenticate(_ context.Context, h http.Header) (domain.Principal, error) {
	if strings.TrimSpace(h.Get("Authorization")) == "" {
		return domain.Principal{Scheme: config.AuthModeHeader}, nil
	}
	return domain.Principal{Subject: domain.SubjectAuthenticated, Authenticated: true, Scheme: config.AuthModeHeader}, nil
}

// SecretHeader authenticates callers presenting the shared health check secret.
type SecretHeader struct {
	HeaderName    string
	ExpectedValue string
}

func (s SecretHeader) Authenticate(_ context.Context, h http.Header) (domain.Principal, error) {
	values := h.Values(s.HeaderName)
	if len(values) == 0 || strings.Join(values, ",") != s.ExpectedValue {
		return domain.Principal{Scheme: config.AuthModeSecret}, nil
	}
	return domain.Principal{Subject: domain.SubjectHealthCheck, Authenticated: true, Scheme: config.AuthModeSecret}, nil
}

func FromConfig(cfg config.Config) (domain.Authenticator, error) {
	switch cfg.AuthMode {
	case config.AuthModeAnonymous:
		return Anonymous{}, nil
	case config.AuthModeHeader:
		return HeaderPresence{}, nil
	case config.AuthModeSecret:
		return SecretHeader{HeaderName: cfg.SecretHeaderName, ExpectedValue: cfg.SecretHeaderValue}, nil
	default:
		return nil, fmt.Errorf("unsupported auth mode %q", cfg.AuthMode)
	}
}
