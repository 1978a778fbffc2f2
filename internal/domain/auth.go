package domain

import (
	"context"
	"net/http"
)

const (
	SubjectAnonymous     = "AnonymousUser"
	SubjectAuthenticated = "AuthenticatedUser"
	SubjectHealthCheck   = "HealthCheckUser"
)

type Principal struct {
	Subject       string
	Authenticated bool
	Scheme        string
}

// Authenticator resolves the caller from request headers. A request that
// carries no credentials yields an unauthenticated principal and no error.
type Authenticator interface {
	Authenticate(ctx context.Context, headers http.Header) (Principal, error)
}
