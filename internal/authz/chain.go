// Package authz maps policy outcomes to HTTP responses and evaluates the
// requirement-based policies that produce those outcomes.
package authz

import (
	"fmt"
	"net/http"

	"storefront/internal/domain"
)

const (
	MessageAuthenticationRequired = "Authentication required."
	messageAuthorizationFailed    = "Authorization failed: %s"
)

// Response is the sink a transformer writes to. Written reports whether a
// status and body have already been committed.
type Response interface {
	Written() bool
	Write(status int, body string)
}

// Result carries what a transformer needs to decide on a response.
type Result struct {
	Outcome       domain.AuthorizationOutcome
	Authenticated bool
}

type Transformer interface {
	Name() string
	Transform(resp Response, result Result)
}

type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "authz configuration: " + e.Reason
}

// Chain tries transformers in order and stops at the first one that writes.
type Chain struct {
	transformers []Transformer
}

func NewChain(transformers ...Transformer) (*Chain, error) {
	if len(transformers) == 0 {
		return nil, &ConfigurationError{Reason: "transformer chain is empty"}
	}
	seen := make(map[string]struct{}, len(transformers))
	out := make([]Transformer, 0, len(transformers))
	for i, t := range transformers {
		if t == nil {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("transformer %d is nil", i)}
		}
		name := t.Name()
		if _, ok := seen[name]; ok {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("duplicate transformer %q", name)}
		}
		seen[name] = struct{}{}
		out = append(out, t)
	}
	return &Chain{transformers: out}, nil
}

func (c *Chain) Names() []string {
	names := make([]string, 0, len(c.transformers))
	for _, t := range c.transformers {
		names = append(names, t.Name())
	}
	return names
}

// Handle renders result onto resp, or calls next exactly once when the
// outcome succeeded. Failed outcomes never reach next.
func (c *Chain) Handle(resp Response, result Result, next func()) {
	if result.Outcome.Succeeded {
		next()
		return
	}
	if !result.Authenticated {
		resp.Write(http.StatusUnauthorized, MessageAuthenticationRequired)
		return
	}
	for _, t := range c.transformers {
		t.Transform(resp, result)
		if resp.Written() {
			return
		}
	}
	resp.Write(http.StatusForbidden, "")
}

// kindTransformer answers a failure when the first reason has its kind.
type kindTransformer struct {
	name string
	kind domain.FailureKind
}

func (t kindTransformer) Name() string { return t.name }

func (t kindTransformer) Transform(resp Response, result Result) {
	if result.Outcome.Succeeded {
		return
	}
	if !result.Authenticated {
		resp.Write(http.StatusUnauthorized, MessageAuthenticationRequired)
		return
	}
	reason, ok := result.Outcome.FirstReason()
	if !ok || reason.Kind != t.kind {
		return
	}
	resp.Write(http.StatusForbidden, fmt.Sprintf(messageAuthorizationFailed, reason.Message))
}

func NewSecretHeaderTransformer() Transformer {
	return kindTransformer{name: TransformerSecretHeader, kind: domain.FailureSecretHeaderMismatch}
}

func NewMinimumAgeTransformer() Transformer {
	return kindTransformer{name: TransformerMinimumAge, kind: domain.FailureUnderage}
}
