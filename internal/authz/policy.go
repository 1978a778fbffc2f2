package authz

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"storefront/internal/domain"
)

const (
	messageInvalidSecretHeader = "Invalid secret header value."
	messageMissingAge          = "Missing age."
	messageIncorrectAgeFormat  = "Incorrect age format."
	messageUnderage            = "Underage."
)

// Request is the evaluation input for a single HTTP request.
type Request struct {
	Principal domain.Principal
	Headers   http.Header
}

// Evaluator produces an outcome for a request. Policy and the OPA engine
// both satisfy it.
type Evaluator interface {
	Evaluate(ctx context.Context, req Request) (domain.AuthorizationOutcome, error)
}

type Requirement interface {
	Check(req Request) (domain.FailureReason, bool)
}

// Policy evaluates every requirement in order and collects every failure.
type Policy struct {
	Name                 string
	RequireAuthenticated bool
	Requirements         []Requirement
}

func (p Policy) Evaluate(_ context.Context, req Request) (domain.AuthorizationOutcome, error) {
	var reasons []domain.FailureReason
	if p.RequireAuthenticated && !req.Principal.Authenticated {
		reasons = append(reasons, domain.FailureReason{Kind: domain.FailureGeneric, Message: MessageAuthenticationRequired})
	}
	for _, r := range p.Requirements {
		if reason, ok := r.Check(req); !ok {
			reasons = append(reasons, reason)
		}
	}
	if len(reasons) == 0 {
		return domain.Succeeded(), nil
	}
	return domain.Failed(reasons...), nil
}

type SecretHeaderRequirement struct {
	HeaderName    string
	ExpectedValue string
}

func (r SecretHeaderRequirement) Check(req Request) (domain.FailureReason, bool) {
	values := req.Headers.Values(r.HeaderName)
	if len(values) > 0 && strings.Join(values, ",") == r.ExpectedValue {
		return domain.FailureReason{}, true
	}
	return domain.FailureReason{Kind: domain.FailureSecretHeaderMismatch, Message: messageInvalidSecretHeader}, false
}

type MinimumAgeRequirement struct {
	HeaderName string
	MinimumAge uint16
}

func (r MinimumAgeRequirement) Check(req Request) (domain.FailureReason, bool) {
	values := req.Headers.Values(r.HeaderName)
	if len(values) == 0 {
		return underage(messageMissingAge), false
	}
	age, err := strconv.ParseUint(strings.TrimSpace(strings.Join(values, ",")), 10, 16)
	if err != nil {
		return underage(messageIncorrectAgeFormat), false
	}
	if uint16(age) < r.MinimumAge {
		return underage(messageUnderage), false
	}
	return domain.FailureReason{}, true
}

func underage(message string) domain.FailureReason {
	return domain.FailureReason{Kind: domain.FailureUnderage, Message: message}
}

// HealthCheckPolicy guards the health endpoint.
func HealthCheckPolicy(requireAuthenticated bool, secretHeader, secretValue, ageHeader string, minimumAge uint16) Policy {
	return Policy{
		Name:                 "HealthCheckPolicy",
		RequireAuthenticated: requireAuthenticated,
		Requirements: []Requirement{
			SecretHeaderRequirement{HeaderName: secretHeader, ExpectedValue: secretValue},
			MinimumAgeRequirement{HeaderName: ageHeader, MinimumAge: minimumAge},
		},
	}
}
