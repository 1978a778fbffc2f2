package authz

import (
	"context"
	"net/http"
	"testing"

	"storefront/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func healthPolicy(requireAuth bool) Policy {
	return HealthCheckPolicy(requireAuth, "secret_header", "expected_value", "age", 18)
}

func headers(kv ...string) http.Header {
	h := http.Header{}
	for i := 0; i+1 < len(kv); i += 2 {
		h.Add(kv[i], kv[i+1])
	}
	return h
}

func TestHealthPolicy(t *testing.T) {
	anonymous := domain.Principal{Subject: domain.SubjectAnonymous, Authenticated: true}
	cases := []struct {
		name     string
		headers  http.Header
		messages []string
	}{
		{name: "all good", headers: headers("secret_header", "expected_value", "age", "18")},
		{name: "missing everything", headers: headers(), messages: []string{"Invalid secret header value.", "Missing age."}},
		{name: "wrong secret", headers: headers("secret_header", "nope", "age", "30"), messages: []string{"Invalid secret header value."}},
		{name: "bad age", headers: headers("secret_header", "expected_value", "age", "eighteen"), messages: []string{"Incorrect age format."}},
		{name: "age overflow", headers: headers("secret_header", "expected_value", "age", "70000"), messages: []string{"Incorrect age format."}},
		{name: "negative age", headers: headers("secret_header", "expected_value", "age", "-1"), messages: []string{"Incorrect age format."}},
		{name: "underage", headers: headers("secret_header", "expected_value", "age", " 17 "), messages: []string{"Underage."}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			outcome, err := healthPolicy(false).Evaluate(context.Background(), Request{Principal: anonymous, Headers: tc.headers})
			require.NoError(t, err)
			if len(tc.messages) == 0 {
				assert.True(t, outcome.Succeeded)
				return
			}
			assert.False(t, outcome.Succeeded)
			var got []string
			for _, r := range outcome.FailureReasons {
				got = append(got, r.Message)
			}
			assert.Equal(t, tc.messages, got)
		})
	}
}

func TestHealthPolicyRequiresAuthenticatedUser(t *testing.T) {
	outcome, err := healthPolicy(true).Evaluate(context.Background(), Request{
		Headers: headers("secret_header", "expected_value", "age", "40"),
	})
	require.NoError(t, err)
	require.False(t, outcome.Succeeded)
	assert.Equal(t, domain.FailureGeneric, outcome.FailureReasons[0].Kind)
}

func TestPolicyOutcomeThroughChain(t *testing.T) {
	outcome, err := healthPolicy(false).Evaluate(context.Background(), Request{
		Principal: domain.Principal{Authenticated: true},
		Headers:   headers("secret_header", "expected_value"),
	})
	require.NoError(t, err)

	resp := &recorder{}
	defaultChain(t).Handle(resp, Result{Outcome: outcome, Authenticated: true}, func() {})
	assert.Equal(t, http.StatusForbidden, resp.status)
	assert.Equal(t, "Authorization failed: Missing age.", resp.body)
}
