package cmd

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"storefront/internal/authz"
	"storefront/internal/config"
	"storefront/internal/domain"
	"storefront/internal/infra/policyopa"

	"github.com/spf13/cobra"
)

type policyReport struct {
	BundleHash string         `json:"bundleHash,omitempty" yaml:"bundleHash,omitempty"`
	Succeeded  bool           `json:"succeeded" yaml:"succeeded"`
	Reasons    []reasonReport `json:"reasons,omitempty" yaml:"reasons,omitempty"`
	Status     int            `json:"status" yaml:"status"`
	Body       string         `json:"body" yaml:"body"`
}

type reasonReport struct {
	Kind    string `json:"kind" yaml:"kind"`
	Message string `json:"message" yaml:"message"`
}

func newPolicyCmd(opts *options) *cobra.Command {
	defaults := config.FromEnv()
	settings := policyopa.Settings{
		RequireAuthenticated: defaults.AuthenticationEnabled,
		SecretHeaderName:     defaults.SecretHeaderName,
		SecretHeaderValue:    defaults.SecretHeaderValue,
		AgeHeaderName:        defaults.AgeHeaderName,
		MinimumAge:           uint16(defaults.MinimumAge),
	}
	bundlePath := defaults.PolicyBundlePath
	transformers := defaults.ResultTransformers
	authenticated := true
	var headers []string

	policy := &cobra.Command{
		Use:   "policy",
		Short: "Evaluate the health check policy",
	}
	check := &cobra.Command{
		Use:   "check",
		Short: "Evaluate the policy for one request and show the response it gets",
		Long: `Compile the health check policy (the embedded module, or a bundle
directory) and evaluate it for a synthetic request. The result is passed
through the configured transformer chain to show the status and body the
/healthz endpoint would answer with.

Examples:
  storefrontctl policy check -H secret_header=expected_value -H age=30
  storefrontctl policy check --bundle ./policy --authenticated=false`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h := http.Header{}
			for _, kv := range headers {
				name, value, ok := strings.Cut(kv, "=")
				if !ok || strings.TrimSpace(name) == "" {
					return fmt.Errorf("header must be name=value, got %q", kv)
				}
				h.Add(strings.TrimSpace(name), value)
			}
			report, err := checkPolicy(cmd.Context(), settings, bundlePath, transformers, authenticated, h)
			if err != nil {
				return err
			}
			if opts.structured() {
				if err := opts.write(cmd.OutOrStdout(), report); err != nil {
					return err
				}
			} else {
				printPolicyReport(cmd, report)
			}
			if !report.Succeeded {
				return errCheckFailed
			}
			return nil
		},
	}
	f := check.Flags()
	f.StringVar(&bundlePath, "bundle", bundlePath, "Policy bundle directory (embedded module when empty)")
	f.BoolVar(&authenticated, "authenticated", authenticated, "Treat the caller as authenticated")
	f.BoolVar(&settings.RequireAuthenticated, "require-authenticated", settings.RequireAuthenticated, "Policy requires an authenticated caller")
	f.StringSliceVar(&transformers, "transformers", transformers, "Result transformers in order")
	f.StringArrayVarP(&headers, "header", "H", nil, "Request header name=value (repeatable)")
	policy.AddCommand(check)
	return policy
}

func checkPolicy(ctx context.Context, settings policyopa.Settings, bundlePath string, transformers []string, authenticated bool, headers http.Header) (policyReport, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var engine *policyopa.Engine
	var err error
	if bundlePath != "" {
		engine, err = policyopa.NewEngineFromBundlePath(ctx, settings, bundlePath)
	} else {
		engine, err = policyopa.NewEngine(ctx, settings, policyopa.DefaultModule)
	}
	if err != nil {
		return policyReport{}, fmt.Errorf("load policy: %w", err)
	}
	chain, err := authz.ChainFromNames(transformers)
	if err != nil {
		return policyReport{}, err
	}

	principal := domain.Principal{Subject: domain.SubjectAnonymous, Authenticated: authenticated}
	outcome, err := engine.Evaluate(ctx, authz.Request{Principal: principal, Headers: headers})
	if err != nil {
		return policyReport{}, fmt.Errorf("evaluate policy: %w", err)
	}

	resp := &recordedResponse{status: http.StatusOK, body: "Healthy"}
	chain.Handle(resp, authz.Result{Outcome: outcome, Authenticated: authenticated}, func() {})

	report := policyReport{
		BundleHash: engine.BundleHash(),
		Succeeded:  outcome.Succeeded,
		Status:     resp.status,
		Body:       resp.body,
	}
	for _, r := range outcome.FailureReasons {
		report.Reasons = append(report.Reasons, reasonReport{Kind: string(r.Kind), Message: r.Message})
	}
	return report, nil
}

func printPolicyReport(cmd *cobra.Command, report policyReport) {
	w := cmd.OutOrStdout()
	status := passFmt("ALLOWED")
	if !report.Succeeded {
		status = failFmt("DENIED")
	}
	fmt.Fprintf(w, "Status: %s\n", status)
	if report.BundleHash != "" {
		fmt.Fprintf(w, "Bundle: %s\n", report.BundleHash)
	}
	for _, r := range report.Reasons {
		fmt.Fprintf(w, "  %s: %s\n", r.Kind, r.Message)
	}
	fmt.Fprintf(w, "Response: %d %q\n", report.Status, report.Body)
}

// recordedResponse captures what the transformer chain writes.
type recordedResponse struct {
	status  int
	body    string
	written bool
}

func (r *recordedResponse) Written() bool { return r.written }

func (r *recordedResponse) Write(status int, body string) {
	r.status, r.body, r.written = status, body, true
}
