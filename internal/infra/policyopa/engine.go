// Package policyopa evaluates request authorization with an OPA/Rego module.
package policyopa

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"storefront/internal/authz"
	"storefront/internal/domain"

	"github.com/open-policy-agent/opa/ast"
	"github.com/open-policy-agent/opa/rego"
)

const defaultQuery = "data.storefront.authz.result"

//go:embed authz.rego
var DefaultModule string

const (
	codeAuthenticationRequired = "AUTHENTICATION_REQUIRED"
	codeSecretHeaderMismatch   = "SECRET_HEADER_MISMATCH"
	codeMinimumAge             = "MINIMUM_AGE"
)

// Settings is passed to the module as input.config.
type Settings struct {
	RequireAuthenticated bool   `json:"require_authenticated"`
	SecretHeaderName     string `json:"secret_header_name"`
	SecretHeaderValue    string `json:"secret_header_value"`
	AgeHeaderName        string `json:"age_header_name"`
	MinimumAge           uint16 `json:"minimum_age"`
}

type Engine struct {
	query      rego.PreparedEvalQuery
	settings   Settings
	bundleHash string
}

type policyInput struct {
	Config    Settings          `json:"config"`
	Principal principalInput    `json:"principal"`
	Headers   map[string]string `json:"headers"`
}

type principalInput struct {
	Subject       string `json:"subject"`
	Authenticated bool   `json:"authenticated"`
}

type policyResult struct {
	Allow bool         `json:"allow"`
	Deny  []denyReason `json:"deny"`
}

type denyReason struct {
	Order   int    `json:"order"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewEngine compiles module source. Pass DefaultModule for the built-in policy.
func NewEngine(ctx context.Context, settings Settings, module string) (*Engine, error) {
	compiler := ast.NewCompiler()
	r := rego.New(
		rego.Query(defaultQuery),
		rego.Compiler(compiler),
		rego.StrictBuiltinErrors(true),
		rego.Module("authz.rego", module),
	)
	return prepare(ctx, r, compiler, settings, "")
}

// NewEngineFromBundlePath loads every policy file below bundlePath.
func NewEngineFromBundlePath(ctx context.Context, settings Settings, bundlePath string) (*Engine, error) {
	bundleHash, err := ComputeBundleHashFromPath(bundlePath)
	if err != nil {
		return nil, fmt.Errorf("hash policy bundle: %w", err)
	}
	compiler := ast.NewCompiler()
	r := rego.New(
		rego.Query(defaultQuery),
		rego.Compiler(compiler),
		rego.StrictBuiltinErrors(true),
		rego.Load([]string{bundlePath}, nil),
	)
	return prepare(ctx, r, compiler, settings, bundleHash)
}

func prepare(ctx context.Context, r *rego.Rego, compiler *ast.Compiler, settings Settings, bundleHash string) (*Engine, error) {
	prepared, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("prepare policy: %w", err)
	}
	if err := assertNoForbiddenBuiltins(compiler); err != nil {
		return nil, err
	}
	return &Engine{query: prepared, settings: settings, bundleHash: bundleHash}, nil
}

func (e *Engine) BundleHash() string {
	return e.bundleHash
}

func (e *Engine) Evaluate(ctx context.Context, req authz.Request) (domain.AuthorizationOutcome, error) {
	if e == nil {
		return domain.AuthorizationOutcome{}, errors.New("policy engine is nil")
	}
	input := policyInput{
		Config: e.settings,
		Principal: principalInput{
			Subject:       req.Principal.Subject,
			Authenticated: req.Principal.Authenticated,
		},
		Headers: flattenHeaders(req.Headers),
	}
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return domain.AuthorizationOutcome{}, err
	}
	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return domain.AuthorizationOutcome{}, errors.New("empty policy result")
	}
	result, err := decodePolicyResult(results[0].Expressions[0].Value)
	if err != nil {
		return domain.AuthorizationOutcome{}, err
	}
	normalizePolicyResult(&result)
	if result.Allow && len(result.Deny) == 0 {
		return domain.Succeeded(), nil
	}
	reasons := make([]domain.FailureReason, 0, len(result.Deny))
	for _, d := range result.Deny {
		reasons = append(reasons, domain.FailureReason{Kind: kindForCode(d.Code), Message: d.Message})
	}
	if len(reasons) == 0 {
		reasons = append(reasons, domain.FailureReason{Kind: domain.FailureGeneric, Message: "Policy denied the request."})
	}
	return domain.Failed(reasons...), nil
}

var _ authz.Evaluator = (*Engine)(nil)

func flattenHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for name, values := range h {
		out[strings.ToLower(name)] = strings.Join(values, ",")
	}
	return out
}

func kindForCode(code string) domain.FailureKind {
	switch code {
	case codeSecretHeaderMismatch:
		return domain.FailureSecretHeaderMismatch
	case codeMinimumAge:
		return domain.FailureUnderage
	default:
		return domain.FailureGeneric
	}
}

func decodePolicyResult(value any) (policyResult, error) {
	payload, err := json.Marshal(value)
	if err != nil {
		return policyResult{}, err
	}
	var result policyResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return policyResult{}, err
	}
	return result, nil
}

func normalizePolicyResult(result *policyResult) {
	if result == nil {
		return
	}
	sort.Slice(result.Deny, func(i, j int) bool {
		if result.Deny[i].Order != result.Deny[j].Order {
			return result.Deny[i].Order < result.Deny[j].Order
		}
		if result.Deny[i].Code == result.Deny[j].Code {
			return result.Deny[i].Message < result.Deny[j].Message
		}
		return result.Deny[i].Code < result.Deny[j].Code
	})
}

func assertNoForbiddenBuiltins(compiler *ast.Compiler) error {
	if compiler == nil {
		return errors.New("policy compiler is nil")
	}
	forbidden := make(map[string]struct{})
	check := func(name string) {
		if _, ok := ast.BuiltinMap[name]; !ok {
			return
		}
		if _, ok := allowedBuiltins[name]; ok {
			return
		}
		forbidden[name] = struct{}{}
	}
	for _, module := range compiler.Modules {
		ast.WalkTerms(module, func(term *ast.Term) bool {
			call, ok := term.Value.(ast.Call)
			if !ok || len(call) == 0 || call[0] == nil {
				return false
			}
			check(call[0].Value.String())
			return false
		})
		// The compiler hoists nested calls into their own expressions.
		ast.WalkExprs(module, func(expr *ast.Expr) bool {
			if expr.IsCall() {
				check(expr.Operator().String())
			}
			return false
		})
	}
	if len(forbidden) == 0 {
		return nil
	}
	names := make([]string, 0, len(forbidden))
	for name := range forbidden {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Errorf("forbidden builtins: %s", strings.Join(names, ", "))
}
