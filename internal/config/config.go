package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	EnvDevelopment = "development"

	AuthModeAnonymous = "anonymous"
	AuthModeHeader    = "header"
	AuthModeSecret    = "secret"

	PolicyEngineNative = "native"
	PolicyEngineOPA    = "opa"

	DefaultETagSalt = "Qco52Dtp9SBbq3DkBYmhWVYgy64YIMtq"
)

type Config struct {
	HTTPAddr    string
	AppEnv      string
	PostgresDSN string
	LogLevel    string

	AuthenticationEnabled bool
	AuthMode              string

	SecretHeaderName  string
	SecretHeaderValue string
	AgeHeaderName     string
	MinimumAge        int

	ResultTransformers []string
	PolicyEngine       string
	PolicyBundlePath   string

	ETagSalt       string
	ETagIterations int

	CORSAllowedOrigins []string

	RateLimitRequests      int
	RateLimitWindowSeconds int
	RateLimitFailClosed    bool
	RateLimitMaxKeys       int

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

func FromEnv() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	authEnabled := envBoolDefault("AUTHENTICATION_ENABLE", false)
	authMode := os.Getenv("AUTH_MODE")
	if authMode == "" {
		authMode = AuthModeAnonymous
		if authEnabled {
			authMode = AuthModeHeader
		}
	}
	return Config{
		HTTPAddr:               addr,
		AppEnv:                 envDefault("APP_ENV", "production"),
		PostgresDSN:            os.Getenv("POSTGRES_DSN"),
		LogLevel:               envDefault("LOG_LEVEL", "info"),
		AuthenticationEnabled:  authEnabled,
		AuthMode:               authMode,
		SecretHeaderName:       envDefault("SECRET_HEADER_NAME", "secret_header"),
		SecretHeaderValue:      envDefault("SECRET_HEADER_VALUE", "expected_value"),
		AgeHeaderName:          envDefault("AGE_HEADER_NAME", "age"),
		MinimumAge:             envIntDefault("MINIMUM_AGE", 18),
		ResultTransformers:     envListDefault("RESULT_TRANSFORMERS", []string{"secret_header", "minimum_age"}),
		PolicyEngine:           envDefault("POLICY_ENGINE", PolicyEngineNative),
		PolicyBundlePath:       os.Getenv("POLICY_BUNDLE_PATH"),
		ETagSalt:               envDefault("ETAG_SALT", DefaultETagSalt),
		ETagIterations:         envIntDefault("ETAG_ITERATIONS", 10000),
		CORSAllowedOrigins:     envListDefault("CORS_ALLOWED_ORIGINS", []string{"*"}),
		RateLimitRequests:      envIntDefault("RATE_LIMIT_REQUESTS", 0),
		RateLimitWindowSeconds: envIntDefault("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitFailClosed:    envBoolDefault("RATE_LIMIT_FAIL_CLOSED", false),
		RateLimitMaxKeys:       envIntDefault("RATE_LIMIT_MAX_KEYS", 10000),
		RedisAddr:              os.Getenv("REDIS_ADDR"),
		RedisPassword:          os.Getenv("REDIS_PASSWORD"),
		RedisDB:                envIntDefault("REDIS_DB", 0),
	}
}

// Validate reports configuration that would only fail later at request time.
func (c Config) Validate() error {
	var errs []error
	switch c.AuthMode {
	case AuthModeAnonymous, AuthModeHeader, AuthModeSecret:
	default:
		errs = append(errs, fmt.Errorf("unsupported auth mode %q", c.AuthMode))
	}
	switch c.PolicyEngine {
	case PolicyEngineNative, PolicyEngineOPA:
	default:
		errs = append(errs, fmt.Errorf("unsupported policy engine %q", c.PolicyEngine))
	}
	if strings.TrimSpace(c.SecretHeaderName) == "" {
		errs = append(errs, errors.New("SECRET_HEADER_NAME is required"))
	}
	if strings.TrimSpace(c.AgeHeaderName) == "" {
		errs = append(errs, errors.New("AGE_HEADER_NAME is required"))
	}
	if c.MinimumAge < 0 || c.MinimumAge > 65535 {
		errs = append(errs, fmt.Errorf("MINIMUM_AGE %d out of range", c.MinimumAge))
	}
	if len(c.ResultTransformers) == 0 {
		errs = append(errs, errors.New("RESULT_TRANSFORMERS must name at least one transformer"))
	}
	return errors.Join(errs...)
}

func (c Config) IsDevelopment() bool {
	return strings.EqualFold(c.AppEnv, EnvDevelopment)
}

func envDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func envIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.Atoi(v)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func envBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	switch v {
	case "1", "true", "TRUE", "True", "yes", "YES", "Yes":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "No":
		return false
	default:
		return def
	}
}

func envListDefault(key string, def []string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}
