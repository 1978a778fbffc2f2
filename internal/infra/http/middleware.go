package http

import (
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"storefront/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	principalContextKey = "principal"
	requestIDContextKey = "request_id"
	requestIDHeader     = "X-Request-ID"
)

const permissionsPolicy = "accelerometer=(), camera=(), geolocation=(), gyroscope=(), magnetometer=(), microphone=(), payment=(), usb=()"

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(requestIDContextKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func getRequestID(c *gin.Context) string {
	return c.GetString(requestIDContextKey)
}

// accessLog writes one line per request. Headers are included in development
// and for failed requests.
func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"ms", time.Since(start).Milliseconds(),
			"request_id", getRequestID(c),
		}
		if s.cfg.IsDevelopment() || status >= http.StatusBadRequest {
			attrs = append(attrs, "headers", redactHeaders(c.Request.Header))
		}
		level := slog.LevelInfo
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		s.logger.Log(c.Request.Context(), level, "http", attrs...)
	}
}

func redactHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for name, values := range h {
		if strings.EqualFold(name, "Authorization") || strings.EqualFold(name, "Cookie") {
			out[name] = "REDACTED"
			continue
		}
		out[name] = strings.Join(values, ",")
	}
	return out
}

func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Content-Security-Policy", "default-src 'self'")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "SAMEORIGIN")
		h.Set("Permissions-Policy", permissionsPolicy)
		c.Next()
	}
}

func (s *Server) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := s.authenticator.Authenticate(c.Request.Context(), c.Request.Header)
		if err != nil {
			writeErrorCode(c, http.StatusInternalServerError, "AUTH_CONFIG_ERROR", "authentication failed")
			return
		}
		c.Set(principalContextKey, principal)
		c.Next()
	}
}

func getPrincipal(c *gin.Context) domain.Principal {
	raw, ok := c.Get(principalContextKey)
	if !ok {
		return domain.Principal{}
	}
	principal, _ := raw.(domain.Principal)
	return principal
}

// rateLimit counts requests per client address and route. A limiter error
// lets the request through unless the limiter is configured to fail closed.
func (s *Server) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.rateLimiter == nil || s.rateLimitRequests <= 0 {
			c.Next()
			return
		}
		key := rateLimitKey(c)
		decision, err := s.rateLimiter.Allow(c.Request.Context(), key, s.rateLimitRequests, s.rateLimitWindow)
		if err != nil {
			s.logger.Warn("rate limiter unavailable", "err", err, "request_id", getRequestID(c))
			if s.rateLimitFailClosed {
				writeErrorCode(c, http.StatusTooManyRequests, "RATE_LIMIT_UNAVAILABLE", "rate limiter unavailable")
				return
			}
			c.Next()
			return
		}
		c.Header("RateLimit-Limit", strconv.Itoa(decision.Limit))
		c.Header("RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		reset := int(time.Until(decision.ResetAt).Round(time.Second).Seconds())
		if reset < 0 {
			reset = 0
		}
		c.Header("RateLimit-Reset", strconv.Itoa(reset))
		if !decision.Allowed {
			c.Header("Retry-After", strconv.Itoa(reset))
			writeErrorCode(c, http.StatusTooManyRequests, "RATE_LIMITED", "rate limit exceeded")
			return
		}
		c.Next()
	}
}

func rateLimitKey(c *gin.Context) string {
	route := c.FullPath()
	if route == "" {
		route = c.Request.URL.Path
	}
	parts := []string{c.ClientIP(), c.Request.Method, route}
	if p := getPrincipal(c); p.Authenticated && p.Subject != "" {
		parts = append(parts, p.Subject)
	}
	return strings.Join(parts, "|")
}

func sortedHeaderNames(h http.Header) []string {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
