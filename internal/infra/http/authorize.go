package http

import (
	"net/http"

	"storefront/internal/authz"

	"github.com/gin-gonic/gin"
)

// ginResponse lets the transformer chain write to a gin context.
type ginResponse struct {
	c       *gin.Context
	written bool
}

func (r *ginResponse) Written() bool {
	return r.written || r.c.Writer.Written()
}

func (r *ginResponse) Write(status int, body string) {
	r.written = true
	if body == "" {
		r.c.AbortWithStatus(status)
		return
	}
	r.c.String(status, body)
	r.c.Abort()
}

// authorize evaluates policy for the request and hands the outcome to the
// transformer chain. Only a succeeded outcome reaches the next handler.
func (s *Server) authorize(policy authz.Evaluator) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := getPrincipal(c)
		outcome, err := policy.Evaluate(c.Request.Context(), authz.Request{
			Principal: principal,
			Headers:   c.Request.Header,
		})
		if err != nil {
			s.logger.Error("policy evaluation failed", "err", err, "request_id", getRequestID(c))
			writeErrorCode(c, http.StatusInternalServerError, "POLICY_ERROR", "policy evaluation failed")
			return
		}
		if !outcome.Succeeded {
			reason, _ := outcome.FirstReason()
			s.logger.Debug("authorization failed", "subject", principal.Subject, "reason", reason.Message)
		}
		s.chain.Handle(&ginResponse{c: c}, authz.Result{
			Outcome:       outcome,
			Authenticated: principal.Authenticated,
		}, c.Next)
	}
}
