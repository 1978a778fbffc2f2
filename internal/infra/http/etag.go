package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// notModified sets ETag and Cache-Control for value and answers 304 when the
// client already holds that tag.
func (s *Server) notModified(c *gin.Context, value any) bool {
	tag, err := s.etags.Compute(value)
	if err != nil {
		s.logger.Warn("etag computation failed", "err", err, "request_id", getRequestID(c))
		return false
	}
	quoted := `"` + tag + `"`
	c.Header("ETag", quoted)
	c.Header("Cache-Control", "private")
	if ifNoneMatch(c.GetHeader("If-None-Match"), tag) {
		c.AbortWithStatus(http.StatusNotModified)
		return true
	}
	return false
}

func ifNoneMatch(header, tag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		if candidate == "*" {
			return true
		}
		candidate = strings.TrimPrefix(candidate, "W/")
		if strings.Trim(candidate, `"`) == tag {
			return true
		}
	}
	return false
}
