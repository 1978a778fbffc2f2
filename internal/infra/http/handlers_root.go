package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// handleEcho describes the request as the server saw it.
func (s *Server) handleEcho(c *gin.Context) {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if forwarded := c.GetHeader("X-Forwarded-Proto"); forwarded != "" {
		scheme = forwarded
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Request Method: %s\n", c.Request.Method)
	fmt.Fprintf(&b, "Request Scheme: %s\n", scheme)
	fmt.Fprintf(&b, "Request Path: %s\n", c.Request.URL.Path)
	fmt.Fprintf(&b, "Request Host: %s\n", c.Request.Host)
	fmt.Fprintf(&b, "Remote Address: %s\n", c.Request.RemoteAddr)
	fmt.Fprintf(&b, "Client IP: %s\n", c.ClientIP())

	b.WriteString("\nRequest Headers:\n")
	for _, name := range sortedHeaderNames(c.Request.Header) {
		fmt.Fprintf(&b, "%s: %s\n", name, strings.Join(c.Request.Header.Values(name), ", "))
	}
	b.WriteString("\nResponse Headers:\n")
	for _, name := range sortedHeaderNames(c.Writer.Header()) {
		fmt.Fprintf(&b, "%s: %s\n", name, strings.Join(c.Writer.Header().Values(name), ", "))
	}
	c.String(http.StatusOK, b.String())
}

func (s *Server) handleHealth(c *gin.Context) {
	c.String(http.StatusOK, "Healthy")
}

func (s *Server) handleNoRoute(c *gin.Context) {
	writeErrorCode(c, http.StatusNotFound, "NOT_FOUND", "route not found")
}
