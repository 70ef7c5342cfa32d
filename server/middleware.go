package main

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-training/oauth-playground/pkg/core"

	sloggin "github.com/gin-contrib/slog"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// requestIDMiddleware puts a request ID on the request context, reusing a
// well-formed inbound X-Request-ID header.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(requestIDHeader)
		if _, err := uuid.Parse(reqID); err != nil {
			reqID = uuid.New().String()
		}
		ctx := core.WithRequestIDValue(c.Request.Context(), reqID)
		c.Request = c.Request.WithContext(ctx)
		c.Header(requestIDHeader, reqID)
		c.Next()
	}
}

const rawQueryKey = "raw_query"

// requestLogger logs one line per request through gin-contrib/slog, tagged
// with the request ID. Health probes are skipped.
func requestLogger() gin.HandlerFunc {
	return sloggin.SetLogger(
		sloggin.WithLogger(func(c *gin.Context, _ *slog.Logger) *slog.Logger {
			return core.LoggerFromCtx(c.Request.Context())
		}),
		sloggin.WithSkipPath([]string{"/healthz"}),
	)
}

// hideQuery and restoreQuery wrap requestLogger so it never sees the query
// string. The callback carries the authorization code there.
func hideQuery(c *gin.Context) {
	raw, uri := c.Request.URL.RawQuery, c.Request.RequestURI
	c.Set(rawQueryKey, raw)
	c.Request.URL.RawQuery = ""
	c.Request.RequestURI = c.Request.URL.Path
	c.Next()
	c.Request.URL.RawQuery, c.Request.RequestURI = raw, uri
}

func restoreQuery(c *gin.Context) {
	c.Request.URL.RawQuery = c.GetString(rawQueryKey)
	c.Next()
	c.Request.URL.RawQuery = ""
}

// noStore keeps pages that echo credentials or tokens out of caches.
func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.Next()
}

// corsMiddleware allows browser-based MCP clients to reach /mcp.
// Extra headers are merged with the defaults, case-insensitively.
func corsMiddleware(allowedHeaders ...string) gin.HandlerFunc {
	headers := []string{"Mcp-Protocol-Version", "Mcp-Session-Id", "Content-Type"}
	for _, h := range allowedHeaders {
		h = strings.TrimSpace(h)
		if h != "" && h != "*" && !containsCI(headers, h) {
			headers = append(headers, h)
		}
	}
	allowedMethods := []string{"GET", "POST", "DELETE", "OPTIONS"}

	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Vary", "Origin")
		c.Header("Access-Control-Allow-Methods", strings.Join(allowedMethods, ", "))
		c.Header("Access-Control-Allow-Headers", strings.Join(headers, ", "))
		c.Header("Access-Control-Max-Age", "86400")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// containsCI checks if slice contains item (case-insensitive).
func containsCI(slice []string, item string) bool {
	for _, s := range slice {
		if strings.EqualFold(s, item) {
			return true
		}
	}
	return false
}
