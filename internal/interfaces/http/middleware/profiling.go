package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/grafana/pyroscope-go"
)

// Profiling label names
const (
	ProfilingLabelMethod   = "http_method"
	ProfilingLabelRoute    = "http_route"
	ProfilingLabelResource = "resource"
)

// ProfilingConfig holds configuration for the profiling middleware.
type ProfilingConfig struct {
	Enabled          bool
	SkipPaths        []string
	SkipPathPrefixes []string
}

// DefaultProfilingConfig returns default profiling middleware configuration.
func DefaultProfilingConfig() ProfilingConfig {
	return ProfilingConfig{
		Enabled:          true,
		SkipPaths:        []string{"/health", "/api/v1/health"},
		SkipPathPrefixes: []string{"/swagger"},
	}
}

// Profiling tags CPU samples taken while a request runs with its route,
// so Pyroscope can break profiles down per endpoint.
func Profiling(cfg ProfilingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, p := range cfg.SkipPaths {
			if path == p {
				c.Next()
				return
			}
		}
		for _, p := range cfg.SkipPathPrefixes {
			if strings.HasPrefix(path, p) {
				c.Next()
				return
			}
		}

		pyroscope.TagWrapper(c.Request.Context(), pyroscope.Labels(profilingLabels(c)...), func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}

// profilingLabels returns alternating label keys and values
func profilingLabels(c *gin.Context) []string {
	route := c.FullPath()
	if route == "" {
		route = "unknown"
	}
	return []string{
		ProfilingLabelMethod, c.Request.Method,
		ProfilingLabelRoute, route,
		ProfilingLabelResource, resourceFromRoute(route),
	}
}

// resourceFromRoute returns the last static segment of a route pattern.
//
//	/api/v1/clients/:id/items/:itemId -> items
//	/api/v1/categories               -> categories
func resourceFromRoute(route string) string {
	parts := strings.Split(strings.Trim(route, "/"), "/")
	for i := len(parts) - 1; i >= 0; i-- {
		p := parts[i]
		if p == "" || strings.HasPrefix(p, ":") || strings.HasPrefix(p, "*") {
			continue
		}
		if p == "api" || isVersionSegment(p) {
			break
		}
		return p
	}
	return "root"
}

func isVersionSegment(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
