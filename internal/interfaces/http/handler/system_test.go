package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestSystemHandler_Health(t *testing.T) {
	tests := []struct {
		name       string
		db         Pinger
		wantStatus int
		wantState  string
		wantDB     string
	}{
		{"no database", nil, http.StatusOK, "ok", "ok"},
		{"database up", pingerFunc(func(context.Context) error { return nil }), http.StatusOK, "ok", "ok"},
		{"database down", pingerFunc(func(context.Context) error { return errors.New("connection refused") }), http.StatusServiceUnavailable, "degraded", "unreachable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/health", NewSystemHandler("closet-api", "1.2.3", tt.db).Health)

			w := doJSON(t, r, http.MethodGet, "/health", nil)
			require.Equal(t, tt.wantStatus, w.Code)

			var health HealthResponse
			resp := decode(t, w, &health)
			assert.Equal(t, tt.wantStatus == http.StatusOK, resp.Success)
			assert.Equal(t, tt.wantState, health.Status)
			assert.Equal(t, tt.wantDB, health.Database)
			assert.Equal(t, "1.2.3", health.Version)
			assert.NotEmpty(t, health.GoVersion)
		})
	}
}
