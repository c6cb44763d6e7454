package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"

	promhandler "github.com/jwalitptl/careconnect-api/internal/handler/prometheus"
	"github.com/jwalitptl/careconnect-api/internal/middleware"
	"github.com/jwalitptl/careconnect-api/internal/model"
	"github.com/jwalitptl/careconnect-api/pkg/logger"
)

type pathHandler string

func (p pathHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET(string(p), func(c *gin.Context) { c.Status(http.StatusOK) })
}

type acceptAll struct{}

func (acceptAll) ValidateToken(context.Context, string) (*model.TokenClaims, error) {
	return &model.TokenClaims{UserID: uuid.New(), Email: "a@example.com"}, nil
}

func newTestRouter() *gin.Engine {
	r := NewRouter(
		middleware.NewAuthMiddleware(acceptAll{}),
		Handlers{
			Health:      pathHandler("/health/live"),
			Auth:        pathHandler("/auth/ping"),
			Patient:     pathHandler("/patients"),
			Share:       pathHandler("/me/invitations"),
			Doctor:      pathHandler("/doctors"),
			Appointment: pathHandler("/appointments/x"),
		},
		promhandler.New("test", prometheus.NewRegistry()),
		logger.NewNop(),
		RouterConfig{
			Mode:       gin.TestMode,
			CORSConfig: middleware.DefaultCORSConfig(),
			Security:   middleware.DefaultSecurityConfig(),
			SizeLimit:  middleware.DefaultSizeLimitConfig(),
		},
	)
	r.Setup()
	return r.Engine()
}

func TestRouter_PublicAndProtected(t *testing.T) {
	engine := newTestRouter()

	tests := []struct {
		path   string
		bearer bool
		want   int
	}{
		{"/api/v1/health/live", false, http.StatusOK},
		{"/api/v1/auth/ping", false, http.StatusOK},
		{"/metrics", false, http.StatusOK},
		{"/api/v1/patients", false, http.StatusUnauthorized},
		{"/api/v1/patients", true, http.StatusOK},
		{"/api/v1/me/invitations", false, http.StatusUnauthorized},
		{"/api/v1/doctors", true, http.StatusOK},
		{"/api/v1/appointments/x", true, http.StatusOK},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, tt.path, nil)
		if tt.bearer {
			req.Header.Set("Authorization", "Bearer token")
		}
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, tt.want, w.Code, tt.path)
		assert.NotEmpty(t, w.Header().Get(middleware.HeaderXRequestID), tt.path)
	}
}
