package doctor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/careconnect-api/internal/middleware"
	"github.com/jwalitptl/careconnect-api/internal/model"
	"github.com/jwalitptl/careconnect-api/pkg/errors"
)

type stubDoctors struct {
	created *model.CreateDoctorRequest
}

func (s *stubDoctors) CreateDoctor(_ context.Context, userID uuid.UUID, req *model.CreateDoctorRequest) (*model.Doctor, error) {
	s.created = req
	return &model.Doctor{Base: model.Base{ID: uuid.New()}, Name: req.Name, CreatedBy: userID}, nil
}

func (s *stubDoctors) GetDoctor(context.Context, uuid.UUID) (*model.Doctor, error) {
	return nil, errors.NotFound("doctor", nil)
}

func (s *stubDoctors) ListDoctors(context.Context) ([]*model.Doctor, error) {
	return []*model.Doctor{{Name: "Dr. Grey"}}, nil
}

func newRouter(svc *stubDoctors) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	g := r.Group("")
	g.Use(func(c *gin.Context) { c.Set(middleware.ContextUserID, uuid.New()) })
	NewHandler(svc).RegisterRoutes(g)
	return r
}

func TestDoctorRoutes(t *testing.T) {
	svc := &stubDoctors{}
	r := newRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/doctors", strings.NewReader(`{"name":"Dr. Grey","specialty":"Surgery"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Surgery", svc.created.Specialty)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/doctors", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Dr. Grey")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/doctors/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
