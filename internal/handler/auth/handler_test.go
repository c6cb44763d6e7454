package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/careconnect-api/internal/middleware"
	"github.com/jwalitptl/careconnect-api/internal/model"
	"github.com/jwalitptl/careconnect-api/pkg/errors"
)

type stubAuth struct {
	registerErr error
	loginErr    error
}

func (s stubAuth) Register(_ context.Context, req *model.RegisterRequest) (*model.TokenResponse, error) {
	if s.registerErr != nil {
		return nil, s.registerErr
	}
	return &model.TokenResponse{AccessToken: "tok", User: &model.User{Email: req.Email}}, nil
}

func (s stubAuth) Login(context.Context, *model.LoginRequest) (*model.TokenResponse, error) {
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return &model.TokenResponse{AccessToken: "tok"}, nil
}

func do(svc Service, path, body string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	middleware.UseJSONFieldNames()
	r := gin.New()
	NewHandler(svc).RegisterRoutes(&r.RouterGroup)

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegister(t *testing.T) {
	body := `{"email":"a@example.com","password":"longenough","name":"Alice"}`

	w := do(stubAuth{}, "/auth/register", body)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"access_token":"tok"`)

	w = do(stubAuth{registerErr: errors.Conflict("email already registered", nil)}, "/auth/register", body)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(stubAuth{}, "/auth/register", `{"email":"a@example.com","password":"short","name":"Alice"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "password must be at least 8")
}

func TestLogin_InvalidCredentials(t *testing.T) {
	w := do(stubAuth{loginErr: errors.Unauthorized(nil)}, "/auth/login", `{"email":"a@example.com","password":"wrongpassword"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"UNAUTHORIZED"`)
}
