package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"jobby-backend/config"
	"jobby-backend/internal/domain"
	"jobby-backend/pkg/apperror"
	"jobby-backend/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type MockAuthUsecase struct {
	mock.Mock
}

func (m *MockAuthUsecase) GetCurrentUser(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func init() {
	gin.SetMode(gin.TestMode)
}

func signHS256(t *testing.T, sub string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	s, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func ok(c *gin.Context) {
	userID, _ := c.Request.Context().Value(domain.KeyUserID).(string)
	c.String(http.StatusOK, userID)
}

func TestAuthMiddleware(t *testing.T) {
	cfg := &config.Config{JWTSecret: testSecret}
	authUC := new(MockAuthUsecase)
	authUC.On("GetCurrentUser", mock.Anything, "user-1").Return(&domain.User{ID: "user-1"}, nil)

	r := gin.New()
	r.GET("/me", AuthMiddleware(nil, cfg, authUC), RequireRole(domain.RoleCandidate), ok)

	t.Run("no token", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("bad token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer not.a.jwt")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("bearer token binds the request context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+signHS256(t, "user-1"))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "user-1", w.Body.String())
	})

	t.Run("cookie token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.AddCookie(&http.Cookie{Name: "auth_token", Value: signHS256(t, "user-1")})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRequireRole_Employer(t *testing.T) {
	cfg := &config.Config{JWTSecret: testSecret}
	authUC := new(MockAuthUsecase)
	authUC.On("GetCurrentUser", mock.Anything, "emp-1").Return(&domain.User{ID: "emp-1", Role: domain.RoleEmployer}, nil)

	r := gin.New()
	r.GET("/me", AuthMiddleware(nil, cfg, authUC), RequireRole(domain.RoleCandidate), ok)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+signHS256(t, "emp-1"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSessionGate(t *testing.T) {
	cfg := &config.Config{JWTSecret: testSecret}
	authUC := new(MockAuthUsecase)
	authUC.On("GetCurrentUser", mock.Anything, "user-1").Return(&domain.User{ID: "user-1", Role: domain.RoleCandidate}, nil)
	authUC.On("GetCurrentUser", mock.Anything, "emp-1").Return(&domain.User{ID: "emp-1", Role: domain.RoleEmployer}, nil)

	r := gin.New()
	r.GET("/profile", SessionGate(nil, cfg, authUC, "/sign-in", "/profile/employer"), ok)

	serve := func(token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/profile", nil)
		if token != "" {
			req.AddCookie(&http.Cookie{Name: "auth_token", Value: token})
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := serve("")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/sign-in", w.Header().Get("Location"))

	w = serve(signHS256(t, "emp-1"))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/profile/employer", w.Header().Get("Location"))

	w = serve(signHS256(t, "user-1"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-1", w.Body.String())
}

func TestCSRFMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CSRFMiddleware(false))
	r.GET("/form", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(CSRFContextKey)) })
	r.POST("/form", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/form", nil))
	require.Equal(t, http.StatusOK, w.Code)
	token := w.Body.String()
	require.Len(t, token, 64)

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == CSRFTokenCookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	post := func(field string, withCookie bool) int {
		req := httptest.NewRequest(http.MethodPost, "/form", strings.NewReader(url.Values{CSRFTokenFieldName: {field}}.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		if withCookie {
			req.AddCookie(cookie)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusNoContent, post(token, true))
	assert.Equal(t, http.StatusForbidden, post("wrong", true))
	assert.Equal(t, http.StatusForbidden, post(token, false))
}

func TestBodyLimit(t *testing.T) {
	r := gin.New()
	r.POST("/in", BodyLimit(8), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/in", strings.NewReader("0123456789")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/in", strings.NewReader("0123")))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/invalid", func(c *gin.Context) {
		fe := validation.FieldErrors{"email": "Invalid email"}
		c.Error(apperror.Validation(fe, fe))
	})
	r.GET("/boom", func(c *gin.Context) {
		c.Error(assert.AnError)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/invalid", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Validation failed","error":{"email":"Invalid email"}}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), assert.AnError.Error())
}

func TestRateLimiter_MemoryFallback(t *testing.T) {
	limiter := NewRateLimiter(nil, nil)
	r := gin.New()
	r.POST("/w", limiter.Handler(RateLimitConfig{Scope: "test", Limit: 2, Window: time.Minute}), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/w", nil))
		codes = append(codes, w.Code)
		if i == 2 {
			assert.NotEmpty(t, w.Header().Get("Retry-After"))
		}
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) {
		id, _ := c.Request.Context().Value(domain.KeyRequestID).(string)
		c.String(http.StatusOK, id)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc")
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Body.String())
	assert.Equal(t, "abc", w.Header().Get(RequestIDHeader))
}
