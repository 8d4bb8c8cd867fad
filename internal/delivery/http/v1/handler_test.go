package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"jobby-backend/internal/delivery/http/middleware"
	"jobby-backend/internal/domain"
	"jobby-backend/pkg/apperror"
	"jobby-backend/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCandidateUsecase struct {
	mock.Mock
}

func (m *MockCandidateUsecase) GetProfile(ctx context.Context, userID string) (*domain.CandidateProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CandidateProfile), args.Error(1)
}

func (m *MockCandidateUsecase) UpdateProfile(ctx context.Context, req *domain.ProfileUpdate) (*domain.CandidateProfile, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CandidateProfile), args.Error(1)
}

func (m *MockCandidateUsecase) UpdateProfileImage(ctx context.Context, req *domain.ImageUpdate) (*domain.CandidateProfile, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CandidateProfile), args.Error(1)
}

func (m *MockCandidateUsecase) UpdateContact(ctx context.Context, req *domain.ContactUpdate) (*domain.CandidateProfile, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CandidateProfile), args.Error(1)
}

type MockUploadUsecase struct {
	mock.Mock
}

func (m *MockUploadUsecase) UploadProfileImage(ctx context.Context, userID, filename string, data []byte) (*domain.ImageUploadResult, error) {
	args := m.Called(ctx, userID, filename, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ImageUploadResult), args.Error(1)
}

func setupRouter(candidateUC domain.CandidateUsecase, uploadUC domain.UploadUsecase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	r.Use(func(c *gin.Context) {
		c.Set(string(domain.KeyUserID), "user-1")
		c.Next()
	})
	g := r.Group("/v1")
	NewCandidateHandler(g, candidateUC, func(c *gin.Context) { c.Next() })
	NewUploadHandler(g, uploadUC, 1<<10)
	return r
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestGetProfile(t *testing.T) {
	uc := new(MockCandidateUsecase)
	uc.On("GetProfile", mock.Anything, "user-1").Return(&domain.CandidateProfile{ID: 7, FullName: "Ada", Skills: []string{}}, nil)
	r := setupRouter(uc, new(MockUploadUsecase))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/candidates/me/profile", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	data := body["data"].(map[string]any)
	assert.Equal(t, float64(7), data["id"])
	assert.Equal(t, []any{}, data["skills"])
}

func TestGetProfile_None(t *testing.T) {
	uc := new(MockCandidateUsecase)
	uc.On("GetProfile", mock.Anything, "user-1").Return(nil, nil)
	r := setupRouter(uc, new(MockUploadUsecase))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/candidates/me/profile", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	_, hasData := body["data"]
	assert.False(t, hasData)
}

func TestUpdateProfile_ValidationError(t *testing.T) {
	fe := validation.FieldErrors{"email": "Invalid email"}
	uc := new(MockCandidateUsecase)
	uc.On("UpdateProfile", mock.Anything, mock.Anything).Return(nil, apperror.Validation(fe, fe))
	r := setupRouter(uc, new(MockUploadUsecase))

	req := httptest.NewRequest(http.MethodPut, "/v1/candidates/me/profile", strings.NewReader(`{"id":7,"fullName":"Ada","email":"nope"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, map[string]any{"email": "Invalid email"}, body["error"])
}

func TestUpdateProfile_BadJSON(t *testing.T) {
	uc := new(MockCandidateUsecase)
	r := setupRouter(uc, new(MockUploadUsecase))

	req := httptest.NewRequest(http.MethodPut, "/v1/candidates/me/profile", strings.NewReader(`{`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	uc.AssertNotCalled(t, "UpdateProfile", mock.Anything, mock.Anything)
}

func TestUpdateProfileImage_Null(t *testing.T) {
	uc := new(MockCandidateUsecase)
	uc.On("UpdateProfileImage", mock.Anything, &domain.ImageUpdate{ID: 7}).Return(&domain.CandidateProfile{ID: 7}, nil)
	r := setupRouter(uc, new(MockUploadUsecase))

	req := httptest.NewRequest(http.MethodPut, "/v1/candidates/me/profile/image", strings.NewReader(`{"id":7,"imageUrl":null}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	uc.AssertExpectations(t)
}

func TestUpdateContact_Forbidden(t *testing.T) {
	uc := new(MockCandidateUsecase)
	uc.On("UpdateContact", mock.Anything, mock.Anything).Return(nil, apperror.Forbidden("You can only edit your own profile"))
	r := setupRouter(uc, new(MockUploadUsecase))

	req := httptest.NewRequest(http.MethodPut, "/v1/candidates/me/contact", strings.NewReader(`{"id":99,"city":"Pune"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func multipartBody(t *testing.T, field, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, _ = part.Write(data)
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func TestUploadImage(t *testing.T) {
	up := new(MockUploadUsecase)
	up.On("UploadProfileImage", mock.Anything, "user-1", "me.png", []byte("img")).
		Return(&domain.ImageUploadResult{SecureURL: "https://cdn.example.com/x.jpg"}, nil)
	r := setupRouter(new(MockCandidateUsecase), up)

	body, ct := multipartBody(t, "file", "me.png", []byte("img"))
	req := httptest.NewRequest(http.MethodPost, "/v1/uploads/images", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]any)
	assert.Equal(t, "https://cdn.example.com/x.jpg", data["secure_url"])
}

func TestUploadImage_MissingFile(t *testing.T) {
	r := setupRouter(new(MockCandidateUsecase), new(MockUploadUsecase))

	body, ct := multipartBody(t, "other", "me.png", []byte("img"))
	req := httptest.NewRequest(http.MethodPost, "/v1/uploads/images", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadImage_TooLarge(t *testing.T) {
	up := new(MockUploadUsecase)
	r := setupRouter(new(MockCandidateUsecase), up)

	body, ct := multipartBody(t, "file", "big.png", bytes.Repeat([]byte("x"), 2<<10))
	req := httptest.NewRequest(http.MethodPost, "/v1/uploads/images", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	up.AssertNotCalled(t, "UploadProfileImage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
