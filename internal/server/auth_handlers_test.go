package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"ripple/internal/config"
	"ripple/internal/models"
	"ripple/internal/service"
)

// MockUserRepository is a mock of the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateRefreshToken(ctx context.Context, id uint, token string) error {
	args := m.Called(ctx, id, token)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id uint, hash string) error {
	args := m.Called(ctx, id, hash)
	return args.Error(0)
}

func testConfig() *config.Config {
	return &config.Config{
		Port:               "8080",
		Env:                "test",
		JWTSecret:          strings.Repeat("a", 32),
		RefreshTokenSecret: strings.Repeat("b", 32),
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 7 * 24 * time.Hour,
	}
}

func newAuthTestServer(repo *MockUserRepository) (*Server, *fiber.App) {
	cfg := testConfig()
	s := &Server{config: cfg, userRepo: repo}
	s.authService = service.NewAuthService(repo, cfg)

	app := fiber.New()
	app.Post("/signup", s.Signup)
	app.Post("/login", s.Login)
	app.Post("/refreshToken", s.RefreshToken)
	return s, app
}

func multipartBody(t *testing.T, fields map[string]string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func cookieNames(resp *http.Response) []string {
	var names []string
	for _, c := range resp.Cookies() {
		if c.Value != "" {
			names = append(names, c.Name)
		}
	}
	return names
}

func TestSignup(t *testing.T) {
	t.Run("success sets both cookies and hides the password", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("GetByEmail", mock.Anything, "alice@example.com").Return(nil, nil)
		repo.On("GetByUsername", mock.Anything, "alice").Return(nil, nil)
		repo.On("Create", mock.Anything, mock.Anything).Return(nil)
		repo.On("UpdateRefreshToken", mock.Anything, mock.Anything, mock.Anything).Return(nil)

		_, app := newAuthTestServer(repo)
		body, contentType := multipartBody(t, map[string]string{
			"username": "alice",
			"email":    "alice@example.com",
			"password": "secret123",
		})
		req := httptest.NewRequest(http.MethodPost, "/signup", body)
		req.Header.Set("Content-Type", contentType)

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var envelope struct {
			Success bool           `json:"success"`
			Message string         `json:"message"`
			Data    map[string]any `json:"data"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
		assert.True(t, envelope.Success)
		assert.Equal(t, "alice", envelope.Data["username"])
		assert.NotContains(t, envelope.Data, "password")
		assert.NotContains(t, envelope.Data, "refreshToken")

		assert.ElementsMatch(t, []string{"accessToken", "refreshToken"}, cookieNames(resp))
		repo.AssertExpectations(t)
	})

	t.Run("duplicate email is a conflict", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("GetByEmail", mock.Anything, "taken@example.com").Return(&models.User{ID: 1}, nil)

		_, app := newAuthTestServer(repo)
		body, contentType := multipartBody(t, map[string]string{
			"username": "alice",
			"email":    "taken@example.com",
			"password": "secret123",
		})
		req := httptest.NewRequest(http.MethodPost, "/signup", body)
		req.Header.Set("Content-Type", contentType)

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Empty(t, cookieNames(resp))
	})

	t.Run("short password is rejected", func(t *testing.T) {
		repo := new(MockUserRepository)
		_, app := newAuthTestServer(repo)
		body, contentType := multipartBody(t, map[string]string{
			"username": "alice",
			"email":    "alice@example.com",
			"password": "short",
		})
		req := httptest.NewRequest(http.MethodPost, "/signup", body)
		req.Header.Set("Content-Type", contentType)

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var envelope models.ErrorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
		assert.False(t, envelope.Success)
		assert.NotNil(t, envelope.Errors)
	})
}

func TestLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	stored := &models.User{ID: 1, Username: "alice", Email: "alice@example.com", Password: string(hash)}

	t.Run("valid credentials set cookies", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("GetByEmail", mock.Anything, "alice@example.com").Return(stored, nil)
		repo.On("UpdateRefreshToken", mock.Anything, uint(1), mock.Anything).Return(nil)

		_, app := newAuthTestServer(repo)
		body, _ := json.Marshal(map[string]string{"email": "alice@example.com", "password": "secret123"})
		req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.ElementsMatch(t, []string{"accessToken", "refreshToken"}, cookieNames(resp))
	})

	t.Run("wrong password is unauthorized without cookies", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("GetByEmail", mock.Anything, "alice@example.com").Return(stored, nil)

		_, app := newAuthTestServer(repo)
		body, _ := json.Marshal(map[string]string{"email": "alice@example.com", "password": "wrong"})
		req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Empty(t, cookieNames(resp))
	})

	t.Run("unknown email is unauthorized", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("GetByEmail", mock.Anything, "nobody@example.com").Return(nil, nil)

		_, app := newAuthTestServer(repo)
		body, _ := json.Marshal(map[string]string{"email": "nobody@example.com", "password": "secret123"})
		req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestRefreshToken_MissingToken(t *testing.T) {
	repo := new(MockUserRepository)
	_, app := newAuthTestServer(repo)

	req := httptest.NewRequest(http.MethodPost, "/refreshToken", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
