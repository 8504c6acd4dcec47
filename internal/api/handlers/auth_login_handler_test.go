package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sysdb/sysdbd/internal/auth/jwt"
	"github.com/sysdb/sysdbd/internal/auth/user"
	userservice "github.com/sysdb/sysdbd/internal/auth/user"
	usermodels "github.com/sysdb/sysdbd/internal/models/user"
	"github.com/sysdb/sysdbd/pkg/logger"
)

// fakeUserService is a hand-written stand-in for
// internal/auth/user.Service, local to this package's handler tests.
type fakeUserService struct {
	authenticate func(ctx context.Context, username, password string) (*usermodels.User, error)
	getByID      func(ctx context.Context, id string) (*usermodels.User, error)
}

func (f *fakeUserService) Authenticate(ctx context.Context, username, password string) (*usermodels.User, error) {
	if f.authenticate == nil {
		return nil, errors.New("fakeUserService: Authenticate not configured")
	}
	return f.authenticate(ctx, username, password)
}

func (f *fakeUserService) GetByID(ctx context.Context, id string) (*usermodels.User, error) {
	if f.getByID == nil {
		return nil, errors.New("fakeUserService: GetByID not configured")
	}
	return f.getByID(ctx, id)
}

func (f *fakeUserService) GetByUsername(context.Context, string) (*usermodels.User, error) {
	return nil, errors.New("fakeUserService: GetByUsername not configured")
}

func (f *fakeUserService) HasPermission(context.Context, string, string) (bool, error) {
	return false, errors.New("fakeUserService: HasPermission not configured")
}

func (f *fakeUserService) Create(context.Context, string, string, string, []string) (*usermodels.User, error) {
	return nil, errors.New("fakeUserService: Create not configured")
}

func (f *fakeUserService) Update(context.Context, string, func(*usermodels.User) error) (*usermodels.User, error) {
	return nil, errors.New("fakeUserService: Update not configured")
}

func (f *fakeUserService) Delete(context.Context, string) error {
	return errors.New("fakeUserService: Delete not configured")
}

func (f *fakeUserService) List(context.Context) ([]*usermodels.User, error) {
	return nil, errors.New("fakeUserService: List not configured")
}

func (f *fakeUserService) LoadUser(*usermodels.User) error {
	return errors.New("fakeUserService: LoadUser not configured")
}

func (f *fakeUserService) InitializeDefaultUsers(context.Context, []userservice.DefaultUserConfig) error {
	return nil
}

// fakeGenerator is a hand-written stand-in for jwt.Generator.
type fakeGenerator struct {
	generateWithExpiration func(u *usermodels.User, expiration time.Duration) (string, error)
	parse                  func(tokenString string) (*jwt.Claims, error)
}

func (f *fakeGenerator) Generate(*usermodels.User) (string, error) {
	return "", errors.New("fakeGenerator: Generate not configured")
}

func (f *fakeGenerator) GenerateWithExpiration(u *usermodels.User, expiration time.Duration) (string, error) {
	if f.generateWithExpiration == nil {
		return "", errors.New("fakeGenerator: GenerateWithExpiration not configured")
	}
	return f.generateWithExpiration(u, expiration)
}

func (f *fakeGenerator) Parse(tokenString string) (*jwt.Claims, error) {
	if f.parse == nil {
		return nil, errors.New("fakeGenerator: Parse not configured")
	}
	return f.parse(tokenString)
}

// fakeLogger is a hand-written stand-in for logger.Logger, local to
// this package's handler tests.
type fakeLogger struct{}

func (fakeLogger) Debug(string, ...logger.Field) {}
func (fakeLogger) Info(string, ...logger.Field)  {}
func (fakeLogger) Warn(string, ...logger.Field)  {}
func (fakeLogger) Error(string, ...logger.Field) {}
func (fakeLogger) Fatal(string, ...logger.Field) {}
func (f fakeLogger) WithFields(...logger.Field) logger.Logger {
	return f
}
func (f fakeLogger) WithError(error) logger.Logger { return f }
func (fakeLogger) Sync() error                     { return nil }

func TestAuthHandler_Login(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tokenExpiry := 15 * time.Minute

	validUser := &usermodels.User{
		ID:       "user123",
		Username: "testuser",
		Roles:    []string{"admin"},
		Email:    "test@example.com",
		Active:   true,
	}

	validToken := "valid.jwt.token"

	tests := []struct {
		name           string
		requestBody    map[string]interface{}
		userService    *fakeUserService
		jwtGenerator   *fakeGenerator
		expectedStatus int
		checkResponse  func(t *testing.T, response *httptest.ResponseRecorder)
	}{
		{
			name: "Valid credentials",
			requestBody: map[string]interface{}{
				"username": "testuser",
				"password": "password123",
			},
			userService: &fakeUserService{authenticate: func(_ context.Context, username, password string) (*usermodels.User, error) {
				assert.Equal(t, "testuser", username)
				assert.Equal(t, "password123", password)
				return validUser, nil
			}},
			jwtGenerator: &fakeGenerator{generateWithExpiration: func(u *usermodels.User, expiration time.Duration) (string, error) {
				assert.Equal(t, validUser, u)
				assert.Equal(t, tokenExpiry, expiration)
				return validToken, nil
			}},
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, response *httptest.ResponseRecorder) {
				var resp LoginResponse
				err := json.Unmarshal(response.Body.Bytes(), &resp)
				require.NoError(t, err)

				assert.Equal(t, validToken, resp.Token)
				assert.NotEmpty(t, resp.ExpiresAt)
				assert.Equal(t, validUser.ID, resp.User.ID)
				assert.Equal(t, validUser.Username, resp.User.Username)
			},
		},
		{
			name: "Missing username",
			requestBody: map[string]interface{}{
				"password": "password123",
			},
			userService:    &fakeUserService{},
			jwtGenerator:   &fakeGenerator{},
			expectedStatus: http.StatusBadRequest,
			checkResponse: func(t *testing.T, response *httptest.ResponseRecorder) {
				var resp ErrorResponse
				err := json.Unmarshal(response.Body.Bytes(), &resp)
				require.NoError(t, err)

				assert.Equal(t, http.StatusBadRequest, resp.Status)
				assert.Equal(t, "INVALID_INPUT", resp.Code)
			},
		},
		{
			name: "Missing password",
			requestBody: map[string]interface{}{
				"username": "testuser",
			},
			userService:    &fakeUserService{},
			jwtGenerator:   &fakeGenerator{},
			expectedStatus: http.StatusBadRequest,
			checkResponse: func(t *testing.T, response *httptest.ResponseRecorder) {
				var resp ErrorResponse
				err := json.Unmarshal(response.Body.Bytes(), &resp)
				require.NoError(t, err)

				assert.Equal(t, http.StatusBadRequest, resp.Status)
				assert.Equal(t, "INVALID_INPUT", resp.Code)
			},
		},
		{
			name: "Invalid credentials",
			requestBody: map[string]interface{}{
				"username": "testuser",
				"password": "wrongpassword",
			},
			userService: &fakeUserService{authenticate: func(context.Context, string, string) (*usermodels.User, error) {
				return nil, user.ErrInvalidCredentials
			}},
			jwtGenerator:   &fakeGenerator{},
			expectedStatus: http.StatusUnauthorized,
			checkResponse: func(t *testing.T, response *httptest.ResponseRecorder) {
				var resp ErrorResponse
				err := json.Unmarshal(response.Body.Bytes(), &resp)
				require.NoError(t, err)

				assert.Equal(t, http.StatusUnauthorized, resp.Status)
				assert.Equal(t, "UNAUTHORIZED", resp.Code)
			},
		},
		{
			name: "Inactive user",
			requestBody: map[string]interface{}{
				"username": "inactive",
				"password": "password123",
			},
			userService: &fakeUserService{authenticate: func(context.Context, string, string) (*usermodels.User, error) {
				return nil, user.ErrUserInactive
			}},
			jwtGenerator:   &fakeGenerator{},
			expectedStatus: http.StatusForbidden,
			checkResponse: func(t *testing.T, response *httptest.ResponseRecorder) {
				var resp ErrorResponse
				err := json.Unmarshal(response.Body.Bytes(), &resp)
				require.NoError(t, err)

				assert.Equal(t, http.StatusForbidden, resp.Status)
				assert.Equal(t, "FORBIDDEN", resp.Code)
			},
		},
		{
			name: "Token generation error",
			requestBody: map[string]interface{}{
				"username": "testuser",
				"password": "password123",
			},
			userService: &fakeUserService{authenticate: func(context.Context, string, string) (*usermodels.User, error) {
				return validUser, nil
			}},
			jwtGenerator: &fakeGenerator{generateWithExpiration: func(*usermodels.User, time.Duration) (string, error) {
				return "", errors.New("token generation error")
			}},
			expectedStatus: http.StatusInternalServerError,
			checkResponse: func(t *testing.T, response *httptest.ResponseRecorder) {
				var resp ErrorResponse
				err := json.Unmarshal(response.Body.Bytes(), &resp)
				require.NoError(t, err)

				assert.Equal(t, http.StatusInternalServerError, resp.Status)
				assert.Equal(t, "INTERNAL_SERVER_ERROR", resp.Code)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewAuthHandler(tt.userService, tt.jwtGenerator, fakeLogger{}, tokenExpiry)
			router := gin.New()
			router.POST("/login", handler.Login)

			body, _ := json.Marshal(tt.requestBody)
			req, _ := http.NewRequest("POST", "/login", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")

			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)

			assert.Equal(t, tt.expectedStatus, resp.Code)
			tt.checkResponse(t, resp)
		})
	}
}

func TestAuthHandler_Refresh(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tokenExpiry := 15 * time.Minute

	validToken := "valid.jwt.token"
	newToken := "new.jwt.token"
	validClaims := &jwt.Claims{
		UserID:   "user123",
		Username: "testuser",
		Roles:    []string{"admin"},
	}
	validUser := &usermodels.User{
		ID:       "user123",
		Username: "testuser",
		Roles:    []string{"admin"},
		Email:    "test@example.com",
		Active:   true,
	}

	tests := []struct {
		name           string
		requestBody    map[string]interface{}
		userService    *fakeUserService
		jwtGenerator   *fakeGenerator
		expectedStatus int
		checkResponse  func(t *testing.T, response *httptest.ResponseRecorder)
	}{
		{
			name: "Valid token refresh",
			requestBody: map[string]interface{}{
				"token": validToken,
			},
			userService: &fakeUserService{getByID: func(_ context.Context, id string) (*usermodels.User, error) {
				assert.Equal(t, validClaims.UserID, id)
				return validUser, nil
			}},
			jwtGenerator: &fakeGenerator{
				parse: func(token string) (*jwt.Claims, error) {
					assert.Equal(t, validToken, token)
					return validClaims, nil
				},
				generateWithExpiration: func(u *usermodels.User, expiration time.Duration) (string, error) {
					assert.Equal(t, validUser, u)
					assert.Equal(t, tokenExpiry, expiration)
					return newToken, nil
				},
			},
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, response *httptest.ResponseRecorder) {
				var resp LoginResponse
				err := json.Unmarshal(response.Body.Bytes(), &resp)
				require.NoError(t, err)

				assert.Equal(t, newToken, resp.Token)
				assert.NotEmpty(t, resp.ExpiresAt)
				assert.Equal(t, validUser.ID, resp.User.ID)
			},
		},
		{
			name:           "Missing token",
			requestBody:    map[string]interface{}{},
			userService:    &fakeUserService{},
			jwtGenerator:   &fakeGenerator{},
			expectedStatus: http.StatusBadRequest,
			checkResponse: func(t *testing.T, response *httptest.ResponseRecorder) {
				var resp ErrorResponse
				err := json.Unmarshal(response.Body.Bytes(), &resp)
				require.NoError(t, err)

				assert.Equal(t, http.StatusBadRequest, resp.Status)
				assert.Equal(t, "INVALID_INPUT", resp.Code)
			},
		},
		{
			name: "Invalid token",
			requestBody: map[string]interface{}{
				"token": "invalid.token",
			},
			userService: &fakeUserService{},
			jwtGenerator: &fakeGenerator{parse: func(string) (*jwt.Claims, error) {
				return nil, jwt.ErrInvalidToken
			}},
			expectedStatus: http.StatusUnauthorized,
			checkResponse: func(t *testing.T, response *httptest.ResponseRecorder) {
				var resp ErrorResponse
				err := json.Unmarshal(response.Body.Bytes(), &resp)
				require.NoError(t, err)

				assert.Equal(t, http.StatusUnauthorized, resp.Status)
				assert.Equal(t, "UNAUTHORIZED", resp.Code)
			},
		},
		{
			name: "Expired token",
			requestBody: map[string]interface{}{
				"token": "expired.token",
			},
			userService: &fakeUserService{},
			jwtGenerator: &fakeGenerator{parse: func(string) (*jwt.Claims, error) {
				return nil, jwt.ErrTokenExpired
			}},
			expectedStatus: http.StatusUnauthorized,
			checkResponse: func(t *testing.T, response *httptest.ResponseRecorder) {
				var resp ErrorResponse
				err := json.Unmarshal(response.Body.Bytes(), &resp)
				require.NoError(t, err)

				assert.Equal(t, http.StatusUnauthorized, resp.Status)
				assert.Equal(t, "UNAUTHORIZED", resp.Code)
			},
		},
		{
			name: "User not found",
			requestBody: map[string]interface{}{
				"token": validToken,
			},
			userService: &fakeUserService{getByID: func(context.Context, string) (*usermodels.User, error) {
				return nil, user.ErrUserNotFound
			}},
			jwtGenerator: &fakeGenerator{parse: func(string) (*jwt.Claims, error) {
				return validClaims, nil
			}},
			expectedStatus: http.StatusInternalServerError,
			checkResponse: func(t *testing.T, response *httptest.ResponseRecorder) {
				var resp ErrorResponse
				err := json.Unmarshal(response.Body.Bytes(), &resp)
				require.NoError(t, err)

				assert.Equal(t, http.StatusInternalServerError, resp.Status)
			},
		},
		{
			name: "Token generation error",
			requestBody: map[string]interface{}{
				"token": validToken,
			},
			userService: &fakeUserService{getByID: func(context.Context, string) (*usermodels.User, error) {
				return validUser, nil
			}},
			jwtGenerator: &fakeGenerator{
				parse: func(string) (*jwt.Claims, error) { return validClaims, nil },
				generateWithExpiration: func(*usermodels.User, time.Duration) (string, error) {
					return "", errors.New("token generation error")
				},
			},
			expectedStatus: http.StatusInternalServerError,
			checkResponse: func(t *testing.T, response *httptest.ResponseRecorder) {
				var resp ErrorResponse
				err := json.Unmarshal(response.Body.Bytes(), &resp)
				require.NoError(t, err)

				assert.Equal(t, http.StatusInternalServerError, resp.Status)
				assert.Equal(t, "INTERNAL_SERVER_ERROR", resp.Code)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewAuthHandler(tt.userService, tt.jwtGenerator, fakeLogger{}, tokenExpiry)
			router := gin.New()
			router.POST("/refresh", handler.Refresh)

			body, _ := json.Marshal(tt.requestBody)
			req, _ := http.NewRequest("POST", "/refresh", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")

			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)

			assert.Equal(t, tt.expectedStatus, resp.Code)
			tt.checkResponse(t, resp)
		})
	}
}
