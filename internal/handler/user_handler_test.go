package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"taskboard/internal/auth"
	"taskboard/internal/handler"
	"taskboard/internal/middleware"
	"taskboard/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) CreateUser(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserStore) FindUserByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	user := args.Get(0)
	if user == nil {
		return nil, args.Error(1)
	}
	return user.(*model.User), args.Error(1)
}

func (m *MockUserStore) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	user := args.Get(0)
	if user == nil {
		return nil, args.Error(1)
	}
	return user.(*model.User), args.Error(1)
}

func (m *MockUserStore) UpdateProfile(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func setupUserTest() (*gin.Engine, *MockUserStore, *auth.TokenManager) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	mockRepo := new(MockUserStore)
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	logger, _ := test.NewNullLogger()
	userHandler := handler.NewUserHandler(mockRepo, tokens, logger)

	r.POST("/register", userHandler.Register)
	r.POST("/login", userHandler.Login)
	return r, mockRepo, tokens
}

func postJSON(router http.Handler, path string, body any) *httptest.ResponseRecorder {
	jsonBody, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestRegister_Success(t *testing.T) {
	// Arrange
	router, mockRepo, tokens := setupUserTest()
	mockRepo.On("FindUserByUsername", mock.Anything, "alice").Return(nil, nil)
	mockRepo.On("CreateUser", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)

	// Act
	resp := postJSON(router, "/register", handler.RegisterRequest{
		Username: "alice",
		Email:    "Alice@Example.com",
		Password: "password123",
	})

	// Assert
	assert.Equal(t, http.StatusCreated, resp.Code)

	var response handler.AuthResponse
	assert.NoError(t, json.Unmarshal(resp.Body.Bytes(), &response))
	assert.Equal(t, "alice", response.User.Username)
	assert.Equal(t, "alice@example.com", response.User.Email)

	userID, err := tokens.Parse(response.Token)
	assert.NoError(t, err)
	assert.Equal(t, response.User.ID, userID.String())

	mockRepo.AssertExpectations(t)
}

func TestRegister_UserAlreadyExists(t *testing.T) {
	// Arrange
	router, mockRepo, _ := setupUserTest()
	existing := &model.User{ID: uuid.New(), Username: "alice"}
	mockRepo.On("FindUserByUsername", mock.Anything, "alice").Return(existing, nil)

	// Act
	resp := postJSON(router, "/register", handler.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "password123",
	})

	// Assert
	assert.Equal(t, http.StatusConflict, resp.Code)
	assert.Contains(t, resp.Body.String(), "User already exists")
	mockRepo.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

func TestRegister_InvalidInput(t *testing.T) {
	// Arrange
	router, mockRepo, _ := setupUserTest()

	// Act
	resp := postJSON(router, "/register", map[string]string{"username": "al"})

	// Assert
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	mockRepo.AssertNotCalled(t, "FindUserByUsername", mock.Anything, mock.Anything)
}

func TestLogin_Success(t *testing.T) {
	// Arrange
	router, mockRepo, tokens := setupUserTest()
	hash, err := auth.HashPassword("password123")
	assert.NoError(t, err)
	user := &model.User{ID: uuid.New(), Username: "alice", Email: "alice@example.com", HashedPassword: hash}
	mockRepo.On("FindUserByUsername", mock.Anything, "alice").Return(user, nil)

	// Act
	resp := postJSON(router, "/login", handler.LoginRequest{Username: "alice", Password: "password123"})

	// Assert
	assert.Equal(t, http.StatusOK, resp.Code)
	var response handler.AuthResponse
	assert.NoError(t, json.Unmarshal(resp.Body.Bytes(), &response))
	userID, err := tokens.Parse(response.Token)
	assert.NoError(t, err)
	assert.Equal(t, user.ID, userID)
}

func TestLogin_WrongPassword(t *testing.T) {
	// Arrange
	router, mockRepo, _ := setupUserTest()
	hash, _ := auth.HashPassword("password123")
	user := &model.User{ID: uuid.New(), Username: "alice", HashedPassword: hash}
	mockRepo.On("FindUserByUsername", mock.Anything, "alice").Return(user, nil)

	// Act
	resp := postJSON(router, "/login", handler.LoginRequest{Username: "alice", Password: "wrong"})

	// Assert
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Contains(t, resp.Body.String(), "Invalid credentials")
}

func TestLogin_UnknownUser(t *testing.T) {
	// Arrange
	router, mockRepo, _ := setupUserTest()
	mockRepo.On("FindUserByUsername", mock.Anything, "ghost").Return(nil, nil)

	// Act
	resp := postJSON(router, "/login", handler.LoginRequest{Username: "ghost", Password: "whatever"})

	// Assert
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestLogin_StoreFailureIsInternal(t *testing.T) {
	// Arrange
	router, mockRepo, _ := setupUserTest()
	mockRepo.On("FindUserByUsername", mock.Anything, "alice").Return(nil, errors.New("connection refused"))

	// Act
	resp := postJSON(router, "/login", handler.LoginRequest{Username: "alice", Password: "password123"})

	// Assert
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Contains(t, resp.Body.String(), `"kind":"internal"`)
	assert.NotContains(t, resp.Body.String(), "connection refused")
}

func setupProfileTest(userID uuid.UUID) (*gin.Engine, *MockUserStore) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	mockRepo := new(MockUserStore)
	logger, _ := test.NewNullLogger()
	userHandler := handler.NewUserHandler(mockRepo, auth.NewTokenManager("test-secret", time.Hour), logger)

	authed := r.Group("/", func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Next()
	})
	authed.GET("/profile", userHandler.GetProfile)
	authed.PUT("/profile", userHandler.UpdateProfile)
	return r, mockRepo
}

func TestGetProfile_Success(t *testing.T) {
	// Arrange
	id := uuid.New()
	router, mockRepo := setupProfileTest(id)
	mockRepo.On("GetUser", mock.Anything, id).Return(&model.User{
		ID: id, Username: "alice", Email: "alice@example.com", FullName: "Alice Liddell",
	}, nil)

	// Act
	req, _ := http.NewRequest(http.MethodGet, "/profile", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusOK, resp.Code)
	var response handler.ProfileResponse
	assert.NoError(t, json.Unmarshal(resp.Body.Bytes(), &response))
	assert.Equal(t, "alice", response.Username)
	assert.Equal(t, "Alice Liddell", response.FullName)
	assert.Empty(t, response.Phone)
	mockRepo.AssertExpectations(t)
}

func TestUpdateProfile_ChangesOnlyGivenFields(t *testing.T) {
	// Arrange
	id := uuid.New()
	router, mockRepo := setupProfileTest(id)
	mockRepo.On("GetUser", mock.Anything, id).Return(&model.User{
		ID: id, Username: "alice", FullName: "Alice Liddell", Phone: "555-0100",
	}, nil)
	mockRepo.On("UpdateProfile", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return u.ID == id && u.FullName == "Alice Liddell" && u.Phone == "555-0199"
	})).Return(nil)

	// Act
	jsonBody, _ := json.Marshal(map[string]string{"phone": " 555-0199 "})
	req, _ := http.NewRequest(http.MethodPut, "/profile", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusOK, resp.Code)
	var response handler.ProfileResponse
	assert.NoError(t, json.Unmarshal(resp.Body.Bytes(), &response))
	assert.Equal(t, "Alice Liddell", response.FullName)
	assert.Equal(t, "555-0199", response.Phone)
	mockRepo.AssertExpectations(t)
}

func TestUpdateProfile_RejectsOverlongPhone(t *testing.T) {
	// Arrange
	id := uuid.New()
	router, mockRepo := setupProfileTest(id)

	// Act
	jsonBody, _ := json.Marshal(map[string]string{"phone": "0123456789012345678901234567890123456789"})
	req, _ := http.NewRequest(http.MethodPut, "/profile", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "Invalid input")
	mockRepo.AssertNotCalled(t, "UpdateProfile", mock.Anything, mock.Anything)
}
