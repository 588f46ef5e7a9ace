package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"taskboard/internal/apperr"
	"taskboard/internal/auth"
	"taskboard/internal/model"
)

// UserStore is the part of the repository the account endpoints need.
type UserStore interface {
	FindUserByUsername(ctx context.Context, username string) (*model.User, error)
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
	UpdateProfile(ctx context.Context, user *model.User) error
}

type UserHandler struct {
	users  UserStore
	tokens *auth.TokenManager
	log    logrus.FieldLogger
}

func NewUserHandler(users UserStore, tokens *auth.TokenManager, log logrus.FieldLogger) *UserHandler {
	return &UserHandler{users: users, tokens: tokens, log: log}
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=150"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// ProfileResponse carries the editable profile next to the read-only account fields.
type ProfileResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
}

// ProfileRequest is a partial update; absent fields stay as they are.
type ProfileRequest struct {
	FullName *string `json:"full_name" binding:"omitempty,max=255"`
	Phone    *string `json:"phone" binding:"omitempty,max=32"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

func userResponse(u *model.User) UserResponse {
	return UserResponse{ID: u.ID.String(), Username: u.Username, Email: u.Email}
}

// Register godoc
// @Summary  Create an account
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body body RegisterRequest true "account"
// @Success  201 {object} AuthResponse
// @Failure  409 {object} ErrorResponse
// @Router   /register [post]
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid input")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(req.Email)

	existing, err := h.users.FindUserByUsername(c.Request.Context(), req.Username)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "User already exists"})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	user := &model.User{
		ID:             uuid.New(),
		Username:       req.Username,
		Email:          req.Email,
		HashedPassword: hash,
	}
	if err := h.users.CreateUser(c.Request.Context(), user); err != nil {
		if errors.Is(err, apperr.ErrValidation) {
			c.JSON(http.StatusConflict, gin.H{"error": "User already exists"})
			return
		}
		respondError(c, h.log, err)
		return
	}

	h.issue(c, http.StatusCreated, user)
}

// Login godoc
// @Summary  Exchange credentials for an access token
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body body LoginRequest true "credentials"
// @Success  200 {object} AuthResponse
// @Failure  401 {object} ErrorResponse
// @Router   /login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid input")
		return
	}

	user, err := h.users.FindUserByUsername(c.Request.Context(), strings.TrimSpace(req.Username))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if user == nil || !auth.CheckPassword(user.HashedPassword, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	h.issue(c, http.StatusOK, user)
}

func (h *UserHandler) issue(c *gin.Context, status int, user *model.User) {
	token, err := h.tokens.Generate(user.ID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(status, AuthResponse{Token: token, User: userResponse(user)})
}

// GetProfile godoc
// @Summary   Current user's profile
// @Tags      profile
// @Security  BearerAuth
// @Produce   json
// @Success   200 {object} ProfileResponse
// @Router    /profile [get]
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	user, err := h.users.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, profileResponse(user))
}

// UpdateProfile godoc
// @Summary   Edit the current user's profile
// @Tags      profile
// @Security  BearerAuth
// @Accept    json
// @Produce   json
// @Param     body body ProfileRequest true "fields to change"
// @Success   200 {object} ProfileResponse
// @Failure   400 {object} ErrorResponse
// @Router    /profile [put]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	var req ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid input")
		return
	}

	user, err := h.users.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if req.FullName != nil {
		user.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Phone != nil {
		user.Phone = strings.TrimSpace(*req.Phone)
	}
	if err := h.users.UpdateProfile(c.Request.Context(), user); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, profileResponse(user))
}

func profileResponse(u *model.User) ProfileResponse {
	return ProfileResponse{Username: u.Username, Email: u.Email, FullName: u.FullName, Phone: u.Phone}
}
