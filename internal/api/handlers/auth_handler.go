package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/villageofwisdom/genius-backend/internal/api/middleware"
	"github.com/villageofwisdom/genius-backend/internal/services"
	"github.com/villageofwisdom/genius-backend/internal/utils"
)

type AuthHandler struct {
	users     services.UserService
	jwtSecret []byte
}

func NewAuthHandler(users services.UserService, jwtSecret []byte) *AuthHandler {
	return &AuthHandler{users: users, jwtSecret: jwtSecret}
}

type SignupRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  any    `json:"user"`
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "AuthHandler.Signup", "invalid request body", err))
		return
	}

	u, err := h.users.Register(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		writeError(c, err)
		return
	}

	token, err := middleware.IssueToken(h.jwtSecret, u.ID)
	if err != nil {
		writeError(c, utils.E(utils.CodeInternal, "AuthHandler.Signup", "failed to issue token", err))
		return
	}

	c.JSON(http.StatusCreated, AuthResponse{Token: token, User: u})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "AuthHandler.Login", "invalid request body", err))
		return
	}

	u, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	token, err := middleware.IssueToken(h.jwtSecret, u.ID)
	if err != nil {
		writeError(c, utils.E(utils.CodeInternal, "AuthHandler.Login", "failed to issue token", err))
		return
	}

	c.JSON(http.StatusOK, AuthResponse{Token: token, User: u})
}
