package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/crypticandwired/StudentFeedback/internal/services"
	"github.com/crypticandwired/StudentFeedback/internal/utils"
	"github.com/crypticandwired/StudentFeedback/internal/validator"
)

type AuthHandler struct {
	BaseHandler
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService, logger utils.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: NewBaseHandler(logger),
		authService: authService,
	}
}

// Register creates a student account
// @Summary Register a student
// @Description Creates a student account and returns a session token
// @Tags auth
// @Accept json
// @Produce json
// @Param registration body validator.RegisterRequest true "Registration data"
// @Success 201 {object} SuccessResponse{data=services.AuthResponse}
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req validator.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	resp, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{
		Success: true,
		Message: "Registration successful",
		Data:    resp,
	})
}

// Login authenticates a user
// @Summary Log in
// @Description Authenticates by email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body validator.LoginRequest true "Credentials"
// @Success 200 {object} SuccessResponse{data=services.AuthResponse}
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req validator.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Login successful",
		Data:    resp,
	})
}

// AdminLogin authenticates an admin
// @Summary Admin log in
// @Description Authenticates an admin account
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body validator.LoginRequest true "Credentials"
// @Success 200 {object} SuccessResponse{data=services.AuthResponse}
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /auth/admin/login [post]
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req validator.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	resp, err := h.authService.AdminLogin(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Login successful",
		Data:    resp,
	})
}
