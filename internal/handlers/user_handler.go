package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/crypticandwired/StudentFeedback/internal/services"
	"github.com/crypticandwired/StudentFeedback/internal/utils"
	"github.com/crypticandwired/StudentFeedback/internal/validator"
)

type UserHandler struct {
	BaseHandler
	userService services.UserService
}

func NewUserHandler(userService services.UserService, logger utils.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: NewBaseHandler(logger),
		userService: userService,
	}
}

// ===== PROFILE ENDPOINTS =====

// GetProfile returns the authenticated user's profile
// @Summary Get profile
// @Tags profile
// @Produce json
// @Success 200 {object} SuccessResponse{data=services.UserProfile}
// @Failure 401 {object} ErrorResponse
// @Router /profile [get]
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := GetUserIDFromContext(c)
	if !ok {
		return
	}

	profile, err := h.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Data:    profile,
	})
}

// UpdateProfile updates the authenticated user's profile
// @Summary Update profile
// @Tags profile
// @Accept json
// @Produce json
// @Param profile body validator.UpdateProfileRequest true "Profile fields"
// @Success 200 {object} SuccessResponse{data=services.UserProfile}
// @Failure 400 {object} ErrorResponse
// @Router /profile [put]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req validator.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Updating profile", "user_id", userID)

	profile, err := h.userService.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Profile updated successfully",
		Data:    profile,
	})
}

// ChangePassword changes the authenticated user's password
// @Summary Change password
// @Tags profile
// @Accept json
// @Produce json
// @Param passwords body validator.ChangePasswordRequest true "Current and new password"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /profile/password [put]
func (h *UserHandler) ChangePassword(c *gin.Context) {
	userID, ok := GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req validator.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	if err := h.userService.ChangePassword(c.Request.Context(), userID, &req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Password changed successfully",
	})
}

// ===== ADMIN ENDPOINTS =====

// ListStudents lists students with feedback counts
// @Summary List students
// @Tags admin
// @Produce json
// @Param search query string false "Name or email substring"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} SuccessResponse{data=services.StudentListResponse}
// @Router /admin/students [get]
func (h *UserHandler) ListStudents(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	h.LogRequest(c, "Listing students", "page", page)

	resp, err := h.userService.ListStudents(c.Request.Context(), c.Query("search"), page, limit)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Data:    resp,
	})
}

// ToggleBlock flips a student's blocked flag
// @Summary Block or unblock a student
// @Tags admin
// @Produce json
// @Param id path uint true "Student ID"
// @Success 200 {object} SuccessResponse{data=services.StudentItem}
// @Failure 404 {object} ErrorResponse
// @Router /admin/students/{id}/block [put]
func (h *UserHandler) ToggleBlock(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Toggling student block", "student_id", id)

	student, err := h.userService.ToggleBlock(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	message := "Student unblocked successfully"
	if student.IsBlocked {
		message = "Student blocked successfully"
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Message: message,
		Data:    student,
	})
}

// DeleteStudent removes a student and their feedback
// @Summary Delete a student
// @Tags admin
// @Produce json
// @Param id path uint true "Student ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/students/{id} [delete]
func (h *UserHandler) DeleteStudent(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting student", "student_id", id)

	if err := h.userService.DeleteStudent(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Student and their feedback deleted successfully",
	})
}
