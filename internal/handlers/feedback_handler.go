package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/crypticandwired/StudentFeedback/internal/services"
	"github.com/crypticandwired/StudentFeedback/internal/utils"
	"github.com/crypticandwired/StudentFeedback/internal/validator"
)

type FeedbackHandler struct {
	BaseHandler
	feedbackService services.FeedbackService
}

func NewFeedbackHandler(feedbackService services.FeedbackService, logger utils.Logger) *FeedbackHandler {
	return &FeedbackHandler{
		BaseHandler:     NewBaseHandler(logger),
		feedbackService: feedbackService,
	}
}

// ===== STUDENT ENDPOINTS =====

// CreateFeedback submits feedback for a course
// @Summary Submit feedback
// @Description One feedback per student per course
// @Tags feedback
// @Accept json
// @Produce json
// @Param feedback body validator.FeedbackCreateRequest true "Feedback data"
// @Success 201 {object} SuccessResponse{data=services.FeedbackResponse}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /feedback [post]
func (h *FeedbackHandler) CreateFeedback(c *gin.Context) {
	studentID, ok := GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req validator.FeedbackCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Submitting feedback", "course_id", req.CourseID, "rating", req.Rating)

	feedback, err := h.feedbackService.CreateFeedback(c.Request.Context(), studentID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{
		Success: true,
		Message: "Feedback submitted successfully",
		Data:    feedback,
	})
}

// ListMyFeedback lists the authenticated student's feedback
// @Summary List my feedback
// @Tags feedback
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} SuccessResponse{data=services.FeedbackListResponse}
// @Router /feedback/my [get]
func (h *FeedbackHandler) ListMyFeedback(c *gin.Context) {
	studentID, ok := GetUserIDFromContext(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	resp, err := h.feedbackService.ListMyFeedback(c.Request.Context(), studentID, page, limit)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Data:    resp,
	})
}

// UpdateFeedback edits the student's own feedback
// @Summary Update feedback
// @Tags feedback
// @Accept json
// @Produce json
// @Param id path uint true "Feedback ID"
// @Param feedback body validator.FeedbackUpdateRequest true "Feedback fields"
// @Success 200 {object} SuccessResponse{data=services.FeedbackResponse}
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /feedback/{id} [put]
func (h *FeedbackHandler) UpdateFeedback(c *gin.Context) {
	studentID, ok := GetUserIDFromContext(c)
	if !ok {
		return
	}

	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req validator.FeedbackUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Updating feedback", "feedback_id", id)

	feedback, err := h.feedbackService.UpdateFeedback(c.Request.Context(), studentID, id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Feedback updated successfully",
		Data:    feedback,
	})
}

// DeleteFeedback removes the student's own feedback
// @Summary Delete feedback
// @Tags feedback
// @Produce json
// @Param id path uint true "Feedback ID"
// @Success 200 {object} SuccessResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /feedback/{id} [delete]
func (h *FeedbackHandler) DeleteFeedback(c *gin.Context) {
	studentID, ok := GetUserIDFromContext(c)
	if !ok {
		return
	}

	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting feedback", "feedback_id", id)

	if err := h.feedbackService.DeleteFeedback(c.Request.Context(), studentID, id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Feedback deleted successfully",
	})
}

// ===== ADMIN ENDPOINTS =====

// ListFeedback lists all feedback with filters
// @Summary List feedback
// @Tags admin
// @Produce json
// @Param course query uint false "Course ID"
// @Param student query uint false "Student ID"
// @Param rating query int false "Rating 1-5"
// @Param startDate query string false "Start date (YYYY-MM-DD)"
// @Param endDate query string false "End date (YYYY-MM-DD)"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} SuccessResponse{data=services.FeedbackListResponse}
// @Failure 400 {object} ErrorResponse
// @Router /admin/feedback [get]
func (h *FeedbackHandler) ListFeedback(c *gin.Context) {
	var query validator.FeedbackFilterQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid query parameters",
			Details: err.Error(),
		})
		return
	}

	resp, err := h.feedbackService.ListFeedback(c.Request.Context(), &query)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Data:    resp,
	})
}
