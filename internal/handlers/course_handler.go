package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/crypticandwired/StudentFeedback/internal/services"
	"github.com/crypticandwired/StudentFeedback/internal/utils"
	"github.com/crypticandwired/StudentFeedback/internal/validator"
)

type CourseHandler struct {
	BaseHandler
	courseService services.CourseService
}

func NewCourseHandler(courseService services.CourseService, logger utils.Logger) *CourseHandler {
	return &CourseHandler{
		BaseHandler:   NewBaseHandler(logger),
		courseService: courseService,
	}
}

// ===== STUDENT ENDPOINTS =====

// ListActiveCourses lists active courses for the authenticated student
// @Summary List active courses
// @Description Active courses with a flag marking the ones the student already rated
// @Tags courses
// @Produce json
// @Success 200 {object} SuccessResponse{data=[]services.StudentCourseItem}
// @Router /courses [get]
func (h *CourseHandler) ListActiveCourses(c *gin.Context) {
	studentID, ok := GetUserIDFromContext(c)
	if !ok {
		return
	}

	courses, err := h.courseService.ListActiveCourses(c.Request.Context(), studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Data:    courses,
	})
}

// ===== ADMIN ENDPOINTS =====

// CreateCourse creates a new course
// @Summary Create course
// @Tags admin
// @Accept json
// @Produce json
// @Param course body validator.CourseCreateRequest true "Course data"
// @Success 201 {object} SuccessResponse{data=services.CourseResponse}
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /admin/courses [post]
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var req validator.CourseCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Creating course", "code", req.Code)

	course, err := h.courseService.CreateCourse(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{
		Success: true,
		Message: "Course created successfully",
		Data:    course,
	})
}

// GetCourse retrieves a course by ID
// @Summary Get course
// @Tags admin
// @Produce json
// @Param id path uint true "Course ID"
// @Success 200 {object} SuccessResponse{data=services.CourseResponse}
// @Failure 404 {object} ErrorResponse
// @Router /admin/courses/{id} [get]
func (h *CourseHandler) GetCourse(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	course, err := h.courseService.GetCourse(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Data:    course,
	})
}

// ListCourses lists all courses with rating stats
// @Summary List courses
// @Tags admin
// @Produce json
// @Success 200 {object} SuccessResponse{data=[]services.CourseWithRating}
// @Router /admin/courses [get]
func (h *CourseHandler) ListCourses(c *gin.Context) {
	courses, err := h.courseService.ListCourses(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Data:    courses,
	})
}

// UpdateCourse updates a course
// @Summary Update course
// @Tags admin
// @Accept json
// @Produce json
// @Param id path uint true "Course ID"
// @Param course body validator.CourseUpdateRequest true "Course fields"
// @Success 200 {object} SuccessResponse{data=services.CourseResponse}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /admin/courses/{id} [put]
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req validator.CourseUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Updating course", "course_id", id)

	course, err := h.courseService.UpdateCourse(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Course updated successfully",
		Data:    course,
	})
}

// DeleteCourse deletes a course without feedback
// @Summary Delete course
// @Tags admin
// @Produce json
// @Param id path uint true "Course ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /admin/courses/{id} [delete]
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting course", "course_id", id)

	if err := h.courseService.DeleteCourse(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Course deleted successfully",
	})
}
