package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/crypticandwired/StudentFeedback/internal/cache"
	"github.com/crypticandwired/StudentFeedback/internal/models"
	"github.com/crypticandwired/StudentFeedback/internal/repositories"
	"github.com/crypticandwired/StudentFeedback/internal/validator"
)

// ===== RESPONSE DTOs =====

type CourseResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Code        string    `json:"code"`
	Description string    `json:"description"`
	Instructor  string    `json:"instructor"`
	Credits     int       `json:"credits"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type CourseWithRating struct {
	CourseResponse
	TotalFeedback int64    `json:"totalFeedback"`
	AverageRating *float64 `json:"averageRating"`
}

type StudentCourseItem struct {
	ID                   uint   `json:"id"`
	Name                 string `json:"name"`
	Code                 string `json:"code"`
	Description          string `json:"description"`
	Instructor           string `json:"instructor"`
	Credits              int    `json:"credits"`
	HasSubmittedFeedback bool   `json:"hasSubmittedFeedback"`
}

// ===== SERVICE IMPLEMENTATION =====

type courseService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	cache     *cache.CacheManager
}

func NewCourseService(repo repositories.Repository, logger *slog.Logger, v *validator.Validator, cm *cache.CacheManager) CourseService {
	return &courseService{
		repo:      repo,
		logger:    logger,
		validator: v,
		cache:     cm,
	}
}

func (s *courseService) CreateCourse(ctx context.Context, req *validator.CourseCreateRequest) (*CourseResponse, error) {
	// Codes are stored uppercase, normalize before the format check so
	// lowercase input is accepted.
	req.Code = strings.ToUpper(strings.TrimSpace(req.Code))

	if verrs := s.validator.Validate(req); verrs != nil {
		return nil, NewValidationError(verrs)
	}

	code := req.Code

	if _, err := s.repo.Course().GetByCode(ctx, nil, code); err == nil {
		return nil, NewConflictError("a course with this code already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check course code: %w", err)
	}

	course := &models.Course{
		Name:        strings.TrimSpace(req.Name),
		Code:        code,
		Description: req.Description,
		Instructor:  strings.TrimSpace(req.Instructor),
		Credits:     req.Credits,
		IsActive:    true,
	}

	if err := s.repo.Course().Create(ctx, nil, course); err != nil {
		return nil, fmt.Errorf("failed to create course: %w", err)
	}

	cache.SafeInvalidatePattern(ctx, s.cache.Course, "*")

	s.logger.Info("Course created", "course_id", course.ID, "code", course.Code)

	resp := toCourseResponse(course)
	return &resp, nil
}

func (s *courseService) UpdateCourse(ctx context.Context, courseID uint, req *validator.CourseUpdateRequest) (*CourseResponse, error) {
	if req.Code != nil {
		normalized := strings.ToUpper(strings.TrimSpace(*req.Code))
		req.Code = &normalized
	}

	if verrs := s.validator.Validate(req); verrs != nil {
		return nil, NewValidationError(verrs)
	}

	course, err := s.repo.Course().GetByID(ctx, nil, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("course", courseID)
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	if req.Code != nil {
		code := *req.Code
		if code != course.Code {
			if _, err := s.repo.Course().GetByCode(ctx, nil, code); err == nil {
				return nil, NewConflictError("a course with this code already exists")
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("failed to check course code: %w", err)
			}
			course.Code = code
		}
	}
	if req.Name != nil {
		course.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		course.Description = *req.Description
	}
	if req.Instructor != nil {
		course.Instructor = strings.TrimSpace(*req.Instructor)
	}
	if req.Credits != nil {
		course.Credits = *req.Credits
	}
	if req.IsActive != nil {
		course.IsActive = *req.IsActive
	}

	if err := s.repo.Course().Update(ctx, nil, course); err != nil {
		return nil, fmt.Errorf("failed to update course: %w", err)
	}

	cache.SafeInvalidatePattern(ctx, s.cache.Course, "*")

	s.logger.Info("Course updated", "course_id", course.ID)

	resp := toCourseResponse(course)
	return &resp, nil
}

// DeleteCourse refuses to remove a course that has feedback so historic
// analytics keep their referents.
func (s *courseService) DeleteCourse(ctx context.Context, courseID uint) error {
	if _, err := s.repo.Course().GetByID(ctx, nil, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NewNotFoundError("course", courseID)
		}
		return fmt.Errorf("failed to get course: %w", err)
	}

	count, err := s.repo.Feedback().CountByCourse(ctx, nil, courseID)
	if err != nil {
		return fmt.Errorf("failed to count course feedback: %w", err)
	}
	if count > 0 {
		return NewConflictError("cannot delete a course that has feedback, deactivate it instead")
	}

	if err := s.repo.Course().Delete(ctx, nil, courseID); err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}

	cache.SafeInvalidatePattern(ctx, s.cache.Course, "*")

	s.logger.Info("Course deleted", "course_id", courseID)

	return nil
}

func (s *courseService) GetCourse(ctx context.Context, courseID uint) (*CourseResponse, error) {
	course, err := s.repo.Course().GetByID(ctx, nil, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("course", courseID)
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	resp := toCourseResponse(course)
	return &resp, nil
}

func (s *courseService) ListCourses(ctx context.Context) ([]CourseWithRating, error) {
	courses, err := s.repo.Course().ListWithStats(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}

	items := make([]CourseWithRating, 0, len(courses))
	for _, c := range courses {
		item := CourseWithRating{
			CourseResponse: toCourseResponse(&c.Course),
			TotalFeedback:  c.TotalFeedback,
		}
		if c.TotalFeedback > 0 {
			avg := roundFloat(float64(c.RatingSum)/float64(c.TotalFeedback), 2)
			item.AverageRating = &avg
		}
		items = append(items, item)
	}

	return items, nil
}

func (s *courseService) ListActiveCourses(ctx context.Context, studentID uint) ([]StudentCourseItem, error) {
	courses, err := s.repo.Course().ListActive(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list active courses: %w", err)
	}

	ratedIDs, err := s.repo.Feedback().ListCourseIDsByStudent(ctx, nil, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rated courses: %w", err)
	}

	rated := make(map[uint]struct{}, len(ratedIDs))
	for _, id := range ratedIDs {
		rated[id] = struct{}{}
	}

	items := make([]StudentCourseItem, 0, len(courses))
	for _, c := range courses {
		_, submitted := rated[c.ID]
		items = append(items, StudentCourseItem{
			ID:                   c.ID,
			Name:                 c.Name,
			Code:                 c.Code,
			Description:          c.Description,
			Instructor:           c.Instructor,
			Credits:              c.Credits,
			HasSubmittedFeedback: submitted,
		})
	}

	return items, nil
}

func toCourseResponse(course *models.Course) CourseResponse {
	return CourseResponse{
		ID:          course.ID,
		Name:        course.Name,
		Code:        course.Code,
		Description: course.Description,
		Instructor:  course.Instructor,
		Credits:     course.Credits,
		IsActive:    course.IsActive,
		CreatedAt:   course.CreatedAt,
		UpdatedAt:   course.UpdatedAt,
	}
}
