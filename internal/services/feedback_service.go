package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/crypticandwired/StudentFeedback/internal/cache"
	"github.com/crypticandwired/StudentFeedback/internal/events"
	"github.com/crypticandwired/StudentFeedback/internal/models"
	"github.com/crypticandwired/StudentFeedback/internal/repositories"
	"github.com/crypticandwired/StudentFeedback/internal/validator"
)

// ===== RESPONSE DTOs =====

type FeedbackListResponse struct {
	Feedback   []FeedbackResponse `json:"feedback"`
	Pagination PaginationResponse `json:"pagination"`
}

// ===== SERVICE IMPLEMENTATION =====

type feedbackService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
	cache     *cache.CacheManager
}

func NewFeedbackService(repo repositories.Repository, logger *slog.Logger, v *validator.Validator, publisher events.EventPublisher, cm *cache.CacheManager) FeedbackService {
	return &feedbackService{
		repo:      repo,
		logger:    logger,
		validator: v,
		publisher: publisher,
		cache:     cm,
	}
}

func (s *feedbackService) CreateFeedback(ctx context.Context, studentID uint, req *validator.FeedbackCreateRequest) (*FeedbackResponse, error) {
	if verrs := s.validator.Validate(req); verrs != nil {
		return nil, NewValidationError(verrs)
	}

	course, err := s.repo.Course().GetByID(ctx, nil, req.CourseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("course", req.CourseID)
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	if !course.IsActive {
		return nil, fmt.Errorf("%w: course is not accepting feedback", ErrValidationFailed)
	}

	exists, err := s.repo.Feedback().ExistsByStudentAndCourse(ctx, nil, studentID, req.CourseID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing feedback: %w", err)
	}
	if exists {
		return nil, NewConflictError("you have already submitted feedback for this course")
	}

	feedback := &models.Feedback{
		StudentID: studentID,
		CourseID:  req.CourseID,
		Rating:    req.Rating,
		Message:   req.Message,
	}

	if err := s.repo.Feedback().Create(ctx, nil, feedback); err != nil {
		return nil, fmt.Errorf("failed to create feedback: %w", err)
	}
	feedback.Course = course

	s.publishEvent(ctx, events.FeedbackCreated, feedback)
	cache.InvalidateFeedbackCaches(ctx, s.cache)

	s.logger.Info("Feedback created",
		"feedback_id", feedback.ID,
		"student_id", studentID,
		"course_id", req.CourseID,
		"rating", req.Rating)

	resp := toFeedbackResponse(feedback, false)
	return &resp, nil
}

func (s *feedbackService) UpdateFeedback(ctx context.Context, studentID, feedbackID uint, req *validator.FeedbackUpdateRequest) (*FeedbackResponse, error) {
	if verrs := s.validator.Validate(req); verrs != nil {
		return nil, NewValidationError(verrs)
	}

	feedback, err := s.getOwnedFeedback(ctx, studentID, feedbackID)
	if err != nil {
		return nil, err
	}

	if req.Rating != nil {
		feedback.Rating = *req.Rating
	}
	if req.Message != nil {
		feedback.Message = *req.Message
	}

	if err := s.repo.Feedback().Update(ctx, nil, feedback); err != nil {
		return nil, fmt.Errorf("failed to update feedback: %w", err)
	}

	s.publishEvent(ctx, events.FeedbackUpdated, feedback)
	cache.InvalidateFeedbackCaches(ctx, s.cache)

	s.logger.Info("Feedback updated", "feedback_id", feedback.ID, "student_id", studentID)

	resp := toFeedbackResponse(feedback, false)
	return &resp, nil
}

func (s *feedbackService) DeleteFeedback(ctx context.Context, studentID, feedbackID uint) error {
	feedback, err := s.getOwnedFeedback(ctx, studentID, feedbackID)
	if err != nil {
		return err
	}

	if err := s.repo.Feedback().Delete(ctx, nil, feedbackID); err != nil {
		return fmt.Errorf("failed to delete feedback: %w", err)
	}

	s.publishEvent(ctx, events.FeedbackDeleted, feedback)
	cache.InvalidateFeedbackCaches(ctx, s.cache)

	s.logger.Info("Feedback deleted", "feedback_id", feedbackID, "student_id", studentID)

	return nil
}

func (s *feedbackService) ListMyFeedback(ctx context.Context, studentID uint, page, limit int) (*FeedbackListResponse, error) {
	bounds := validator.StudentFilterBounds
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = bounds.DefaultLimit
	}
	if limit > bounds.MaxLimit {
		limit = bounds.MaxLimit
	}

	feedback, total, err := s.repo.Feedback().ListByStudent(ctx, nil, studentID, page, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}

	items := make([]FeedbackResponse, 0, len(feedback))
	for i := range feedback {
		items = append(items, toFeedbackResponse(&feedback[i], false))
	}

	return &FeedbackListResponse{
		Feedback:   items,
		Pagination: NewPaginationResponse(page, limit, total),
	}, nil
}

// ===== ADMIN OPERATIONS =====

func (s *feedbackService) ListFeedback(ctx context.Context, query *validator.FeedbackFilterQuery) (*FeedbackListResponse, error) {
	filter, verrs := s.validator.ResolveFeedbackFilter(*query, validator.AdminFilterBounds)
	if len(verrs) > 0 {
		return nil, NewValidationError(verrs)
	}

	filters := repositories.FeedbackFilters{
		CourseID:  filter.CourseID,
		StudentID: filter.StudentID,
		Rating:    filter.Rating,
		StartDate: filter.StartDate,
		EndDate:   filter.EndDate,
		Page:      filter.Page,
		Limit:     filter.Limit,
	}

	feedback, total, err := s.repo.Feedback().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}

	items := make([]FeedbackResponse, 0, len(feedback))
	for i := range feedback {
		items = append(items, toFeedbackResponse(&feedback[i], true))
	}

	return &FeedbackListResponse{
		Feedback:   items,
		Pagination: NewPaginationResponse(filter.Page, filter.Limit, total),
	}, nil
}

// ===== HELPERS =====

func (s *feedbackService) getOwnedFeedback(ctx context.Context, studentID, feedbackID uint) (*models.Feedback, error) {
	feedback, err := s.repo.Feedback().GetByID(ctx, nil, feedbackID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("feedback", feedbackID)
		}
		return nil, fmt.Errorf("failed to get feedback: %w", err)
	}

	if feedback.StudentID != studentID {
		return nil, fmt.Errorf("%w: feedback belongs to another student", ErrForbidden)
	}

	return feedback, nil
}

// publishEvent emits a feedback event without failing the request.
// The aggregates are rebuilt from the database, so a lost event only
// delays downstream consumers.
func (s *feedbackService) publishEvent(ctx context.Context, eventType string, feedback *models.Feedback) {
	if s.publisher == nil {
		return
	}

	event := events.NewEvent(eventType, events.FeedbackEventPayload{
		FeedbackID: feedback.ID,
		StudentID:  feedback.StudentID,
		CourseID:   feedback.CourseID,
		Rating:     feedback.Rating,
	})

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish feedback event",
			"event_type", eventType,
			"feedback_id", feedback.ID,
			"error", err)
	}
}

func toFeedbackResponse(feedback *models.Feedback, includeStudent bool) FeedbackResponse {
	resp := FeedbackResponse{
		ID:        feedback.ID,
		Rating:    feedback.Rating,
		Message:   feedback.Message,
		CreatedAt: feedback.CreatedAt,
		UpdatedAt: feedback.UpdatedAt,
	}

	if feedback.Course != nil {
		resp.Course = &CourseSummary{
			ID:         feedback.Course.ID,
			Name:       feedback.Course.Name,
			Code:       feedback.Course.Code,
			Instructor: feedback.Course.Instructor,
			Credits:    feedback.Course.Credits,
		}
	}

	if includeStudent && feedback.Student != nil {
		resp.Student = &StudentSummary{
			ID:    feedback.Student.ID,
			Name:  feedback.Student.Name,
			Email: feedback.Student.Email,
			Phone: feedback.Student.Phone,
		}
	}

	return resp
}
