package services

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"

	"gorm.io/gorm"

	"github.com/crypticandwired/StudentFeedback/internal/cache"
	"github.com/crypticandwired/StudentFeedback/internal/events"
	"github.com/crypticandwired/StudentFeedback/internal/models"
	"github.com/crypticandwired/StudentFeedback/internal/repositories"
	"github.com/crypticandwired/StudentFeedback/internal/validator"
)

func newFeedbackTestService(repo *mockRepository, publisher events.EventPublisher) FeedbackService {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	return NewFeedbackService(repo, logger, validator.New(), publisher, cache.NewCacheManager(nil))
}

func activeCourse() *models.Course {
	return &models.Course{
		ID:         10,
		Name:       "Operating Systems",
		Code:       "OS301",
		Instructor: "Dr. Rao",
		Credits:    4,
		IsActive:   true,
	}
}

func TestFeedbackServiceCreate(t *testing.T) {
	validReq := func() *validator.FeedbackCreateRequest {
		return &validator.FeedbackCreateRequest{
			CourseID: 10,
			Rating:   4,
			Message:  "Well structured lectures and fair grading.",
		}
	}

	t.Run("Success", func(t *testing.T) {
		repo := newMockRepository()
		repo.course.getByIDFn = func(id uint) (*models.Course, error) { return activeCourse(), nil }
		repo.feedback.createFn = func(feedback *models.Feedback) error {
			feedback.ID = 99
			return nil
		}
		publisher := events.NewMockEventPublisher(slog.New(slog.NewTextHandler(os.Stdout, nil)))
		svc := newFeedbackTestService(repo, publisher)

		resp, err := svc.CreateFeedback(context.Background(), 5, validReq())
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if resp.ID != 99 || resp.Rating != 4 {
			t.Errorf("Unexpected response: %+v", resp)
		}
		if resp.Course == nil || resp.Course.Code != "OS301" {
			t.Errorf("Expected course summary on response, got %+v", resp.Course)
		}

		published := publisher.GetPublishedEvents()
		if len(published) != 1 {
			t.Fatalf("Expected 1 event, got %d", len(published))
		}
		if published[0].Type != events.FeedbackCreated {
			t.Errorf("Expected %s event, got %s", events.FeedbackCreated, published[0].Type)
		}
		payload, ok := published[0].Data.(events.FeedbackEventPayload)
		if !ok {
			t.Fatalf("Unexpected payload type %T", published[0].Data)
		}
		if payload.FeedbackID != 99 || payload.StudentID != 5 || payload.CourseID != 10 {
			t.Errorf("Unexpected payload: %+v", payload)
		}
	})

	t.Run("RejectsInvalidRating", func(t *testing.T) {
		repo := newMockRepository()
		svc := newFeedbackTestService(repo, nil)

		req := validReq()
		req.Rating = 6
		_, err := svc.CreateFeedback(context.Background(), 5, req)
		if !errors.Is(err, ErrValidationFailed) {
			t.Errorf("Expected validation failure, got %v", err)
		}
	})

	t.Run("CourseNotFound", func(t *testing.T) {
		repo := newMockRepository()
		repo.course.getByIDFn = func(id uint) (*models.Course, error) {
			return nil, gorm.ErrRecordNotFound
		}
		svc := newFeedbackTestService(repo, nil)

		_, err := svc.CreateFeedback(context.Background(), 5, validReq())
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected not found, got %v", err)
		}
	})

	t.Run("InactiveCourse", func(t *testing.T) {
		repo := newMockRepository()
		repo.course.getByIDFn = func(id uint) (*models.Course, error) {
			course := activeCourse()
			course.IsActive = false
			return course, nil
		}
		svc := newFeedbackTestService(repo, nil)

		_, err := svc.CreateFeedback(context.Background(), 5, validReq())
		if !errors.Is(err, ErrValidationFailed) {
			t.Errorf("Expected validation failure for inactive course, got %v", err)
		}
	})

	t.Run("DuplicateSubmission", func(t *testing.T) {
		repo := newMockRepository()
		repo.course.getByIDFn = func(id uint) (*models.Course, error) { return activeCourse(), nil }
		repo.feedback.existsByStudentAndCourseFn = func(studentID, courseID uint) (bool, error) {
			return true, nil
		}
		svc := newFeedbackTestService(repo, nil)

		_, err := svc.CreateFeedback(context.Background(), 5, validReq())
		if !errors.Is(err, ErrConflict) {
			t.Errorf("Expected conflict, got %v", err)
		}
	})

	t.Run("PublisherFailureDoesNotFailRequest", func(t *testing.T) {
		repo := newMockRepository()
		repo.course.getByIDFn = func(id uint) (*models.Course, error) { return activeCourse(), nil }
		publisher := &failingPublisher{}
		svc := newFeedbackTestService(repo, publisher)

		if _, err := svc.CreateFeedback(context.Background(), 5, validReq()); err != nil {
			t.Errorf("Expected publish failure to be swallowed, got %v", err)
		}
	})
}

type failingPublisher struct{}

func (p *failingPublisher) Publish(ctx context.Context, event events.Event) error {
	return errors.New("broker unavailable")
}
func (p *failingPublisher) Close() error { return nil }

func TestFeedbackServiceUpdate(t *testing.T) {
	owned := func() *models.Feedback {
		return &models.Feedback{
			ID:        99,
			StudentID: 5,
			CourseID:  10,
			Rating:    3,
			Message:   "Average pacing across the semester.",
			Course:    activeCourse(),
		}
	}

	t.Run("Success", func(t *testing.T) {
		repo := newMockRepository()
		repo.feedback.getByIDFn = func(id uint) (*models.Feedback, error) { return owned(), nil }
		publisher := events.NewMockEventPublisher(slog.New(slog.NewTextHandler(os.Stdout, nil)))
		svc := newFeedbackTestService(repo, publisher)

		rating := 5
		resp, err := svc.UpdateFeedback(context.Background(), 5, 99, &validator.FeedbackUpdateRequest{Rating: &rating})
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if resp.Rating != 5 {
			t.Errorf("Expected rating 5, got %d", resp.Rating)
		}
		published := publisher.GetPublishedEvents()
		if len(published) != 1 || published[0].Type != events.FeedbackUpdated {
			t.Errorf("Expected one %s event, got %+v", events.FeedbackUpdated, published)
		}
	})

	t.Run("NotOwner", func(t *testing.T) {
		repo := newMockRepository()
		repo.feedback.getByIDFn = func(id uint) (*models.Feedback, error) { return owned(), nil }
		svc := newFeedbackTestService(repo, nil)

		rating := 5
		_, err := svc.UpdateFeedback(context.Background(), 6, 99, &validator.FeedbackUpdateRequest{Rating: &rating})
		if !errors.Is(err, ErrForbidden) {
			t.Errorf("Expected forbidden for another student's feedback, got %v", err)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		repo := newMockRepository()
		svc := newFeedbackTestService(repo, nil)

		rating := 5
		_, err := svc.UpdateFeedback(context.Background(), 5, 404, &validator.FeedbackUpdateRequest{Rating: &rating})
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected not found, got %v", err)
		}
	})
}

func TestFeedbackServiceDelete(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		repo := newMockRepository()
		repo.feedback.getByIDFn = func(id uint) (*models.Feedback, error) {
			return &models.Feedback{ID: 99, StudentID: 5, CourseID: 10, Rating: 3}, nil
		}
		var deleted uint
		repo.feedback.deleteFn = func(id uint) error {
			deleted = id
			return nil
		}
		publisher := events.NewMockEventPublisher(slog.New(slog.NewTextHandler(os.Stdout, nil)))
		svc := newFeedbackTestService(repo, publisher)

		if err := svc.DeleteFeedback(context.Background(), 5, 99); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if deleted != 99 {
			t.Errorf("Expected delete of 99, got %d", deleted)
		}
		published := publisher.GetPublishedEvents()
		if len(published) != 1 || published[0].Type != events.FeedbackDeleted {
			t.Errorf("Expected one %s event, got %+v", events.FeedbackDeleted, published)
		}
	})

	t.Run("NotOwner", func(t *testing.T) {
		repo := newMockRepository()
		repo.feedback.getByIDFn = func(id uint) (*models.Feedback, error) {
			return &models.Feedback{ID: 99, StudentID: 5}, nil
		}
		svc := newFeedbackTestService(repo, nil)

		if err := svc.DeleteFeedback(context.Background(), 6, 99); !errors.Is(err, ErrForbidden) {
			t.Errorf("Expected forbidden, got %v", err)
		}
	})
}

func TestFeedbackServiceListMyFeedback(t *testing.T) {
	repo := newMockRepository()
	var gotPage, gotLimit int
	repo.feedback.listByStudentFn = func(studentID uint, page, limit int) ([]models.Feedback, int64, error) {
		gotPage, gotLimit = page, limit
		return []models.Feedback{{ID: 1, StudentID: 5, Rating: 4, Course: activeCourse()}}, 15, nil
	}
	svc := newFeedbackTestService(repo, nil)

	t.Run("ClampsPagination", func(t *testing.T) {
		resp, err := svc.ListMyFeedback(context.Background(), 5, 0, 200)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if gotPage != 1 {
			t.Errorf("Expected page clamped to 1, got %d", gotPage)
		}
		if gotLimit != 50 {
			t.Errorf("Expected limit clamped to 50, got %d", gotLimit)
		}
		if resp.Pagination.Total != 15 {
			t.Errorf("Expected total 15, got %d", resp.Pagination.Total)
		}
	})

	t.Run("DefaultLimit", func(t *testing.T) {
		if _, err := svc.ListMyFeedback(context.Background(), 5, 1, 0); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if gotLimit != 10 {
			t.Errorf("Expected default limit 10, got %d", gotLimit)
		}
	})
}

func TestFeedbackServiceListFeedback(t *testing.T) {
	t.Run("ResolvesFilters", func(t *testing.T) {
		repo := newMockRepository()
		var gotRating *int
		repo.feedback.listFn = func(filters repositories.FeedbackFilters) ([]models.Feedback, int64, error) {
			gotRating = filters.Rating
			return nil, 0, nil
		}
		svc := newFeedbackTestService(repo, nil)

		query := &validator.FeedbackFilterQuery{Rating: "5"}
		if _, err := svc.ListFeedback(context.Background(), query); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if gotRating == nil || *gotRating != 5 {
			t.Errorf("Expected rating filter 5, got %v", gotRating)
		}
	})

	t.Run("RejectsInvalidFilter", func(t *testing.T) {
		repo := newMockRepository()
		svc := newFeedbackTestService(repo, nil)

		query := &validator.FeedbackFilterQuery{StartDate: "31-12-2025"}
		if _, err := svc.ListFeedback(context.Background(), query); !errors.Is(err, ErrValidationFailed) {
			t.Errorf("Expected validation failure for bad date, got %v", err)
		}
	})

	t.Run("EnumeratesEveryInvalidField", func(t *testing.T) {
		repo := newMockRepository()
		svc := newFeedbackTestService(repo, nil)

		query := &validator.FeedbackFilterQuery{Rating: "9", Page: "zero"}
		_, err := svc.ListFeedback(context.Background(), query)
		if err == nil {
			t.Fatal("Expected validation failure")
		}

		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("Expected typed validation error, got %v", err)
		}
		fields := make(map[string]string, len(verr.Fields))
		for _, fe := range verr.Fields {
			fields[fe.Field] = fe.Message
		}
		if _, ok := fields["rating"]; !ok {
			t.Errorf("Expected rating named, got %v", fields)
		}
		if _, ok := fields["page"]; !ok {
			t.Errorf("Expected page named, got %v", fields)
		}
		if strings.Count(err.Error(), "validation failed") != 1 {
			t.Errorf("Expected a single prefix in %q", err.Error())
		}
	})
}
