package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/crypticandwired/StudentFeedback/internal/auth"
	"github.com/crypticandwired/StudentFeedback/internal/cache"
	"github.com/crypticandwired/StudentFeedback/internal/repositories"
	"github.com/crypticandwired/StudentFeedback/internal/validator"
)

// ===== RESPONSE DTOs =====

type StudentItem struct {
	ID            uint      `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	IsBlocked     bool      `json:"isBlocked"`
	FeedbackCount int64     `json:"feedbackCount"`
	CreatedAt     time.Time `json:"createdAt"`
}

type StudentListResponse struct {
	Students   []StudentItem      `json:"students"`
	Pagination PaginationResponse `json:"pagination"`
}

// ===== SERVICE IMPLEMENTATION =====

type userService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	cache     *cache.CacheManager
}

func NewUserService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, v *validator.Validator, cm *cache.CacheManager) UserService {
	return &userService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: v,
		cache:     cm,
	}
}

func (s *userService) GetProfile(ctx context.Context, userID uint) (*UserProfile, error) {
	user, err := s.repo.User().GetByID(ctx, nil, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("user", userID)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	profile := toUserProfile(user)
	return &profile, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID uint, req *validator.UpdateProfileRequest) (*UserProfile, error) {
	if verrs := s.validator.Validate(req); verrs != nil {
		return nil, NewValidationError(verrs)
	}

	user, err := s.repo.User().GetByID(ctx, nil, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("user", userID)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.DateOfBirth != nil {
		parsed, err := time.Parse("2006-01-02", *req.DateOfBirth)
		if err != nil {
			return nil, NewFieldValidationError("dateOfBirth", "must be in YYYY-MM-DD format")
		}
		dob := datatypes.Date(parsed)
		user.DateOfBirth = &dob
	}
	if req.Address != nil {
		user.Address = *req.Address
	}
	if req.ProfilePictureURL != nil {
		user.ProfilePictureURL = req.ProfilePictureURL
	}

	if err := s.repo.User().Update(ctx, nil, user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	s.logger.Info("Profile updated", "user_id", user.ID)

	profile := toUserProfile(user)
	return &profile, nil
}

func (s *userService) ChangePassword(ctx context.Context, userID uint, req *validator.ChangePasswordRequest) error {
	if verrs := s.validator.Validate(req); verrs != nil {
		return NewValidationError(verrs)
	}

	user, err := s.repo.User().GetByID(ctx, nil, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NewNotFoundError("user", userID)
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	if !auth.CheckPassword(user.PasswordHash, req.CurrentPassword) {
		return fmt.Errorf("%w: current password is incorrect", ErrUnauthorized)
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user.PasswordHash = hash
	if err := s.repo.User().Update(ctx, nil, user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.logger.Info("Password changed", "user_id", user.ID)

	return nil
}

// ===== ADMIN OPERATIONS =====

func (s *userService) ListStudents(ctx context.Context, search string, page, limit int) (*StudentListResponse, error) {
	bounds := validator.AdminFilterBounds
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = bounds.DefaultLimit
	}
	if limit > bounds.MaxLimit {
		limit = bounds.MaxLimit
	}

	filters := repositories.StudentFilters{
		Search: strings.TrimSpace(search),
		Page:   page,
		Limit:  limit,
	}

	students, total, err := s.repo.User().ListStudents(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}

	items := make([]StudentItem, 0, len(students))
	for _, st := range students {
		items = append(items, StudentItem{
			ID:            st.ID,
			Name:          st.Name,
			Email:         st.Email,
			Phone:         st.Phone,
			IsBlocked:     st.IsBlocked,
			FeedbackCount: st.FeedbackCount,
			CreatedAt:     st.CreatedAt,
		})
	}

	return &StudentListResponse{
		Students:   items,
		Pagination: NewPaginationResponse(page, limit, total),
	}, nil
}

// ToggleBlock flips the blocked flag. A blocked student keeps their data
// but cannot log in until unblocked.
func (s *userService) ToggleBlock(ctx context.Context, studentID uint) (*StudentItem, error) {
	user, err := s.repo.User().GetByID(ctx, nil, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("student", studentID)
		}
		return nil, fmt.Errorf("failed to get student: %w", err)
	}

	if user.IsAdmin() {
		return nil, fmt.Errorf("%w: cannot block an admin account", ErrForbidden)
	}

	user.IsBlocked = !user.IsBlocked
	if err := s.repo.User().Update(ctx, nil, user); err != nil {
		return nil, fmt.Errorf("failed to update student: %w", err)
	}

	s.logger.Info("Student block status changed", "student_id", user.ID, "is_blocked", user.IsBlocked)

	return &StudentItem{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Phone:     user.Phone,
		IsBlocked: user.IsBlocked,
		CreatedAt: user.CreatedAt,
	}, nil
}

// DeleteStudent removes the student and every feedback they submitted in
// one transaction so aggregates never see orphaned rows.
func (s *userService) DeleteStudent(ctx context.Context, studentID uint) error {
	user, err := s.repo.User().GetByID(ctx, nil, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NewNotFoundError("student", studentID)
		}
		return fmt.Errorf("failed to get student: %w", err)
	}

	if user.IsAdmin() {
		return fmt.Errorf("%w: cannot delete an admin account", ErrForbidden)
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Feedback().DeleteByStudent(ctx, nil, studentID); err != nil {
			return fmt.Errorf("failed to delete student feedback: %w", err)
		}
		if err := txRepo.User().Delete(ctx, nil, studentID); err != nil {
			return fmt.Errorf("failed to delete student: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	cache.InvalidateFeedbackCaches(ctx, s.cache)

	s.logger.Info("Student deleted", "student_id", studentID)

	return nil
}
