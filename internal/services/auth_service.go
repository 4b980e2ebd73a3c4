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
	"github.com/crypticandwired/StudentFeedback/internal/models"
	"github.com/crypticandwired/StudentFeedback/internal/repositories"
	"github.com/crypticandwired/StudentFeedback/internal/validator"
)

// ===== RESPONSE DTOs =====

type UserProfile struct {
	ID             uint            `json:"id"`
	Name           string          `json:"name"`
	Email          string          `json:"email"`
	Role           string          `json:"role"`
	Phone          string          `json:"phone"`
	DateOfBirth    *datatypes.Date `json:"dateOfBirth"`
	Address        string          `json:"address"`
	ProfilePicture *string         `json:"profilePicture"`
	IsBlocked      bool            `json:"isBlocked"`
	CreatedAt      time.Time       `json:"createdAt"`
}

type AuthResponse struct {
	Token string      `json:"token"`
	User  UserProfile `json:"user"`
}

// ===== SERVICE IMPLEMENTATION =====

type authService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	jwt       *auth.JWTService
}

func NewAuthService(repo repositories.Repository, logger *slog.Logger, v *validator.Validator, jwt *auth.JWTService) AuthService {
	return &authService{
		repo:      repo,
		logger:    logger,
		validator: v,
		jwt:       jwt,
	}
}

// Register creates a student account and returns a signed token so the
// client is logged in immediately after signup.
func (s *authService) Register(ctx context.Context, req *validator.RegisterRequest) (*AuthResponse, error) {
	if verrs := s.validator.Validate(req); verrs != nil {
		return nil, NewValidationError(verrs)
	}

	parsed, err := time.Parse("2006-01-02", req.DateOfBirth)
	if err != nil {
		return nil, NewFieldValidationError("dateOfBirth", "must be in YYYY-MM-DD format")
	}
	dob := datatypes.Date(parsed)

	email := strings.ToLower(strings.TrimSpace(req.Email))

	exists, err := s.repo.User().ExistsByEmail(ctx, nil, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email availability: %w", err)
	}
	if exists {
		return nil, NewConflictError("an account with this email already exists")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleStudent,
		Phone:        req.Phone,
		DateOfBirth:  &dob,
		Address:      req.Address,
	}

	if err := s.repo.User().Create(ctx, nil, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("Student registered", "user_id", user.ID, "email", user.Email)

	return s.buildAuthResponse(user)
}

// Login authenticates any account by email and password.
func (s *authService) Login(ctx context.Context, req *validator.LoginRequest) (*AuthResponse, error) {
	user, err := s.authenticate(ctx, req)
	if err != nil {
		return nil, err
	}

	s.logger.Info("User logged in", "user_id", user.ID, "role", user.Role)

	return s.buildAuthResponse(user)
}

// AdminLogin authenticates and additionally requires the admin role, so
// the admin portal never issues student sessions.
func (s *authService) AdminLogin(ctx context.Context, req *validator.LoginRequest) (*AuthResponse, error) {
	user, err := s.authenticate(ctx, req)
	if err != nil {
		return nil, err
	}

	if !user.IsAdmin() {
		return nil, fmt.Errorf("%w: admin access required", ErrForbidden)
	}

	s.logger.Info("Admin logged in", "user_id", user.ID)

	return s.buildAuthResponse(user)
}

func (s *authService) authenticate(ctx context.Context, req *validator.LoginRequest) (*models.User, error) {
	if verrs := s.validator.Validate(req); verrs != nil {
		return nil, NewValidationError(verrs)
	}

	user, err := s.repo.User().GetByEmail(ctx, nil, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Same error for unknown email and wrong password.
			return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	}

	if user.IsBlocked {
		return nil, fmt.Errorf("%w: your account has been blocked, contact the administrator", ErrAccountBlocked)
	}

	return user, nil
}

func (s *authService) buildAuthResponse(user *models.User) (*AuthResponse, error) {
	token, err := s.jwt.GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &AuthResponse{
		Token: token,
		User:  toUserProfile(user),
	}, nil
}

func toUserProfile(user *models.User) UserProfile {
	return UserProfile{
		ID:             user.ID,
		Name:           user.Name,
		Email:          user.Email,
		Role:           string(user.Role),
		Phone:          user.Phone,
		DateOfBirth:    user.DateOfBirth,
		Address:        user.Address,
		ProfilePicture: user.ProfilePictureURL,
		IsBlocked:      user.IsBlocked,
		CreatedAt:      user.CreatedAt,
	}
}
