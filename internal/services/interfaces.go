package services

import (
	"context"
	"io"
	"time"

	"github.com/crypticandwired/StudentFeedback/internal/repositories"
	"github.com/crypticandwired/StudentFeedback/internal/validator"
)

// ===== SHARED DTOs =====

// PaginationResponse is the page envelope attached to every list endpoint.
type PaginationResponse struct {
	Current int   `json:"current"`
	Pages   int   `json:"pages"`
	Total   int64 `json:"total"`
	HasNext bool  `json:"hasNext"`
	HasPrev bool  `json:"hasPrev"`
}

// NewPaginationResponse computes page counts from a total row count.
// pages is ceil(total/limit), so an empty result set reports zero pages.
func NewPaginationResponse(page, limit int, total int64) PaginationResponse {
	pages := int((total + int64(limit) - 1) / int64(limit))

	return PaginationResponse{
		Current: page,
		Pages:   pages,
		Total:   total,
		HasNext: page < pages,
		HasPrev: page > 1,
	}
}

type StudentSummary struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

type CourseSummary struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	Code       string `json:"code"`
	Instructor string `json:"instructor"`
	Credits    int    `json:"credits"`
}

type FeedbackResponse struct {
	ID        uint            `json:"id"`
	Rating    int             `json:"rating"`
	Message   string          `json:"message"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	Course    *CourseSummary  `json:"course,omitempty"`
	Student   *StudentSummary `json:"student,omitempty"`
}

type RatingBucket struct {
	Rating int   `json:"rating"`
	Count  int64 `json:"count"`
}

// ===== SERVICE INTERFACES =====

type AuthService interface {
	Register(ctx context.Context, req *validator.RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req *validator.LoginRequest) (*AuthResponse, error)
	AdminLogin(ctx context.Context, req *validator.LoginRequest) (*AuthResponse, error)
}

type UserService interface {
	GetProfile(ctx context.Context, userID uint) (*UserProfile, error)
	UpdateProfile(ctx context.Context, userID uint, req *validator.UpdateProfileRequest) (*UserProfile, error)
	ChangePassword(ctx context.Context, userID uint, req *validator.ChangePasswordRequest) error

	// Admin operations
	ListStudents(ctx context.Context, search string, page, limit int) (*StudentListResponse, error)
	ToggleBlock(ctx context.Context, studentID uint) (*StudentItem, error)
	DeleteStudent(ctx context.Context, studentID uint) error
}

type CourseService interface {
	CreateCourse(ctx context.Context, req *validator.CourseCreateRequest) (*CourseResponse, error)
	UpdateCourse(ctx context.Context, courseID uint, req *validator.CourseUpdateRequest) (*CourseResponse, error)
	DeleteCourse(ctx context.Context, courseID uint) error
	GetCourse(ctx context.Context, courseID uint) (*CourseResponse, error)
	ListCourses(ctx context.Context) ([]CourseWithRating, error)

	// Student view: active courses plus whether the student already rated each.
	ListActiveCourses(ctx context.Context, studentID uint) ([]StudentCourseItem, error)
}

type FeedbackService interface {
	CreateFeedback(ctx context.Context, studentID uint, req *validator.FeedbackCreateRequest) (*FeedbackResponse, error)
	UpdateFeedback(ctx context.Context, studentID, feedbackID uint, req *validator.FeedbackUpdateRequest) (*FeedbackResponse, error)
	DeleteFeedback(ctx context.Context, studentID, feedbackID uint) error
	ListMyFeedback(ctx context.Context, studentID uint, page, limit int) (*FeedbackListResponse, error)

	// Admin operations
	ListFeedback(ctx context.Context, query *validator.FeedbackFilterQuery) (*FeedbackListResponse, error)
}

type AnalyticsService interface {
	Dashboard(ctx context.Context) (*DashboardResponse, error)
	Analytics(ctx context.Context) (*AnalyticsResponse, error)
}

type ExportService interface {
	// ResolveFilters validates the raw query up front so callers can
	// reject bad filters before any response bytes go out.
	ResolveFilters(query *validator.FeedbackFilterQuery) (*repositories.FeedbackFilters, error)

	// ExportCSV streams the filtered feedback set as CSV to w.
	ExportCSV(ctx context.Context, filters *repositories.FeedbackFilters, w io.Writer) error
	ExportXLSX(ctx context.Context, filters *repositories.FeedbackFilters, w io.Writer) error
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	// Core service getters
	Auth() AuthService
	User() UserService
	Course() CourseService
	Feedback() FeedbackService
	Analytics() AnalyticsService
	Export() ExportService

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
