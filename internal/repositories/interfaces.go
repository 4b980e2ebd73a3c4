package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/crypticandwired/StudentFeedback/internal/models"
)

// ===== FILTERS =====

// FeedbackFilters narrows feedback queries. Nil pointer fields are not
// filtered on. Date bounds are inclusive.
type FeedbackFilters struct {
	CourseID  *uint
	StudentID *uint
	Rating    *int
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	Limit     int
}

func (f FeedbackFilters) Offset() int {
	if f.Page <= 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}

// StudentFilters narrows admin student listings.
type StudentFilters struct {
	Search string
	Page   int
	Limit  int
}

func (f StudentFilters) Offset() int {
	if f.Page <= 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}

// ===== AGGREGATE ROW TYPES =====

// RatingCount is one bucket of a rating distribution.
type RatingCount struct {
	Rating int
	Count  int64
}

// RatingStats is a (sum, count) pair for computing unweighted means.
type RatingStats struct {
	Sum   int64
	Count int64
}

// CourseRatingRow carries per-course aggregate stats.
type CourseRatingRow struct {
	CourseID   uint
	Name       string
	Code       string
	Instructor string
	Count      int64
	Sum        int64
}

// CourseRatingCount is a per-(course, rating) bucket.
type CourseRatingCount struct {
	CourseID uint
	Rating   int
	Count    int64
}

// MonthBucket groups feedback by calendar month.
type MonthBucket struct {
	Year  int
	Month int
	Count int64
	Sum   int64
}

// MonthRatingBucket is a per-(month, rating) count.
type MonthRatingBucket struct {
	Year   int
	Month  int
	Rating int
	Count  int64
}

// StudentEngagementRow carries per-student submission stats.
type StudentEngagementRow struct {
	StudentID    uint
	Name         string
	Email        string
	Count        int64
	Sum          int64
	LastFeedback time.Time
}

// InstructorCourseRow is a per-(instructor, course) aggregate; the
// service merges these into per-instructor stats.
type InstructorCourseRow struct {
	Instructor string
	CourseName string
	Count      int64
	Sum        int64
}

// StudentWithCount is a student row with their feedback count.
type StudentWithCount struct {
	models.User
	FeedbackCount int64
}

// CourseWithStats is a course row with its aggregate rating stats.
type CourseWithStats struct {
	models.Course
	TotalFeedback int64
	RatingSum     int64
}

// FeedbackExportRow is one flattened row of the feedback export.
type FeedbackExportRow struct {
	FeedbackID   uint
	StudentName  string
	StudentEmail string
	StudentPhone string
	CourseName   string
	CourseCode   string
	Instructor   string
	Credits      int
	Rating       int
	Message      string
	CreatedAt    time.Time
}

// ===== SUB-REPOSITORY INTERFACES =====

type UserRepository interface {
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error)
	ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error)
	Update(ctx context.Context, tx *gorm.DB, user *models.User) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	// Admin student management
	ListStudents(ctx context.Context, tx *gorm.DB, filters StudentFilters) ([]StudentWithCount, int64, error)
}

type CourseRepository interface {
	Create(ctx context.Context, tx *gorm.DB, course *models.Course) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error)
	GetByCode(ctx context.Context, tx *gorm.DB, code string) (*models.Course, error)
	Update(ctx context.Context, tx *gorm.DB, course *models.Course) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	ListActive(ctx context.Context, tx *gorm.DB) ([]models.Course, error)
	ListWithStats(ctx context.Context, tx *gorm.DB) ([]CourseWithStats, error)
}

type FeedbackRepository interface {
	Create(ctx context.Context, tx *gorm.DB, feedback *models.Feedback) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Feedback, error)
	Update(ctx context.Context, tx *gorm.DB, feedback *models.Feedback) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	ExistsByStudentAndCourse(ctx context.Context, tx *gorm.DB, studentID, courseID uint) (bool, error)
	ListByStudent(ctx context.Context, tx *gorm.DB, studentID uint, page, limit int) ([]models.Feedback, int64, error)
	ListCourseIDsByStudent(ctx context.Context, tx *gorm.DB, studentID uint) ([]uint, error)
	List(ctx context.Context, tx *gorm.DB, filters FeedbackFilters) ([]models.Feedback, int64, error)

	CountByCourse(ctx context.Context, tx *gorm.DB, courseID uint) (int64, error)
	DeleteByStudent(ctx context.Context, tx *gorm.DB, studentID uint) error

	// ExportBatches streams filtered rows in batches so exports never
	// hold the full result set in memory.
	ExportBatches(ctx context.Context, tx *gorm.DB, filters FeedbackFilters, batchSize int, fn func(rows []FeedbackExportRow) error) error
}

type AnalyticsRepository interface {
	CountStudents(ctx context.Context, tx *gorm.DB) (int64, error)
	CountBlockedStudents(ctx context.Context, tx *gorm.DB) (int64, error)
	CountCourses(ctx context.Context, tx *gorm.DB) (int64, error)
	CountFeedback(ctx context.Context, tx *gorm.DB) (int64, error)

	GlobalRatingStats(ctx context.Context, tx *gorm.DB) (RatingStats, error)
	RatingDistribution(ctx context.Context, tx *gorm.DB) ([]RatingCount, error)
	RecentFeedback(ctx context.Context, tx *gorm.DB, limit int) ([]models.Feedback, error)
	TopCourseRatings(ctx context.Context, tx *gorm.DB, limit int) ([]CourseRatingRow, error)

	MonthlyBuckets(ctx context.Context, tx *gorm.DB, since time.Time) ([]MonthBucket, error)
	MonthlyRatingBuckets(ctx context.Context, tx *gorm.DB, since time.Time) ([]MonthRatingBucket, error)
	CourseRatingStats(ctx context.Context, tx *gorm.DB) ([]CourseRatingRow, error)
	CourseRatingDistribution(ctx context.Context, tx *gorm.DB) ([]CourseRatingCount, error)
	StudentEngagement(ctx context.Context, tx *gorm.DB, limit int) ([]StudentEngagementRow, error)
	InstructorCourseStats(ctx context.Context, tx *gorm.DB) ([]InstructorCourseRow, error)
}
