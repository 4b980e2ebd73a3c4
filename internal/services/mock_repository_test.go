package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/crypticandwired/StudentFeedback/internal/models"
	"github.com/crypticandwired/StudentFeedback/internal/repositories"
)

// mockRepository wires configurable sub-repository mocks so each test
// only fills in the calls it cares about.
type mockRepository struct {
	user      *mockUserRepository
	course    *mockCourseRepository
	feedback  *mockFeedbackRepository
	analytics *mockAnalyticsRepository
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		user:      &mockUserRepository{},
		course:    &mockCourseRepository{},
		feedback:  &mockFeedbackRepository{},
		analytics: &mockAnalyticsRepository{},
	}
}

func (m *mockRepository) User() repositories.UserRepository           { return m.user }
func (m *mockRepository) Course() repositories.CourseRepository       { return m.course }
func (m *mockRepository) Feedback() repositories.FeedbackRepository   { return m.feedback }
func (m *mockRepository) Analytics() repositories.AnalyticsRepository { return m.analytics }
func (m *mockRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(m)
}
func (m *mockRepository) Ping(ctx context.Context) error { return nil }
func (m *mockRepository) Close() error                   { return nil }

// ===== USER =====

type mockUserRepository struct {
	createFn        func(user *models.User) error
	getByIDFn       func(id uint) (*models.User, error)
	getByEmailFn    func(email string) (*models.User, error)
	existsByEmailFn func(email string) (bool, error)
	updateFn        func(user *models.User) error
	deleteFn        func(id uint) error
	listStudentsFn  func(filters repositories.StudentFilters) ([]repositories.StudentWithCount, int64, error)
}

func (m *mockUserRepository) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	if m.createFn != nil {
		return m.createFn(user)
	}
	return nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(email)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepository) ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	if m.existsByEmailFn != nil {
		return m.existsByEmailFn(email)
	}
	return false, nil
}

func (m *mockUserRepository) Update(ctx context.Context, tx *gorm.DB, user *models.User) error {
	if m.updateFn != nil {
		return m.updateFn(user)
	}
	return nil
}

func (m *mockUserRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	if m.deleteFn != nil {
		return m.deleteFn(id)
	}
	return nil
}

func (m *mockUserRepository) ListStudents(ctx context.Context, tx *gorm.DB, filters repositories.StudentFilters) ([]repositories.StudentWithCount, int64, error) {
	if m.listStudentsFn != nil {
		return m.listStudentsFn(filters)
	}
	return nil, 0, nil
}

// ===== COURSE =====

type mockCourseRepository struct {
	createFn        func(course *models.Course) error
	getByIDFn       func(id uint) (*models.Course, error)
	getByCodeFn     func(code string) (*models.Course, error)
	updateFn        func(course *models.Course) error
	deleteFn        func(id uint) error
	listActiveFn    func() ([]models.Course, error)
	listWithStatsFn func() ([]repositories.CourseWithStats, error)
}

func (m *mockCourseRepository) Create(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	if m.createFn != nil {
		return m.createFn(course)
	}
	return nil
}

func (m *mockCourseRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCourseRepository) GetByCode(ctx context.Context, tx *gorm.DB, code string) (*models.Course, error) {
	if m.getByCodeFn != nil {
		return m.getByCodeFn(code)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCourseRepository) Update(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	if m.updateFn != nil {
		return m.updateFn(course)
	}
	return nil
}

func (m *mockCourseRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	if m.deleteFn != nil {
		return m.deleteFn(id)
	}
	return nil
}

func (m *mockCourseRepository) ListActive(ctx context.Context, tx *gorm.DB) ([]models.Course, error) {
	if m.listActiveFn != nil {
		return m.listActiveFn()
	}
	return nil, nil
}

func (m *mockCourseRepository) ListWithStats(ctx context.Context, tx *gorm.DB) ([]repositories.CourseWithStats, error) {
	if m.listWithStatsFn != nil {
		return m.listWithStatsFn()
	}
	return nil, nil
}

// ===== FEEDBACK =====

type mockFeedbackRepository struct {
	createFn                   func(feedback *models.Feedback) error
	getByIDFn                  func(id uint) (*models.Feedback, error)
	updateFn                   func(feedback *models.Feedback) error
	deleteFn                   func(id uint) error
	existsByStudentAndCourseFn func(studentID, courseID uint) (bool, error)
	listByStudentFn            func(studentID uint, page, limit int) ([]models.Feedback, int64, error)
	listCourseIDsByStudentFn   func(studentID uint) ([]uint, error)
	listFn                     func(filters repositories.FeedbackFilters) ([]models.Feedback, int64, error)
	countByCourseFn            func(courseID uint) (int64, error)
	deleteByStudentFn          func(studentID uint) error
	exportBatchesFn            func(filters repositories.FeedbackFilters, batchSize int, fn func(rows []repositories.FeedbackExportRow) error) error
}

func (m *mockFeedbackRepository) Create(ctx context.Context, tx *gorm.DB, feedback *models.Feedback) error {
	if m.createFn != nil {
		return m.createFn(feedback)
	}
	return nil
}

func (m *mockFeedbackRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Feedback, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockFeedbackRepository) Update(ctx context.Context, tx *gorm.DB, feedback *models.Feedback) error {
	if m.updateFn != nil {
		return m.updateFn(feedback)
	}
	return nil
}

func (m *mockFeedbackRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	if m.deleteFn != nil {
		return m.deleteFn(id)
	}
	return nil
}

func (m *mockFeedbackRepository) ExistsByStudentAndCourse(ctx context.Context, tx *gorm.DB, studentID, courseID uint) (bool, error) {
	if m.existsByStudentAndCourseFn != nil {
		return m.existsByStudentAndCourseFn(studentID, courseID)
	}
	return false, nil
}

func (m *mockFeedbackRepository) ListByStudent(ctx context.Context, tx *gorm.DB, studentID uint, page, limit int) ([]models.Feedback, int64, error) {
	if m.listByStudentFn != nil {
		return m.listByStudentFn(studentID, page, limit)
	}
	return nil, 0, nil
}

func (m *mockFeedbackRepository) ListCourseIDsByStudent(ctx context.Context, tx *gorm.DB, studentID uint) ([]uint, error) {
	if m.listCourseIDsByStudentFn != nil {
		return m.listCourseIDsByStudentFn(studentID)
	}
	return nil, nil
}

func (m *mockFeedbackRepository) List(ctx context.Context, tx *gorm.DB, filters repositories.FeedbackFilters) ([]models.Feedback, int64, error) {
	if m.listFn != nil {
		return m.listFn(filters)
	}
	return nil, 0, nil
}

func (m *mockFeedbackRepository) CountByCourse(ctx context.Context, tx *gorm.DB, courseID uint) (int64, error) {
	if m.countByCourseFn != nil {
		return m.countByCourseFn(courseID)
	}
	return 0, nil
}

func (m *mockFeedbackRepository) DeleteByStudent(ctx context.Context, tx *gorm.DB, studentID uint) error {
	if m.deleteByStudentFn != nil {
		return m.deleteByStudentFn(studentID)
	}
	return nil
}

func (m *mockFeedbackRepository) ExportBatches(ctx context.Context, tx *gorm.DB, filters repositories.FeedbackFilters, batchSize int, fn func(rows []repositories.FeedbackExportRow) error) error {
	if m.exportBatchesFn != nil {
		return m.exportBatchesFn(filters, batchSize, fn)
	}
	return nil
}

// ===== ANALYTICS =====

type mockAnalyticsRepository struct {
	countStudentsFn            func() (int64, error)
	countBlockedStudentsFn     func() (int64, error)
	countCoursesFn             func() (int64, error)
	countFeedbackFn            func() (int64, error)
	globalRatingStatsFn        func() (repositories.RatingStats, error)
	ratingDistributionFn       func() ([]repositories.RatingCount, error)
	recentFeedbackFn           func(limit int) ([]models.Feedback, error)
	topCourseRatingsFn         func(limit int) ([]repositories.CourseRatingRow, error)
	monthlyBucketsFn           func(since time.Time) ([]repositories.MonthBucket, error)
	monthlyRatingBucketsFn     func(since time.Time) ([]repositories.MonthRatingBucket, error)
	courseRatingStatsFn        func() ([]repositories.CourseRatingRow, error)
	courseRatingDistributionFn func() ([]repositories.CourseRatingCount, error)
	studentEngagementFn        func(limit int) ([]repositories.StudentEngagementRow, error)
	instructorCourseStatsFn    func() ([]repositories.InstructorCourseRow, error)
}

func (m *mockAnalyticsRepository) CountStudents(ctx context.Context, tx *gorm.DB) (int64, error) {
	if m.countStudentsFn != nil {
		return m.countStudentsFn()
	}
	return 0, nil
}

func (m *mockAnalyticsRepository) CountBlockedStudents(ctx context.Context, tx *gorm.DB) (int64, error) {
	if m.countBlockedStudentsFn != nil {
		return m.countBlockedStudentsFn()
	}
	return 0, nil
}

func (m *mockAnalyticsRepository) CountCourses(ctx context.Context, tx *gorm.DB) (int64, error) {
	if m.countCoursesFn != nil {
		return m.countCoursesFn()
	}
	return 0, nil
}

func (m *mockAnalyticsRepository) CountFeedback(ctx context.Context, tx *gorm.DB) (int64, error) {
	if m.countFeedbackFn != nil {
		return m.countFeedbackFn()
	}
	return 0, nil
}

func (m *mockAnalyticsRepository) GlobalRatingStats(ctx context.Context, tx *gorm.DB) (repositories.RatingStats, error) {
	if m.globalRatingStatsFn != nil {
		return m.globalRatingStatsFn()
	}
	return repositories.RatingStats{}, nil
}

func (m *mockAnalyticsRepository) RatingDistribution(ctx context.Context, tx *gorm.DB) ([]repositories.RatingCount, error) {
	if m.ratingDistributionFn != nil {
		return m.ratingDistributionFn()
	}
	return nil, nil
}

func (m *mockAnalyticsRepository) RecentFeedback(ctx context.Context, tx *gorm.DB, limit int) ([]models.Feedback, error) {
	if m.recentFeedbackFn != nil {
		return m.recentFeedbackFn(limit)
	}
	return nil, nil
}

func (m *mockAnalyticsRepository) TopCourseRatings(ctx context.Context, tx *gorm.DB, limit int) ([]repositories.CourseRatingRow, error) {
	if m.topCourseRatingsFn != nil {
		return m.topCourseRatingsFn(limit)
	}
	return nil, nil
}

func (m *mockAnalyticsRepository) MonthlyBuckets(ctx context.Context, tx *gorm.DB, since time.Time) ([]repositories.MonthBucket, error) {
	if m.monthlyBucketsFn != nil {
		return m.monthlyBucketsFn(since)
	}
	return nil, nil
}

func (m *mockAnalyticsRepository) MonthlyRatingBuckets(ctx context.Context, tx *gorm.DB, since time.Time) ([]repositories.MonthRatingBucket, error) {
	if m.monthlyRatingBucketsFn != nil {
		return m.monthlyRatingBucketsFn(since)
	}
	return nil, nil
}

func (m *mockAnalyticsRepository) CourseRatingStats(ctx context.Context, tx *gorm.DB) ([]repositories.CourseRatingRow, error) {
	if m.courseRatingStatsFn != nil {
		return m.courseRatingStatsFn()
	}
	return nil, nil
}

func (m *mockAnalyticsRepository) CourseRatingDistribution(ctx context.Context, tx *gorm.DB) ([]repositories.CourseRatingCount, error) {
	if m.courseRatingDistributionFn != nil {
		return m.courseRatingDistributionFn()
	}
	return nil, nil
}

func (m *mockAnalyticsRepository) StudentEngagement(ctx context.Context, tx *gorm.DB, limit int) ([]repositories.StudentEngagementRow, error) {
	if m.studentEngagementFn != nil {
		return m.studentEngagementFn(limit)
	}
	return nil, nil
}

func (m *mockAnalyticsRepository) InstructorCourseStats(ctx context.Context, tx *gorm.DB) ([]repositories.InstructorCourseRow, error) {
	if m.instructorCourseStatsFn != nil {
		return m.instructorCourseStatsFn()
	}
	return nil, nil
}
