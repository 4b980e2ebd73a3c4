package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/crypticandwired/StudentFeedback/internal/models"
	"github.com/crypticandwired/StudentFeedback/internal/repositories"
)

// analyticsRepository returns raw grouped rows; all normalization
// (zero-filling, ranking, merging) happens in the service layer so the
// math stays unit-testable.
type analyticsRepository struct {
	db *gorm.DB
}

func NewAnalyticsPostgreSQL(db *gorm.DB) repositories.AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// ===== COUNTS =====

func (r *analyticsRepository) CountStudents(ctx context.Context, tx *gorm.DB) (int64, error) {
	db := r.getDB(tx)
	var count int64

	err := db.WithContext(ctx).
		Model(&models.User{}).
		Where("role = ?", models.RoleStudent).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count students: %w", err)
	}

	return count, nil
}

func (r *analyticsRepository) CountBlockedStudents(ctx context.Context, tx *gorm.DB) (int64, error) {
	db := r.getDB(tx)
	var count int64

	err := db.WithContext(ctx).
		Model(&models.User{}).
		Where("role = ? AND is_blocked = ?", models.RoleStudent, true).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count blocked students: %w", err)
	}

	return count, nil
}

func (r *analyticsRepository) CountCourses(ctx context.Context, tx *gorm.DB) (int64, error) {
	db := r.getDB(tx)
	var count int64

	if err := db.WithContext(ctx).Model(&models.Course{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count courses: %w", err)
	}

	return count, nil
}

func (r *analyticsRepository) CountFeedback(ctx context.Context, tx *gorm.DB) (int64, error) {
	db := r.getDB(tx)
	var count int64

	if err := db.WithContext(ctx).Model(&models.Feedback{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count feedback: %w", err)
	}

	return count, nil
}

// ===== GLOBAL AGGREGATES =====

func (r *analyticsRepository) GlobalRatingStats(ctx context.Context, tx *gorm.DB) (repositories.RatingStats, error) {
	db := r.getDB(tx)

	var stats repositories.RatingStats
	err := db.WithContext(ctx).
		Model(&models.Feedback{}).
		Select("COALESCE(SUM(rating), 0) AS sum, COUNT(*) AS count").
		Scan(&stats).Error
	if err != nil {
		return repositories.RatingStats{}, fmt.Errorf("failed to get rating stats: %w", err)
	}

	return stats, nil
}

func (r *analyticsRepository) RatingDistribution(ctx context.Context, tx *gorm.DB) ([]repositories.RatingCount, error) {
	db := r.getDB(tx)

	var rows []repositories.RatingCount
	err := db.WithContext(ctx).
		Model(&models.Feedback{}).
		Select("rating, COUNT(*) AS count").
		Group("rating").
		Order("rating ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get rating distribution: %w", err)
	}

	return rows, nil
}

func (r *analyticsRepository) RecentFeedback(ctx context.Context, tx *gorm.DB, limit int) ([]models.Feedback, error) {
	db := r.getDB(tx)

	var feedback []models.Feedback
	err := db.WithContext(ctx).
		Preload("Student").
		Preload("Course").
		Order("created_at DESC").
		Limit(limit).
		Find(&feedback).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get recent feedback: %w", err)
	}

	return feedback, nil
}

func (r *analyticsRepository) TopCourseRatings(ctx context.Context, tx *gorm.DB, limit int) ([]repositories.CourseRatingRow, error) {
	db := r.getDB(tx)

	var rows []repositories.CourseRatingRow
	err := db.WithContext(ctx).
		Model(&models.Feedback{}).
		Select("courses.id AS course_id, courses.name, courses.code, courses.instructor, "+
			"COUNT(feedback.id) AS count, SUM(feedback.rating) AS sum").
		Joins("JOIN courses ON courses.id = feedback.course_id").
		Group("courses.id, courses.name, courses.code, courses.instructor").
		Order("SUM(feedback.rating)::float / COUNT(feedback.id) DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get top course ratings: %w", err)
	}

	return rows, nil
}

// ===== TIME BUCKETS =====

func (r *analyticsRepository) MonthlyBuckets(ctx context.Context, tx *gorm.DB, since time.Time) ([]repositories.MonthBucket, error) {
	db := r.getDB(tx)

	var rows []repositories.MonthBucket
	err := db.WithContext(ctx).
		Model(&models.Feedback{}).
		Select("EXTRACT(YEAR FROM created_at)::int AS year, EXTRACT(MONTH FROM created_at)::int AS month, "+
			"COUNT(*) AS count, SUM(rating) AS sum").
		Where("created_at >= ?", since).
		Group("1, 2").
		Order("1 ASC, 2 ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get monthly buckets: %w", err)
	}

	return rows, nil
}

func (r *analyticsRepository) MonthlyRatingBuckets(ctx context.Context, tx *gorm.DB, since time.Time) ([]repositories.MonthRatingBucket, error) {
	db := r.getDB(tx)

	var rows []repositories.MonthRatingBucket
	err := db.WithContext(ctx).
		Model(&models.Feedback{}).
		Select("EXTRACT(YEAR FROM created_at)::int AS year, EXTRACT(MONTH FROM created_at)::int AS month, "+
			"rating, COUNT(*) AS count").
		Where("created_at >= ?", since).
		Group("1, 2, rating").
		Order("1 ASC, 2 ASC, rating ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get monthly rating buckets: %w", err)
	}

	return rows, nil
}

// ===== GROUPED PERFORMANCE =====

func (r *analyticsRepository) CourseRatingStats(ctx context.Context, tx *gorm.DB) ([]repositories.CourseRatingRow, error) {
	db := r.getDB(tx)

	var rows []repositories.CourseRatingRow
	err := db.WithContext(ctx).
		Model(&models.Feedback{}).
		Select("courses.id AS course_id, courses.name, courses.code, courses.instructor, " +
			"COUNT(feedback.id) AS count, SUM(feedback.rating) AS sum").
		Joins("JOIN courses ON courses.id = feedback.course_id").
		Group("courses.id, courses.name, courses.code, courses.instructor").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get course rating stats: %w", err)
	}

	return rows, nil
}

func (r *analyticsRepository) CourseRatingDistribution(ctx context.Context, tx *gorm.DB) ([]repositories.CourseRatingCount, error) {
	db := r.getDB(tx)

	var rows []repositories.CourseRatingCount
	err := db.WithContext(ctx).
		Model(&models.Feedback{}).
		Select("course_id, rating, COUNT(*) AS count").
		Group("course_id, rating").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get course rating distribution: %w", err)
	}

	return rows, nil
}

func (r *analyticsRepository) StudentEngagement(ctx context.Context, tx *gorm.DB, limit int) ([]repositories.StudentEngagementRow, error) {
	db := r.getDB(tx)

	var rows []repositories.StudentEngagementRow
	err := db.WithContext(ctx).
		Model(&models.Feedback{}).
		Select("users.id AS student_id, users.name, users.email, "+
			"COUNT(feedback.id) AS count, COALESCE(SUM(feedback.rating), 0) AS sum, "+
			"MAX(feedback.created_at) AS last_feedback").
		Joins("JOIN users ON users.id = feedback.student_id").
		Group("users.id, users.name, users.email").
		Order("count DESC, last_feedback DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get student engagement: %w", err)
	}

	return rows, nil
}

func (r *analyticsRepository) InstructorCourseStats(ctx context.Context, tx *gorm.DB) ([]repositories.InstructorCourseRow, error) {
	db := r.getDB(tx)

	var rows []repositories.InstructorCourseRow
	err := db.WithContext(ctx).
		Model(&models.Feedback{}).
		Select("courses.instructor, courses.name AS course_name, " +
			"COUNT(feedback.id) AS count, SUM(feedback.rating) AS sum").
		Joins("JOIN courses ON courses.id = feedback.course_id").
		Group("courses.instructor, courses.name").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get instructor course stats: %w", err)
	}

	return rows, nil
}
