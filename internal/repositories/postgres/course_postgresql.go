package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/crypticandwired/StudentFeedback/internal/models"
	"github.com/crypticandwired/StudentFeedback/internal/repositories"
)

type courseRepository struct {
	db *gorm.DB
}

func NewCoursePostgreSQL(db *gorm.DB) repositories.CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *courseRepository) Create(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	db := r.getDB(tx)

	if err := db.WithContext(ctx).Create(course).Error; err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}

	return nil
}

func (r *courseRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error) {
	db := r.getDB(tx)

	var course models.Course
	if err := db.WithContext(ctx).First(&course, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	return &course, nil
}

func (r *courseRepository) GetByCode(ctx context.Context, tx *gorm.DB, code string) (*models.Course, error) {
	db := r.getDB(tx)

	var course models.Course
	err := db.WithContext(ctx).
		Where("code = ?", strings.ToUpper(code)).
		First(&course).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get course by code: %w", err)
	}

	return &course, nil
}

func (r *courseRepository) Update(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	db := r.getDB(tx)

	if err := db.WithContext(ctx).Save(course).Error; err != nil {
		return fmt.Errorf("failed to update course: %w", err)
	}

	return nil
}

func (r *courseRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := r.getDB(tx)

	result := db.WithContext(ctx).Delete(&models.Course{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete course: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *courseRepository) ListActive(ctx context.Context, tx *gorm.DB) ([]models.Course, error) {
	db := r.getDB(tx)

	var courses []models.Course
	err := db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&courses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active courses: %w", err)
	}

	return courses, nil
}

func (r *courseRepository) ListWithStats(ctx context.Context, tx *gorm.DB) ([]repositories.CourseWithStats, error) {
	db := r.getDB(tx)

	var courses []repositories.CourseWithStats
	err := db.WithContext(ctx).
		Model(&models.Course{}).
		Select("courses.*, COUNT(feedback.id) AS total_feedback, COALESCE(SUM(feedback.rating), 0) AS rating_sum").
		Joins("LEFT JOIN feedback ON feedback.course_id = courses.id").
		Group("courses.id").
		Order("courses.name ASC").
		Scan(&courses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list courses with stats: %w", err)
	}

	return courses, nil
}
