package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/crypticandwired/StudentFeedback/internal/models"
	"github.com/crypticandwired/StudentFeedback/internal/repositories"
)

type feedbackRepository struct {
	db *gorm.DB
}

func NewFeedbackPostgreSQL(db *gorm.DB) repositories.FeedbackRepository {
	return &feedbackRepository{db: db}
}

func (r *feedbackRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *feedbackRepository) Create(ctx context.Context, tx *gorm.DB, feedback *models.Feedback) error {
	db := r.getDB(tx)

	if err := db.WithContext(ctx).Create(feedback).Error; err != nil {
		return fmt.Errorf("failed to create feedback: %w", err)
	}

	return nil
}

func (r *feedbackRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Feedback, error) {
	db := r.getDB(tx)

	var feedback models.Feedback
	err := db.WithContext(ctx).
		Preload("Course").
		First(&feedback, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get feedback: %w", err)
	}

	return &feedback, nil
}

func (r *feedbackRepository) Update(ctx context.Context, tx *gorm.DB, feedback *models.Feedback) error {
	db := r.getDB(tx)

	if err := db.WithContext(ctx).Save(feedback).Error; err != nil {
		return fmt.Errorf("failed to update feedback: %w", err)
	}

	return nil
}

func (r *feedbackRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := r.getDB(tx)

	result := db.WithContext(ctx).Delete(&models.Feedback{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete feedback: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *feedbackRepository) ExistsByStudentAndCourse(ctx context.Context, tx *gorm.DB, studentID, courseID uint) (bool, error) {
	db := r.getDB(tx)

	var count int64
	err := db.WithContext(ctx).
		Model(&models.Feedback{}).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check feedback existence: %w", err)
	}

	return count > 0, nil
}

func (r *feedbackRepository) ListByStudent(ctx context.Context, tx *gorm.DB, studentID uint, page, limit int) ([]models.Feedback, int64, error) {
	db := r.getDB(tx)

	var total int64
	err := db.WithContext(ctx).
		Model(&models.Feedback{}).
		Where("student_id = ?", studentID).
		Count(&total).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count student feedback: %w", err)
	}

	offset := 0
	if page > 1 {
		offset = (page - 1) * limit
	}

	var feedback []models.Feedback
	err = db.WithContext(ctx).
		Preload("Course").
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&feedback).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list student feedback: %w", err)
	}

	return feedback, total, nil
}

func (r *feedbackRepository) ListCourseIDsByStudent(ctx context.Context, tx *gorm.DB, studentID uint) ([]uint, error) {
	db := r.getDB(tx)

	var courseIDs []uint
	err := db.WithContext(ctx).
		Model(&models.Feedback{}).
		Where("student_id = ?", studentID).
		Pluck("course_id", &courseIDs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list student course ids: %w", err)
	}

	return courseIDs, nil
}

func (r *feedbackRepository) List(ctx context.Context, tx *gorm.DB, filters repositories.FeedbackFilters) ([]models.Feedback, int64, error) {
	db := r.getDB(tx)

	var total int64
	err := applyFeedbackFilters(db.WithContext(ctx).Model(&models.Feedback{}), filters).
		Count(&total).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count feedback: %w", err)
	}

	var feedback []models.Feedback
	err = applyFeedbackFilters(db.WithContext(ctx), filters).
		Preload("Student").
		Preload("Course").
		Order("created_at DESC").
		Limit(filters.Limit).
		Offset(filters.Offset()).
		Find(&feedback).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list feedback: %w", err)
	}

	return feedback, total, nil
}

func (r *feedbackRepository) CountByCourse(ctx context.Context, tx *gorm.DB, courseID uint) (int64, error) {
	db := r.getDB(tx)

	var count int64
	err := db.WithContext(ctx).
		Model(&models.Feedback{}).
		Where("course_id = ?", courseID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count course feedback: %w", err)
	}

	return count, nil
}

func (r *feedbackRepository) DeleteByStudent(ctx context.Context, tx *gorm.DB, studentID uint) error {
	db := r.getDB(tx)

	err := db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Delete(&models.Feedback{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete student feedback: %w", err)
	}

	return nil
}

// ExportBatches streams joined export rows to fn in primary-key order.
func (r *feedbackRepository) ExportBatches(ctx context.Context, tx *gorm.DB, filters repositories.FeedbackFilters, batchSize int, fn func(rows []repositories.FeedbackExportRow) error) error {
	db := r.getDB(tx)

	query := applyFeedbackFilters(db.WithContext(ctx).Model(&models.Feedback{}), filters).
		Select("feedback.id AS feedback_id, " +
			"users.name AS student_name, users.email AS student_email, users.phone AS student_phone, " +
			"courses.name AS course_name, courses.code AS course_code, courses.instructor, courses.credits, " +
			"feedback.rating, feedback.message, feedback.created_at").
		Joins("LEFT JOIN users ON users.id = feedback.student_id").
		Joins("LEFT JOIN courses ON courses.id = feedback.course_id")

	var rows []repositories.FeedbackExportRow
	result := query.FindInBatches(&rows, batchSize, func(_ *gorm.DB, _ int) error {
		return fn(rows)
	})
	if result.Error != nil {
		return fmt.Errorf("failed to export feedback: %w", result.Error)
	}

	return nil
}

// applyFeedbackFilters applies the shared filter set to a feedback query.
func applyFeedbackFilters(query *gorm.DB, filters repositories.FeedbackFilters) *gorm.DB {
	if filters.CourseID != nil {
		query = query.Where("feedback.course_id = ?", *filters.CourseID)
	}
	if filters.StudentID != nil {
		query = query.Where("feedback.student_id = ?", *filters.StudentID)
	}
	if filters.Rating != nil {
		query = query.Where("feedback.rating = ?", *filters.Rating)
	}
	if filters.StartDate != nil {
		query = query.Where("feedback.created_at >= ?", *filters.StartDate)
	}
	if filters.EndDate != nil {
		query = query.Where("feedback.created_at <= ?", *filters.EndDate)
	}
	return query
}
