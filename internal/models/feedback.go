package models

import "time"

// Feedback is a single rating a student gave a course. The composite
// unique index enforces one feedback per (student, course) pair.
type Feedback struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	StudentID uint   `json:"studentId" gorm:"not null;uniqueIndex:idx_feedback_student_course"`
	CourseID  uint   `json:"courseId" gorm:"not null;uniqueIndex:idx_feedback_student_course"`
	Rating    int    `json:"rating" gorm:"not null"`
	Message   string `json:"message" gorm:"not null;size:1000"`

	Student *User   `json:"student,omitempty" gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE"`
	Course  *Course `json:"course,omitempty" gorm:"foreignKey:CourseID"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Feedback) TableName() string {
	return "feedback"
}
