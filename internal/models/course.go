package models

import "time"

type Course struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"not null;size:100"`
	Code        string `json:"code" gorm:"uniqueIndex;not null;size:10"`
	Description string `json:"description" gorm:"not null;size:500"`
	Instructor  string `json:"instructor" gorm:"not null;size:50"`
	Credits     int    `json:"credits" gorm:"not null"`
	IsActive    bool   `json:"isActive" gorm:"default:true"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Course) TableName() string {
	return "courses"
}
