package models

import (
	"time"

	"gorm.io/datatypes"
)

type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleAdmin   UserRole = "admin"
)

type User struct {
	ID           uint     `json:"id" gorm:"primaryKey"`
	Name         string   `json:"name" gorm:"not null;size:50"`
	Email        string   `json:"email" gorm:"uniqueIndex;not null;size:255"`
	PasswordHash string   `json:"-" gorm:"not null;size:255"`
	Role         UserRole `json:"role" gorm:"not null;size:20;default:student"`

	// Profile info
	Phone             string          `json:"phone" gorm:"size:10"`
	DateOfBirth       *datatypes.Date `json:"dateOfBirth"`
	Address           string          `json:"address" gorm:"size:200"`
	ProfilePictureURL *string         `json:"profilePicture" gorm:"size:500"`

	// Status
	IsBlocked bool `json:"isBlocked" gorm:"default:false"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
