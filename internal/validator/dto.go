package validator

// RegisterRequest represents student self-registration
type RegisterRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=50"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,strong_password"`
	Phone       string `json:"phone" validate:"required,phone_number"`
	DateOfBirth string `json:"dateOfBirth" validate:"required"`
	Address     string `json:"address" validate:"required,max=200"`
}

// LoginRequest represents a login attempt
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest represents profile updates, all fields optional
type UpdateProfileRequest struct {
	Name              *string `json:"name" validate:"omitempty,min=2,max=50"`
	Phone             *string `json:"phone" validate:"omitempty,phone_number"`
	DateOfBirth       *string `json:"dateOfBirth"`
	Address           *string `json:"address" validate:"omitempty,max=200"`
	ProfilePictureURL *string `json:"profilePicture" validate:"omitempty,max=500"`
}

// ChangePasswordRequest represents a password change
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,strong_password"`
}

// CourseCreateRequest represents the request structure for creating courses
type CourseCreateRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Code        string `json:"code" validate:"required,course_code"`
	Description string `json:"description" validate:"required,min=10,max=500"`
	Instructor  string `json:"instructor" validate:"required,min=2,max=50"`
	Credits     int    `json:"credits" validate:"required,course_credits"`
}

// CourseUpdateRequest represents the request structure for updating courses
type CourseUpdateRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=2,max=100"`
	Code        *string `json:"code" validate:"omitempty,course_code"`
	Description *string `json:"description" validate:"omitempty,min=10,max=500"`
	Instructor  *string `json:"instructor" validate:"omitempty,min=2,max=50"`
	Credits     *int    `json:"credits" validate:"omitempty,course_credits"`
	IsActive    *bool   `json:"isActive"`
}

// FeedbackCreateRequest represents a feedback submission
type FeedbackCreateRequest struct {
	CourseID uint   `json:"courseId" validate:"required"`
	Rating   int    `json:"rating" validate:"required,rating"`
	Message  string `json:"message" validate:"required,min=10,max=1000"`
}

// FeedbackUpdateRequest represents a feedback edit
type FeedbackUpdateRequest struct {
	Rating  *int    `json:"rating" validate:"omitempty,rating"`
	Message *string `json:"message" validate:"omitempty,min=10,max=1000"`
}
