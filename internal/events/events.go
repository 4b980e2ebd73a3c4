package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventSource  = "student-feedback-portal"
	EventVersion = "1.0"

	TopicFeedbackEvents = "feedback.events"
)

// Event types published on feedback lifecycle changes.
const (
	FeedbackCreated = "feedback.created"
	FeedbackUpdated = "feedback.updated"
	FeedbackDeleted = "feedback.deleted"
)

// Event is the envelope every published message carries.
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// FeedbackEventPayload describes the feedback a lifecycle event refers to.
type FeedbackEventPayload struct {
	FeedbackID uint `json:"feedbackId"`
	StudentID  uint `json:"studentId"`
	CourseID   uint `json:"courseId"`
	Rating     int  `json:"rating"`
}

// NewEvent builds an event envelope with a fresh id and timestamp.
func NewEvent(eventType string, data interface{}) Event {
	return Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    EventSource,
		Version:   EventVersion,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}
