package domain

import (
	"time"
)

type SessionStatus string

const (
	SessionStatusPending   SessionStatus = "pending"
	SessionStatusScheduled SessionStatus = "scheduled"
	SessionStatusCompleted SessionStatus = "completed"
)

type CourseSession struct {
	ID             int64         `json:"id"`
	CourseID       int64         `json:"course_id"`
	SessionNumber  int           `json:"session_number"`
	Status         SessionStatus `json:"status"`
	Date           *CalendarDate `json:"date,omitempty"`
	TherapistNotes string        `json:"therapist_notes,omitempty"`
	Notes          string        `json:"notes,omitempty"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

type TreatmentCourse struct {
	ID            int64           `json:"id"`
	ClientID      int64           `json:"client_id"`
	ServiceID     int64           `json:"service_id"`
	Status        string          `json:"status"`
	TotalSessions int             `json:"total_sessions"`
	Sessions      []CourseSession `json:"sessions"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	ServiceName   string          `json:"service_name,omitempty"`
}

// CourseProgress - производное состояние курса; пересчитывается из списка
// сеансов при каждом чтении, нигде не хранится.
type CourseProgress struct {
	CompletedSessions int            `json:"completed_sessions"`
	Percent           int            `json:"percent"`
	Current           *CourseSession `json:"current_session,omitempty"`
	Previous          *CourseSession `json:"previous_session,omitempty"`
}

type CreateCourseDTO struct {
	ClientID      int64 `json:"client_id" binding:"required"`
	ServiceID     int64 `json:"service_id" binding:"required"`
	TotalSessions int   `json:"total_sessions" binding:"required,gt=0"`
}

type UpdateCourseSessionDTO struct {
	Status         *SessionStatus `json:"status" binding:"omitempty,oneof=pending scheduled completed"`
	Date           *CalendarDate  `json:"date"`
	TherapistNotes *string        `json:"therapist_notes"`
	Notes          *string        `json:"notes"`
}

type CourseFilter struct {
	ClientID  *int64 `json:"client_id"`
	Completed *bool  `json:"completed"`
	Limit     int    `json:"limit"`
	Offset    int    `json:"offset"`
}
