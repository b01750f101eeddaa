package domain

import (
	"time"
)

type Review struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	ServiceID     int64     `json:"service_id"`
	AppointmentID *int64    `json:"appointment_id,omitempty"`
	Rating        int       `json:"rating"`
	Comment       string    `json:"comment,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type CreateReviewDTO struct {
	ServiceID     int64  `json:"service_id" binding:"required"`
	AppointmentID *int64 `json:"appointment_id"`
	Rating        int    `json:"rating" binding:"required,min=1,max=5"`
	Comment       string `json:"comment"`
}

type ReviewFilter struct {
	ServiceID *int64 `json:"service_id"`
	UserID    *int64 `json:"user_id"`
	MinRating *int   `json:"min_rating"`
	Limit     int    `json:"limit"`
	Offset    int    `json:"offset"`
}
