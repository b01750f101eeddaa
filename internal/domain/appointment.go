package domain

import (
	"time"
)

type AppointmentStatus string

const (
	AppointmentStatusPending    AppointmentStatus = "pending"
	AppointmentStatusUpcoming   AppointmentStatus = "upcoming"
	AppointmentStatusInProgress AppointmentStatus = "in-progress"
	AppointmentStatusCompleted  AppointmentStatus = "completed"
	AppointmentStatusCancelled  AppointmentStatus = "cancelled"
)

type PaymentState string

const (
	PaymentStatePaid   PaymentState = "Paid"
	PaymentStateUnpaid PaymentState = "Unpaid"
)

type Appointment struct {
	ID             int64             `json:"id"`
	UserID         int64             `json:"user_id"`
	ServiceID      int64             `json:"service_id"`
	Date           CalendarDate      `json:"date"`
	Time           string            `json:"time"`
	Status         AppointmentStatus `json:"status"`
	PaymentStatus  PaymentState      `json:"payment_status"`
	BookingGroupID string            `json:"booking_group_id"`
	PromotionID    *int64            `json:"promotion_id,omitempty"`
	Price          float64           `json:"price"`
	DurationWeeks  int               `json:"duration_weeks,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
	ServiceName    string            `json:"service_name,omitempty"`
}

// StartsAt - локальный момент начала, собранный из даты и времени слота.
func (a Appointment) StartsAt() (time.Time, error) {
	return a.Date.At(a.Time)
}

type BookingItem struct {
	ServiceID     int64 `json:"service_id" binding:"required"`
	Quantity      int   `json:"quantity" binding:"required,gt=0"`
	DurationWeeks int   `json:"duration_weeks" binding:"omitempty,gte=0"`
}

// CreateBookingDTO - одно оформление корзины: по записи на каждую единицу
// каждой услуги, все записи получают общий booking_group_id.
type CreateBookingDTO struct {
	Items       []BookingItem `json:"items" binding:"required,min=1,dive"`
	Date        CalendarDate  `json:"date" binding:"required"`
	Time        string        `json:"time" binding:"required"`
	PromotionID *int64        `json:"promotion_id"`
}

// AppointmentBuckets - разбивка записей пользователя относительно «сейчас».
type AppointmentBuckets struct {
	Upcoming  []Appointment `json:"upcoming"`
	History   []Appointment `json:"history"`
	Reminders []Appointment `json:"reminders"`
}

type AppointmentFilter struct {
	UserID        *int64             `json:"user_id"`
	ServiceID     *int64             `json:"service_id"`
	Status        *AppointmentStatus `json:"status"`
	ExcludeStatus *AppointmentStatus `json:"exclude_status"`
	StartDate     *time.Time         `json:"start_date"`
	EndDate       *time.Time         `json:"end_date"`
	Limit         int                `json:"limit"`
	Offset        int                `json:"offset"`
}

// TimeSlot - элемент сетки доступности на выбранную дату.
type TimeSlot struct {
	Time   string `json:"time"`
	Booked bool   `json:"booked"`
}
