package domain

import (
	"time"
)

type PaymentMethod string

const (
	PaymentMethodCash    PaymentMethod = "cash"
	PaymentMethodCard    PaymentMethod = "card"
	PaymentMethodEWallet PaymentMethod = "ewallet"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusSucceeded PaymentStatus = "succeeded"
	PaymentStatusFailed    PaymentStatus = "failed"
)

type Payment struct {
	ID                int64         `json:"id"`
	UserID            int64         `json:"user_id"`
	BookingGroupID    string        `json:"booking_group_id"`
	Amount            float64       `json:"amount"`
	Method            PaymentMethod `json:"method"`
	Status            PaymentStatus `json:"status"`
	CheckoutSessionID *string       `json:"checkout_session_id,omitempty"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

type ProcessPaymentDTO struct {
	BookingGroupID string        `json:"booking_group_id" binding:"required"`
	Method         PaymentMethod `json:"method" binding:"required,oneof=cash card ewallet"`
	Amount         float64       `json:"amount" binding:"required,gt=0"`
}

// PaymentResult: для карты и электронного кошелька возвращается redirect_url
// на страницу оплаты, для наличных - немедленное подтверждение.
type PaymentResult struct {
	PaymentID   int64         `json:"payment_id"`
	Status      PaymentStatus `json:"status"`
	RedirectURL string        `json:"redirect_url,omitempty"`
	Message     string        `json:"message,omitempty"`
}
