package domain

import (
	"time"
)

type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFixed      DiscountType = "fixed"
)

type TargetAudience string

const (
	AudienceAll        TargetAudience = "All"
	AudienceBirthday   TargetAudience = "Birthday"
	AudienceNewClients TargetAudience = "New Clients"
)

type Promotion struct {
	ID                   int64          `json:"id"`
	Code                 string         `json:"code"`
	Name                 string         `json:"name"`
	Description          string         `json:"description,omitempty"`
	DiscountType         DiscountType   `json:"discount_type"`
	DiscountValue        float64        `json:"discount_value"`
	ExpiryDate           CalendarDate   `json:"expiry_date"`
	IsActive             bool           `json:"is_active"`
	IsPublic             bool           `json:"is_public"`
	TargetAudience       TargetAudience `json:"target_audience"`
	ApplicableServiceIDs []int64        `json:"applicable_service_ids"`
	Stock                *int           `json:"stock,omitempty"`
	PointsRequired       *int           `json:"points_required,omitempty"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
}

// AppliesToService: пустой список applicable_service_ids означает «на все услуги».
func (p Promotion) AppliesToService(serviceID int64) bool {
	if len(p.ApplicableServiceIDs) == 0 {
		return true
	}
	for _, id := range p.ApplicableServiceIDs {
		if id == serviceID {
			return true
		}
	}
	return false
}

// InStock: nil - без ограничения тиража.
func (p Promotion) InStock() bool {
	return p.Stock == nil || *p.Stock > 0
}

type RedeemedVoucher struct {
	PromotionID   int64     `json:"promotion_id"`
	UserID        int64     `json:"user_id"`
	RedeemedCount int       `json:"redeemed_count"`
	Promotion     Promotion `json:"promotion"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type CreatePromotionDTO struct {
	Code                 string         `json:"code" binding:"required"`
	Name                 string         `json:"name" binding:"required"`
	Description          string         `json:"description"`
	DiscountType         DiscountType   `json:"discount_type" binding:"required,oneof=percentage fixed"`
	DiscountValue        float64        `json:"discount_value" binding:"required,gt=0"`
	ExpiryDate           CalendarDate   `json:"expiry_date" binding:"required"`
	IsPublic             bool           `json:"is_public"`
	TargetAudience       TargetAudience `json:"target_audience" binding:"omitempty,oneof=All Birthday 'New Clients'"`
	ApplicableServiceIDs []int64        `json:"applicable_service_ids"`
	Stock                *int           `json:"stock" binding:"omitempty,gte=0"`
	PointsRequired       *int           `json:"points_required" binding:"omitempty,gt=0"`
}

type UpdatePromotionDTO struct {
	Name                 *string        `json:"name"`
	Description          *string        `json:"description"`
	DiscountValue        *float64       `json:"discount_value" binding:"omitempty,gt=0"`
	ExpiryDate           *CalendarDate  `json:"expiry_date"`
	IsActive             *bool          `json:"is_active"`
	TargetAudience       *TargetAudience `json:"target_audience" binding:"omitempty,oneof=All Birthday 'New Clients'"`
	ApplicableServiceIDs *[]int64       `json:"applicable_service_ids"`
	Stock                *int           `json:"stock" binding:"omitempty,gte=0"`
}

type PromotionFilter struct {
	IsActive *bool `json:"is_active"`
	IsPublic *bool `json:"is_public"`
	Limit    int   `json:"limit"`
	Offset   int   `json:"offset"`
}

// SelectionItem - позиция корзины при расчете применимости и итога.
type SelectionItem struct {
	ServiceID int64 `json:"service_id" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required,gt=0"`
}

type CheckoutQuote struct {
	Subtotal float64 `json:"subtotal"`
	Discount float64 `json:"discount"`
	Total    float64 `json:"total"`
}
