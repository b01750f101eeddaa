package domain

import (
	"time"
)

type ServiceCategory struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Service struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	Price         float64   `json:"price"`
	DiscountPrice *float64  `json:"discount_price,omitempty"`
	Duration      int       `json:"duration"`
	CategoryID    int64     `json:"category_id"`
	Rating        float64   `json:"rating"`
	PhotoURL      string    `json:"photo_url,omitempty"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// EffectivePrice - цена к оплате: акционная, если задана, иначе базовая.
func (s Service) EffectivePrice() float64 {
	if s.DiscountPrice != nil && *s.DiscountPrice > 0 && *s.DiscountPrice < s.Price {
		return *s.DiscountPrice
	}
	return s.Price
}

type CreateServiceDTO struct {
	Name          string   `json:"name" binding:"required"`
	Description   string   `json:"description"`
	Price         float64  `json:"price" binding:"required,gt=0"`
	DiscountPrice *float64 `json:"discount_price" binding:"omitempty,gt=0"`
	Duration      int      `json:"duration" binding:"required,gt=0"`
	CategoryID    int64    `json:"category_id" binding:"required"`
}

type UpdateServiceDTO struct {
	Name          *string  `json:"name"`
	Description   *string  `json:"description"`
	Price         *float64 `json:"price" binding:"omitempty,gt=0"`
	DiscountPrice *float64 `json:"discount_price"`
	Duration      *int     `json:"duration" binding:"omitempty,gt=0"`
	CategoryID    *int64   `json:"category_id"`
	IsActive      *bool    `json:"is_active"`
}

type ServiceFilter struct {
	CategoryID *int64  `json:"category_id"`
	IsActive   *bool   `json:"is_active"`
	Search     *string `json:"search"`
	Limit      int     `json:"limit"`
	Offset     int     `json:"offset"`
}
