package domain

import (
	"time"
)

type Wallet struct {
	UserID     int64     `json:"user_id"`
	Points     int       `json:"points"`
	TotalSpent float64   `json:"total_spent"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type Tier struct {
	Level               int     `json:"level"`
	Name                string  `json:"name"`
	MinSpendingRequired float64 `json:"min_spending_required"`
	Color               string  `json:"color"`
}

type PointsEntry struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Delta     int       `json:"delta"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	PointsReasonAccrual    = "accrual"
	PointsReasonRedemption = "redemption"
)

// WalletSummary - кошелек вместе с вычисленным уровнем лояльности.
type WalletSummary struct {
	Wallet Wallet `json:"wallet"`
	Tier   Tier   `json:"tier"`
}
