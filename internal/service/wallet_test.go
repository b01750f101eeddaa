package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"lotus/config"
	"lotus/internal/domain"
	"lotus/internal/events"
)

func testTiers() []domain.Tier {
	return []domain.Tier{
		{Level: 1, Name: "Bronze", MinSpendingRequired: 0},
		{Level: 2, Name: "Silver", MinSpendingRequired: 3000000},
		{Level: 3, Name: "Gold", MinSpendingRequired: 10000000},
		{Level: 4, Name: "Platinum", MinSpendingRequired: 30000000},
	}
}

func TestTierFor(t *testing.T) {
	tiers := testTiers()

	tests := []struct {
		totalSpent float64
		wantLevel  int
	}{
		{totalSpent: 0, wantLevel: 1},
		{totalSpent: 2999999, wantLevel: 1},
		{totalSpent: 3000000, wantLevel: 2},
		{totalSpent: 9999999, wantLevel: 2},
		{totalSpent: 10000000, wantLevel: 3},
		{totalSpent: 50000000, wantLevel: 4},
	}

	for _, tt := range tests {
		got := tierFor(tiers, tt.totalSpent)
		assert.Equal(t, tt.wantLevel, got.Level, "total_spent=%f", tt.totalSpent)
	}
}

func TestSummary(t *testing.T) {
	repo := &walletRepoStub{
		getFn: func(ctx context.Context, userID int64) (*domain.Wallet, error) {
			return &domain.Wallet{UserID: userID, Points: 120, TotalSpent: 4500000}, nil
		},
		listTiersFn: func(ctx context.Context) ([]domain.Tier, error) {
			return testTiers(), nil
		},
	}
	s := NewWalletService(repo, config.LoyaltyConfig{AccrualUnit: 10000}, &publisherStub{}, zap.NewNop())

	summary, err := s.Summary(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, 120, summary.Wallet.Points)
	assert.Equal(t, "Silver", summary.Tier.Name)
}

func TestAccrueForSpendingFloorsPoints(t *testing.T) {
	publisher := &publisherStub{}

	var gotPoints int
	var gotSpent float64
	repo := &walletRepoStub{
		accrueFn: func(ctx context.Context, userID int64, points int, spent float64) error {
			gotPoints = points
			gotSpent = spent
			return nil
		},
	}
	s := NewWalletService(repo, config.LoyaltyConfig{AccrualUnit: 10000}, publisher, zap.NewNop())

	err := s.AccrueForSpending(context.Background(), 7, 125999)
	require.NoError(t, err)

	// Неполная база начисления сгорает: 125999 / 10000 = 12 баллов.
	assert.Equal(t, 12, gotPoints)
	assert.Equal(t, float64(125999), gotSpent)

	require.Len(t, publisher.published, 1)
	assert.Equal(t, events.TopicRefreshWallet, publisher.published[0].topic)
}

func TestAccrueForSpendingRejectsNonPositive(t *testing.T) {
	s := NewWalletService(&walletRepoStub{}, config.LoyaltyConfig{AccrualUnit: 10000}, &publisherStub{}, zap.NewNop())

	assert.Error(t, s.AccrueForSpending(context.Background(), 7, 0))
	assert.Error(t, s.AccrueForSpending(context.Background(), 7, -100))
}

func TestHistoryClampsLimit(t *testing.T) {
	var gotLimit int
	repo := &walletRepoStub{
		historyFn: func(ctx context.Context, userID int64, limit, offset int) ([]domain.PointsEntry, error) {
			gotLimit = limit
			return []domain.PointsEntry{}, nil
		},
	}
	s := NewWalletService(repo, config.LoyaltyConfig{AccrualUnit: 10000}, &publisherStub{}, zap.NewNop())

	_, err := s.History(context.Background(), 7, 500, 0)
	require.NoError(t, err)
	assert.Equal(t, 20, gotLimit)
}
