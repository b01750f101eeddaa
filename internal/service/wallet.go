package service

import (
	"context"
	"errors"
	"math"

	"go.uber.org/zap"

	"lotus/config"
	"lotus/internal/domain"
	"lotus/internal/events"
	"lotus/internal/repository"
)

type WalletServiceImpl struct {
	repo   repository.WalletRepository
	cfg    config.LoyaltyConfig
	events events.Publisher
	logger *zap.Logger
}

func NewWalletService(repo repository.WalletRepository, cfg config.LoyaltyConfig, publisher events.Publisher, logger *zap.Logger) *WalletServiceImpl {
	return &WalletServiceImpl{
		repo:   repo,
		cfg:    cfg,
		events: publisher,
		logger: logger,
	}
}

func (s *WalletServiceImpl) Summary(ctx context.Context, userID int64) (*domain.WalletSummary, error) {
	wallet, err := s.repo.Get(ctx, userID)
	if err != nil {
		s.logger.Error("ошибка получения кошелька", zap.Int64("user_id", userID), zap.Error(err))
		return nil, errors.New("кошелек не найден")
	}

	tiers, err := s.repo.ListTiers(ctx)
	if err != nil {
		s.logger.Error("ошибка получения уровней лояльности", zap.Error(err))
		return nil, errors.New("ошибка получения уровней лояльности")
	}

	return &domain.WalletSummary{
		Wallet: *wallet,
		Tier:   tierFor(tiers, wallet.TotalSpent),
	}, nil
}

// tierFor выбирает самый высокий уровень, чей порог уже достигнут.
// Список уровней приходит отсортированным по возрастанию.
func tierFor(tiers []domain.Tier, totalSpent float64) domain.Tier {
	var current domain.Tier
	for _, tier := range tiers {
		if tier.MinSpendingRequired <= totalSpent {
			current = tier
		}
	}
	return current
}

func (s *WalletServiceImpl) History(ctx context.Context, userID int64, limit, offset int) ([]domain.PointsEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	entries, err := s.repo.History(ctx, userID, limit, offset)
	if err != nil {
		s.logger.Error("ошибка получения истории баллов", zap.Error(err))
		return nil, errors.New("ошибка получения истории баллов")
	}

	return entries, nil
}

func (s *WalletServiceImpl) Tiers(ctx context.Context) ([]domain.Tier, error) {
	tiers, err := s.repo.ListTiers(ctx)
	if err != nil {
		s.logger.Error("ошибка получения уровней лояльности", zap.Error(err))
		return nil, errors.New("ошибка получения уровней лояльности")
	}
	return tiers, nil
}

func (s *WalletServiceImpl) AccrueForSpending(ctx context.Context, userID int64, amount float64) error {
	if amount <= 0 {
		return errors.New("сумма начисления должна быть положительной")
	}

	points := int(math.Floor(amount / s.cfg.AccrualUnit))

	if err := s.repo.Accrue(ctx, userID, points, amount); err != nil {
		s.logger.Error("ошибка начисления баллов",
			zap.Int64("user_id", userID),
			zap.Float64("amount", amount),
			zap.Error(err))
		return errors.New("ошибка начисления баллов")
	}

	s.events.Publish(userID, events.TopicRefreshWallet, nil)

	return nil
}
