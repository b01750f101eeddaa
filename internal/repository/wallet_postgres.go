package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lotus/internal/domain"
)

type WalletRepo struct {
	db *pgxpool.Pool
}

func NewWalletRepository(db *pgxpool.Pool) *WalletRepo {
	return &WalletRepo{
		db: db,
	}
}

func (r *WalletRepo) Get(ctx context.Context, userID int64) (*domain.Wallet, error) {
	query := "SELECT user_id, points, total_spent, updated_at FROM wallets WHERE user_id = $1"

	var wallet domain.Wallet
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&wallet.UserID,
		&wallet.Points,
		&wallet.TotalSpent,
		&wallet.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("кошелек не найден: %w", err)
		}
		return nil, fmt.Errorf("ошибка получения кошелька: %w", err)
	}

	return &wallet, nil
}

func (r *WalletRepo) History(ctx context.Context, userID int64, limit, offset int) ([]domain.PointsEntry, error) {
	query := `
		SELECT id, user_id, delta, reason, created_at
		FROM points_history
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.PointsEntry, 0)
	for rows.Next() {
		var entry domain.PointsEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.Delta,
			&entry.Reason,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования записи истории: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по строкам: %w", err)
	}

	return entries, nil
}

func (r *WalletRepo) ListTiers(ctx context.Context) ([]domain.Tier, error) {
	rows, err := r.db.Query(ctx,
		"SELECT level, name, min_spending_required, color FROM tiers ORDER BY level",
	)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}
	defer rows.Close()

	tiers := make([]domain.Tier, 0)
	for rows.Next() {
		var tier domain.Tier
		if err := rows.Scan(&tier.Level, &tier.Name, &tier.MinSpendingRequired, &tier.Color); err != nil {
			return nil, fmt.Errorf("ошибка сканирования уровня: %w", err)
		}
		tiers = append(tiers, tier)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по строкам: %w", err)
	}

	return tiers, nil
}

func (r *WalletRepo) Accrue(ctx context.Context, userID int64, points int, spent float64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now()

	_, err = tx.Exec(ctx,
		"UPDATE wallets SET points = points + $1, total_spent = total_spent + $2, updated_at = $3 WHERE user_id = $4",
		points, spent, now, userID,
	)
	if err != nil {
		return fmt.Errorf("ошибка начисления баллов: %w", err)
	}

	if points != 0 {
		_, err = tx.Exec(ctx,
			"INSERT INTO points_history (user_id, delta, reason, created_at) VALUES ($1, $2, $3, $4)",
			userID, points, domain.PointsReasonAccrual, now,
		)
		if err != nil {
			return fmt.Errorf("ошибка записи истории баллов: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("ошибка при коммите транзакции: %w", err)
	}

	return nil
}
