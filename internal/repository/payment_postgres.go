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

type PaymentRepo struct {
	db *pgxpool.Pool
}

func NewPaymentRepository(db *pgxpool.Pool) *PaymentRepo {
	return &PaymentRepo{
		db: db,
	}
}

func (r *PaymentRepo) Create(ctx context.Context, payment domain.Payment) (int64, error) {
	query := `
		INSERT INTO payments (user_id, booking_group_id, amount, method, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRow(ctx, query,
		payment.UserID,
		payment.BookingGroupID,
		payment.Amount,
		payment.Method,
		payment.Status,
		time.Now(),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("ошибка создания платежа: %w", err)
	}

	return id, nil
}

const paymentColumns = `id, user_id, booking_group_id, amount, method, status, checkout_session_id, created_at, updated_at`

func scanPayment(row pgx.Row) (*domain.Payment, error) {
	var payment domain.Payment
	err := row.Scan(
		&payment.ID,
		&payment.UserID,
		&payment.BookingGroupID,
		&payment.Amount,
		&payment.Method,
		&payment.Status,
		&payment.CheckoutSessionID,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("платеж не найден: %w", err)
		}
		return nil, fmt.Errorf("ошибка получения платежа: %w", err)
	}
	return &payment, nil
}

func (r *PaymentRepo) GetByID(ctx context.Context, id int64) (*domain.Payment, error) {
	query := fmt.Sprintf("SELECT %s FROM payments WHERE id = $1", paymentColumns)
	return scanPayment(r.db.QueryRow(ctx, query, id))
}

func (r *PaymentRepo) GetByCheckoutSession(ctx context.Context, sessionID string) (*domain.Payment, error) {
	query := fmt.Sprintf("SELECT %s FROM payments WHERE checkout_session_id = $1", paymentColumns)
	return scanPayment(r.db.QueryRow(ctx, query, sessionID))
}

func (r *PaymentRepo) UpdateStatus(ctx context.Context, id int64, status domain.PaymentStatus) error {
	_, err := r.db.Exec(ctx,
		"UPDATE payments SET status = $1, updated_at = $2 WHERE id = $3",
		status, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("ошибка обновления статуса платежа: %w", err)
	}
	return nil
}

func (r *PaymentRepo) SetCheckoutSession(ctx context.Context, id int64, sessionID string) error {
	_, err := r.db.Exec(ctx,
		"UPDATE payments SET checkout_session_id = $1, updated_at = $2 WHERE id = $3",
		sessionID, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("ошибка привязки сессии оплаты: %w", err)
	}
	return nil
}
