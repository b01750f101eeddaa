package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"lotus/internal/domain"
)

type ReviewRepo struct {
	db *pgxpool.Pool
}

func NewReviewRepository(db *pgxpool.Pool) *ReviewRepo {
	return &ReviewRepo{
		db: db,
	}
}

func (r *ReviewRepo) Create(ctx context.Context, userID int64, dto domain.CreateReviewDTO) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now()

	var id int64
	err = tx.QueryRow(ctx, `
		INSERT INTO reviews (user_id, service_id, appointment_id, rating, comment, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING id
	`, userID, dto.ServiceID, dto.AppointmentID, dto.Rating, dto.Comment, now).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("ошибка создания отзыва: %w", err)
	}

	// Рейтинг услуги пересчитывается в той же транзакции.
	_, err = tx.Exec(ctx, `
		UPDATE services
		SET rating = (SELECT ROUND(AVG(rating)::numeric, 1) FROM reviews WHERE service_id = $1), updated_at = $2
		WHERE id = $1
	`, dto.ServiceID, now)
	if err != nil {
		return 0, fmt.Errorf("ошибка пересчета рейтинга услуги: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("ошибка при коммите транзакции: %w", err)
	}

	return id, nil
}

func (r *ReviewRepo) ExistsForAppointment(ctx context.Context, appointmentID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM reviews WHERE appointment_id = $1)",
		appointmentID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ошибка проверки отзыва по записи: %w", err)
	}
	return exists, nil
}

func (r *ReviewRepo) List(ctx context.Context, filter domain.ReviewFilter) ([]domain.Review, error) {
	query := "SELECT id, user_id, service_id, appointment_id, rating, COALESCE(comment, ''), created_at, updated_at FROM reviews"

	var conditions []string
	var args []interface{}
	argCount := 1

	if filter.ServiceID != nil {
		conditions = append(conditions, fmt.Sprintf("service_id = $%d", argCount))
		args = append(args, *filter.ServiceID)
		argCount++
	}

	if filter.UserID != nil {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", argCount))
		args = append(args, *filter.UserID)
		argCount++
	}

	if filter.MinRating != nil {
		conditions = append(conditions, fmt.Sprintf("rating >= $%d", argCount))
		args = append(args, *filter.MinRating)
		argCount++
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}
	defer rows.Close()

	reviews := make([]domain.Review, 0)
	for rows.Next() {
		var review domain.Review
		if err := rows.Scan(
			&review.ID,
			&review.UserID,
			&review.ServiceID,
			&review.AppointmentID,
			&review.Rating,
			&review.Comment,
			&review.CreatedAt,
			&review.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки отзыва: %w", err)
		}
		reviews = append(reviews, review)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по строкам: %w", err)
	}

	return reviews, nil
}

func (r *ReviewRepo) AverageRating(ctx context.Context, serviceID int64) (float64, error) {
	var avg float64
	err := r.db.QueryRow(ctx,
		"SELECT COALESCE(AVG(rating), 0) FROM reviews WHERE service_id = $1",
		serviceID,
	).Scan(&avg)
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчета среднего рейтинга: %w", err)
	}
	return avg, nil
}
