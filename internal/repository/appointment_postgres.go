package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lotus/internal/domain"
)

type AppointmentRepo struct {
	db *pgxpool.Pool
}

func NewAppointmentRepository(db *pgxpool.Pool) *AppointmentRepo {
	return &AppointmentRepo{
		db: db,
	}
}

func (r *AppointmentRepo) Create(ctx context.Context, appointment domain.Appointment) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	// Слот проверяется еще раз внутри транзакции: между валидацией в
	// сервисе и вставкой мог забронироваться кто-то еще. Записи одной
	// группы делят слот, это один визит.
	checkQuery := `
		SELECT COUNT(*)
		FROM appointments
		WHERE user_id = $1
		AND appointment_date = $2
		AND appointment_time = $3
		AND booking_group_id != $4
		AND status != 'cancelled'
	`

	var count int
	err = tx.QueryRow(ctx, checkQuery, appointment.UserID, appointment.Date.StartOfDay(), appointment.Time, appointment.BookingGroupID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("ошибка проверки доступности слота: %w", err)
	}

	if count > 0 {
		return 0, errors.New("выбранный слот времени уже занят")
	}

	query := `
		INSERT INTO appointments (user_id, service_id, appointment_date, appointment_time, status, payment_status, booking_group_id, promotion_id, price, duration_weeks, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
		RETURNING id
	`

	now := time.Now()
	var id int64
	err = tx.QueryRow(ctx, query,
		appointment.UserID,
		appointment.ServiceID,
		appointment.Date.StartOfDay(),
		appointment.Time,
		appointment.Status,
		appointment.PaymentStatus,
		appointment.BookingGroupID,
		appointment.PromotionID,
		appointment.Price,
		appointment.DurationWeeks,
		now,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("ошибка создания записи: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("ошибка при коммите транзакции: %w", err)
	}

	return id, nil
}

const appointmentColumns = `a.id, a.user_id, a.service_id, a.appointment_date, a.appointment_time, a.status, a.payment_status, a.booking_group_id, a.promotion_id, a.price, a.duration_weeks, a.created_at, a.updated_at, s.name AS service_name`

func scanAppointment(row pgx.Row) (*domain.Appointment, error) {
	var appointment domain.Appointment
	var date time.Time

	err := row.Scan(
		&appointment.ID,
		&appointment.UserID,
		&appointment.ServiceID,
		&date,
		&appointment.Time,
		&appointment.Status,
		&appointment.PaymentStatus,
		&appointment.BookingGroupID,
		&appointment.PromotionID,
		&appointment.Price,
		&appointment.DurationWeeks,
		&appointment.CreatedAt,
		&appointment.UpdatedAt,
		&appointment.ServiceName,
	)
	if err != nil {
		return nil, err
	}

	appointment.Date = domain.DateOf(date)
	return &appointment, nil
}

func (r *AppointmentRepo) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM appointments a
		JOIN services s ON a.service_id = s.id
		WHERE a.id = $1
	`, appointmentColumns)

	appointment, err := scanAppointment(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("запись с ID %d не найдена: %w", id, err)
		}
		return nil, fmt.Errorf("ошибка получения записи: %w", err)
	}

	return appointment, nil
}

func (r *AppointmentRepo) UpdateStatus(ctx context.Context, id int64, status domain.AppointmentStatus) error {
	_, err := r.db.Exec(ctx,
		"UPDATE appointments SET status = $1, updated_at = $2 WHERE id = $3",
		status, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("ошибка обновления статуса записи: %w", err)
	}
	return nil
}

func (r *AppointmentRepo) queryAppointments(ctx context.Context, query string, args ...interface{}) ([]domain.Appointment, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}
	defer rows.Close()

	appointments := make([]domain.Appointment, 0)
	for rows.Next() {
		var appointment domain.Appointment
		var date time.Time

		if err := rows.Scan(
			&appointment.ID,
			&appointment.UserID,
			&appointment.ServiceID,
			&date,
			&appointment.Time,
			&appointment.Status,
			&appointment.PaymentStatus,
			&appointment.BookingGroupID,
			&appointment.PromotionID,
			&appointment.Price,
			&appointment.DurationWeeks,
			&appointment.CreatedAt,
			&appointment.UpdatedAt,
			&appointment.ServiceName,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки записи: %w", err)
		}

		appointment.Date = domain.DateOf(date)
		appointments = append(appointments, appointment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по строкам: %w", err)
	}

	return appointments, nil
}

func buildAppointmentConditions(filter domain.AppointmentFilter) ([]string, []interface{}) {
	var conditions []string
	var args []interface{}
	argCount := 1

	if filter.UserID != nil {
		conditions = append(conditions, fmt.Sprintf("a.user_id = $%d", argCount))
		args = append(args, *filter.UserID)
		argCount++
	}

	if filter.ServiceID != nil {
		conditions = append(conditions, fmt.Sprintf("a.service_id = $%d", argCount))
		args = append(args, *filter.ServiceID)
		argCount++
	}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("a.status = $%d", argCount))
		args = append(args, *filter.Status)
		argCount++
	}

	if filter.ExcludeStatus != nil {
		conditions = append(conditions, fmt.Sprintf("a.status != $%d", argCount))
		args = append(args, *filter.ExcludeStatus)
		argCount++
	}

	if filter.StartDate != nil {
		conditions = append(conditions, fmt.Sprintf("a.appointment_date >= $%d", argCount))
		args = append(args, *filter.StartDate)
		argCount++
	}

	if filter.EndDate != nil {
		conditions = append(conditions, fmt.Sprintf("a.appointment_date <= $%d", argCount))
		args = append(args, *filter.EndDate)
		argCount++
	}

	return conditions, args
}

func (r *AppointmentRepo) List(ctx context.Context, filter domain.AppointmentFilter) ([]domain.Appointment, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM appointments a
		JOIN services s ON a.service_id = s.id
	`, appointmentColumns)

	conditions, args := buildAppointmentConditions(filter)
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY a.appointment_date DESC, a.appointment_time DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	return r.queryAppointments(ctx, query, args...)
}

func (r *AppointmentRepo) CountByFilter(ctx context.Context, filter domain.AppointmentFilter) (int, error) {
	query := "SELECT COUNT(*) FROM appointments a"

	conditions, args := buildAppointmentConditions(filter)
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	var count int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("ошибка подсчета записей: %w", err)
	}

	return count, nil
}

func (r *AppointmentRepo) ListByGroup(ctx context.Context, bookingGroupID string) ([]domain.Appointment, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM appointments a
		JOIN services s ON a.service_id = s.id
		WHERE a.booking_group_id = $1
		ORDER BY a.id
	`, appointmentColumns)

	return r.queryAppointments(ctx, query, bookingGroupID)
}

func (r *AppointmentRepo) MarkGroupPaid(ctx context.Context, bookingGroupID string) error {
	_, err := r.db.Exec(ctx,
		"UPDATE appointments SET payment_status = $1, updated_at = $2 WHERE booking_group_id = $3",
		domain.PaymentStatePaid, time.Now(), bookingGroupID,
	)
	if err != nil {
		return fmt.Errorf("ошибка отметки оплаты группы записей: %w", err)
	}
	return nil
}

func (r *AppointmentRepo) BusyTimes(ctx context.Context, userID int64, date domain.CalendarDate) ([]string, error) {
	query := `
		SELECT appointment_time
		FROM appointments
		WHERE user_id = $1
		AND appointment_date = $2
		AND status != 'cancelled'
	`

	rows, err := r.db.Query(ctx, query, userID, date.StartOfDay())
	if err != nil {
		return nil, fmt.Errorf("ошибка получения занятых слотов: %w", err)
	}
	defer rows.Close()

	times := make([]string, 0)
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("ошибка сканирования слота: %w", err)
		}
		times = append(times, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при обработке результатов: %w", err)
	}

	return times, nil
}

func (r *AppointmentRepo) HasCompletedForService(ctx context.Context, userID, serviceID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE user_id = $1 AND service_id = $2 AND status = 'completed'
		)
	`

	var exists bool
	if err := r.db.QueryRow(ctx, query, userID, serviceID).Scan(&exists); err != nil {
		return false, fmt.Errorf("ошибка проверки завершенных записей: %w", err)
	}

	return exists, nil
}

func (r *AppointmentRepo) ListStartingBetween(ctx context.Context, from, to time.Time) ([]domain.Appointment, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM appointments a
		JOIN services s ON a.service_id = s.id
		WHERE a.status IN ('pending', 'upcoming', 'in-progress')
		AND a.appointment_date + a.appointment_time::time >= $1
		AND a.appointment_date + a.appointment_time::time <= $2
		ORDER BY a.appointment_date, a.appointment_time
	`, appointmentColumns)

	return r.queryAppointments(ctx, query, from, to)
}
