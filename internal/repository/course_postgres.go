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

type CourseRepo struct {
	db *pgxpool.Pool
}

func NewCourseRepository(db *pgxpool.Pool) *CourseRepo {
	return &CourseRepo{
		db: db,
	}
}

func (r *CourseRepo) Create(ctx context.Context, dto domain.CreateCourseDTO) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now()

	var id int64
	err = tx.QueryRow(ctx, `
		INSERT INTO treatment_courses (client_id, service_id, status, total_sessions, created_at, updated_at)
		VALUES ($1, $2, 'active', $3, $4, $4)
		RETURNING id
	`, dto.ClientID, dto.ServiceID, dto.TotalSessions, now).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("ошибка создания курса: %w", err)
	}

	// Сеансы создаются сразу все, в статусе pending.
	for i := 1; i <= dto.TotalSessions; i++ {
		_, err = tx.Exec(ctx, `
			INSERT INTO course_sessions (course_id, session_number, status, updated_at)
			VALUES ($1, $2, 'pending', $3)
		`, id, i, now)
		if err != nil {
			return 0, fmt.Errorf("ошибка создания сеанса курса: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("ошибка при коммите транзакции: %w", err)
	}

	return id, nil
}

func (r *CourseRepo) loadSessions(ctx context.Context, courses []domain.TreatmentCourse) error {
	if len(courses) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(courses))
	index := make(map[int64]int, len(courses))
	for i, c := range courses {
		ids = append(ids, c.ID)
		index[c.ID] = i
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, course_id, session_number, status, session_date, COALESCE(therapist_notes, ''), COALESCE(notes, ''), updated_at
		FROM course_sessions
		WHERE course_id = ANY($1)
		ORDER BY course_id, session_number
	`, ids)
	if err != nil {
		return fmt.Errorf("ошибка получения сеансов курса: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var session domain.CourseSession
		var date *time.Time

		if err := rows.Scan(
			&session.ID,
			&session.CourseID,
			&session.SessionNumber,
			&session.Status,
			&date,
			&session.TherapistNotes,
			&session.Notes,
			&session.UpdatedAt,
		); err != nil {
			return fmt.Errorf("ошибка сканирования сеанса: %w", err)
		}

		if date != nil {
			d := domain.DateOf(*date)
			session.Date = &d
		}

		i := index[session.CourseID]
		courses[i].Sessions = append(courses[i].Sessions, session)
	}

	return rows.Err()
}

const courseColumns = `c.id, c.client_id, c.service_id, c.status, c.total_sessions, c.created_at, c.updated_at, s.name AS service_name`

func (r *CourseRepo) queryCourses(ctx context.Context, query string, args ...interface{}) ([]domain.TreatmentCourse, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}
	defer rows.Close()

	courses := make([]domain.TreatmentCourse, 0)
	for rows.Next() {
		var course domain.TreatmentCourse
		if err := rows.Scan(
			&course.ID,
			&course.ClientID,
			&course.ServiceID,
			&course.Status,
			&course.TotalSessions,
			&course.CreatedAt,
			&course.UpdatedAt,
			&course.ServiceName,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки курса: %w", err)
		}
		courses = append(courses, course)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по строкам: %w", err)
	}

	if err := r.loadSessions(ctx, courses); err != nil {
		return nil, err
	}

	return courses, nil
}

func (r *CourseRepo) GetByID(ctx context.Context, id int64) (*domain.TreatmentCourse, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM treatment_courses c
		JOIN services s ON c.service_id = s.id
		WHERE c.id = $1
	`, courseColumns)

	courses, err := r.queryCourses(ctx, query, id)
	if err != nil {
		return nil, err
	}

	if len(courses) == 0 {
		return nil, fmt.Errorf("курс с ID %d не найден: %w", id, pgx.ErrNoRows)
	}

	return &courses[0], nil
}

func (r *CourseRepo) ListByClient(ctx context.Context, clientID int64) ([]domain.TreatmentCourse, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM treatment_courses c
		JOIN services s ON c.service_id = s.id
		WHERE c.client_id = $1
		ORDER BY c.created_at DESC
	`, courseColumns)

	return r.queryCourses(ctx, query, clientID)
}

func (r *CourseRepo) UpdateSession(ctx context.Context, courseID int64, sessionNumber int, dto domain.UpdateCourseSessionDTO) error {
	var updateFields []string
	var args []interface{}
	argCount := 1

	if dto.Status != nil {
		updateFields = append(updateFields, fmt.Sprintf("status = $%d", argCount))
		args = append(args, *dto.Status)
		argCount++
	}

	if dto.Date != nil {
		updateFields = append(updateFields, fmt.Sprintf("session_date = $%d", argCount))
		args = append(args, dto.Date.StartOfDay())
		argCount++
	}

	if dto.TherapistNotes != nil {
		updateFields = append(updateFields, fmt.Sprintf("therapist_notes = $%d", argCount))
		args = append(args, *dto.TherapistNotes)
		argCount++
	}

	if dto.Notes != nil {
		updateFields = append(updateFields, fmt.Sprintf("notes = $%d", argCount))
		args = append(args, *dto.Notes)
		argCount++
	}

	if len(updateFields) == 0 {
		return nil
	}

	updateFields = append(updateFields, fmt.Sprintf("updated_at = $%d", argCount))
	args = append(args, time.Now())
	argCount++

	args = append(args, courseID, sessionNumber)
	query := fmt.Sprintf(
		"UPDATE course_sessions SET %s WHERE course_id = $%d AND session_number = $%d",
		strings.Join(updateFields, ", "), argCount, argCount+1,
	)

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("ошибка обновления сеанса: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return errors.New("сеанс не найден")
	}

	return nil
}
