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

type CatalogRepo struct {
	db *pgxpool.Pool
}

func NewCatalogRepository(db *pgxpool.Pool) *CatalogRepo {
	return &CatalogRepo{
		db: db,
	}
}

func (r *CatalogRepo) CreateService(ctx context.Context, dto domain.CreateServiceDTO) (int64, error) {
	query := `
		INSERT INTO services (name, description, price, discount_price, duration, category_id, rating, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, 0, true, $7, $7)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRow(ctx, query,
		dto.Name,
		dto.Description,
		dto.Price,
		dto.DiscountPrice,
		dto.Duration,
		dto.CategoryID,
		time.Now(),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("ошибка создания услуги: %w", err)
	}

	return id, nil
}

const serviceColumns = `id, name, description, price, discount_price, duration, category_id, rating, COALESCE(photo_url, ''), is_active, created_at, updated_at`

func scanService(row pgx.Row) (*domain.Service, error) {
	var service domain.Service
	err := row.Scan(
		&service.ID,
		&service.Name,
		&service.Description,
		&service.Price,
		&service.DiscountPrice,
		&service.Duration,
		&service.CategoryID,
		&service.Rating,
		&service.PhotoURL,
		&service.IsActive,
		&service.CreatedAt,
		&service.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("услуга не найдена: %w", err)
		}
		return nil, fmt.Errorf("ошибка получения услуги: %w", err)
	}
	return &service, nil
}

func (r *CatalogRepo) GetServiceByID(ctx context.Context, id int64) (*domain.Service, error) {
	query := fmt.Sprintf("SELECT %s FROM services WHERE id = $1", serviceColumns)
	return scanService(r.db.QueryRow(ctx, query, id))
}

func (r *CatalogRepo) UpdateService(ctx context.Context, id int64, dto domain.UpdateServiceDTO) error {
	var updateFields []string
	var args []interface{}
	argCount := 1

	if dto.Name != nil {
		updateFields = append(updateFields, fmt.Sprintf("name = $%d", argCount))
		args = append(args, *dto.Name)
		argCount++
	}

	if dto.Description != nil {
		updateFields = append(updateFields, fmt.Sprintf("description = $%d", argCount))
		args = append(args, *dto.Description)
		argCount++
	}

	if dto.Price != nil {
		updateFields = append(updateFields, fmt.Sprintf("price = $%d", argCount))
		args = append(args, *dto.Price)
		argCount++
	}

	if dto.DiscountPrice != nil {
		updateFields = append(updateFields, fmt.Sprintf("discount_price = $%d", argCount))
		args = append(args, *dto.DiscountPrice)
		argCount++
	}

	if dto.Duration != nil {
		updateFields = append(updateFields, fmt.Sprintf("duration = $%d", argCount))
		args = append(args, *dto.Duration)
		argCount++
	}

	if dto.CategoryID != nil {
		updateFields = append(updateFields, fmt.Sprintf("category_id = $%d", argCount))
		args = append(args, *dto.CategoryID)
		argCount++
	}

	if dto.IsActive != nil {
		updateFields = append(updateFields, fmt.Sprintf("is_active = $%d", argCount))
		args = append(args, *dto.IsActive)
		argCount++
	}

	if len(updateFields) == 0 {
		return nil
	}

	updateFields = append(updateFields, fmt.Sprintf("updated_at = $%d", argCount))
	args = append(args, time.Now())
	argCount++

	args = append(args, id)
	query := fmt.Sprintf("UPDATE services SET %s WHERE id = $%d", strings.Join(updateFields, ", "), argCount)

	_, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("ошибка обновления услуги: %w", err)
	}

	return nil
}

func (r *CatalogRepo) UpdateServicePhoto(ctx context.Context, id int64, photoURL string) error {
	_, err := r.db.Exec(ctx,
		"UPDATE services SET photo_url = $1, updated_at = $2 WHERE id = $3",
		photoURL, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("ошибка обновления фото услуги: %w", err)
	}
	return nil
}

func (r *CatalogRepo) DeactivateService(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx,
		"UPDATE services SET is_active = false, updated_at = $1 WHERE id = $2",
		time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("ошибка деактивации услуги: %w", err)
	}
	return nil
}

func buildServiceConditions(filter domain.ServiceFilter) ([]string, []interface{}) {
	var conditions []string
	var args []interface{}
	argCount := 1

	if filter.CategoryID != nil {
		conditions = append(conditions, fmt.Sprintf("category_id = $%d", argCount))
		args = append(args, *filter.CategoryID)
		argCount++
	}

	if filter.IsActive != nil {
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", argCount))
		args = append(args, *filter.IsActive)
		argCount++
	}

	if filter.Search != nil {
		conditions = append(conditions, fmt.Sprintf("name ILIKE $%d", argCount))
		args = append(args, "%"+*filter.Search+"%")
		argCount++
	}

	return conditions, args
}

func (r *CatalogRepo) ListServices(ctx context.Context, filter domain.ServiceFilter) ([]domain.Service, error) {
	query := fmt.Sprintf("SELECT %s FROM services", serviceColumns)

	conditions, args := buildServiceConditions(filter)
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY name"

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

	services := make([]domain.Service, 0)
	for rows.Next() {
		var service domain.Service
		if err := rows.Scan(
			&service.ID,
			&service.Name,
			&service.Description,
			&service.Price,
			&service.DiscountPrice,
			&service.Duration,
			&service.CategoryID,
			&service.Rating,
			&service.PhotoURL,
			&service.IsActive,
			&service.CreatedAt,
			&service.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки услуги: %w", err)
		}
		services = append(services, service)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по строкам: %w", err)
	}

	return services, nil
}

func (r *CatalogRepo) CountServices(ctx context.Context, filter domain.ServiceFilter) (int, error) {
	query := "SELECT COUNT(*) FROM services"

	conditions, args := buildServiceConditions(filter)
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	var count int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("ошибка подсчета услуг: %w", err)
	}

	return count, nil
}

func (r *CatalogRepo) CreateCategory(ctx context.Context, name string) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx,
		"INSERT INTO service_categories (name, created_at) VALUES ($1, $2) RETURNING id",
		name, time.Now(),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("ошибка создания категории: %w", err)
	}
	return id, nil
}

func (r *CatalogRepo) ListCategories(ctx context.Context) ([]domain.ServiceCategory, error) {
	rows, err := r.db.Query(ctx, "SELECT id, name, created_at FROM service_categories ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}
	defer rows.Close()

	categories := make([]domain.ServiceCategory, 0)
	for rows.Next() {
		var category domain.ServiceCategory
		if err := rows.Scan(&category.ID, &category.Name, &category.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки категории: %w", err)
		}
		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по строкам: %w", err)
	}

	return categories, nil
}
