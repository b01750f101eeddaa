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

type PromotionRepo struct {
	db *pgxpool.Pool
}

func NewPromotionRepository(db *pgxpool.Pool) *PromotionRepo {
	return &PromotionRepo{
		db: db,
	}
}

func (r *PromotionRepo) Create(ctx context.Context, dto domain.CreatePromotionDTO) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	audience := dto.TargetAudience
	if audience == "" {
		audience = domain.AudienceAll
	}

	query := `
		INSERT INTO promotions (code, name, description, discount_type, discount_value, expiry_date, is_active, is_public, target_audience, stock, points_required, created_at, updated_at)
		VALUES (LOWER($1), $2, $3, $4, $5, $6, true, $7, $8, $9, $10, $11, $11)
		RETURNING id
	`

	var id int64
	err = tx.QueryRow(ctx, query,
		dto.Code,
		dto.Name,
		dto.Description,
		dto.DiscountType,
		dto.DiscountValue,
		dto.ExpiryDate.StartOfDay(),
		dto.IsPublic,
		audience,
		dto.Stock,
		dto.PointsRequired,
		time.Now(),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("ошибка создания акции: %w", err)
	}

	for _, serviceID := range dto.ApplicableServiceIDs {
		_, err = tx.Exec(ctx,
			"INSERT INTO promotion_services (promotion_id, service_id) VALUES ($1, $2)",
			id, serviceID,
		)
		if err != nil {
			return 0, fmt.Errorf("ошибка привязки акции к услуге: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("ошибка при коммите транзакции: %w", err)
	}

	return id, nil
}

const promotionColumns = `p.id, p.code, p.name, p.description, p.discount_type, p.discount_value, p.expiry_date, p.is_active, p.is_public, p.target_audience, p.stock, p.points_required, p.created_at, p.updated_at`

func (r *PromotionRepo) scanPromotionRows(rows pgx.Rows) ([]domain.Promotion, error) {
	promotions := make([]domain.Promotion, 0)
	for rows.Next() {
		var promotion domain.Promotion
		var expiry time.Time

		if err := rows.Scan(
			&promotion.ID,
			&promotion.Code,
			&promotion.Name,
			&promotion.Description,
			&promotion.DiscountType,
			&promotion.DiscountValue,
			&expiry,
			&promotion.IsActive,
			&promotion.IsPublic,
			&promotion.TargetAudience,
			&promotion.Stock,
			&promotion.PointsRequired,
			&promotion.CreatedAt,
			&promotion.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки акции: %w", err)
		}

		promotion.ExpiryDate = domain.DateOf(expiry)
		promotions = append(promotions, promotion)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по строкам: %w", err)
	}

	return promotions, nil
}

// loadServiceLinks дочитывает привязки акций к услугам одним запросом.
func (r *PromotionRepo) loadServiceLinks(ctx context.Context, promotions []domain.Promotion) error {
	if len(promotions) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(promotions))
	index := make(map[int64]int, len(promotions))
	for i, p := range promotions {
		ids = append(ids, p.ID)
		index[p.ID] = i
	}

	rows, err := r.db.Query(ctx,
		"SELECT promotion_id, service_id FROM promotion_services WHERE promotion_id = ANY($1)",
		ids,
	)
	if err != nil {
		return fmt.Errorf("ошибка получения привязок акций: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var promotionID, serviceID int64
		if err := rows.Scan(&promotionID, &serviceID); err != nil {
			return fmt.Errorf("ошибка сканирования привязки акции: %w", err)
		}
		i := index[promotionID]
		promotions[i].ApplicableServiceIDs = append(promotions[i].ApplicableServiceIDs, serviceID)
	}

	return rows.Err()
}

func (r *PromotionRepo) getPromotion(ctx context.Context, condition string, arg interface{}) (*domain.Promotion, error) {
	query := fmt.Sprintf("SELECT %s FROM promotions p WHERE %s", promotionColumns, condition)

	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}
	defer rows.Close()

	promotions, err := r.scanPromotionRows(rows)
	if err != nil {
		return nil, err
	}

	if len(promotions) == 0 {
		return nil, errors.New("акция не найдена")
	}

	if err := r.loadServiceLinks(ctx, promotions); err != nil {
		return nil, err
	}

	return &promotions[0], nil
}

func (r *PromotionRepo) GetByID(ctx context.Context, id int64) (*domain.Promotion, error) {
	return r.getPromotion(ctx, "p.id = $1", id)
}

func (r *PromotionRepo) GetByCode(ctx context.Context, code string) (*domain.Promotion, error) {
	return r.getPromotion(ctx, "p.code = LOWER($1)", code)
}

func (r *PromotionRepo) Update(ctx context.Context, id int64, dto domain.UpdatePromotionDTO) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

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

	if dto.DiscountValue != nil {
		updateFields = append(updateFields, fmt.Sprintf("discount_value = $%d", argCount))
		args = append(args, *dto.DiscountValue)
		argCount++
	}

	if dto.ExpiryDate != nil {
		updateFields = append(updateFields, fmt.Sprintf("expiry_date = $%d", argCount))
		args = append(args, dto.ExpiryDate.StartOfDay())
		argCount++
	}

	if dto.IsActive != nil {
		updateFields = append(updateFields, fmt.Sprintf("is_active = $%d", argCount))
		args = append(args, *dto.IsActive)
		argCount++
	}

	if dto.TargetAudience != nil {
		updateFields = append(updateFields, fmt.Sprintf("target_audience = $%d", argCount))
		args = append(args, *dto.TargetAudience)
		argCount++
	}

	if dto.Stock != nil {
		updateFields = append(updateFields, fmt.Sprintf("stock = $%d", argCount))
		args = append(args, *dto.Stock)
		argCount++
	}

	if len(updateFields) > 0 {
		updateFields = append(updateFields, fmt.Sprintf("updated_at = $%d", argCount))
		args = append(args, time.Now())
		argCount++

		args = append(args, id)
		query := fmt.Sprintf("UPDATE promotions SET %s WHERE id = $%d", strings.Join(updateFields, ", "), argCount)

		if _, err = tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("ошибка обновления акции: %w", err)
		}
	}

	if dto.ApplicableServiceIDs != nil {
		if _, err = tx.Exec(ctx, "DELETE FROM promotion_services WHERE promotion_id = $1", id); err != nil {
			return fmt.Errorf("ошибка очистки привязок акции: %w", err)
		}
		for _, serviceID := range *dto.ApplicableServiceIDs {
			if _, err = tx.Exec(ctx,
				"INSERT INTO promotion_services (promotion_id, service_id) VALUES ($1, $2)",
				id, serviceID,
			); err != nil {
				return fmt.Errorf("ошибка привязки акции к услуге: %w", err)
			}
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("ошибка при коммите транзакции: %w", err)
	}

	return nil
}

func (r *PromotionRepo) List(ctx context.Context, filter domain.PromotionFilter) ([]domain.Promotion, error) {
	query := fmt.Sprintf("SELECT %s FROM promotions p", promotionColumns)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filter.IsActive != nil {
		conditions = append(conditions, fmt.Sprintf("p.is_active = $%d", argCount))
		args = append(args, *filter.IsActive)
		argCount++
	}

	if filter.IsPublic != nil {
		conditions = append(conditions, fmt.Sprintf("p.is_public = $%d", argCount))
		args = append(args, *filter.IsPublic)
		argCount++
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY p.expiry_date"

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

	promotions, err := r.scanPromotionRows(rows)
	if err != nil {
		return nil, err
	}

	if err := r.loadServiceLinks(ctx, promotions); err != nil {
		return nil, err
	}

	return promotions, nil
}

func (r *PromotionRepo) ListForUser(ctx context.Context, userID int64) ([]domain.Promotion, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM promotions p
		WHERE p.is_active = true
		AND (p.is_public = true OR EXISTS (
			SELECT 1 FROM redeemed_vouchers rv
			WHERE rv.promotion_id = p.id AND rv.user_id = $1 AND rv.redeemed_count > 0
		))
		ORDER BY p.expiry_date
	`, promotionColumns)

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}
	defer rows.Close()

	promotions, err := r.scanPromotionRows(rows)
	if err != nil {
		return nil, err
	}

	if err := r.loadServiceLinks(ctx, promotions); err != nil {
		return nil, err
	}

	return promotions, nil
}

func (r *PromotionRepo) ListRedeemedByUser(ctx context.Context, userID int64) ([]domain.RedeemedVoucher, error) {
	query := fmt.Sprintf(`
		SELECT rv.promotion_id, rv.user_id, rv.redeemed_count, rv.updated_at, %s
		FROM redeemed_vouchers rv
		JOIN promotions p ON rv.promotion_id = p.id
		WHERE rv.user_id = $1 AND rv.redeemed_count > 0
		ORDER BY rv.updated_at DESC
	`, promotionColumns)

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}
	defer rows.Close()

	vouchers := make([]domain.RedeemedVoucher, 0)
	for rows.Next() {
		var voucher domain.RedeemedVoucher
		var expiry time.Time

		if err := rows.Scan(
			&voucher.PromotionID,
			&voucher.UserID,
			&voucher.RedeemedCount,
			&voucher.UpdatedAt,
			&voucher.Promotion.ID,
			&voucher.Promotion.Code,
			&voucher.Promotion.Name,
			&voucher.Promotion.Description,
			&voucher.Promotion.DiscountType,
			&voucher.Promotion.DiscountValue,
			&expiry,
			&voucher.Promotion.IsActive,
			&voucher.Promotion.IsPublic,
			&voucher.Promotion.TargetAudience,
			&voucher.Promotion.Stock,
			&voucher.Promotion.PointsRequired,
			&voucher.Promotion.CreatedAt,
			&voucher.Promotion.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования ваучера: %w", err)
		}

		voucher.Promotion.ExpiryDate = domain.DateOf(expiry)
		vouchers = append(vouchers, voucher)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по строкам: %w", err)
	}

	return vouchers, nil
}

// Redeem выполняет обмен баллов на ваучер одной транзакцией: списание
// баллов, запись в историю, уменьшение тиража, инкремент счетчика обменов.
func (r *PromotionRepo) Redeem(ctx context.Context, userID, promotionID int64, pointsRequired int) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	var points int
	err = tx.QueryRow(ctx,
		"SELECT points FROM wallets WHERE user_id = $1 FOR UPDATE",
		userID,
	).Scan(&points)
	if err != nil {
		return fmt.Errorf("ошибка блокировки кошелька: %w", err)
	}

	if points < pointsRequired {
		return errors.New("недостаточно баллов")
	}

	now := time.Now()

	_, err = tx.Exec(ctx,
		"UPDATE wallets SET points = points - $1, updated_at = $2 WHERE user_id = $3",
		pointsRequired, now, userID,
	)
	if err != nil {
		return fmt.Errorf("ошибка списания баллов: %w", err)
	}

	_, err = tx.Exec(ctx,
		"INSERT INTO points_history (user_id, delta, reason, created_at) VALUES ($1, $2, $3, $4)",
		userID, -pointsRequired, domain.PointsReasonRedemption, now,
	)
	if err != nil {
		return fmt.Errorf("ошибка записи истории баллов: %w", err)
	}

	tag, err := tx.Exec(ctx,
		"UPDATE promotions SET stock = stock - 1, updated_at = $1 WHERE id = $2 AND stock IS NOT NULL AND stock > 0",
		now, promotionID,
	)
	if err != nil {
		return fmt.Errorf("ошибка уменьшения тиража акции: %w", err)
	}

	if tag.RowsAffected() == 0 {
		// Тираж либо не ограничен, либо исчерпан; различаем отдельным запросом.
		var stock *int
		if err := tx.QueryRow(ctx, "SELECT stock FROM promotions WHERE id = $1", promotionID).Scan(&stock); err != nil {
			return fmt.Errorf("ошибка проверки тиража акции: %w", err)
		}
		if stock != nil && *stock <= 0 {
			return errors.New("тираж акции исчерпан")
		}
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO redeemed_vouchers (promotion_id, user_id, redeemed_count, updated_at)
		VALUES ($1, $2, 1, $3)
		ON CONFLICT (promotion_id, user_id)
		DO UPDATE SET redeemed_count = redeemed_vouchers.redeemed_count + 1, updated_at = $3
	`, promotionID, userID, now)
	if err != nil {
		return fmt.Errorf("ошибка учета обмена ваучера: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("ошибка при коммите транзакции: %w", err)
	}

	return nil
}
