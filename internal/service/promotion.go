package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"lotus/internal/domain"
	"lotus/internal/events"
	"lotus/internal/repository"
)

type PromotionServiceImpl struct {
	promotionRepo   repository.PromotionRepository
	userRepo        repository.UserRepository
	appointmentRepo repository.AppointmentRepository
	catalogRepo     repository.CatalogRepository
	walletRepo      repository.WalletRepository
	events          events.Publisher
	logger          *zap.Logger
	now             func() time.Time
}

func NewPromotionService(
	promotionRepo repository.PromotionRepository,
	userRepo repository.UserRepository,
	appointmentRepo repository.AppointmentRepository,
	catalogRepo repository.CatalogRepository,
	walletRepo repository.WalletRepository,
	publisher events.Publisher,
	logger *zap.Logger,
) *PromotionServiceImpl {
	return &PromotionServiceImpl{
		promotionRepo:   promotionRepo,
		userRepo:        userRepo,
		appointmentRepo: appointmentRepo,
		catalogRepo:     catalogRepo,
		walletRepo:      walletRepo,
		events:          publisher,
		logger:          logger,
		now:             time.Now,
	}
}

func (s *PromotionServiceImpl) Create(ctx context.Context, dto domain.CreatePromotionDTO) (int64, error) {
	dto.Code = strings.ToLower(strings.TrimSpace(dto.Code))
	if dto.Code == "" {
		return 0, errors.New("код акции не может быть пустым")
	}

	if dto.TargetAudience == "" {
		dto.TargetAudience = domain.AudienceAll
	}

	existing, err := s.promotionRepo.GetByCode(ctx, dto.Code)
	if err == nil && existing != nil {
		return 0, errors.New("акция с таким кодом уже существует")
	}

	id, err := s.promotionRepo.Create(ctx, dto)
	if err != nil {
		s.logger.Error("ошибка создания акции", zap.Error(err))
		return 0, errors.New("ошибка создания акции")
	}

	s.events.Broadcast(events.TopicRefreshVouchers, nil)

	return id, nil
}

func (s *PromotionServiceImpl) GetByID(ctx context.Context, id int64) (*domain.Promotion, error) {
	promotion, err := s.promotionRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("ошибка получения акции", zap.Int64("id", id), zap.Error(err))
		return nil, errors.New("акция не найдена")
	}
	return promotion, nil
}

func (s *PromotionServiceImpl) Update(ctx context.Context, id int64, dto domain.UpdatePromotionDTO) error {
	if err := s.promotionRepo.Update(ctx, id, dto); err != nil {
		s.logger.Error("ошибка обновления акции", zap.Int64("id", id), zap.Error(err))
		return errors.New("ошибка обновления акции")
	}

	s.events.Broadcast(events.TopicRefreshVouchers, nil)

	return nil
}

func (s *PromotionServiceImpl) List(ctx context.Context, filter domain.PromotionFilter) ([]domain.Promotion, error) {
	promotions, err := s.promotionRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("ошибка получения списка акций", zap.Error(err))
		return nil, errors.New("ошибка получения списка акций")
	}
	return promotions, nil
}

func (s *PromotionServiceImpl) AvailableForUser(ctx context.Context, userID int64, items []domain.SelectionItem) ([]domain.Promotion, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, errors.New("пользователь не найден")
	}

	promotions, err := s.promotionRepo.ListForUser(ctx, userID)
	if err != nil {
		s.logger.Error("ошибка получения акций пользователя", zap.Error(err))
		return nil, errors.New("ошибка получения списка акций")
	}

	today := domain.DateOf(s.now())

	available := make([]domain.Promotion, 0)
	seenCodes := make(map[string]struct{})

	for _, p := range promotions {
		// Один и тот же код может прийти и из публичного каталога, и из
		// обмененных ваучеров пользователя.
		code := strings.ToLower(p.Code)
		if _, seen := seenCodes[code]; seen {
			continue
		}

		eligible, err := s.eligible(ctx, p, user, items, today)
		if err != nil {
			return nil, err
		}
		if !eligible {
			continue
		}

		seenCodes[code] = struct{}{}
		available = append(available, p)
	}

	return available, nil
}

// eligible прогоняет акцию через цепочку условий: активность, срок,
// тираж, область услуг и целевая аудитория. Порядок важен только для
// стоимости проверок, семантически условия независимы.
func (s *PromotionServiceImpl) eligible(ctx context.Context, p domain.Promotion, user *domain.User, items []domain.SelectionItem, today domain.CalendarDate) (bool, error) {
	if !p.IsActive {
		return false, nil
	}

	// День истечения еще действует.
	if p.ExpiryDate.Compare(today) < 0 {
		return false, nil
	}

	if !p.InStock() {
		return false, nil
	}

	if len(items) > 0 {
		applies := false
		for _, item := range items {
			if p.AppliesToService(item.ServiceID) {
				applies = true
				break
			}
		}
		if !applies {
			return false, nil
		}
	}

	switch p.TargetAudience {
	case domain.AudienceBirthday:
		if user.Birthday == nil || !user.Birthday.SameMonthDay(today) {
			return false, nil
		}
	case domain.AudienceNewClients:
		// «Для новых клиентов» считается поуслужно: достаточно одной
		// услуги из выборки, которой пользователь еще не пользовался.
		if len(items) > 0 {
			isNewSomewhere := false
			for _, item := range items {
				if !p.AppliesToService(item.ServiceID) {
					continue
				}
				completed, err := s.appointmentRepo.HasCompletedForService(ctx, user.ID, item.ServiceID)
				if err != nil {
					s.logger.Error("ошибка проверки истории услуг", zap.Error(err))
					return false, errors.New("ошибка проверки применимости акции")
				}
				if !completed {
					isNewSomewhere = true
					break
				}
			}
			if !isNewSomewhere {
				return false, nil
			}
		}
	}

	return true, nil
}

func (s *PromotionServiceImpl) Quote(ctx context.Context, userID int64, items []domain.SelectionItem, promotionID *int64) (*domain.CheckoutQuote, error) {
	if len(items) == 0 {
		return nil, errors.New("корзина пуста")
	}

	prices := make(map[int64]float64, len(items))
	var subtotal float64

	for _, item := range items {
		svc, err := s.catalogRepo.GetServiceByID(ctx, item.ServiceID)
		if err != nil {
			return nil, errors.New("услуга не найдена")
		}
		prices[item.ServiceID] = svc.EffectivePrice()
		subtotal += svc.EffectivePrice() * float64(item.Quantity)
	}

	quote := &domain.CheckoutQuote{Subtotal: subtotal, Total: subtotal}

	if promotionID == nil {
		return quote, nil
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, errors.New("пользователь не найден")
	}

	promotion, err := s.promotionRepo.GetByID(ctx, *promotionID)
	if err != nil {
		return nil, errors.New("акция не найдена")
	}

	eligible, err := s.eligible(ctx, *promotion, user, items, domain.DateOf(s.now()))
	if err != nil {
		return nil, err
	}
	if !eligible {
		return nil, errors.New("акция неприменима к выбранным услугам")
	}

	// Скидка считается только от позиций из области действия акции.
	var applicable float64
	for _, item := range items {
		if promotion.AppliesToService(item.ServiceID) {
			applicable += prices[item.ServiceID] * float64(item.Quantity)
		}
	}

	var discount float64
	switch promotion.DiscountType {
	case domain.DiscountTypePercentage:
		discount = applicable * promotion.DiscountValue / 100
	case domain.DiscountTypeFixed:
		discount = promotion.DiscountValue
	}

	if discount > applicable {
		discount = applicable
	}

	quote.Discount = discount
	quote.Total = subtotal - discount

	return quote, nil
}

func (s *PromotionServiceImpl) Redeem(ctx context.Context, userID, promotionID int64) error {
	promotion, err := s.promotionRepo.GetByID(ctx, promotionID)
	if err != nil {
		return errors.New("акция не найдена")
	}

	if promotion.PointsRequired == nil {
		return errors.New("акция не обменивается на баллы")
	}

	if !promotion.IsActive || !promotion.InStock() {
		return errors.New("акция недоступна для обмена")
	}

	// Баланс проверяется до обращения к обмену: при нехватке баллов
	// списание даже не начинается.
	wallet, err := s.walletRepo.Get(ctx, userID)
	if err != nil {
		s.logger.Error("ошибка получения кошелька", zap.Int64("user_id", userID), zap.Error(err))
		return errors.New("ошибка получения кошелька")
	}

	if wallet.Points < *promotion.PointsRequired {
		return errors.New("недостаточно баллов")
	}

	if err := s.promotionRepo.Redeem(ctx, userID, promotionID, *promotion.PointsRequired); err != nil {
		s.logger.Error("ошибка обмена баллов на ваучер",
			zap.Int64("user_id", userID),
			zap.Int64("promotion_id", promotionID),
			zap.Error(err))
		return err
	}

	s.events.Publish(userID, events.TopicRefreshVouchers, nil)
	s.events.Publish(userID, events.TopicRefreshWallet, nil)

	return nil
}

// ListRedeemable - приватный каталог: активные непубличные акции с ценой
// в баллах. Распроданные не показываются, обменять их все равно нельзя.
func (s *PromotionServiceImpl) ListRedeemable(ctx context.Context) ([]domain.Promotion, error) {
	active := true
	public := false

	promotions, err := s.promotionRepo.List(ctx, domain.PromotionFilter{
		IsActive: &active,
		IsPublic: &public,
	})
	if err != nil {
		s.logger.Error("ошибка получения каталога обмена", zap.Error(err))
		return nil, errors.New("ошибка получения списка акций")
	}

	redeemable := make([]domain.Promotion, 0, len(promotions))
	for _, p := range promotions {
		if p.PointsRequired == nil || !p.InStock() {
			continue
		}
		redeemable = append(redeemable, p)
	}

	return redeemable, nil
}

func (s *PromotionServiceImpl) ListRedeemed(ctx context.Context, userID int64) ([]domain.RedeemedVoucher, error) {
	vouchers, err := s.promotionRepo.ListRedeemedByUser(ctx, userID)
	if err != nil {
		s.logger.Error("ошибка получения обмененных ваучеров", zap.Error(err))
		return nil, errors.New("ошибка получения ваучеров")
	}
	return vouchers, nil
}
