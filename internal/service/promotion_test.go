package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"lotus/internal/domain"
	"lotus/internal/events"
)

type promotionTestDeps struct {
	promotionRepo   *promotionRepoStub
	userRepo        *userRepoStub
	appointmentRepo *appointmentRepoStub
	walletRepo      *walletRepoStub
	catalogRepo     *catalogRepoStub
	publisher       *publisherStub
}

func newTestPromotionService(deps promotionTestDeps, now time.Time) *PromotionServiceImpl {
	if deps.promotionRepo == nil {
		deps.promotionRepo = &promotionRepoStub{}
	}
	if deps.userRepo == nil {
		deps.userRepo = &userRepoStub{}
	}
	if deps.appointmentRepo == nil {
		deps.appointmentRepo = &appointmentRepoStub{}
	}
	if deps.walletRepo == nil {
		deps.walletRepo = &walletRepoStub{}
	}
	if deps.catalogRepo == nil {
		deps.catalogRepo = &catalogRepoStub{}
	}
	if deps.publisher == nil {
		deps.publisher = &publisherStub{}
	}

	s := NewPromotionService(deps.promotionRepo, deps.userRepo, deps.appointmentRepo, deps.catalogRepo, deps.walletRepo, deps.publisher, zap.NewNop())
	s.now = func() time.Time { return now }
	return s
}

func plainUser(id int64) func(ctx context.Context, userID int64) (*domain.User, error) {
	return func(ctx context.Context, userID int64) (*domain.User, error) {
		return &domain.User{ID: id}, nil
	}
}

func intPtr(v int) *int { return &v }

func TestAvailableForUserFiltersPipeline(t *testing.T) {
	now := time.Date(2026, 5, 20, 12, 0, 0, 0, time.Local)
	today := domain.DateOf(now)
	tomorrow := domain.CalendarDate{Year: 2026, Month: 5, Day: 21}
	yesterday := domain.CalendarDate{Year: 2026, Month: 5, Day: 19}

	promotions := []domain.Promotion{
		{ID: 1, Code: "spring", IsActive: true, ExpiryDate: tomorrow, TargetAudience: domain.AudienceAll},
		{ID: 2, Code: "off", IsActive: false, ExpiryDate: tomorrow, TargetAudience: domain.AudienceAll},
		{ID: 3, Code: "expired", IsActive: true, ExpiryDate: yesterday, TargetAudience: domain.AudienceAll},
		// День истечения - акция еще действует.
		{ID: 4, Code: "lastday", IsActive: true, ExpiryDate: today, TargetAudience: domain.AudienceAll},
		{ID: 5, Code: "drained", IsActive: true, ExpiryDate: tomorrow, TargetAudience: domain.AudienceAll, Stock: intPtr(0)},
		{ID: 6, Code: "limited", IsActive: true, ExpiryDate: tomorrow, TargetAudience: domain.AudienceAll, Stock: intPtr(3)},
		// Тот же код, что у первой, только в другом регистре: дубль.
		{ID: 7, Code: "SPRING", IsActive: true, ExpiryDate: tomorrow, TargetAudience: domain.AudienceAll},
	}

	deps := promotionTestDeps{
		promotionRepo: &promotionRepoStub{
			listForUserFn: func(ctx context.Context, userID int64) ([]domain.Promotion, error) {
				return promotions, nil
			},
		},
		userRepo: &userRepoStub{getByIDFn: plainUser(7)},
	}
	s := newTestPromotionService(deps, now)

	available, err := s.AvailableForUser(context.Background(), 7, nil)
	require.NoError(t, err)

	got := make([]int64, 0, len(available))
	for _, p := range available {
		got = append(got, p.ID)
	}
	assert.ElementsMatch(t, []int64{1, 4, 6}, got)
}

func TestAvailableForUserBirthday(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.Local)
	tomorrow := domain.CalendarDate{Year: 2026, Month: 8, Day: 30}

	birthday := domain.CalendarDate{Year: 1990, Month: 8, Day: 29}
	promotions := []domain.Promotion{
		{ID: 1, Code: "bday", IsActive: true, ExpiryDate: tomorrow, TargetAudience: domain.AudienceBirthday},
	}

	deps := promotionTestDeps{
		promotionRepo: &promotionRepoStub{
			listForUserFn: func(ctx context.Context, userID int64) ([]domain.Promotion, error) {
				return promotions, nil
			},
		},
		userRepo: &userRepoStub{
			getByIDFn: func(ctx context.Context, userID int64) (*domain.User, error) {
				return &domain.User{ID: userID, Birthday: &birthday}, nil
			},
		},
	}
	s := newTestPromotionService(deps, now)

	available, err := s.AvailableForUser(context.Background(), 7, nil)
	require.NoError(t, err)
	require.Len(t, available, 1)

	// Не день рождения - акция пропадает.
	s.now = func() time.Time { return time.Date(2026, 8, 28, 12, 0, 0, 0, time.Local) }
	available, err = s.AvailableForUser(context.Background(), 7, nil)
	require.NoError(t, err)
	assert.Empty(t, available)
}

func TestAvailableForUserNewClientsPerService(t *testing.T) {
	now := time.Date(2026, 5, 20, 12, 0, 0, 0, time.Local)
	tomorrow := domain.CalendarDate{Year: 2026, Month: 5, Day: 21}

	promotions := []domain.Promotion{
		{ID: 1, Code: "first", IsActive: true, ExpiryDate: tomorrow, TargetAudience: domain.AudienceNewClients},
	}

	completedServices := map[int64]bool{10: true, 20: false}

	deps := promotionTestDeps{
		promotionRepo: &promotionRepoStub{
			listForUserFn: func(ctx context.Context, userID int64) ([]domain.Promotion, error) {
				return promotions, nil
			},
		},
		userRepo: &userRepoStub{getByIDFn: plainUser(7)},
		appointmentRepo: &appointmentRepoStub{
			hasCompletedFn: func(ctx context.Context, userID, serviceID int64) (bool, error) {
				return completedServices[serviceID], nil
			},
		},
	}
	s := newTestPromotionService(deps, now)

	// Есть услуга, которой клиент еще не пользовался: акция доступна.
	available, err := s.AvailableForUser(context.Background(), 7, []domain.SelectionItem{
		{ServiceID: 10, Quantity: 1},
		{ServiceID: 20, Quantity: 1},
	})
	require.NoError(t, err)
	assert.Len(t, available, 1)

	// Все выбранные услуги уже были: акция недоступна.
	available, err = s.AvailableForUser(context.Background(), 7, []domain.SelectionItem{
		{ServiceID: 10, Quantity: 1},
	})
	require.NoError(t, err)
	assert.Empty(t, available)
}

func TestQuotePercentageDiscount(t *testing.T) {
	now := time.Date(2026, 5, 20, 12, 0, 0, 0, time.Local)
	tomorrow := domain.CalendarDate{Year: 2026, Month: 5, Day: 21}
	promoID := int64(1)

	deps := promotionTestDeps{
		catalogRepo: &catalogRepoStub{
			getServiceByIDFn: func(ctx context.Context, id int64) (*domain.Service, error) {
				return &domain.Service{ID: id, Price: 500000, IsActive: true}, nil
			},
		},
		promotionRepo: &promotionRepoStub{
			getByIDFn: func(ctx context.Context, id int64) (*domain.Promotion, error) {
				return &domain.Promotion{
					ID:             id,
					Code:           "ten",
					IsActive:       true,
					ExpiryDate:     tomorrow,
					DiscountType:   domain.DiscountTypePercentage,
					DiscountValue:  10,
					TargetAudience: domain.AudienceAll,
				}, nil
			},
		},
		userRepo: &userRepoStub{getByIDFn: plainUser(7)},
	}
	s := newTestPromotionService(deps, now)

	quote, err := s.Quote(context.Background(), 7, []domain.SelectionItem{{ServiceID: 1, Quantity: 2}}, &promoID)
	require.NoError(t, err)

	assert.Equal(t, float64(1000000), quote.Subtotal)
	assert.Equal(t, float64(100000), quote.Discount)
	assert.Equal(t, float64(900000), quote.Total)
}

func TestQuoteDiscountOnlyOnApplicableItems(t *testing.T) {
	now := time.Date(2026, 5, 20, 12, 0, 0, 0, time.Local)
	tomorrow := domain.CalendarDate{Year: 2026, Month: 5, Day: 21}
	promoID := int64(1)

	prices := map[int64]float64{1: 300000, 2: 700000}

	deps := promotionTestDeps{
		catalogRepo: &catalogRepoStub{
			getServiceByIDFn: func(ctx context.Context, id int64) (*domain.Service, error) {
				return &domain.Service{ID: id, Price: prices[id], IsActive: true}, nil
			},
		},
		promotionRepo: &promotionRepoStub{
			getByIDFn: func(ctx context.Context, id int64) (*domain.Promotion, error) {
				return &domain.Promotion{
					ID:                   id,
					Code:                 "svc1",
					IsActive:             true,
					ExpiryDate:           tomorrow,
					DiscountType:         domain.DiscountTypePercentage,
					DiscountValue:        50,
					TargetAudience:       domain.AudienceAll,
					ApplicableServiceIDs: []int64{1},
				}, nil
			},
		},
		userRepo: &userRepoStub{getByIDFn: plainUser(7)},
	}
	s := newTestPromotionService(deps, now)

	quote, err := s.Quote(context.Background(), 7, []domain.SelectionItem{
		{ServiceID: 1, Quantity: 1},
		{ServiceID: 2, Quantity: 1},
	}, &promoID)
	require.NoError(t, err)

	assert.Equal(t, float64(1000000), quote.Subtotal)
	// 50% только от услуги 1.
	assert.Equal(t, float64(150000), quote.Discount)
	assert.Equal(t, float64(850000), quote.Total)
}

func TestQuoteFixedDiscountClamped(t *testing.T) {
	now := time.Date(2026, 5, 20, 12, 0, 0, 0, time.Local)
	tomorrow := domain.CalendarDate{Year: 2026, Month: 5, Day: 21}
	promoID := int64(1)

	deps := promotionTestDeps{
		catalogRepo: &catalogRepoStub{
			getServiceByIDFn: func(ctx context.Context, id int64) (*domain.Service, error) {
				return &domain.Service{ID: id, Price: 150000, IsActive: true}, nil
			},
		},
		promotionRepo: &promotionRepoStub{
			getByIDFn: func(ctx context.Context, id int64) (*domain.Promotion, error) {
				return &domain.Promotion{
					ID:             id,
					Code:           "big",
					IsActive:       true,
					ExpiryDate:     tomorrow,
					DiscountType:   domain.DiscountTypeFixed,
					DiscountValue:  200000,
					TargetAudience: domain.AudienceAll,
				}, nil
			},
		},
		userRepo: &userRepoStub{getByIDFn: plainUser(7)},
	}
	s := newTestPromotionService(deps, now)

	quote, err := s.Quote(context.Background(), 7, []domain.SelectionItem{{ServiceID: 1, Quantity: 1}}, &promoID)
	require.NoError(t, err)

	// Скидка не превышает сумму позиций, к которым применима.
	assert.Equal(t, float64(150000), quote.Discount)
	assert.Equal(t, float64(0), quote.Total)
}

func TestQuoteWithoutPromotion(t *testing.T) {
	now := time.Date(2026, 5, 20, 12, 0, 0, 0, time.Local)

	deps := promotionTestDeps{
		catalogRepo: &catalogRepoStub{
			getServiceByIDFn: func(ctx context.Context, id int64) (*domain.Service, error) {
				return &domain.Service{ID: id, Price: 250000, IsActive: true}, nil
			},
		},
	}
	s := newTestPromotionService(deps, now)

	quote, err := s.Quote(context.Background(), 7, []domain.SelectionItem{{ServiceID: 1, Quantity: 2}}, nil)
	require.NoError(t, err)

	assert.Equal(t, float64(500000), quote.Subtotal)
	assert.Equal(t, float64(0), quote.Discount)
	assert.Equal(t, float64(500000), quote.Total)
}

func TestQuoteUsesDiscountPrice(t *testing.T) {
	now := time.Date(2026, 5, 20, 12, 0, 0, 0, time.Local)
	discount := float64(400000)

	deps := promotionTestDeps{
		catalogRepo: &catalogRepoStub{
			getServiceByIDFn: func(ctx context.Context, id int64) (*domain.Service, error) {
				return &domain.Service{ID: id, Price: 500000, DiscountPrice: &discount, IsActive: true}, nil
			},
		},
	}
	s := newTestPromotionService(deps, now)

	quote, err := s.Quote(context.Background(), 7, []domain.SelectionItem{{ServiceID: 1, Quantity: 1}}, nil)
	require.NoError(t, err)
	assert.Equal(t, float64(400000), quote.Subtotal)
}

func TestRedeemInsufficientPoints(t *testing.T) {
	now := time.Date(2026, 5, 20, 12, 0, 0, 0, time.Local)
	redeemCalled := false

	deps := promotionTestDeps{
		promotionRepo: &promotionRepoStub{
			getByIDFn: func(ctx context.Context, id int64) (*domain.Promotion, error) {
				return &domain.Promotion{ID: id, IsActive: true, PointsRequired: intPtr(100)}, nil
			},
			redeemFn: func(ctx context.Context, userID, promotionID int64, pointsRequired int) error {
				redeemCalled = true
				return nil
			},
		},
		walletRepo: &walletRepoStub{
			getFn: func(ctx context.Context, userID int64) (*domain.Wallet, error) {
				return &domain.Wallet{UserID: userID, Points: 50}, nil
			},
		},
	}
	s := newTestPromotionService(deps, now)

	err := s.Redeem(context.Background(), 7, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "недостаточно баллов")
	// Списание даже не начинается.
	assert.False(t, redeemCalled)
}

func TestRedeemSuccess(t *testing.T) {
	now := time.Date(2026, 5, 20, 12, 0, 0, 0, time.Local)
	publisher := &publisherStub{}

	var redeemedPoints int
	deps := promotionTestDeps{
		promotionRepo: &promotionRepoStub{
			getByIDFn: func(ctx context.Context, id int64) (*domain.Promotion, error) {
				return &domain.Promotion{ID: id, IsActive: true, PointsRequired: intPtr(100), Stock: intPtr(5)}, nil
			},
			redeemFn: func(ctx context.Context, userID, promotionID int64, pointsRequired int) error {
				redeemedPoints = pointsRequired
				return nil
			},
		},
		walletRepo: &walletRepoStub{
			getFn: func(ctx context.Context, userID int64) (*domain.Wallet, error) {
				return &domain.Wallet{UserID: userID, Points: 150}, nil
			},
		},
		publisher: publisher,
	}
	s := newTestPromotionService(deps, now)

	err := s.Redeem(context.Background(), 7, 1)
	require.NoError(t, err)
	assert.Equal(t, 100, redeemedPoints)
	assert.ElementsMatch(t, []events.Topic{events.TopicRefreshVouchers, events.TopicRefreshWallet}, publisher.topics())
}

func TestRedeemNotExchangeable(t *testing.T) {
	now := time.Date(2026, 5, 20, 12, 0, 0, 0, time.Local)

	deps := promotionTestDeps{
		promotionRepo: &promotionRepoStub{
			getByIDFn: func(ctx context.Context, id int64) (*domain.Promotion, error) {
				return &domain.Promotion{ID: id, IsActive: true}, nil
			},
		},
	}
	s := newTestPromotionService(deps, now)

	err := s.Redeem(context.Background(), 7, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "не обменивается")
}

func TestCreateRejectsDuplicateCode(t *testing.T) {
	now := time.Date(2026, 5, 20, 12, 0, 0, 0, time.Local)

	deps := promotionTestDeps{
		promotionRepo: &promotionRepoStub{
			getByCodeFn: func(ctx context.Context, code string) (*domain.Promotion, error) {
				assert.Equal(t, "spring", code)
				return &domain.Promotion{ID: 1, Code: code}, nil
			},
		},
	}
	s := newTestPromotionService(deps, now)

	_, err := s.Create(context.Background(), domain.CreatePromotionDTO{Code: "  SPRING "})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "уже существует")
}

func TestListRedeemableShowsOnlyPrivatePointPriced(t *testing.T) {
	now := time.Date(2026, 5, 20, 12, 0, 0, 0, time.Local)

	var gotFilter domain.PromotionFilter
	deps := promotionTestDeps{
		promotionRepo: &promotionRepoStub{
			listFn: func(ctx context.Context, filter domain.PromotionFilter) ([]domain.Promotion, error) {
				gotFilter = filter
				return []domain.Promotion{
					{ID: 1, Code: "points-100", IsActive: true, PointsRequired: intPtr(100)},
					// Приватная акция без цены в баллах в каталог обмена не попадает.
					{ID: 2, Code: "hidden", IsActive: true},
					// Распроданный тираж.
					{ID: 3, Code: "sold-out", IsActive: true, PointsRequired: intPtr(50), Stock: intPtr(0)},
					{ID: 4, Code: "points-200", IsActive: true, PointsRequired: intPtr(200), Stock: intPtr(5)},
				}, nil
			},
		},
	}
	s := newTestPromotionService(deps, now)

	promotions, err := s.ListRedeemable(context.Background())
	require.NoError(t, err)

	require.NotNil(t, gotFilter.IsActive)
	assert.True(t, *gotFilter.IsActive)
	require.NotNil(t, gotFilter.IsPublic)
	assert.False(t, *gotFilter.IsPublic)

	ids := make([]int64, 0, len(promotions))
	for _, p := range promotions {
		ids = append(ids, p.ID)
	}
	assert.ElementsMatch(t, []int64{1, 4}, ids)
}
