package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"lotus/config"
	"lotus/internal/domain"
	"lotus/internal/events"
)

func newTestPaymentService(paymentRepo *paymentRepoStub, appointmentRepo *appointmentRepoStub, walletRepo *walletRepoStub, publisher *publisherStub) *PaymentServiceImpl {
	wallet := NewWalletService(walletRepo, config.LoyaltyConfig{AccrualUnit: 10000}, publisher, zap.NewNop())
	return NewPaymentService(paymentRepo, appointmentRepo, wallet, config.StripeConfig{Currency: "vnd"}, publisher, zap.NewNop())
}

func unpaidGroup(userID int64, groupID string) []domain.Appointment {
	return []domain.Appointment{
		{ID: 1, UserID: userID, BookingGroupID: groupID, PaymentStatus: domain.PaymentStateUnpaid, ServiceName: "Массаж"},
		{ID: 2, UserID: userID, BookingGroupID: groupID, PaymentStatus: domain.PaymentStateUnpaid, ServiceName: "Массаж"},
	}
}

func TestProcessCashSettlesImmediately(t *testing.T) {
	publisher := &publisherStub{}

	var paymentStatus domain.PaymentStatus
	var markedGroup string
	var accruedPoints int

	paymentRepo := &paymentRepoStub{
		createFn: func(ctx context.Context, payment domain.Payment) (int64, error) {
			assert.Equal(t, domain.PaymentStatusPending, payment.Status)
			return 42, nil
		},
		updateStatusFn: func(ctx context.Context, id int64, status domain.PaymentStatus) error {
			paymentStatus = status
			return nil
		},
	}
	appointmentRepo := &appointmentRepoStub{
		listByGroupFn: func(ctx context.Context, groupID string) ([]domain.Appointment, error) {
			return unpaidGroup(7, groupID), nil
		},
		markGroupPaidFn: func(ctx context.Context, groupID string) error {
			markedGroup = groupID
			return nil
		},
	}
	walletRepo := &walletRepoStub{
		accrueFn: func(ctx context.Context, userID int64, points int, spent float64) error {
			accruedPoints = points
			return nil
		},
	}

	s := newTestPaymentService(paymentRepo, appointmentRepo, walletRepo, publisher)

	result, err := s.Process(context.Background(), 7, domain.ProcessPaymentDTO{
		BookingGroupID: "group-1",
		Method:         domain.PaymentMethodCash,
		Amount:         1000000,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(42), result.PaymentID)
	assert.Equal(t, domain.PaymentStatusSucceeded, result.Status)
	assert.Empty(t, result.RedirectURL)

	assert.Equal(t, domain.PaymentStatusSucceeded, paymentStatus)
	assert.Equal(t, "group-1", markedGroup)
	assert.Equal(t, 100, accruedPoints)

	assert.Contains(t, publisher.topics(), events.TopicRefreshAppointments)
}

func TestProcessRejectsForeignGroup(t *testing.T) {
	appointmentRepo := &appointmentRepoStub{
		listByGroupFn: func(ctx context.Context, groupID string) ([]domain.Appointment, error) {
			return unpaidGroup(1, groupID), nil
		},
	}
	s := newTestPaymentService(&paymentRepoStub{}, appointmentRepo, &walletRepoStub{}, &publisherStub{})

	_, err := s.Process(context.Background(), 2, domain.ProcessPaymentDTO{
		BookingGroupID: "group-1",
		Method:         domain.PaymentMethodCash,
		Amount:         100000,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "доступа")
}

func TestProcessRejectsAlreadyPaid(t *testing.T) {
	appointmentRepo := &appointmentRepoStub{
		listByGroupFn: func(ctx context.Context, groupID string) ([]domain.Appointment, error) {
			group := unpaidGroup(7, groupID)
			group[1].PaymentStatus = domain.PaymentStatePaid
			return group, nil
		},
	}
	s := newTestPaymentService(&paymentRepoStub{}, appointmentRepo, &walletRepoStub{}, &publisherStub{})

	_, err := s.Process(context.Background(), 7, domain.ProcessPaymentDTO{
		BookingGroupID: "group-1",
		Method:         domain.PaymentMethodCash,
		Amount:         100000,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "уже оплачены")
}

func TestProcessRejectsEmptyGroup(t *testing.T) {
	s := newTestPaymentService(&paymentRepoStub{}, &appointmentRepoStub{}, &walletRepoStub{}, &publisherStub{})

	_, err := s.Process(context.Background(), 7, domain.ProcessPaymentDTO{
		BookingGroupID: "missing",
		Method:         domain.PaymentMethodCash,
		Amount:         100000,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "не найдены")
}

func TestConfirmCheckoutIdempotent(t *testing.T) {
	updateCalled := false
	paymentRepo := &paymentRepoStub{
		getByCheckoutFn: func(ctx context.Context, sessionID string) (*domain.Payment, error) {
			return &domain.Payment{ID: 1, UserID: 7, Status: domain.PaymentStatusSucceeded, BookingGroupID: "group-1"}, nil
		},
		updateStatusFn: func(ctx context.Context, id int64, status domain.PaymentStatus) error {
			updateCalled = true
			return nil
		},
	}
	s := newTestPaymentService(paymentRepo, &appointmentRepoStub{}, &walletRepoStub{}, &publisherStub{})

	err := s.ConfirmCheckout(context.Background(), "cs_test_1")
	require.NoError(t, err)
	// Повторное подтверждение не трогает платеж.
	assert.False(t, updateCalled)
}

func TestConfirmCheckoutSettlesPending(t *testing.T) {
	publisher := &publisherStub{}

	var markedGroup string
	paymentRepo := &paymentRepoStub{
		getByCheckoutFn: func(ctx context.Context, sessionID string) (*domain.Payment, error) {
			return &domain.Payment{ID: 1, UserID: 7, Status: domain.PaymentStatusPending, BookingGroupID: "group-1", Amount: 500000}, nil
		},
	}
	appointmentRepo := &appointmentRepoStub{
		markGroupPaidFn: func(ctx context.Context, groupID string) error {
			markedGroup = groupID
			return nil
		},
	}
	walletRepo := &walletRepoStub{
		accrueFn: func(ctx context.Context, userID int64, points int, spent float64) error {
			return nil
		},
	}
	s := newTestPaymentService(paymentRepo, appointmentRepo, walletRepo, publisher)

	err := s.ConfirmCheckout(context.Background(), "cs_test_1")
	require.NoError(t, err)
	assert.Equal(t, "group-1", markedGroup)
	assert.Contains(t, publisher.topics(), events.TopicRefreshAppointments)
}

func TestSettleSurvivesAccrualFailure(t *testing.T) {
	publisher := &publisherStub{}

	paymentRepo := &paymentRepoStub{
		createFn: func(ctx context.Context, payment domain.Payment) (int64, error) {
			return 1, nil
		},
	}
	appointmentRepo := &appointmentRepoStub{
		listByGroupFn: func(ctx context.Context, groupID string) ([]domain.Appointment, error) {
			return unpaidGroup(7, groupID), nil
		},
	}
	// Заглушка кошелька без accrueFn вернет ошибку начисления.
	s := newTestPaymentService(paymentRepo, appointmentRepo, &walletRepoStub{}, publisher)

	result, err := s.Process(context.Background(), 7, domain.ProcessPaymentDTO{
		BookingGroupID: "group-1",
		Method:         domain.PaymentMethodCash,
		Amount:         100000,
	})
	// Оплата проходит даже при сбое начисления баллов.
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusSucceeded, result.Status)
}

func TestStripeAmount(t *testing.T) {
	// У донга нет дробной части.
	assert.Equal(t, int64(500000), stripeAmount(500000, "vnd"))
	assert.Equal(t, int64(1050), stripeAmount(10.50, "usd"))
}
