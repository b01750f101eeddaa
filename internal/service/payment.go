package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	checkoutsession "github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"

	"lotus/config"
	"lotus/internal/domain"
	"lotus/internal/events"
	"lotus/internal/repository"
)

type PaymentServiceImpl struct {
	paymentRepo     repository.PaymentRepository
	appointmentRepo repository.AppointmentRepository
	wallet          WalletService
	cfg             config.StripeConfig
	events          events.Publisher
	logger          *zap.Logger
}

func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	appointmentRepo repository.AppointmentRepository,
	wallet WalletService,
	cfg config.StripeConfig,
	publisher events.Publisher,
	logger *zap.Logger,
) *PaymentServiceImpl {
	stripe.Key = cfg.SecretKey

	return &PaymentServiceImpl{
		paymentRepo:     paymentRepo,
		appointmentRepo: appointmentRepo,
		wallet:          wallet,
		cfg:             cfg,
		events:          publisher,
		logger:          logger,
	}
}

func (s *PaymentServiceImpl) Process(ctx context.Context, userID int64, dto domain.ProcessPaymentDTO) (*domain.PaymentResult, error) {
	group, err := s.appointmentRepo.ListByGroup(ctx, dto.BookingGroupID)
	if err != nil {
		s.logger.Error("ошибка получения группы записей", zap.Error(err))
		return nil, errors.New("ошибка обработки платежа")
	}

	if len(group) == 0 {
		return nil, errors.New("записи для оплаты не найдены")
	}

	if group[0].UserID != userID {
		return nil, errors.New("нет доступа к этим записям")
	}

	for _, a := range group {
		if a.PaymentStatus == domain.PaymentStatePaid {
			return nil, errors.New("записи уже оплачены")
		}
	}

	payment := domain.Payment{
		UserID:         userID,
		BookingGroupID: dto.BookingGroupID,
		Amount:         dto.Amount,
		Method:         dto.Method,
		Status:         domain.PaymentStatusPending,
	}

	paymentID, err := s.paymentRepo.Create(ctx, payment)
	if err != nil {
		s.logger.Error("ошибка создания платежа", zap.Error(err))
		return nil, errors.New("ошибка обработки платежа")
	}

	// Наличные подтверждаются сразу: деньги примут на ресепшене.
	if dto.Method == domain.PaymentMethodCash {
		if err := s.settle(ctx, paymentID, userID, dto.BookingGroupID, dto.Amount); err != nil {
			return nil, err
		}

		return &domain.PaymentResult{
			PaymentID: paymentID,
			Status:    domain.PaymentStatusSucceeded,
			Message:   "оплата наличными при визите подтверждена",
		}, nil
	}

	redirectURL, err := s.createCheckoutSession(ctx, paymentID, group, dto)
	if err != nil {
		s.logger.Error("ошибка создания сессии оплаты", zap.Error(err))
		s.paymentRepo.UpdateStatus(ctx, paymentID, domain.PaymentStatusFailed)
		return nil, errors.New("ошибка создания сессии оплаты")
	}

	return &domain.PaymentResult{
		PaymentID:   paymentID,
		Status:      domain.PaymentStatusPending,
		RedirectURL: redirectURL,
	}, nil
}

func (s *PaymentServiceImpl) createCheckoutSession(ctx context.Context, paymentID int64, group []domain.Appointment, dto domain.ProcessPaymentDTO) (string, error) {
	name := group[0].ServiceName
	if len(group) > 1 {
		name = fmt.Sprintf("%s и еще %d", name, len(group)-1)
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(s.cfg.SuccessURL),
		CancelURL:  stripe.String(s.cfg.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(s.cfg.Currency),
					UnitAmount: stripe.Int64(stripeAmount(dto.Amount, s.cfg.Currency)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(name),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		Metadata: map[string]string{
			"booking_group_id": dto.BookingGroupID,
		},
	}
	params.Context = ctx

	sess, err := checkoutsession.New(params)
	if err != nil {
		return "", fmt.Errorf("ошибка обращения к платежному провайдеру: %w", err)
	}

	if err := s.paymentRepo.SetCheckoutSession(ctx, paymentID, sess.ID); err != nil {
		return "", err
	}

	return sess.URL, nil
}

// stripeAmount переводит сумму в минимальные единицы валюты. У донга нет
// дробной части.
func stripeAmount(amount float64, currency string) int64 {
	if currency == "vnd" {
		return int64(amount)
	}
	return int64(amount * 100)
}

func (s *PaymentServiceImpl) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := webhook.ConstructEvent(payload, signature, s.cfg.WebhookSecret)
	if err != nil {
		s.logger.Warn("не удалось проверить подпись вебхука", zap.Error(err))
		return errors.New("недействительная подпись вебхука")
	}

	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			s.logger.Error("ошибка разбора события вебхука", zap.Error(err))
			return errors.New("ошибка разбора события вебхука")
		}
		return s.ConfirmCheckout(ctx, sess.ID)

	case "checkout.session.expired":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return errors.New("ошибка разбора события вебхука")
		}
		payment, err := s.paymentRepo.GetByCheckoutSession(ctx, sess.ID)
		if err != nil {
			return nil
		}
		return s.paymentRepo.UpdateStatus(ctx, payment.ID, domain.PaymentStatusFailed)
	}

	return nil
}

func (s *PaymentServiceImpl) ConfirmCheckout(ctx context.Context, checkoutSessionID string) error {
	payment, err := s.paymentRepo.GetByCheckoutSession(ctx, checkoutSessionID)
	if err != nil {
		s.logger.Error("платеж по сессии не найден", zap.String("session_id", checkoutSessionID), zap.Error(err))
		return errors.New("платеж не найден")
	}

	// Вебхуки приходят с повторами, подтверждение идемпотентно.
	if payment.Status == domain.PaymentStatusSucceeded {
		return nil
	}

	return s.settle(ctx, payment.ID, payment.UserID, payment.BookingGroupID, payment.Amount)
}

func (s *PaymentServiceImpl) settle(ctx context.Context, paymentID, userID int64, bookingGroupID string, amount float64) error {
	if err := s.paymentRepo.UpdateStatus(ctx, paymentID, domain.PaymentStatusSucceeded); err != nil {
		s.logger.Error("ошибка обновления статуса платежа", zap.Int64("payment_id", paymentID), zap.Error(err))
		return errors.New("ошибка подтверждения платежа")
	}

	if err := s.appointmentRepo.MarkGroupPaid(ctx, bookingGroupID); err != nil {
		s.logger.Error("ошибка отметки оплаты записей", zap.String("booking_group_id", bookingGroupID), zap.Error(err))
		return errors.New("ошибка подтверждения платежа")
	}

	if err := s.wallet.AccrueForSpending(ctx, userID, amount); err != nil {
		// Оплата уже прошла, баллы доначислит поддержка.
		s.logger.Error("ошибка начисления баллов за оплату", zap.Int64("user_id", userID), zap.Error(err))
	}

	s.events.Publish(userID, events.TopicRefreshAppointments, map[string]string{"booking_group_id": bookingGroupID})

	return nil
}
