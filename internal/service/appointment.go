package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"lotus/config"
	"lotus/internal/domain"
	"lotus/internal/events"
	"lotus/internal/repository"
)

type AppointmentServiceImpl struct {
	appointmentRepo repository.AppointmentRepository
	catalogRepo     repository.CatalogRepository
	cfg             config.BookingConfig
	events          events.Publisher
	logger          *zap.Logger
	now             func() time.Time
}

func NewAppointmentService(
	appointmentRepo repository.AppointmentRepository,
	catalogRepo repository.CatalogRepository,
	cfg config.BookingConfig,
	publisher events.Publisher,
	logger *zap.Logger,
) *AppointmentServiceImpl {
	return &AppointmentServiceImpl{
		appointmentRepo: appointmentRepo,
		catalogRepo:     catalogRepo,
		cfg:             cfg,
		events:          publisher,
		logger:          logger,
		now:             time.Now,
	}
}

func (s *AppointmentServiceImpl) CreateBooking(ctx context.Context, userID int64, dto domain.CreateBookingDTO) ([]domain.Appointment, error) {
	startsAt, err := dto.Date.At(dto.Time)
	if err != nil {
		return nil, errors.New("неверный формат времени слота")
	}

	now := s.now()
	if !startsAt.After(now) {
		return nil, errors.New("выбранное время уже прошло")
	}

	grid, err := slotGrid(s.cfg)
	if err != nil {
		s.logger.Error("некорректная конфигурация сетки слотов", zap.Error(err))
		return nil, errors.New("ошибка оформления записи")
	}

	inGrid := false
	for _, slot := range grid {
		if slot == dto.Time {
			inGrid = true
			break
		}
	}
	if !inGrid {
		return nil, errors.New("выбранное время вне рабочей сетки салона")
	}

	groupID := uuid.New().String()
	appointments := make([]domain.Appointment, 0)

	for _, item := range dto.Items {
		svc, err := s.catalogRepo.GetServiceByID(ctx, item.ServiceID)
		if err != nil {
			s.logger.Error("услуга не найдена", zap.Int64("service_id", item.ServiceID), zap.Error(err))
			return nil, errors.New("услуга не найдена")
		}

		if !svc.IsActive {
			return nil, errors.New("услуга недоступна для записи")
		}

		// По отдельной записи на каждую единицу услуги: у каждой свой
		// статус и свой жизненный цикл.
		for q := 0; q < item.Quantity; q++ {
			appointment := domain.Appointment{
				UserID:         userID,
				ServiceID:      svc.ID,
				Date:           dto.Date,
				Time:           dto.Time,
				Status:         domain.AppointmentStatusPending,
				PaymentStatus:  domain.PaymentStateUnpaid,
				BookingGroupID: groupID,
				PromotionID:    dto.PromotionID,
				Price:          svc.EffectivePrice(),
				DurationWeeks:  item.DurationWeeks,
				ServiceName:    svc.Name,
			}

			id, err := s.appointmentRepo.Create(ctx, appointment)
			if err != nil {
				s.logger.Error("ошибка создания записи", zap.Error(err))
				return nil, err
			}

			appointment.ID = id
			appointments = append(appointments, appointment)
		}
	}

	s.events.Publish(userID, events.TopicRefreshAppointments, map[string]string{"booking_group_id": groupID})

	return appointments, nil
}

func (s *AppointmentServiceImpl) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	appointment, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("ошибка получения записи", zap.Int64("id", id), zap.Error(err))
		return nil, errors.New("запись не найдена")
	}
	return appointment, nil
}

func (s *AppointmentServiceImpl) Cancel(ctx context.Context, userID int64, id int64) error {
	appointment, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		return errors.New("запись не найдена")
	}

	if appointment.UserID != userID {
		return errors.New("нет доступа к этой записи")
	}

	if appointment.Status == domain.AppointmentStatusCompleted || appointment.Status == domain.AppointmentStatusCancelled {
		return errors.New("запись нельзя отменить")
	}

	if err := s.appointmentRepo.UpdateStatus(ctx, id, domain.AppointmentStatusCancelled); err != nil {
		s.logger.Error("ошибка отмены записи", zap.Int64("id", id), zap.Error(err))
		return errors.New("ошибка отмены записи")
	}

	s.events.Publish(userID, events.TopicRefreshAppointments, map[string]int64{"appointment_id": id})

	return nil
}

func (s *AppointmentServiceImpl) UpdateStatus(ctx context.Context, id int64, status domain.AppointmentStatus) error {
	appointment, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		return errors.New("запись не найдена")
	}

	if err := s.appointmentRepo.UpdateStatus(ctx, id, status); err != nil {
		s.logger.Error("ошибка обновления статуса записи", zap.Int64("id", id), zap.Error(err))
		return errors.New("ошибка обновления статуса записи")
	}

	s.events.Publish(appointment.UserID, events.TopicRefreshAppointments, map[string]int64{"appointment_id": id})

	return nil
}

func (s *AppointmentServiceImpl) List(ctx context.Context, filter domain.AppointmentFilter) ([]domain.Appointment, int, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}

	appointments, err := s.appointmentRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("ошибка получения списка записей", zap.Error(err))
		return nil, 0, errors.New("ошибка получения списка записей")
	}

	total, err := s.appointmentRepo.CountByFilter(ctx, filter)
	if err != nil {
		s.logger.Error("ошибка подсчета записей", zap.Error(err))
		return nil, 0, errors.New("ошибка получения списка записей")
	}

	return appointments, total, nil
}

func (s *AppointmentServiceImpl) Buckets(ctx context.Context, userID int64) (*domain.AppointmentBuckets, error) {
	appointments, err := s.appointmentRepo.List(ctx, domain.AppointmentFilter{UserID: &userID, Limit: 500})
	if err != nil {
		s.logger.Error("ошибка получения записей пользователя", zap.Error(err))
		return nil, errors.New("ошибка получения записей")
	}

	buckets := classifyAppointments(appointments, s.now(), s.cfg.ReminderWindow)
	return &buckets, nil
}

// classifyAppointments раскладывает записи по корзинам относительно момента
// now. Статус в базе может отставать от реальности: запись со статусом
// pending, чье время уже прошло, попадает в историю, а не в предстоящие.
func classifyAppointments(appointments []domain.Appointment, now time.Time, reminderWindow time.Duration) domain.AppointmentBuckets {
	buckets := domain.AppointmentBuckets{
		Upcoming:  []domain.Appointment{},
		History:   []domain.Appointment{},
		Reminders: []domain.Appointment{},
	}

	deadline := now.Add(reminderWindow)

	for _, a := range appointments {
		switch a.Status {
		case domain.AppointmentStatusCancelled, domain.AppointmentStatusCompleted:
			buckets.History = append(buckets.History, a)
			continue
		}

		startsAt, err := a.StartsAt()
		if err != nil {
			// Запись с нечитаемым временем не должна пропасть из выдачи.
			buckets.History = append(buckets.History, a)
			continue
		}

		// Запись ровно на текущий момент еще предстоящая.
		if startsAt.Before(now) {
			buckets.History = append(buckets.History, a)
			continue
		}

		buckets.Upcoming = append(buckets.Upcoming, a)

		if !startsAt.After(deadline) {
			buckets.Reminders = append(buckets.Reminders, a)
		}
	}

	return buckets
}
