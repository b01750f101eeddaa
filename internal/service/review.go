package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"lotus/internal/domain"
	"lotus/internal/repository"
)

type ReviewServiceImpl struct {
	reviewRepo      repository.ReviewRepository
	appointmentRepo repository.AppointmentRepository
	logger          *zap.Logger
}

func NewReviewService(reviewRepo repository.ReviewRepository, appointmentRepo repository.AppointmentRepository, logger *zap.Logger) *ReviewServiceImpl {
	return &ReviewServiceImpl{
		reviewRepo:      reviewRepo,
		appointmentRepo: appointmentRepo,
		logger:          logger,
	}
}

func (s *ReviewServiceImpl) Create(ctx context.Context, userID int64, dto domain.CreateReviewDTO) (int64, error) {
	if dto.AppointmentID == nil {
		return 0, errors.New("отзыв оставляется по конкретной записи")
	}

	appointment, err := s.appointmentRepo.GetByID(ctx, *dto.AppointmentID)
	if err != nil {
		return 0, errors.New("запись не найдена")
	}

	if appointment.UserID != userID {
		return 0, errors.New("нет доступа к этой записи")
	}

	if appointment.Status != domain.AppointmentStatusCompleted {
		return 0, errors.New("отзыв можно оставить только после завершения услуги")
	}

	if appointment.ServiceID != dto.ServiceID {
		return 0, errors.New("услуга не соответствует записи")
	}

	exists, err := s.reviewRepo.ExistsForAppointment(ctx, *dto.AppointmentID)
	if err != nil {
		s.logger.Error("ошибка проверки существующего отзыва", zap.Error(err))
		return 0, errors.New("ошибка создания отзыва")
	}

	if exists {
		return 0, errors.New("отзыв по этой записи уже оставлен")
	}

	id, err := s.reviewRepo.Create(ctx, userID, dto)
	if err != nil {
		s.logger.Error("ошибка создания отзыва", zap.Error(err))
		return 0, errors.New("ошибка создания отзыва")
	}

	return id, nil
}

func (s *ReviewServiceImpl) List(ctx context.Context, filter domain.ReviewFilter) ([]domain.Review, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}

	reviews, err := s.reviewRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("ошибка получения отзывов", zap.Error(err))
		return nil, errors.New("ошибка получения отзывов")
	}

	return reviews, nil
}
