package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"lotus/config"
	"lotus/internal/domain"
	"lotus/internal/repository"
)

type BookingServiceImpl struct {
	appointmentRepo repository.AppointmentRepository
	cfg             config.BookingConfig
	logger          *zap.Logger
	now             func() time.Time
}

func NewBookingService(appointmentRepo repository.AppointmentRepository, cfg config.BookingConfig, logger *zap.Logger) *BookingServiceImpl {
	return &BookingServiceImpl{
		appointmentRepo: appointmentRepo,
		cfg:             cfg,
		logger:          logger,
		now:             time.Now,
	}
}

// slotGrid строит полную сетку рабочего дня. Закрывающее время входит в
// сетку: салон принимает последнюю запись ровно в момент закрытия.
func slotGrid(cfg config.BookingConfig) ([]string, error) {
	open, err := domain.MinutesOfDay(cfg.OpenTime)
	if err != nil {
		return nil, fmt.Errorf("неверное время открытия: %w", err)
	}

	closing, err := domain.MinutesOfDay(cfg.CloseTime)
	if err != nil {
		return nil, fmt.Errorf("неверное время закрытия: %w", err)
	}

	if closing < open || cfg.SlotMinutes <= 0 {
		return nil, errors.New("некорректная конфигурация рабочего дня")
	}

	var grid []string
	for m := open; m <= closing; m += cfg.SlotMinutes {
		grid = append(grid, fmt.Sprintf("%02d:%02d", m/60, m%60))
	}

	return grid, nil
}

func (s *BookingServiceImpl) FreeSlots(ctx context.Context, userID int64, date domain.CalendarDate) ([]domain.TimeSlot, error) {
	grid, err := slotGrid(s.cfg)
	if err != nil {
		s.logger.Error("некорректная конфигурация сетки слотов", zap.Error(err))
		return nil, errors.New("ошибка получения слотов")
	}

	now := s.now()
	today := domain.DateOf(now)

	// Прошедшая дата - записываться не на что.
	if date.Compare(today) < 0 {
		return []domain.TimeSlot{}, nil
	}

	// На сегодня остаются только слоты строго позже текущего момента:
	// слот, равный «сейчас», уже нельзя успеть занять.
	if date.Compare(today) == 0 {
		nowMinutes := now.Hour()*60 + now.Minute()
		filtered := make([]string, 0, len(grid))
		for _, slot := range grid {
			m, _ := domain.MinutesOfDay(slot)
			if m > nowMinutes {
				filtered = append(filtered, slot)
			}
		}
		grid = filtered
	}

	busy, err := s.appointmentRepo.BusyTimes(ctx, userID, date)
	if err != nil {
		s.logger.Error("ошибка получения занятых слотов", zap.Error(err))
		return nil, errors.New("ошибка получения слотов")
	}

	busySet := make(map[string]struct{}, len(busy))
	for _, t := range busy {
		busySet[t] = struct{}{}
	}

	slots := make([]domain.TimeSlot, 0, len(grid))
	for _, t := range grid {
		_, booked := busySet[t]
		slots = append(slots, domain.TimeSlot{Time: t, Booked: booked})
	}

	return slots, nil
}
