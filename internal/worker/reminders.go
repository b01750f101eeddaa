package worker

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"lotus/config"
	"lotus/internal/events"
	"lotus/internal/repository"
)

// ReminderWorker периодически ищет записи, начинающиеся в пределах окна
// напоминания, и шлет событие каждому пользователю. Повторные события по
// одной записи гасятся локальным набором отправленных.
type ReminderWorker struct {
	appointmentRepo repository.AppointmentRepository
	events          events.Publisher
	cfg             config.BookingConfig
	logger          *zap.Logger

	sent map[int64]time.Time
	now  func() time.Time
}

func NewReminderWorker(appointmentRepo repository.AppointmentRepository, publisher events.Publisher, cfg config.BookingConfig, logger *zap.Logger) *ReminderWorker {
	return &ReminderWorker{
		appointmentRepo: appointmentRepo,
		events:          publisher,
		cfg:             cfg,
		logger:          logger,
		sent:            make(map[int64]time.Time),
		now:             time.Now,
	}
}

func (w *ReminderWorker) Start() *gocron.Scheduler {
	scheduler := gocron.NewScheduler(time.Local)

	scheduler.Every(5).Minutes().Do(func() {
		if err := w.Sweep(context.Background()); err != nil {
			w.logger.Error("ошибка рассылки напоминаний", zap.Error(err))
		}
	})

	scheduler.StartAsync()
	w.logger.Info("воркер напоминаний запущен",
		zap.Duration("reminder_window", w.cfg.ReminderWindow))

	return scheduler
}

func (w *ReminderWorker) Sweep(ctx context.Context) error {
	now := w.now()

	appointments, err := w.appointmentRepo.ListStartingBetween(ctx, now, now.Add(w.cfg.ReminderWindow))
	if err != nil {
		return err
	}

	for _, a := range appointments {
		if _, ok := w.sent[a.ID]; ok {
			continue
		}

		w.events.Publish(a.UserID, events.TopicAppointmentReminder, a)
		w.sent[a.ID] = now

		w.logger.Info("напоминание отправлено",
			zap.Int64("appointment_id", a.ID),
			zap.Int64("user_id", a.UserID),
			zap.String("date", a.Date.String()),
			zap.String("time", a.Time))
	}

	w.prune(now)

	return nil
}

// prune выбрасывает из набора отправленных записи, чье время давно прошло.
func (w *ReminderWorker) prune(now time.Time) {
	for id, at := range w.sent {
		if now.Sub(at) > 2*w.cfg.ReminderWindow {
			delete(w.sent, id)
		}
	}
}
