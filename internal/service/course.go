package service

import (
	"context"
	"errors"
	"math"

	"go.uber.org/zap"

	"lotus/internal/domain"
	"lotus/internal/events"
	"lotus/internal/repository"
)

type CourseServiceImpl struct {
	repo   repository.CourseRepository
	events events.Publisher
	logger *zap.Logger
}

func NewCourseService(repo repository.CourseRepository, publisher events.Publisher, logger *zap.Logger) *CourseServiceImpl {
	return &CourseServiceImpl{
		repo:   repo,
		events: publisher,
		logger: logger,
	}
}

func (s *CourseServiceImpl) Create(ctx context.Context, dto domain.CreateCourseDTO) (int64, error) {
	id, err := s.repo.Create(ctx, dto)
	if err != nil {
		s.logger.Error("ошибка создания курса", zap.Error(err))
		return 0, errors.New("ошибка создания курса")
	}

	s.events.Publish(dto.ClientID, events.TopicRefreshCourses, map[string]int64{"course_id": id})

	return id, nil
}

func (s *CourseServiceImpl) GetByID(ctx context.Context, id int64) (*domain.TreatmentCourse, *domain.CourseProgress, error) {
	course, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("ошибка получения курса", zap.Int64("id", id), zap.Error(err))
		return nil, nil, errors.New("курс не найден")
	}

	progress := courseProgress(*course)
	return course, &progress, nil
}

func (s *CourseServiceImpl) ListByClient(ctx context.Context, clientID int64, completed *bool) ([]domain.TreatmentCourse, []domain.CourseProgress, error) {
	courses, err := s.repo.ListByClient(ctx, clientID)
	if err != nil {
		s.logger.Error("ошибка получения курсов клиента", zap.Error(err))
		return nil, nil, errors.New("ошибка получения курсов")
	}

	filtered := make([]domain.TreatmentCourse, 0, len(courses))
	progresses := make([]domain.CourseProgress, 0, len(courses))

	for _, course := range courses {
		progress := courseProgress(course)

		// Завершенность определяется по фактическим сеансам, а не по
		// хранимому статусу курса: статус может не успеть обновиться.
		if completed != nil && isCourseCompleted(course, progress) != *completed {
			continue
		}

		filtered = append(filtered, course)
		progresses = append(progresses, progress)
	}

	return filtered, progresses, nil
}

func (s *CourseServiceImpl) UpdateSession(ctx context.Context, courseID int64, sessionNumber int, dto domain.UpdateCourseSessionDTO) error {
	course, err := s.repo.GetByID(ctx, courseID)
	if err != nil {
		return errors.New("курс не найден")
	}

	if sessionNumber < 1 || sessionNumber > course.TotalSessions {
		return errors.New("сеанс с таким номером не существует")
	}

	if err := s.repo.UpdateSession(ctx, courseID, sessionNumber, dto); err != nil {
		s.logger.Error("ошибка обновления сеанса",
			zap.Int64("course_id", courseID),
			zap.Int("session_number", sessionNumber),
			zap.Error(err))
		return errors.New("ошибка обновления сеанса")
	}

	s.events.Publish(course.ClientID, events.TopicRefreshCourses, map[string]int64{"course_id": courseID})

	return nil
}

// courseProgress пересчитывает состояние курса из сеансов. Процент
// округляется арифметически; курс без сеансов дает ноль, а не деление
// на ноль.
func courseProgress(course domain.TreatmentCourse) domain.CourseProgress {
	progress := domain.CourseProgress{}

	for i := range course.Sessions {
		session := course.Sessions[i]
		if session.Status == domain.SessionStatusCompleted {
			progress.CompletedSessions++
			progress.Previous = &course.Sessions[i]
		} else if progress.Current == nil {
			progress.Current = &course.Sessions[i]
		}
	}

	if course.TotalSessions > 0 {
		progress.Percent = int(math.Round(float64(progress.CompletedSessions) / float64(course.TotalSessions) * 100))
		if progress.Percent > 100 {
			progress.Percent = 100
		}
	}

	return progress
}

func isCourseCompleted(course domain.TreatmentCourse, progress domain.CourseProgress) bool {
	return course.TotalSessions > 0 && progress.CompletedSessions >= course.TotalSessions
}
