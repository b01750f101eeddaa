package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"lotus/internal/domain"
)

func sessionsWithStatuses(statuses ...domain.SessionStatus) []domain.CourseSession {
	sessions := make([]domain.CourseSession, 0, len(statuses))
	for i, status := range statuses {
		sessions = append(sessions, domain.CourseSession{
			ID:            int64(i + 1),
			SessionNumber: i + 1,
			Status:        status,
		})
	}
	return sessions
}

func TestCourseProgressAllCompleted(t *testing.T) {
	course := domain.TreatmentCourse{
		TotalSessions: 4,
		Sessions: sessionsWithStatuses(
			domain.SessionStatusCompleted,
			domain.SessionStatusCompleted,
			domain.SessionStatusCompleted,
			domain.SessionStatusCompleted,
		),
	}

	progress := courseProgress(course)

	assert.Equal(t, 4, progress.CompletedSessions)
	assert.Equal(t, 100, progress.Percent)
	assert.Nil(t, progress.Current)
	require.NotNil(t, progress.Previous)
	assert.Equal(t, 4, progress.Previous.SessionNumber)
	assert.True(t, isCourseCompleted(course, progress))
}

func TestCourseProgressPartial(t *testing.T) {
	course := domain.TreatmentCourse{
		TotalSessions: 4,
		Sessions: sessionsWithStatuses(
			domain.SessionStatusCompleted,
			domain.SessionStatusCompleted,
			domain.SessionStatusScheduled,
			domain.SessionStatusPending,
		),
	}

	progress := courseProgress(course)

	assert.Equal(t, 2, progress.CompletedSessions)
	assert.Equal(t, 50, progress.Percent)
	require.NotNil(t, progress.Current)
	assert.Equal(t, 3, progress.Current.SessionNumber)
	require.NotNil(t, progress.Previous)
	assert.Equal(t, 2, progress.Previous.SessionNumber)
	assert.False(t, isCourseCompleted(course, progress))
}

func TestCourseProgressRounding(t *testing.T) {
	course := domain.TreatmentCourse{
		TotalSessions: 3,
		Sessions: sessionsWithStatuses(
			domain.SessionStatusCompleted,
			domain.SessionStatusPending,
			domain.SessionStatusPending,
		),
	}

	// 1/3 округляется арифметически до 33.
	assert.Equal(t, 33, courseProgress(course).Percent)

	course.Sessions = sessionsWithStatuses(
		domain.SessionStatusCompleted,
		domain.SessionStatusCompleted,
		domain.SessionStatusPending,
	)
	assert.Equal(t, 67, courseProgress(course).Percent)
}

func TestCourseProgressClampedAtHundred(t *testing.T) {
	// Сеансов завершено больше, чем заявлено в курсе: процент не выходит
	// за сотню.
	course := domain.TreatmentCourse{
		TotalSessions: 2,
		Sessions: sessionsWithStatuses(
			domain.SessionStatusCompleted,
			domain.SessionStatusCompleted,
			domain.SessionStatusCompleted,
		),
	}

	progress := courseProgress(course)

	assert.Equal(t, 3, progress.CompletedSessions)
	assert.Equal(t, 100, progress.Percent)
	assert.True(t, isCourseCompleted(course, progress))
}

func TestCourseProgressEmptyCourse(t *testing.T) {
	course := domain.TreatmentCourse{TotalSessions: 0}

	progress := courseProgress(course)

	assert.Equal(t, 0, progress.Percent)
	assert.Equal(t, 0, progress.CompletedSessions)
	// Курс без сеансов не считается завершенным.
	assert.False(t, isCourseCompleted(course, progress))
}

func TestListByClientFiltersByComputedCompletion(t *testing.T) {
	courses := []domain.TreatmentCourse{
		{
			ID:            1,
			TotalSessions: 2,
			// Хранимый статус active, но все сеансы завершены.
			Status:   "active",
			Sessions: sessionsWithStatuses(domain.SessionStatusCompleted, domain.SessionStatusCompleted),
		},
		{
			ID:            2,
			TotalSessions: 2,
			Status:        "active",
			Sessions:      sessionsWithStatuses(domain.SessionStatusCompleted, domain.SessionStatusPending),
		},
	}

	repo := &courseRepoStub{
		listByClientFn: func(ctx context.Context, clientID int64) ([]domain.TreatmentCourse, error) {
			return courses, nil
		},
	}
	s := NewCourseService(repo, &publisherStub{}, zap.NewNop())

	completed := true
	got, progresses, err := s.ListByClient(context.Background(), 7, &completed)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, 100, progresses[0].Percent)

	completed = false
	got, progresses, err = s.ListByClient(context.Background(), 7, &completed)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].ID)
	assert.Equal(t, 50, progresses[0].Percent)

	got, _, err = s.ListByClient(context.Background(), 7, nil)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestUpdateSessionValidatesNumber(t *testing.T) {
	repo := &courseRepoStub{
		getByIDFn: func(ctx context.Context, id int64) (*domain.TreatmentCourse, error) {
			return &domain.TreatmentCourse{ID: id, ClientID: 7, TotalSessions: 4}, nil
		},
	}
	s := NewCourseService(repo, &publisherStub{}, zap.NewNop())

	err := s.UpdateSession(context.Background(), 1, 5, domain.UpdateCourseSessionDTO{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "не существует")

	err = s.UpdateSession(context.Background(), 1, 0, domain.UpdateCourseSessionDTO{})
	require.Error(t, err)
}

func TestUpdateSessionPublishesRefresh(t *testing.T) {
	publisher := &publisherStub{}
	repo := &courseRepoStub{
		getByIDFn: func(ctx context.Context, id int64) (*domain.TreatmentCourse, error) {
			return &domain.TreatmentCourse{ID: id, ClientID: 7, TotalSessions: 4}, nil
		},
	}
	s := NewCourseService(repo, publisher, zap.NewNop())

	status := domain.SessionStatusCompleted
	err := s.UpdateSession(context.Background(), 1, 2, domain.UpdateCourseSessionDTO{Status: &status})
	require.NoError(t, err)

	require.Len(t, publisher.published, 1)
	assert.Equal(t, int64(7), publisher.published[0].userID)
}
