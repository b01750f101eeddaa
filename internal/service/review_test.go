package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"lotus/internal/domain"
)

func completedAppointment(id, userID, serviceID int64) *domain.Appointment {
	return &domain.Appointment{
		ID:        id,
		UserID:    userID,
		ServiceID: serviceID,
		Status:    domain.AppointmentStatusCompleted,
	}
}

func int64Ptr(v int64) *int64 { return &v }

func TestCreateReview(t *testing.T) {
	appointmentRepo := &appointmentRepoStub{
		getByIDFn: func(ctx context.Context, id int64) (*domain.Appointment, error) {
			return completedAppointment(id, 7, 3), nil
		},
	}
	reviewRepo := &reviewRepoStub{
		createFn: func(ctx context.Context, userID int64, dto domain.CreateReviewDTO) (int64, error) {
			return 11, nil
		},
	}
	s := NewReviewService(reviewRepo, appointmentRepo, zap.NewNop())

	id, err := s.Create(context.Background(), 7, domain.CreateReviewDTO{
		ServiceID:     3,
		AppointmentID: int64Ptr(5),
		Rating:        5,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(11), id)
}

func TestCreateReviewRequiresAppointment(t *testing.T) {
	s := NewReviewService(&reviewRepoStub{}, &appointmentRepoStub{}, zap.NewNop())

	_, err := s.Create(context.Background(), 7, domain.CreateReviewDTO{ServiceID: 3, Rating: 5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "конкретной записи")
}

func TestCreateReviewRejectsForeignAppointment(t *testing.T) {
	appointmentRepo := &appointmentRepoStub{
		getByIDFn: func(ctx context.Context, id int64) (*domain.Appointment, error) {
			return completedAppointment(id, 1, 3), nil
		},
	}
	s := NewReviewService(&reviewRepoStub{}, appointmentRepo, zap.NewNop())

	_, err := s.Create(context.Background(), 2, domain.CreateReviewDTO{
		ServiceID:     3,
		AppointmentID: int64Ptr(5),
		Rating:        5,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "доступа")
}

func TestCreateReviewRequiresCompletedStatus(t *testing.T) {
	appointmentRepo := &appointmentRepoStub{
		getByIDFn: func(ctx context.Context, id int64) (*domain.Appointment, error) {
			a := completedAppointment(id, 7, 3)
			a.Status = domain.AppointmentStatusPending
			return a, nil
		},
	}
	s := NewReviewService(&reviewRepoStub{}, appointmentRepo, zap.NewNop())

	_, err := s.Create(context.Background(), 7, domain.CreateReviewDTO{
		ServiceID:     3,
		AppointmentID: int64Ptr(5),
		Rating:        5,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "после завершения")
}

func TestCreateReviewRejectsMismatchedService(t *testing.T) {
	appointmentRepo := &appointmentRepoStub{
		getByIDFn: func(ctx context.Context, id int64) (*domain.Appointment, error) {
			return completedAppointment(id, 7, 3), nil
		},
	}
	s := NewReviewService(&reviewRepoStub{}, appointmentRepo, zap.NewNop())

	_, err := s.Create(context.Background(), 7, domain.CreateReviewDTO{
		ServiceID:     99,
		AppointmentID: int64Ptr(5),
		Rating:        5,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "не соответствует")
}

func TestCreateReviewRejectsDuplicate(t *testing.T) {
	appointmentRepo := &appointmentRepoStub{
		getByIDFn: func(ctx context.Context, id int64) (*domain.Appointment, error) {
			return completedAppointment(id, 7, 3), nil
		},
	}
	reviewRepo := &reviewRepoStub{
		existsFn: func(ctx context.Context, appointmentID int64) (bool, error) {
			return true, nil
		},
	}
	s := NewReviewService(reviewRepo, appointmentRepo, zap.NewNop())

	_, err := s.Create(context.Background(), 7, domain.CreateReviewDTO{
		ServiceID:     3,
		AppointmentID: int64Ptr(5),
		Rating:        4,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "уже оставлен")
}
