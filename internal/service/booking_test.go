package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"lotus/config"
	"lotus/internal/domain"
)

func testBookingConfig() config.BookingConfig {
	return config.BookingConfig{
		OpenTime:       "09:00",
		CloseTime:      "22:00",
		SlotMinutes:    15,
		ReminderWindow: 24 * time.Hour,
	}
}

func newTestBookingService(repo *appointmentRepoStub, now time.Time) *BookingServiceImpl {
	s := NewBookingService(repo, testBookingConfig(), zap.NewNop())
	s.now = func() time.Time { return now }
	return s
}

func TestSlotGrid(t *testing.T) {
	grid, err := slotGrid(testBookingConfig())
	require.NoError(t, err)

	// 09:00..22:00 с шагом 15 минут, закрывающее время входит.
	assert.Len(t, grid, 53)
	assert.Equal(t, "09:00", grid[0])
	assert.Equal(t, "09:15", grid[1])
	assert.Equal(t, "22:00", grid[len(grid)-1])
}

func TestSlotGridInvalidConfig(t *testing.T) {
	cfg := testBookingConfig()
	cfg.CloseTime = "08:00"

	_, err := slotGrid(cfg)
	assert.Error(t, err)
}

func TestFreeSlotsFutureDate(t *testing.T) {
	now := time.Date(2026, 5, 20, 12, 0, 0, 0, time.Local)
	repo := &appointmentRepoStub{
		busyTimesFn: func(ctx context.Context, userID int64, date domain.CalendarDate) ([]string, error) {
			return []string{"10:00", "15:30"}, nil
		},
	}
	s := newTestBookingService(repo, now)

	slots, err := s.FreeSlots(context.Background(), 1, domain.CalendarDate{Year: 2026, Month: 5, Day: 21})
	require.NoError(t, err)
	require.Len(t, slots, 53)

	booked := make(map[string]bool)
	for _, slot := range slots {
		booked[slot.Time] = slot.Booked
	}
	assert.True(t, booked["10:00"])
	assert.True(t, booked["15:30"])
	assert.False(t, booked["09:00"])
	assert.False(t, booked["22:00"])
}

func TestFreeSlotsPastDate(t *testing.T) {
	now := time.Date(2026, 5, 20, 12, 0, 0, 0, time.Local)
	s := newTestBookingService(&appointmentRepoStub{}, now)

	slots, err := s.FreeSlots(context.Background(), 1, domain.CalendarDate{Year: 2026, Month: 5, Day: 19})
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestFreeSlotsTodayKeepsOnlyStrictlyFuture(t *testing.T) {
	// 21:58 - остается только слот 22:00, слот 21:45 уже не успеть.
	now := time.Date(2026, 5, 20, 21, 58, 0, 0, time.Local)
	s := newTestBookingService(&appointmentRepoStub{}, now)

	slots, err := s.FreeSlots(context.Background(), 1, domain.DateOf(now))
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, "22:00", slots[0].Time)
}

func TestFreeSlotsTodaySlotEqualToNowExcluded(t *testing.T) {
	now := time.Date(2026, 5, 20, 22, 0, 0, 0, time.Local)
	s := newTestBookingService(&appointmentRepoStub{}, now)

	slots, err := s.FreeSlots(context.Background(), 1, domain.DateOf(now))
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestFreeSlotsTodayMorning(t *testing.T) {
	now := time.Date(2026, 5, 20, 8, 0, 0, 0, time.Local)
	s := newTestBookingService(&appointmentRepoStub{}, now)

	slots, err := s.FreeSlots(context.Background(), 1, domain.DateOf(now))
	require.NoError(t, err)
	assert.Len(t, slots, 53)
}
