package services

import (
	"testing"
	"time"

	"libracirc/internal/adapters/persistence/models"
	"libracirc/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemainingLoanQuota(t *testing.T) {
	limiter := NewBorrowLimiter(testPolicy())

	t.Run("open loans count against the cap", func(t *testing.T) {
		loans := []models.Loan{
			{Returned: false},
			{Returned: false},
			{Returned: true},
		}

		remaining, err := limiter.RemainingLoanQuota(loans)

		require.NoError(t, err)
		assert.Equal(t, 3, remaining)
	})

	t.Run("empty history leaves the full quota", func(t *testing.T) {
		remaining, err := limiter.RemainingLoanQuota([]models.Loan{})

		require.NoError(t, err)
		assert.Equal(t, 5, remaining)
	})

	t.Run("cap reached leaves zero", func(t *testing.T) {
		loans := make([]models.Loan, 5)

		remaining, err := limiter.RemainingLoanQuota(loans)

		require.NoError(t, err)
		assert.Zero(t, remaining)
	})

	t.Run("nil list means the caller forgot to load it", func(t *testing.T) {
		_, err := limiter.RemainingLoanQuota(nil)

		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	})

	t.Run("more open loans than the cap is a defect", func(t *testing.T) {
		loans := make([]models.Loan, 6)

		_, err := limiter.RemainingLoanQuota(loans)

		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	})
}

func TestRemainingReservationQuota(t *testing.T) {
	limiter := NewBorrowLimiter(testPolicy())
	registered := time.Now()

	t.Run("only live reservations count", func(t *testing.T) {
		reservations := []models.Reservation{
			{Status: models.ReservationWaiting, RegisteredAt: registered},
			{Status: models.ReservationActive, RegisteredAt: registered},
			{Status: models.ReservationFulfilled, RegisteredAt: registered},
			{Status: models.ReservationExpired, RegisteredAt: registered},
			{Status: models.ReservationCancelled, RegisteredAt: registered},
		}

		remaining, err := limiter.RemainingReservationQuota(reservations)

		require.NoError(t, err)
		assert.Equal(t, 3, remaining)
	})

	t.Run("nil list means the caller forgot to load it", func(t *testing.T) {
		_, err := limiter.RemainingReservationQuota(nil)

		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	})
}
