package services

import (
	"testing"
	"time"

	"libracirc/internal/adapters/persistence/models"
	"libracirc/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenew(t *testing.T) {
	today := date(2026, time.March, 20)
	policy := NewRenewalPolicy(testPolicy())
	policy.now = fixedClock(today)

	t.Run("pushes the due date a full period past today", func(t *testing.T) {
		loan := &models.Loan{
			StartDate:    date(2026, time.March, 5),
			DueDate:      today,
			RenewalCount: 1,
		}

		err := policy.Renew(loan)

		require.NoError(t, err)
		assert.Equal(t, 2, loan.RenewalCount)
		assert.Equal(t, date(2026, time.April, 4), loan.DueDate)
	})

	t.Run("stops at the renewal cap", func(t *testing.T) {
		loan := &models.Loan{DueDate: today, RenewalCount: 3}

		err := policy.Renew(loan)

		assert.ErrorIs(t, err, domain.ErrRenewalLimitExceeded)
		assert.Equal(t, 3, loan.RenewalCount)
		assert.Equal(t, today, loan.DueDate)
	})

	t.Run("nil loan is rejected", func(t *testing.T) {
		err := policy.Renew(nil)

		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	})
}
