package services

import (
	"fmt"

	"libracirc/internal/adapters/persistence/models"
	"libracirc/internal/config"
	"libracirc/internal/core/domain"
)

// BorrowLimiter enforces the per-reader caps on open loans and live
// reservations. Callers must pass the reader's loaded collections;
// a nil slice means the caller forgot to preload.
type BorrowLimiter struct {
	maxOpenLoans        int
	maxOpenReservations int
}

// NewBorrowLimiter creates a limiter from the lending policy
func NewBorrowLimiter(cfg config.CirculationConfig) *BorrowLimiter {
	return &BorrowLimiter{
		maxOpenLoans:        cfg.MaxOpenLoans,
		maxOpenReservations: cfg.MaxOpenReservations,
	}
}

// RemainingLoanQuota returns how many more loans the reader may open.
// Zero means the cap is reached.
func (l *BorrowLimiter) RemainingLoanQuota(loans []models.Loan) (int, error) {
	if loans == nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, domain.ErrLoanListMissing)
	}

	open := 0
	for i := range loans {
		if !loans[i].Returned {
			open++
		}
	}

	remaining := l.maxOpenLoans - open
	if remaining < 0 {
		return 0, fmt.Errorf("%w: reader holds %d open loans, above the cap of %d", domain.ErrInvalidArgument, open, l.maxOpenLoans)
	}
	return remaining, nil
}

// RemainingReservationQuota returns how many more live reservations the
// reader may register. WAITING and ACTIVE both count against the cap.
func (l *BorrowLimiter) RemainingReservationQuota(reservations []models.Reservation) (int, error) {
	if reservations == nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, domain.ErrReservationListMissing)
	}

	live := 0
	for i := range reservations {
		if reservations[i].IsLive() {
			live++
		}
	}

	remaining := l.maxOpenReservations - live
	if remaining < 0 {
		return 0, fmt.Errorf("%w: reader holds %d live reservations, above the cap of %d", domain.ErrInvalidArgument, live, l.maxOpenReservations)
	}
	return remaining, nil
}
