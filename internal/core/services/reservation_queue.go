package services

import (
	"context"
	"time"

	"libracirc/internal/adapters/persistence/models"
	"libracirc/internal/adapters/persistence/repositories"
	"libracirc/internal/config"
	"libracirc/internal/core/domain"
)

// ReservationQueue manages a book's FIFO hold queue: deciding where a
// new reservation starts, promoting the next reader when a copy frees
// up, and rebalancing availability when the catalog changes copy
// counts. Methods that read the queue require Book.Reservations to be
// preloaded.
type ReservationQueue struct {
	loanRepo        repositories.LoanRepository
	reservationRepo repositories.ReservationRepository
	holdPeriodDays  int
	now             func() time.Time
}

// NewReservationQueue creates a queue manager from the lending policy
func NewReservationQueue(loanRepo repositories.LoanRepository, reservationRepo repositories.ReservationRepository, cfg config.CirculationConfig) *ReservationQueue {
	return &ReservationQueue{
		loanRepo:        loanRepo,
		reservationRepo: reservationRepo,
		holdPeriodDays:  cfg.HoldPeriodDays,
		now:             time.Now,
	}
}

// markActive flips a reservation to ACTIVE and stamps its pickup deadline
func (q *ReservationQueue) markActive(reservation *models.Reservation) {
	deadline := dateOnly(q.now()).AddDate(0, 0, q.holdPeriodDays)
	reservation.Status = models.ReservationActive
	reservation.HoldDeadline = &deadline
}

// DecideInitialStatus places a new reservation in the queue. It starts
// ACTIVE only when a copy is free beyond those already earmarked for
// existing ACTIVE holders; otherwise it waits its turn.
func (q *ReservationQueue) DecideInitialStatus(book *models.Book, reservation *models.Reservation) error {
	if book.Reservations == nil {
		return domain.ErrReservationListMissing
	}

	active := 0
	for i := range book.Reservations {
		if book.Reservations[i].Status == models.ReservationActive {
			active++
		}
	}

	if book.AvailableCopies > active {
		q.markActive(reservation)
	} else {
		reservation.Status = models.ReservationWaiting
	}
	return nil
}

// PromoteOldestWaiting activates the longest-waiting WAITING
// reservation and persists it. An empty queue is not an error.
func (q *ReservationQueue) PromoteOldestWaiting(ctx context.Context, book *models.Book) error {
	if book.Reservations == nil {
		return domain.ErrReservationListMissing
	}

	var oldest *models.Reservation
	for i := range book.Reservations {
		r := &book.Reservations[i]
		if r.Status != models.ReservationWaiting {
			continue
		}
		if oldest == nil || r.RegisteredAt.Before(oldest.RegisteredAt) {
			oldest = r
		}
	}
	if oldest == nil {
		return nil
	}

	q.markActive(oldest)
	return q.reservationRepo.Save(ctx, oldest)
}

// ResolveActiveReservation finds the reader's ACTIVE hold on the book,
// marks it FULFILLED in place and returns it. Returns nil when the
// reader holds no active reservation; the caller persists the change.
func (q *ReservationQueue) ResolveActiveReservation(readerID uint, book *models.Book) (*models.Reservation, error) {
	if book.Reservations == nil {
		return nil, domain.ErrReservationListMissing
	}

	for i := range book.Reservations {
		r := &book.Reservations[i]
		if r.ReaderID == readerID && r.Status == models.ReservationActive {
			r.Status = models.ReservationFulfilled
			return r, nil
		}
	}
	return nil, nil
}

// RebalanceForNewCopyTotal recomputes availability when the catalog
// changes a book's copy count. Outstanding commitments (open loans plus
// ACTIVE holds) are counted from durable state; shrinking below them is
// refused. Growth promotes one waiting reader per added copy, re-picking
// the then-oldest after each promotion.
func (q *ReservationQueue) RebalanceForNewCopyTotal(ctx context.Context, book *models.Book, newTotalCopies int) (int, error) {
	openLoans, err := q.loanRepo.CountOpenByBook(ctx, book.ID)
	if err != nil {
		return 0, err
	}
	activeHolds, err := q.reservationRepo.CountActiveByBook(ctx, book.ID)
	if err != nil {
		return 0, err
	}

	outstanding := int(openLoans + activeHolds)
	if newTotalCopies < outstanding {
		return 0, domain.ErrCopyCountBelowCommitments
	}

	delta := newTotalCopies - book.TotalCopies
	newAvailable := book.AvailableCopies + delta

	for i := 0; i < delta; i++ {
		if err := q.PromoteOldestWaiting(ctx, book); err != nil {
			return 0, err
		}
	}
	return newAvailable, nil
}
