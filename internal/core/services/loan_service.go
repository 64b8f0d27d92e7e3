package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"libracirc/internal/adapters/persistence/models"
	"libracirc/internal/adapters/persistence/repositories"
	"libracirc/internal/config"
	"libracirc/internal/core/domain"
	"libracirc/internal/pkg/locker"

	"gorm.io/gorm"
)

// LoanService handles borrowing, returning and renewing. Operations on
// the same book are serialized through a per-book lock so availability
// counters and queue promotions never interleave.
type LoanService struct {
	bookRepo        repositories.BookRepository
	readerRepo      repositories.ReaderRepository
	loanRepo        repositories.LoanRepository
	reservationRepo repositories.ReservationRepository
	queue           *ReservationQueue
	limiter         *BorrowLimiter
	renewals        *RenewalPolicy
	fees            *FeeCalculator
	credentials     CredentialVerifier
	locks           *locker.Keyed
	loanPeriodDays  int
	now             func() time.Time
}

// NewLoanService creates a new loan service
func NewLoanService(
	bookRepo repositories.BookRepository,
	readerRepo repositories.ReaderRepository,
	loanRepo repositories.LoanRepository,
	reservationRepo repositories.ReservationRepository,
	queue *ReservationQueue,
	limiter *BorrowLimiter,
	renewals *RenewalPolicy,
	fees *FeeCalculator,
	credentials CredentialVerifier,
	locks *locker.Keyed,
	cfg config.CirculationConfig,
) *LoanService {
	return &LoanService{
		bookRepo:        bookRepo,
		readerRepo:      readerRepo,
		loanRepo:        loanRepo,
		reservationRepo: reservationRepo,
		queue:           queue,
		limiter:         limiter,
		renewals:        renewals,
		fees:            fees,
		credentials:     credentials,
		locks:           locks,
		loanPeriodDays:  cfg.LoanPeriodDays,
		now:             time.Now,
	}
}

// BorrowInput represents a borrow request
type BorrowInput struct {
	BookID   uint   `json:"book_id" validate:"required"`
	ReaderID uint   `json:"reader_id" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoanDetail is a loan with its fee breakdown
type LoanDetail struct {
	Loan *models.Loan  `json:"loan"`
	Fees *FeeBreakdown `json:"fees"`
}

// Borrow lends a copy of a book to a reader. A reader holding an
// ACTIVE reservation consumes it; a walk-in borrower only gets a copy
// not already earmarked for reservation holders.
func (s *LoanService) Borrow(ctx context.Context, input *BorrowInput) (*models.Loan, error) {
	s.locks.Lock(input.BookID)
	defer s.locks.Unlock(input.BookID)

	// 1. Load book with its reservation queue
	book, err := s.bookRepo.GetByID(ctx, input.BookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrBookNotFound
		}
		return nil, err
	}

	// 2. Load reader with loans and reservations
	reader, err := s.readerRepo.GetByID(ctx, input.ReaderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrReaderNotFound
		}
		return nil, err
	}

	// 3. Verify the reader's password
	ok, err := s.credentials.VerifyCredential(ctx, reader.AccountID, input.Password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrAccessDenied
	}

	// 4. Reject a second open loan for the same book
	for i := range reader.Loans {
		if reader.Loans[i].BookID == book.ID && !reader.Loans[i].Returned {
			return nil, domain.ErrDuplicateActiveLoan
		}
	}

	// 5. Enforce the per-reader loan cap
	remaining, err := s.limiter.RemainingLoanQuota(reader.Loans)
	if err != nil {
		return nil, err
	}
	if remaining == 0 {
		return nil, domain.ErrLoanLimitExceeded
	}

	// 6. An ACTIVE reservation holder consumes their hold
	reservation, err := s.queue.ResolveActiveReservation(reader.ID, book)
	if err != nil {
		return nil, err
	}

	// 7. Walk-in borrowers cannot take copies earmarked for the queue
	if reservation == nil {
		activeHolds := 0
		for i := range book.Reservations {
			if book.Reservations[i].Status == models.ReservationActive {
				activeHolds++
			}
		}
		if activeHolds >= book.AvailableCopies {
			return nil, domain.ErrBookUnavailable
		}
	}

	// 8. Take the copy
	if book.AvailableCopies == 0 {
		return nil, domain.ErrBookUnavailable
	}
	book.AvailableCopies--
	if err := s.saveBookCounters(ctx, book); err != nil {
		return nil, err
	}

	// 9. Open the loan
	today := dateOnly(s.now())
	loan := &models.Loan{
		BookID:    book.ID,
		ReaderID:  reader.ID,
		StartDate: today,
		DueDate:   today.AddDate(0, 0, s.loanPeriodDays),
	}
	if reservation != nil {
		loan.ReservationID = &reservation.ID
	}
	if err := s.loanRepo.Create(ctx, loan); err != nil {
		return nil, err
	}

	// 10. Close the fulfilled reservation with a back-reference
	if reservation != nil {
		reservation.LoanID = &loan.ID
		if err := s.reservationRepo.Save(ctx, reservation); err != nil {
			return nil, err
		}
	}

	log.Printf("✅ Loan opened: book %d to reader %d (due %s)", book.ID, reader.ID, loan.DueDate.Format("2006-01-02"))
	return loan, nil
}

// Return closes a loan, frees the copy and promotes the next waiting
// reservation if any
func (s *LoanService) Return(ctx context.Context, loanID uint, secret string) (*models.Loan, error) {
	// 1. Load loan with book, queue and reader account
	loan, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrLoanNotFound
		}
		return nil, err
	}

	s.locks.Lock(loan.BookID)
	defer s.locks.Unlock(loan.BookID)

	// 2. Verify the reader's password
	ok, err := s.credentials.VerifyCredential(ctx, loan.Reader.AccountID, secret)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrAccessDenied
	}

	// 3. Reject double returns
	if loan.Returned {
		return nil, domain.ErrAlreadyReturned
	}

	// 4. The counter cannot exceed the copy total
	book := loan.Book
	if book.AvailableCopies >= book.TotalCopies {
		return nil, fmt.Errorf("%w: no copies of book %d are currently on loan", domain.ErrInvalidState, book.ID)
	}

	// 5. Close the loan
	today := dateOnly(s.now())
	loan.ReturnDate = &today
	loan.Returned = true
	if err := s.loanRepo.Save(ctx, loan); err != nil {
		return nil, err
	}

	// 6. Free the copy
	book.AvailableCopies++
	if err := s.saveBookCounters(ctx, book); err != nil {
		return nil, err
	}

	// 7. Hand the freed copy to the longest-waiting reservation
	if err := s.queue.PromoteOldestWaiting(ctx, book); err != nil {
		return nil, err
	}

	log.Printf("✅ Loan %d returned: book %d by reader %d", loan.ID, book.ID, loan.ReaderID)
	return loan, nil
}

// Renew extends a loan for another lending period. Renewal is only
// allowed on the due date itself, and only while no other reader is
// waiting for the book.
func (s *LoanService) Renew(ctx context.Context, loanID uint, secret string) (*models.Loan, error) {
	// 1. Load loan with book, queue and reader account
	loan, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrLoanNotFound
		}
		return nil, err
	}

	s.locks.Lock(loan.BookID)
	defer s.locks.Unlock(loan.BookID)

	// 2. Verify the reader's password
	ok, err := s.credentials.VerifyCredential(ctx, loan.Reader.AccountID, secret)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrAccessDenied
	}

	// 3. Closed loans cannot be renewed
	if loan.Returned {
		return nil, domain.ErrAlreadyReturned
	}

	// 4. Overdue first, then the exact-day rule
	today := dateOnly(s.now())
	due := dateOnly(loan.DueDate)
	if today.After(due) {
		return nil, domain.ErrRenewalTooLate
	}
	if today.Before(due) {
		return nil, domain.ErrRenewalTooEarly
	}

	// 5. Waiting readers take priority over renewals
	for i := range loan.Book.Reservations {
		if loan.Book.Reservations[i].Status == models.ReservationWaiting {
			return nil, domain.ErrReservationsPending
		}
	}

	// 6. Apply the renewal cap and push the due date
	if err := s.renewals.Renew(loan); err != nil {
		return nil, err
	}

	// 7. Persist
	if err := s.loanRepo.Save(ctx, loan); err != nil {
		return nil, err
	}

	log.Printf("✅ Loan %d renewed (%d/%d), new due date %s", loan.ID, loan.RenewalCount, s.renewals.maxRenewals, loan.DueDate.Format("2006-01-02"))
	return loan, nil
}

// GetWithFees returns a loan together with its current fee breakdown
func (s *LoanService) GetWithFees(ctx context.Context, loanID uint) (*LoanDetail, error) {
	loan, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrLoanNotFound
		}
		return nil, err
	}

	fees, err := s.fees.BreakdownFor(loan)
	if err != nil {
		return nil, err
	}

	return &LoanDetail{Loan: loan, Fees: fees}, nil
}

// ListByReader returns a reader's loan history with fee breakdowns
func (s *LoanService) ListByReader(ctx context.Context, readerID uint) ([]LoanDetail, error) {
	loans, err := s.loanRepo.ListByReader(ctx, readerID)
	if err != nil {
		return nil, err
	}

	details := make([]LoanDetail, 0, len(loans))
	for i := range loans {
		fees, err := s.fees.BreakdownFor(&loans[i])
		if err != nil {
			return nil, err
		}
		details = append(details, LoanDetail{Loan: &loans[i], Fees: fees})
	}
	return details, nil
}

// saveBookCounters persists the book without touching its preloaded
// associations
func (s *LoanService) saveBookCounters(ctx context.Context, book *models.Book) error {
	snapshot := *book
	snapshot.Loans = nil
	snapshot.Reservations = nil
	return s.bookRepo.Save(ctx, &snapshot)
}
