package services

import (
	"context"
	"errors"
	"log"
	"time"

	"libracirc/internal/adapters/persistence/models"
	"libracirc/internal/adapters/persistence/repositories"
	"libracirc/internal/core/domain"
	"libracirc/internal/pkg/locker"

	"gorm.io/gorm"
)

// ReservationService handles the reader-facing reservation lifecycle
// and the daily expiry sweep
type ReservationService struct {
	bookRepo        repositories.BookRepository
	readerRepo      repositories.ReaderRepository
	reservationRepo repositories.ReservationRepository
	queue           *ReservationQueue
	limiter         *BorrowLimiter
	credentials     CredentialVerifier
	locks           *locker.Keyed
	now             func() time.Time
}

// NewReservationService creates a new reservation service
func NewReservationService(
	bookRepo repositories.BookRepository,
	readerRepo repositories.ReaderRepository,
	reservationRepo repositories.ReservationRepository,
	queue *ReservationQueue,
	limiter *BorrowLimiter,
	credentials CredentialVerifier,
	locks *locker.Keyed,
) *ReservationService {
	return &ReservationService{
		bookRepo:        bookRepo,
		readerRepo:      readerRepo,
		reservationRepo: reservationRepo,
		queue:           queue,
		limiter:         limiter,
		credentials:     credentials,
		locks:           locks,
		now:             time.Now,
	}
}

// ReserveInput represents a reservation request
type ReserveInput struct {
	BookID   uint   `json:"book_id" validate:"required"`
	ReaderID uint   `json:"reader_id" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Reserve registers a claim on the next free copy of a book. The
// reservation starts ACTIVE when a copy is free, WAITING otherwise.
func (s *ReservationService) Reserve(ctx context.Context, input *ReserveInput) (*models.Reservation, error) {
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

	// 4. One ACTIVE hold per reader per book
	for i := range book.Reservations {
		r := &book.Reservations[i]
		if r.ReaderID == reader.ID && r.Status == models.ReservationActive {
			return nil, domain.ErrDuplicateActiveReservation
		}
	}

	// 5. No reserving a book the reader already has out
	for i := range reader.Loans {
		if reader.Loans[i].BookID == book.ID && !reader.Loans[i].Returned {
			return nil, domain.ErrDuplicateActiveLoan
		}
	}

	// 6. Enforce the per-reader reservation cap
	remaining, err := s.limiter.RemainingReservationQuota(reader.Reservations)
	if err != nil {
		return nil, err
	}
	if remaining == 0 {
		return nil, domain.ErrReservationLimitExceeded
	}

	// 7. Place in the queue and persist
	reservation := &models.Reservation{
		BookID:       book.ID,
		ReaderID:     reader.ID,
		RegisteredAt: s.now(),
	}
	if err := s.queue.DecideInitialStatus(book, reservation); err != nil {
		return nil, err
	}
	if err := s.reservationRepo.Create(ctx, reservation); err != nil {
		return nil, err
	}

	log.Printf("✅ Reservation %d registered: book %d for reader %d [%s]", reservation.ID, book.ID, reader.ID, reservation.Status)
	return reservation, nil
}

// Cancel withdraws a live reservation. Cancelling an ACTIVE hold frees
// its earmarked copy for the next waiting reader.
func (s *ReservationService) Cancel(ctx context.Context, reservationID uint, secret string) (*models.Reservation, error) {
	// 1. Load reservation with book, queue and reader account
	reservation, err := s.reservationRepo.GetByID(ctx, reservationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrReservationNotFound
		}
		return nil, err
	}

	s.locks.Lock(reservation.BookID)
	defer s.locks.Unlock(reservation.BookID)

	// 2. Verify the reader's password
	ok, err := s.credentials.VerifyCredential(ctx, reservation.Reader.AccountID, secret)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrAccessDenied
	}

	// 3. Only WAITING or ACTIVE reservations can be cancelled
	if !reservation.IsLive() {
		return nil, domain.ErrCannotCancel
	}

	// 4. Mark cancelled, in the queue snapshot too so promotion below
	// never re-picks it
	reservation.Status = models.ReservationCancelled
	syncQueueEntry(reservation.Book, reservation)
	if err := s.reservationRepo.Save(ctx, reservation); err != nil {
		return nil, err
	}

	// 5. The freed spot goes to the longest-waiting reader
	if err := s.queue.PromoteOldestWaiting(ctx, reservation.Book); err != nil {
		return nil, err
	}

	log.Printf("✅ Reservation %d cancelled: book %d for reader %d", reservation.ID, reservation.BookID, reservation.ReaderID)
	return reservation, nil
}

// ListByReader returns a reader's reservation history
func (s *ReservationService) ListByReader(ctx context.Context, readerID uint) ([]models.Reservation, error) {
	return s.reservationRepo.ListByReader(ctx, readerID)
}

// SweepExpired expires ACTIVE reservations whose pickup window closed
// more than a day ago, then hands each abandoned copy to the next
// waiting reader. Returns the number of reservations expired.
func (s *ReservationService) SweepExpired(ctx context.Context) (int, error) {
	// 1. Collect overstayed holds
	cutoff := dateOnly(s.now()).AddDate(0, 0, -1)
	expired, err := s.reservationRepo.FindActiveWithDeadlineBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if len(expired) == 0 {
		return 0, nil
	}

	// 2. Mark them all expired in one batch
	batch := make([]*models.Reservation, 0, len(expired))
	for i := range expired {
		expired[i].Status = models.ReservationExpired
		batch = append(batch, &expired[i])
	}
	if err := s.reservationRepo.SaveAll(ctx, batch); err != nil {
		return 0, err
	}

	// 3. Hand each freed copy to the then-oldest waiting reader.
	// Several holds on one book can expire in the same sweep; the
	// preloaded queues on the expired rows predate each other, so
	// promotion works per book against a freshly loaded queue.
	freedPerBook := make(map[uint]int)
	for i := range expired {
		freedPerBook[expired[i].BookID]++
	}
	for bookID, freed := range freedPerBook {
		if err := s.promoteAfterExpiry(ctx, bookID, freed); err != nil {
			return 0, err
		}
	}

	log.Printf("✅ Expired %d overdue reservation holds", len(expired))
	return len(expired), nil
}

// promoteAfterExpiry runs one promotion per freed copy, under the same
// per-book lock as borrowing. The book is reloaded after the batch
// expiry save so every pick sees the current queue, including the
// promotions made just before it.
func (s *ReservationService) promoteAfterExpiry(ctx context.Context, bookID uint, freed int) error {
	s.locks.Lock(bookID)
	defer s.locks.Unlock(bookID)

	book, err := s.bookRepo.GetByID(ctx, bookID)
	if err != nil {
		return err
	}
	for i := 0; i < freed; i++ {
		if err := s.queue.PromoteOldestWaiting(ctx, book); err != nil {
			return err
		}
	}
	return nil
}

// syncQueueEntry mirrors a reservation's status into the book's
// preloaded queue, which holds a separate copy of the row
func syncQueueEntry(book *models.Book, reservation *models.Reservation) {
	if book == nil {
		return
	}
	for i := range book.Reservations {
		if book.Reservations[i].ID == reservation.ID {
			book.Reservations[i].Status = reservation.Status
			return
		}
	}
}
