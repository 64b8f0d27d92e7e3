package services

import (
	"context"
	"time"

	"libracirc/internal/adapters/persistence/models"
	"libracirc/internal/config"
	"libracirc/internal/pkg/locker"

	"gorm.io/gorm"
)

// fakeStore is an in-memory stand-in for the database. Repositories
// built on it emulate the GORM preloads the services rely on.
type fakeStore struct {
	accounts     map[uint]*models.Account
	readers      map[uint]*models.Reader
	books        map[uint]*models.Book
	loans        map[uint]*models.Loan
	reservations map[uint]*models.Reservation
	nextID       uint
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		accounts:     make(map[uint]*models.Account),
		readers:      make(map[uint]*models.Reader),
		books:        make(map[uint]*models.Book),
		loans:        make(map[uint]*models.Loan),
		reservations: make(map[uint]*models.Reservation),
	}
}

func (s *fakeStore) id() uint {
	s.nextID++
	return s.nextID
}

func (s *fakeStore) addAccount(password string) *models.Account {
	account := &models.Account{ID: s.id(), Email: "reader@example.org", Password: password, Role: models.RoleReader, IsActive: true}
	s.accounts[account.ID] = account
	return account
}

func (s *fakeStore) addReader(account *models.Account) *models.Reader {
	reader := &models.Reader{ID: s.id(), FullName: "Test Reader", AccountID: account.ID}
	s.readers[reader.ID] = reader
	return reader
}

func (s *fakeStore) addBook(total, available int) *models.Book {
	book := &models.Book{ID: s.id(), Title: "Book", ISBN: "9780134190440", TotalCopies: total, AvailableCopies: available}
	s.books[book.ID] = book
	return book
}

func (s *fakeStore) addLoan(bookID, readerID uint, start, due time.Time, returned bool) *models.Loan {
	loan := &models.Loan{ID: s.id(), BookID: bookID, ReaderID: readerID, StartDate: start, DueDate: due, Returned: returned}
	s.loans[loan.ID] = loan
	return loan
}

func (s *fakeStore) addReservation(bookID, readerID uint, status string, registeredAt time.Time) *models.Reservation {
	reservation := &models.Reservation{ID: s.id(), BookID: bookID, ReaderID: readerID, Status: status, RegisteredAt: registeredAt}
	s.reservations[reservation.ID] = reservation
	return reservation
}

func (s *fakeStore) loansOfBook(bookID uint) []models.Loan {
	loans := make([]models.Loan, 0)
	for _, loan := range s.loans {
		if loan.BookID == bookID {
			loans = append(loans, *loan)
		}
	}
	return loans
}

func (s *fakeStore) loansOfReader(readerID uint) []models.Loan {
	loans := make([]models.Loan, 0)
	for _, loan := range s.loans {
		if loan.ReaderID == readerID {
			loans = append(loans, *loan)
		}
	}
	return loans
}

func (s *fakeStore) reservationsOfBook(bookID uint) []models.Reservation {
	reservations := make([]models.Reservation, 0)
	for _, reservation := range s.reservations {
		if reservation.BookID == bookID {
			reservations = append(reservations, *reservation)
		}
	}
	return reservations
}

func (s *fakeStore) reservationsOfReader(readerID uint) []models.Reservation {
	reservations := make([]models.Reservation, 0)
	for _, reservation := range s.reservations {
		if reservation.ReaderID == readerID {
			reservations = append(reservations, *reservation)
		}
	}
	return reservations
}

// ---- repositories ----

type fakeBookRepo struct{ store *fakeStore }

func (r *fakeBookRepo) Create(_ context.Context, book *models.Book) error {
	book.ID = r.store.id()
	copied := *book
	r.store.books[book.ID] = &copied
	return nil
}

func (r *fakeBookRepo) Save(_ context.Context, book *models.Book) error {
	copied := *book
	copied.Loans = nil
	copied.Reservations = nil
	r.store.books[book.ID] = &copied
	return nil
}

func (r *fakeBookRepo) GetByID(_ context.Context, id uint) (*models.Book, error) {
	stored, ok := r.store.books[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	book := *stored
	book.Loans = r.store.loansOfBook(id)
	book.Reservations = r.store.reservationsOfBook(id)
	return &book, nil
}

func (r *fakeBookRepo) List(_ context.Context, offset, limit int) ([]models.Book, int64, error) {
	books := make([]models.Book, 0, len(r.store.books))
	for _, book := range r.store.books {
		books = append(books, *book)
	}
	return books, int64(len(books)), nil
}

func (r *fakeBookRepo) ExistsByISBN(_ context.Context, isbn string) (bool, error) {
	for _, book := range r.store.books {
		if book.ISBN == isbn {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeBookRepo) Delete(_ context.Context, book *models.Book) error {
	delete(r.store.books, book.ID)
	return nil
}

type fakeReaderRepo struct{ store *fakeStore }

func (r *fakeReaderRepo) Create(_ context.Context, reader *models.Reader) error {
	reader.ID = r.store.id()
	copied := *reader
	r.store.readers[reader.ID] = &copied
	return nil
}

func (r *fakeReaderRepo) GetByID(_ context.Context, id uint) (*models.Reader, error) {
	stored, ok := r.store.readers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	reader := *stored
	if account, ok := r.store.accounts[reader.AccountID]; ok {
		reader.Account = *account
	}
	reader.Loans = r.store.loansOfReader(id)
	reader.Reservations = r.store.reservationsOfReader(id)
	return &reader, nil
}

func (r *fakeReaderRepo) GetByAccountID(_ context.Context, accountID uint) (*models.Reader, error) {
	for id, reader := range r.store.readers {
		if reader.AccountID == accountID {
			return r.GetByID(context.Background(), id)
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeLoanRepo struct{ store *fakeStore }

func (r *fakeLoanRepo) Create(_ context.Context, loan *models.Loan) error {
	loan.ID = r.store.id()
	copied := *loan
	copied.Book = nil
	copied.Reader = nil
	r.store.loans[loan.ID] = &copied
	return nil
}

func (r *fakeLoanRepo) Save(_ context.Context, loan *models.Loan) error {
	copied := *loan
	copied.Book = nil
	copied.Reader = nil
	r.store.loans[loan.ID] = &copied
	return nil
}

func (r *fakeLoanRepo) GetByID(_ context.Context, id uint) (*models.Loan, error) {
	stored, ok := r.store.loans[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	loan := *stored
	if book, ok := r.store.books[loan.BookID]; ok {
		copied := *book
		copied.Reservations = r.store.reservationsOfBook(book.ID)
		loan.Book = &copied
	}
	if reader, ok := r.store.readers[loan.ReaderID]; ok {
		copied := *reader
		if account, ok := r.store.accounts[reader.AccountID]; ok {
			copied.Account = *account
		}
		loan.Reader = &copied
	}
	return &loan, nil
}

func (r *fakeLoanRepo) ListByReader(_ context.Context, readerID uint) ([]models.Loan, error) {
	return r.store.loansOfReader(readerID), nil
}

func (r *fakeLoanRepo) CountOpenByBook(_ context.Context, bookID uint) (int64, error) {
	var count int64
	for _, loan := range r.store.loans {
		if loan.BookID == bookID && !loan.Returned {
			count++
		}
	}
	return count, nil
}

func (r *fakeLoanRepo) ExistsForBook(_ context.Context, bookID uint) (bool, error) {
	for _, loan := range r.store.loans {
		if loan.BookID == bookID {
			return true, nil
		}
	}
	return false, nil
}

type fakeReservationRepo struct{ store *fakeStore }

func (r *fakeReservationRepo) Create(_ context.Context, reservation *models.Reservation) error {
	reservation.ID = r.store.id()
	copied := *reservation
	copied.Book = nil
	copied.Reader = nil
	r.store.reservations[reservation.ID] = &copied
	return nil
}

func (r *fakeReservationRepo) Save(_ context.Context, reservation *models.Reservation) error {
	copied := *reservation
	copied.Book = nil
	copied.Reader = nil
	r.store.reservations[reservation.ID] = &copied
	return nil
}

func (r *fakeReservationRepo) SaveAll(ctx context.Context, reservations []*models.Reservation) error {
	for _, reservation := range reservations {
		if err := r.Save(ctx, reservation); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeReservationRepo) GetByID(_ context.Context, id uint) (*models.Reservation, error) {
	stored, ok := r.store.reservations[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	reservation := *stored
	if book, ok := r.store.books[reservation.BookID]; ok {
		copied := *book
		copied.Reservations = r.store.reservationsOfBook(book.ID)
		reservation.Book = &copied
	}
	if reader, ok := r.store.readers[reservation.ReaderID]; ok {
		copied := *reader
		if account, ok := r.store.accounts[reader.AccountID]; ok {
			copied.Account = *account
		}
		reservation.Reader = &copied
	}
	return &reservation, nil
}

func (r *fakeReservationRepo) ListByReader(_ context.Context, readerID uint) ([]models.Reservation, error) {
	return r.store.reservationsOfReader(readerID), nil
}

func (r *fakeReservationRepo) CountActiveByBook(_ context.Context, bookID uint) (int64, error) {
	var count int64
	for _, reservation := range r.store.reservations {
		if reservation.BookID == bookID && reservation.Status == models.ReservationActive {
			count++
		}
	}
	return count, nil
}

func (r *fakeReservationRepo) FindActiveWithDeadlineBefore(_ context.Context, cutoff time.Time) ([]models.Reservation, error) {
	matches := make([]models.Reservation, 0)
	for _, stored := range r.store.reservations {
		if stored.Status != models.ReservationActive || stored.HoldDeadline == nil {
			continue
		}
		if stored.HoldDeadline.Before(cutoff) {
			reservation := *stored
			if book, ok := r.store.books[reservation.BookID]; ok {
				copied := *book
				copied.Reservations = r.store.reservationsOfBook(book.ID)
				reservation.Book = &copied
			}
			matches = append(matches, reservation)
		}
	}
	return matches, nil
}

func (r *fakeReservationRepo) ExistsForBook(_ context.Context, bookID uint) (bool, error) {
	for _, reservation := range r.store.reservations {
		if reservation.BookID == bookID {
			return true, nil
		}
	}
	return false, nil
}

// fakeCredentials accepts one password for every account
type fakeCredentials struct {
	store    *fakeStore
	password string
}

func (f *fakeCredentials) VerifyCredential(_ context.Context, accountID uint, secret string) (bool, error) {
	if _, ok := f.store.accounts[accountID]; !ok {
		return false, gorm.ErrRecordNotFound
	}
	return secret == f.password, nil
}

// ---- wiring helpers ----

const testPassword = "correct-horse"

func testPolicy() config.CirculationConfig {
	return config.CirculationConfig{
		LoanPeriodDays:      15,
		HoldPeriodDays:      2,
		MaxOpenLoans:        5,
		MaxOpenReservations: 5,
		MaxRenewals:         3,
		DailyLateFee:        2.0,
		DailyRentalFee:      1.0,
	}
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// circulationFixture wires loan and reservation services over a fake
// store with the clock pinned to today
type circulationFixture struct {
	store        *fakeStore
	loans        *LoanService
	reservations *ReservationService
	books        *BookService
	queue        *ReservationQueue
}

func newCirculationFixture(today time.Time) *circulationFixture {
	store := newFakeStore()
	policy := testPolicy()

	bookRepo := &fakeBookRepo{store: store}
	readerRepo := &fakeReaderRepo{store: store}
	loanRepo := &fakeLoanRepo{store: store}
	reservationRepo := &fakeReservationRepo{store: store}
	credentials := &fakeCredentials{store: store, password: testPassword}

	queue := NewReservationQueue(loanRepo, reservationRepo, policy)
	queue.now = fixedClock(today)

	limiter := NewBorrowLimiter(policy)

	renewals := NewRenewalPolicy(policy)
	renewals.now = fixedClock(today)

	fees := NewFeeCalculator(policy)
	fees.now = fixedClock(today)

	locks := locker.NewKeyed()

	loans := NewLoanService(bookRepo, readerRepo, loanRepo, reservationRepo, queue, limiter, renewals, fees, credentials, locks, policy)
	loans.now = fixedClock(today)

	reservations := NewReservationService(bookRepo, readerRepo, reservationRepo, queue, limiter, credentials, locks)
	reservations.now = fixedClock(today)

	books := NewBookService(bookRepo, loanRepo, reservationRepo, queue, locks)

	return &circulationFixture{
		store:        store,
		loans:        loans,
		reservations: reservations,
		books:        books,
		queue:        queue,
	}
}
