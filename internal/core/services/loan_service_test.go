package services

import (
	"context"
	"testing"
	"time"

	"libracirc/internal/adapters/persistence/models"
	"libracirc/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBorrow(t *testing.T) {
	today := date(2026, time.May, 4)
	ctx := context.Background()

	t.Run("walk-in borrow takes a copy and sets the due date", func(t *testing.T) {
		fx := newCirculationFixture(today)
		account := fx.store.addAccount(testPassword)
		reader := fx.store.addReader(account)
		book := fx.store.addBook(2, 2)

		loan, err := fx.loans.Borrow(ctx, &BorrowInput{BookID: book.ID, ReaderID: reader.ID, Password: testPassword})

		require.NoError(t, err)
		assert.Equal(t, today, loan.StartDate)
		assert.Equal(t, date(2026, time.May, 19), loan.DueDate)
		assert.Nil(t, loan.ReservationID)
		assert.Equal(t, 1, fx.store.books[book.ID].AvailableCopies)
	})

	t.Run("wrong password is refused before any state change", func(t *testing.T) {
		fx := newCirculationFixture(today)
		account := fx.store.addAccount(testPassword)
		reader := fx.store.addReader(account)
		book := fx.store.addBook(1, 1)

		_, err := fx.loans.Borrow(ctx, &BorrowInput{BookID: book.ID, ReaderID: reader.ID, Password: "wrong"})

		assert.ErrorIs(t, err, domain.ErrAccessDenied)
		assert.Equal(t, 1, fx.store.books[book.ID].AvailableCopies)
		assert.Empty(t, fx.store.loans)
	})

	t.Run("unknown book and reader report not found", func(t *testing.T) {
		fx := newCirculationFixture(today)
		account := fx.store.addAccount(testPassword)
		reader := fx.store.addReader(account)
		book := fx.store.addBook(1, 1)

		_, err := fx.loans.Borrow(ctx, &BorrowInput{BookID: 999, ReaderID: reader.ID, Password: testPassword})
		assert.ErrorIs(t, err, domain.ErrBookNotFound)

		_, err = fx.loans.Borrow(ctx, &BorrowInput{BookID: book.ID, ReaderID: 999, Password: testPassword})
		assert.ErrorIs(t, err, domain.ErrReaderNotFound)
	})

	t.Run("second open loan for the same book is refused", func(t *testing.T) {
		fx := newCirculationFixture(today)
		account := fx.store.addAccount(testPassword)
		reader := fx.store.addReader(account)
		book := fx.store.addBook(3, 3)
		fx.store.addLoan(book.ID, reader.ID, today, date(2026, time.May, 19), false)

		_, err := fx.loans.Borrow(ctx, &BorrowInput{BookID: book.ID, ReaderID: reader.ID, Password: testPassword})

		assert.ErrorIs(t, err, domain.ErrDuplicateActiveLoan)
	})

	t.Run("loan cap is checked before availability", func(t *testing.T) {
		fx := newCirculationFixture(today)
		account := fx.store.addAccount(testPassword)
		reader := fx.store.addReader(account)
		for i := 0; i < 5; i++ {
			other := fx.store.addBook(1, 0)
			fx.store.addLoan(other.ID, reader.ID, today, date(2026, time.May, 19), false)
		}
		empty := fx.store.addBook(1, 0)

		_, err := fx.loans.Borrow(ctx, &BorrowInput{BookID: empty.ID, ReaderID: reader.ID, Password: testPassword})

		assert.ErrorIs(t, err, domain.ErrLoanLimitExceeded)
	})

	t.Run("no copies available is refused", func(t *testing.T) {
		fx := newCirculationFixture(today)
		account := fx.store.addAccount(testPassword)
		reader := fx.store.addReader(account)
		book := fx.store.addBook(1, 0)

		_, err := fx.loans.Borrow(ctx, &BorrowInput{BookID: book.ID, ReaderID: reader.ID, Password: testPassword})

		assert.ErrorIs(t, err, domain.ErrBookUnavailable)
	})

	t.Run("walk-in cannot take a copy earmarked for an active hold", func(t *testing.T) {
		fx := newCirculationFixture(today)
		account := fx.store.addAccount(testPassword)
		reader := fx.store.addReader(account)
		holderAccount := fx.store.addAccount(testPassword)
		holder := fx.store.addReader(holderAccount)
		book := fx.store.addBook(1, 1)
		fx.store.addReservation(book.ID, holder.ID, models.ReservationActive, today.AddDate(0, 0, -1))

		_, err := fx.loans.Borrow(ctx, &BorrowInput{BookID: book.ID, ReaderID: reader.ID, Password: testPassword})

		assert.ErrorIs(t, err, domain.ErrBookUnavailable)
	})

	t.Run("active hold holder consumes the reservation", func(t *testing.T) {
		fx := newCirculationFixture(today)
		account := fx.store.addAccount(testPassword)
		reader := fx.store.addReader(account)
		book := fx.store.addBook(1, 1)
		hold := fx.store.addReservation(book.ID, reader.ID, models.ReservationActive, today.AddDate(0, 0, -1))

		loan, err := fx.loans.Borrow(ctx, &BorrowInput{BookID: book.ID, ReaderID: reader.ID, Password: testPassword})

		require.NoError(t, err)
		require.NotNil(t, loan.ReservationID)
		assert.Equal(t, hold.ID, *loan.ReservationID)

		stored := fx.store.reservations[hold.ID]
		assert.Equal(t, models.ReservationFulfilled, stored.Status)
		require.NotNil(t, stored.LoanID)
		assert.Equal(t, loan.ID, *stored.LoanID)
		assert.Equal(t, 0, fx.store.books[book.ID].AvailableCopies)
	})
}

func TestReturn(t *testing.T) {
	today := date(2026, time.May, 4)
	ctx := context.Background()

	t.Run("closing a loan frees the copy", func(t *testing.T) {
		fx := newCirculationFixture(today)
		account := fx.store.addAccount(testPassword)
		reader := fx.store.addReader(account)
		book := fx.store.addBook(1, 0)
		loan := fx.store.addLoan(book.ID, reader.ID, date(2026, time.April, 20), date(2026, time.May, 5), false)

		returned, err := fx.loans.Return(ctx, loan.ID, testPassword)

		require.NoError(t, err)
		assert.True(t, returned.Returned)
		require.NotNil(t, returned.ReturnDate)
		assert.Equal(t, today, *returned.ReturnDate)
		assert.Equal(t, 1, fx.store.books[book.ID].AvailableCopies)
	})

	t.Run("the freed copy goes to the oldest waiting reservation", func(t *testing.T) {
		fx := newCirculationFixture(today)
		account := fx.store.addAccount(testPassword)
		reader := fx.store.addReader(account)
		book := fx.store.addBook(1, 0)
		loan := fx.store.addLoan(book.ID, reader.ID, date(2026, time.April, 20), date(2026, time.May, 5), false)
		newer := fx.store.addReservation(book.ID, 77, models.ReservationWaiting, date(2026, time.April, 25))
		older := fx.store.addReservation(book.ID, 78, models.ReservationWaiting, date(2026, time.April, 22))

		_, err := fx.loans.Return(ctx, loan.ID, testPassword)

		require.NoError(t, err)
		assert.Equal(t, models.ReservationActive, fx.store.reservations[older.ID].Status)
		assert.Equal(t, models.ReservationWaiting, fx.store.reservations[newer.ID].Status)
	})

	t.Run("double return is refused", func(t *testing.T) {
		fx := newCirculationFixture(today)
		account := fx.store.addAccount(testPassword)
		reader := fx.store.addReader(account)
		book := fx.store.addBook(1, 1)
		loan := fx.store.addLoan(book.ID, reader.ID, date(2026, time.April, 20), date(2026, time.May, 5), true)

		_, err := fx.loans.Return(ctx, loan.ID, testPassword)

		assert.ErrorIs(t, err, domain.ErrAlreadyReturned)
	})

	t.Run("counter already at the copy total is a defect", func(t *testing.T) {
		fx := newCirculationFixture(today)
		account := fx.store.addAccount(testPassword)
		reader := fx.store.addReader(account)
		book := fx.store.addBook(1, 1)
		loan := fx.store.addLoan(book.ID, reader.ID, date(2026, time.April, 20), date(2026, time.May, 5), false)

		_, err := fx.loans.Return(ctx, loan.ID, testPassword)

		assert.ErrorIs(t, err, domain.ErrInvalidState)
	})
}

func TestRenewLoan(t *testing.T) {
	due := date(2026, time.May, 4)
	ctx := context.Background()

	setup := func(today time.Time) (*circulationFixture, *models.Loan) {
		fx := newCirculationFixture(today)
		account := fx.store.addAccount(testPassword)
		reader := fx.store.addReader(account)
		book := fx.store.addBook(1, 0)
		loan := fx.store.addLoan(book.ID, reader.ID, date(2026, time.April, 19), due, false)
		return fx, loan
	}

	t.Run("renewal on the due date extends the loan", func(t *testing.T) {
		fx, loan := setup(due)

		renewed, err := fx.loans.Renew(ctx, loan.ID, testPassword)

		require.NoError(t, err)
		assert.Equal(t, 1, renewed.RenewalCount)
		assert.Equal(t, date(2026, time.May, 19), renewed.DueDate)
		assert.Equal(t, date(2026, time.May, 19), fx.store.loans[loan.ID].DueDate)
	})

	t.Run("overdue loan can no longer be renewed", func(t *testing.T) {
		fx, loan := setup(due.AddDate(0, 0, 1))

		_, err := fx.loans.Renew(ctx, loan.ID, testPassword)

		assert.ErrorIs(t, err, domain.ErrRenewalTooLate)
	})

	t.Run("renewal before the due date is refused", func(t *testing.T) {
		fx, loan := setup(due.AddDate(0, 0, -1))

		_, err := fx.loans.Renew(ctx, loan.ID, testPassword)

		assert.ErrorIs(t, err, domain.ErrRenewalTooEarly)
	})

	t.Run("waiting readers block renewal", func(t *testing.T) {
		fx, loan := setup(due)
		fx.store.addReservation(loan.BookID, 99, models.ReservationWaiting, date(2026, time.April, 25))

		_, err := fx.loans.Renew(ctx, loan.ID, testPassword)

		assert.ErrorIs(t, err, domain.ErrReservationsPending)
	})

	t.Run("renewal cap is enforced", func(t *testing.T) {
		fx, loan := setup(due)
		fx.store.loans[loan.ID].RenewalCount = 3

		_, err := fx.loans.Renew(ctx, loan.ID, testPassword)

		assert.ErrorIs(t, err, domain.ErrRenewalLimitExceeded)
	})

	t.Run("returned loan cannot be renewed", func(t *testing.T) {
		fx, loan := setup(due)
		fx.store.loans[loan.ID].Returned = true

		_, err := fx.loans.Renew(ctx, loan.ID, testPassword)

		assert.ErrorIs(t, err, domain.ErrAlreadyReturned)
	})
}

func TestGetWithFees(t *testing.T) {
	today := date(2026, time.May, 10)
	ctx := context.Background()

	fx := newCirculationFixture(today)
	account := fx.store.addAccount(testPassword)
	reader := fx.store.addReader(account)
	book := fx.store.addBook(1, 0)
	loan := fx.store.addLoan(book.ID, reader.ID, date(2026, time.April, 20), date(2026, time.May, 5), false)

	detail, err := fx.loans.GetWithFees(ctx, loan.ID)

	require.NoError(t, err)
	assert.Equal(t, 15.0, detail.Fees.BaseRentalFee) // capped at the due date
	assert.Equal(t, 10.0, detail.Fees.LateFee)       // 5 days over
	assert.Equal(t, 25.0, detail.Fees.TotalFee)

	_, err = fx.loans.GetWithFees(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrLoanNotFound)
}
