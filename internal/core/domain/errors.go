package domain

import "errors"

// Base error kinds. Sentinels below stand in for one of these;
// handlers use them to pick the HTTP status.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidState    = errors.New("invalid internal state")
)

// Lookup errors
var (
	ErrBookNotFound        = errors.New("book not found")
	ErrReaderNotFound      = errors.New("reader not found")
	ErrLoanNotFound        = errors.New("loan not found")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrAccountNotFound     = errors.New("account not found")
)

// Credential errors
var (
	ErrAccessDenied = errors.New("password not recognized")
)

// Circulation conflicts: a business rule blocks the requested transition
var (
	ErrBookUnavailable            = errors.New("book has no copies available for borrowing")
	ErrDuplicateActiveLoan        = errors.New("reader already has an open loan for this book")
	ErrDuplicateActiveReservation = errors.New("reader already has an active reservation for this book")
	ErrLoanLimitExceeded          = errors.New("loan limit reached for this reader")
	ErrReservationLimitExceeded   = errors.New("reservation limit reached for this reader")
	ErrAlreadyReturned            = errors.New("loan has already been returned")
	ErrRenewalTooLate             = errors.New("renewal refused: the due date has already passed")
	ErrRenewalTooEarly            = errors.New("renewal is only allowed on the due date itself")
	ErrRenewalLimitExceeded       = errors.New("renewal limit reached")
	ErrReservationsPending        = errors.New("renewal refused: other readers are waiting for this book")
	ErrCannotCancel               = errors.New("reservation is no longer waiting or active and cannot be cancelled")
	ErrCopyCountBelowCommitments  = errors.New("total copies cannot drop below open loans plus active reservations")
	ErrBookInUse                  = errors.New("book is referenced by loans or reservations and cannot be deleted")
	ErrDuplicateISBN              = errors.New("a book with this ISBN is already registered")
)

// Internal invariant violations: defects in a calling layer, not user outcomes
var (
	ErrReservationListMissing = errors.New("reservation list is not loaded")
	ErrLoanListMissing        = errors.New("loan list is not loaded")
)
