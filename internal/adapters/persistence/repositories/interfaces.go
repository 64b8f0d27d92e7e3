package repositories

import (
	"context"
	"time"

	"libracirc/internal/adapters/persistence/models"
)

// AccountRepository defines account repository interface
type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, id uint) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByAccountID(ctx context.Context, accountID uint) error
	DeleteExpired(ctx context.Context) error
}

// ReaderRepository defines reader repository interface
type ReaderRepository interface {
	Create(ctx context.Context, reader *models.Reader) error
	GetByID(ctx context.Context, id uint) (*models.Reader, error)
	GetByAccountID(ctx context.Context, accountID uint) (*models.Reader, error)
}

// BookRepository defines book repository interface
type BookRepository interface {
	Create(ctx context.Context, book *models.Book) error
	Save(ctx context.Context, book *models.Book) error
	GetByID(ctx context.Context, id uint) (*models.Book, error)
	List(ctx context.Context, offset, limit int) ([]models.Book, int64, error)
	ExistsByISBN(ctx context.Context, isbn string) (bool, error)
	Delete(ctx context.Context, book *models.Book) error
}

// LoanRepository defines loan repository interface
type LoanRepository interface {
	Create(ctx context.Context, loan *models.Loan) error
	Save(ctx context.Context, loan *models.Loan) error
	GetByID(ctx context.Context, id uint) (*models.Loan, error)
	ListByReader(ctx context.Context, readerID uint) ([]models.Loan, error)
	CountOpenByBook(ctx context.Context, bookID uint) (int64, error)
	ExistsForBook(ctx context.Context, bookID uint) (bool, error)
}

// ReservationRepository defines reservation repository interface
type ReservationRepository interface {
	Create(ctx context.Context, reservation *models.Reservation) error
	Save(ctx context.Context, reservation *models.Reservation) error
	SaveAll(ctx context.Context, reservations []*models.Reservation) error
	GetByID(ctx context.Context, id uint) (*models.Reservation, error)
	ListByReader(ctx context.Context, readerID uint) ([]models.Reservation, error)
	CountActiveByBook(ctx context.Context, bookID uint) (int64, error)
	FindActiveWithDeadlineBefore(ctx context.Context, cutoff time.Time) ([]models.Reservation, error)
	ExistsForBook(ctx context.Context, bookID uint) (bool, error)
}
