package repositories

import (
	"context"

	"libracirc/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// loanRepository implements LoanRepository with GORM
type loanRepository struct {
	db *gorm.DB
}

// NewLoanRepository creates a new loan repository
func NewLoanRepository(db *gorm.DB) LoanRepository {
	return &loanRepository{db: db}
}

func (r *loanRepository) Create(ctx context.Context, loan *models.Loan) error {
	return r.db.WithContext(ctx).Create(loan).Error
}

func (r *loanRepository) Save(ctx context.Context, loan *models.Loan) error {
	return r.db.WithContext(ctx).Save(loan).Error
}

// GetByID returns a loan with book (and its reservation queue) and reader
// (and account) preloaded, for credential checks and renewal validation.
func (r *loanRepository) GetByID(ctx context.Context, id uint) (*models.Loan, error) {
	var loan models.Loan
	err := r.db.WithContext(ctx).
		Preload("Book").
		Preload("Book.Reservations").
		Preload("Reader").
		Preload("Reader.Account").
		First(&loan, id).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

func (r *loanRepository) ListByReader(ctx context.Context, readerID uint) ([]models.Loan, error) {
	var loans []models.Loan
	err := r.db.WithContext(ctx).
		Preload("Book").
		Where("reader_id = ?", readerID).
		Order("start_date DESC, id DESC").
		Find(&loans).Error
	return loans, err
}

// CountOpenByBook counts not-yet-returned loans for a book from durable state.
// Capacity rebalancing uses this rather than an in-memory collection.
func (r *loanRepository) CountOpenByBook(ctx context.Context, bookID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Loan{}).
		Where("book_id = ? AND returned = ?", bookID, false).
		Count(&count).Error
	return count, err
}

func (r *loanRepository) ExistsForBook(ctx context.Context, bookID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Loan{}).
		Where("book_id = ?", bookID).
		Count(&count).Error
	return count > 0, err
}
