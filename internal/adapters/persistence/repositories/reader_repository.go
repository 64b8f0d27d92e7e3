package repositories

import (
	"context"

	"libracirc/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// readerRepository implements ReaderRepository with GORM
type readerRepository struct {
	db *gorm.DB
}

// NewReaderRepository creates a new reader repository
func NewReaderRepository(db *gorm.DB) ReaderRepository {
	return &readerRepository{db: db}
}

func (r *readerRepository) Create(ctx context.Context, reader *models.Reader) error {
	return r.db.WithContext(ctx).Create(reader).Error
}

// GetByID returns a reader with account, loans and reservations preloaded.
// Quota checks and duplicate-loan checks scan these collections.
func (r *readerRepository) GetByID(ctx context.Context, id uint) (*models.Reader, error) {
	var reader models.Reader
	err := r.db.WithContext(ctx).
		Preload("Account").
		Preload("Loans").
		Preload("Reservations").
		First(&reader, id).Error
	if err != nil {
		return nil, err
	}
	return &reader, nil
}

func (r *readerRepository) GetByAccountID(ctx context.Context, accountID uint) (*models.Reader, error) {
	var reader models.Reader
	err := r.db.WithContext(ctx).
		Preload("Account").
		Where("account_id = ?", accountID).
		First(&reader).Error
	if err != nil {
		return nil, err
	}
	return &reader, nil
}
