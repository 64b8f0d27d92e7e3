package repositories

import (
	"context"
	"time"

	"libracirc/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// reservationRepository implements ReservationRepository with GORM
type reservationRepository struct {
	db *gorm.DB
}

// NewReservationRepository creates a new reservation repository
func NewReservationRepository(db *gorm.DB) ReservationRepository {
	return &reservationRepository{db: db}
}

func (r *reservationRepository) Create(ctx context.Context, reservation *models.Reservation) error {
	return r.db.WithContext(ctx).Create(reservation).Error
}

func (r *reservationRepository) Save(ctx context.Context, reservation *models.Reservation) error {
	return r.db.WithContext(ctx).Save(reservation).Error
}

func (r *reservationRepository) SaveAll(ctx context.Context, reservations []*models.Reservation) error {
	if len(reservations) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, reservation := range reservations {
			if err := tx.Save(reservation).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// GetByID returns a reservation with book (and its queue) and reader
// (and account) preloaded, for cancellation checks and promotion.
func (r *reservationRepository) GetByID(ctx context.Context, id uint) (*models.Reservation, error) {
	var reservation models.Reservation
	err := r.db.WithContext(ctx).
		Preload("Book").
		Preload("Book.Reservations").
		Preload("Reader").
		Preload("Reader.Account").
		First(&reservation, id).Error
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (r *reservationRepository) ListByReader(ctx context.Context, readerID uint) ([]models.Reservation, error) {
	var reservations []models.Reservation
	err := r.db.WithContext(ctx).
		Preload("Book").
		Where("reader_id = ?", readerID).
		Order("registered_at DESC, id DESC").
		Find(&reservations).Error
	return reservations, err
}

// CountActiveByBook counts ACTIVE reservations for a book from durable state.
// Capacity rebalancing uses this rather than an in-memory collection.
func (r *reservationRepository) CountActiveByBook(ctx context.Context, bookID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Reservation{}).
		Where("book_id = ? AND status = ?", bookID, models.ReservationActive).
		Count(&count).Error
	return count, err
}

// FindActiveWithDeadlineBefore returns ACTIVE reservations whose hold deadline
// fell before cutoff, with each book's queue preloaded for promotion.
func (r *reservationRepository) FindActiveWithDeadlineBefore(ctx context.Context, cutoff time.Time) ([]models.Reservation, error) {
	var reservations []models.Reservation
	err := r.db.WithContext(ctx).
		Preload("Book").
		Preload("Book.Reservations").
		Where("status = ? AND hold_deadline < ?", models.ReservationActive, cutoff).
		Order("hold_deadline ASC").
		Find(&reservations).Error
	return reservations, err
}

func (r *reservationRepository) ExistsForBook(ctx context.Context, bookID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Reservation{}).
		Where("book_id = ?", bookID).
		Count(&count).Error
	return count > 0, err
}
