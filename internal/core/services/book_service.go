package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"libracirc/internal/adapters/persistence/models"
	"libracirc/internal/adapters/persistence/repositories"
	"libracirc/internal/core/domain"
	"libracirc/internal/pkg/isbn"
	"libracirc/internal/pkg/locker"

	"gorm.io/gorm"
)

// BookService manages the catalog. Copy-count changes go through the
// reservation queue so availability and promotions stay consistent.
type BookService struct {
	bookRepo        repositories.BookRepository
	loanRepo        repositories.LoanRepository
	reservationRepo repositories.ReservationRepository
	queue           *ReservationQueue
	locks           *locker.Keyed
}

// NewBookService creates a new book service
func NewBookService(
	bookRepo repositories.BookRepository,
	loanRepo repositories.LoanRepository,
	reservationRepo repositories.ReservationRepository,
	queue *ReservationQueue,
	locks *locker.Keyed,
) *BookService {
	return &BookService{
		bookRepo:        bookRepo,
		loanRepo:        loanRepo,
		reservationRepo: reservationRepo,
		queue:           queue,
		locks:           locks,
	}
}

// BookInput represents catalog create/update input
type BookInput struct {
	Title       string     `json:"title" validate:"required,min=1,max=100"`
	ISBN        string     `json:"isbn" validate:"required"`
	Pages       int        `json:"pages" validate:"min=0"`
	PublishedAt *time.Time `json:"published_at"`
	TotalCopies int        `json:"total_copies" validate:"min=0"`
}

// Create registers a new catalog entry with all copies available
func (s *BookService) Create(ctx context.Context, input *BookInput) (*models.Book, error) {
	// 1. Validate the ISBN checksum
	if !isbn.IsValid(input.ISBN) {
		return nil, fmt.Errorf("%w: ISBN %q failed checksum validation", domain.ErrInvalidArgument, input.ISBN)
	}
	if input.TotalCopies < 0 {
		return nil, fmt.Errorf("%w: total copies cannot be negative", domain.ErrInvalidArgument)
	}

	// 2. Reject duplicate ISBNs
	exists, err := s.bookRepo.ExistsByISBN(ctx, input.ISBN)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrDuplicateISBN
	}

	// 3. Create with every copy on the shelf
	book := &models.Book{
		Title:           input.Title,
		ISBN:            input.ISBN,
		Pages:           input.Pages,
		PublishedAt:     input.PublishedAt,
		TotalCopies:     input.TotalCopies,
		AvailableCopies: input.TotalCopies,
	}
	if err := s.bookRepo.Create(ctx, book); err != nil {
		return nil, err
	}

	log.Printf("✅ Book created: %q (ISBN %s, %d copies)", book.Title, book.ISBN, book.TotalCopies)
	return book, nil
}

// Update edits a catalog entry. Changing the copy total rebalances
// availability against outstanding loans and holds, promoting waiting
// readers when copies are added.
func (s *BookService) Update(ctx context.Context, bookID uint, input *BookInput) (*models.Book, error) {
	s.locks.Lock(bookID)
	defer s.locks.Unlock(bookID)

	// 1. Load book with its reservation queue
	book, err := s.bookRepo.GetByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrBookNotFound
		}
		return nil, err
	}

	// 2. Validate the ISBN, rejecting collisions with other entries
	if !isbn.IsValid(input.ISBN) {
		return nil, fmt.Errorf("%w: ISBN %q failed checksum validation", domain.ErrInvalidArgument, input.ISBN)
	}
	if input.ISBN != book.ISBN {
		exists, err := s.bookRepo.ExistsByISBN(ctx, input.ISBN)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, domain.ErrDuplicateISBN
		}
	}

	// 3. Rebalance availability for the new copy total
	newAvailable, err := s.queue.RebalanceForNewCopyTotal(ctx, book, input.TotalCopies)
	if err != nil {
		return nil, err
	}

	// 4. Apply and persist
	book.Title = input.Title
	book.ISBN = input.ISBN
	book.Pages = input.Pages
	book.PublishedAt = input.PublishedAt
	book.TotalCopies = input.TotalCopies
	book.AvailableCopies = newAvailable

	snapshot := *book
	snapshot.Loans = nil
	snapshot.Reservations = nil
	if err := s.bookRepo.Save(ctx, &snapshot); err != nil {
		return nil, err
	}

	log.Printf("✅ Book %d updated: %q now %d copies (%d available)", book.ID, book.Title, book.TotalCopies, book.AvailableCopies)
	return &snapshot, nil
}

// Delete removes a catalog entry that was never lent or reserved
func (s *BookService) Delete(ctx context.Context, bookID uint) error {
	// 1. Load book
	book, err := s.bookRepo.GetByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrBookNotFound
		}
		return err
	}

	// 2. History blocks deletion, even closed loans and dead reservations
	hasLoans, err := s.loanRepo.ExistsForBook(ctx, bookID)
	if err != nil {
		return err
	}
	hasReservations, err := s.reservationRepo.ExistsForBook(ctx, bookID)
	if err != nil {
		return err
	}
	if hasLoans || hasReservations {
		return domain.ErrBookInUse
	}

	// 3. Delete
	if err := s.bookRepo.Delete(ctx, book); err != nil {
		return err
	}

	log.Printf("✅ Book %d deleted: %q", book.ID, book.Title)
	return nil
}

// Get returns a single catalog entry
func (s *BookService) Get(ctx context.Context, bookID uint) (*models.Book, error) {
	book, err := s.bookRepo.GetByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrBookNotFound
		}
		return nil, err
	}
	return book, nil
}

// List returns a page of the catalog ordered by title
func (s *BookService) List(ctx context.Context, offset, limit int) ([]models.Book, int64, error) {
	return s.bookRepo.List(ctx, offset, limit)
}
