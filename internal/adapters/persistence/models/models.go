package models

import (
	"time"

	"gorm.io/gorm"
)

// ============================================================
// Auth Tables
// ============================================================

// Account represents accounts table (login credentials for a reader or staff)
type Account struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Email     string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password  string         `gorm:"size:255;not null" json:"-"`
	Role      string         `gorm:"size:20;default:'READER'" json:"role"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Account) TableName() string {
	return "accounts"
}

// Account roles
const (
	RoleReader    = "READER"
	RoleLibrarian = "LIBRARIAN"
	RoleAdmin     = "ADMIN"
)

// AccountResponse DTO
type AccountResponse struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	ReaderID  uint      `json:"reader_id,omitempty"`
	FullName  string    `json:"full_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (a *Account) ToResponse() *AccountResponse {
	return &AccountResponse{
		ID:        a.ID,
		Email:     a.Email,
		Role:      a.Role,
		IsActive:  a.IsActive,
		CreatedAt: a.CreatedAt,
	}
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	AccountID uint       `gorm:"index;not null" json:"account_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	Account   Account    `gorm:"foreignKey:AccountID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Catalog & Circulation Tables
// ============================================================

// Reader represents readers table (library member profile)
type Reader struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	FullName     string         `gorm:"size:100;not null" json:"full_name"`
	Phone        string         `gorm:"size:20" json:"phone"`
	AccountID    uint           `gorm:"uniqueIndex;not null" json:"account_id"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Account      Account        `gorm:"foreignKey:AccountID" json:"account,omitempty"`
	Loans        []Loan         `gorm:"foreignKey:ReaderID" json:"loans,omitempty"`
	Reservations []Reservation  `gorm:"foreignKey:ReaderID" json:"reservations,omitempty"`
}

func (Reader) TableName() string {
	return "readers"
}

// Book represents books table (a catalog entry with a pool of physical copies)
type Book struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Title           string         `gorm:"size:100;not null" json:"title"`
	ISBN            string         `gorm:"size:13;uniqueIndex;not null" json:"isbn"`
	Pages           int            `gorm:"default:0" json:"pages"`
	PublishedAt     *time.Time     `gorm:"type:date" json:"published_at"`
	TotalCopies     int            `gorm:"not null;default:0" json:"total_copies"`
	AvailableCopies int            `gorm:"not null;default:0" json:"available_copies"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
	Loans           []Loan         `gorm:"foreignKey:BookID" json:"loans,omitempty"`
	Reservations    []Reservation  `gorm:"foreignKey:BookID" json:"reservations,omitempty"`
}

func (Book) TableName() string {
	return "books"
}

// Loan represents loans table (one copy lent to one reader until returned)
type Loan struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	BookID        uint       `gorm:"not null;index" json:"book_id"`
	ReaderID      uint       `gorm:"not null;index" json:"reader_id"`
	StartDate     time.Time  `gorm:"type:date;not null" json:"start_date"`
	DueDate       time.Time  `gorm:"type:date;not null" json:"due_date"`
	ReturnDate    *time.Time `gorm:"type:date" json:"return_date"`
	Returned      bool       `gorm:"default:false;index" json:"returned"`
	RenewalCount  int        `gorm:"default:0" json:"renewal_count"`
	ReservationID *uint      `gorm:"index" json:"reservation_id"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	Book          *Book      `gorm:"foreignKey:BookID" json:"book,omitempty"`
	Reader        *Reader    `gorm:"foreignKey:ReaderID" json:"reader,omitempty"`
}

func (Loan) TableName() string {
	return "loans"
}

// Reservation represents reservations table (a reader's claim on the next free copy)
type Reservation struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	BookID       uint       `gorm:"not null;index" json:"book_id"`
	ReaderID     uint       `gorm:"not null;index" json:"reader_id"`
	RegisteredAt time.Time  `gorm:"not null" json:"registered_at"`
	Status       string     `gorm:"size:15;not null;index" json:"status"`
	HoldDeadline *time.Time `gorm:"type:date" json:"hold_deadline"`
	LoanID       *uint      `gorm:"index" json:"loan_id"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	Book         *Book      `gorm:"foreignKey:BookID" json:"book,omitempty"`
	Reader       *Reader    `gorm:"foreignKey:ReaderID" json:"reader,omitempty"`
}

func (Reservation) TableName() string {
	return "reservations"
}

// Reservation statuses. WAITING and ACTIVE are live; the rest are terminal.
const (
	ReservationWaiting   = "WAITING"
	ReservationActive    = "ACTIVE"
	ReservationFulfilled = "FULFILLED"
	ReservationExpired   = "EXPIRED"
	ReservationCancelled = "CANCELLED"
)

// IsLive reports whether the reservation still occupies queue/quota space
func (r *Reservation) IsLive() bool {
	return r.Status == ReservationWaiting || r.Status == ReservationActive
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Account{},
		&RefreshToken{},
		&Reader{},
		&Book{},
		&Loan{},
		&Reservation{},
	)
}
