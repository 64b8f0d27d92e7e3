package config

import (
	"log"
	"time"

	"libracirc/internal/adapters/persistence/models"
	"libracirc/internal/pkg/password"

	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedAdminAccount(); err != nil {
		log.Printf("⚠️ Admin seeder skipped: %v", err)
	}
	if err := s.seedSampleBooks(); err != nil {
		log.Printf("⚠️ Book seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedAdminAccount seeds the default librarian admin.
// Development/testing only; production admins are created manually.
func (s *Seeder) seedAdminAccount() error {
	var count int64
	s.db.Model(&models.Account{}).Where("role = ?", models.RoleAdmin).Count(&count)
	if count > 0 {
		return nil // Admin already exists
	}

	hashedPassword, err := password.Hash("admin123456")
	if err != nil {
		return err
	}

	admin := &models.Account{
		Email:    "admin@libracirc.local",
		Password: hashedPassword,
		Role:     models.RoleAdmin,
		IsActive: true,
	}

	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("✅ Admin account created: %s", admin.Email)
	return nil
}

// seedSampleBooks seeds a handful of catalog entries for development
func (s *Seeder) seedSampleBooks() error {
	var count int64
	s.db.Model(&models.Book{}).Count(&count)
	if count > 0 {
		return nil // Catalog already populated
	}

	published := func(year int) *time.Time {
		t := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		return &t
	}

	books := []models.Book{
		{Title: "The Go Programming Language", ISBN: "9780134190440", Pages: 380, PublishedAt: published(2015), TotalCopies: 3, AvailableCopies: 3},
		{Title: "Clean Architecture", ISBN: "9780134494166", Pages: 432, PublishedAt: published(2017), TotalCopies: 2, AvailableCopies: 2},
		{Title: "Designing Data-Intensive Applications", ISBN: "9781449373320", Pages: 616, PublishedAt: published(2017), TotalCopies: 1, AvailableCopies: 1},
	}

	for i := range books {
		if err := s.db.Create(&books[i]).Error; err != nil {
			return err
		}
	}

	log.Printf("✅ Seeded %d sample books", len(books))
	return nil
}
