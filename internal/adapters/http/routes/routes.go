package routes

import (
	"libracirc/internal/adapters/http/handlers"
	"libracirc/internal/adapters/http/middleware"
	"libracirc/internal/adapters/persistence/repositories"
	"libracirc/internal/config"
	"libracirc/internal/core/services"
	"libracirc/internal/pkg/locker"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Setup wires repositories, services and handlers and configures all
// routes. It returns the cron service so main can start and stop it.
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) *services.CronService {
	// Initialize repositories
	accountRepo := repositories.NewAccountRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	readerRepo := repositories.NewReaderRepository(db)
	bookRepo := repositories.NewBookRepository(db)
	loanRepo := repositories.NewLoanRepository(db)
	reservationRepo := repositories.NewReservationRepository(db)

	// Circulation building blocks
	bookLocks := locker.NewKeyed()
	queue := services.NewReservationQueue(loanRepo, reservationRepo, cfg.Circulation)
	limiter := services.NewBorrowLimiter(cfg.Circulation)
	renewals := services.NewRenewalPolicy(cfg.Circulation)
	fees := services.NewFeeCalculator(cfg.Circulation)

	// Initialize services
	authService := services.NewAuthService(accountRepo, readerRepo, refreshTokenRepo, cfg)
	bookService := services.NewBookService(bookRepo, loanRepo, reservationRepo, queue, bookLocks)
	loanService := services.NewLoanService(
		bookRepo,
		readerRepo,
		loanRepo,
		reservationRepo,
		queue,
		limiter,
		renewals,
		fees,
		authService,
		bookLocks,
		cfg.Circulation,
	)
	reservationService := services.NewReservationService(
		bookRepo,
		readerRepo,
		reservationRepo,
		queue,
		limiter,
		authService,
		bookLocks,
	)
	cronService := services.NewCronService(reservationService, authService)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, cfg)
	bookHandler := handlers.NewBookHandler(bookService)
	loanHandler := handlers.NewLoanHandler(loanService)
	reservationHandler := handlers.NewReservationHandler(reservationService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	setupAPIV1Routes(apiV1, healthHandler, authHandler, bookHandler, loanHandler, reservationHandler, cfg)

	return cronService
}

// setupAPIV1Routes configures API v1 routes
func setupAPIV1Routes(
	router fiber.Router,
	healthHandler *handlers.HealthHandler,
	authHandler *handlers.AuthHandler,
	bookHandler *handlers.BookHandler,
	loanHandler *handlers.LoanHandler,
	reservationHandler *handlers.ReservationHandler,
	cfg *config.Config,
) {
	// API info
	router.Get("/", healthHandler.APIInfo)

	// Auth routes (public, stricter rate limit)
	auth := router.Group("/auth", middleware.NoCacheHeaders())
	auth.Post("/register", middleware.AuthRateLimiter(), authHandler.Register)
	auth.Post("/login", middleware.AuthRateLimiter(), authHandler.Login)
	auth.Post("/refresh", authHandler.RefreshToken)
	auth.Post("/logout", authHandler.Logout)

	// Auth routes (protected)
	auth.Post("/logout-all", middleware.AuthMiddleware(cfg), authHandler.LogoutAll)
	auth.Get("/me", middleware.AuthMiddleware(cfg), authHandler.Me)

	// Catalog routes: reads are public, writes are staff only
	books := router.Group("/books")
	books.Get("/", middleware.CatalogCache(), bookHandler.List)
	books.Get("/:id", middleware.CatalogCache(), bookHandler.Get)
	books.Post("/", middleware.AuthMiddleware(cfg), middleware.LibrarianOrAdmin(), bookHandler.Create)
	books.Put("/:id", middleware.AuthMiddleware(cfg), middleware.LibrarianOrAdmin(), bookHandler.Update)
	books.Delete("/:id", middleware.AuthMiddleware(cfg), middleware.AdminOnly(), bookHandler.Delete)

	// Loan routes (protected, password re-verified per operation)
	loans := router.Group("/loans", middleware.AuthMiddleware(cfg), middleware.NoCacheHeaders())
	loans.Post("/borrow", middleware.CirculationRateLimiter(), loanHandler.Borrow)
	loans.Post("/:id/return", middleware.CirculationRateLimiter(), loanHandler.Return)
	loans.Post("/:id/renew", middleware.CirculationRateLimiter(), loanHandler.Renew)
	loans.Get("/my", loanHandler.MyLoans)
	loans.Get("/:id", loanHandler.Get)

	// Reservation routes (protected, password re-verified per operation)
	reservations := router.Group("/reservations", middleware.AuthMiddleware(cfg), middleware.NoCacheHeaders())
	reservations.Post("/", middleware.CirculationRateLimiter(), reservationHandler.Reserve)
	reservations.Post("/:id/cancel", middleware.CirculationRateLimiter(), reservationHandler.Cancel)
	reservations.Get("/my", reservationHandler.MyReservations)

	// Staff-triggered expiry sweep, normally run by cron at midnight
	reservations.Post("/sweep", middleware.LibrarianOrAdmin(), reservationHandler.SweepExpired)
}
