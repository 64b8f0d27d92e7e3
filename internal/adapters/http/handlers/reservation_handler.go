package handlers

import (
	"errors"

	"libracirc/internal/core/domain"
	"libracirc/internal/core/services"
	"libracirc/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ReservationHandler handles reservation endpoints
type ReservationHandler struct {
	reservationService *services.ReservationService
}

// NewReservationHandler creates a new reservation handler
func NewReservationHandler(reservationService *services.ReservationService) *ReservationHandler {
	return &ReservationHandler{reservationService: reservationService}
}

// ReserveRequest represents a reservation request body
type ReserveRequest struct {
	BookID   uint   `json:"book_id"`
	ReaderID uint   `json:"reader_id"`
	Password string `json:"password"`
}

// Reserve handles registering a reservation
// @Summary Reserve a book
// @Description Claim the next free copy; starts ACTIVE when a copy is free, WAITING otherwise
// @Tags Reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ReserveRequest true "Reservation data"
// @Success 201 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /reservations [post]
func (h *ReservationHandler) Reserve(c *fiber.Ctx) error {
	var req ReserveRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.BookID == 0 {
		return response.BadRequest(c, "Book ID is required")
	}
	if req.ReaderID == 0 {
		return response.BadRequest(c, "Reader ID is required")
	}
	if req.Password == "" {
		return response.BadRequest(c, "Password is required")
	}

	reservation, err := h.reservationService.Reserve(c.Context(), &services.ReserveInput{
		BookID:   req.BookID,
		ReaderID: req.ReaderID,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrBookNotFound):
			return response.NotFound(c, "Book not found")
		case errors.Is(err, domain.ErrReaderNotFound):
			return response.NotFound(c, "Reader not found")
		case errors.Is(err, domain.ErrAccessDenied), errors.Is(err, domain.ErrAccountNotFound):
			return response.Unauthorized(c, "Password not recognized")
		case errors.Is(err, domain.ErrDuplicateActiveReservation):
			return response.Conflict(c, "Reader already holds an active reservation for this book")
		case errors.Is(err, domain.ErrDuplicateActiveLoan):
			return response.Conflict(c, "Reader already has this book on loan")
		case errors.Is(err, domain.ErrReservationLimitExceeded):
			return response.Conflict(c, "Reader has reached the reservation limit")
		case errors.Is(err, domain.ErrInvalidArgument):
			return response.UnprocessableEntity(c, err.Error())
		default:
			return response.InternalServerError(c, "Failed to reserve book")
		}
	}

	return response.Created(c, "Reservation registered successfully", fiber.Map{
		"reservation": reservation,
	})
}

// Cancel handles cancelling a reservation
// @Summary Cancel a reservation
// @Description Withdraw a waiting or active reservation
// @Tags Reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Reservation ID"
// @Param body body CredentialRequest true "Reader password"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /reservations/{id}/cancel [post]
func (h *ReservationHandler) Cancel(c *fiber.Ctx) error {
	reservationID, err := c.ParamsInt("id")
	if err != nil || reservationID < 1 {
		return response.BadRequest(c, "Invalid reservation ID")
	}

	var req CredentialRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Password == "" {
		return response.BadRequest(c, "Password is required")
	}

	reservation, err := h.reservationService.Cancel(c.Context(), uint(reservationID), req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrReservationNotFound):
			return response.NotFound(c, "Reservation not found")
		case errors.Is(err, domain.ErrAccessDenied), errors.Is(err, domain.ErrAccountNotFound):
			return response.Unauthorized(c, "Password not recognized")
		case errors.Is(err, domain.ErrCannotCancel):
			return response.Conflict(c, "Reservation is no longer waiting or active")
		default:
			return response.InternalServerError(c, "Failed to cancel reservation")
		}
	}

	return response.Success(c, "Reservation cancelled successfully", fiber.Map{
		"reservation": reservation,
	})
}

// MyReservations returns the authenticated reader's reservations
// @Summary My reservations
// @Description List the authenticated reader's reservations
// @Tags Reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /reservations/my [get]
func (h *ReservationHandler) MyReservations(c *fiber.Ctx) error {
	readerID, ok := c.Locals("readerID").(uint)
	if !ok || readerID == 0 {
		return response.Unauthorized(c, "No reader profile on this account")
	}

	reservations, err := h.reservationService.ListByReader(c.Context(), readerID)
	if err != nil {
		return response.InternalServerError(c, "Failed to list reservations")
	}

	return response.Success(c, "Reservations retrieved successfully", fiber.Map{
		"reservations": reservations,
	})
}

// SweepExpired triggers the reservation expiry sweep on demand
// @Summary Sweep expired reservations
// @Description Expire overstayed active holds and promote waiting readers
// @Tags Reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /reservations/sweep [post]
func (h *ReservationHandler) SweepExpired(c *fiber.Ctx) error {
	count, err := h.reservationService.SweepExpired(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to sweep expired reservations")
	}

	return response.Success(c, "Expired reservations swept", fiber.Map{
		"expired": count,
	})
}
