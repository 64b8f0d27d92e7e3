package handlers

import (
	"errors"

	"libracirc/internal/core/domain"
	"libracirc/internal/core/services"
	"libracirc/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// LoanHandler handles circulation desk endpoints for loans
type LoanHandler struct {
	loanService *services.LoanService
}

// NewLoanHandler creates a new loan handler
func NewLoanHandler(loanService *services.LoanService) *LoanHandler {
	return &LoanHandler{loanService: loanService}
}

// BorrowRequest represents a borrow request body
type BorrowRequest struct {
	BookID   uint   `json:"book_id"`
	ReaderID uint   `json:"reader_id"`
	Password string `json:"password"`
}

// CredentialRequest carries the reader password re-verified on
// return and renewal
type CredentialRequest struct {
	Password string `json:"password"`
}

// Borrow handles borrowing a book
// @Summary Borrow a book
// @Description Lend a copy to a reader, consuming an active reservation if one exists
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body BorrowRequest true "Borrow data"
// @Success 201 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /loans/borrow [post]
func (h *LoanHandler) Borrow(c *fiber.Ctx) error {
	var req BorrowRequest
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

	loan, err := h.loanService.Borrow(c.Context(), &services.BorrowInput{
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
		case errors.Is(err, domain.ErrDuplicateActiveLoan):
			return response.Conflict(c, "Reader already has this book on loan")
		case errors.Is(err, domain.ErrLoanLimitExceeded):
			return response.Conflict(c, "Reader has reached the loan limit")
		case errors.Is(err, domain.ErrBookUnavailable):
			return response.Conflict(c, "No copies available for borrowing")
		case errors.Is(err, domain.ErrInvalidArgument):
			return response.UnprocessableEntity(c, err.Error())
		default:
			return response.InternalServerError(c, "Failed to borrow book")
		}
	}

	return response.Created(c, "Book borrowed successfully", fiber.Map{
		"loan": loan,
	})
}

// Return handles returning a book
// @Summary Return a book
// @Description Close a loan, free the copy and promote the next waiting reservation
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Param body body CredentialRequest true "Reader password"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /loans/{id}/return [post]
func (h *LoanHandler) Return(c *fiber.Ctx) error {
	loanID, err := c.ParamsInt("id")
	if err != nil || loanID < 1 {
		return response.BadRequest(c, "Invalid loan ID")
	}

	var req CredentialRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Password == "" {
		return response.BadRequest(c, "Password is required")
	}

	loan, err := h.loanService.Return(c.Context(), uint(loanID), req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrLoanNotFound):
			return response.NotFound(c, "Loan not found")
		case errors.Is(err, domain.ErrAccessDenied), errors.Is(err, domain.ErrAccountNotFound):
			return response.Unauthorized(c, "Password not recognized")
		case errors.Is(err, domain.ErrAlreadyReturned):
			return response.Conflict(c, "Loan has already been returned")
		default:
			return response.InternalServerError(c, "Failed to return book")
		}
	}

	return response.Success(c, "Book returned successfully", fiber.Map{
		"loan": loan,
	})
}

// Renew handles renewing a loan
// @Summary Renew a loan
// @Description Extend a loan on its due date, unless readers are waiting
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Param body body CredentialRequest true "Reader password"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /loans/{id}/renew [post]
func (h *LoanHandler) Renew(c *fiber.Ctx) error {
	loanID, err := c.ParamsInt("id")
	if err != nil || loanID < 1 {
		return response.BadRequest(c, "Invalid loan ID")
	}

	var req CredentialRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Password == "" {
		return response.BadRequest(c, "Password is required")
	}

	loan, err := h.loanService.Renew(c.Context(), uint(loanID), req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrLoanNotFound):
			return response.NotFound(c, "Loan not found")
		case errors.Is(err, domain.ErrAccessDenied), errors.Is(err, domain.ErrAccountNotFound):
			return response.Unauthorized(c, "Password not recognized")
		case errors.Is(err, domain.ErrAlreadyReturned):
			return response.Conflict(c, "Loan has already been returned")
		case errors.Is(err, domain.ErrRenewalTooLate):
			return response.Conflict(c, "Loan is overdue and can no longer be renewed")
		case errors.Is(err, domain.ErrRenewalTooEarly):
			return response.Conflict(c, "Renewal is only allowed on the due date")
		case errors.Is(err, domain.ErrReservationsPending):
			return response.Conflict(c, "Other readers are waiting for this book")
		case errors.Is(err, domain.ErrRenewalLimitExceeded):
			return response.Conflict(c, "Renewal limit reached")
		default:
			return response.InternalServerError(c, "Failed to renew loan")
		}
	}

	return response.Success(c, "Loan renewed successfully", fiber.Map{
		"loan": loan,
	})
}

// Get handles single loan retrieval with its fee breakdown
// @Summary Get loan
// @Description Get a loan with its current fee breakdown
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /loans/{id} [get]
func (h *LoanHandler) Get(c *fiber.Ctx) error {
	loanID, err := c.ParamsInt("id")
	if err != nil || loanID < 1 {
		return response.BadRequest(c, "Invalid loan ID")
	}

	detail, err := h.loanService.GetWithFees(c.Context(), uint(loanID))
	if err != nil {
		if errors.Is(err, domain.ErrLoanNotFound) {
			return response.NotFound(c, "Loan not found")
		}
		return response.InternalServerError(c, "Failed to get loan")
	}

	return response.Success(c, "Loan retrieved successfully", fiber.Map{
		"loan": detail.Loan,
		"fees": detail.Fees,
	})
}

// MyLoans returns the authenticated reader's loan history
// @Summary My loans
// @Description List the authenticated reader's loans with fee breakdowns
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /loans/my [get]
func (h *LoanHandler) MyLoans(c *fiber.Ctx) error {
	readerID, ok := c.Locals("readerID").(uint)
	if !ok || readerID == 0 {
		return response.Unauthorized(c, "No reader profile on this account")
	}

	details, err := h.loanService.ListByReader(c.Context(), readerID)
	if err != nil {
		return response.InternalServerError(c, "Failed to list loans")
	}

	return response.Success(c, "Loans retrieved successfully", fiber.Map{
		"loans": details,
	})
}
