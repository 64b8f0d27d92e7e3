package handlers

import (
	"errors"
	"strings"
	"time"

	"libracirc/internal/core/domain"
	"libracirc/internal/core/services"
	"libracirc/internal/pkg/pagination"
	"libracirc/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// BookHandler handles catalog endpoints
type BookHandler struct {
	bookService *services.BookService
}

// NewBookHandler creates a new book handler
func NewBookHandler(bookService *services.BookService) *BookHandler {
	return &BookHandler{bookService: bookService}
}

// BookRequest represents catalog create/update request body
type BookRequest struct {
	Title       string `json:"title"`
	ISBN        string `json:"isbn"`
	Pages       int    `json:"pages"`
	PublishedAt string `json:"published_at"` // YYYY-MM-DD
	TotalCopies int    `json:"total_copies"`
}

func (r *BookRequest) toInput() (*services.BookInput, error) {
	input := &services.BookInput{
		Title:       strings.TrimSpace(r.Title),
		ISBN:        strings.TrimSpace(r.ISBN),
		Pages:       r.Pages,
		TotalCopies: r.TotalCopies,
	}

	if r.PublishedAt != "" {
		published, err := time.Parse("2006-01-02", r.PublishedAt)
		if err != nil {
			return nil, err
		}
		input.PublishedAt = &published
	}
	return input, nil
}

// List handles catalog listing
// @Summary List books
// @Description List the catalog ordered by title, paginated
// @Tags Books
// @Accept json
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /books [get]
func (h *BookHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	books, total, err := h.bookService.List(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list books")
	}

	return response.Success(c, "Books retrieved successfully", pagination.NewResponse(books, params, total))
}

// Get handles single catalog entry retrieval
// @Summary Get book
// @Description Get a catalog entry by ID
// @Tags Books
// @Accept json
// @Produce json
// @Param id path int true "Book ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /books/{id} [get]
func (h *BookHandler) Get(c *fiber.Ctx) error {
	bookID, err := c.ParamsInt("id")
	if err != nil || bookID < 1 {
		return response.BadRequest(c, "Invalid book ID")
	}

	book, err := h.bookService.Get(c.Context(), uint(bookID))
	if err != nil {
		if errors.Is(err, domain.ErrBookNotFound) {
			return response.NotFound(c, "Book not found")
		}
		return response.InternalServerError(c, "Failed to get book")
	}

	return response.Success(c, "Book retrieved successfully", fiber.Map{
		"book": book,
	})
}

// Create handles catalog entry creation
// @Summary Create book
// @Description Register a new catalog entry
// @Tags Books
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body BookRequest true "Book data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /books [post]
func (h *BookHandler) Create(c *fiber.Ctx) error {
	var req BookRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if strings.TrimSpace(req.Title) == "" {
		return response.BadRequest(c, "Title is required")
	}
	if strings.TrimSpace(req.ISBN) == "" {
		return response.BadRequest(c, "ISBN is required")
	}
	if req.TotalCopies < 0 {
		return response.BadRequest(c, "Total copies cannot be negative")
	}

	input, err := req.toInput()
	if err != nil {
		return response.BadRequest(c, "Invalid published_at date, expected YYYY-MM-DD")
	}

	book, err := h.bookService.Create(c.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicateISBN):
			return response.Conflict(c, "A book with this ISBN already exists")
		case errors.Is(err, domain.ErrInvalidArgument):
			return response.UnprocessableEntity(c, err.Error())
		default:
			return response.InternalServerError(c, "Failed to create book")
		}
	}

	return response.Created(c, "Book created successfully", fiber.Map{
		"book": book,
	})
}

// Update handles catalog entry updates, including copy-count changes
// @Summary Update book
// @Description Update a catalog entry; changing copy totals rebalances availability
// @Tags Books
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Book ID"
// @Param body body BookRequest true "Book data"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /books/{id} [put]
func (h *BookHandler) Update(c *fiber.Ctx) error {
	bookID, err := c.ParamsInt("id")
	if err != nil || bookID < 1 {
		return response.BadRequest(c, "Invalid book ID")
	}

	var req BookRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if strings.TrimSpace(req.Title) == "" {
		return response.BadRequest(c, "Title is required")
	}
	if strings.TrimSpace(req.ISBN) == "" {
		return response.BadRequest(c, "ISBN is required")
	}
	if req.TotalCopies < 0 {
		return response.BadRequest(c, "Total copies cannot be negative")
	}

	input, err := req.toInput()
	if err != nil {
		return response.BadRequest(c, "Invalid published_at date, expected YYYY-MM-DD")
	}

	book, err := h.bookService.Update(c.Context(), uint(bookID), input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrBookNotFound):
			return response.NotFound(c, "Book not found")
		case errors.Is(err, domain.ErrDuplicateISBN):
			return response.Conflict(c, "A book with this ISBN already exists")
		case errors.Is(err, domain.ErrCopyCountBelowCommitments):
			return response.Conflict(c, "Copy total cannot drop below open loans plus active reservations")
		case errors.Is(err, domain.ErrInvalidArgument):
			return response.UnprocessableEntity(c, err.Error())
		default:
			return response.InternalServerError(c, "Failed to update book")
		}
	}

	return response.Success(c, "Book updated successfully", fiber.Map{
		"book": book,
	})
}

// Delete handles catalog entry deletion
// @Summary Delete book
// @Description Delete a catalog entry that has no loan or reservation history (admin only)
// @Tags Books
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Book ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /books/{id} [delete]
func (h *BookHandler) Delete(c *fiber.Ctx) error {
	bookID, err := c.ParamsInt("id")
	if err != nil || bookID < 1 {
		return response.BadRequest(c, "Invalid book ID")
	}

	if err := h.bookService.Delete(c.Context(), uint(bookID)); err != nil {
		switch {
		case errors.Is(err, domain.ErrBookNotFound):
			return response.NotFound(c, "Book not found")
		case errors.Is(err, domain.ErrBookInUse):
			return response.Conflict(c, "Book has loan or reservation history and cannot be deleted")
		default:
			return response.InternalServerError(c, "Failed to delete book")
		}
	}

	return response.Success(c, "Book deleted successfully", nil)
}
