// Package pagination pages the catalog list endpoints. Readers browse
// books a shelf page at a time; the defaults keep responses small
// without the client having to ask.
package pagination

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// Catalog page sizing. A shelf page of 24 fills the browse grid;
// staff listings may raise the limit up to the cap.
const (
	DefaultLimit = 24
	MaxLimit     = 100
)

// Params is the page window requested through the query string
type Params struct {
	Page   int `json:"page"`
	Limit  int `json:"limit"`
	Offset int `json:"-"`
}

// GetParams reads page and limit from the query string, clamping both
// into range. Malformed or out-of-range values fall back to the
// defaults so a bad query still returns the first shelf page.
func GetParams(c *fiber.Ctx) *Params {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}

	limit, _ := strconv.Atoi(c.Query("limit", strconv.Itoa(DefaultLimit)))
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return &Params{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

// Meta describes where a page sits in the full result set
type Meta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// meta derives the page metadata for a result set of total rows
func (p *Params) meta(total int64) *Meta {
	pages := int((total + int64(p.Limit) - 1) / int64(p.Limit))
	return &Meta{
		Page:       p.Page,
		Limit:      p.Limit,
		Total:      total,
		TotalPages: pages,
		HasNext:    p.Page < pages,
		HasPrev:    p.Page > 1,
	}
}

// Response is the list envelope: one page of rows plus its position
type Response struct {
	Data interface{} `json:"data"`
	Meta *Meta       `json:"meta"`
}

// NewResponse wraps one page of rows with its metadata
func NewResponse(data interface{}, params *Params, total int64) *Response {
	return &Response{
		Data: data,
		Meta: params.meta(total),
	}
}
