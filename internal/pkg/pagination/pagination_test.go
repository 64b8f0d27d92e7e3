package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetParams(t *testing.T) {
	app := fiber.New()
	var got *Params
	app.Get("/books", func(c *fiber.Ctx) error {
		got = GetParams(c)
		return c.SendStatus(fiber.StatusOK)
	})

	tests := []struct {
		name   string
		query  string
		page   int
		limit  int
		offset int
	}{
		{"defaults", "", 1, DefaultLimit, 0},
		{"second page", "?page=2", 2, DefaultLimit, DefaultLimit},
		{"explicit window", "?page=3&limit=10", 3, 10, 20},
		{"limit clamped to the cap", "?limit=500", 1, MaxLimit, 0},
		{"zero page falls back", "?page=0", 1, DefaultLimit, 0},
		{"garbage falls back", "?page=abc&limit=-5", 1, DefaultLimit, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/books"+tt.query, nil)
			_, err := app.Test(req)
			require.NoError(t, err)

			assert.Equal(t, tt.page, got.Page)
			assert.Equal(t, tt.limit, got.Limit)
			assert.Equal(t, tt.offset, got.Offset)
		})
	}
}

func TestNewResponse(t *testing.T) {
	t.Run("first of three pages", func(t *testing.T) {
		params := &Params{Page: 1, Limit: 24, Offset: 0}

		resp := NewResponse([]string{"a", "b"}, params, 50)

		assert.Equal(t, 3, resp.Meta.TotalPages)
		assert.True(t, resp.Meta.HasNext)
		assert.False(t, resp.Meta.HasPrev)
	})

	t.Run("last page", func(t *testing.T) {
		params := &Params{Page: 3, Limit: 24, Offset: 48}

		resp := NewResponse([]string{"z"}, params, 50)

		assert.False(t, resp.Meta.HasNext)
		assert.True(t, resp.Meta.HasPrev)
	})

	t.Run("empty catalog", func(t *testing.T) {
		params := &Params{Page: 1, Limit: 24}

		resp := NewResponse([]string{}, params, 0)

		assert.Zero(t, resp.Meta.TotalPages)
		assert.False(t, resp.Meta.HasNext)
		assert.False(t, resp.Meta.HasPrev)
	})
}
