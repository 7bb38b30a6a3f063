package server

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"pennypost/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHumanizeParam(t *testing.T) {
	assert.Equal(t, "ID", humanizeParam("id"))
	assert.Equal(t, "user ID", humanizeParam("userId"))
	assert.Equal(t, "saga record ID", humanizeParam("sagaRecordId"))
	assert.Equal(t, "slug", humanizeParam("slug"))
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"Validation", models.NewValidationError("bad input"), fiber.StatusBadRequest},
		{"Unauthorized", models.NewUnauthorizedError("no token"), fiber.StatusUnauthorized},
		{"Insufficient Funds", models.NewInsufficientFundsError(1), fiber.StatusPaymentRequired},
		{"Self Action", models.NewSelfActionError("own content"), fiber.StatusForbidden},
		{"Not Found", models.NewNotFoundError("content", 1), fiber.StatusNotFound},
		{"Parent Not Found", models.NewParentNotFoundError(1), fiber.StatusNotFound},
		{"Duplicate", models.NewDuplicateActionError("already liked"), fiber.StatusConflict},
		{"Compensation Failed", models.NewCompensationFailedError("like_content", errors.New("stuck")), fiber.StatusInternalServerError},
		{"Persistence", models.NewPersistenceError(errors.New("db down")), fiber.StatusInternalServerError},
		{"Plain Error", errors.New("anything"), fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, statusForError(tt.err))
		})
	}
}

func TestParsePagination(t *testing.T) {
	app := fiber.New()
	var got Pagination
	app.Get("/items", func(c *fiber.Ctx) error {
		got = parsePagination(c, 20)
		return c.SendStatus(fiber.StatusOK)
	})

	tests := []struct {
		name     string
		url      string
		expected Pagination
	}{
		{"Defaults", "/items", Pagination{Limit: 20, Offset: 0}},
		{"Explicit", "/items?limit=5&offset=10", Pagination{Limit: 5, Offset: 10}},
		{"Capped", "/items?limit=500", Pagination{Limit: 100, Offset: 0}},
		{"Negative", "/items?limit=-1&offset=-5", Pagination{Limit: 20, Offset: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseID(t *testing.T) {
	app := fiber.New()
	s := &Server{}
	app.Get("/items/:id", func(c *fiber.Ctx) error {
		id, err := s.parseID(c, "id")
		if err != nil {
			return nil
		}
		return c.JSON(fiber.Map{"id": id})
	})

	tests := []struct {
		name           string
		url            string
		expectedStatus int
	}{
		{"Valid", "/items/7", http.StatusOK},
		{"Zero", "/items/0", http.StatusBadRequest},
		{"Negative", "/items/-3", http.StatusBadRequest},
		{"Garbage", "/items/abc", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}
