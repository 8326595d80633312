package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
)

func TestToDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
	}{
		{"domain error passes through", NewConflict("taken", nil), "CONFLICT", http.StatusConflict},
		{"wrapped domain error", fmt.Errorf("wrap: %w", NewForbidden("no")), "FORBIDDEN", http.StatusForbidden},
		{"no rows", pgx.ErrNoRows, "NOT_FOUND", http.StatusNotFound},
		{"fiber error", fiber.NewError(http.StatusBadRequest, "bad"), "BAD_REQUEST", http.StatusBadRequest},
		{"fiber not found", fiber.ErrNotFound, "NOT_FOUND", http.StatusNotFound},
		{"upstream", NewUpstreamError("classifier", errors.New("boom")), "UPSTREAM_FAILED", http.StatusBadGateway},
		{"plain error", errors.New("boom"), "INTERNAL_ERROR", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToDomainError(tt.err)
			assert.Equal(t, tt.wantCode, got.Code)
			assert.Equal(t, tt.wantStatus, got.HTTPStatus)
		})
	}
	assert.Nil(t, ToDomainError(nil))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(pgx.ErrNoRows))
	assert.True(t, IsNotFound(fmt.Errorf("lookup: %w", pgx.ErrNoRows)))
	assert.True(t, IsNotFound(NewNotFound("Agency", nil)))
	assert.False(t, IsNotFound(NewConflict("x", nil)))
	assert.False(t, IsNotFound(errors.New("other")))
}

func TestNewNotFoundMessage(t *testing.T) {
	err := ToDomainError(NewNotFound("Agency", nil))
	assert.Equal(t, "Agency not found", err.Message)
	assert.NotNil(t, err.Details)
}
