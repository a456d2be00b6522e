package utils

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{NotFound("schedule %s", "x"), http.StatusNotFound},
		{SlotUnavailable("taken"), http.StatusConflict},
		{SlotConflict("overlap"), http.StatusConflict},
		{ServiceUnavailable("special off"), http.StatusBadRequest},
		{Validation("bad date"), http.StatusBadRequest},
		{fmt.Errorf("wrapped: %w", NotFound("booking")), http.StatusNotFound},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(tt.err), "%v", tt.err)
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	err := fmt.Errorf("outer: %w", SlotConflict("slot %d overlaps", 3))
	assert.ErrorIs(t, err, ErrSlotConflict)
	assert.NotErrorIs(t, err, ErrSlotUnavailable)

	var appErr *AppError
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, "slotConflict", appErr.Code)
	assert.Equal(t, "slot 3 overlaps", appErr.Message)
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "no slots on 2024-06-01", Message(NotFound("no slots on %s", "2024-06-01")))
	assert.Equal(t, "Internal Server Error", Message(errors.New("dial tcp: refused")))
}
