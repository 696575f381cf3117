package utils

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorWrapping(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := E(CodeInternal, "ProfileService.Get", "failed to get profile", cause)

	assert.EqualError(t, err, "ProfileService.Get: failed to get profile: dial tcp: refused")
	assert.ErrorIs(t, err, cause)
	assert.True(t, IsCode(err, CodeInternal))
	assert.False(t, IsCode(err, CodeNotFound))

	// codes survive another layer of wrapping
	wrapped := fmt.Errorf("handler: %w", err)
	assert.True(t, IsCode(wrapped, CodeInternal))
}

func TestSafeMessage(t *testing.T) {
	assert.Equal(t, "profile not found", SafeMessage(E(CodeNotFound, "op", "profile not found", ErrNotFound)))
	assert.Equal(t, "something went wrong", SafeMessage(errors.New("pq: connection reset")))
	assert.Equal(t, "something went wrong", SafeMessage(E(CodeInternal, "op", "", errors.New("detail"))))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeInvalidArgument, http.StatusBadRequest},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeForbidden, http.StatusForbidden},
		{CodeNotFound, http.StatusNotFound},
		{CodeConflict, http.StatusConflict},
		{CodeFailedPrecondition, http.StatusUnprocessableEntity},
		{CodeUnavailable, http.StatusServiceUnavailable},
		{CodeTimeout, http.StatusGatewayTimeout},
		{CodeInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(E(tt.code, "op", "msg", nil)), string(tt.code))
	}

	assert.Equal(t, http.StatusNotFound, HTTPStatus(fmt.Errorf("repo: %w", ErrNotFound)))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("boom")))
}
