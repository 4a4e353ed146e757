package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToStatus(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("sujet 4: %w", ErrNotFound), http.StatusNotFound},
		{ErrForbidden, http.StatusForbidden},
		{ErrUnauthorized, http.StatusUnauthorized},
		{ErrInvalidInput, http.StatusBadRequest},
		{ErrConflict, http.StatusConflict},
		{ErrRateLimitExceeded, http.StatusTooManyRequests},
		{New(http.StatusTeapot, "teapot", nil), http.StatusTeapot},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.status, MapErrorToStatus(tc.err), tc.err.Error())
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	err := New(http.StatusNotFound, "Sujet introuvable", ErrNotFound)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, ErrNotFound.Error(), err.Error())
	assert.Equal(t, "Sujet introuvable", Message(fmt.Errorf("show: %w", err)))
	assert.Empty(t, Message(ErrNotFound))
}

func TestFieldError(t *testing.T) {
	err := fmt.Errorf("register: %w", NewFieldError("email", "Adresse déjà utilisée.", ErrConflict))

	fe, ok := AsFieldError(err)
	if assert.True(t, ok) {
		assert.Equal(t, "email", fe.Field)
		assert.Equal(t, "Adresse déjà utilisée.", fe.Message)
	}
	assert.Equal(t, http.StatusConflict, MapErrorToStatus(err))

	_, ok = AsFieldError(ErrNotFound)
	assert.False(t, ok)
}
