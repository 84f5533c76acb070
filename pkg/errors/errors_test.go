package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCodeMapping(t *testing.T) {
	cases := []struct {
		code ErrorCode
		want int
	}{
		{ErrAuthMissing, http.StatusUnauthorized},
		{ErrAuthInvalid, http.StatusUnauthorized},
		{ErrAuthExpired, http.StatusUnauthorized},
		{ErrForbidden, http.StatusForbidden},
		{ErrNotFound, http.StatusNotFound},
		{ErrConflict, http.StatusConflict},
		{ErrValidation, http.StatusBadRequest},
		{ErrInternal, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		e := &AppError{Code: tc.code, Message: "m"}
		assert.Equal(t, tc.want, e.StatusCode(), string(tc.code))
	}
}

func TestAsAppError(t *testing.T) {
	app := NewNotFound("patient", nil)
	assert.Same(t, app, AsAppError(app))

	wrapped := AsAppError(errors.New("boom"))
	assert.Equal(t, ErrInternal, wrapped.Code)
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("row missing")
	app := NewNotFound("patient", cause)

	assert.ErrorIs(t, app, cause)
	assert.Equal(t, "patient not found: row missing", app.Error())
}
