package common

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusFromError(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{ErrNotFound, http.StatusNotFound},
		{ErrUnauthorized, http.StatusUnauthorized},
		{ErrForbidden, http.StatusForbidden},
		{ErrBadRequest, http.StatusBadRequest},
		{ErrValidation, http.StatusBadRequest},
		{ErrConflict, http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, HTTPStatusFromError(tc.err), "%v", tc.err)
	}
}

func TestHTTPStatusFromError_Wrapped(t *testing.T) {
	err := fmt.Errorf("attempt already started: %w", ErrConflict)
	assert.Equal(t, http.StatusConflict, HTTPStatusFromError(err))

	err = Errorf("requester does not administer the owning company: %w", ErrForbidden)
	assert.Equal(t, http.StatusForbidden, HTTPStatusFromError(err))
}
