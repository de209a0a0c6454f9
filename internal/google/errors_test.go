package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/api/googleapi"
)

func TestWrapError(t *testing.T) {
	tests := []struct {
		code int
		want error
	}{
		{http.StatusBadRequest, ErrBadRequest},
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrForbidden},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusTooManyRequests, ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.code), func(t *testing.T) {
			orig := fmt.Errorf("call: %w", &googleapi.Error{Code: tt.code, Message: "boom"})
			err := WrapError(orig)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.code, StatusCode(err))
			assert.Contains(t, err.Error(), "boom")
		})
	}
}

func TestWrapError_Passthrough(t *testing.T) {
	assert.NoError(t, WrapError(nil))

	plain := errors.New("dial tcp: refused")
	assert.Same(t, plain, WrapError(plain))

	server := &googleapi.Error{Code: http.StatusInternalServerError}
	assert.Equal(t, error(server), WrapError(server))
	assert.Equal(t, 0, StatusCode(plain))
}

func TestIsRateLimited(t *testing.T) {
	assert.True(t, IsRateLimited(&googleapi.Error{Code: http.StatusTooManyRequests}))
	assert.True(t, IsRateLimited(ErrRateLimited))
	assert.False(t, IsRateLimited(errors.New("other")))
}

func TestTokenSourceFromJSON_Invalid(t *testing.T) {
	_, err := TokenSourceFromJSON(context.Background(), []byte("{not json"), "")
	assert.Error(t, err)
}
