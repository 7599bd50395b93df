package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("lookup: %w", NotFound("Contract not found"))

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrValidation))
}

func TestFrom(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, From(ErrTokenExpired).Status)

	raw := errors.New("connection refused")
	ae := From(raw)
	assert.Equal(t, CodeUpstreamUnavailable, ae.Code)
	assert.ErrorIs(t, ae, raw)
}

func TestCopiesDoNotMutateSentinels(t *testing.T) {
	_ = ErrValidation.WithMessage("username is required")
	assert.Equal(t, "Invalid request", ErrValidation.Message)
}
