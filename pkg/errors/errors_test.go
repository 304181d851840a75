package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCloneKeepsCodeAndOverridesMessage(t *testing.T) {
	err := Clone(ErrDataIntegrity, "module reference missing")
	assert.Equal(t, ErrDataIntegrity.Code, err.Code)
	assert.Equal(t, http.StatusUnprocessableEntity, err.Status)
	assert.Equal(t, "module reference missing", err.Message)
	assert.Equal(t, "academic record is inconsistent", ErrDataIntegrity.Message)
}

func TestIsMatchesWrappedCodes(t *testing.T) {
	wrapped := fmt.Errorf("resolve: %w", Clone(ErrNoActiveProgram, "std 1 has no active program"))
	assert.True(t, Is(wrapped, ErrNoActiveProgram))
	assert.False(t, Is(wrapped, ErrDataIntegrity))
	assert.False(t, Is(errors.New("plain"), ErrNotFound))
	assert.False(t, Is(nil, ErrNotFound))
}

func TestFromErrorDefaultsToInternal(t *testing.T) {
	err := FromError(errors.New("boom"))
	assert.Equal(t, ErrInternal.Code, err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.Nil(t, FromError(nil))
}
