package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCode(t *testing.T) {
	t.Run("matches outer code", func(t *testing.T) {
		err := New(CodeNotFound, "contact not found")
		assert.True(t, HasCode(err, CodeNotFound))
		assert.False(t, HasCode(err, CodeInternal))
	})

	t.Run("matches wrapped inner code", func(t *testing.T) {
		inner := New(CodeConflict, "duplicate id")
		err := Wrap(inner, CodeInternal, "failed to insert contact")
		assert.True(t, HasCode(err, CodeInternal))
		assert.True(t, HasCode(err, CodeConflict))
	})

	t.Run("finds code behind fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("insert contact: %w", New(CodeValidation, "zip out of range"))
		assert.True(t, HasCode(err, CodeValidation))
	})

	t.Run("plain errors carry no code", func(t *testing.T) {
		assert.False(t, HasCode(errors.New("boom"), CodeInternal))
		assert.False(t, HasCode(nil, CodeInternal))
	})
}

func TestWrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeInternal, "failed to load contacts")

	require.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to load contacts: connection refused", err.Error())
	assert.Nil(t, Wrap(nil, CodeInternal, "unused"))
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeNotFound, CodeOf(New(CodeNotFound, "x")))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("x")))
	assert.True(t, Is(New(CodeBadRequest, "x"), CodeBadRequest))
	assert.False(t, Is(nil, CodeInternal))
}
