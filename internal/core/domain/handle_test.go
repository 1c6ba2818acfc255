package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHandleDetectsType(t *testing.T) {
	cases := map[string]HandleType{
		"+15551234567":      HandlePhoneNumber,
		"(555) 123-4567":    HandlePhoneNumber,
		"alice@example.com": HandleEmailAddress,
		"alice":             HandleGeneric,
	}

	for value, want := range cases {
		h, err := NewHandle(value)
		require.NoError(t, err, value)
		assert.Equal(t, want, h.Type, value)
		assert.Equal(t, value, h.Value)
	}
}

func TestNewHandleRejectsEmpty(t *testing.T) {
	_, err := NewHandle("   ")
	require.ErrorIs(t, err, ErrInvalidHandle)
}
