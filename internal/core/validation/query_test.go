package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// ValidateLimit Tests
// =============================================================================

func TestValidateLimit_Allowed(t *testing.T) {
	for _, limit := range []int{5, 10, 20} {
		assert.Nil(t, ValidateLimit(limit), "limit %d", limit)
	}
}

func TestValidateLimit_Rejected(t *testing.T) {
	err := ValidateLimit(7)
	require.NotNil(t, err)
	assert.Equal(t, "limit", err.Field)
	assert.Equal(t, "Invalid limit value. Allowed values: 5, 10, 20", err.Message)
	assert.Equal(t, err.Message, err.Error())
	assert.Zero(t, err.MaxPage)
}

func TestValidateLimit_ZeroAndNegative(t *testing.T) {
	assert.NotNil(t, ValidateLimit(0))
	assert.NotNil(t, ValidateLimit(-5))
}

// =============================================================================
// ValidatePage Tests
// =============================================================================

func TestValidatePage_WithinRange(t *testing.T) {
	assert.Nil(t, ValidatePage(1, 3, 10))
	assert.Nil(t, ValidatePage(3, 3, 10))
}

func TestValidatePage_Overflow(t *testing.T) {
	err := ValidatePage(4, 3, 5)
	require.NotNil(t, err)
	assert.Equal(t, "page", err.Field)
	assert.Equal(t, 3, err.MaxPage)
	assert.Equal(t, "Invalid page. Max page allowed is 3 for limit 5.", err.Message)
}

func TestValidatePage_EmptyResultAcceptsAnyPage(t *testing.T) {
	assert.Nil(t, ValidatePage(42, 0, 10))
}

// =============================================================================
// CanCapture Tests
// =============================================================================

func TestCanCapture_NotCaptured(t *testing.T) {
	allowed, reason := CanCapture(false)
	assert.True(t, allowed)
	assert.Empty(t, reason)
}

func TestCanCapture_AlreadyCaptured(t *testing.T) {
	allowed, reason := CanCapture(true)
	assert.False(t, allowed)
	assert.Equal(t, "Pokemon is already captured", reason)
}
