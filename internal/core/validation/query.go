package validation

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// =============================================================================
// Query Validation Functions
// =============================================================================

const (
	// DefaultPage is used when the page parameter is missing or unparsable.
	DefaultPage = 1

	// DefaultLimit is used when the limit parameter is missing or unparsable.
	DefaultLimit = 10
)

// AllowedLimits are the only accepted page sizes.
var AllowedLimits = []int{5, 10, 20}

// ValidationError describes a rejected request parameter.
// MaxPage is set only for page overflow.
type ValidationError struct {
	Field   string
	Message string
	MaxPage int
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ValidateLimit checks that limit is one of AllowedLimits.
//
// Example:
//
//	err := ValidateLimit(7)
//	// err.Message == "Invalid limit value. Allowed values: 5, 10, 20"
func ValidateLimit(limit int) *ValidationError {
	if slices.Contains(AllowedLimits, limit) {
		return nil
	}
	allowed := make([]string, 0, len(AllowedLimits))
	for _, l := range AllowedLimits {
		allowed = append(allowed, strconv.Itoa(l))
	}
	return &ValidationError{
		Field:   "limit",
		Message: "Invalid limit value. Allowed values: " + strings.Join(allowed, ", "),
	}
}

// ValidatePage rejects a page past the last one. An empty result set
// (totalPages == 0) accepts any page.
//
// Example:
//
//	err := ValidatePage(5, 3, 10)
//	// err.MaxPage == 3
func ValidatePage(page, totalPages, limit int) *ValidationError {
	if totalPages == 0 || page <= totalPages {
		return nil
	}
	return &ValidationError{
		Field:   "page",
		Message: fmt.Sprintf("Invalid page. Max page allowed is %d for limit %d.", totalPages, limit),
		MaxPage: totalPages,
	}
}

// =============================================================================
// Capture Rules
// =============================================================================

// CanCapture checks if a record can be captured.
// A record that is already captured cannot be captured again.
//
// Example:
//
//	allowed, reason := CanCapture(store.IsCaptured(id))
//	if !allowed {
//	    // Return 409 Conflict with reason
//	}
func CanCapture(alreadyCaptured bool) (allowed bool, reason string) {
	if alreadyCaptured {
		return false, "Pokemon is already captured"
	}
	return true, ""
}
