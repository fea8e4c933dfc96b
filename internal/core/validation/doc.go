// Package validation provides pure validation functions for API handlers.
//
// This package contains the functional core logic for validating catalog
// requests and checking capture rules. All functions are pure (no I/O, no
// side effects).
//
// # Functions
//
//   - ValidateLimit: Check the page size against the allowed values
//   - ValidatePage: Check a page number against the computed page count
//   - CanCapture: Check if a record can be captured
//
// # Usage
//
// The API handlers use these functions to validate requests before processing:
//
//	if err := validation.ValidateLimit(limit); err != nil {
//	    // Return 400 Bad Request with err.Message
//	}
package validation
