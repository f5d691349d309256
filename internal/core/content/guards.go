// Package content contains the pure validation logic for message bodies.
package content

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxLength is the maximum accepted content length in characters after
// trimming.
const MaxLength = 5000

// GuardResult represents the outcome of a content guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
	// Trimmed holds the normalized content when allowed.
	Trimmed string
}

// Check validates message content.
// Rules:
// - Content must be non-empty after trimming whitespace
// - Trimmed length must not exceed MaxLength characters
func Check(raw string) GuardResult {
	trimmed := strings.TrimSpace(raw)

	if trimmed == "" {
		return GuardResult{
			Allowed: false,
			Reason:  "content must not be empty",
		}
	}

	// Characters, not bytes, so multibyte content gets the same budget.
	if utf8.RuneCountInString(trimmed) > MaxLength {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("content must not exceed %d characters", MaxLength),
		}
	}

	return GuardResult{Allowed: true, Trimmed: trimmed}
}
