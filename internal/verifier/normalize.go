package verifier

import (
	"errors"
	"strings"
)

// ErrEmptyAddress is returned when a candidate address is empty after trimming.
var ErrEmptyAddress = errors.New("address is empty")

// NormalizeAddress returns the canonical form of a candidate address used for
// storage and de-duplication: surrounding whitespace removed and all letters
// lower-cased. Addresses are case-insensitive for scoring purposes, so two
// requests differing only in case share one validation key.
func NormalizeAddress(raw string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "" {
		return "", ErrEmptyAddress
	}

	return normalized, nil
}
