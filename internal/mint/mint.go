// internal/mint/mint.go
package mint

import (
	"errors"
	"regexp"
)

// ErrInvalidFormat is returned for strings that are not well-formed mint
// addresses.
var ErrInvalidFormat = errors.New("invalid mint address format")

// Base58 alphabet without the easily-confused characters 0, I, O and l.
var (
	addressRe   = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]{32,44}$`)
	candidateRe = regexp.MustCompile(`[1-9A-HJ-NP-Za-km-z]{32,44}`)
)

// Validate checks that address is syntactically a Solana mint: 32-44
// characters drawn from the base58 alphabet. It returns the address unchanged
// on success so callers can use it inline.
func Validate(address string) (string, error) {
	if !addressRe.MatchString(address) {
		return "", ErrInvalidFormat
	}
	return address, nil
}

// Find extracts the first mint-shaped substring from arbitrary selected text.
// Used to decide whether a text selection should trigger a popup at all.
func Find(text string) (string, bool) {
	m := candidateRe.FindString(text)
	return m, m != ""
}
