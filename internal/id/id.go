// Package id generates prefixed NanoID identifiers for Pagemark entities.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Entity prefixes. The prefix makes an ID self-describing in logs and URLs.
const (
	PrefixUser           = "user"
	PrefixCategory       = "cat"
	PrefixBook           = "book"
	PrefixReadingSession = "rsession"
	PrefixNote           = "note"
)

// Generate creates a prefixed unique ID.
// Format: prefix-nanoid (e.g., "book-V1StGXR8_Z5jdHi6B-myT").
//
// Returns an error if the system has insufficient entropy for secure random generation.
func Generate(prefix string) (string, error) {
	nid, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + nid, nil
}
