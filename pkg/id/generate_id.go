package id

import (
	"encoding/hex"
	"regexp"

	"github.com/google/uuid"
)

var reHex32 = regexp.MustCompile(`^[a-f0-9]{32}$`)

// NewID32 returns a random (v4) UUID rendered as exactly 32 lowercase hex
// characters, the form used for every public identifier in the tracker.
func NewID32() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])
}

// Valid reports whether s has the NewID32 shape.
func Valid(s string) bool { return reHex32.MatchString(s) }
