// Package secrets generates and verifies team keys.
//
// Keys are machine-generated URL-safe tokens, shown exactly once at creation
// or rotation time. At rest only a salted scrypt derivation is kept, encoded
// with its own parameters so hashes written under old cost settings remain
// verifiable after an upgrade.
package secrets

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/scrypt"

	dErrors "rinkside/pkg/domain-errors"
)

// Current cost parameters. Changing these only affects new hashes; stored
// hashes carry their own parameters.
const (
	scryptN      = 16384
	scryptR      = 8
	scryptP      = 1
	derivedLen   = 32
	saltLen      = 16
	plainKeyLen  = 24
	formatScrypt = "scrypt"
)

// GenerateKey creates a cryptographically secure random team key.
// Returns a URL-safe unpadded token suitable for display to a coach.
func GenerateKey() (string, error) {
	buf := make([]byte, plainKeyLen)
	if _, err := rand.Read(buf); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not generate key")
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Hash derives a one-way hash of the plaintext key with a fresh random salt.
// The result is self-describing: "scrypt$N$r$p$<b64 salt>$<b64 derived key>".
func Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", dErrors.New(dErrors.CodeValidation, "key cannot be empty")
	}
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not generate salt")
	}
	dk, err := scrypt.Key([]byte(plaintext), salt, scryptN, scryptR, scryptP, derivedLen)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not hash key")
	}
	return fmt.Sprintf("%s$%d$%d$%d$%s$%s",
		formatScrypt, scryptN, scryptR, scryptP,
		base64.StdEncoding.EncodeToString(salt),
		base64.StdEncoding.EncodeToString(dk),
	), nil
}

// Verify reports whether plaintext matches the encoded hash.
// The derivation re-runs with the parameters stored in the encoding and the
// result is compared in constant time. Any parse failure is a mismatch, never
// a distinct error: callers must not be able to tell a corrupt hash from a
// wrong key.
func Verify(plaintext, encoded string) bool {
	if plaintext == "" || encoded == "" {
		return false
	}
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != formatScrypt {
		return false
	}
	n, err := strconv.Atoi(parts[1])
	if err != nil {
		return false
	}
	r, err := strconv.Atoi(parts[2])
	if err != nil {
		return false
	}
	p, err := strconv.Atoi(parts[3])
	if err != nil {
		return false
	}
	salt, err := base64.StdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}
	expected, err := base64.StdEncoding.DecodeString(parts[5])
	if err != nil || len(expected) == 0 {
		return false
	}
	derived, err := scrypt.Key([]byte(plaintext), salt, n, r, p, len(expected))
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(derived, expected) == 1
}
