// Package password hashes and verifies user passwords.
//
// Hashes are bcrypt strings ($2a$<cost>$<salt><digest>), they carry the
// algorithm, cost and salt so Verify needs nothing but the stored value.
// Plaintexts longer than bcrypt accepts are reduced with SHA-256 first and
// the resulting hash is tagged with prehashTag, Verify only reduces the
// candidate when the stored hash carries the tag.
package password

import (
	"crypto/sha256"
	"encoding/base64"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultCost = 12

	// bcrypt ignores (or rejects) anything past 72 bytes
	maxPlainLength = 72

	prehashTag = "$sha256"
)

type (
	// Hasher binds a cost to Hash so handlers can receive it as a value
	Hasher struct {
		Cost int
	}
)

func (h Hasher) Hash(plaintext string) (string, error) {
	return Hash(plaintext, h.Cost)
}

func (h Hasher) Verify(plaintext, hash string) bool {
	return Verify(plaintext, hash)
}

// Hash returns a bcrypt hash of plaintext. A cost <= 0 selects DefaultCost,
// other values are clamped to the range bcrypt accepts.
func Hash(plaintext string, cost int) (string, error) {
	input, tag := []byte(plaintext), ""
	if len(plaintext) > maxPlainLength {
		input, tag = prehash(plaintext), prehashTag
	}
	buf, err := bcrypt.GenerateFromPassword(input, clampCost(cost))
	if err != nil {
		return "", err
	}
	return tag + string(buf), nil
}

// Verify reports whether plaintext matches hash. Malformed hashes never match.
func Verify(plaintext, hash string) bool {
	if len(hash) == 0 {
		return false
	}
	input := []byte(plaintext)
	if stored, ok := strings.CutPrefix(hash, prehashTag); ok {
		if len(plaintext) <= maxPlainLength {
			return false
		}
		hash, input = stored, prehash(plaintext)
	} else if len(plaintext) > maxPlainLength {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), input) == nil
}

func clampCost(cost int) int {
	switch {
	case cost <= 0:
		return DefaultCost
	case cost < bcrypt.MinCost:
		return bcrypt.MinCost
	case cost > bcrypt.MaxCost:
		return bcrypt.MaxCost
	}
	return cost
}

func prehash(plaintext string) []byte {
	sum := sha256.Sum256([]byte(plaintext))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}
