// Package password hashes and verifies user passwords with bcrypt.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor for new hashes.
const DefaultCost = 10

// dummyHash is compared against when no user matches a login attempt, so both
// failure paths spend the same bcrypt time.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy-password"), DefaultCost)

func Hash(plain string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plain), DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

// Verify reports whether plain matches the stored hash.
func Verify(plain, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	return err == nil
}

// Burn runs a comparison that always fails. Call it when the user is absent.
func Burn(plain string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(plain))
}

// IsTooLong reports whether bcrypt would reject plain (it only reads 72 bytes).
func IsTooLong(plain string) bool {
	_, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.MinCost)
	return errors.Is(err, bcrypt.ErrPasswordTooLong)
}
