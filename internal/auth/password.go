// Package auth holds password hashing and the first administrator account.
package auth

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// ErrMismatch is returned by CheckPassword when the password is wrong.
var ErrMismatch = errors.New("password mismatch")

// Cost is the bcrypt work factor. Tests lower it.
var Cost = bcrypt.DefaultCost

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), Cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// dummyHash is compared against when there is no real hash, so a missing
// account costs as much bcrypt work as a wrong password.
var dummyHash = sync.OnceValue(func() []byte {
	b, err := bcrypt.GenerateFromPassword([]byte("notebook-loans-dummy"), Cost)
	if err != nil {
		panic(fmt.Sprintf("hash dummy password: %v", err))
	}
	return b
})

// RejectPassword runs a full bcrypt comparison and always returns ErrMismatch.
func RejectPassword(password string) error {
	_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
	return ErrMismatch
}

// CheckPassword compares password with a stored hash. An empty hash never matches.
func CheckPassword(hash, password string) error {
	if hash == "" {
		return RejectPassword(password)
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrMismatch
	}
	if err != nil {
		return fmt.Errorf("check password: %w", err)
	}
	return nil
}
