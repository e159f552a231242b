// Package keyring keeps CLI secrets in the OS credential store.
package keyring

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/habitual/internal/constants"
)

var (
	// ErrNotFound is returned when nothing is stored under the requested item
	ErrNotFound = errors.New("credentials not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

func get(item string) (string, error) {
	value, err := keyring.Get(constants.AppName, item)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return value, nil
}

func set(item, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s cannot be empty", item)
	}
	if err := keyring.Set(constants.AppName, item, value); err != nil {
		return fmt.Errorf("failed to store %s in keyring: %w", item, err)
	}
	return nil
}

func remove(item string) error {
	if err := keyring.Delete(constants.AppName, item); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete %s from keyring: %w", item, err)
	}
	return nil
}

// GetConnectionString returns the stored PostgreSQL connection string
func GetConnectionString() (string, error) {
	return get(constants.ConnStringKeyringID)
}

func SetConnectionString(connStr string) error {
	return set(constants.ConnStringKeyringID, connStr)
}

func DeleteConnectionString() error {
	return remove(constants.ConnStringKeyringID)
}

// GetSessionToken returns the token of the logged-in CLI session
func GetSessionToken() (string, error) {
	return get(constants.SessionKeyringUser)
}

func SetSessionToken(token string) error {
	return set(constants.SessionKeyringUser, token)
}

// DeleteSessionToken forgets the CLI session. A missing token is not an error.
func DeleteSessionToken() error {
	if err := remove(constants.SessionKeyringUser); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}

// IsAvailable checks if the OS keyring is available on the current system.
// This is a best-effort check and may not catch all failure scenarios.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}
