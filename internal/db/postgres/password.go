package postgres

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const serviceName = "lazydb"

// ErrPasswordNotFound is returned when no password is stored for a server.
var ErrPasswordNotFound = errors.New("password not found in keyring")

// makeKey creates a unique key for password storage
func makeKey(host string, port uint16, database, user string) string {
	return fmt.Sprintf("%s@%s:%d/%s", user, host, port, database)
}

// SavePassword stores a password in the OS keyring.
func SavePassword(host string, port uint16, database, user, password string) error {
	if password == "" {
		return nil
	}
	if err := keyring.Set(serviceName, makeKey(host, port, database, user), password); err != nil {
		return fmt.Errorf("failed to save password to keyring: %w", err)
	}
	return nil
}

// LookupPassword retrieves a password from the OS keyring.
func LookupPassword(host string, port uint16, database, user string) (string, error) {
	secret, err := keyring.Get(serviceName, makeKey(host, port, database, user))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrPasswordNotFound
		}
		return "", fmt.Errorf("failed to read password from keyring: %w", err)
	}
	return secret, nil
}

// DeletePassword removes a stored password.
func DeletePassword(host string, port uint16, database, user string) error {
	err := keyring.Delete(serviceName, makeKey(host, port, database, user))
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete password from keyring: %w", err)
	}
	return nil
}
