package connection_history

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const serviceName = "pgtabs"

// ErrPasswordNotFound is returned when the keyring has no password for a connection
var ErrPasswordNotFound = errors.New("password not found in keyring")

// PasswordStore keeps connection passwords in the OS keyring
type PasswordStore struct {
	service string
}

// NewPasswordStore creates a password store for the application service name
func NewPasswordStore() *PasswordStore {
	return &PasswordStore{service: serviceName}
}

// Save stores a password. Empty passwords are not stored.
func (ps *PasswordStore) Save(host string, port int, database, user, password string) error {
	if password == "" {
		return nil
	}
	if err := keyring.Set(ps.service, makeKey(host, port, database, user), password); err != nil {
		return fmt.Errorf("failed to save password to keyring: %w", err)
	}
	return nil
}

// Get retrieves a password from the keyring
func (ps *PasswordStore) Get(host string, port int, database, user string) (string, error) {
	password, err := keyring.Get(ps.service, makeKey(host, port, database, user))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrPasswordNotFound
		}
		return "", fmt.Errorf("failed to read password from keyring: %w", err)
	}
	return password, nil
}

// Delete removes a password from the keyring
func (ps *PasswordStore) Delete(host string, port int, database, user string) error {
	err := keyring.Delete(ps.service, makeKey(host, port, database, user))
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete password from keyring: %w", err)
	}
	return nil
}

// makeKey creates a unique key for password storage
func makeKey(host string, port int, database, user string) string {
	return fmt.Sprintf("%s:%d:%s:%s", host, port, database, user)
}
