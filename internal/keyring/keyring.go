// Package keyring abstracts the platform secret store the client keeps its
// access tokens in. Only the bearer token is ever stored — never the
// account password.
package keyring

import (
	"errors"
	"fmt"
)

// Service is the secret-store service name shared by every credential this
// client writes.
const Service = "newguy103-passwordmanager"

// ErrNotFound is returned by Get when no secret exists for the key.
var ErrNotFound = errors.New("secret not found")

// Keyring is opaque key/value secret storage keyed by (service, account).
type Keyring interface {
	// Get returns the stored secret or ErrNotFound.
	Get(service, account string) (string, error)
	// Set stores or replaces the secret.
	Set(service, account, secret string) error
}

// Account derives the account key for a login: the username joined with the
// server URL so the same username against different servers stays distinct.
func Account(username, serverURL string) string {
	return fmt.Sprintf("%s=%s", username, serverURL)
}
