// Package server implements the credential store backing the login gate. It
// is deliberately a replaceable collaborator: the chat session lifecycle never
// consults it, and join requests carry no password.
package server

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// defaultAccounts seeds a fresh accounts file so the service is usable out of
// the box. Passwords are stored and compared in plaintext; hardening the
// login gate is outside this service's scope.
var defaultAccounts = map[string]string{
	"admin": "admin123",
	"user1": "password1",
}

// CredentialStore answers username/password verification from a JSON file of
// username to password. The file is re-read on every verification so edits
// take effect without a restart.
type CredentialStore struct {
	path string
}

// NewCredentialStore opens the accounts file at path, seeding it with the
// default accounts when missing.
func NewCredentialStore(path string) (*CredentialStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create accounts directory: %w", err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		data, err := json.MarshalIndent(defaultAccounts, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode default accounts: %w", err)
		}
		if err := os.WriteFile(path, data, 0o600); err != nil {
			return nil, fmt.Errorf("initialize accounts file: %w", err)
		}
	}
	return &CredentialStore{path: path}, nil
}

// Verify reports whether the pair matches a stored account. An unreadable or
// corrupt accounts file verifies nobody.
func (c *CredentialStore) Verify(username, password string) bool {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return false
	}

	var accounts map[string]string
	if err := json.Unmarshal(data, &accounts); err != nil {
		return false
	}

	stored, ok := accounts[username]
	return ok && stored == password
}
