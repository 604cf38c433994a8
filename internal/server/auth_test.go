package server

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialStoreSeedsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.json")
	store, err := NewCredentialStore(path)
	require.NoError(t, err)

	assert.True(t, store.Verify("admin", "admin123"))
	assert.True(t, store.Verify("user1", "password1"))
	assert.False(t, store.Verify("admin", "wrong"))
	assert.False(t, store.Verify("nobody", "admin123"))
}

func TestCredentialStorePicksUpFileEdits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.json")
	store, err := NewCredentialStore(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte(`{"carol":"s3cret"}`), 0o600))

	assert.True(t, store.Verify("carol", "s3cret"))
	assert.False(t, store.Verify("admin", "admin123"))
}

func TestCredentialStoreVerifiesNobodyOnCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.json")
	store, err := NewCredentialStore(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o600))
	assert.False(t, store.Verify("admin", "admin123"))
}

func TestCredentialStoreKeepsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"dave":"pw"}`), 0o600))

	store, err := NewCredentialStore(path)
	require.NoError(t, err)

	assert.True(t, store.Verify("dave", "pw"))
	assert.False(t, store.Verify("admin", "admin123"), "existing files are not reseeded")
}
