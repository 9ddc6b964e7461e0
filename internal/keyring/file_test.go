package keyring

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileKeyring_SetAndGet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keyring.json")
	k := NewFileKeyring(path)

	account := Account("alice", "https://vault.example.com")
	require.NoError(t, k.Set(Service, account, "token-1"))

	got, err := k.Get(Service, account)
	require.NoError(t, err)
	assert.Equal(t, "token-1", got)

	// Replacing overwrites.
	require.NoError(t, k.Set(Service, account, "token-2"))
	got, err = k.Get(Service, account)
	require.NoError(t, err)
	assert.Equal(t, "token-2", got)
}

func TestFileKeyring_MissingSecret(t *testing.T) {
	k := NewFileKeyring(filepath.Join(t.TempDir(), "keyring.json"))

	// No file yet.
	_, err := k.Get(Service, "alice=https://vault.example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	// File exists but the account does not.
	require.NoError(t, k.Set(Service, "bob=https://vault.example.com", "x"))
	_, err = k.Get(Service, "alice=https://vault.example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileKeyring_SameUserDifferentServers(t *testing.T) {
	k := NewFileKeyring(filepath.Join(t.TempDir(), "keyring.json"))

	a := Account("alice", "https://one.example.com")
	b := Account("alice", "https://two.example.com")
	require.NotEqual(t, a, b)

	require.NoError(t, k.Set(Service, a, "token-one"))
	require.NoError(t, k.Set(Service, b, "token-two"))

	got, err := k.Get(Service, a)
	require.NoError(t, err)
	assert.Equal(t, "token-one", got)
	got, err = k.Get(Service, b)
	require.NoError(t, err)
	assert.Equal(t, "token-two", got)
}

func TestFileKeyring_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "keyring.json")

	require.NoError(t, NewFileKeyring(path).Set(Service, "acc", "secret"))

	got, err := NewFileKeyring(path).Get(Service, "acc")
	require.NoError(t, err)
	assert.Equal(t, "secret", got)
}

func TestFileKeyring_FileModeIsPrivate(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not meaningful on windows")
	}

	path := filepath.Join(t.TempDir(), "keyring.json")
	require.NoError(t, NewFileKeyring(path).Set(Service, "acc", "secret"))

	st, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), st.Mode().Perm())
}
