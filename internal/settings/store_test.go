package settings

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func storePath(t *testing.T) string {
	return filepath.Join(t.TempDir(), "settings.json")
}

func TestStoreDefaults(t *testing.T) {
	s, err := NewStore(storePath(t), zap.NewNop())
	require.NoError(t, err)
	assert.True(t, s.Get().Enabled, "extension is enabled by default")
	assert.Nil(t, s.Get().Wallet)
}

func TestStoreToggleAndReload(t *testing.T) {
	path := storePath(t)
	s, err := NewStore(path, zap.NewNop())
	require.NoError(t, err)

	enabled, err := s.Toggle()
	require.NoError(t, err)
	assert.False(t, enabled)

	reloaded, err := NewStore(path, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, reloaded.Get().Enabled)

	enabled, err = reloaded.Toggle()
	require.NoError(t, err)
	assert.True(t, enabled)
}

func TestStoreSetEnabled(t *testing.T) {
	path := storePath(t)
	s, err := NewStore(path, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, s.SetEnabled(false))
	reloaded, err := NewStore(path, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, reloaded.Get().Enabled)
}

func TestStoreWalletRecord(t *testing.T) {
	path := storePath(t)
	s, err := NewStore(path, zap.NewNop())
	require.NoError(t, err)

	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.SetWallet(&WalletRecord{
		Address:   "SomeAddress",
		Balance:   "1.25",
		UserEmail: "user@example.com",
		CreatedAt: created,
	}))

	reloaded, err := NewStore(path, zap.NewNop())
	require.NoError(t, err)
	w := reloaded.Get().Wallet
	require.NotNil(t, w)
	assert.Equal(t, "SomeAddress", w.Address)
	assert.Equal(t, "1.25", w.Balance)
	assert.Equal(t, "user@example.com", w.UserEmail)
	assert.True(t, created.Equal(w.CreatedAt))
}

func TestStoreGetCopiesWalletRecord(t *testing.T) {
	s, err := NewStore(storePath(t), zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, s.SetWallet(&WalletRecord{Address: "SomeAddress"}))

	got := s.Get()
	require.NotNil(t, got.Wallet)
	got.Wallet.Address = "Clobbered"

	assert.Equal(t, "SomeAddress", s.Get().Wallet.Address)
}

func TestStoreRejectsCorruptFile(t *testing.T) {
	path := storePath(t)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewStore(path, zap.NewNop())
	assert.Error(t, err)
}

func TestStoreNoTempFilesLeftBehind(t *testing.T) {
	path := storePath(t)
	s, err := NewStore(path, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, s.SetEnabled(false))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "settings.json", entries[0].Name())
}
